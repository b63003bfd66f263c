package game

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func plainCards(kind CardKind, n int) []*Card {
	cards := make([]*Card, n)
	for i := range cards {
		cards[i] = &Card{ID: i + 1, Kind: kind, Name: kind.String()}
	}
	return cards
}

func TestDeckDrawIsTopFirst(t *testing.T) {
	cards := plainCards(KindEvent, 3)
	d := NewDeck(KindEvent, cards, rand.New(rand.NewSource(1)), false)

	got := d.Draw(2)
	if len(got) != 2 || got[0] != cards[0] || got[1] != cards[1] {
		t.Fatalf("expected cards 1 and 2 from the top, got %v", got)
	}
	if d.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", d.Remaining())
	}
}

func TestDeckDrawDegradesGracefully(t *testing.T) {
	d := NewDeck(KindEvolution, plainCards(KindEvolution, 2), rand.New(rand.NewSource(1)), true)

	got := d.Draw(5)
	if len(got) != 2 {
		t.Fatalf("expected 2 cards from a 2-card deck, got %d", len(got))
	}
	if !d.IsEmpty() {
		t.Error("expected the deck to be empty")
	}
	if more := d.Draw(1); len(more) != 0 {
		t.Errorf("expected nothing from an empty deck, got %d", len(more))
	}
}

func TestDeckReshufflesDiscardWhenDrawPileEmpties(t *testing.T) {
	d := NewDeck(KindCooperation, plainCards(KindCooperation, 3), rand.New(rand.NewSource(7)), false)
	shuffles := 0
	d.OnShuffle = func(kind CardKind, count int) {
		shuffles++
		if count != 2 {
			t.Errorf("expected 2 cards reshuffled, got %d", count)
		}
	}

	first := d.Draw(3)
	d.Discard(first[0], first[1])
	if d.DrawCount() != 0 || d.DiscardCount() != 2 {
		t.Fatalf("expected 0 draw / 2 discard, got %d / %d", d.DrawCount(), d.DiscardCount())
	}

	got := d.Draw(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 recycled cards, got %d", len(got))
	}
	if shuffles != 1 {
		t.Errorf("expected exactly one reshuffle, got %d", shuffles)
	}
	if d.DiscardCount() != 0 {
		t.Errorf("expected the discard pile to be consumed, got %d", d.DiscardCount())
	}
}

func TestDeckPeekNeverReshuffles(t *testing.T) {
	d := NewDeck(KindAbility, plainCards(KindAbility, 2), rand.New(rand.NewSource(1)), false)
	d.Discard(d.Draw(2)...)

	if peek := d.PeekTop(3); len(peek) != 0 {
		t.Fatalf("expected an empty peek, got %d cards", len(peek))
	}
	if d.DiscardCount() != 2 {
		t.Errorf("peek must not touch the discard pile, have %d", d.DiscardCount())
	}
}

func TestDeckTakeAndPutTop(t *testing.T) {
	cards := plainCards(KindEvent, 4)
	d := NewDeck(KindEvent, cards, rand.New(rand.NewSource(1)), false)

	peek := d.PeekTop(3)
	if peek[0] != cards[0] || peek[2] != cards[2] {
		t.Fatalf("unexpected peek order %v", peek)
	}
	if !d.Take(cards[1]) {
		t.Fatal("expected to take card 2 from the draw pile")
	}
	if d.Take(cards[1]) {
		t.Error("a card cannot be taken twice")
	}

	d.Take(cards[0])
	d.PutTop([]*Card{cards[1], cards[0]})
	got := d.Draw(2)
	if got[0] != cards[1] || got[1] != cards[0] {
		t.Errorf("expected PutTop order to be preserved, got %v", got)
	}
}

func TestStandardCatalogueComposition(t *testing.T) {
	cat := StandardCatalogue()
	if cat.Cooperation != 25 || cat.Deception != 25 || cat.Evolution != 125 {
		t.Errorf("unexpected strategy/evolution counts: %+v", cat)
	}
	if len(cat.Events) != 30 {
		t.Errorf("expected 30 events, got %d", len(cat.Events))
	}
	if len(cat.Abilities) != 20 {
		t.Errorf("expected 20 abilities, got %d", len(cat.Abilities))
	}
	if len(cat.Environments) != 10 {
		t.Errorf("expected 10 environment changes, got %d", len(cat.Environments))
	}
	if err := cat.Validate(); err != nil {
		t.Errorf("standard catalogue should validate: %v", err)
	}
}

func TestParseCatalogueOverrides(t *testing.T) {
	data := []byte(`
cooperation: 10
evolution: 60
events:
  - name: Miracle
    count: 3
  - name: Truce
abilities:
  - name: Tenacity
`)
	cat, err := ParseCatalogue(data)
	if err != nil {
		t.Fatalf("ParseCatalogue: %v", err)
	}
	if cat.Cooperation != 10 || cat.Deception != 25 || cat.Evolution != 60 {
		t.Errorf("unexpected counts: %d/%d/%d", cat.Cooperation, cat.Deception, cat.Evolution)
	}
	if len(cat.Events) != 4 || cat.Events[0] != "Miracle" || cat.Events[3] != "Truce" {
		t.Errorf("unexpected events %v", cat.Events)
	}
	if len(cat.Abilities) != 1 {
		t.Errorf("expected 1 ability, got %v", cat.Abilities)
	}
	if len(cat.Environments) != 10 {
		t.Errorf("environments should keep the standard list, got %d", len(cat.Environments))
	}
}

func TestParseCatalogueRejectsUnknownCards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	if err := os.WriteFile(path, []byte("events:\n  - name: Meteor Strike\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseCatalogueFile(path); err == nil {
		t.Fatal("expected an unknown event to be rejected")
	}
}
