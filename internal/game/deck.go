package game

import "math/rand"

// Deck is a draw pile plus discard pile over a single card kind. The top of
// the draw pile is the last element of draw.
type Deck struct {
	Kind CardKind

	draw    []*Card
	discard []*Card
	retired []*Card
	rng     *rand.Rand

	// OnShuffle is called after the discard pile is recycled into the draw pile.
	OnShuffle func(kind CardKind, count int)
}

// NewDeck builds a deck whose cards are listed top first. When shuffle is
// set the draw pile is shuffled with rng before first use.
func NewDeck(kind CardKind, cards []*Card, rng *rand.Rand, shuffle bool) *Deck {
	d := &Deck{Kind: kind, rng: rng}
	d.draw = make([]*Card, len(cards))
	for i, c := range cards {
		d.draw[len(cards)-1-i] = c
	}
	if shuffle {
		d.shuffle(d.draw)
	}
	return d
}

func (d *Deck) shuffle(cards []*Card) {
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Draw removes up to n cards from the top of the deck. The discard pile is
// reshuffled into the draw pile the moment the draw pile runs out; when both
// piles are empty fewer cards are returned.
func (d *Deck) Draw(n int) []*Card {
	var out []*Card
	for len(out) < n {
		if len(d.draw) == 0 {
			if len(d.discard) == 0 {
				break
			}
			d.reshuffle()
		}
		top := d.draw[len(d.draw)-1]
		d.draw = d.draw[:len(d.draw)-1]
		out = append(out, top)
	}
	return out
}

func (d *Deck) reshuffle() {
	count := len(d.discard)
	d.draw = append(d.draw, d.discard...)
	d.discard = nil
	d.shuffle(d.draw)
	if d.OnShuffle != nil {
		d.OnShuffle(d.Kind, count)
	}
}

// Discard places cards on the discard pile.
func (d *Deck) Discard(cards ...*Card) {
	d.discard = append(d.discard, cards...)
}

// PeekTop returns up to n cards from the top of the draw pile, top first.
// It never reshuffles.
func (d *Deck) PeekTop(n int) []*Card {
	if n > len(d.draw) {
		n = len(d.draw)
	}
	out := make([]*Card, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.draw[len(d.draw)-1-i])
	}
	return out
}

// Take removes a specific card from the draw pile.
func (d *Deck) Take(card *Card) bool {
	for i, c := range d.draw {
		if c == card {
			d.draw = append(d.draw[:i], d.draw[i+1:]...)
			return true
		}
	}
	return false
}

// PutTop places cards back on the draw pile; cards[0] ends up on top.
func (d *Deck) PutTop(cards []*Card) {
	for i := len(cards) - 1; i >= 0; i-- {
		d.draw = append(d.draw, cards[i])
	}
}

// Retire removes a card from play permanently.
func (d *Deck) Retire(card *Card) {
	d.retired = append(d.retired, card)
}

// IsEmpty reports whether both piles are empty.
func (d *Deck) IsEmpty() bool {
	return len(d.draw) == 0 && len(d.discard) == 0
}

// Remaining is the number of cards in the draw and discard piles.
func (d *Deck) Remaining() int {
	return len(d.draw) + len(d.discard)
}

func (d *Deck) DrawCount() int    { return len(d.draw) }
func (d *Deck) DiscardCount() int { return len(d.discard) }
func (d *Deck) RetiredCount() int { return len(d.retired) }
