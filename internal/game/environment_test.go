package game

import (
	"context"
	"testing"
)

func applyEnvironment(t *testing.T, g *Game, p *Player, name string) {
	t.Helper()
	if err := LookupEnvironment(name).Apply(context.Background(), g, p); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func TestEnvironmentRetypes(t *testing.T) {
	tests := []struct {
		name   string
		from   int
		pos    int
		expect TileType
	}{
		{"Drought", 0, 3, TileNaturalDisaster},
		{"Oasis", 0, 4, TileResourceRich},
		{"Earthquake", 1, 2, TileNaturalDisaster},
		{"Eco Recovery", 0, 4, TileTrustEvolution},
		{"Sanctuary Appears", 1, 6, TileCooperationSanctuary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
			alice := g.Players[0]
			alice.Position = tt.from

			applyEnvironment(t, g, alice, tt.name)

			if got := g.Board.TileAt(tt.pos).Type; got != tt.expect {
				t.Errorf("expected %s at %d, got %s", tt.expect, tt.pos, got)
			}
			if g.Board.TileAt(0).Type != TileStart {
				t.Error("Start must never change")
			}
		})
	}
}

func TestTerrainUpliftMovesFinish(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")

	applyEnvironment(t, g, g.Players[0], "Terrain Uplift")

	if g.Board.TileAt(2).Type != TileFinish {
		t.Errorf("expected the Finish to move from 9 to 2, got %s at 2", g.Board.TileAt(2).Type)
	}
	if g.Board.TileAt(9).Type != TileHawkDove {
		t.Errorf("expected the old Finish to take the displaced type, got %s", g.Board.TileAt(9).Type)
	}
	if len(g.Board.Positions(TileFinish)) != 1 {
		t.Error("there must be exactly one Finish")
	}
}

func TestPathChangeBreaksLongestRun(t *testing.T) {
	g, _, _ := newTestGame(t, quietLayout(), "Alice", "Bob")

	applyEnvironment(t, g, g.Players[0], "Path Change")

	got := g.Board.TileAt(4).Type
	if got == TileEvolutionLab || !got.Ordinary() {
		t.Errorf("expected the middle of the lab run to change to another ordinary type, got %s", got)
	}
}

func TestSwampExpansion(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")

	applyEnvironment(t, g, g.Players[0], "Swamp Expansion")

	swamps := g.Board.Positions(TileDeceptionSwamp)
	if len(swamps) != 3 {
		t.Fatalf("expected two new swamps besides the one at 6, got %v", swamps)
	}
}

func TestPleasantClimateAndDeterioration(t *testing.T) {
	g, sps, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindCooperation, 1)
	give(t, g, bob, KindDeception, 2)
	give(t, g, bob, KindCooperation, 1)
	sps[1].AddAction(ActionDeceive).AddDiscard(KindCooperation)

	applyEnvironment(t, g, alice, "Pleasant Climate")
	applyEnvironment(t, g, alice, "Environmental Deterioration")
	resolveAt(t, g, alice, TileHawkDove)

	// Alice cooperates under Pleasant Climate (+1); Bob deceives (+3) and
	// loses his Cooperation card to the deterioration.
	if alice.EvolutionCount() != 7 {
		t.Errorf("expected Alice to draw 1 for cooperating, holds %d", alice.EvolutionCount())
	}
	if bob.EvolutionCount() != 9 || bob.Count(KindCooperation) != 0 {
		t.Errorf("expected Bob at 9 cards with no Cooperation card, got %d/%d", bob.EvolutionCount(), bob.Count(KindCooperation))
	}

	g.endTurn(alice)
	if hasModifier(g, ModPleasantClimate) {
		t.Error("Pleasant Climate ends with the turn")
	}
	if !hasModifier(g, ModDeterioration) {
		t.Error("Environmental Deterioration lasts 2 rounds")
	}
}

func TestEnvironmentChangeDrawsAndDiscards(t *testing.T) {
	g, _, logger := newTestGame(t, testLayout(), "Alice", "Bob")
	g.cfg.NoEnvironment = false
	g.cfg.EnvironmentChance = 1

	if err := g.environmentChange(context.Background(), g.Players[0]); err != nil {
		t.Fatal(err)
	}
	if g.Board.TileAt(3).Type != TileNaturalDisaster {
		t.Errorf("expected Drought from the top of the deck, got %s at 3", g.Board.TileAt(3).Type)
	}
	if g.Decks[KindEnvironment].DiscardCount() != 1 {
		t.Errorf("expected the card in the discard pile, got %d", g.Decks[KindEnvironment].DiscardCount())
	}
	if len(logger.Events()) == 0 {
		t.Error("expected environment events to be logged")
	}
}
