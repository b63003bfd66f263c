package game

import (
	"context"
	"strings"
	"testing"

	"github.com/peterkuimelis/evogame/internal/log"
)

// TestTrustMutualCooperation tests that a mutual trust pair playing C/C scores
// 2 points each and replenishes the consumed cards.
func TestTrustMutualCooperation(t *testing.T) {
	g, _, logger := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindCooperation, 1)
	give(t, g, bob, KindCooperation, 1)

	resolveAt(t, g, alice, TileTrustEvolution)

	if alice.Points != 2 || bob.Points != 2 {
		dumpLog(t, logger)
		t.Fatalf("expected 2 points each, got %d and %d", alice.Points, bob.Points)
	}
	if alice.Count(KindCooperation) != 1 || bob.Count(KindCooperation) != 1 {
		t.Errorf("expected each player to be replenished to 1 Cooperation card")
	}
	if g.Decks[KindCooperation].DiscardCount() != 2 {
		t.Errorf("expected both declared cards in the discard pile, got %d", g.Decks[KindCooperation].DiscardCount())
	}
	if n := len(logger.EventsOfType(log.EventDeclare)); n != 2 {
		t.Errorf("expected 2 declarations, got %d", n)
	}
}

// TestTrustWithoutMutualTargets tests that one-sided trust produces no game.
func TestTrustWithoutMutualTargets(t *testing.T) {
	g, sps, _ := newTestGame(t, testLayout(), "Alice", "Bob", "Carol")
	alice := g.Players[0]
	for _, p := range g.Players {
		give(t, g, p, KindEvolution, 6)
		give(t, g, p, KindCooperation, 1)
	}
	sps[0].AddTarget("Bob")
	sps[1].AddTarget("Carol")
	sps[2].AddTarget("Alice")

	resolveAt(t, g, alice, TileTrustEvolution)

	for _, p := range g.Players {
		if p.Points != 0 || p.Count(KindCooperation) != 1 {
			t.Errorf("%s: expected no game, got %d points and %d Cooperation cards", p.Name, p.Points, p.Count(KindCooperation))
		}
	}
}

// TestHawkDoveDeceiveAgainstCooperate tests the temptation payoff: the deceiver
// draws 3 evolution cards and the cooperator scores 1 point.
func TestHawkDoveDeceiveAgainstCooperate(t *testing.T) {
	g, _, logger := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindCooperation, 1)

	resolveAt(t, g, alice, TileHawkDove)

	if alice.EvolutionCount() != 9 {
		dumpLog(t, logger)
		t.Fatalf("expected Alice to hold 9 evolution cards, got %d", alice.EvolutionCount())
	}
	if bob.Points != 1 {
		t.Errorf("expected Bob to score 1 point, got %d", bob.Points)
	}
	if alice.Count(KindDeception) != 1 || bob.Count(KindCooperation) != 1 {
		t.Errorf("expected both players to be replenished")
	}
	if n := len(logger.EventsOfType(log.EventChallenge)); n != 1 {
		t.Errorf("expected 1 challenge, got %d", n)
	}
}

// TestHawkDoveMutualDeception tests that D/D costs both players 2 evolution cards.
func TestHawkDoveMutualDeception(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindDeception, 1)

	resolveAt(t, g, alice, TileHawkDove)

	if alice.EvolutionCount() != 4 || bob.EvolutionCount() != 4 {
		t.Errorf("expected 4 evolution cards each, got %d and %d", alice.EvolutionCount(), bob.EvolutionCount())
	}
	if g.Decks[KindEvolution].DiscardCount() != 4 {
		t.Errorf("expected 4 forfeited cards in the discard pile, got %d", g.Decks[KindEvolution].DiscardCount())
	}
}

// TestAbstainingPlayerMeansNoContest tests that a player without strategy
// cards abstains and the pair pays nothing.
func TestAbstainingPlayerMeansNoContest(t *testing.T) {
	g, _, logger := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindCooperation, 1)

	resolveAt(t, g, alice, TileHawkDove)

	if alice.Points != 0 || bob.Points != 0 {
		t.Errorf("expected no payoff, got %d and %d points", alice.Points, bob.Points)
	}
	if n := len(logger.EventsOfType(log.EventAbstain)); n != 1 {
		t.Errorf("expected 1 abstain event, got %d", n)
	}
	if bob.StrategyCount() != 0 {
		t.Errorf("an abstaining player is not replenished, Bob holds %d", bob.StrategyCount())
	}
}

// TestTruceTurnsChallengesIntoCooperation tests that every HawkDove game under
// a Truce pays as mutual cooperation.
func TestTruceTurnsChallengesIntoCooperation(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindCooperation, 1)
	g.addModifier(ModTruce, bob, ExpireOwnerTurn, 0)

	resolveAt(t, g, alice, TileHawkDove)

	if alice.Points != 2 || bob.Points != 2 {
		t.Errorf("expected 2 points each under a Truce, got %d and %d", alice.Points, bob.Points)
	}
	if alice.EvolutionCount() != 6 {
		t.Errorf("expected no temptation payout, Alice holds %d", alice.EvolutionCount())
	}
}

// TestResourceRichWithEnergyAbsorption tests the cooperate payout and that
// the absorbing player profits only from other players' cooperation.
func TestResourceRichWithEnergyAbsorption(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindCooperation, 1)
	give(t, g, bob, KindCooperation, 1)
	g.addModifier(ModEnergyAbsorption, bob, ExpireRounds, 3)

	resolveAt(t, g, alice, TileResourceRich)

	if alice.EvolutionCount() != 8 {
		t.Errorf("expected Alice to draw 2, holds %d", alice.EvolutionCount())
	}
	if bob.EvolutionCount() != 9 {
		t.Errorf("expected Bob to draw 2 plus 1 absorbed, holds %d", bob.EvolutionCount())
	}
}

// TestDisasterTransfer tests that a deceiver forfeits 1 and may pass 1 more
// on to another player.
func TestDisasterTransfer(t *testing.T) {
	g, sps, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindCooperation, 1)
	sps[0].AddYesNo(true).AddTarget("Bob")

	resolveAt(t, g, alice, TileNaturalDisaster)

	if alice.EvolutionCount() != 5 || bob.EvolutionCount() != 5 {
		t.Errorf("expected 5 evolution cards each, got %d and %d", alice.EvolutionCount(), bob.EvolutionCount())
	}
}

// TestDisasterImmunityBlocksTransfer tests Environmental Tolerance immunity.
func TestDisasterImmunityBlocksTransfer(t *testing.T) {
	g, sps, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindCooperation, 1)
	bob.ImmuneToDisaster = true
	sps[0].AddYesNo(true)

	resolveAt(t, g, alice, TileNaturalDisaster)

	if bob.EvolutionCount() != 6 {
		t.Errorf("expected an immune Bob to keep 6 cards, got %d", bob.EvolutionCount())
	}
}

// TestSanctuaryPairsAndFreeChallenge tests that cooperators pair up for 3
// cards each and the next player earns a free challenge against the deceiver.
func TestSanctuaryPairsAndFreeChallenge(t *testing.T) {
	g, _, logger := newTestGame(t, testLayout(), "Alice", "Bob", "Carol")
	alice, bob, carol := g.Players[0], g.Players[1], g.Players[2]
	for _, p := range g.Players {
		give(t, g, p, KindEvolution, 6)
	}
	give(t, g, alice, KindCooperation, 1)
	give(t, g, bob, KindCooperation, 1)
	give(t, g, carol, KindDeception, 1)

	resolveAt(t, g, alice, TileCooperationSanctuary)

	if alice.EvolutionCount() != 9 || bob.EvolutionCount() != 9 {
		dumpLog(t, logger)
		t.Fatalf("expected the pair to draw 3 each, got %d and %d", alice.EvolutionCount(), bob.EvolutionCount())
	}
	if carol.EvolutionCount() != 10 {
		t.Errorf("expected Carol to draw 4, holds %d", carol.EvolutionCount())
	}
	if bob.FreeChallenge != carol.ID {
		t.Fatalf("expected Bob to hold a free challenge against Carol, got %d", bob.FreeChallenge)
	}

	// The stored challenge replaces Bob's own target choice on HawkDove.
	resolveAt(t, g, bob, TileHawkDove)
	if bob.FreeChallenge != NoTarget {
		t.Error("expected the free challenge to be consumed")
	}
	if carol.EvolutionCount() != 13 || bob.Points != 1 {
		t.Errorf("expected Carol to win the challenge, got %d cards / Bob %d points", carol.EvolutionCount(), bob.Points)
	}
}

// TestSwampDeceiverTakesAbility tests that an unblocked deceiver keeps one of
// the top three ability cards.
func TestSwampDeceiverTakesAbility(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindCooperation, 1)

	resolveAt(t, g, alice, TileDeceptionSwamp)

	if !alice.HasAbility("Altruism") {
		t.Errorf("expected Alice to take the top ability card, has %v", cardNames(alice.Abilities))
	}
	if g.Decks[KindAbility].DrawCount() != 19 {
		t.Errorf("expected 19 ability cards left, got %d", g.Decks[KindAbility].DrawCount())
	}
}

// TestSwampCooperatorBlocksDeceiver tests that a blocking cooperator draws 1
// and the blocked deceiver gets nothing.
func TestSwampCooperatorBlocksDeceiver(t *testing.T) {
	g, sps, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 6)
	give(t, g, bob, KindEvolution, 6)
	give(t, g, alice, KindDeception, 1)
	give(t, g, bob, KindCooperation, 1)
	sps[1].AddYesNo(true).AddTarget("Alice")

	resolveAt(t, g, alice, TileDeceptionSwamp)

	if len(alice.Abilities) != 0 {
		t.Errorf("expected a blocked Alice to gain no ability, has %v", cardNames(alice.Abilities))
	}
	if bob.EvolutionCount() != 7 {
		t.Errorf("expected Bob to draw 1 for blocking, holds %d", bob.EvolutionCount())
	}
}

// TestMutationResolvesNestedTiles tests that Accelerated Evolution (top of an
// unshuffled event deck) moves the player onto the Finish and resolves it.
func TestMutationResolvesNestedTiles(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice := g.Players[0]
	give(t, g, alice, KindEvolution, 6)

	resolveAt(t, g, alice, TileMutationEvent)

	if alice.Position != 9 {
		t.Fatalf("expected Alice on the Finish at 9, got %d", alice.Position)
	}
	if alice.EvolutionCount() != 11 || alice.Points != 2 {
		t.Errorf("expected 6+2+3 cards and 2 points, got %d and %d", alice.EvolutionCount(), alice.Points)
	}
	if g.LastEvent() != "Accelerated Evolution" {
		t.Errorf("expected the last event to be recorded, got %q", g.LastEvent())
	}
	if g.Decks[KindEvent].DiscardCount() != 1 {
		t.Errorf("expected the event card in the discard pile, got %d", g.Decks[KindEvent].DiscardCount())
	}
}

func TestResolveDepthLimit(t *testing.T) {
	g, _, logger := newTestGame(t, testLayout(), "Alice", "Bob")
	alice := g.Players[0]
	give(t, g, alice, KindEvolution, 6)
	g.depth = maxResolveDepth

	resolveAt(t, g, alice, TileFinish)

	if alice.Points != 0 {
		t.Errorf("expected no resolution past the depth limit, got %d points", alice.Points)
	}
	skip := logger.LastEvent()
	if skip.Type != log.EventSkip || !strings.Contains(skip.Details, "limit") {
		t.Errorf("expected a depth limit skip, got %s", log.FormatEvent(skip))
	}
}

func TestEvolutionLab(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice, bob := g.Players[0], g.Players[1]
	give(t, g, alice, KindEvolution, 3)
	give(t, g, bob, KindEvolution, 1)

	resolveAt(t, g, alice, TileEvolutionLab)
	if alice.EvolutionCount() != 1 || len(alice.Abilities) != 1 {
		t.Errorf("expected Alice to pay 2 for 1 ability, got %d cards and %d abilities", alice.EvolutionCount(), len(alice.Abilities))
	}

	resolveAt(t, g, bob, TileEvolutionLab)
	if bob.EvolutionCount() != 1 || len(bob.Abilities) != 0 {
		t.Error("expected Bob to be unable to pay")
	}
}

func TestFinishRewardsOnlyFirstVisit(t *testing.T) {
	g, _, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice := g.Players[0]
	give(t, g, alice, KindEvolution, 4)

	resolveAt(t, g, alice, TileFinish)
	resolveAt(t, g, alice, TileFinish)

	if alice.Points != 2 || alice.EvolutionCount() != 7 {
		t.Errorf("expected one reward of 2 points and 3 cards, got %d points and %d cards", alice.Points, alice.EvolutionCount())
	}
}

// TestHandLimitAsksWhichCardGoes tests that excess strategy cards are
// discarded one at a time by the holder's choice.
func TestHandLimitAsksWhichCardGoes(t *testing.T) {
	g, sps, _ := newTestGame(t, testLayout(), "Alice", "Bob")
	alice := g.Players[0]
	give(t, g, alice, KindEvolution, 2)
	give(t, g, alice, KindCooperation, 1)
	give(t, g, alice, KindDeception, 1)
	sps[0].AddDiscard(KindDeception)

	if err := g.enforceHandLimit(context.Background(), alice); err != nil {
		t.Fatal(err)
	}
	if alice.Count(KindDeception) != 0 || alice.Count(KindCooperation) != 1 {
		t.Errorf("expected the Deception card to go, have %d/%d", alice.Count(KindCooperation), alice.Count(KindDeception))
	}
}
