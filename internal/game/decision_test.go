package game

import (
	"context"
	"testing"
)

// unrulyProvider answers every question out of range.
type unrulyProvider struct {
	ScriptedProvider
	stranger *Player
}

func (u *unrulyProvider) ChooseAction(context.Context, *Game, *Player, Context) (Action, error) {
	return Action(42), nil
}

func (u *unrulyProvider) ChooseTarget(context.Context, *Game, *Player, []*Player, Context) (*Player, error) {
	return u.stranger, nil
}

func (u *unrulyProvider) ChooseDiscard(_ context.Context, _ *Game, _ *Player, cards []*Card, _ int, _ Context) ([]*Card, error) {
	return []*Card{cards[0], cards[0], {Kind: KindEvolution}}, nil
}

func (u *unrulyProvider) ChooseOption(context.Context, *Game, *Player, Question, []string) (int, error) {
	return 99, nil
}

func TestProviderAnswersAreSanitized(t *testing.T) {
	u := &unrulyProvider{ScriptedProvider: *NewScriptedProvider(t, "Alice"), stranger: NewPlayer(7, "Stranger")}
	g, err := NewGame(Config{
		Players:   []string{"Alice", "Bob", "Carol"},
		Providers: []DecisionProvider{u},
		Seed:      1,
		NoDeal:    true,
		NoShuffle: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	alice := g.Players[0]

	if a, _ := g.askAction(ctx, alice, CtxHawkDove); a != ActionCooperate {
		t.Errorf("expected an invalid action to become Cooperate, got %s", a)
	}
	if p, _ := g.askTarget(ctx, alice, g.Opponents(alice), CtxHawkDove); p != g.Players[1] {
		t.Errorf("expected an off-list target to become the first candidate, got %v", p)
	}
	if p, _ := g.askTarget(ctx, alice, nil, CtxHawkDove); p != nil {
		t.Errorf("expected no target from no candidates, got %v", p)
	}
	if i, _ := g.askOption(ctx, alice, QuestionSpaceJump, []string{"Start", "Finish"}); i != 0 {
		t.Errorf("expected an out-of-range option to become 0, got %d", i)
	}
	if i, _ := g.askOption(ctx, alice, QuestionSpaceJump, nil); i != -1 {
		t.Errorf("expected -1 for no options, got %d", i)
	}

	cards := plainCards(KindCooperation, 4)
	chosen, _ := g.askDiscard(ctx, alice, cards, 2, CtxHandLimit)
	if len(chosen) != 2 || chosen[0] != cards[0] || chosen[1] != cards[3] {
		t.Errorf("expected the first card plus a top-up from the end, got %v", chosen)
	}
	if all, _ := g.askDiscard(ctx, alice, cards, 5, CtxHandLimit); len(all) != 4 {
		t.Errorf("expected every card when asked for more than offered, got %d", len(all))
	}
}

func TestMissingProvidersDefaultToRandom(t *testing.T) {
	g, err := NewGame(Config{Players: []string{"Alice", "Bob"}, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range g.Players {
		if _, ok := g.provider(p).(*RandomProvider); !ok {
			t.Errorf("%s: expected a RandomProvider, got %T", p.Name, g.provider(p))
		}
	}
}
