package strategy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greedy(t *testing.T) *LuaProvider {
	t.Helper()
	p, err := LoadLuaProvider(filepath.Join("testdata", "greedy.lua"))
	require.NoError(t, err)
	return p
}

func newGame(t *testing.T, providers ...game.DecisionProvider) *game.Game {
	t.Helper()
	g, err := game.NewGame(game.Config{
		Players:   []string{"Alice", "Bob", "Carol"},
		Providers: providers,
		Seed:      1,
		NoShuffle: true,
	})
	require.NoError(t, err)
	require.NoError(t, g.Start(context.Background()))
	return g
}

// drawEvolution moves n evolution cards from the deck into p's hand.
func drawEvolution(g *game.Game, p *game.Player, n int) {
	for _, c := range g.Decks[game.KindEvolution].Draw(n) {
		p.AddCard(c)
	}
}

func TestLuaChooseAction(t *testing.T) {
	p := greedy(t)
	g := newGame(t)
	ctx := context.Background()
	alice := g.Players[0]

	a, err := p.ChooseAction(ctx, g, alice, game.CtxHawkDove)
	require.NoError(t, err)
	assert.Equal(t, game.ActionDeceive, a, "nobody is ahead of Alice")

	drawEvolution(g, g.Players[1], 2)
	a, err = p.ChooseAction(ctx, g, alice, game.CtxHawkDove)
	require.NoError(t, err)
	assert.Equal(t, game.ActionCooperate, a, "Bob is ahead")

	a, err = p.ChooseAction(ctx, g, g.Players[1], game.CtxNaturalDisaster)
	require.NoError(t, err)
	assert.Equal(t, game.ActionCooperate, a)
}

func TestLuaChooseTargetPicksLeader(t *testing.T) {
	p := greedy(t)
	g := newGame(t)
	drawEvolution(g, g.Players[2], 3)

	target, err := p.ChooseTarget(context.Background(), g, g.Players[0], g.Opponents(g.Players[0]), game.CtxHawkDove)
	require.NoError(t, err)
	assert.Equal(t, "Carol", target.Name)
}

func TestLuaChooseDiscard(t *testing.T) {
	p := greedy(t)
	g := newGame(t)
	alice := g.Players[0]
	cards := alice.StrategyCards()
	require.Len(t, cards, 2)

	chosen, err := p.ChooseDiscard(context.Background(), g, alice, cards, 1, game.CtxHandLimit)
	require.NoError(t, err)
	require.Len(t, chosen, 1)
	assert.Same(t, cards[1], chosen[0])
}

func TestLuaYesNoAndOptions(t *testing.T) {
	p := greedy(t)
	g := newGame(t)
	ctx := context.Background()
	alice := g.Players[0]

	yes, err := p.ChooseYesNo(ctx, g, alice, game.QuestionConvertPoints)
	require.NoError(t, err)
	assert.True(t, yes)

	i, err := p.ChooseOption(ctx, g, alice, game.QuestionConvertAmount, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, 2, i, "scripts answer 1-based")

	i, err = p.ChooseOption(ctx, g, alice, game.QuestionSpaceJump, []string{"Start", "Finish"})
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, i)
}

func TestLuaMissingFunctionsFallBack(t *testing.T) {
	p, err := NewLuaProvider("partial", `function yes_no(q, s) return false end`)
	require.NoError(t, err)
	assert.True(t, p.Has("yes_no"))
	assert.False(t, p.Has("choose_action"))

	g := newGame(t)
	a, err := p.ChooseAction(context.Background(), g, g.Players[0], game.CtxTrustEvolution)
	require.NoError(t, err)
	assert.Contains(t, []game.Action{game.ActionCooperate, game.ActionDeceive}, a)
}

func TestLuaErrors(t *testing.T) {
	_, err := NewLuaProvider("broken", `function choose_action(`)
	assert.Error(t, err)

	_, err = LoadLuaProvider(filepath.Join("testdata", "missing.lua"))
	assert.Error(t, err)

	p, err := NewLuaProvider("raises", `function choose_action(ctx, state) error("boom") end`)
	require.NoError(t, err)
	g := newGame(t)
	_, err = p.ChooseAction(context.Background(), g, g.Players[0], game.CtxHawkDove)
	assert.ErrorContains(t, err, "choose_action")
}

func TestQuestionKey(t *testing.T) {
	assert.Equal(t, "convert_points", QuestionKey(game.QuestionConvertPoints))
	assert.Equal(t, "unknown", QuestionKey(game.Question(999)))
}

// TestLuaGameIsReproducible tests that scripted games replay exactly for
// the same seed.
func TestLuaGameIsReproducible(t *testing.T) {
	run := func() (string, game.Result) {
		p := greedy(t)
		logger := log.NewMemoryLogger()
		g, err := game.NewGame(game.Config{
			Players:   []string{"Alice", "Bob", "Carol"},
			Providers: []game.DecisionProvider{p, p, nil},
			Logger:    logger,
			Seed:      21,
		})
		require.NoError(t, err)
		res, err := g.PlayToCompletion(context.Background(), 25)
		require.NoError(t, err)
		return log.FormatAll(logger.Events()), res
	}

	log1, res1 := run()
	log2, res2 := run()
	assert.Equal(t, log1, log2)
	assert.Equal(t, res1.Winner, res2.Winner)
	assert.True(t, res1.Turns > 0)
}
