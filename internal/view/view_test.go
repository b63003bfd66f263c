package view

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.NewGame(game.Config{
		Players:   []string{"Alice", "Bob", "Carol"},
		Seed:      5,
		NoShuffle: true,
	})
	require.NoError(t, err)
	require.NoError(t, g.Start(context.Background()))
	return g
}

func TestBuildStateViewHidesOtherHands(t *testing.T) {
	g := newStartedGame(t)

	sv := BuildStateView(g, 1)

	require.NotNil(t, sv.You)
	assert.Equal(t, "Bob", sv.You.Name)
	assert.False(t, sv.IsYourTurn)
	assert.Len(t, sv.Players, 3)
	assert.Len(t, sv.Board, game.DefaultBoardSize)
	assert.Equal(t, "Start", sv.Board[0].Type)
	assert.Equal(t, "Finish", sv.Board[game.DefaultBoardSize-1].Type)
	for _, pv := range sv.Players {
		assert.Equal(t, 5, pv.Evolution, pv.Name)
		assert.Equal(t, game.DefaultVictoryTarget, pv.VictoryTarget, pv.Name)
		assert.Empty(t, pv.Events, "no events are dealt")
	}
	assert.Equal(t, 110, sv.Decks["Evolution"])
	assert.Equal(t, -1, sv.Winner)
}

func TestBuildStateViewSpectator(t *testing.T) {
	g := newStartedGame(t)

	sv := BuildStateView(g, Spectator)

	assert.Nil(t, sv.You)
	assert.False(t, sv.IsYourTurn)

	data, err := json.Marshal(sv)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"you"`)
}

func TestEventsNeverNil(t *testing.T) {
	assert.NotNil(t, Events(nil))

	logger := log.NewMemoryLogger()
	logger.Log(log.NewTurnEvent(0, "Alice", 1))
	views := Events(logger.Events())
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Seq)
	assert.Equal(t, log.EventNewTurn.String(), views[0].Type)
}

func TestCatalogueCollapsesDuplicates(t *testing.T) {
	cat := game.Catalogue{
		Cooperation: 2,
		Deception:   3,
		Evolution:   4,
		Events:      []string{"Miracle", "Miracle", "Truce"},
		Abilities:   []string{"Tenacity"},
	}

	cards := Catalogue(cat)

	require.Len(t, cards, 6)
	assert.Equal(t, CardView{Kind: "Deception", Name: "Deception", Description: "Declare Deceive", Count: 3}, cards[1])
	assert.Equal(t, "Miracle", cards[3].Name)
	assert.Equal(t, 2, cards[3].Count)
	assert.NotEmpty(t, cards[3].Description)
	assert.Equal(t, "Ability", cards[5].Kind)
}

func TestResultView(t *testing.T) {
	g, err := game.NewGame(game.Config{Players: []string{"Alice", "Bob"}, Seed: 9})
	require.NoError(t, err)
	res, err := g.PlayToCompletion(context.Background(), 5)
	require.NoError(t, err)

	rv := Result(res)

	assert.Equal(t, res.Winner, rv.Winner)
	assert.Equal(t, res.Reason, rv.Reason)
	assert.Len(t, rv.Standings, 2)
}
