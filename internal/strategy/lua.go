// Package strategy implements decision providers driven by Lua scripts.
//
// A script defines any of these global functions; every question it leaves
// out is answered by a game.RandomProvider:
//
//	choose_action(ctx, state)               -> "cooperate" | "deceive"
//	choose_target(ctx, candidates, state)   -> 1-based index into candidates
//	choose_discard(ctx, cards, count, state) -> table of 1-based indices
//	yes_no(question, state)                 -> boolean
//	choose_option(question, options, state) -> 1-based index into options
//
// ctx is the tile or prompt context name (e.g. "HawkDove"); question is a
// snake_case key such as "convert_points". state describes the deciding
// seat and a summary of every other seat. The global function roll(n)
// returns a number in [1, n] drawn from the game's seeded PRNG, so scripted
// games stay reproducible.
package strategy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
)

var questionKeys = map[game.Question]string{
	game.QuestionStrategyShift:     "strategy_shift",
	game.QuestionDisasterTransfer:  "disaster_transfer",
	game.QuestionBlockDeceiver:     "block_deceiver",
	game.QuestionDefenseMechanism:  "defense_mechanism",
	game.QuestionOpportunist:       "opportunist",
	game.QuestionTacticalUpgrade:   "tactical_upgrade",
	game.QuestionEcoEngineering:    "eco_engineering",
	game.QuestionConvertPoints:     "convert_points",
	game.QuestionPlayEvent:         "play_event",
	game.QuestionActivateAbility:   "activate_ability",
	game.QuestionRedeemChallenge:   "redeem_challenge",
	game.QuestionInvestigate:       "investigate",
	game.QuestionConvertAmount:     "convert_amount",
	game.QuestionChooseEvent:       "choose_event",
	game.QuestionTakeAbility:       "take_ability",
	game.QuestionKeepEvent:         "keep_event",
	game.QuestionOrderEvents:       "order_events",
	game.QuestionRetypeTile:        "retype_tile",
	game.QuestionRetypeType:        "retype_type",
	game.QuestionSpaceJump:         "space_jump",
	game.QuestionInvestigationDraw: "investigation_draw",
}

// QuestionKey is the name a script sees for q.
func QuestionKey(q game.Question) string {
	if k, ok := questionKeys[q]; ok {
		return k
	}
	return "unknown"
}

// LuaProvider implements game.DecisionProvider by calling into a Lua state.
// One provider may serve several seats; calls are serialized.
type LuaProvider struct {
	mu       sync.Mutex
	state    *lua.State
	name     string
	fallback *game.RandomProvider
	game     *game.Game // game of the call in progress, for roll()
}

// NewLuaProvider runs source and returns a provider backed by the functions
// it defines. name identifies the script in error messages.
func NewLuaProvider(name, source string) (*LuaProvider, error) {
	p := newProvider(name)
	if err := lua.DoString(p.state, source); err != nil {
		return nil, fmt.Errorf("load lua strategy %s: %w", name, err)
	}
	return p, nil
}

// LoadLuaProvider runs the script at path.
func LoadLuaProvider(path string) (*LuaProvider, error) {
	p := newProvider(path)
	if err := lua.DoFile(p.state, path); err != nil {
		return nil, fmt.Errorf("load lua strategy %s: %w", path, err)
	}
	return p, nil
}

func newProvider(name string) *LuaProvider {
	p := &LuaProvider{
		state:    lua.NewState(),
		name:     name,
		fallback: game.NewRandomProvider(),
	}
	lua.OpenLibraries(p.state)
	p.state.Register("roll", p.roll)
	return p
}

func (p *LuaProvider) roll(l *lua.State) int {
	n := lua.CheckInteger(l, 1)
	if n < 1 || p.game == nil {
		l.PushInteger(1)
		return 1
	}
	l.PushInteger(p.game.Rand().Intn(n) + 1)
	return 1
}

// Has reports whether the script defines the global function fn.
func (p *LuaProvider) Has(fn string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.has(fn)
}

func (p *LuaProvider) has(fn string) bool {
	p.state.Global(fn)
	defer p.state.Pop(1)
	return p.state.IsFunction(-1)
}

// call invokes fn with the arguments pushed by push and leaves one result on
// the stack. It reports false when the script does not define fn.
func (p *LuaProvider) call(g *game.Game, fn string, push func(l *lua.State) int) (bool, error) {
	if !p.has(fn) {
		return false, nil
	}
	p.game = g
	p.state.Global(fn)
	nargs := push(p.state)
	if err := p.state.ProtectedCall(nargs, 1, 0); err != nil {
		p.game = nil
		return true, fmt.Errorf("lua %s: %s: %w", p.name, fn, err)
	}
	p.game = nil
	return true, nil
}

func (p *LuaProvider) ChooseAction(ctx context.Context, g *game.Game, pl *game.Player, c game.Context) (game.Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ok, err := p.call(g, "choose_action", func(l *lua.State) int {
		l.PushString(c.String())
		pushState(l, g, pl)
		return 2
	})
	if err != nil {
		return game.ActionCooperate, err
	}
	if !ok {
		return p.fallback.ChooseAction(ctx, g, pl, c)
	}
	defer p.state.Pop(1)
	s, _ := p.state.ToString(-1)
	if strings.EqualFold(s, "deceive") {
		return game.ActionDeceive, nil
	}
	return game.ActionCooperate, nil
}

func (p *LuaProvider) ChooseTarget(ctx context.Context, g *game.Game, pl *game.Player, candidates []*game.Player, c game.Context) (*game.Player, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ok, err := p.call(g, "choose_target", func(l *lua.State) int {
		l.PushString(c.String())
		l.NewTable()
		for i, cand := range candidates {
			pushPlayer(l, g, cand)
			l.RawSetInt(-2, i+1)
		}
		pushState(l, g, pl)
		return 3
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.fallback.ChooseTarget(ctx, g, pl, candidates, c)
	}
	defer p.state.Pop(1)
	i, _ := p.state.ToInteger(-1)
	if i < 1 || i > len(candidates) {
		return candidates[0], nil
	}
	return candidates[i-1], nil
}

func (p *LuaProvider) ChooseDiscard(ctx context.Context, g *game.Game, pl *game.Player, cards []*game.Card, count int, c game.Context) ([]*game.Card, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ok, err := p.call(g, "choose_discard", func(l *lua.State) int {
		l.PushString(c.String())
		l.NewTable()
		for i, card := range cards {
			l.NewTable()
			l.PushString(card.Kind.String())
			l.SetField(-2, "kind")
			l.PushString(card.Name)
			l.SetField(-2, "name")
			l.RawSetInt(-2, i+1)
		}
		l.PushInteger(count)
		pushState(l, g, pl)
		return 4
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.fallback.ChooseDiscard(ctx, g, pl, cards, count, c)
	}
	defer p.state.Pop(1)
	var out []*game.Card
	if !p.state.IsTable(-1) {
		return out, nil
	}
	n := p.state.RawLength(-1)
	for k := 1; k <= n; k++ {
		p.state.RawGetInt(-1, k)
		i, _ := p.state.ToInteger(-1)
		p.state.Pop(1)
		if i >= 1 && i <= len(cards) {
			out = append(out, cards[i-1])
		}
	}
	return out, nil
}

func (p *LuaProvider) ChooseYesNo(ctx context.Context, g *game.Game, pl *game.Player, q game.Question) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ok, err := p.call(g, "yes_no", func(l *lua.State) int {
		l.PushString(QuestionKey(q))
		pushState(l, g, pl)
		return 2
	})
	if err != nil {
		return false, err
	}
	if !ok {
		return p.fallback.ChooseYesNo(ctx, g, pl, q)
	}
	defer p.state.Pop(1)
	return p.state.ToBoolean(-1), nil
}

func (p *LuaProvider) ChooseOption(ctx context.Context, g *game.Game, pl *game.Player, q game.Question, options []string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ok, err := p.call(g, "choose_option", func(l *lua.State) int {
		l.PushString(QuestionKey(q))
		l.NewTable()
		for i, o := range options {
			l.PushString(o)
			l.RawSetInt(-2, i+1)
		}
		pushState(l, g, pl)
		return 3
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return p.fallback.ChooseOption(ctx, g, pl, q, options)
	}
	defer p.state.Pop(1)
	i, _ := p.state.ToInteger(-1)
	return i - 1, nil
}

func (p *LuaProvider) Notify(context.Context, log.GameEvent) error {
	return nil
}

// --- Tables handed to scripts ---

func pushPlayer(l *lua.State, g *game.Game, pl *game.Player) {
	l.NewTable()
	l.PushInteger(pl.ID)
	l.SetField(-2, "seat")
	l.PushString(pl.Name)
	l.SetField(-2, "name")
	l.PushInteger(pl.Position)
	l.SetField(-2, "position")
	l.PushString(g.Board.TileAt(pl.Position).Type.String())
	l.SetField(-2, "tile")
	l.PushInteger(pl.EvolutionCount())
	l.SetField(-2, "evolution")
	l.PushInteger(pl.Count(game.KindCooperation))
	l.SetField(-2, "cooperation")
	l.PushInteger(pl.Count(game.KindDeception))
	l.SetField(-2, "deception")
	l.PushInteger(pl.Points)
	l.SetField(-2, "points")
	l.PushBoolean(pl.Eliminated)
	l.SetField(-2, "eliminated")
}

// pushState pushes the deciding seat's view: its own fields plus target,
// hand_limit, turn, round and a players list.
func pushState(l *lua.State, g *game.Game, pl *game.Player) {
	pushPlayer(l, g, pl)
	l.PushInteger(g.VictoryTarget(pl))
	l.SetField(-2, "target")
	l.PushInteger(pl.HandLimit())
	l.SetField(-2, "hand_limit")
	l.PushInteger(pl.Count(game.KindEvent))
	l.SetField(-2, "events")
	l.PushInteger(g.Turn)
	l.SetField(-2, "turn")
	l.PushInteger(g.Round)
	l.SetField(-2, "round")
	l.NewTable()
	for i, other := range g.Players {
		pushPlayer(l, g, other)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "players")
}
