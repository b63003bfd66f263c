package game

import (
	"context"
	"testing"

	"github.com/peterkuimelis/evogame/internal/log"
)

// ScriptedProvider is a DecisionProvider that follows a predefined script.
// Used in tests to deterministically drive the game. When a script runs out
// it falls back to: Cooperate, first candidate, last cards, no, option 0.
type ScriptedProvider struct {
	t    *testing.T
	name string

	actions  []Action
	actPos   int
	targets  []string
	tgtPos   int
	discards []CardKind
	disPos   int
	yesNo    []bool
	ynPos    int
	options  []int
	optPos   int

	questions []Question // every yes/no or option question asked
	notified  int
}

func NewScriptedProvider(t *testing.T, name string) *ScriptedProvider {
	return &ScriptedProvider{t: t, name: name}
}

func (sp *ScriptedProvider) AddAction(actions ...Action) *ScriptedProvider {
	sp.actions = append(sp.actions, actions...)
	return sp
}

// AddTarget queues target choices by player name.
func (sp *ScriptedProvider) AddTarget(names ...string) *ScriptedProvider {
	sp.targets = append(sp.targets, names...)
	return sp
}

// AddDiscard queues discards by card kind.
func (sp *ScriptedProvider) AddDiscard(kinds ...CardKind) *ScriptedProvider {
	sp.discards = append(sp.discards, kinds...)
	return sp
}

func (sp *ScriptedProvider) AddYesNo(answers ...bool) *ScriptedProvider {
	sp.yesNo = append(sp.yesNo, answers...)
	return sp
}

func (sp *ScriptedProvider) AddOption(indices ...int) *ScriptedProvider {
	sp.options = append(sp.options, indices...)
	return sp
}

func (sp *ScriptedProvider) ChooseAction(ctx context.Context, g *Game, p *Player, c Context) (Action, error) {
	if sp.actPos >= len(sp.actions) {
		return ActionCooperate, nil
	}
	a := sp.actions[sp.actPos]
	sp.actPos++
	return a, nil
}

func (sp *ScriptedProvider) ChooseTarget(ctx context.Context, g *Game, p *Player, candidates []*Player, c Context) (*Player, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if sp.tgtPos >= len(sp.targets) {
		return candidates[0], nil
	}
	name := sp.targets[sp.tgtPos]
	sp.tgtPos++
	for _, cand := range candidates {
		if cand.Name == name {
			return cand, nil
		}
	}
	sp.t.Errorf("[%s] target %q not among candidates at %s", sp.name, name, c)
	return candidates[0], nil
}

func (sp *ScriptedProvider) ChooseDiscard(ctx context.Context, g *Game, p *Player, cards []*Card, count int, c Context) ([]*Card, error) {
	var out []*Card
	used := make(map[*Card]bool)
	for len(out) < count && sp.disPos < len(sp.discards) {
		kind := sp.discards[sp.disPos]
		sp.disPos++
		for _, card := range cards {
			if card.Kind == kind && !used[card] {
				out = append(out, card)
				used[card] = true
				break
			}
		}
	}
	for i := len(cards) - 1; i >= 0 && len(out) < count; i-- {
		if !used[cards[i]] {
			out = append(out, cards[i])
			used[cards[i]] = true
		}
	}
	return out, nil
}

func (sp *ScriptedProvider) ChooseYesNo(ctx context.Context, g *Game, p *Player, q Question) (bool, error) {
	sp.questions = append(sp.questions, q)
	if sp.ynPos >= len(sp.yesNo) {
		return false, nil
	}
	answer := sp.yesNo[sp.ynPos]
	sp.ynPos++
	return answer, nil
}

func (sp *ScriptedProvider) ChooseOption(ctx context.Context, g *Game, p *Player, q Question, options []string) (int, error) {
	sp.questions = append(sp.questions, q)
	if sp.optPos >= len(sp.options) {
		return 0, nil
	}
	i := sp.options[sp.optPos]
	sp.optPos++
	return i, nil
}

// asked counts how often q was put to this provider.
func (sp *ScriptedProvider) asked(q Question) int {
	n := 0
	for _, x := range sp.questions {
		if x == q {
			n++
		}
	}
	return n
}

func (sp *ScriptedProvider) Notify(ctx context.Context, event log.GameEvent) error {
	sp.notified++
	return nil
}

// --- Test game helpers ---

// quietLayout is a board where every ordinary tile is an EvolutionLab, which
// does nothing for players holding fewer than 2 evolution cards.
func quietLayout() []TileType {
	return []TileType{TileStart, TileEvolutionLab, TileEvolutionLab, TileEvolutionLab,
		TileEvolutionLab, TileEvolutionLab, TileEvolutionLab, TileFinish}
}

// testLayout holds one tile of every type.
func testLayout() []TileType {
	return []TileType{TileStart, TileTrustEvolution, TileHawkDove, TileResourceRich, TileNaturalDisaster,
		TileCooperationSanctuary, TileDeceptionSwamp, TileMutationEvent, TileEvolutionLab, TileFinish}
}

// newTestGame creates a deterministic game with empty hands, no environment
// step and no stagnation rule (it is opt-in), one ScriptedProvider per player.
func newTestGame(t *testing.T, layout []TileType, names ...string) (*Game, []*ScriptedProvider, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	var scripted []*ScriptedProvider
	var providers []DecisionProvider
	for _, n := range names {
		sp := NewScriptedProvider(t, n)
		scripted = append(scripted, sp)
		providers = append(providers, sp)
	}
	g, err := NewGame(Config{
		Players:       names,
		Providers:     providers,
		Logger:        logger,
		Seed:          1,
		Layout:        layout,
		NoShuffle:     true,
		NoDeal:        true,
		NoEnvironment: true,
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g, scripted, logger
}

// give moves n cards of kind from the deck into p's hand, bypassing the hand limit.
func give(t *testing.T, g *Game, p *Player, kind CardKind, n int) {
	t.Helper()
	cards := g.Decks[kind].Draw(n)
	if len(cards) != n {
		t.Fatalf("give: wanted %d %s cards, deck had %d", n, kind, len(cards))
	}
	for _, c := range cards {
		p.AddCard(c)
	}
}

// grantAbility gives p a freshly minted ability card and runs its Acquire hooks.
func grantAbility(t *testing.T, g *Game, p *Player, name string) *Card {
	t.Helper()
	def := LookupAbility(name)
	card := &Card{ID: 10000 + len(p.Abilities), Kind: KindAbility, Name: def.Name, Description: def.Description, Effect: def.Name}
	if err := g.acquireAbility(context.Background(), p, card); err != nil {
		t.Fatalf("acquire %s: %v", name, err)
	}
	return card
}

// playTestEvent resolves a named event for p through a fresh card.
func playTestEvent(t *testing.T, g *Game, p *Player, name string) {
	t.Helper()
	def := LookupEvent(name)
	card := &Card{ID: 20000, Kind: KindEvent, Name: def.Name, Effect: def.Name}
	if err := g.playEvent(context.Background(), p, card); err != nil {
		t.Fatalf("event %s: %v", name, err)
	}
}

// resolveAt puts p on the first tile of type tt and resolves it.
func resolveAt(t *testing.T, g *Game, p *Player, tt TileType) {
	t.Helper()
	pos, ok := g.Board.FindAny(tt)
	if !ok {
		t.Fatalf("no %s tile on the board", tt)
	}
	p.Position = pos
	if err := g.resolveTile(context.Background(), p); err != nil {
		t.Fatalf("resolve %s: %v", tt, err)
	}
}

// totalCards counts every card in decks, hands, set-aside piles and play areas.
func totalCards(g *Game) int {
	total := 0
	for _, d := range g.Decks {
		total += d.DrawCount() + d.DiscardCount() + d.RetiredCount()
	}
	for _, p := range g.Players {
		for _, k := range AllKinds {
			total += p.Count(k)
		}
		total += len(p.Abilities) + p.SetAsideCount()
	}
	return total
}

func dumpLog(t *testing.T, logger *log.MemoryLogger) {
	t.Helper()
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
}
