package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/peterkuimelis/evogame/internal/log"
)

// Config holds configuration for creating a new game.
type Config struct {
	Players   []string
	Providers []DecisionProvider // per seat; missing entries use a RandomProvider
	Logger    log.EventLogger

	Seed int64      // RNG seed (0 for random)
	Rand *rand.Rand // injected PRNG; overrides Seed

	MaxRounds         int        // 0 = DefaultMaxRounds
	BoardSize         int        // 0 = DefaultBoardSize
	Layout            []TileType // explicit board layout; overrides BoardSize
	VictoryTarget     int        // 0 = DefaultVictoryTarget
	StartingEvolution int        // 0 = DefaultStartingEvolution
	EnvironmentChance float64    // 0 = DefaultEnvironmentChance
	NoEnvironment     bool       // skip the EnvironmentChange step
	Stagnation        bool       // enable the optional stagnation rule
	Catalogue         *Catalogue // nil = StandardCatalogue()

	NoShuffle bool // skip the initial deck shuffle (for deterministic tests)
	NoDeal    bool // start with empty hands (for tests)
}

// Game is the whole mutable state of one play-through.
type Game struct {
	Players   []*Player
	Board     *Board
	Decks     map[CardKind]*Deck
	Current   int
	Direction Direction
	Turn      int
	Round     int
	Over      bool
	Winner    int // seat, or NoTarget
	Reason    string
	Seed      int64
	Logger    log.EventLogger

	providers      []DecisionProvider
	rng            *rand.Rand
	cfg            Config
	modifiers      []*Modifier
	lastEvent      string
	roundTurnsLeft int
	phase          string
	depth          int
	started        bool
	ctx            context.Context
}

// NewGame validates cfg, builds the decks and board and seats the players.
// Hands are dealt by Start (called implicitly by the first PlayTurn).
func NewGame(cfg Config) (*Game, error) {
	if len(cfg.Players) < MinPlayers {
		return nil, ErrNoPlayers
	}
	if len(cfg.Players) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyPlayers, len(cfg.Players), MaxPlayers)
	}

	cat := StandardCatalogue()
	if cfg.Catalogue != nil {
		cat = *cfg.Catalogue
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.VictoryTarget <= 0 {
		cfg.VictoryTarget = DefaultVictoryTarget
	}
	if cfg.StartingEvolution <= 0 {
		cfg.StartingEvolution = DefaultStartingEvolution
	}
	if cfg.EnvironmentChance <= 0 {
		cfg.EnvironmentChance = DefaultEnvironmentChance
	}
	layout := cfg.Layout
	if layout == nil {
		size := cfg.BoardSize
		if size <= 0 {
			size = DefaultBoardSize
		}
		layout = StandardLayout(size)
	}
	board, err := NewBoard(layout)
	if err != nil {
		return nil, err
	}

	g := &Game{
		Board:  board,
		Winner: NoTarget,
		Logger: cfg.Logger,
		cfg:    cfg,
	}
	if g.Logger == nil {
		g.Logger = log.NewMemoryLogger()
	}

	g.rng = cfg.Rand
	if g.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = NewSeed()
		}
		g.Seed = seed
		g.rng = rand.New(rand.NewSource(seed))
	}

	g.Decks = cat.buildDecks(g.rng, !cfg.NoShuffle)
	for _, d := range g.Decks {
		d.OnShuffle = func(kind CardKind, count int) {
			g.log(log.NewShuffleEvent(kind.String(), count))
		}
	}

	for i, name := range cfg.Players {
		g.Players = append(g.Players, NewPlayer(i, name))
		var p DecisionProvider
		if i < len(cfg.Providers) {
			p = cfg.Providers[i]
		}
		if p == nil {
			p = NewRandomProvider()
		}
		g.providers = append(g.providers, p)
	}
	return g, nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 1
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// Start deals the opening hands: StartingEvolution evolution cards each,
// then players-1 strategy cards split between the two kinds. Calling it
// again is a no-op.
func (g *Game) Start(ctx context.Context) error {
	if g.started {
		return nil
	}
	g.started = true
	if g.cfg.NoDeal {
		return nil
	}
	g.phase = "Setup"

	n := len(g.Players)
	coop := (n - 1) / 2
	dec := (n - 1) - coop
	for _, p := range g.Players {
		if err := g.gainEvolution(ctx, p, g.cfg.StartingEvolution, "opening hand"); err != nil {
			return err
		}
		if err := g.drawStrategy(ctx, p, KindCooperation, coop); err != nil {
			return err
		}
		if err := g.drawStrategy(ctx, p, KindDeception, dec); err != nil {
			return err
		}
	}
	return nil
}

// --- Accessors ---

// Rand returns the game's PRNG. Providers that need randomness must draw
// from it to keep seeded games reproducible.
func (g *Game) Rand() *rand.Rand {
	return g.rng
}

func (g *Game) Config() Config {
	return g.cfg
}

func (g *Game) CurrentPlayer() *Player {
	return g.Players[g.Current]
}

// Phase is the current turn stage or tile name.
func (g *Game) Phase() string {
	return g.phase
}

// LastEvent is the name of the last executed event handler (Effect Copy excluded).
func (g *Game) LastEvent() string {
	return g.lastEvent
}

// ActivePlayers returns the non-eliminated players in seat order.
func (g *Game) ActivePlayers() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// Opponents returns the active players other than p, in seat order.
func (g *Game) Opponents(p *Player) []*Player {
	var out []*Player
	for _, q := range g.Players {
		if q != p && !q.Eliminated {
			out = append(out, q)
		}
	}
	return out
}

// activeFrom returns the active players in seat order starting at p.
func (g *Game) activeFrom(p *Player) []*Player {
	var out []*Player
	n := len(g.Players)
	for i := 0; i < n; i++ {
		q := g.Players[(p.ID+i)%n]
		if !q.Eliminated {
			out = append(out, q)
		}
	}
	return out
}

// playerByID resolves a relation; eliminated or unset relations return nil.
func (g *Game) playerByID(id int) *Player {
	if id < 0 || id >= len(g.Players) || g.Players[id].Eliminated {
		return nil
	}
	return g.Players[id]
}

// VictoryTarget is the evolution count at which p wins immediately.
func (g *Game) VictoryTarget(p *Player) int {
	target := g.cfg.VictoryTarget - p.RequirementReduction
	if target < 1 {
		return 1
	}
	return target
}

// nextActive returns the seat after from in the current direction, skipping
// eliminated players, or NoTarget when nobody is left.
func (g *Game) nextActive(from int) int {
	n := len(g.Players)
	step := 1
	if g.Direction == Reverse {
		step = n - 1
	}
	for i := 1; i <= n; i++ {
		seat := (from + step*i) % n
		if !g.Players[seat].Eliminated {
			return seat
		}
	}
	return NoTarget
}

func (g *Game) rollDie() int {
	return g.rng.Intn(6) + 1
}

// log stamps the event with the turn, round and phase, records it and
// notifies every provider.
func (g *Game) log(event log.GameEvent) {
	event.Turn = g.Turn
	event.Round = g.Round
	if event.Phase == "" {
		event.Phase = g.phase
	}
	g.Logger.Log(event)
	ctx := g.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// Notify providers (ignore errors for notifications)
	notified := make(map[DecisionProvider]bool, len(g.providers))
	for _, p := range g.providers {
		if notified[p] {
			continue
		}
		notified[p] = true
		_ = p.Notify(ctx, event)
	}
}

// finish ends the game with a winner (or NoTarget).
func (g *Game) finish(winner *Player, reason string) {
	if g.Over {
		return
	}
	g.Over = true
	g.Reason = reason
	if winner == nil {
		g.log(log.NewNoWinnerEvent(reason))
		return
	}
	g.Winner = winner.ID
	g.log(log.NewWinEvent(winner.ID, winner.Name, reason))
}

// --- Results ---

// Standing summarizes one seat at the end of a game.
type Standing struct {
	Seat       int
	Name       string
	Evolution  int
	Points     int
	Abilities  []string
	Eliminated bool
}

// Result is the outcome of PlayToCompletion.
type Result struct {
	Winner     int // seat, or NoTarget
	WinnerName string
	Reason     string
	Rounds     int
	Turns      int
	Standings  []Standing
}

// Result reports the game's current outcome.
func (g *Game) Result() Result {
	r := Result{Winner: g.Winner, Reason: g.Reason, Rounds: g.Round, Turns: g.Turn}
	if g.Winner != NoTarget {
		r.WinnerName = g.Players[g.Winner].Name
	}
	for _, p := range g.Players {
		s := Standing{Seat: p.ID, Name: p.Name, Evolution: p.EvolutionCount(), Points: p.Points, Eliminated: p.Eliminated}
		for _, a := range p.Abilities {
			s.Abilities = append(s.Abilities, a.Name)
		}
		r.Standings = append(r.Standings, s)
	}
	return r
}
