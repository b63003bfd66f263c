package game

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/peterkuimelis/evogame/internal/log"
)

const tracerName = "github.com/peterkuimelis/evogame/internal/game"

// PlayTurn runs one full turn for the current player: RollAndMove,
// ResolveTile, OptionalActions, EnvironmentChange, EliminationCheck,
// VictoryCheck and Advance. Errors come only from decision providers or ctx.
func (g *Game) PlayTurn(ctx context.Context) error {
	if g.Over {
		return ErrGameOver
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.ctx = ctx
	if err := g.Start(ctx); err != nil {
		return err
	}
	if g.Over {
		return nil
	}
	if g.roundTurnsLeft <= 0 {
		g.startRound()
	}
	g.roundTurnsLeft--
	g.Turn++

	p := g.CurrentPlayer()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "evogame.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("turn", g.Turn),
			attribute.Int("round", g.Round),
			attribute.String("player", p.Name),
		),
	)
	defer span.End()

	if err := g.runTurn(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("tile", g.Board.TileAt(p.Position).Type.String()))
	return nil
}

func (g *Game) runTurn(ctx context.Context, p *Player) error {
	g.phase = "Start"
	g.log(log.NewTurnEvent(p.ID, p.Name, g.Turn))
	if err := g.startTurn(ctx, p); err != nil {
		return err
	}

	stages := []struct {
		name string
		run  func(context.Context, *Player) error
	}{
		{"RollAndMove", g.rollAndMove},
		{"OptionalActions", g.optionalActions},
		{"EnvironmentChange", g.environmentChange},
		{"EliminationCheck", g.eliminationCheck},
		{"VictoryCheck", g.victoryCheck},
	}
	for _, st := range stages {
		if g.Over {
			break
		}
		g.phase = st.name
		if err := st.run(ctx, p); err != nil {
			return err
		}
	}

	g.phase = "End"
	g.endTurn(p)
	if !g.Over {
		g.advance()
	}
	return nil
}

// startRound opens a new round and counts down round-based modifiers.
func (g *Game) startRound() {
	g.Round++
	g.phase = "Round"
	g.log(log.NewRoundEvent(g.Round))
	g.tickRound()
	g.roundTurnsLeft = len(g.ActivePlayers())
}

// startTurn clears per-turn state, expires the player's owner-turn modifiers
// and restores set-aside cards.
func (g *Game) startTurn(ctx context.Context, p *Player) error {
	p.ImmuneToDisaster = false
	p.ShiftUsed = false
	p.PopulationBoom = false
	g.expireModifiers(func(m *Modifier) bool {
		return m.Expiry == ExpireOwnerTurn && m.Owner == p.ID
	})
	restored := p.Restore()
	if len(restored) == 0 {
		return nil
	}
	for _, c := range restored {
		p.AddCard(c)
	}
	g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s takes back %d set-aside cards", p.Name, len(restored))))
	return g.enforceHandLimit(ctx, p)
}

func (g *Game) endTurn(p *Player) {
	p.ForcedOpponent, p.ForcedDeceive = NoTarget, false
	g.expireModifiers(func(m *Modifier) bool {
		return m.Expiry == ExpireEndOfTurn
	})
}

// rollAndMove moves p and resolves the tile it lands on. A pinned player
// stays put and resolves nothing.
func (g *Game) rollAndMove(ctx context.Context, p *Player) error {
	if p.CannotMoveNextTurn {
		p.CannotMoveNextTurn = false
		p.DoubleRoll = false
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s cannot move this turn", p.Name)))
	} else {
		e := &Effect{Trigger: TriggerRoll, Actor: p, Roll: g.rollDie()}
		if err := g.dispatch(ctx, e); err != nil {
			return err
		}
		steps, details := e.Roll, ""
		if p.DoubleRoll {
			p.DoubleRoll = false
			steps *= 2
			details = "doubled"
		}
		g.log(log.NewRollEvent(p.ID, p.Name, steps, details))
		g.moveBy(p, steps)
		if err := g.resolveTile(ctx, p); err != nil {
			return err
		}
	}

	// A Natural Predator challenge not consumed on a HawkDove tile is played now.
	if q := g.playerByID(p.ForcedOpponent); q != nil && q != p && !g.Over {
		forced := p.ForcedDeceive
		p.ForcedOpponent, p.ForcedDeceive = NoTarget, false
		return g.challenge(ctx, p, q, forced, "Natural Predator")
	}
	return nil
}

// --- OptionalActions ---

func (g *Game) optionalActions(ctx context.Context, p *Player) error {
	steps := []func(context.Context, *Player) error{
		g.convertPoints,
		g.playHeldEvent,
		g.activateAbilities,
		g.redeemChallenge,
		g.investigate,
	}
	for _, step := range steps {
		if g.Over || p.Eliminated {
			return nil
		}
		if err := step(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// convertPoints trades up to MaxConversionPerTurn points for evolution cards,
// one point per card actually delivered.
func (g *Game) convertPoints(ctx context.Context, p *Player) error {
	if p.Points <= 0 {
		return nil
	}
	yes, err := g.askYesNo(ctx, p, QuestionConvertPoints)
	if err != nil || !yes {
		return err
	}
	most := p.Points
	if most > MaxConversionPerTurn {
		most = MaxConversionPerTurn
	}
	options := make([]string, most)
	for i := range options {
		options[i] = strconv.Itoa(i + 1)
	}
	i, err := g.askOption(ctx, p, QuestionConvertAmount, options)
	if err != nil {
		return err
	}
	cards := g.Decks[KindEvolution].Draw(i + 1)
	if len(cards) == 0 {
		g.log(log.NewSkipEvent(p.ID, "evolution deck exhausted"))
		return nil
	}
	for _, c := range cards {
		p.AddCard(c)
	}
	p.Points -= len(cards)
	p.gained = true
	g.log(log.NewConvertEvent(p.ID, p.Name, len(cards), len(cards)))
	if g.checkVictory(p) {
		return nil
	}
	return g.enforceHandLimit(ctx, p)
}

func (g *Game) playHeldEvent(ctx context.Context, p *Player) error {
	held := p.Hand(KindEvent)
	if len(held) == 0 {
		return nil
	}
	yes, err := g.askYesNo(ctx, p, QuestionPlayEvent)
	if err != nil || !yes {
		return err
	}
	i, err := g.askOption(ctx, p, QuestionChooseEvent, cardNames(held))
	if err != nil {
		return err
	}
	p.RemoveSpecific(held[i])
	return g.playEvent(ctx, p, held[i])
}

func (g *Game) activateAbilities(ctx context.Context, p *Player) error {
	for _, card := range append([]*Card(nil), p.Abilities...) {
		def, ok := AbilityRegistry[card.Effect]
		if !ok || !def.Activatable() {
			continue
		}
		if len(g.Opponents(p)) == 0 {
			return nil
		}
		yes, err := g.askYesNo(ctx, p, QuestionActivateAbility)
		if err != nil {
			return err
		}
		if !yes {
			continue
		}
		if err := g.dispatchCard(ctx, p, card, &Effect{Trigger: TriggerActivate, Context: CtxOptional, Actor: p}); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) redeemChallenge(ctx context.Context, p *Player) error {
	if p.FreeChallenge == NoTarget {
		return nil
	}
	q := g.playerByID(p.FreeChallenge)
	if q == nil || q == p {
		p.FreeChallenge = NoTarget
		return nil
	}
	yes, err := g.askYesNo(ctx, p, QuestionRedeemChallenge)
	if err != nil || !yes {
		return err
	}
	p.FreeChallenge = NoTarget
	return g.challenge(ctx, p, q, false, "free challenge")
}

// investigate: discard 2 strategy cards (one of each kind when possible)
// and inspect a target. A target over its hand limit must discard down and
// the investigator draws 3 strategy cards of chosen kinds.
func (g *Game) investigate(ctx context.Context, p *Player) error {
	targets := g.Opponents(p)
	if p.StrategyCount() < 2 || len(targets) == 0 {
		return nil
	}
	yes, err := g.askYesNo(ctx, p, QuestionInvestigate)
	if err != nil || !yes {
		return err
	}
	prev := g.phase
	g.phase = "Investigation"
	defer func() { g.phase = prev }()

	if p.Count(KindCooperation) > 0 && p.Count(KindDeception) > 0 {
		g.discardKind(p, KindCooperation, 1, "investigation")
		g.discardKind(p, KindDeception, 1, "investigation")
	} else if p.Count(KindCooperation) >= 2 {
		g.discardKind(p, KindCooperation, 2, "investigation")
	} else {
		g.discardKind(p, KindDeception, 2, "investigation")
	}

	t, err := g.askTarget(ctx, p, targets, CtxInvestigation)
	if err != nil || t == nil {
		return err
	}
	g.log(log.NewRevealEvent(p.ID, p.Name, t.Name, fmt.Sprintf("%d strategy cards, hand limit %d, %d evolution cards",
		t.StrategyCount(), t.HandLimit(), t.EvolutionCount())))
	if t.Excess() == 0 {
		return nil
	}
	if err := g.enforceHandLimit(ctx, t); err != nil {
		return err
	}
	kinds := []CardKind{KindCooperation, KindDeception}
	options := []string{KindCooperation.String(), KindDeception.String()}
	for i := 0; i < 3 && !g.Over; i++ {
		pick, err := g.askOption(ctx, p, QuestionInvestigationDraw, options)
		if err != nil {
			return err
		}
		if err := g.drawStrategy(ctx, p, kinds[pick], 1); err != nil {
			return err
		}
	}
	return nil
}

// --- EnvironmentChange ---

func (g *Game) environmentChange(ctx context.Context, p *Player) error {
	if g.cfg.NoEnvironment || g.rng.Float64() >= g.cfg.EnvironmentChance {
		return nil
	}
	cards := g.Decks[KindEnvironment].Draw(1)
	if len(cards) == 0 {
		return nil
	}
	card := cards[0]
	defer g.Decks[KindEnvironment].Discard(card)
	g.log(log.NewEnvironmentEvent(p.ID, p.Name, card.Name))

	e := &Effect{Trigger: TriggerEnvironment, Context: CtxEnvironment, Actor: p}
	if err := g.dispatch(ctx, e); err != nil {
		return err
	}
	if !e.Blocked {
		if def, ok := EnvironmentRegistry[card.Effect]; ok {
			if err := def.Apply(ctx, g, p); err != nil {
				return fmt.Errorf("environment %s: %w", def.Name, err)
			}
		}
	}
	if g.Over {
		return nil
	}
	return g.dispatch(ctx, &Effect{Trigger: TriggerOutcome, Context: CtxEnvironment, Actor: p})
}

// --- EliminationCheck / VictoryCheck / Advance ---

func (g *Game) eliminationCheck(ctx context.Context, p *Player) error {
	for _, q := range g.ActivePlayers() {
		if q.EvolutionCount() > 0 {
			continue
		}
		e := &Effect{Trigger: TriggerElimination, Actor: q}
		if err := g.dispatch(ctx, e); err != nil {
			return err
		}
		if g.Over {
			return nil
		}
		if !e.Blocked && q.EvolutionCount() == 0 {
			g.eliminate(q, "no evolution cards left")
		}
	}

	if p.Eliminated {
		return nil
	}
	if p.gained {
		p.TurnsWithoutGain = 0
	} else {
		p.TurnsWithoutGain++
	}
	p.gained = false
	if !g.cfg.Stagnation || p.TurnsWithoutGain < StagnationLimit {
		return nil
	}
	e := &Effect{Trigger: TriggerStagnation, Actor: p}
	if err := g.dispatch(ctx, e); err != nil {
		return err
	}
	if !e.Blocked {
		g.eliminate(p, fmt.Sprintf("stagnated for %d turns", p.TurnsWithoutGain))
	}
	return nil
}

func (g *Game) eliminate(p *Player, reason string) {
	p.Eliminated = true
	g.log(log.NewEliminatedEvent(p.ID, p.Name, reason))
	g.expireModifiers(func(m *Modifier) bool {
		return m.Owner == p.ID && m.Expiry == ExpireOwnerTurn
	})
}

func (g *Game) victoryCheck(_ context.Context, _ *Player) error {
	for _, q := range g.ActivePlayers() {
		if g.checkVictory(q) {
			return nil
		}
	}
	switch active := g.ActivePlayers(); len(active) {
	case 0:
		g.finish(nil, "every player was eliminated")
	case 1:
		g.finish(active[0], "last player standing")
	}
	return nil
}

func (g *Game) advance() {
	next := g.nextActive(g.Current)
	if next == NoTarget {
		g.finish(nil, "no players left")
		return
	}
	g.Current = next
}

// --- Completion ---

// PlayToCompletion plays turns until the game ends or maxRounds complete
// rounds have been played; then the player with the most evolution cards
// wins. maxRounds <= 0 uses the configured limit.
func (g *Game) PlayToCompletion(ctx context.Context, maxRounds int) (Result, error) {
	if maxRounds <= 0 {
		maxRounds = g.cfg.MaxRounds
	}
	for !g.Over {
		if g.roundTurnsLeft <= 0 && g.Round >= maxRounds {
			if err := g.finishAtRoundLimit(ctx); err != nil {
				return g.Result(), err
			}
			break
		}
		if err := g.PlayTurn(ctx); err != nil {
			return g.Result(), err
		}
	}
	return g.Result(), nil
}

func (g *Game) finishAtRoundLimit(ctx context.Context) error {
	g.phase = "RoundLimit"
	most := -1
	var leaders []*Player
	for _, p := range g.ActivePlayers() {
		switch n := p.EvolutionCount(); {
		case n > most:
			most, leaders = n, []*Player{p}
		case n == most:
			leaders = append(leaders, p)
		}
	}
	if len(leaders) == 0 {
		g.finish(nil, "round limit reached")
		return nil
	}
	winner, err := g.askTarget(ctx, g.CurrentPlayer(), leaders, CtxTieBreak)
	if err != nil {
		return err
	}
	g.finish(winner, fmt.Sprintf("most evolution cards (%d) after %d rounds", most, g.Round))
	return nil
}
