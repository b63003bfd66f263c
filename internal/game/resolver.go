package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/evogame/internal/log"
)

// maxResolveDepth bounds nested tile resolutions (Rich Land, Group Migration
// and friends resolving tiles that draw further events).
const maxResolveDepth = 3

// payoff is a two-player cooperate/deceive payoff table.
type payoff struct {
	mutual     int // points each on C/C
	sucker     int // points for the cooperator on C/D
	temptation int // evolution cards for the deceiver on C/D
	punish     int // evolution cards each forfeits on D/D
}

var (
	trustPayoff    = payoff{mutual: 2, sucker: 1, temptation: 3, punish: 1}
	hawkDovePayoff = payoff{mutual: 2, sucker: 1, temptation: 3, punish: 2}
)

// resolveTile runs the resolver for the tile p stands on.
func (g *Game) resolveTile(ctx context.Context, p *Player) error {
	if g.Over || p.Eliminated {
		return nil
	}
	if g.depth >= maxResolveDepth {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s: nested tile resolution limit reached", p.Name)))
		return nil
	}
	g.depth++
	defer func() { g.depth-- }()

	tile := g.Board.TileAt(p.Position).Type
	eff := g.effectiveTile(tile)
	prev := g.phase
	g.phase = eff.String()
	defer func() { g.phase = prev }()

	name := tile.String()
	if eff != tile {
		name = fmt.Sprintf("%s (as %s)", tile, eff)
	}
	g.log(log.NewTileEvent(p.ID, p.Name, name))

	switch eff {
	case TileTrustEvolution:
		return g.resolveTrust(ctx, p)
	case TileHawkDove:
		return g.resolveHawkDove(ctx, p)
	case TileResourceRich:
		return g.resolveResourceRich(ctx, p)
	case TileNaturalDisaster:
		return g.resolveDisaster(ctx, p)
	case TileCooperationSanctuary:
		return g.resolveSanctuary(ctx, p)
	case TileDeceptionSwamp:
		return g.resolveSwamp(ctx, p)
	case TileMutationEvent:
		return g.resolveMutation(ctx, p)
	case TileEvolutionLab:
		return g.resolveLab(ctx, p)
	case TileFinish:
		return g.resolveFinish(ctx, p)
	}
	return nil
}

// --- Declarations ---

// chooseDeclaration picks p's action without revealing it. A player holding
// neither kind abstains; a player holding one kind must play it.
func (g *Game) chooseDeclaration(ctx context.Context, p *Player, c Context, forced bool) (Action, error) {
	coop, dec := p.CanDeclare(ActionCooperate), p.CanDeclare(ActionDeceive)
	switch {
	case forced && dec:
		return ActionDeceive, nil
	case coop && dec:
		return g.askAction(ctx, p, c)
	case coop:
		return ActionCooperate, nil
	case dec:
		return ActionDeceive, nil
	}
	return ActionNone, nil
}

// declareAll collects one declaration per participant, runs BeforeReveal
// hooks, then reveals every declaration, consuming the matching card.
// forced (may be nil) must play Deceive and cannot flip.
func (g *Game) declareAll(ctx context.Context, players []*Player, c Context, forced *Player) ([]Action, error) {
	actions := make([]Action, len(players))
	for i, p := range players {
		a, err := g.chooseDeclaration(ctx, p, c, p == forced)
		if err != nil {
			return nil, err
		}
		actions[i] = a
	}

	for i, p := range players {
		if actions[i] == ActionNone || p == forced {
			continue
		}
		e := &Effect{Trigger: TriggerBeforeReveal, Context: c, Actor: p, Action: actions[i]}
		if err := g.dispatch(ctx, e); err != nil {
			return nil, err
		}
		if p.CanDeclare(e.Action) {
			actions[i] = e.Action
		}
	}

	for i, p := range players {
		a := actions[i]
		if a == ActionNone {
			g.log(log.NewAbstainEvent(p.ID, p.Name))
			continue
		}
		cards, err := p.RemoveCard(a.Kind(), 1)
		if err != nil {
			actions[i] = ActionNone
			continue
		}
		g.Decks[a.Kind()].Discard(cards...)
		g.log(log.NewDeclareEvent(p.ID, p.Name, a.String()))
		if err := g.dispatch(ctx, &Effect{Trigger: TriggerPlayed, Context: c, Actor: p, Action: a}); err != nil {
			return nil, err
		}
		if err := g.declareBonuses(ctx, p, a, c); err != nil {
			return nil, err
		}
	}
	return actions, nil
}

// declareBonuses applies the game-wide modifiers that pay out per declaration.
func (g *Game) declareBonuses(ctx context.Context, p *Player, a Action, c Context) error {
	if a == ActionDeceive {
		if g.hasModifier(ModDeceptionCarnival) {
			if err := g.gainEvolution(ctx, p, 2, ModDeceptionCarnival.String()); err != nil {
				return err
			}
		}
		if g.hasModifier(ModDeterioration) && p.StrategyCount() > 0 {
			chosen, err := g.askDiscard(ctx, p, p.StrategyCards(), 1, c)
			if err != nil {
				return err
			}
			for _, card := range chosen {
				g.discard(p, card, ModDeterioration.String())
			}
		}
		return nil
	}

	if g.hasModifier(ModCooperationWave) {
		if err := g.gainEvolution(ctx, p, 1, ModCooperationWave.String()); err != nil {
			return err
		}
	}
	if g.hasModifier(ModPleasantClimate) {
		if err := g.gainEvolution(ctx, p, 1, ModPleasantClimate.String()); err != nil {
			return err
		}
	}
	if p.PopulationBoom {
		p.PopulationBoom = false
		return g.gainEvolution(ctx, p, 3, "Population Boom")
	}
	return nil
}

// settle applies a two-player payoff table and the Outcome hooks of both sides.
func (g *Game) settle(ctx context.Context, c Context, x *Player, ax Action, y *Player, ay Action, pay payoff) error {
	if ax == ActionNone || ay == ActionNone {
		g.log(log.NewSkipEvent(x.ID, fmt.Sprintf("%s vs %s: no contest", x.Name, y.Name)))
		return nil
	}
	reason := c.String()
	var err error
	switch {
	case ax == ActionCooperate && ay == ActionCooperate:
		g.addPoints(x, pay.mutual, reason)
		g.addPoints(y, pay.mutual, reason)
	case ax == ActionCooperate:
		g.addPoints(x, pay.sucker, reason)
		err = g.gainEvolution(ctx, y, pay.temptation, reason)
	case ay == ActionCooperate:
		g.addPoints(y, pay.sucker, reason)
		err = g.gainEvolution(ctx, x, pay.temptation, reason)
	default:
		if err = g.forfeit(ctx, x, pay.punish, c, ActionDeceive, reason); err == nil {
			err = g.forfeit(ctx, y, pay.punish, c, ActionDeceive, reason)
		}
	}
	if err != nil || g.Over {
		return err
	}
	if err := g.dispatch(ctx, &Effect{Trigger: TriggerOutcome, Context: c, Actor: x, Target: y, Action: ax}); err != nil {
		return err
	}
	return g.dispatch(ctx, &Effect{Trigger: TriggerOutcome, Context: c, Actor: y, Target: x, Action: ay})
}

func (g *Game) replenishAll(ctx context.Context, players []*Player, actions []Action) error {
	for i, p := range players {
		if g.Over {
			return nil
		}
		if err := g.replenish(ctx, p, actions[i]); err != nil {
			return err
		}
	}
	return nil
}

func split(players []*Player, actions []Action) (coops, decs []*Player) {
	for i, p := range players {
		switch actions[i] {
		case ActionCooperate:
			coops = append(coops, p)
		case ActionDeceive:
			decs = append(decs, p)
		}
	}
	return coops, decs
}

// --- Tiles ---

// resolveTrust: every active player targets another; mutual pairs play the
// trust payoff.
func (g *Game) resolveTrust(ctx context.Context, p *Player) error {
	active := g.activeFrom(p)
	if len(active) < 2 {
		g.log(log.NewSkipEvent(p.ID, "no one to trust"))
		return nil
	}

	targets := make(map[int]int, len(active))
	for _, q := range active {
		t, err := g.askTarget(ctx, q, g.Opponents(q), CtxTrustEvolution)
		if err != nil {
			return err
		}
		if t != nil {
			targets[q.ID] = t.ID
		}
	}
	e := &Effect{Trigger: TriggerTrustTargets, Context: CtxTrustEvolution, Actor: p, Targets: targets}
	if err := g.dispatch(ctx, e); err != nil {
		return err
	}

	var pairs [][]*Player
	paired := make(map[int]bool)
	for _, q := range active {
		t, ok := e.Targets[q.ID]
		if !ok {
			continue
		}
		g.log(log.NewTargetEvent(q.ID, q.Name, g.Players[t].Name, "trust"))
		if paired[q.ID] || paired[t] || t == q.ID {
			continue
		}
		if back, ok := e.Targets[t]; ok && back == q.ID {
			pairs = append(pairs, []*Player{q, g.Players[t]})
			paired[q.ID], paired[t] = true, true
		}
	}
	if len(pairs) == 0 {
		g.log(log.NewSkipEvent(p.ID, "no mutual trust this time"))
		return nil
	}

	for _, pair := range pairs {
		if g.Over {
			return nil
		}
		acts, err := g.declareAll(ctx, pair, CtxTrustEvolution, nil)
		if err != nil {
			return err
		}
		if err := g.settle(ctx, CtxTrustEvolution, pair[0], acts[0], pair[1], acts[1], trustPayoff); err != nil {
			return err
		}
		if err := g.replenishAll(ctx, pair, acts); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) resolveHawkDove(ctx context.Context, p *Player) error {
	if q := g.playerByID(p.FreeChallenge); q != nil && q != p {
		p.FreeChallenge = NoTarget
		return g.challenge(ctx, p, q, false, "free challenge")
	}
	if q := g.playerByID(p.ForcedOpponent); q != nil && q != p {
		forced := p.ForcedDeceive
		p.ForcedOpponent, p.ForcedDeceive = NoTarget, false
		return g.challenge(ctx, p, q, forced, "Natural Predator")
	}
	q, err := g.askTarget(ctx, p, g.Opponents(p), CtxHawkDove)
	if err != nil {
		return err
	}
	return g.challenge(ctx, p, q, false, "HawkDove")
}

// challenge plays one HawkDove game between p and opp.
func (g *Game) challenge(ctx context.Context, p, opp *Player, forced bool, reason string) error {
	if opp == nil {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s has no one to challenge", p.Name)))
		return nil
	}
	prev := g.phase
	g.phase = TileHawkDove.String()
	defer func() { g.phase = prev }()

	g.log(log.NewChallengeEvent(p.ID, p.Name, opp.Name, reason))
	var f *Player
	if forced {
		f = p
	}
	players := []*Player{p, opp}
	acts, err := g.declareAll(ctx, players, CtxHawkDove, f)
	if err != nil {
		return err
	}
	pa, pb := acts[0], acts[1]
	if g.hasModifier(ModTruce) && pa != ActionNone && pb != ActionNone {
		g.log(log.NewSkipEvent(p.ID, "Truce: the challenge pays as mutual cooperation"))
		pa, pb = ActionCooperate, ActionCooperate
	}
	if err := g.settle(ctx, CtxHawkDove, p, pa, opp, pb, hawkDovePayoff); err != nil {
		return err
	}
	return g.replenishAll(ctx, players, acts)
}

func (g *Game) resolveResourceRich(ctx context.Context, p *Player) error {
	players := g.activeFrom(p)
	acts, err := g.declareAll(ctx, players, CtxResourceRich, nil)
	if err != nil {
		return err
	}
	for i, q := range players {
		if g.Over {
			return nil
		}
		a := acts[i]
		if a == ActionNone {
			continue
		}
		e := &Effect{Trigger: TriggerDrawAmount, Context: CtxResourceRich, Actor: q, Action: a}
		if a == ActionCooperate {
			e.Amount = 2
		} else {
			e.Roll = g.rollDie()
			if e.Roll >= 5 {
				e.Amount = 4
			}
			g.log(log.NewRollEvent(q.ID, q.Name, e.Roll, "ResourceRich gamble"))
		}
		if err := g.dispatch(ctx, e); err != nil {
			return err
		}
		if e.Amount > 0 {
			if err := g.gainEvolution(ctx, q, e.Amount, "ResourceRich"); err != nil {
				return err
			}
		} else {
			g.log(log.NewSkipEvent(q.ID, fmt.Sprintf("%s comes away empty-handed", q.Name)))
		}
		if a == ActionCooperate {
			for _, m := range g.modifiersOf(ModEnergyAbsorption) {
				if owner := g.playerByID(m.Owner); owner != nil && owner != q {
					if err := g.gainEvolution(ctx, owner, 1, ModEnergyAbsorption.String()); err != nil {
						return err
					}
				}
			}
		}
	}
	return g.replenishAll(ctx, players, acts)
}

func (g *Game) resolveDisaster(ctx context.Context, p *Player) error {
	players := g.activeFrom(p)
	acts, err := g.declareAll(ctx, players, CtxNaturalDisaster, nil)
	if err != nil {
		return err
	}
	for i, q := range players {
		if g.Over {
			return nil
		}
		switch acts[i] {
		case ActionCooperate:
			g.log(log.NewSkipEvent(q.ID, fmt.Sprintf("%s shelters from the disaster", q.Name)))
		case ActionDeceive:
			if err := g.forfeit(ctx, q, 1, CtxNaturalDisaster, ActionDeceive, "NaturalDisaster"); err != nil {
				return err
			}
		default:
			continue
		}
		if err := g.dispatch(ctx, &Effect{Trigger: TriggerOutcome, Context: CtxNaturalDisaster, Actor: q, Action: acts[i]}); err != nil {
			return err
		}
		if acts[i] == ActionDeceive {
			if err := g.transferDisaster(ctx, q); err != nil {
				return err
			}
		}
	}
	return g.replenishAll(ctx, players, acts)
}

// transferDisaster lets a deceiver force another player to forfeit 1.
func (g *Game) transferDisaster(ctx context.Context, q *Player) error {
	candidates := g.Opponents(q)
	if len(candidates) == 0 || g.Over {
		return nil
	}
	yes, err := g.askYesNo(ctx, q, QuestionDisasterTransfer)
	if err != nil || !yes {
		return err
	}
	t, err := g.askTarget(ctx, q, candidates, CtxNaturalDisaster)
	if err != nil || t == nil {
		return err
	}
	g.log(log.NewTargetEvent(q.ID, q.Name, t.Name, "disaster transfer"))
	return g.forfeit(ctx, t, 1, CtxNaturalDisaster, ActionNone, fmt.Sprintf("disaster passed on by %s", q.Name))
}

func (g *Game) resolveSanctuary(ctx context.Context, p *Player) error {
	players := g.activeFrom(p)
	acts, err := g.declareAll(ctx, players, CtxSanctuary, nil)
	if err != nil {
		return err
	}
	coops, decs := split(players, acts)

	paired := make(map[*Player]bool)
	for _, c := range coops {
		if g.Over {
			return nil
		}
		if paired[c] {
			continue
		}
		var open []*Player
		for _, o := range coops {
			if o != c && !paired[o] {
				open = append(open, o)
			}
		}
		if len(open) == 0 {
			g.log(log.NewSkipEvent(c.ID, fmt.Sprintf("%s finds no partner", c.Name)))
			continue
		}
		partner, err := g.askTarget(ctx, c, open, CtxSanctuary)
		if err != nil {
			return err
		}
		paired[c], paired[partner] = true, true
		g.log(log.NewTargetEvent(c.ID, c.Name, partner.Name, "sanctuary partner"))
		if err := g.gainEvolution(ctx, c, 3, "CooperationSanctuary"); err != nil {
			return err
		}
		if err := g.gainEvolution(ctx, partner, 3, "CooperationSanctuary"); err != nil {
			return err
		}
		if g.Over {
			return nil
		}
		if err := g.dispatch(ctx, &Effect{Trigger: TriggerOutcome, Context: CtxSanctuary, Actor: c, Target: partner, Action: ActionCooperate}); err != nil {
			return err
		}
		if err := g.dispatch(ctx, &Effect{Trigger: TriggerOutcome, Context: CtxSanctuary, Actor: partner, Target: c, Action: ActionCooperate}); err != nil {
			return err
		}
	}

	next := g.playerByID(g.nextActive(g.Current))
	granted := false
	for _, d := range decs {
		if err := g.gainEvolution(ctx, d, 4, "CooperationSanctuary"); err != nil {
			return err
		}
		if !granted && next != nil && next != d {
			next.FreeChallenge = d.ID
			granted = true
			g.log(log.NewTargetEvent(next.ID, next.Name, d.Name, "free challenge stored"))
		}
	}
	return g.replenishAll(ctx, players, acts)
}

func (g *Game) resolveSwamp(ctx context.Context, p *Player) error {
	players := g.activeFrom(p)
	acts, err := g.declareAll(ctx, players, CtxSwamp, nil)
	if err != nil {
		return err
	}
	coops, decs := split(players, acts)

	blocked := make(map[*Player]bool)
	for _, c := range coops {
		if g.Over {
			return nil
		}
		var open []*Player
		for _, d := range decs {
			if !blocked[d] {
				open = append(open, d)
			}
		}
		if len(open) == 0 {
			break
		}
		yes, err := g.askYesNo(ctx, c, QuestionBlockDeceiver)
		if err != nil {
			return err
		}
		if !yes {
			continue
		}
		d, err := g.askTarget(ctx, c, open, CtxSwamp)
		if err != nil {
			return err
		}
		blocked[d] = true
		g.log(log.NewTargetEvent(c.ID, c.Name, d.Name, "blocks the swamp gain"))
		if err := g.gainEvolution(ctx, c, 1, "DeceptionSwamp block"); err != nil {
			return err
		}
	}

	for _, d := range decs {
		if g.Over {
			return nil
		}
		if blocked[d] {
			continue
		}
		e := &Effect{Trigger: TriggerSwampPeek, Context: CtxSwamp, Actor: d}
		if err := g.dispatch(ctx, e); err != nil {
			return err
		}
		if e.Blocked {
			continue
		}
		if err := g.takeAbility(ctx, d, 3); err != nil {
			return err
		}
	}
	if g.Over {
		return nil
	}
	if err := g.dispatch(ctx, &Effect{Trigger: TriggerSwampAfter, Context: CtxSwamp, Actor: p}); err != nil {
		return err
	}
	return g.replenishAll(ctx, players, acts)
}

func (g *Game) resolveMutation(ctx context.Context, p *Player) error {
	cards := g.Decks[KindEvent].Draw(1)
	if len(cards) == 0 {
		g.log(log.NewSkipEvent(p.ID, "event deck is empty"))
		return nil
	}
	return g.playEvent(ctx, p, cards[0])
}

func (g *Game) resolveLab(ctx context.Context, p *Player) error {
	if p.EvolutionCount() < 2 || g.Decks[KindAbility].IsEmpty() {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s cannot pay for an experiment", p.Name)))
		return nil
	}
	paid, err := p.RemoveCard(KindEvolution, 2)
	if err != nil {
		return nil
	}
	g.Decks[KindEvolution].Discard(paid...)
	g.log(log.NewForfeitEvent(p.ID, p.Name, len(paid), "EvolutionLab payment"))
	drawn := g.Decks[KindAbility].Draw(1)
	if len(drawn) == 0 {
		return nil
	}
	return g.acquireAbility(ctx, p, drawn[0])
}

func (g *Game) resolveFinish(ctx context.Context, p *Player) error {
	if p.VisitedFinish {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s has already visited the Finish", p.Name)))
		return nil
	}
	p.VisitedFinish = true
	g.addPoints(p, 2, "first Finish visit")
	return g.gainEvolution(ctx, p, 3, "first Finish visit")
}
