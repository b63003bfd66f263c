package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/peterkuimelis/evogame/internal/log"
)

const effectCopy = "Effect Copy"

func init() {
	registerEvents(
		event("Gene Mutation", "Draw 3 evolution cards; you cannot move next turn.", geneMutation),
		event("Group Migration", "Every player moves forward to the next tile of your tile's type and resolves it.", groupMigration),
		event("Natural Predator", "Choose a player: on their next turn they must challenge you in HawkDove and must Deceive.", naturalPredator),
		event("Mutualism", "You and a chosen player each draw 2 evolution cards.", mutualism),
		event("Natural Selection", "The player with the fewest evolution cards forfeits 2; tied players forfeit 1 each.", naturalSelection),
		event("Eco Collapse", "Everyone discards 1 Cooperation and 1 Deception card; missing cards are paid with event, then evolution cards.", ecoCollapse),
		event("Accelerated Evolution", "Draw 2 evolution cards, then move 2 tiles and resolve the new tile.", acceleratedEvolution),
		event("Predation", "Draw 1 evolution card; a chosen player forfeits 1.", predation),
		event("Environmental Tolerance", "You are immune to disasters until your next turn.", environmentalTolerance),
		event("Population Boom", "Your next Cooperate this turn draws 3 evolution cards.", populationBoom),
		event("Disease Spread", "Every player walks 4 tiles; each NaturalDisaster passed costs 1 evolution card on a roll of 4+.", diseaseSpread),
		event("Rich Land", "Resolve your current tile again.", richLand),
		event("Order Reversal", "Reverse the turn order.", orderReversal),
		event(effectCopy, "Replay the last executed event.", replayLastEvent),
		event("Energy Absorption", "For 3 rounds, whenever another player cooperates on ResourceRich, draw 1 evolution card.", energyAbsorption),
		event("Territory Struggle", "Every other player on your tile forfeits 1 evolution card.", territoryStruggle),
		event("Climate Upheaval", "Until your next turn ResourceRich and NaturalDisaster resolve as each other.", climateUpheaval),
		event("Movement Suppression", "Every other player cannot move on their next turn.", movementSuppression),
		event("Resource Scarcity", "Everyone forfeits half their evolution cards (rounded down).", resourceScarcity),
		event("Three-Way Game", "Choose two opponents; the three of you play pairwise HawkDove from one declaration each.", threeWayGame),
		event("Truce", "Until your next turn every HawkDove game pays as mutual cooperation.", truce),
		event("Deception Carnival", "For the rest of this round every Deceive declaration draws 2 evolution cards.", deceptionCarnival),
		event("Cooperation Wave", "For the rest of this round every Cooperate declaration draws 1 evolution card.", cooperationWave),
		event("Position Chaos", "The two players nearest you swap positions.", positionChaos),
		event("Foresight", "Look at the top 5 events, keep 1, return the rest in any order; draw 2 evolution cards.", foresight),
		event("Space Jump", "Move to Start or Finish and resolve it.", spaceJump),
		event("Competition Intensify", "The player with the most Deception cards discards them all and draws that many evolution cards.", competitionIntensify),
		event("Trust Loss", "Every player sets aside their Cooperation cards until their next turn.", trustLoss),
		event("Evolution Acceleration", "Your hand limit is permanently 3 higher.", evolutionAcceleration),
		event("Miracle", "Draw 5 evolution cards; your next roll is doubled.", miracle),
	)
}

func event(name, desc string, resolve func(ctx context.Context, g *Game, actor *Player) error) *EventDef {
	return &EventDef{Name: name, Description: desc, Resolve: resolve}
}

// playEvent executes an event card for p and discards it afterwards.
func (g *Game) playEvent(ctx context.Context, p *Player, card *Card) error {
	defer g.Decks[KindEvent].Discard(card)
	prev := g.phase
	g.phase = card.Name
	defer func() { g.phase = prev }()

	g.log(log.NewMutationEvent(p.ID, p.Name, card.Name))
	def, ok := EventRegistry[card.Effect]
	if !ok {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("no handler for %q", card.Effect)))
		return nil
	}
	if err := def.Resolve(ctx, g, p); err != nil {
		return fmt.Errorf("event %s: %w", def.Name, err)
	}
	if def.Name != effectCopy {
		g.lastEvent = def.Name
	}
	return nil
}

func geneMutation(ctx context.Context, g *Game, actor *Player) error {
	actor.CannotMoveNextTurn = true
	return g.gainEvolution(ctx, actor, 3, "Gene Mutation")
}

func groupMigration(ctx context.Context, g *Game, actor *Player) error {
	tile := g.Board.TileAt(actor.Position).Type
	for _, q := range g.activeFrom(actor) {
		if g.Over {
			return nil
		}
		pos, ok := g.Board.FindForward(tile, q.Position+1)
		if !ok {
			continue
		}
		g.moveTo(q, pos)
		if err := g.resolveTile(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func naturalPredator(ctx context.Context, g *Game, actor *Player) error {
	t, err := g.askTarget(ctx, actor, g.Opponents(actor), CtxMutation)
	if err != nil || t == nil {
		return err
	}
	t.ForcedOpponent = actor.ID
	t.ForcedDeceive = true
	g.log(log.NewTargetEvent(actor.ID, actor.Name, t.Name, "must challenge next turn"))
	return nil
}

func mutualism(ctx context.Context, g *Game, actor *Player) error {
	t, err := g.askTarget(ctx, actor, g.Opponents(actor), CtxMutation)
	if err != nil {
		return err
	}
	if err := g.gainEvolution(ctx, actor, 2, "Mutualism"); err != nil || t == nil {
		return err
	}
	return g.gainEvolution(ctx, t, 2, "Mutualism")
}

func naturalSelection(ctx context.Context, g *Game, _ *Player) error {
	active := g.ActivePlayers()
	low := -1
	for _, p := range active {
		if low < 0 || p.EvolutionCount() < low {
			low = p.EvolutionCount()
		}
	}
	var weakest []*Player
	for _, p := range active {
		if p.EvolutionCount() == low {
			weakest = append(weakest, p)
		}
	}
	n := 1
	if len(weakest) == 1 {
		n = 2
	}
	for _, p := range weakest {
		if err := g.forfeit(ctx, p, n, CtxMutation, ActionNone, "Natural Selection"); err != nil {
			return err
		}
	}
	return nil
}

func ecoCollapse(ctx context.Context, g *Game, actor *Player) error {
	for _, q := range g.activeFrom(actor) {
		for _, kind := range []CardKind{KindCooperation, KindDeception} {
			if g.discardKind(q, kind, 1, "Eco Collapse") == 1 {
				continue
			}
			if g.discardKind(q, KindEvent, 1, "Eco Collapse") == 1 {
				continue
			}
			if err := g.forfeit(ctx, q, 1, CtxMutation, ActionNone, "Eco Collapse"); err != nil {
				return err
			}
		}
	}
	return nil
}

func acceleratedEvolution(ctx context.Context, g *Game, actor *Player) error {
	if err := g.gainEvolution(ctx, actor, 2, "Accelerated Evolution"); err != nil || g.Over {
		return err
	}
	g.moveBy(actor, 2)
	return g.resolveTile(ctx, actor)
}

func predation(ctx context.Context, g *Game, actor *Player) error {
	if err := g.gainEvolution(ctx, actor, 1, "Predation"); err != nil || g.Over {
		return err
	}
	t, err := g.askTarget(ctx, actor, g.Opponents(actor), CtxMutation)
	if err != nil || t == nil {
		return err
	}
	return g.forfeit(ctx, t, 1, CtxMutation, ActionNone, fmt.Sprintf("preyed on by %s", actor.Name))
}

func environmentalTolerance(_ context.Context, g *Game, actor *Player) error {
	actor.ImmuneToDisaster = true
	g.log(log.NewSkipEvent(actor.ID, fmt.Sprintf("%s is immune to disaster until their next turn", actor.Name)))
	return nil
}

func populationBoom(_ context.Context, g *Game, actor *Player) error {
	actor.PopulationBoom = true
	g.log(log.NewSkipEvent(actor.ID, fmt.Sprintf("%s's next Cooperate this turn draws 3", actor.Name)))
	return nil
}

func diseaseSpread(ctx context.Context, g *Game, actor *Player) error {
	for _, q := range g.activeFrom(actor) {
		for step := 1; step <= 4; step++ {
			if g.Over {
				return nil
			}
			if g.Board.TileAt(q.Position+step).Type != TileNaturalDisaster {
				continue
			}
			roll := g.rollDie()
			g.log(log.NewRollEvent(q.ID, q.Name, roll, "disease"))
			if roll >= 4 {
				if err := g.forfeit(ctx, q, 1, CtxNaturalDisaster, ActionNone, "Disease Spread"); err != nil {
					return err
				}
			}
		}
		g.moveBy(q, 4)
	}
	return nil
}

func richLand(ctx context.Context, g *Game, actor *Player) error {
	return g.resolveTile(ctx, actor)
}

func orderReversal(_ context.Context, g *Game, _ *Player) error {
	if g.Direction == Forward {
		g.Direction = Reverse
	} else {
		g.Direction = Forward
	}
	g.log(log.NewDirectionEvent(g.Direction.String()))
	return nil
}

func replayLastEvent(ctx context.Context, g *Game, actor *Player) error {
	def, ok := EventRegistry[g.lastEvent]
	if !ok || def.Name == effectCopy {
		g.log(log.NewSkipEvent(actor.ID, "no event to copy"))
		return nil
	}
	g.log(log.NewMutationEvent(actor.ID, actor.Name, def.Name))
	return def.Resolve(ctx, g, actor)
}

func energyAbsorption(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModEnergyAbsorption, actor, ExpireRounds, 3)
	return nil
}

func territoryStruggle(ctx context.Context, g *Game, actor *Player) error {
	for _, q := range g.Opponents(actor) {
		if q.Position != actor.Position {
			continue
		}
		if err := g.forfeit(ctx, q, 1, CtxMutation, ActionNone, "Territory Struggle"); err != nil {
			return err
		}
	}
	return nil
}

func climateUpheaval(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModClimateUpheaval, actor, ExpireOwnerTurn, 0)
	return nil
}

func movementSuppression(_ context.Context, g *Game, actor *Player) error {
	for _, q := range g.Opponents(actor) {
		q.CannotMoveNextTurn = true
	}
	g.log(log.NewSkipEvent(actor.ID, "every other player is pinned for a turn"))
	return nil
}

func resourceScarcity(ctx context.Context, g *Game, actor *Player) error {
	for _, q := range g.activeFrom(actor) {
		if err := g.forfeit(ctx, q, q.EvolutionCount()/2, CtxMutation, ActionNone, "Resource Scarcity"); err != nil {
			return err
		}
	}
	return nil
}

func threeWayGame(ctx context.Context, g *Game, actor *Player) error {
	candidates := g.Opponents(actor)
	first, err := g.askTarget(ctx, actor, candidates, CtxHawkDove)
	if err != nil || first == nil {
		return err
	}
	var rest []*Player
	for _, c := range candidates {
		if c != first {
			rest = append(rest, c)
		}
	}
	second, err := g.askTarget(ctx, actor, rest, CtxHawkDove)
	if err != nil {
		return err
	}
	if second == nil {
		return g.challenge(ctx, actor, first, false, "Three-Way Game")
	}

	players := []*Player{actor, first, second}
	g.log(log.NewChallengeEvent(actor.ID, actor.Name, first.Name+" and "+second.Name, "Three-Way Game"))
	acts, err := g.declareAll(ctx, players, CtxHawkDove, nil)
	if err != nil {
		return err
	}
	pay := acts
	if g.hasModifier(ModTruce) {
		pay = make([]Action, len(acts))
		for i, a := range acts {
			if a != ActionNone {
				pay[i] = ActionCooperate
			}
		}
	}
	for _, pair := range [][2]int{{0, 1}, {0, 2}, {1, 2}} {
		if g.Over {
			return nil
		}
		x, y := pair[0], pair[1]
		if err := g.settle(ctx, CtxHawkDove, players[x], pay[x], players[y], pay[y], hawkDovePayoff); err != nil {
			return err
		}
	}
	return g.replenishAll(ctx, players, acts)
}

func truce(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModTruce, actor, ExpireOwnerTurn, 0)
	return nil
}

func deceptionCarnival(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModDeceptionCarnival, actor, ExpireRounds, 1)
	return nil
}

func cooperationWave(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModCooperationWave, actor, ExpireRounds, 1)
	return nil
}

func positionChaos(_ context.Context, g *Game, actor *Player) error {
	others := g.Opponents(actor)
	if len(others) < 2 {
		g.log(log.NewSkipEvent(actor.ID, "not enough players to shuffle"))
		return nil
	}
	sort.SliceStable(others, func(i, j int) bool {
		return g.Board.Distance(others[i].Position, actor.Position) < g.Board.Distance(others[j].Position, actor.Position)
	})
	a, b := others[0], others[1]
	pa, pb := a.Position, b.Position
	g.moveTo(a, pb)
	g.moveTo(b, pa)
	return nil
}

func foresight(ctx context.Context, g *Game, actor *Player) error {
	deck := g.Decks[KindEvent]
	peek := g.peek(KindEvent, 5)
	if len(peek) > 0 {
		for _, c := range peek {
			deck.Take(c)
		}
		keep, err := g.askOption(ctx, actor, QuestionKeepEvent, cardNames(peek))
		if err != nil {
			return err
		}
		actor.AddCard(peek[keep])
		g.log(log.NewRevealEvent(actor.ID, actor.Name, "the event deck", fmt.Sprintf("keeps %s", peek[keep].Name)))

		rest := append(append([]*Card(nil), peek[:keep]...), peek[keep+1:]...)
		var ordered []*Card
		for len(rest) > 0 {
			i, err := g.askOption(ctx, actor, QuestionOrderEvents, cardNames(rest))
			if err != nil {
				return err
			}
			ordered = append(ordered, rest[i])
			rest = append(rest[:i], rest[i+1:]...)
		}
		deck.PutTop(ordered)
	}
	return g.gainEvolution(ctx, actor, 2, "Foresight")
}

func spaceJump(ctx context.Context, g *Game, actor *Player) error {
	dests := []TileType{TileStart, TileFinish}
	i, err := g.askOption(ctx, actor, QuestionSpaceJump, []string{TileStart.String(), TileFinish.String()})
	if err != nil {
		return err
	}
	pos, ok := g.Board.FindAny(dests[i])
	if !ok {
		return nil
	}
	g.moveTo(actor, pos)
	return g.resolveTile(ctx, actor)
}

func competitionIntensify(ctx context.Context, g *Game, actor *Player) error {
	most := 0
	for _, q := range g.ActivePlayers() {
		if n := q.Count(KindDeception); n > most {
			most = n
		}
	}
	if most == 0 {
		g.log(log.NewSkipEvent(actor.ID, "nobody holds Deception cards"))
		return nil
	}
	var tied []*Player
	for _, q := range g.activeFrom(actor) {
		if q.Count(KindDeception) == most {
			tied = append(tied, q)
		}
	}
	t, err := g.askTarget(ctx, actor, tied, CtxTieBreak)
	if err != nil || t == nil {
		return err
	}
	n := g.discardKind(t, KindDeception, most, "Competition Intensify")
	return g.gainEvolution(ctx, t, n, "Competition Intensify")
}

func trustLoss(_ context.Context, g *Game, actor *Player) error {
	for _, q := range g.activeFrom(actor) {
		if n := q.SetAside(KindCooperation); n > 0 {
			g.log(log.NewSkipEvent(q.ID, fmt.Sprintf("%s sets aside %d Cooperation cards", q.Name, n)))
		}
	}
	return nil
}

func evolutionAcceleration(_ context.Context, g *Game, actor *Player) error {
	actor.HandLimitBonus += 3
	g.log(log.NewSkipEvent(actor.ID, fmt.Sprintf("%s's hand limit is now %d", actor.Name, actor.HandLimit())))
	return nil
}

func miracle(ctx context.Context, g *Game, actor *Player) error {
	actor.DoubleRoll = true
	return g.gainEvolution(ctx, actor, 5, "Miracle")
}

func cardNames(cards []*Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return names
}
