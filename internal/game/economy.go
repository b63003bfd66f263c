package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/evogame/internal/log"
)

// gainEvolution draws up to n evolution cards for p, checks for immediate
// victory and enforces the hand limit. Draw shortfalls under-deliver.
func (g *Game) gainEvolution(ctx context.Context, p *Player, n int, reason string) error {
	if n <= 0 || g.Over || p.Eliminated {
		return nil
	}
	cards := g.Decks[KindEvolution].Draw(n)
	if len(cards) == 0 {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s draws nothing: evolution deck exhausted", p.Name)))
		return nil
	}
	for _, c := range cards {
		p.AddCard(c)
	}
	p.gained = true
	g.log(log.NewEvolutionGainEvent(p.ID, p.Name, len(cards), reason))
	if g.checkVictory(p) {
		return nil
	}
	return g.enforceHandLimit(ctx, p)
}

// drawStrategy draws up to n strategy cards of one kind for p.
func (g *Game) drawStrategy(ctx context.Context, p *Player, kind CardKind, n int) error {
	if n <= 0 || g.Over {
		return nil
	}
	for _, c := range g.Decks[kind].Draw(n) {
		p.AddCard(c)
		g.log(log.NewReplenishEvent(p.ID, p.Name, kind.String()))
	}
	return g.enforceHandLimit(ctx, p)
}

// replenish gives a participant one card of the kind it played.
func (g *Game) replenish(ctx context.Context, p *Player, a Action) error {
	if a == ActionNone || p.Eliminated {
		return nil
	}
	return g.drawStrategy(ctx, p, a.Kind(), 1)
}

// forfeit removes up to n evolution cards from p after Forfeit hooks have
// adjusted the amount. The count is clamped to what p holds.
func (g *Game) forfeit(ctx context.Context, p *Player, n int, c Context, a Action, reason string) error {
	if n <= 0 || g.Over || p.Eliminated {
		return nil
	}
	if c == CtxNaturalDisaster && p.ImmuneToDisaster {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s is immune to disaster", p.Name)))
		return nil
	}
	e := &Effect{Trigger: TriggerForfeit, Context: c, Actor: p, Action: a, Amount: n}
	if err := g.dispatch(ctx, e); err != nil {
		return err
	}
	n = e.Amount
	if held := p.EvolutionCount(); n > held {
		n = held
	}
	if n <= 0 {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s loses nothing (%s)", p.Name, reason)))
		return nil
	}
	cards, err := p.RemoveCard(KindEvolution, n)
	if err != nil {
		return nil
	}
	g.Decks[KindEvolution].Discard(cards...)
	g.log(log.NewForfeitEvent(p.ID, p.Name, len(cards), reason))
	return nil
}

func (g *Game) addPoints(p *Player, n int, reason string) {
	if n <= 0 || g.Over {
		return
	}
	p.Points += n
	g.log(log.NewPointsEvent(p.ID, p.Name, n, p.Points, reason))
}

// discard moves a held card to its deck's discard pile.
func (g *Game) discard(p *Player, c *Card, reason string) {
	if !p.RemoveSpecific(c) {
		return
	}
	g.Decks[c.Kind].Discard(c)
	g.log(log.NewDiscardEvent(p.ID, p.Name, c.Kind.String(), reason))
}

// discardKind discards up to n cards of one kind and returns how many went.
func (g *Game) discardKind(p *Player, kind CardKind, n int, reason string) int {
	if held := p.Count(kind); n > held {
		n = held
	}
	cards, err := p.RemoveCard(kind, n)
	if err != nil {
		return 0
	}
	for _, c := range cards {
		g.Decks[kind].Discard(c)
		g.log(log.NewDiscardEvent(p.ID, p.Name, kind.String(), reason))
	}
	return len(cards)
}

// enforceHandLimit discards over-limit strategy cards one at a time, asking
// p's provider which card goes.
func (g *Game) enforceHandLimit(ctx context.Context, p *Player) error {
	for p.Excess() > 0 {
		chosen, err := g.askDiscard(ctx, p, p.StrategyCards(), 1, CtxHandLimit)
		if err != nil {
			return err
		}
		if len(chosen) == 0 {
			return nil
		}
		g.discard(p, chosen[0], fmt.Sprintf("hand limit %d", p.HandLimit()))
	}
	return nil
}

// acquireAbility gives p an ability card and runs its Acquire hooks.
func (g *Game) acquireAbility(ctx context.Context, p *Player, card *Card) error {
	p.AddCard(card)
	g.log(log.NewAbilityGainedEvent(p.ID, p.Name, card.Name))
	return g.dispatchCard(ctx, p, card, &Effect{Trigger: TriggerAcquire, Actor: p})
}

// retireAbility removes a one-shot ability from play permanently.
func (g *Game) retireAbility(p *Player, card *Card) {
	if !p.RemoveAbility(card) {
		return
	}
	g.Decks[KindAbility].Retire(card)
	g.log(log.NewAbilityRemovedEvent(p.ID, p.Name, card.Name))
}

// takeAbility lets p keep one of the top n ability cards; the rest stay on
// the deck in order.
func (g *Game) takeAbility(ctx context.Context, p *Player, n int) error {
	deck := g.Decks[KindAbility]
	peek := g.peek(KindAbility, n)
	if len(peek) == 0 {
		g.log(log.NewSkipEvent(p.ID, fmt.Sprintf("%s finds no ability cards", p.Name)))
		return nil
	}
	names := make([]string, len(peek))
	for i, c := range peek {
		names[i] = c.Name
	}
	i, err := g.askOption(ctx, p, QuestionTakeAbility, names)
	if err != nil {
		return err
	}
	deck.Take(peek[i])
	return g.acquireAbility(ctx, p, peek[i])
}

// peek returns up to n cards from the top of a deck. PeekTop never
// reshuffles, so an exhausted draw pile is refilled from the discard first.
func (g *Game) peek(kind CardKind, n int) []*Card {
	deck := g.Decks[kind]
	if deck.DrawCount() == 0 && !deck.IsEmpty() {
		deck.PutTop(deck.Draw(deck.Remaining()))
	}
	return deck.PeekTop(n)
}

// checkVictory ends the game if p reached its evolution target.
func (g *Game) checkVictory(p *Player) bool {
	if g.Over || p.Eliminated {
		return g.Over
	}
	if p.EvolutionCount() >= g.VictoryTarget(p) {
		g.finish(p, fmt.Sprintf("reached %d evolution cards", p.EvolutionCount()))
		return true
	}
	return false
}

// moveBy walks p forward steps tiles.
func (g *Game) moveBy(p *Player, steps int) {
	g.moveTo(p, p.Position+steps)
}

func (g *Game) moveTo(p *Player, pos int) {
	from := p.Position
	p.Position = g.Board.Wrap(pos)
	g.log(log.NewMoveEvent(p.ID, p.Name, from, p.Position, g.Board.TileAt(p.Position).Type.String()))
}
