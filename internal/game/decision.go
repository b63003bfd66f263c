package game

import (
	"context"

	"github.com/peterkuimelis/evogame/internal/log"
)

// DecisionProvider supplies every choice a seat makes. Random, scripted,
// Lua-driven and agent-driven (MCP) players all implement it.
type DecisionProvider interface {
	// ChooseAction picks Cooperate or Deceive for a declaration at c.
	ChooseAction(ctx context.Context, g *Game, p *Player, c Context) (Action, error)

	// ChooseTarget picks one of the candidate players.
	ChooseTarget(ctx context.Context, g *Game, p *Player, candidates []*Player, c Context) (*Player, error)

	// ChooseDiscard picks count cards to discard from cards.
	ChooseDiscard(ctx context.Context, g *Game, p *Player, cards []*Card, count int, c Context) ([]*Card, error)

	// ChooseYesNo answers an optional prompt.
	ChooseYesNo(ctx context.Context, g *Game, p *Player, q Question) (bool, error)

	// ChooseOption picks an index into options.
	ChooseOption(ctx context.Context, g *Game, p *Player, q Question, options []string) (int, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// DefaultOdds is the probability a RandomProvider answers yes to each question.
func DefaultOdds() map[Question]float64 {
	return map[Question]float64{
		QuestionStrategyShift:    0.3,
		QuestionDisasterTransfer: 0.7,
		QuestionBlockDeceiver:    0.6,
		QuestionDefenseMechanism: 0.8,
		QuestionOpportunist:      0.5,
		QuestionTacticalUpgrade:  0.8,
		QuestionEcoEngineering:   0.3,
		QuestionConvertPoints:    0.7,
		QuestionPlayEvent:        0.3,
		QuestionActivateAbility:  0.8,
		QuestionRedeemChallenge:  0.7,
		QuestionInvestigate:      0.2,
	}
}

// RandomProvider answers every prompt from the game's PRNG, so seeded games
// stay reproducible.
type RandomProvider struct {
	Odds map[Question]float64
}

func NewRandomProvider() *RandomProvider {
	return &RandomProvider{Odds: DefaultOdds()}
}

func (r *RandomProvider) ChooseAction(_ context.Context, g *Game, _ *Player, _ Context) (Action, error) {
	if g.Rand().Intn(2) == 0 {
		return ActionCooperate, nil
	}
	return ActionDeceive, nil
}

func (r *RandomProvider) ChooseTarget(_ context.Context, g *Game, _ *Player, candidates []*Player, _ Context) (*Player, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[g.Rand().Intn(len(candidates))], nil
}

func (r *RandomProvider) ChooseDiscard(_ context.Context, g *Game, _ *Player, cards []*Card, count int, _ Context) ([]*Card, error) {
	if count > len(cards) {
		count = len(cards)
	}
	perm := g.Rand().Perm(len(cards))
	out := make([]*Card, 0, count)
	for _, i := range perm[:count] {
		out = append(out, cards[i])
	}
	return out, nil
}

func (r *RandomProvider) ChooseYesNo(_ context.Context, g *Game, _ *Player, q Question) (bool, error) {
	odds, ok := r.Odds[q]
	if !ok {
		odds = 0.5
	}
	return g.Rand().Float64() < odds, nil
}

func (r *RandomProvider) ChooseOption(_ context.Context, g *Game, _ *Player, _ Question, options []string) (int, error) {
	if len(options) == 0 {
		return 0, nil
	}
	return g.Rand().Intn(len(options)), nil
}

func (r *RandomProvider) Notify(context.Context, log.GameEvent) error {
	return nil
}

// --- Sanitized provider calls ---

func (g *Game) provider(p *Player) DecisionProvider {
	return g.providers[p.ID]
}

// askAction asks p to pick between the two declarations. Answers outside
// them fall back to Cooperate.
func (g *Game) askAction(ctx context.Context, p *Player, c Context) (Action, error) {
	a, err := g.provider(p).ChooseAction(ctx, g, p, c)
	if err != nil {
		return ActionNone, err
	}
	if a != ActionCooperate && a != ActionDeceive {
		return ActionCooperate, nil
	}
	return a, nil
}

// askTarget returns nil without asking when there are no candidates. Answers
// outside the candidate list fall back to the first candidate.
func (g *Game) askTarget(ctx context.Context, p *Player, candidates []*Player, c Context) (*Player, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	t, err := g.provider(p).ChooseTarget(ctx, g, p, candidates, c)
	if err != nil {
		return nil, err
	}
	for _, cand := range candidates {
		if cand == t {
			return t, nil
		}
	}
	return candidates[0], nil
}

// askDiscard returns exactly count distinct cards from cards, topping up from
// the end of the list when the provider answers short or off-list.
func (g *Game) askDiscard(ctx context.Context, p *Player, cards []*Card, count int, c Context) ([]*Card, error) {
	if count <= 0 {
		return nil, nil
	}
	if count >= len(cards) {
		return append([]*Card(nil), cards...), nil
	}
	chosen, err := g.provider(p).ChooseDiscard(ctx, g, p, cards, count, c)
	if err != nil {
		return nil, err
	}
	offered := make(map[*Card]bool, len(cards))
	for _, card := range cards {
		offered[card] = true
	}
	var out []*Card
	for _, card := range chosen {
		if len(out) == count {
			break
		}
		if offered[card] {
			out = append(out, card)
			offered[card] = false
		}
	}
	for i := len(cards) - 1; i >= 0 && len(out) < count; i-- {
		if offered[cards[i]] {
			out = append(out, cards[i])
			offered[cards[i]] = false
		}
	}
	return out, nil
}

func (g *Game) askYesNo(ctx context.Context, p *Player, q Question) (bool, error) {
	return g.provider(p).ChooseYesNo(ctx, g, p, q)
}

// askOption clamps out-of-range answers to the first option.
func (g *Game) askOption(ctx context.Context, p *Player, q Question, options []string) (int, error) {
	if len(options) == 0 {
		return -1, nil
	}
	if len(options) == 1 {
		return 0, nil
	}
	i, err := g.provider(p).ChooseOption(ctx, g, p, q, options)
	if err != nil {
		return -1, err
	}
	if i < 0 || i >= len(options) {
		return 0, nil
	}
	return i, nil
}
