package mcp

import (
	"context"
	"strconv"

	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
	"github.com/peterkuimelis/evogame/internal/view"
)

// Provider implements game.DecisionProvider by sending decisions to the
// session's pending channel and blocking on a response channel.
type Provider struct {
	seat       int
	session    *Session
	responseCh chan any
}

// NewProvider creates a provider for the given seat.
func NewProvider(seat int, session *Session) *Provider {
	return &Provider{
		seat:       seat,
		session:    session,
		responseCh: make(chan any),
	}
}

// ask publishes a pending decision and waits for the tool call that answers it.
func (c *Provider) ask(ctx context.Context, g *game.Game, pd *PendingDecision) (any, error) {
	pd.Player = c.seat
	pd.State = view.BuildStateView(g, c.seat)
	select {
	case c.session.pendingCh <- pd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-c.responseCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ChooseAction implements game.DecisionProvider.
func (c *Provider) ChooseAction(ctx context.Context, g *game.Game, p *game.Player, gc game.Context) (game.Action, error) {
	var actions []string
	for _, a := range []game.Action{game.ActionCooperate, game.ActionDeceive} {
		if p.CanDeclare(a) {
			actions = append(actions, a.String())
		}
	}
	if len(actions) == 0 {
		// Never leave the seat without a legal answer.
		actions = []string{game.ActionCooperate.String(), game.ActionDeceive.String()}
	}
	resp, err := c.ask(ctx, g, &PendingDecision{
		Type:    DecisionChooseAction,
		Context: gc.String(),
		Actions: actions,
	})
	if err != nil {
		return game.ActionCooperate, err
	}
	return resp.(ActionResponse).Action, nil
}

// ChooseTarget implements game.DecisionProvider.
func (c *Provider) ChooseTarget(ctx context.Context, g *game.Game, p *game.Player, candidates []*game.Player, gc game.Context) (*game.Player, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	var views []CandidateView
	for i, cand := range candidates {
		views = append(views, CandidateView{
			Index:     i,
			Seat:      cand.ID,
			Name:      cand.Name,
			Evolution: cand.EvolutionCount(),
			Position:  cand.Position,
		})
	}
	resp, err := c.ask(ctx, g, &PendingDecision{
		Type:       DecisionChooseTarget,
		Context:    gc.String(),
		Candidates: views,
	})
	if err != nil {
		return nil, err
	}
	tr := resp.(TargetResponse)
	if tr.Index < 0 || tr.Index >= len(candidates) {
		return candidates[0], nil
	}
	return candidates[tr.Index], nil
}

// ChooseDiscard implements game.DecisionProvider.
func (c *Provider) ChooseDiscard(ctx context.Context, g *game.Game, p *game.Player, cards []*game.Card, count int, gc game.Context) ([]*game.Card, error) {
	var views []CardOptionView
	for i, card := range cards {
		views = append(views, CardOptionView{Index: i, Kind: card.Kind.String(), Name: card.Name})
	}
	resp, err := c.ask(ctx, g, &PendingDecision{
		Type:    DecisionChooseDiscard,
		Context: gc.String(),
		Prompt:  "Discard " + strconv.Itoa(count) + " card(s)",
		Cards:   views,
		Count:   count,
	})
	if err != nil {
		return nil, err
	}
	var result []*game.Card
	for _, idx := range resp.(DiscardResponse).Indices {
		if idx >= 0 && idx < len(cards) {
			result = append(result, cards[idx])
		}
	}
	return result, nil
}

// ChooseYesNo implements game.DecisionProvider.
func (c *Provider) ChooseYesNo(ctx context.Context, g *game.Game, p *game.Player, q game.Question) (bool, error) {
	resp, err := c.ask(ctx, g, &PendingDecision{
		Type:   DecisionAnswerYesNo,
		Prompt: q.String(),
	})
	if err != nil {
		return false, err
	}
	return resp.(YesNoResponse).Answer, nil
}

// ChooseOption implements game.DecisionProvider.
func (c *Provider) ChooseOption(ctx context.Context, g *game.Game, p *game.Player, q game.Question, options []string) (int, error) {
	var views []OptionView
	for i, o := range options {
		views = append(views, OptionView{Index: i, Label: o})
	}
	resp, err := c.ask(ctx, g, &PendingDecision{
		Type:    DecisionChooseOption,
		Prompt:  q.String(),
		Options: views,
	})
	if err != nil {
		return 0, err
	}
	return resp.(OptionResponse).Index, nil
}

// Notify implements game.DecisionProvider. The engine notifies each provider
// once per event, so every event reaches the session exactly once.
func (c *Provider) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(view.Event(event))
	return nil
}
