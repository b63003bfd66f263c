package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/view"
)

// DecisionType identifies what kind of decision the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseAction  DecisionType = "choose_action"
	DecisionChooseTarget  DecisionType = "choose_target"
	DecisionChooseDiscard DecisionType = "choose_discard"
	DecisionAnswerYesNo   DecisionType = "answer_yes_no"
	DecisionChooseOption  DecisionType = "choose_option"
	DecisionGameOver      DecisionType = "game_over"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type       DecisionType     `json:"type"`
	Player     int              `json:"player"`
	State      *view.StateView  `json:"state"`
	Context    string           `json:"context,omitempty"`
	Prompt     string           `json:"prompt,omitempty"`
	Actions    []string         `json:"actions,omitempty"`
	Candidates []CandidateView  `json:"candidates,omitempty"`
	Cards      []CardOptionView `json:"cards,omitempty"`
	Count      int              `json:"count,omitempty"`
	Options    []OptionView     `json:"options,omitempty"`
}

// CandidateView is a player offered as a target.
type CandidateView struct {
	Index     int    `json:"index"`
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Evolution int    `json:"evolution"`
	Position  int    `json:"position"`
}

// CardOptionView is a card offered for discard.
type CardOptionView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

// OptionView is a numbered multiple-choice answer.
type OptionView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Response types sent back from MCP tools to the agent's provider.

type ActionResponse struct {
	Action game.Action
}

type TargetResponse struct {
	Index int
}

type DiscardResponse struct {
	Indices []int
}

type YesNoResponse struct {
	Answer bool
}

type OptionResponse struct {
	Index int
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	SessionID string           `json:"session_id"`
	Events    []view.EventView `json:"events"`
	State     *view.StateView  `json:"state,omitempty"`
	Pending   *PendingDecision `json:"pending,omitempty"`
	GameOver  bool             `json:"game_over"`
	Winner    int              `json:"winner"`
	Result    string           `json:"result,omitempty"`
}

// Session holds the state of a single MCP game: the engine running in its
// own goroutine and the agent seat blocked on channels.
type Session struct {
	ID       string
	game     *game.Game
	provider *Provider
	seat     int
	logger   logrus.FieldLogger
	cancel   context.CancelFunc

	pendingCh chan *PendingDecision

	mu             sync.Mutex
	currentPending *PendingDecision
	events         []view.EventView
	gameOver       bool
	winner         int
	result         string
}

// NewSession seats the agent at seat and starts the game in a goroutine.
// The provider for that seat in cfg.Providers is replaced by the session's
// channel-backed Provider.
func NewSession(cfg game.Config, seat int, logger logrus.FieldLogger) (*Session, error) {
	if seat < 0 || seat >= len(cfg.Players) {
		return nil, fmt.Errorf("seat %d out of range for %d players", seat, len(cfg.Players))
	}
	sess := &Session{
		ID:        uuid.NewString(),
		seat:      seat,
		logger:    logger,
		pendingCh: make(chan *PendingDecision, 1),
		winner:    game.NoTarget,
	}
	sess.provider = NewProvider(seat, sess)

	providers := make([]game.DecisionProvider, len(cfg.Players))
	copy(providers, cfg.Providers)
	providers[seat] = sess.provider
	cfg.Providers = providers

	g, err := game.NewGame(cfg)
	if err != nil {
		return nil, err
	}
	sess.game = g
	sess.logger = logger.WithFields(logrus.Fields{"session": sess.ID, "seed": g.Seed})

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	go sess.run(ctx)
	sess.logger.WithField("seat", seat).Info("game session started")
	return sess, nil
}

func (s *Session) run(ctx context.Context) {
	res, err := s.game.PlayToCompletion(ctx, 0)

	s.mu.Lock()
	s.gameOver = true
	s.winner = res.Winner
	s.result = res.Reason
	if err != nil {
		s.result = fmt.Sprintf("error: %v", err)
	}
	s.mu.Unlock()

	entry := s.logger.WithFields(logrus.Fields{"winner": res.WinnerName, "rounds": res.Rounds, "turns": res.Turns})
	if err != nil {
		entry.WithError(err).Warn("game session aborted")
	} else {
		entry.Info("game session finished")
	}

	select {
	case s.pendingCh <- &PendingDecision{
		Type:   DecisionGameOver,
		Player: res.Winner,
		State:  view.BuildStateView(s.game, s.seat),
	}:
	case <-ctx.Done():
	}
}

// Close stops the game goroutine.
func (s *Session) Close() {
	s.cancel()
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *Session) appendEvent(ev view.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *Session) drainEvents() []view.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []view.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the game engine,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *Session) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	resp := &ToolResponse{
		SessionID: s.ID,
		Events:    s.drainEvents(),
		State:     pending.State,
		Winner:    game.NoTarget,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPending = pending
	if pending.Type == DecisionGameOver {
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		return resp, nil
	}

	resp.Pending = pending
	return resp, nil
}

// pending returns the decision the agent currently owes, if any.
func (s *Session) pending() *PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPending
}

// snapshot reports the current state without consuming a decision.
func (s *Session) snapshot() *ToolResponse {
	resp := &ToolResponse{
		SessionID: s.ID,
		Events:    s.drainEvents(),
		Winner:    game.NoTarget,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resp.GameOver = s.gameOver
	if s.gameOver {
		resp.Winner = s.winner
		resp.Result = s.result
	}
	if p := s.currentPending; p != nil {
		resp.State = p.State
		if p.Type != DecisionGameOver && !resp.GameOver {
			resp.Pending = p
		}
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
