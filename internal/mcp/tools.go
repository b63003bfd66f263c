package mcp

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/evogame/internal/config"
	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
	"github.com/peterkuimelis/evogame/internal/strategy"
)

// Tools owns the single game session of one stdio process and serves the
// MCP tools that drive it.
type Tools struct {
	mu     sync.Mutex
	base   config.Config
	logger logrus.FieldLogger
	active *Session
}

// NewTools creates the tool set. base supplies the rules and the defaults
// for start_game's arguments.
func NewTools(base config.Config, logger logrus.FieldLogger) *Tools {
	return &Tools{base: base, logger: logger}
}

// RegisterTools adds all game tools to the MCP server.
func (t *Tools) RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(chooseActionTool(), t.handleChooseAction)
	s.AddTool(chooseTargetTool(), t.handleChooseTarget)
	s.AddTool(chooseDiscardTool(), t.handleChooseDiscard)
	s.AddTool(answerYesNoTool(), t.handleAnswerYesNo)
	s.AddTool(chooseOptionTool(), t.handleChooseOption)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// Close stops the running session, if any.
func (t *Tools) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		t.active.Close()
		t.active = nil
	}
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new evolution board game. You play one seat; every other seat is played by the computer. "+
			"Returns the initial game state and your first pending decision."),
		mcp.WithString("players", mcp.Description("Comma-separated player names, 2-8 (default from the rules file)")),
		mcp.WithNumber("seat", mcp.Description("0-based seat you play (default from the rules file)")),
		mcp.WithNumber("seed", mcp.Description("RNG seed for a reproducible game (0 for random)")),
	)
}

func chooseActionTool() mcp.Tool {
	return mcp.NewTool("choose_action",
		mcp.WithDescription("Declare Cooperate or Deceive. Use this when the pending decision type is 'choose_action'."),
		mcp.WithString("action", mcp.Required(), mcp.Enum("cooperate", "deceive"), mcp.Description("The declaration")),
	)
}

func chooseTargetTool() mcp.Tool {
	return mcp.NewTool("choose_target",
		mcp.WithDescription("Pick a player from the pending candidates list. Use this when the pending decision type is 'choose_target'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the candidates list")),
	)
}

func chooseDiscardTool() mcp.Tool {
	return mcp.NewTool("choose_discard",
		mcp.WithDescription("Select exactly 'count' cards from the pending cards list. Use this when the pending decision type is 'choose_discard'."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based indices of the cards (e.g. '0 2')")),
	)
}

func answerYesNoTool() mcp.Tool {
	return mcp.NewTool("answer_yes_no",
		mcp.WithDescription("Answer a yes/no question. Use this when the pending decision type is 'answer_yes_no'."),
		mcp.WithBoolean("answer", mcp.Required(), mcp.Description("true for yes, false for no")),
	)
}

func chooseOptionTool() mcp.Tool {
	return mcp.NewTool("choose_option",
		mcp.WithDescription("Pick one of the pending options. Use this when the pending decision type is 'choose_option'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the options list")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	cfg := t.base
	if players := request.GetString("players", ""); strings.TrimSpace(players) != "" {
		cfg.Players = nil
		for _, name := range strings.Split(players, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Players = append(cfg.Players, name)
			}
		}
	}
	cfg.AgentSeat = request.GetInt("seat", t.base.AgentSeat)
	cfg.Seed = int64(request.GetInt("seed", int(t.base.Seed)))
	if err := cfg.Validate(); err != nil {
		return mcp.NewToolResultErrorf("Invalid game settings: %v", err), nil
	}

	gc, err := cfg.GameConfig()
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to load rules: %v", err), nil
	}
	if gc.Seed == 0 {
		gc.Seed = game.NewSeed()
	}
	gc.Logger = log.NewStructuredLogger(t.logger.WithField("component", "engine"), gc.Players)
	if cfg.LuaScript != "" {
		lp, err := strategy.LoadLuaProvider(cfg.LuaScript)
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to load strategy: %v", err), nil
		}
		gc.Providers = make([]game.DecisionProvider, len(gc.Players))
		for i := range gc.Providers {
			gc.Providers[i] = lp
		}
	}

	sess, err := NewSession(gc, cfg.AgentSeat, t.logger)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.active = sess

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	t.finishIfOver(resp)
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// pendingFor returns the active session and its pending decision when the
// decision has type want.
func (t *Tools) pendingFor(want DecisionType) (*Session, *PendingDecision, *mcp.CallToolResult) {
	if t.active == nil {
		return nil, nil, mcp.NewToolResultError("No game is running. Use start_game first.")
	}
	sess := t.active
	pending := sess.pending()
	if pending == nil || pending.Type == DecisionGameOver {
		return nil, nil, mcp.NewToolResultError("No pending decision.")
	}
	if pending.Type != want {
		return nil, nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'. Use the correct tool.", pending.Type, want)
	}
	return sess, pending, nil
}

// respond hands resp to the waiting provider and returns the next decision.
func (t *Tools) respond(ctx context.Context, sess *Session, resp any) (*mcp.CallToolResult, error) {
	select {
	case sess.provider.responseCh <- resp:
	case <-ctx.Done():
		return mcp.NewToolResultErrorf("Cancelled: %v", ctx.Err()), nil
	}
	next, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	t.finishIfOver(next)
	return mcp.NewToolResultText(respondJSON(next)), nil
}

func (t *Tools) finishIfOver(resp *ToolResponse) {
	if resp.GameOver {
		t.active.Close()
		t.active = nil
	}
}

func (t *Tools) handleChooseAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, pending, errResult := t.pendingFor(DecisionChooseAction)
	if errResult != nil {
		return errResult, nil
	}

	choice := strings.TrimSpace(request.GetString("action", ""))
	for _, a := range pending.Actions {
		if strings.EqualFold(a, choice) {
			action := game.ActionCooperate
			if strings.EqualFold(choice, game.ActionDeceive.String()) {
				action = game.ActionDeceive
			}
			return t.respond(ctx, sess, ActionResponse{Action: action})
		}
	}
	return mcp.NewToolResultErrorf("Invalid action %q. Must be one of %s.", choice, strings.Join(pending.Actions, ", ")), nil
}

func (t *Tools) handleChooseTarget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, pending, errResult := t.pendingFor(DecisionChooseTarget)
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Candidates) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Candidates)-1), nil
	}
	return t.respond(ctx, sess, TargetResponse{Index: index})
}

func (t *Tools) handleChooseDiscard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, pending, errResult := t.pendingFor(DecisionChooseDiscard)
	if errResult != nil {
		return errResult, nil
	}

	indicesStr := request.GetString("indices", "")
	var indices []int
	seen := make(map[int]bool)
	for _, p := range strings.Fields(indicesStr) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		if idx < 0 || idx >= len(pending.Cards) {
			return mcp.NewToolResultErrorf("Index %d out of range. Must be 0-%d.", idx, len(pending.Cards)-1), nil
		}
		if seen[idx] {
			return mcp.NewToolResultErrorf("Index %d selected twice.", idx), nil
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	if len(indices) != pending.Count {
		return mcp.NewToolResultErrorf("Must select exactly %d card(s), got %d.", pending.Count, len(indices)), nil
	}
	return t.respond(ctx, sess, DiscardResponse{Indices: indices})
}

func (t *Tools) handleAnswerYesNo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, _, errResult := t.pendingFor(DecisionAnswerYesNo)
	if errResult != nil {
		return errResult, nil
	}
	return t.respond(ctx, sess, YesNoResponse{Answer: request.GetBool("answer", false)})
}

func (t *Tools) handleChooseOption(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, pending, errResult := t.pendingFor(DecisionChooseOption)
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Options) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Options)-1), nil
	}
	return t.respond(ctx, sess, OptionResponse{Index: index})
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(t.active.snapshot())), nil
}
