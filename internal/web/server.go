// Package web serves the spectator API: start seeded simulated games over
// HTTP and watch their event streams over WebSocket.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/evogame/internal/config"
	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/strategy"
	"github.com/peterkuimelis/evogame/internal/view"
)

// StartRequest is the optional JSON body of POST /api/games. Zero fields
// keep the server's configured rules.
type StartRequest struct {
	Players []string `json:"players,omitempty"`
	Seed    int64    `json:"seed,omitempty"`
	Rounds  int      `json:"rounds,omitempty"`
}

// StartResponse is returned by POST /api/games.
type StartResponse struct {
	ID      string   `json:"id"`
	Seed    int64    `json:"seed"`
	Players []string `json:"players"`
}

// GameResponse is returned by GET /api/games/{id}.
type GameResponse struct {
	ID string `json:"id"`
	Snapshot
}

// StreamMessage is one WebSocket frame sent to spectators.
type StreamMessage struct {
	Type   string           `json:"type"` // "event" or "game_over"
	Event  *view.EventView  `json:"event,omitempty"`
	Result *view.ResultView `json:"result,omitempty"`
}

type hostedGame struct {
	id   string
	hub  *Hub
	done chan struct{}
}

// Server is the evogame spectator server.
type Server struct {
	cfg    config.Config
	logger logrus.FieldLogger
	mux    *http.ServeMux

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	games map[string]*hostedGame
}

// NewServer creates a new web server hosting games under cfg's rules.
func NewServer(cfg config.Config, logger logrus.FieldLogger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		ctx:    ctx,
		cancel: cancel,
		games:  make(map[string]*hostedGame),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("POST /api/games", s.handleStartGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops every running game and waits for them to return.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cat := game.StandardCatalogue()
	if s.cfg.Catalogue != "" {
		c, err := game.ParseCatalogueFile(s.cfg.Catalogue)
		if err != nil {
			s.logger.WithError(err).Error("load catalogue")
			writeError(w, http.StatusInternalServerError, "could not load catalogue")
			return
		}
		cat = c
	}
	writeJSON(w, http.StatusOK, view.Catalogue(cat))
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	cfg := s.cfg
	if len(req.Players) > 0 {
		cfg.Players = req.Players
		cfg.AgentSeat = 0
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.Rounds > 0 {
		cfg.MaxRounds = req.Rounds
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hg, g, err := s.startGame(cfg)
	if err != nil {
		s.logger.WithError(err).Error("start game")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, StartResponse{ID: hg.id, Seed: g.Seed, Players: cfg.Players})
}

// startGame builds the game and runs it to completion in a goroutine.
func (s *Server) startGame(cfg config.Config) (*hostedGame, *game.Game, error) {
	gc, err := cfg.GameConfig()
	if err != nil {
		return nil, nil, err
	}
	if gc.Seed == 0 {
		gc.Seed = game.NewSeed()
	}
	if cfg.LuaScript != "" {
		lp, err := strategy.LoadLuaProvider(cfg.LuaScript)
		if err != nil {
			return nil, nil, err
		}
		for range gc.Players {
			gc.Providers = append(gc.Providers, lp)
		}
	}
	hub := NewHub()
	gc.Logger = hub

	g, err := game.NewGame(gc)
	if err != nil {
		return nil, nil, err
	}
	hub.attach(g)

	hg := &hostedGame{id: uuid.NewString(), hub: hub, done: make(chan struct{})}
	s.mu.Lock()
	s.games[hg.id] = hg
	s.mu.Unlock()

	logger := s.logger.WithFields(logrus.Fields{"game": hg.id, "seed": g.Seed})
	logger.WithField("players", len(gc.Players)).Info("game started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(hg.done)
		res, err := g.PlayToCompletion(s.ctx, cfg.MaxRounds)
		hub.finish(res, err)
		if err != nil {
			logger.WithError(err).Warn("game aborted")
			return
		}
		logger.WithFields(logrus.Fields{"winner": res.WinnerName, "rounds": res.Rounds}).Info("game finished")
	}()
	return hg, g, nil
}

func (s *Server) lookup(id string) (*hostedGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hg, ok := s.games[id]
	return hg, ok
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	hg, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game")
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{ID: hg.id, Snapshot: hg.hub.Snapshot()})
}

// handleWebSocket replays a game's events to a spectator, then streams the
// rest live and ends with a game_over frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	hg, ok := s.lookup(r.URL.Query().Get("game"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game")
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.WithError(err).Warn("websocket accept")
		return
	}
	defer wsConn.CloseNow()

	ctx := wsConn.CloseRead(r.Context())

	// A subscription closes when the game ends or when this client falls
	// behind; either way resubscribe and skip what was already sent.
	last := 0
	for {
		replay, live := hg.hub.Subscribe()
		for i := range replay {
			if replay[i].Seq <= last {
				continue
			}
			if err := wsjson.Write(ctx, wsConn, StreamMessage{Type: "event", Event: &replay[i]}); err != nil {
				hg.hub.Unsubscribe(live)
				return
			}
			last = replay[i].Seq
		}
		if live == nil {
			break
		}
		err := stream(ctx, wsConn, live, &last)
		hg.hub.Unsubscribe(live)
		if err != nil {
			return
		}
	}

	result, _ := hg.hub.Result()
	if err := wsjson.Write(ctx, wsConn, StreamMessage{Type: "game_over", Result: result}); err != nil {
		return
	}
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// stream forwards live events until the hub closes the channel.
func stream(ctx context.Context, conn *websocket.Conn, live <-chan view.EventView, last *int) error {
	for {
		select {
		case ev, ok := <-live:
			if !ok {
				return nil
			}
			if ev.Seq <= *last {
				continue
			}
			if err := wsjson.Write(ctx, conn, StreamMessage{Type: "event", Event: &ev}); err != nil {
				return err
			}
			*last = ev.Seq
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
