package web

import (
	"sync"

	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
	"github.com/peterkuimelis/evogame/internal/view"
)

// subscriberBuffer is how many events a spectator may fall behind before it
// is dropped.
const subscriberBuffer = 256

// Hub is the EventLogger of one hosted game. It records every event, keeps
// a spectator snapshot of the state current and fans events out to
// WebSocket subscribers.
type Hub struct {
	mu     sync.Mutex
	memory log.MemoryLogger
	game   *game.Game
	state  *view.StateView
	subs   map[chan view.EventView]struct{}
	done   bool
	result *view.ResultView
	err    error
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan view.EventView]struct{})}
}

// attach binds the hub to the game it logs for, so each event refreshes
// the state snapshot.
func (h *Hub) attach(g *game.Game) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.game = g
	h.state = view.BuildStateView(g, view.Spectator)
}

// Log implements log.EventLogger. It runs on the game goroutine.
func (h *Hub) Log(event log.GameEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.memory.Log(event)
	ev := view.Event(h.memory.LastEvent())
	if h.game != nil {
		h.state = view.BuildStateView(h.game, view.Spectator)
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Too slow; the reader resubscribes and replays.
			close(ch)
			delete(h.subs, ch)
		}
	}
}

// Events implements log.EventLogger.
func (h *Hub) Events() []log.GameEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]log.GameEvent(nil), h.memory.Events()...)
}

// finish records the outcome and closes every subscription.
func (h *Hub) finish(res game.Result, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rv := view.Result(res)
	h.done = true
	h.result = &rv
	h.err = err
	if h.game != nil {
		h.state = view.BuildStateView(h.game, view.Spectator)
	}
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

// Subscribe returns the events logged so far and a channel of the ones that
// follow. The channel is nil when the game has already finished.
func (h *Hub) Subscribe() ([]view.EventView, <-chan view.EventView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	replay := view.Events(h.memory.Events())
	if h.done {
		return replay, nil
	}
	ch := make(chan view.EventView, subscriberBuffer)
	h.subs[ch] = struct{}{}
	return replay, ch
}

// Unsubscribe releases a channel returned by Subscribe.
func (h *Hub) Unsubscribe(ch <-chan view.EventView) {
	if ch == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs {
		if c == ch {
			close(c)
			delete(h.subs, c)
			return
		}
	}
}

// Snapshot is a consistent copy of the hub's state.
type Snapshot struct {
	State  *view.StateView  `json:"state"`
	Events []view.EventView `json:"events"`
	Done   bool             `json:"done"`
	Result *view.ResultView `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (h *Hub) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Snapshot{
		State:  h.state,
		Events: view.Events(h.memory.Events()),
		Done:   h.done,
		Result: h.result,
	}
	if h.err != nil {
		s.Error = h.err.Error()
	}
	return s
}

// Result reports the outcome once the game has finished.
func (h *Hub) Result() (*view.ResultView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.done
}
