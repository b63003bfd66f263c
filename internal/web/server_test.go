package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/evogame/internal/config"
	"github.com/peterkuimelis/evogame/internal/view"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := config.Default()
	cfg.MaxRounds = 20
	srv := NewServer(cfg, logger)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func startGame(t *testing.T, ts *httptest.Server, body string) StartResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/games", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sr StartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	return sr
}

func getGame(t *testing.T, ts *httptest.Server, id string) (int, GameResponse) {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/games/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	var gr GameResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&gr))
	}
	return resp.StatusCode, gr
}

func TestCardsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/cards")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var cards []view.CardView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cards))
	require.NotEmpty(t, cards)
	kinds := map[string]bool{}
	for _, c := range cards {
		kinds[c.Kind] = true
		assert.Positive(t, c.Count, c.Name)
	}
	for _, k := range []string{"Cooperation", "Deception", "Evolution", "Event", "Ability", "EnvironmentChange"} {
		assert.True(t, kinds[k], k)
	}
}

func TestStartGameRunsToCompletion(t *testing.T) {
	_, ts := newTestServer(t)

	sr := startGame(t, ts, `{"players":["Ann","Ben","Cat"],"seed":11,"rounds":10}`)
	assert.NotEmpty(t, sr.ID)
	assert.Equal(t, int64(11), sr.Seed)
	assert.Equal(t, []string{"Ann", "Ben", "Cat"}, sr.Players)

	var gr GameResponse
	require.Eventually(t, func() bool {
		var status int
		status, gr = getGame(t, ts, sr.ID)
		return status == http.StatusOK && gr.Done
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, sr.ID, gr.ID)
	assert.Empty(t, gr.Error)
	require.NotNil(t, gr.Result)
	require.NotNil(t, gr.State)
	assert.True(t, gr.State.Over)
	assert.Nil(t, gr.State.You, "spectators have no seat")
	assert.Len(t, gr.State.Players, 3)
	require.NotEmpty(t, gr.Events)
	for i, ev := range gr.Events {
		assert.Equal(t, i+1, ev.Seq, "events are numbered in order")
	}
}

func TestStartGameDefaultsWithoutBody(t *testing.T) {
	_, ts := newTestServer(t)

	sr := startGame(t, ts, "")
	assert.NotZero(t, sr.Seed, "a random seed is reported")
	assert.Equal(t, config.Default().Players, sr.Players)
}

func TestStartGameRejectsBadRequests(t *testing.T) {
	_, ts := newTestServer(t)

	for name, body := range map[string]string{
		"malformed":  `{"players":`,
		"one player": `{"players":["Solo"]}`,
		"too many":   `{"players":["a","b","c","d","e","f","g","h","i"]}`,
	} {
		resp, err := http.Post(ts.URL+"/api/games", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err, name)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
}

func TestUnknownGame(t *testing.T) {
	_, ts := newTestServer(t)

	status, _ := getGame(t, ts, "nope")
	assert.Equal(t, http.StatusNotFound, status)

	resp, err := http.Get(ts.URL + "/ws?game=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// readStream reads frames until game_over and returns the events seen.
func readStream(t *testing.T, ctx context.Context, conn *websocket.Conn) ([]view.EventView, *view.ResultView) {
	t.Helper()
	var events []view.EventView
	for {
		var msg StreamMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		switch msg.Type {
		case "event":
			require.NotNil(t, msg.Event)
			events = append(events, *msg.Event)
		case "game_over":
			return events, msg.Result
		default:
			t.Fatalf("unexpected frame %q", msg.Type)
		}
	}
}

func TestWebSocketStreamsWholeGame(t *testing.T) {
	_, ts := newTestServer(t)
	sr := startGame(t, ts, `{"seed":5,"rounds":15}`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?game="+sr.ID, nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	events, result := readStream(t, ctx, conn)
	require.NotNil(t, result)
	require.NotEmpty(t, events)
	assert.Equal(t, 1, events[0].Seq, "the replay starts at the first event")
	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].Seq+1, events[i].Seq, "no gaps or repeats")
	}

	_, gr := getGame(t, ts, sr.ID)
	assert.Len(t, events, len(gr.Events))
	assert.Equal(t, gr.Result.Winner, result.Winner)
}

func TestWebSocketReplaysFinishedGame(t *testing.T) {
	_, ts := newTestServer(t)
	sr := startGame(t, ts, `{"seed":8,"rounds":5}`)

	var gr GameResponse
	require.Eventually(t, func() bool {
		_, gr = getGame(t, ts, sr.ID)
		return gr.Done
	}, 5*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?game="+sr.ID, nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	events, result := readStream(t, ctx, conn)
	assert.Len(t, events, len(gr.Events))
	require.NotNil(t, result)
	assert.Equal(t, gr.Result.Rounds, result.Rounds)
}

func TestCloseAbortsRunningGames(t *testing.T) {
	srv, ts := newTestServer(t)
	sr := startGame(t, ts, `{"seed":3,"rounds":100000}`)

	srv.Close()

	hg, ok := srv.lookup(sr.ID)
	require.True(t, ok)
	select {
	case <-hg.done:
	default:
		t.Fatal("Close returned before the game stopped")
	}
	snap := hg.hub.Snapshot()
	assert.True(t, snap.Done)
}
