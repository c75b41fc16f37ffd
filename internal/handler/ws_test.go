package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/murmur/internal/chat"
	"github.com/johndosdos/murmur/internal/metrics"
	"github.com/johndosdos/murmur/internal/model"
	"github.com/johndosdos/murmur/internal/sanitize"
	ws "github.com/johndosdos/murmur/internal/websocket"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	m := metrics.New()
	room := chat.NewRoom(log, sanitize.NewPipeline(nil), chat.WithRecorder(m))
	go room.Run(ctx)

	srv := httptest.NewServer(NewRouter(RouterConfig{
		Room:    room,
		Metrics: m.Handler(),
		Client:  ws.Options{Buffer: 16, WriteTimeout: time.Second},
		Log:     log,
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, model.Envelope{Event: event, Data: data}))
}

// next reads frames until one named event arrives.
func next(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		var f frame
		require.NoError(t, wsjson.Read(ctx, conn, &f), "waiting for %q", event)
		if f.Event == event {
			return f
		}
	}
}

func join(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	send(t, conn, model.EventJoin, struct{}{})
	var set model.SetUsername
	require.NoError(t, json.Unmarshal(next(t, conn, model.EventSetUsername).Data, &set))
	next(t, conn, model.EventHistory)
	next(t, conn, model.EventSystem)
	return set.Username
}

func TestChatOverWebsocket(t *testing.T) {
	srv := newTestServer(t)

	alice := dial(t, srv)
	assert.Equal(t, "anonymous 1", join(t, alice))

	bob := dial(t, srv)
	assert.Equal(t, "anonymous 2", join(t, bob))

	var notice model.System
	require.NoError(t, json.Unmarshal(next(t, alice, model.EventSystem).Data, &notice))
	assert.Equal(t, "anonymous 2 entered the chat", notice.Msg)
	assert.True(t, strings.HasSuffix(notice.TS.String(), "+00:00"))

	// Typing reaches the other member.
	send(t, alice, model.EventTyping, struct{}{})
	var typing model.Typing
	require.NoError(t, json.Unmarshal(next(t, bob, model.EventTyping).Data, &typing))
	assert.Equal(t, "anonymous 1", typing.Username)

	send(t, alice, model.EventChatMessage, model.ChatInput{Text: "hi http://example.com"})
	var fromAlice, atBob model.Message
	require.NoError(t, json.Unmarshal(next(t, alice, model.EventChatMessage).Data, &fromAlice))
	require.NoError(t, json.Unmarshal(next(t, bob, model.EventChatMessage).Data, &atBob))
	assert.Equal(t, fromAlice, atBob)
	assert.Equal(t, "anonymous 1", atBob.Username)
	assert.Contains(t, atBob.HTML, `href="http://example.com"`)
	assert.NotEmpty(t, atBob.ID)

	send(t, bob, model.EventChatMessage, model.ChatInput{Text: "hello"})
	f := next(t, alice, model.EventChatMessage)
	var fromBob model.Message
	require.NoError(t, json.Unmarshal(f.Data, &fromBob))
	assert.Equal(t, "hello", fromBob.Text)

	// A late joiner gets both messages in history, identical to the live
	// broadcast.
	carol := dial(t, srv)
	send(t, carol, model.EventJoin, struct{}{})
	next(t, carol, model.EventSetUsername)
	var hist []model.Message
	require.NoError(t, json.Unmarshal(next(t, carol, model.EventHistory).Data, &hist))
	require.Len(t, hist, 2)
	assert.Equal(t, fromAlice, hist[0])
	assert.Equal(t, fromBob, hist[1])

	// Bob leaves.
	require.NoError(t, bob.Close(websocket.StatusNormalClosure, "bye"))
	for {
		var sys model.System
		require.NoError(t, json.Unmarshal(next(t, alice, model.EventSystem).Data, &sys))
		if sys.Msg == "anonymous 2 left the chat" {
			break
		}
	}
}

func TestMalformedFramesAreSkipped(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv)
	join(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))
	send(t, conn, "delete_message", struct{}{})
	send(t, conn, model.EventChatMessage, model.ChatInput{Text: "   "})
	send(t, conn, model.EventChatMessage, model.ChatInput{Text: "still connected"})

	var msg model.Message
	require.NoError(t, json.Unmarshal(next(t, conn, model.EventChatMessage).Data, &msg))
	assert.Equal(t, "still connected", msg.Text)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", string(body))

	conn := dial(t, srv)
	join(t, conn)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Contains(t, string(body), "chat_active_connections 1")
}
