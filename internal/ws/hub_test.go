package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub([]string{"*"})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitPeers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Peers() == n }, 2*time.Second, 10*time.Millisecond)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	if assert.ErrorAs(t, err, &netErr) {
		assert.True(t, netErr.Timeout(), "expected a read timeout, got %v", err)
	}
}

func TestHubRelaysToOthersOnly(t *testing.T) {
	hub, url := startHub(t)
	sender := dial(t, url)
	b := dial(t, url)
	c := dial(t, url)
	waitPeers(t, hub, 3)

	payload := `{"id":1,"sender_id":1,"receiver_id":2,"text":"Hi","timestamp":"2025-01-01T00:00:00Z"}`
	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"event":"send-message","data":`+payload+`}`)))

	for _, conn := range []*websocket.Conn{b, c} {
		env := readEnvelope(t, conn)
		assert.Equal(t, EventReceive, env.Event)
		assert.JSONEq(t, payload, string(env.Data))
	}
	assertSilent(t, sender)
}

func TestHubPreservesPerSenderOrder(t *testing.T) {
	hub, url := startHub(t)
	sender := dial(t, url)
	receiver := dial(t, url)
	waitPeers(t, hub, 2)

	for i := range 5 {
		data, _ := json.Marshal(map[string]int{"n": i})
		require.NoError(t, sender.WriteJSON(Envelope{Event: EventSend, Data: data}))
	}
	for i := range 5 {
		env := readEnvelope(t, receiver)
		var got map[string]int
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, i, got["n"])
	}
}

func TestHubIgnoresUnknownEvents(t *testing.T) {
	hub, url := startHub(t)
	sender := dial(t, url)
	receiver := dial(t, url)
	waitPeers(t, hub, 2)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"event":"typing","data":{}}`)))
	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	assertSilent(t, receiver)
}

func TestHubDisconnectIsSilent(t *testing.T) {
	hub, url := startHub(t)
	sender := dial(t, url)
	gone := dial(t, url)
	stays := dial(t, url)
	waitPeers(t, hub, 3)

	gone.Close()
	waitPeers(t, hub, 2)

	require.NoError(t, sender.WriteJSON(Envelope{Event: EventSend, Data: json.RawMessage(`{"text":"after"}`)}))
	env := readEnvelope(t, stays)
	assert.JSONEq(t, `{"text":"after"}`, string(env.Data))
}

func TestHubPublishWithoutSender(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitPeers(t, hub, 1)

	hub.Publish(nil, json.RawMessage(`{"text":"server"}`))
	env := readEnvelope(t, conn)
	assert.Equal(t, EventReceive, env.Event)
}

func TestHubShutdownClosesPeers(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(server.URL, "http"))
	waitPeers(t, hub, 1)

	cancel()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "peer should be disconnected on shutdown")
	waitPeers(t, hub, 0)

	// Publishing after shutdown does not block.
	hub.Publish(nil, json.RawMessage(`{}`))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://chat.example.com/"})

	req := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, check(req), "no Origin header")

	req.Header.Set("Origin", "https://chat.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
	assert.True(t, originChecker(nil)(req))
}
