package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pliu/chatsight/internal/auth"
	"github.com/pliu/chatsight/internal/chat"
	"github.com/pliu/chatsight/internal/config"
	"github.com/pliu/chatsight/internal/insight"
	"github.com/pliu/chatsight/internal/llm"
	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/server"
	"github.com/pliu/chatsight/internal/store/sqlstore"
	"github.com/pliu/chatsight/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type backend struct {
	url      string
	hub      *ws.Hub
	upstream atomic.Int32
}

func startBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.upstream.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"summary":"Greeting exchange","sentiment":"Neutral"}`}},
			},
		})
	}))
	t.Cleanup(upstream.Close)

	st, err := sqlstore.New("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	authSvc := auth.NewService(st, auth.NewTokens("client-test", time.Hour))
	authSvc.HashCost = bcrypt.MinCost

	b.hub = ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go b.hub.Run(ctx)
	t.Cleanup(cancel)

	router := server.NewRouter(server.Deps{
		Config:   &config.Config{RateLimit: config.RateLimit{RPS: 1000, Burst: 1000}},
		Store:    st,
		Auth:     authSvc,
		Chat:     chat.NewService(st),
		Insights: insight.NewService(st, llm.NewOpenAI(upstream.Client(), upstream.URL, "k", "m"), insight.Options{Model: "m"}),
		Hub:      b.hub,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	b.url = srv.URL
	return b
}

func signIn(t *testing.T, b *backend, name, email string) (*Chat, models.PublicUser) {
	t.Helper()
	c := NewChat(b.url)
	user, res := c.API.Register(t.Context(), name, email, "pw")
	require.True(t, res.OK, res.Error)
	require.True(t, c.Login(t.Context(), email, "pw").OK)
	return c, user
}

func TestChatConversationFlow(t *testing.T) {
	b := startBackend(t)
	alice, aliceUser := signIn(t, b, "Alice", "alice@example.com")
	bob, bobUser := signIn(t, b, "Bob", "bob@example.com")

	roster, res := alice.Roster(t.Context())
	require.True(t, res.OK)
	require.Len(t, roster, 1)
	assert.Equal(t, bobUser.ID, roster[0].ID)

	// Bob watches the relay with Alice's conversation open.
	view, res := bob.Open(t.Context(), aliceUser.ID)
	require.True(t, res.OK)
	assert.Empty(t, view.Messages)
	assert.Nil(t, view.Insight)

	bobConn, err := Dial(t.Context(), b.url)
	require.NoError(t, err)
	defer bobConn.Close()
	received := make(chan models.Message, 1)
	listenCtx, stopListening := context.WithCancel(t.Context())
	defer stopListening()
	go bobConn.Listen(listenCtx, func(m models.Message) {
		if bob.Receive(m) {
			received <- m
		}
	})

	aliceConn, err := Dial(t.Context(), b.url)
	require.NoError(t, err)
	defer aliceConn.Close()
	alice.Attach(aliceConn)
	require.Eventually(t, func() bool { return b.hub.Peers() == 2 }, 2*time.Second, 10*time.Millisecond)

	_, res = alice.Open(t.Context(), bobUser.ID)
	require.True(t, res.OK)
	sent, res := alice.Send(t.Context(), "  Hi Bob  ")
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "Hi Bob", sent.Text)
	assert.Len(t, alice.Messages(), 1)

	select {
	case m := <-received:
		assert.Equal(t, sent.ID, m.ID)
		assert.Equal(t, "Hi Bob", m.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("relayed message never arrived")
	}
	assert.Len(t, bob.Messages(), 1)

	// Reopening fetches the insight once, then serves it from the cache.
	view, res = alice.Open(t.Context(), bobUser.ID)
	require.True(t, res.OK)
	require.NotNil(t, view.Insight)
	assert.Equal(t, "Greeting exchange", view.Insight.Summary)
	assert.Equal(t, "neutral", view.Insight.Sentiment)

	view, res = alice.Open(t.Context(), bobUser.ID)
	require.True(t, res.OK)
	require.NotNil(t, view.Insight)
	assert.EqualValues(t, 1, b.upstream.Load())
}

func TestChatLogoutEndsSession(t *testing.T) {
	b := startBackend(t)
	c, _ := signIn(t, b, "Carol", "carol@example.com")
	require.True(t, c.Session.Active())

	res := c.Logout(t.Context())
	assert.True(t, res.OK)
	assert.False(t, c.Session.Active())

	_, res = c.Open(t.Context(), 1)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	_, res = c.Roster(t.Context())
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestChatOpenDiscardsStaleHistory(t *testing.T) {
	var c *Chat
	var insightCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/messages/chathistory":
			// The user picks someone else before this response lands.
			c.current().Select(3)
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []models.Message{{ID: 1, SenderID: 2, ReceiverID: 1, Text: "for partner 2"}},
			})
		case "/api/insights/generate":
			insightCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "summary": "x", "sentiment": "neutral"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c = NewChat(srv.URL)
	c.Session.Begin("tok", models.PublicUser{ID: 1})
	c.thread = NewThread(1)

	view, res := c.Open(t.Context(), 2)
	require.True(t, res.OK)
	assert.True(t, view.Stale)
	assert.Empty(t, view.Messages)
	assert.Empty(t, c.Messages())
	assert.Equal(t, int64(3), c.current().Partner())
	assert.EqualValues(t, 0, insightCalls.Load())
}
