package client

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/pliu/chatsight/internal/models"
)

// Publisher hands a message to the relay.
type Publisher interface {
	Publish(m models.Message) error
}

// View is what the conversation screen shows after opening a partner.
type View struct {
	Messages     []models.Message
	Insight      *Insight
	InsightError string

	// Stale is set when the thread moved to another partner before the
	// history arrived; Messages is then empty.
	Stale bool
}

// Chat drives one signed-in user's session: roster, open thread, sends and
// relayed messages.
type Chat struct {
	API      *API
	Session  *Session
	Insights *InsightCache

	mu     sync.Mutex
	thread *Thread
	relay  Publisher
}

func NewChat(baseURL string) *Chat {
	session := &Session{}
	return &Chat{
		API:      NewAPI(baseURL, nil, session),
		Session:  session,
		Insights: NewInsightCache(),
	}
}

// Attach sets the relay that sent messages are published on.
func (c *Chat) Attach(relay Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relay = relay
}

func (c *Chat) Login(ctx context.Context, email, password string) Result {
	user, res := c.API.Login(ctx, email, password)
	if res.OK {
		c.mu.Lock()
		c.thread = NewThread(user.ID)
		c.mu.Unlock()
		c.Insights.Clear()
	}
	return res
}

func (c *Chat) Logout(ctx context.Context) Result {
	res := c.API.Logout(ctx)
	c.mu.Lock()
	c.thread = nil
	c.mu.Unlock()
	return res
}

// Roster lists the other users, never including the viewer.
func (c *Chat) Roster(ctx context.Context) ([]models.PublicUser, Result) {
	users, res := c.API.Users(ctx)
	me, ok := c.Session.User()
	if !res.OK || !ok {
		return nil, res
	}
	out := users[:0]
	for _, u := range users {
		if u.ID != me.ID {
			out = append(out, u)
		}
	}
	return out, res
}

func (c *Chat) current() *Thread {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thread
}

// Open makes partnerID the active conversation, loads its history and, for a
// non-empty conversation not yet in the cache, fetches its insight.
func (c *Chat) Open(ctx context.Context, partnerID int64) (View, Result) {
	t := c.current()
	if t == nil {
		return View{}, Result{Status: http.StatusUnauthorized, Error: ErrSignedOut.Error()}
	}
	t.Select(partnerID)

	var view View
	if cached, ok := c.Insights.Get(partnerID); ok {
		view.Insight = &cached
	}

	messages, res := c.API.History(ctx, partnerID)
	if !res.OK {
		return view, res
	}
	if !t.Load(partnerID, messages) {
		// Another partner was selected while the history loaded.
		view.Stale = true
		return view, res
	}
	view.Messages = t.Messages()

	if len(messages) > 0 && view.Insight == nil {
		in, ires := c.API.Insight(ctx, partnerID)
		switch {
		case ires.Unauthorized():
			return view, ires
		case !ires.OK:
			view.InsightError = ires.Error
		default:
			c.Insights.Put(partnerID, in)
			view.Insight = &in
		}
	}
	return view, res
}

// Send persists text to the active partner, shows it locally and publishes
// it on the relay. Blank text is ignored.
func (c *Chat) Send(ctx context.Context, text string) (*models.Message, Result) {
	text = strings.TrimSpace(text)
	t := c.current()
	if t == nil {
		return nil, Result{Status: http.StatusUnauthorized, Error: ErrSignedOut.Error()}
	}
	partner := t.Partner()
	if text == "" || partner == 0 {
		return nil, Result{Error: "Nothing to send"}
	}

	m, res := c.API.Send(ctx, partner, text)
	if !res.OK {
		return nil, res
	}
	t.Append(*m)

	c.mu.Lock()
	relay := c.relay
	c.mu.Unlock()
	if relay != nil {
		// Relay delivery is best effort; the message is already stored.
		_ = relay.Publish(*m)
	}
	return m, res
}

// Receive applies a relayed message to the open thread.
func (c *Chat) Receive(m models.Message) bool {
	t := c.current()
	if t == nil {
		return false
	}
	return t.Accept(m)
}

// Messages returns the open thread's messages.
func (c *Chat) Messages() []models.Message {
	t := c.current()
	if t == nil {
		return nil
	}
	return t.Messages()
}
