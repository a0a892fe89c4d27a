package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/ws"
)

// Conn is a connection to the relay.
type Conn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial connects to the relay of the server at baseURL (http or https).
func Dial(ctx context.Context, baseURL string) (*Conn, error) {
	u := strings.TrimRight(baseURL, "/") + "/ws"
	u = "ws" + strings.TrimPrefix(u, "http")
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, u, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &Conn{conn: c}, nil
}

// Publish hands a persisted message to the relay for the other peers.
func (c *Conn) Publish(m models.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(ws.Envelope{Event: ws.EventSend, Data: data})
}

// Listen calls fn for every relayed message until ctx is done or the
// connection fails. Frames that are not messages are skipped.
func (c *Conn) Listen(ctx context.Context, fn func(models.Message)) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()
	for {
		var env ws.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if env.Event != ws.EventReceive {
			continue
		}
		var m models.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			continue
		}
		fn(m)
	}
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
