package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/pliu/chatsight/internal/logger"
	"github.com/pliu/chatsight/internal/metrics"
	"go.uber.org/zap"
)

// Relay event names.
const (
	EventSend    = "send-message"
	EventReceive = "receive-message"
)

// Envelope is the frame exchanged with peers. Data is relayed untouched.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type publication struct {
	from *Client
	data json.RawMessage
}

// Hub is the single broadcast domain of the process. The peer set is owned by
// Run: it is mutated only on register and unregister and read on broadcast.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages to relay to every client but the sender.
	broadcast chan publication

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	peers    atomic.Int64
	upgrader websocket.Upgrader
}

// NewHub creates a hub. allowedOrigins restricts browser upgrades; "*" or an
// empty list allows any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		broadcast:  make(chan publication, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Run processes hub events until ctx is cancelled, then disconnects every peer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.setPeers()
			metrics.RelayEvents.WithLabelValues("connect").Inc()
			logger.L().Debug("relay peer connected", zap.String("peer", client.id))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				metrics.RelayEvents.WithLabelValues("disconnect").Inc()
				logger.L().Debug("relay peer disconnected", zap.String("peer", client.id))
			}
		case pub := <-h.broadcast:
			frame, err := json.Marshal(Envelope{Event: EventReceive, Data: pub.data})
			if err != nil {
				logger.L().Warn("dropping unencodable relay payload", zap.Error(err))
				continue
			}
			metrics.RelayEvents.WithLabelValues(EventSend).Inc()
			for client := range h.clients {
				if client == pub.from {
					continue
				}
				select {
				case client.send <- frame:
				default:
					// Slow peer: disconnect rather than block the domain.
					h.drop(client)
					metrics.RelayEvents.WithLabelValues("dropped").Inc()
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setPeers()
}

func (h *Hub) setPeers() {
	h.peers.Store(int64(len(h.clients)))
	metrics.RelayPeers.Set(float64(len(h.clients)))
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	return int(h.peers.Load())
}

// Publish relays data to every connected peer except from. from may be nil.
// Delivery is best effort; nothing is queued for absent peers.
func (h *Hub) Publish(from *Client, data json.RawMessage) {
	select {
	case h.broadcast <- publication{from: from, data: data}:
	case <-h.done:
	}
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
