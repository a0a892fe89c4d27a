package client

import (
	"sync"

	"github.com/pliu/chatsight/internal/models"
)

// Thread is the conversation currently on screen.
type Thread struct {
	mu        sync.Mutex
	viewerID  int64
	partnerID int64
	messages  []models.Message
}

func NewThread(viewerID int64) *Thread {
	return &Thread{viewerID: viewerID}
}

// Select switches to partnerID and clears the visible messages.
func (t *Thread) Select(partnerID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partnerID = partnerID
	t.messages = nil
}

func (t *Thread) Partner() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.partnerID
}

// Load replaces the messages if partnerID is still the active partner.
func (t *Thread) Load(partnerID int64, messages []models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if partnerID != t.partnerID {
		return false
	}
	t.messages = append([]models.Message(nil), messages...)
	return true
}

// Accept applies a message relayed by another peer. Relayed messages reach
// every connected client, so one is kept only when the viewer is a party to
// it and the other party is the active partner.
func (t *Thread) Accept(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.partnerID == 0 || !m.Involves(t.viewerID) {
		return false
	}
	if m.SenderID != t.partnerID && m.ReceiverID != t.partnerID {
		return false
	}
	t.messages = append(t.messages, m)
	return true
}

// Append adds a message the viewer just sent.
func (t *Thread) Append(m models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, m)
}

func (t *Thread) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Message(nil), t.messages...)
}
