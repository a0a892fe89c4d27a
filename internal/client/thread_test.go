package client

import (
	"testing"

	"github.com/pliu/chatsight/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestThreadAccept(t *testing.T) {
	tests := []struct {
		name    string
		partner int64
		msg     models.Message
		want    bool
	}{
		{"from partner", 2, models.Message{SenderID: 2, ReceiverID: 1}, true},
		{"own message echoed", 2, models.Message{SenderID: 1, ReceiverID: 2}, true},
		{"other conversation of viewer", 2, models.Message{SenderID: 3, ReceiverID: 1}, false},
		{"viewer not a party", 2, models.Message{SenderID: 2, ReceiverID: 3}, false},
		{"no active partner", 0, models.Message{SenderID: 2, ReceiverID: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewThread(1)
			th.Select(tt.partner)
			assert.Equal(t, tt.want, th.Accept(tt.msg))
			if tt.want {
				assert.Len(t, th.Messages(), 1)
			} else {
				assert.Empty(t, th.Messages())
			}
		})
	}
}

func TestThreadSelectResets(t *testing.T) {
	th := NewThread(1)
	th.Select(2)
	th.Append(models.Message{ID: 1, SenderID: 1, ReceiverID: 2})
	th.Select(3)
	assert.Empty(t, th.Messages())
	assert.Equal(t, int64(3), th.Partner())

	// A late history response for the previous partner is discarded.
	assert.False(t, th.Load(2, []models.Message{{ID: 9}}))
	assert.True(t, th.Load(3, []models.Message{{ID: 10}}))
	assert.Len(t, th.Messages(), 1)
}

func TestSessionLifecycle(t *testing.T) {
	var s Session
	assert.False(t, s.Active())
	_, ok := s.User()
	assert.False(t, ok)

	s.Begin("tok", models.PublicUser{ID: 7, Email: "a@example.com"})
	assert.True(t, s.Active())
	assert.Equal(t, "tok", s.Token())
	u, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, int64(7), u.ID)

	s.End()
	assert.False(t, s.Active())
	assert.Empty(t, s.Token())
}

func TestInsightCache(t *testing.T) {
	c := NewInsightCache()
	_, ok := c.Get(2)
	assert.False(t, ok)

	c.Put(2, Insight{Summary: "Hi", Sentiment: "positive"})
	got, ok := c.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "Hi", got.Summary)

	c.Clear()
	_, ok = c.Get(2)
	assert.False(t, ok)
}
