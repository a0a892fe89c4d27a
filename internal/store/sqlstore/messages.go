package sqlstore

import (
	"context"
	"time"

	"github.com/pliu/chatsight/internal/models"
)

func (s *SQLStore) SaveMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error) {
	// Postgres keeps microseconds, so the returned row matches a later read.
	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  s.now().UTC().Truncate(time.Microsecond),
	}
	query := s.rebind("INSERT INTO messages (sender_id, receiver_id, text, timestamp) VALUES (?, ?, ?, ?) RETURNING id")
	if err := s.db.QueryRowContext(ctx, query, m.SenderID, m.ReceiverID, m.Text, m.Timestamp).Scan(&m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLStore) GetConversation(ctx context.Context, userA, userB int64) ([]models.Message, error) {
	query := s.rebind(`
		SELECT id, sender_id, receiver_id, text, timestamp
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY timestamp ASC, id ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
