package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/store"
)

// LatestInsight returns the newest row for the conversation. Older duplicate
// rows from concurrent first requests are ignored.
func (s *SQLStore) LatestInsight(ctx context.Context, conversationID string) (*models.Insight, error) {
	query := s.rebind(`
		SELECT id, conversation_id, summary, sentiment
		FROM insights
		WHERE conversation_id = ?
		ORDER BY id DESC
		LIMIT 1
	`)
	var in models.Insight
	err := s.db.QueryRowContext(ctx, query, conversationID).Scan(&in.ID, &in.ConversationID, &in.Summary, &in.Sentiment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *SQLStore) SaveInsight(ctx context.Context, insight *models.Insight) error {
	query := s.rebind("INSERT INTO insights (conversation_id, summary, sentiment) VALUES (?, ?, ?) RETURNING id")
	return s.db.QueryRowContext(ctx, query, insight.ConversationID, insight.Summary, insight.Sentiment).Scan(&insight.ID)
}
