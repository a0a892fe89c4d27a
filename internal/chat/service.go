// Package chat persists and reads direct messages between two users.
package chat

import (
	"context"

	"github.com/pliu/chatsight/internal/apperrors"
	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/store"
)

type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// ListConversation returns the full history between a and b, oldest first.
func (s *Service) ListConversation(ctx context.Context, a, b int64) ([]models.Message, error) {
	if b == 0 {
		return nil, apperrors.ErrMissingPartner
	}
	messages, err := s.Store.GetConversation(ctx, a, b)
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}
	return messages, nil
}

// Send persists a message. Publishing it on the relay is the caller's job.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error) {
	if receiverID == 0 || text == "" {
		return nil, apperrors.ErrMissingFields
	}
	m, err := s.Store.SaveMessage(ctx, senderID, receiverID, text)
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}
	return m, nil
}

// ListUsers returns everyone except the viewer, ordered by name.
func (s *Service) ListUsers(ctx context.Context, viewerID int64) ([]models.PublicUser, error) {
	users, err := s.Store.ListUsersExcept(ctx, viewerID)
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}
