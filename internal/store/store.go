package store

import (
	"context"
	"errors"

	"github.com/pliu/chatsight/internal/models"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateEmail = errors.New("store: email already exists")
)

type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsersExcept(ctx context.Context, id int64) ([]models.User, error)

	// Message operations
	SaveMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error)
	GetConversation(ctx context.Context, userA, userB int64) ([]models.Message, error)

	// Insight operations
	LatestInsight(ctx context.Context, conversationID string) (*models.Insight, error)
	SaveInsight(ctx context.Context, insight *models.Insight) error
}
