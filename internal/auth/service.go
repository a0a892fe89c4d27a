package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/pliu/chatsight/internal/apperrors"
	"github.com/pliu/chatsight/internal/logger"
	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	Store    store.Store
	Tokens   *Tokens
	HashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(s store.Store, tokens *Tokens) *Service {
	return &Service{Store: s, Tokens: tokens, HashCost: bcrypt.DefaultCost}
}

type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*models.PublicUser, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	exists, err := s.Store.EmailExists(ctx, email)
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Server error", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.ErrStore(err)
	}

	logger.L().Info("user registered", zap.Int64("user_id", user.ID))
	pub := user.Public()
	return &pub, nil
}

// Login returns the same error for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	user, err := s.Store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Server error", err)
	}
	return &LoginResult{
		Token: token,
		User:  models.PublicUser{ID: user.ID, Email: user.Email},
	}, nil
}

// Authenticate resolves an Authorization header value to an identity.
func (s *Service) Authenticate(header string) (*Identity, bool) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, false
	}
	return s.Tokens.Verify(token)
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("chatsight-dummy-password"), s.HashCost)
	})
	return s.dummyHash
}

// Logout keeps no server state; the client discards its token. It reports
// whether a live token was presented.
func (s *Service) Logout(header string) string {
	if _, ok := s.Authenticate(header); ok {
		return "Logout successful"
	}
	return "Already logged out"
}
