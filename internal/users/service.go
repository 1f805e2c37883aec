package users

import (
	"context"
	"strings"
	"time"

	"github.com/letterwriter/letterwriter/internal/models"
)

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// UpsertFromGoogle creates or updates a user from a Google profile plus the
// OAuth tokens obtained during the callback exchange. Users are keyed by
// email and never deleted.
func (s *Service) UpsertFromGoogle(ctx context.Context, email, name, googleID, accessToken, refreshToken string, expiry time.Time) (*models.User, error) {
	if email == "" {
		return nil, nil
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	u := &models.User{
		Email:        email,
		Name:         name,
		GoogleID:     googleID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenExpiry:  expiry,
	}
	return s.repo.UpsertByEmail(ctx, u)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateTokens persists a refreshed access token (and the rotated refresh
// token when present) before any remote call is made with it.
func (s *Service) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	return s.repo.UpdateTokens(ctx, id, accessToken, refreshToken, expiry)
}
