package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letterwriter/letterwriter/internal/models"
)

// MemoryRepository is an in-memory Repository used by unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.User // keyed by id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.User)}
}

func (m *MemoryRepository) UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, existing := range m.store {
		if existing.Email == u.Email {
			existing.Name = u.Name
			existing.GoogleID = u.GoogleID
			existing.AccessToken = u.AccessToken
			existing.RefreshToken = u.RefreshToken
			existing.TokenExpiry = u.TokenExpiry
			existing.UpdatedAt = now
			cp := *existing
			return &cp, nil
		}
	}
	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now
	m.store[created.ID] = &created
	cp := created
	return &cp, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil
	}
	u.AccessToken = accessToken
	if refreshToken != "" {
		u.RefreshToken = refreshToken
	}
	u.TokenExpiry = expiry
	u.UpdatedAt = time.Now().UTC()
	return nil
}
