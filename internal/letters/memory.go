package letters

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letterwriter/letterwriter/internal/apperr"
)

// MemoryRepository is a simple in-memory repository used by unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Letter
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Letter)}
}

func (m *MemoryRepository) Insert(ctx context.Context, l *Letter) (*Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	m.store[l.ID] = &cp
	return l, nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*Letter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *MemoryRepository) FindByOwner(ctx context.Context, ownerID string) ([]*Letter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Letter{}
	for _, l := range m.store {
		if l.UserID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id, title, content string, isDraft bool) (*Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	l.Title = title
	l.Content = content
	l.IsDraft = isDraft
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	return &cp, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepository) SetGoogleDocID(ctx context.Context, id, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[id]
	if !ok {
		return apperr.ErrNotFound
	}
	l.GoogleDocID = docID
	l.UpdatedAt = time.Now().UTC()
	return nil
}
