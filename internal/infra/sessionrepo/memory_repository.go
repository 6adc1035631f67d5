package sessionrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/surfai/internal/domain/sessions"
)

// MemoryRepository is an in-memory session repository for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]sessions.StoredSession
}

// NewMemoryRepository constructs a repository backed by process memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string][]sessions.StoredSession)}
}

// Save implements sessions.Repository.
func (r *MemoryRepository) Save(_ context.Context, session sessions.StoredSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[session.UserID] = append(r.byUser[session.UserID], session)
	return nil
}

// ListByUser returns the user's sessions ordered by date ascending.
func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]sessions.StoredSession, error) {
	r.mu.RLock()
	stored := r.byUser[userID]
	r.mu.RUnlock()
	out := make([]sessions.StoredSession, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

var _ sessions.Repository = (*MemoryRepository)(nil)
