package profilestore

import (
	"context"
	"sync"

	"github.com/yanqian/surfai/internal/domain/prediction"
)

// MemoryStore is an in-memory implementation of the profile store for
// tests/dev. Profiles are copied on the way in and out so callers can never
// observe a half-written value.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]prediction.UserProfile
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]prediction.UserProfile)}
}

// Get implements prediction.ProfileStore.
func (s *MemoryStore) Get(_ context.Context, userID string) (*prediction.UserProfile, bool, error) {
	s.mu.RLock()
	profile, ok := s.profiles[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	copied := profile
	return &copied, true, nil
}

// Put replaces the stored profile wholesale.
func (s *MemoryStore) Put(_ context.Context, profile *prediction.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = *profile
	return nil
}

// Delete removes a user's profile if present.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, userID)
	return nil
}

var _ prediction.ProfileStore = (*MemoryStore)(nil)
