package prediction

import "context"

// ProfileStore is the keyed persistence contract for learned profiles.
// The surrounding service owns eviction policy; the core only ever reads a
// whole profile or replaces one wholesale.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*UserProfile, bool, error)
	Put(ctx context.Context, profile *UserProfile) error
	Delete(ctx context.Context, userID string) error
}
