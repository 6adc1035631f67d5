package sessions

import "context"

// Repository persists recorded sessions per user.
type Repository interface {
	Save(ctx context.Context, session StoredSession) error
	ListByUser(ctx context.Context, userID string) ([]StoredSession, error)
}
