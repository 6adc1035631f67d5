package sessionrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/surfai/internal/domain/prediction"
	"github.com/yanqian/surfai/internal/domain/sessions"
)

// PostgresRepository implements sessions.Repository using pgx.
//
// Expected schema:
//
//	CREATE TABLE surf_sessions (
//	    id               TEXT PRIMARY KEY,
//	    user_id          TEXT NOT NULL,
//	    spot_id          TEXT NOT NULL,
//	    spot_name        TEXT NOT NULL,
//	    rating           DOUBLE PRECISION NOT NULL,
//	    session_date     TIMESTAMPTZ NOT NULL,
//	    duration_minutes INTEGER NOT NULL DEFAULT 0,
//	    notes            TEXT NOT NULL DEFAULT '',
//	    conditions       JSONB NOT NULL DEFAULT '{}',
//	    source           TEXT NOT NULL DEFAULT 'manual',
//	    created_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX surf_sessions_user_idx ON surf_sessions (user_id, session_date);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts a new session row.
func (r *PostgresRepository) Save(ctx context.Context, session sessions.StoredSession) error {
	conditions, err := json.Marshal(session.Conditions)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO surf_sessions
			(id, user_id, spot_id, spot_name, rating, session_date, duration_minutes, notes, conditions, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, session.ID, session.UserID, session.SpotID, session.SpotName, session.Rating,
		session.Date, session.DurationMinutes, session.Notes, conditions, session.Source, session.CreatedAt)
	return err
}

// ListByUser returns the user's sessions ordered by date ascending.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]sessions.StoredSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, spot_id, spot_name, rating, session_date, duration_minutes, notes, conditions, source, created_at
		FROM surf_sessions
		WHERE user_id = $1
		ORDER BY session_date
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sessions.StoredSession
	for rows.Next() {
		var (
			session    sessions.StoredSession
			conditions []byte
		)
		if err := rows.Scan(&session.ID, &session.UserID, &session.SpotID, &session.SpotName,
			&session.Rating, &session.Date, &session.DurationMinutes, &session.Notes,
			&conditions, &session.Source, &session.CreatedAt); err != nil {
			return nil, err
		}
		if len(conditions) > 0 {
			var cs prediction.ConditionSet
			if err := json.Unmarshal(conditions, &cs); err != nil {
				return nil, err
			}
			session.Conditions = cs
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

var _ sessions.Repository = (*PostgresRepository)(nil)
