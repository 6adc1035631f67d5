package sessions

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/surfai/internal/domain/prediction"
	"github.com/yanqian/surfai/internal/domain/spots"
	apperrors "github.com/yanqian/surfai/pkg/errors"
	"github.com/yanqian/surfai/pkg/util"
)

// nearestSpotRadiusKm bounds coordinate-based spot resolution.
const nearestSpotRadiusKm = 5.0

// Service records quick session entries and serves stored histories.
type Service interface {
	Record(ctx context.Context, userID string, entry QuickEntry) (StoredSession, error)
	List(ctx context.Context, userID string) ([]StoredSession, error)
	Stats(ctx context.Context, userID string) (Stats, error)
	SessionsFor(ctx context.Context, userID string) ([]prediction.Session, error)
}

type service struct {
	repo       Repository
	catalog    *spots.Catalog
	forecaster prediction.Forecaster
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires up the session recording domain. forecaster may be nil;
// entries then keep whatever conditions the user typed in.
func NewService(repo Repository, catalog *spots.Catalog, forecaster prediction.Forecaster, logger *slog.Logger) Service {
	return &service{
		repo:       repo,
		catalog:    catalog,
		forecaster: forecaster,
		logger:     logger.With("component", "sessions.service"),
		now:        util.NowUTC,
	}
}

func (s *service) Record(ctx context.Context, userID string, entry QuickEntry) (StoredSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return StoredSession{}, apperrors.Wrap("invalid_input", "userId is required", nil)
	}
	if entry.Rating < 1 || entry.Rating > 10 {
		return StoredSession{}, apperrors.Wrap("invalid_input", "rating must be between 1 and 10", nil)
	}

	spot, err := s.resolveSpot(entry)
	if err != nil {
		return StoredSession{}, err
	}

	date := s.now()
	if strings.TrimSpace(entry.Date) != "" {
		parsed, parseErr := time.Parse(time.RFC3339, entry.Date)
		if parseErr != nil {
			return StoredSession{}, apperrors.Wrap("invalid_input", "date must be RFC 3339 formatted", parseErr)
		}
		date = parsed
	}

	session := StoredSession{
		ID:              uuid.NewString(),
		UserID:          userID,
		SpotID:          spot.ID,
		SpotName:        spot.Name,
		Rating:          entry.Rating,
		Date:            date,
		DurationMinutes: entry.DurationMinutes,
		Notes:           entry.Notes,
		Source:          "manual",
		CreatedAt:       s.now(),
	}
	if entry.Conditions != nil {
		session.Conditions = entry.Conditions.ToConditionSet()
	}

	if session.Conditions.WaveHeight == nil && s.forecaster != nil {
		conditions, fetchErr := s.forecaster.Fetch(ctx, spot.Latitude, spot.Longitude, date)
		if fetchErr != nil {
			// Keep the bare entry rather than failing the whole recording.
			s.logger.Warn("condition auto-completion failed", "spot", spot.ID, "error", fetchErr)
		} else {
			session.Conditions = conditions
			session.Source = "auto_completed"
		}
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return StoredSession{}, apperrors.Wrap("storage_error", "failed to save session", err)
	}
	s.logger.Info("session recorded", "user_id", userID, "spot", spot.ID, "rating", entry.Rating, "source", session.Source)
	return session, nil
}

func (s *service) resolveSpot(entry QuickEntry) (spots.Spot, error) {
	if name := strings.TrimSpace(entry.SpotName); name != "" {
		spot, ok := s.catalog.Get(name)
		if !ok {
			return spots.Spot{}, apperrors.Wrap("unknown_spot", "spot "+name+" is not in the characteristics table", nil)
		}
		return spot, nil
	}
	if entry.Coordinates != nil {
		nearest, ok := s.catalog.Nearest(entry.Coordinates.Lat, entry.Coordinates.Lng, nearestSpotRadiusKm)
		if !ok {
			return spots.Spot{}, apperrors.Wrap("unknown_spot", "no known spot within 5km of the given coordinates", nil)
		}
		return nearest.Spot, nil
	}
	return spots.Spot{}, apperrors.Wrap("invalid_input", "spotName or coordinates are required", nil)
}

func (s *service) List(ctx context.Context, userID string) ([]StoredSession, error) {
	stored, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to list sessions", err)
	}
	return stored, nil
}

func (s *service) Stats(ctx context.Context, userID string) (Stats, error) {
	stored, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Stats{}, apperrors.Wrap("storage_error", "failed to list sessions", err)
	}
	stats := Stats{
		TotalSessions: len(stored),
		SpotCounts:    make(map[string]int, 4),
	}
	var sum float64
	for _, sess := range stored {
		sum += sess.Rating
		stats.SpotCounts[sess.SpotID]++
		if sess.Date.After(stats.LastSession) {
			stats.LastSession = sess.Date
		}
	}
	if len(stored) > 0 {
		stats.AverageRating = math.Round(sum/float64(len(stored))*10) / 10
	}
	return stats, nil
}

// SessionsFor implements prediction.SessionSource, feeding stored sessions
// into analysis when an analyze request carries none.
func (s *service) SessionsFor(ctx context.Context, userID string) ([]prediction.Session, error) {
	stored, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]prediction.Session, 0, len(stored))
	for _, sess := range stored {
		out = append(out, prediction.Session{
			Spot:       strings.ToLower(sess.SpotID),
			Rating:     sess.Rating,
			Date:       sess.Date,
			Conditions: sess.Conditions,
		})
	}
	return out, nil
}
