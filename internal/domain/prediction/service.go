package prediction

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	apperrors "github.com/yanqian/surfai/pkg/errors"
	"github.com/yanqian/surfai/pkg/util"
)

// Service exposes the personalized analysis and prediction operations.
type Service interface {
	Analyze(ctx context.Context, userID string, raw []RawSession) (*UserProfile, error)
	Predict(ctx context.Context, userID string, conditions ConditionSet, spot string) (*Prediction, error)
	PredictWithForecast(ctx context.Context, userID string, spot string, at time.Time) (*Prediction, error)
	Feedback(ctx context.Context, userID, sessionID string, actualRating, predictedScore float64) (FeedbackResult, error)
	Profile(ctx context.Context, userID string) (*UserProfile, error)
}

// Forecaster supplies future conditions for a coordinate; the core never
// talks to the network itself.
type Forecaster interface {
	Fetch(ctx context.Context, lat, lng float64, at time.Time) (ConditionSet, error)
}

// SessionSource supplies a user's stored sessions when an analyze request
// carries none of its own.
type SessionSource interface {
	SessionsFor(ctx context.Context, userID string) ([]Session, error)
}

// Config holds runtime knobs for the prediction domain.
type Config struct {
	Weights     ScoringWeights
	MinSessions int
}

type service struct {
	cfg        Config
	store      ProfileStore
	catalog    SpotCatalog
	forecaster Forecaster
	sessions   SessionSource
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires up the prediction domain.
func NewService(cfg Config, store ProfileStore, catalog SpotCatalog, forecaster Forecaster, sessions SessionSource, logger *slog.Logger) Service {
	if cfg.Weights.sum() <= 0 {
		cfg.Weights = DefaultScoringWeights()
	}
	if cfg.MinSessions <= 0 {
		cfg.MinSessions = 3
	}
	return &service{
		cfg:        cfg,
		store:      store,
		catalog:    catalog,
		forecaster: forecaster,
		sessions:   sessions,
		logger:     logger.With("component", "prediction.service"),
		now:        util.NowUTC,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock serializes profile writes and reads per user id so a predict
// call never observes a half-written profile.
func (s *service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *service) Analyze(ctx context.Context, userID string, raw []RawSession) (*UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.Wrap("invalid_input", "userId is required", nil)
	}

	sessions := Normalize(raw)
	if len(sessions) == 0 && s.sessions != nil {
		stored, err := s.sessions.SessionsFor(ctx, userID)
		if err != nil {
			return nil, apperrors.Wrap("storage_error", "failed to load stored sessions", err)
		}
		sessions = stored
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := AnalyzeProfile(userID, sessions, s.cfg.MinSessions, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, profile); err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to persist profile", err)
	}
	s.logger.Info("profile analyzed",
		"user_id", userID,
		"sessions", profile.TotalSessions,
		"reliability", profile.ReliabilityScore)
	return profile, nil
}

func (s *service) Predict(ctx context.Context, userID string, conditions ConditionSet, spot string) (*Prediction, error) {
	lock := s.userLock(userID)
	lock.Lock()
	profile, ok, err := s.store.Get(ctx, userID)
	lock.Unlock()
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if !ok {
		return nil, apperrors.Wrap("profile_not_found", "no analyzed profile for this user, call analyze first", nil)
	}

	characteristics, ok := s.catalog.Characteristics(spot)
	if !ok {
		return nil, apperrors.Wrap("unknown_spot", "spot "+spot+" is not in the characteristics table", nil)
	}

	prediction, err := Score(profile, conditions, characteristics, s.cfg.Weights, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("session quality predicted",
		"user_id", userID,
		"spot", characteristics.Name,
		"score", prediction.PredictedScore,
		"confidence", prediction.Confidence)
	return prediction, nil
}

func (s *service) PredictWithForecast(ctx context.Context, userID string, spot string, at time.Time) (*Prediction, error) {
	if s.forecaster == nil {
		return nil, apperrors.Wrap("forecast_error", "no weather provider configured", nil)
	}
	characteristics, ok := s.catalog.Characteristics(spot)
	if !ok {
		return nil, apperrors.Wrap("unknown_spot", "spot "+spot+" is not in the characteristics table", nil)
	}
	if at.IsZero() {
		at = s.now()
	}
	conditions, err := s.forecaster.Fetch(ctx, characteristics.Latitude, characteristics.Longitude, at)
	if err != nil {
		return nil, apperrors.Wrap("forecast_error", "failed to fetch forecast conditions", err)
	}
	return s.Predict(ctx, userID, conditions, spot)
}

// Feedback compares an actual outcome to its prediction and nudges the
// stored reliability so future confidences reflect observed accuracy.
func (s *service) Feedback(ctx context.Context, userID, sessionID string, actualRating, predictedScore float64) (FeedbackResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	profile, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return FeedbackResult{}, apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if !ok {
		return FeedbackResult{}, apperrors.Wrap("profile_not_found", "no analyzed profile for this user, call analyze first", nil)
	}

	predictionError := math.Abs(actualRating - predictedScore)
	switch {
	case predictionError > 2:
		profile.ReliabilityScore = clamp(profile.ReliabilityScore-0.05, 0.1, 1)
	case predictionError <= 1:
		profile.ReliabilityScore = clamp(profile.ReliabilityScore+0.02, 0.1, 1)
	}
	if err := s.store.Put(ctx, profile); err != nil {
		return FeedbackResult{}, apperrors.Wrap("storage_error", "failed to persist profile", err)
	}

	s.logger.Info("feedback recorded",
		"user_id", userID,
		"session_id", sessionID,
		"prediction_error", predictionError)
	return FeedbackResult{
		PredictionError: round1(predictionError),
		NewConfidence:   PredictionConfidence(profile),
	}, nil
}

func (s *service) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	profile, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if !ok {
		return nil, apperrors.Wrap("profile_not_found", "no analyzed profile for this user", nil)
	}
	return profile, nil
}
