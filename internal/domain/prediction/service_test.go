package prediction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/surfai/pkg/errors"
)

var serviceNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(store *stubStore, forecaster Forecaster, source SessionSource) *service {
	return &service{
		cfg:        Config{Weights: DefaultScoringWeights(), MinSessions: 3},
		store:      store,
		catalog:    stubCatalog{},
		forecaster: forecaster,
		sessions:   source,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        func() time.Time { return serviceNow },
		locks:      make(map[string]*sync.Mutex),
	}
}

func rawHistory() []RawSession {
	mk := func(rating, wave, wind float64, date string) RawSession {
		return RawSession{
			Spot:   "biarritz",
			Rating: &rating,
			Date:   date,
			Conditions: &RawConditions{
				WaveHeight: &wave,
				WindSpeed:  &wind,
			},
		}
	}
	return []RawSession{
		mk(8, 1.0, 10, "2025-06-01"),
		mk(6, 2.0, 20, "2025-06-05"),
		mk(7, 1.5, 15, "2025-06-10"),
	}
}

func TestServiceAnalyzePersistsProfile(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)

	profile, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)
	require.Equal(t, "user-1", profile.UserID)
	require.Equal(t, 3, profile.TotalSessions)

	stored, ok := store.profiles["user-1"]
	require.True(t, ok)
	require.Equal(t, profile, stored)
}

func TestServiceAnalyzeRequiresUserID(t *testing.T) {
	svc := newTestService(newStubStore(), nil, nil)

	_, err := svc.Analyze(context.Background(), "  ", rawHistory())
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceAnalyzeFallsBackToStoredSessions(t *testing.T) {
	store := newStubStore()
	source := &stubSource{sessions: []Session{
		sess("biarritz", 8, serviceNow.AddDate(0, 0, -14), 1.0, 10),
		sess("biarritz", 6, serviceNow.AddDate(0, 0, -8), 2.0, 20),
		sess("biarritz", 7, serviceNow.AddDate(0, 0, -5), 1.5, 15),
	}}
	svc := newTestService(store, nil, source)

	profile, err := svc.Analyze(context.Background(), "user-1", nil)
	require.NoError(t, err)
	require.Equal(t, 3, profile.TotalSessions)
	require.Equal(t, "user-1", source.lastUser)
}

func TestServiceAnalyzeStorageFailure(t *testing.T) {
	store := newStubStore()
	store.putErr = errors.New("boom")
	svc := newTestService(store, nil, nil)

	_, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.True(t, apperrors.IsCode(err, "storage_error"))
}

func TestServicePredictWithoutProfile(t *testing.T) {
	svc := newTestService(newStubStore(), nil, nil)

	_, err := svc.Predict(context.Background(), "user-1", ConditionSet{WaveHeight: Float(1.5), WindSpeed: Float(10)}, "biarritz")
	require.True(t, apperrors.IsCode(err, "profile_not_found"))
}

func TestServicePredictUnknownSpot(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)
	_, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), "user-1", ConditionSet{WaveHeight: Float(1.5), WindSpeed: Float(10)}, "nazare")
	require.True(t, apperrors.IsCode(err, "unknown_spot"))
}

func TestServiceAnalyzeThenPredict(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)
	_, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)

	// Conditions matching the learned optimums should rate well.
	p, err := svc.Predict(context.Background(), "user-1", ConditionSet{WaveHeight: Float(1.5), WindSpeed: Float(15)}, "biarritz")
	require.NoError(t, err)
	require.GreaterOrEqual(t, p.PredictedScore, 7.0)
	require.Equal(t, "Biarritz - Grande Plage", p.Spot)
	require.Equal(t, serviceNow, p.GeneratedAt)
}

func TestServiceReanalysisReplacesProfileWholesale(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)

	first, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, second, store.profiles["user-1"])
}

func TestServicePredictWithForecast(t *testing.T) {
	store := newStubStore()
	forecaster := &stubForecaster{conditions: ConditionSet{
		WaveHeight:    Float(1.5),
		WindSpeed:     Float(15),
		WaveDirection: "NW",
	}}
	svc := newTestService(store, forecaster, nil)
	_, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)

	p, err := svc.PredictWithForecast(context.Background(), "user-1", "biarritz", time.Time{})
	require.NoError(t, err)
	require.Greater(t, p.PredictedScore, 5.0)
	require.Equal(t, serviceNow, forecaster.lastAt)
	require.InDelta(t, 43.4832, forecaster.lastLat, 1e-6)
}

func TestServicePredictWithForecastNoProvider(t *testing.T) {
	svc := newTestService(newStubStore(), nil, nil)

	_, err := svc.PredictWithForecast(context.Background(), "user-1", "biarritz", time.Time{})
	require.True(t, apperrors.IsCode(err, "forecast_error"))
}

func TestServicePredictWithForecastProviderFailure(t *testing.T) {
	store := newStubStore()
	forecaster := &stubForecaster{err: errors.New("quota exhausted")}
	svc := newTestService(store, forecaster, nil)
	_, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)

	_, err = svc.PredictWithForecast(context.Background(), "user-1", "biarritz", time.Time{})
	require.True(t, apperrors.IsCode(err, "forecast_error"))
}

func TestServiceFeedbackAdjustsReliability(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)
	profile, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)
	before := profile.ReliabilityScore

	// A large miss lowers reliability.
	result, err := svc.Feedback(context.Background(), "user-1", "sess-1", 3, 8)
	require.NoError(t, err)
	require.Equal(t, 5.0, result.PredictionError)
	require.InDelta(t, before-0.05, store.profiles["user-1"].ReliabilityScore, 1e-9)

	// An accurate prediction earns some back.
	lowered := store.profiles["user-1"].ReliabilityScore
	_, err = svc.Feedback(context.Background(), "user-1", "sess-2", 7, 7.5)
	require.NoError(t, err)
	require.InDelta(t, lowered+0.02, store.profiles["user-1"].ReliabilityScore, 1e-9)
}

func TestServiceFeedbackWithoutProfile(t *testing.T) {
	svc := newTestService(newStubStore(), nil, nil)

	_, err := svc.Feedback(context.Background(), "user-1", "sess-1", 7, 7)
	require.True(t, apperrors.IsCode(err, "profile_not_found"))
}

func TestServiceProfile(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)

	_, err := svc.Profile(context.Background(), "user-1")
	require.True(t, apperrors.IsCode(err, "profile_not_found"))

	analyzed, err := svc.Analyze(context.Background(), "user-1", rawHistory())
	require.NoError(t, err)

	got, err := svc.Profile(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, analyzed, got)
}

type stubStore struct {
	profiles map[string]*UserProfile
	getErr   error
	putErr   error
}

func newStubStore() *stubStore {
	return &stubStore{profiles: make(map[string]*UserProfile)}
}

func (s *stubStore) Get(_ context.Context, userID string) (*UserProfile, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	profile, ok := s.profiles[userID]
	return profile, ok, nil
}

func (s *stubStore) Put(_ context.Context, profile *UserProfile) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *stubStore) Delete(_ context.Context, userID string) error {
	delete(s.profiles, userID)
	return nil
}

type stubCatalog struct{}

func (stubCatalog) Characteristics(name string) (SpotCharacteristics, bool) {
	if name != "biarritz" {
		return SpotCharacteristics{}, false
	}
	return SpotCharacteristics{
		Name:                  "Biarritz - Grande Plage",
		Latitude:              43.4832,
		Longitude:             -1.5586,
		OptimalWindDirections: []string{"NE", "E", "SE"},
		OptimalWaveDirections: []string{"NW", "W", "SW"},
	}, true
}

type stubForecaster struct {
	conditions ConditionSet
	err        error
	lastLat    float64
	lastLng    float64
	lastAt     time.Time
}

func (s *stubForecaster) Fetch(_ context.Context, lat, lng float64, at time.Time) (ConditionSet, error) {
	if s.err != nil {
		return ConditionSet{}, s.err
	}
	s.lastLat, s.lastLng, s.lastAt = lat, lng, at
	return s.conditions, nil
}

type stubSource struct {
	sessions []Session
	lastUser string
}

func (s *stubSource) SessionsFor(_ context.Context, userID string) ([]Session, error) {
	s.lastUser = userID
	return s.sessions, nil
}
