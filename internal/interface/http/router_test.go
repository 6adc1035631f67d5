package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/surfai/internal/domain/prediction"
	"github.com/yanqian/surfai/internal/domain/sessions"
	"github.com/yanqian/surfai/internal/domain/spots"
	"github.com/yanqian/surfai/internal/infra/config"
	apperrors "github.com/yanqian/surfai/pkg/errors"
)

func newTestServer(t *testing.T, apiKey string, predictionSvc prediction.Service, sessionsSvc sessions.Service) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address: ":0",
			APIKey:  apiKey,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(predictionSvc, sessionsSvc, spots.NewFrenchAtlanticCatalog(), prediction.Config{MinSessions: 3}, logger)
	return NewRouter(cfg, handler)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, "", &stubPredictionService{}, &stubSessionsService{})

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	server := newTestServer(t, "secret", &stubPredictionService{}, &stubSessionsService{})

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/spots", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/spots", nil)
	req.Header.Set("X-API-Key", "wrong")
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/spots", nil)
	req.Header.Set("X-API-Key", "secret")
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Health stays reachable without the key.
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	svc := &stubPredictionService{
		profile: &prediction.UserProfile{UserID: "user-1", TotalSessions: 3, ReliabilityScore: 0.5},
	}
	server := newTestServer(t, "", svc, &stubSessionsService{})

	body := `{"userId": "user-1", "sessions": [{"spot": "biarritz", "rating": 8, "date": "2025-06-01", "conditions": {"waveHeight": 1.5, "windSpeed": 12}}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", svc.lastUserID)
	require.Len(t, svc.lastRaw, 1)

	var payload struct {
		Profile prediction.UserProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "user-1", payload.Profile.UserID)
}

func TestAnalyzeInsufficientDataMapsTo422(t *testing.T) {
	svc := &stubPredictionService{
		err: apperrors.Wrap("insufficient_data", "at least 3 rated sessions are required for analysis", nil),
	}
	server := newTestServer(t, "", svc, &stubSessionsService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/analyze", strings.NewReader(`{"userId": "user-1"}`))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "insufficient_data")
}

func TestPredictProfileNotFoundMapsTo404(t *testing.T) {
	svc := &stubPredictionService{
		err: apperrors.Wrap("profile_not_found", "no analyzed profile for this user", nil),
	}
	server := newTestServer(t, "", svc, &stubSessionsService{})

	body := `{"userId": "user-1", "spot": "biarritz", "conditions": {"waveHeight": 1.5, "windSpeed": 12}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "profile_not_found")
}

func TestPredictEndpoint(t *testing.T) {
	svc := &stubPredictionService{
		result: &prediction.Prediction{PredictedScore: 7.5, Confidence: 60},
	}
	server := newTestServer(t, "", svc, &stubSessionsService{})

	body := `{"userId": "user-1", "spot": "biarritz", "conditions": {"waveHeight": 1.5, "windSpeed": 12, "windDirection": 90}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "biarritz", svc.lastSpot)
	require.Equal(t, "E", svc.lastConditions.WindDirection)
	require.Contains(t, rec.Body.String(), `"predictedScore":7.5`)
}

func TestPredictWithWeatherInvalidDate(t *testing.T) {
	server := newTestServer(t, "", &stubPredictionService{}, &stubSessionsService{})

	body := `{"userId": "user-1", "spot": "biarritz", "at": "tomorrow"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/predict-with-weather", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackEndpoint(t *testing.T) {
	svc := &stubPredictionService{feedback: prediction.FeedbackResult{PredictionError: 0.5, NewConfidence: 62}}
	server := newTestServer(t, "", svc, &stubSessionsService{})

	body := `{"userId": "user-1", "sessionId": "s-1", "actualRating": 7, "predictedScore": 7.5}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"predictionError":0.5`)
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer(t, "", &stubPredictionService{}, &stubSessionsService{})

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ai/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"minSessionsRequired":3`)
	require.Contains(t, rec.Body.String(), `"spots":5`)
}

func TestRecordSessionEndpoint(t *testing.T) {
	svc := &stubSessionsService{
		recorded: sessions.StoredSession{ID: "s-1", SpotID: "biarritz", Rating: 8, Source: "manual"},
	}
	server := newTestServer(t, "", &stubPredictionService{}, svc)

	body := `{"userId": "user-1", "spotName": "biarritz", "rating": 8}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "user-1", svc.lastUserID)
	require.Equal(t, "biarritz", svc.lastEntry.SpotName)
}

func TestListSessionsEndpoint(t *testing.T) {
	svc := &stubSessionsService{
		list: []sessions.StoredSession{{ID: "s-1"}, {ID: "s-2"}},
	}
	server := newTestServer(t, "", &stubPredictionService{}, svc)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/user-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", svc.lastUserID)
	require.Contains(t, rec.Body.String(), `"count":2`)
}

func TestNearbySpotsEndpoint(t *testing.T) {
	server := newTestServer(t, "", &stubPredictionService{}, &stubSessionsService{})

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/spots/nearby?lat=43.4832&lng=-1.5586&radiusKm=20", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "biarritz")

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/spots/nearby?lat=oops", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubPredictionService struct {
	profile    *prediction.UserProfile
	result     *prediction.Prediction
	feedback   prediction.FeedbackResult
	err        error

	lastUserID     string
	lastSpot       string
	lastRaw        []prediction.RawSession
	lastConditions prediction.ConditionSet
}

func (s *stubPredictionService) Analyze(_ context.Context, userID string, raw []prediction.RawSession) (*prediction.UserProfile, error) {
	s.lastUserID, s.lastRaw = userID, raw
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubPredictionService) Predict(_ context.Context, userID string, conditions prediction.ConditionSet, spot string) (*prediction.Prediction, error) {
	s.lastUserID, s.lastConditions, s.lastSpot = userID, conditions, spot
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPredictionService) PredictWithForecast(_ context.Context, userID string, spot string, _ time.Time) (*prediction.Prediction, error) {
	s.lastUserID, s.lastSpot = userID, spot
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPredictionService) Feedback(_ context.Context, userID, _ string, _, _ float64) (prediction.FeedbackResult, error) {
	s.lastUserID = userID
	if s.err != nil {
		return prediction.FeedbackResult{}, s.err
	}
	return s.feedback, nil
}

func (s *stubPredictionService) Profile(_ context.Context, userID string) (*prediction.UserProfile, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

type stubSessionsService struct {
	recorded sessions.StoredSession
	list     []sessions.StoredSession
	stats    sessions.Stats
	err      error

	lastUserID string
	lastEntry  sessions.QuickEntry
}

func (s *stubSessionsService) Record(_ context.Context, userID string, entry sessions.QuickEntry) (sessions.StoredSession, error) {
	s.lastUserID, s.lastEntry = userID, entry
	if s.err != nil {
		return sessions.StoredSession{}, s.err
	}
	return s.recorded, nil
}

func (s *stubSessionsService) List(_ context.Context, userID string) ([]sessions.StoredSession, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubSessionsService) Stats(_ context.Context, userID string) (sessions.Stats, error) {
	s.lastUserID = userID
	if s.err != nil {
		return sessions.Stats{}, s.err
	}
	return s.stats, nil
}

func (s *stubSessionsService) SessionsFor(_ context.Context, userID string) ([]prediction.Session, error) {
	s.lastUserID = userID
	return nil, nil
}
