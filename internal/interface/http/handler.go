package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/surfai/internal/domain/prediction"
	"github.com/yanqian/surfai/internal/domain/sessions"
	"github.com/yanqian/surfai/internal/domain/spots"
	apperrors "github.com/yanqian/surfai/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	predictionSvc prediction.Service
	sessionsSvc   sessions.Service
	catalog       *spots.Catalog
	minSessions   int
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(predictionSvc prediction.Service, sessionsSvc sessions.Service, catalog *spots.Catalog, predictionCfg prediction.Config, logger *slog.Logger) *Handler {
	minSessions := predictionCfg.MinSessions
	if minSessions <= 0 {
		minSessions = 3
	}
	return &Handler{
		predictionSvc: predictionSvc,
		sessionsSvc:   sessionsSvc,
		catalog:       catalog,
		minSessions:   minSessions,
		logger:        logger.With("component", "http.handler"),
	}
}

type analyzeRequest struct {
	UserID   string                  `json:"userId"`
	Sessions []prediction.RawSession `json:"sessions"`
}

// Analyze rebuilds a user's preference profile from session history.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	profile, err := h.predictionSvc.Analyze(c.Request.Context(), req.UserID, req.Sessions)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "analyze_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type predictRequest struct {
	UserID     string                    `json:"userId"`
	Spot       string                    `json:"spot"`
	Conditions *prediction.RawConditions `json:"conditions"`
}

// Predict scores a caller-supplied condition set against the stored profile.
func (h *Handler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.predictionSvc.Predict(c.Request.Context(), req.UserID, req.Conditions.ToConditionSet(), req.Spot)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "predict_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"prediction": result})
}

type predictWithWeatherRequest struct {
	UserID string `json:"userId"`
	Spot   string `json:"spot"`
	At     string `json:"at"`
}

// PredictWithWeather fetches a live forecast for the spot and scores it.
func (h *Handler) PredictWithWeather(c *gin.Context) {
	var req predictWithWeatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	var at time.Time
	if req.At != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.At)
		if parseErr != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "at must be RFC 3339 formatted", parseErr))
			return
		}
		at = parsed
	}

	result, err := h.predictionSvc.PredictWithForecast(c.Request.Context(), req.UserID, req.Spot, at)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "predict_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"prediction": result})
}

// Profile returns the stored profile for a user.
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.predictionSvc.Profile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithError(c, domainHTTPError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type feedbackRequest struct {
	UserID         string  `json:"userId"`
	SessionID      string  `json:"sessionId"`
	ActualRating   float64 `json:"actualRating"`
	PredictedScore float64 `json:"predictedScore"`
}

// Feedback records how a prediction compared against the actual outing.
func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.predictionSvc.Feedback(c.Request.Context(), req.UserID, req.SessionID, req.ActualRating, req.PredictedScore)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "feedback_failed"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status reports engine readiness and the active learning thresholds.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "operational",
		"minSessionsRequired": h.minSessions,
		"goodRatingThreshold": prediction.GoodRating,
		"spots":               len(h.catalog.List()),
	})
}

type recordSessionRequest struct {
	UserID string `json:"userId"`
	sessions.QuickEntry
}

// RecordSession stores a quick session entry, auto-completing conditions
// from the forecast provider when none are supplied.
func (h *Handler) RecordSession(c *gin.Context) {
	var req recordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	session, err := h.sessionsSvc.Record(c.Request.Context(), req.UserID, req.QuickEntry)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "record_failed"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// ListSessions returns a user's stored sessions ordered by date.
func (h *Handler) ListSessions(c *gin.Context) {
	stored, err := h.sessionsSvc.List(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithError(c, domainHTTPError(err, "list_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": stored, "count": len(stored)})
}

// SessionStats returns aggregate counters over a user's history.
func (h *Handler) SessionStats(c *gin.Context) {
	stats, err := h.sessionsSvc.Stats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithError(c, domainHTTPError(err, "stats_failed"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListSpots returns the spot catalog ordered by popularity.
func (h *Handler) ListSpots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"spots": h.catalog.List()})
}

// NearbySpots lists catalog spots within radiusKm of the given point.
func (h *Handler) NearbySpots(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat and lng query parameters are required", nil))
		return
	}
	radius := 50.0
	if raw := c.Query("radiusKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "radiusKm must be a positive number", err))
			return
		}
		radius = parsed
	}

	nearby := h.catalog.Nearby(lat, lng, radius)
	c.JSON(http.StatusOK, gin.H{"spots": nearby, "count": len(nearby)})
}

// Health is the unauthenticated liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// domainHTTPError maps domain error codes onto HTTP statuses.
func domainHTTPError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_input"), apperrors.IsCode(err, "invalid_conditions"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "insufficient_data"), apperrors.IsCode(err, "no_qualifying_sessions"):
		status = http.StatusUnprocessableEntity
		code = apperrors.CodeOf(err)
	case apperrors.IsCode(err, "profile_not_found"), apperrors.IsCode(err, "unknown_spot"):
		status = http.StatusNotFound
		code = apperrors.CodeOf(err)
	case apperrors.IsCode(err, "forecast_error"):
		status = http.StatusBadGateway
		code = "forecast_error"
	case apperrors.IsCode(err, "storage_error"):
		status = http.StatusInternalServerError
		code = "storage_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
