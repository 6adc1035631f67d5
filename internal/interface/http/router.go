package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/surfai/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/api/v1", apiKeyMiddleware(cfg.HTTP.APIKey))
	{
		ai := api.Group("/ai")
		{
			ai.POST("/analyze", handler.Analyze)
			ai.POST("/predict", handler.Predict)
			ai.POST("/predict-with-weather", handler.PredictWithWeather)
			ai.GET("/profile/:userId", handler.Profile)
			ai.POST("/feedback", handler.Feedback)
			ai.GET("/status", handler.Status)
		}

		api.POST("/sessions", handler.RecordSession)
		api.GET("/sessions/:userId", handler.ListSessions)
		api.GET("/sessions/:userId/stats", handler.SessionStats)

		api.GET("/spots", handler.ListSpots)
		api.GET("/spots/nearby", handler.NearbySpots)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
