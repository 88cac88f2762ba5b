// Package http provides the HTTP server and router for the API.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/sentimeter/sentimeter/internal/auth/http"
	"github.com/sentimeter/sentimeter/internal/config"
	"github.com/sentimeter/sentimeter/internal/metrics"
	predictionHTTP "github.com/sentimeter/sentimeter/internal/prediction/http"
)

// RouterDeps holds the dependencies needed to build the API router.
type RouterDeps struct {
	Config            *config.Config
	Logger            *slog.Logger
	AuthHandler       *authHTTP.AuthHandler
	PredictionHandler *predictionHTTP.PredictionHandler
	AuthMiddleware    gin.HandlerFunc
	MetricsProvider   *metrics.Provider
	DB                *sql.DB
}

// NewRouter builds the Gin router with all API routes and middleware.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(deps.Config.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(deps.Logger))

	if corsMiddleware := createCORSMiddleware(
		deps.Config.CORSEnabled,
		deps.Config.CORSAllowOrigins,
		deps.Logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if deps.Config.MetricsEnabled && deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			deps.MetricsProvider.MeterProvider(),
			deps.Config.MetricsNamespace,
		))
	}

	// Health and readiness endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	api := router.Group("/api")

	// Unauthenticated credential endpoints, optionally rate limited per IP
	credentials := api.Group("")
	if deps.Config.RateLimitLoginEnabled {
		credentials.Use(authHTTP.CredentialRateLimitMiddleware(
			deps.Config.RateLimitLoginRequestsPerSec,
			deps.Config.RateLimitLoginBurst,
			deps.Logger,
		))
	}
	credentials.POST("/register", deps.AuthHandler.RegisterHandler)
	credentials.POST("/login", deps.AuthHandler.LoginHandler)

	// Authenticated prediction endpoints
	protected := api.Group("")
	protected.Use(deps.AuthMiddleware)
	protected.POST("/predictions", deps.PredictionHandler.CreateHandler)
	protected.GET("/predictions", deps.PredictionHandler.ListHandler)
	protected.GET("/predictions/:id", deps.PredictionHandler.GetHandler)
	protected.GET("/stats", deps.PredictionHandler.StatsHandler)

	return router
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server serving the given router.
func NewServer(host string, port int, logger *slog.Logger, router *gin.Engine) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
