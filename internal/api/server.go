// Package api exposes the prescription-analysis services over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
	"github.com/prescription-analysis-server/internal/middleware"
	"github.com/prescription-analysis-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	analyzer      *service.PrescriptionAnalyzer
	aggregator    *service.InteractionAggregator
	alternatives  domain.AlternativeResolver
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager domain.ConfigManager,
	analyzer *service.PrescriptionAnalyzer,
	aggregator *service.InteractionAggregator,
	alternatives domain.AlternativeResolver,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(middleware.RequestLogger(logger))

	server := &Server{
		configManager: configManager,
		analyzer:      analyzer,
		aggregator:    aggregator,
		alternatives:  alternatives,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler returns the configured router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/prescriptions/analyze", s.handleAnalyzePrescription)
		v1.POST("/interactions/check", s.handleCheckInteractions)
		v1.GET("/medicines/:name/alternatives", s.handleGetAlternatives)
	}
}

// analyzeRequest is the body of POST /prescriptions/analyze.
type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// checkRequest is the body of POST /interactions/check.
type checkRequest struct {
	Medicines []string `json:"medicines" binding:"required,min=2"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleAnalyzePrescription extracts medicine entities from prescription
// text and returns them with their safety report.
func (s *Server) handleAnalyzePrescription(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "prescription text is required")
		return
	}

	analysis := s.analyzer.AnalyzePrescription(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, analysis)
}

// handleCheckInteractions runs the interaction check for an explicit
// medicine list.
func (s *Server) handleCheckInteractions(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "at least two medicine names are required")
		return
	}

	report := s.aggregator.CheckAll(c.Request.Context(), req.Medicines)
	c.JSON(http.StatusOK, report)
}

// handleGetAlternatives returns replacement candidates for one medicine.
func (s *Server) handleGetAlternatives(c *gin.Context) {
	name := c.Param("name")

	candidates, err := s.alternatives.Resolve(name)
	if err != nil {
		if errors.Is(err, domain.ErrMedicineNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrNotFound, fmt.Sprintf("medicine %q not found", name))
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "failed to resolve alternatives")
		return
	}

	if candidates == nil {
		candidates = []domain.AlternativeCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{
		"medicine":     name,
		"alternatives": candidates,
	})
}

// respondError writes the standard error envelope.
func (s *Server) respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, domain.APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
	})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
