// Package http exposes the profile store over a JSON API built on gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/application/query"
	"github.com/alem-hub/wellness-hub/internal/application/store"
	"github.com/alem-hub/wellness-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/wellness-hub/internal/interface/http/handlers"
	"github.com/alem-hub/wellness-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	Host string
	Port int

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// TrustedProxies are the proxies whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// Address returns the listen address.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the routes need.
type Dependencies struct {
	Profiles  *store.Registry
	Dashboard *query.GetDashboardHandler

	// Health and BusMetrics are optional.
	Health     handlers.HealthChecker
	BusMetrics *messaging.EventBusMetrics

	Logger *zap.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the HTTP API server.
type Server struct {
	config     Config
	deps       Dependencies
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates the server and registers all routes.
func NewServer(config Config, deps Dependencies) (*Server, error) {
	if deps.Profiles == nil || deps.Dashboard == nil {
		return nil, errors.New("http: profiles and dashboard are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		deps:   deps,
		logger: deps.Logger.With(logger.Component("http")),
	}

	s.engine = gin.New()
	if err := s.engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("http: trusted proxies: %w", err)
	}
	s.engine.Use(
		handlers.Recovery(s.logger),
		handlers.RequestID(s.logger),
		handlers.Logger(s.logger),
	)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.engine,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/live", s.handleLive)

	v1 := s.engine.Group("/api/v1")
	profiles := v1.Group("/profiles")
	{
		profiles.POST("", s.handleCreateProfile)
		profiles.GET("", s.handleListProfiles)

		p := profiles.Group("/:id")
		p.GET("", s.handleGetProfile)
		p.GET("/notifications", s.handleGetNotifications)
		p.GET("/dashboard", s.handleGetDashboard)

		p.POST("/subjects", s.handleAddSubject)
		p.DELETE("/subjects/:index", s.handleDeleteSubject)
		p.PATCH("/academic", s.handleUpdateAcademic)
		p.POST("/wellness/check-ins", s.handleCheckIn)
		p.POST("/skills", s.handleAddSkill)
		p.DELETE("/skills/:index", s.handleDeleteSkill)
		p.POST("/interests", s.handleAddInterest)
		p.DELETE("/interests/:index", s.handleDeleteInterest)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		handlers.ErrorWithDetails(c, http.StatusNotFound, handlers.CodeNotFound, "not found", c.Request.URL.Path)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("http: server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("http server starting", zap.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartAsync starts the server in a goroutine. The channel receives the
// terminal error, if any, and is then closed.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.Start(); err != nil {
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}
