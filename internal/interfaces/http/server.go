// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/routes"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// Dependencies is everything the HTTP layer needs from main
type Dependencies struct {
	Handlers routes.Handlers
	Tokens   admin.TokenChecker
	// Redis backs the rate limiter; nil disables it
	Redis *redis.Client
	// Checks are reported by /health, keyed by component name
	Checks map[string]HealthCheck
	// PushConnected reports the push channel state for /ready
	PushConnected func() bool
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	deps       Dependencies
	log        logrus.FieldLogger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates the server and its routes
func NewServer(cfg *config.Config, deps Dependencies, log logrus.FieldLogger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		log:       log,
		gin:       gin.New(),
		startedAt: time.Now(),
	}

	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		log.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     s.gin,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No write timeout: event streams stay open
		IdleTimeout: cfg.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"port":        s.config.Server.Port,
		"environment": s.config.App.Environment,
		"cafe_api":    s.config.CafeAPI.BaseURL,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	s.gin.Use(middleware.RateLimit(s.config, s.deps.Redis, s.log))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Security.MaxRequestBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	s.gin.Use(middleware.Sessions(s.config))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	api := s.gin.Group("/api")
	routes.SetupRoutes(api, s.deps.Handlers, s.deps.Tokens, s.log)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"menu":   "/api/menu?table=H1",
					"cart":   "/api/cart",
					"orders": "/api/order/status/:id",
					"admin":  "/api/admin",
				},
			})
		})
	}
}

// healthCheck handles GET /health
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			healthy = false
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"components":  components,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles GET /ready
func (s *Server) readinessCheck(c *gin.Context) {
	push := "disabled"
	if s.config.Push.Transport != "none" && s.deps.PushConnected != nil {
		push = "disconnected"
		if s.deps.PushConnected() {
			push = "connected"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"push":      push,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
