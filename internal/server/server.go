// Package server exposes grid evaluations over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fairwaylabs/sgrid/internal/cache"
	"github.com/fairwaylabs/sgrid/internal/config"
	"github.com/fairwaylabs/sgrid/internal/dispatcher"
	"github.com/fairwaylabs/sgrid/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dispatcher routes evaluation commands.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// EvaluationLister returns the most recent stored evaluations, newest first.
type EvaluationLister interface {
	Recent(limit int) ([]model.Evaluation, error)
}

// Server is the gin HTTP front end.
type Server struct {
	router      *gin.Engine
	dispatcher  Dispatcher
	evaluations EvaluationLister
	courses     *cache.CourseCache
	logger      zerolog.Logger
	cfg         config.ServerConfig
	started     time.Time
}

// New creates the router and registers routes.
func New(cfg config.ServerConfig, d Dispatcher, logger zerolog.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		router:     router,
		dispatcher: d,
		courses:    cache.NewCourseCache(cache.DefaultCourseCapacity),
		logger:     logger,
		cfg:        cfg,
		started:    time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthcheck", s.handleHealthcheck)

	v1 := s.router.Group("/v1")
	v1.POST("/grids/outcome", s.handleOutcome)
	v1.POST("/grids/target", s.handleTarget)
	v1.GET("/evaluations", s.handleEvaluations)
	v1.GET("/courses/cache", s.handleCacheStats)
	v1.DELETE("/courses/cache", s.handleCacheReset)
}

// WithEvaluations enables GET /v1/evaluations backed by l.
func (s *Server) WithEvaluations(l EvaluationLister) *Server {
	s.evaluations = l
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.cfg.Address).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
