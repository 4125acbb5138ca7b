package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fairwaylabs/sgrid/internal/course"
	"github.com/fairwaylabs/sgrid/internal/dispatcher"
	"github.com/fairwaylabs/sgrid/internal/engine"
	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/internal/regression"
	"github.com/fairwaylabs/sgrid/internal/worker"
	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/gin-gonic/gin"
)

// GridRequest is the body of the grid endpoints.
// Course is a GeoJSON FeatureCollection in CRS; shot coordinates carry their own CRS.
type GridRequest struct {
	CRS    core.CRS         `json:"crs"` // 0 for local metres
	Course json.RawMessage  `json:"course" binding:"required"`
	Shot   core.ShotContext `json:"shot"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Evaluation history page sizes
const (
	DefaultEvaluationLimit = 20
	MaxEvaluationLimit     = 200
)

// EvaluationSummary is one stored evaluation without its grid document.
type EvaluationSummary struct {
	ID                    uint      `json:"id"`
	CreatedAt             time.Time `json:"createdAt"`
	Kind                  string    `json:"kind"`
	StartTerrain          string    `json:"startTerrain"`
	Dispersion            float64   `json:"dispersion"`
	DistanceToHole        float64   `json:"distanceToHole"`
	WeightedStrokesGained float64   `json:"weightedStrokesGained"`
	IdealStrokesGained    float64   `json:"idealStrokesGained"`
	RelativeStrokesGained float64   `json:"relativeStrokesGained"`
	Cells                 int       `json:"cells"`
	DurationMs            float64   `json:"durationMs"`
}

// CacheStats describes the parsed-course cache.
type CacheStats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

func (s *Server) handleHealthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleOutcome(c *gin.Context) {
	s.handleGrid(c, worker.CmdOutcome)
}

func (s *Server) handleTarget(c *gin.Context) {
	s.handleGrid(c, worker.CmdTarget)
}

func (s *Server) handleGrid(c *gin.Context, command string) {
	if s.cfg.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	}

	var req GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	courseData, err := s.courses.Parse(req.Course, req.CRS)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	out, err := s.dispatcher.Dispatch(dispatcher.Event{
		Command: command,
		Payload: worker.Request{Course: courseData, Shot: req.Shot},
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error().Err(err).Str("command", command).Msg("Evaluation failed")
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	res, ok := out.(worker.Result)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fmt.Sprintf("unexpected result %T", out)})
		return
	}
	c.JSON(http.StatusOK, res.Document)
}

func (s *Server) handleEvaluations(c *gin.Context) {
	if s.evaluations == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "evaluation history is not stored by this server"})
		return
	}

	limit := DefaultEvaluationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxEvaluationLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("limit must be between 1 and %d", MaxEvaluationLimit)})
			return
		}
		limit = n
	}

	rows, err := s.evaluations.Recent(limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list evaluations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]EvaluationSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, EvaluationSummary{
			ID:                    r.ID,
			CreatedAt:             r.CreatedAt,
			Kind:                  r.Kind,
			StartTerrain:          r.StartTerrain,
			Dispersion:            r.Dispersion,
			DistanceToHole:        r.DistanceToHole,
			WeightedStrokesGained: r.WeightedStrokesGained,
			IdealStrokesGained:    r.IdealStrokesGained,
			RelativeStrokesGained: r.RelativeStrokesGained,
			Cells:                 r.Cells,
			DurationMs:            r.DurationMs,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	hits, misses := s.courses.Stats()
	c.JSON(http.StatusOK, CacheStats{Entries: s.courses.Len(), Hits: hits, Misses: misses})
}

func (s *Server) handleCacheReset(c *gin.Context) {
	s.courses.Reset()
	s.logger.Info().Msg("Course cache cleared")
	c.Status(http.StatusNoContent)
}

// statusFor maps evaluation errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatcher.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, dispatcher.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, course.ErrMalformedGeometry),
		errors.Is(err, course.ErrEmptyGeometry),
		errors.Is(err, core.ErrUnknownTerrain),
		errors.Is(err, geo.ErrInvalidCoordinates),
		errors.Is(err, worker.ErrBadPayload):
		return http.StatusBadRequest
	case errors.Is(err, geo.ErrUnsupportedCRS),
		errors.Is(err, engine.ErrInvalidDispersion),
		errors.Is(err, engine.ErrNoProbabilityMass),
		errors.Is(err, regression.ErrNoModel),
		errors.Is(err, regression.ErrOutOfDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
