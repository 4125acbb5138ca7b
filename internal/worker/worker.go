// Package worker evaluates shots on behalf of the dispatcher and fans the
// results out to storage and metrics.
package worker

import (
	"errors"
	"time"

	"github.com/fairwaylabs/sgrid/internal/course"
	"github.com/fairwaylabs/sgrid/internal/engine"
	"github.com/fairwaylabs/sgrid/internal/export"
	"github.com/fairwaylabs/sgrid/internal/storage"
	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/rs/zerolog"
)

// Commands handled by the worker.
const (
	CmdOutcome = ":OUTCOME:"
	CmdTarget  = ":TARGET:"
	CmdRecord  = ":RECORD:"
)

// ErrBadPayload is returned when an event carries the wrong payload type.
var ErrBadPayload = errors.New("unexpected event payload")

// Evaluator produces grids for a shot on a course.
type Evaluator interface {
	Outcome(c engine.Course, in core.ShotContext) (*core.Grid, error)
	Target(c engine.Course, in core.ShotContext) (*core.Grid, error)
}

// EvaluationWriter receives every completed evaluation, e.g. an InfluxDB manager.
type EvaluationWriter interface {
	WriteEvaluation(e *core.Evaluation) error
}

// Request is the payload of :OUTCOME: and :TARGET: events.
type Request struct {
	Course *course.Course
	Shot   core.ShotContext
}

// Result is returned by :OUTCOME: and :TARGET: handlers.
type Result struct {
	Evaluation *core.Evaluation
	Document   export.Document
}

// Config tunes handler registration.
type Config struct {
	TargetDebounce time.Duration // minimum spacing of accepted :TARGET: events
	RecordQueue    int
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Evaluator Evaluator
	Backend   storage.Backend  // optional
	Metrics   EvaluationWriter // optional
	Logger    zerolog.Logger
}

// Manager runs evaluations and records them
type Manager struct {
	deps Dependencies
	cfg  Config
	now  func() time.Time
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, cfg Config) *Manager {
	if cfg.RecordQueue <= 0 {
		cfg.RecordQueue = 256
	}
	return &Manager{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (m *Manager) hasBackend() bool {
	return m.deps.Backend != nil
}
