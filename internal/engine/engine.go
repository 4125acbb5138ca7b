// Package engine evaluates outcome and target strokes-gained grids for a shot.
package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/internal/hexgrid"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrInvalidConfig is returned by New for unusable grid settings
var ErrInvalidConfig = errors.New("invalid engine config")

// Course is the geometry an evaluation runs against.
type Course interface {
	Classifier
	Frame() geo.Frame
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Config holds grid sizing and numeric constants. Radii are multiples of the
// resolved dispersion.
type Config struct {
	OutcomeCells    int
	OutcomeRadius   float64
	SuperGridCells  int
	SuperGridRadius float64
	CandidateCells  int
	CandidateRadius float64
	SubsetRadius    float64
	MinCellSide     float64
	MaxCellSide     float64
	DispersionFloor float64 // metres
	MaxDispersion   float64 // metres
	HoleRadius      float64 // metres
	Workers         int     // 0 means GOMAXPROCS
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		OutcomeCells:    2000,
		OutcomeRadius:   3,
		SuperGridCells:  6000,
		SuperGridRadius: 6,
		CandidateCells:  250,
		CandidateRadius: 1,
		SubsetRadius:    3,
		MinCellSide:     hexgrid.DefaultLimits.MinSide,
		MaxCellSide:     hexgrid.DefaultLimits.MaxSide,
		DispersionFloor: 1,
		MaxDispersion:   60,
		HoleRadius:      0.054,
	}
}

func (c Config) validate() error {
	switch {
	case c.OutcomeCells <= 0 || c.SuperGridCells <= 0 || c.CandidateCells <= 0:
		return fmt.Errorf("%w: cell counts must be positive", ErrInvalidConfig)
	case !(c.OutcomeRadius > 0) || !(c.SuperGridRadius > 0) || !(c.CandidateRadius > 0) || !(c.SubsetRadius > 0):
		return fmt.Errorf("%w: radii must be positive", ErrInvalidConfig)
	case !(c.MinCellSide > 0) || c.MaxCellSide < c.MinCellSide:
		return fmt.Errorf("%w: cell side limits [%v, %v]", ErrInvalidConfig, c.MinCellSide, c.MaxCellSide)
	case !(c.DispersionFloor > 0):
		return fmt.Errorf("%w: dispersion floor must be positive", ErrInvalidConfig)
	case !(c.MaxDispersion >= c.DispersionFloor) || math.IsInf(c.MaxDispersion, 0):
		return fmt.Errorf("%w: max dispersion %v below floor %v", ErrInvalidConfig, c.MaxDispersion, c.DispersionFloor)
	case !(c.HoleRadius > 0):
		return fmt.Errorf("%w: hole radius must be positive", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative worker count", ErrInvalidConfig)
	}
	return nil
}

func (c Config) limits() hexgrid.Limits {
	return hexgrid.Limits{MinSide: c.MinCellSide, MaxSide: c.MaxCellSide}
}

// Engine evaluates grids. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cfg     Config
	models  Models
	logger  Logger
	metrics *metrics
}

// New creates an Engine. Uses the global OTel meter for metrics (no-op if not configured).
func New(cfg Config, models Models, logger Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if models == nil {
		return nil, fmt.Errorf("%w: no regression models", ErrInvalidConfig)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = nopLogger{}
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, models: models, logger: logger, metrics: m}, nil
}

// Config returns the engine settings with defaults resolved.
func (e *Engine) Config() Config {
	return e.cfg
}

// shot is a ShotContext projected into the course frame and resolved against the models.
type shot struct {
	start, aim, pin geom.XY
	sigma           float64
	startTerrain    core.TerrainType
	distanceToHole  float64
	srStart         float64
	holeOut         float64
}

func (e *Engine) resolve(c Course, in core.ShotContext) (shot, error) {
	var (
		s   shot
		err error
	)
	frame := c.Frame()
	if s.start, err = frame.Project(in.Start); err != nil {
		return s, fmt.Errorf("projecting start: %w", err)
	}
	if s.aim, err = frame.Project(in.Aim); err != nil {
		return s, fmt.Errorf("projecting aim: %w", err)
	}
	if s.pin, err = frame.Project(in.Pin); err != nil {
		return s, fmt.Errorf("projecting pin: %w", err)
	}

	s.sigma, err = ResolveDispersion(in.Dispersion, geo.Distance(s.start, s.aim), e.cfg.DispersionFloor, e.cfg.MaxDispersion)
	if err != nil {
		return s, err
	}

	if in.StartTerrain != nil {
		s.startTerrain = *in.StartTerrain
	} else {
		s.startTerrain = c.Classify(s.start)
	}

	s.distanceToHole = geo.Distance(s.start, s.pin)
	if s.srStart, err = e.models.StrokesRemaining(s.distanceToHole, s.startTerrain); err != nil {
		return s, fmt.Errorf("strokes remaining at start: %w", err)
	}
	if s.holeOut, err = e.models.HoleOutRate(s.distanceToHole, s.startTerrain); err != nil {
		return s, fmt.Errorf("hole-out rate at start: %w", err)
	}
	return s, nil
}

func (s shot) grid(kind core.GridKind) *core.Grid {
	return &core.Grid{
		Kind:                  kind,
		StrokesRemainingStart: s.srStart,
		DistanceToHole:        s.distanceToHole,
		Dispersion:            s.sigma,
		StartTerrain:          s.startTerrain,
		HoleOutRate:           s.holeOut,
		BestCell:              -1,
	}
}

// Outcome builds the grid of landing outcomes around the aim point and its
// probability-weighted strokes gained.
func (e *Engine) Outcome(c Course, in core.ShotContext) (*core.Grid, error) {
	began := time.Now()
	s, err := e.resolve(c, in)
	if err != nil {
		return nil, err
	}

	grid := s.grid(core.GridOutcome)
	cells := hexgrid.Generate(hexgrid.Disc{Center: s.aim, Radius: e.cfg.OutcomeRadius * s.sigma}, e.cfg.OutcomeCells, e.cfg.limits())
	if len(cells) == 0 {
		e.logger.Info("outcome grid is empty", "sigma", s.sigma)
		return grid, nil
	}

	if err := ApplyProbabilities(cells, s.aim, s.sigma); err != nil {
		return nil, err
	}
	cells = BlendHoleOut(cells, s.holeOut, s.pin, s.aim, e.cfg.HoleRadius)

	total, err := EvaluateStrokesGained(cells, s.pin, s.srStart, c, e.models)
	if err != nil {
		return nil, fmt.Errorf("evaluating outcome grid: %w", err)
	}
	grid.Cells = cells
	grid.WeightedStrokesGained = total

	elapsed := time.Since(began)
	e.metrics.record(core.GridOutcome, 0, elapsed)
	e.logger.Debug("outcome grid evaluated",
		"cells", len(cells),
		"sigma", s.sigma,
		"strokesGained", total,
		"elapsed", elapsed)
	return grid, nil
}
