package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fairwaylabs/sgrid/internal/course"
	"github.com/fairwaylabs/sgrid/internal/dispatcher"
	"github.com/fairwaylabs/sgrid/internal/export"
	"github.com/fairwaylabs/sgrid/pkg/core"
)

// RegisterHandlers registers all event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Evaluations answer the caller - sync
	d.Register(CmdOutcome, m.evaluate(d, core.GridOutcome), dispatcher.Logged())
	d.Register(CmdTarget, m.evaluate(d, core.GridTarget), dispatcher.Debounced(m.cfg.TargetDebounce), dispatcher.Logged())

	// Persistence - buffered
	d.Register(CmdRecord, m.handleRecord, dispatcher.Buffered(m.cfg.RecordQueue), dispatcher.Logged())
}

func (m *Manager) evaluate(d *dispatcher.Dispatcher, kind core.GridKind) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		req, ok := e.Payload.(Request)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrBadPayload, e.Payload)
		}

		res, err := m.Evaluate(kind, req.Course, req.Shot)
		if err != nil {
			return nil, err
		}

		if _, err := d.Dispatch(dispatcher.Event{Command: CmdRecord, Payload: res.Evaluation}); err != nil {
			m.deps.Logger.Warn().Err(err).Str("kind", string(kind)).Msg("Evaluation not recorded")
		}
		return res, nil
	}
}

// Evaluate runs one evaluation and renders its GeoJSON export.
func (m *Manager) Evaluate(kind core.GridKind, c *course.Course, shot core.ShotContext) (Result, error) {
	if c == nil {
		return Result{}, fmt.Errorf("%w: no course", ErrBadPayload)
	}

	start := m.now()
	var (
		grid *core.Grid
		err  error
	)
	switch kind {
	case core.GridOutcome:
		grid, err = m.deps.Evaluator.Outcome(c, shot)
	case core.GridTarget:
		grid, err = m.deps.Evaluator.Target(c, shot)
	default:
		err = fmt.Errorf("unknown grid kind %q", kind)
	}
	if err != nil {
		return Result{}, err
	}
	elapsed := m.now().Sub(start)

	doc := export.Build(grid, c.Frame())
	raw, err := json.Marshal(doc)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode grid: %w", err)
	}

	eval := &core.Evaluation{
		Time:     start,
		Shot:     shot,
		Grid:     grid,
		GeoJSON:  raw,
		Duration: elapsed,
	}
	m.deps.Logger.Debug().
		Str("kind", string(kind)).
		Int("cells", len(grid.Cells)).
		Float64("strokesGained", grid.WeightedStrokesGained).
		Dur("duration", elapsed).
		Msg("Evaluation complete")

	return Result{Evaluation: eval, Document: doc}, nil
}

func (m *Manager) handleRecord(e dispatcher.Event) (any, error) {
	eval, ok := e.Payload.(*core.Evaluation)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrBadPayload, e.Payload)
	}

	var errs []error
	if m.hasBackend() {
		if err := m.deps.Backend.RecordEvaluation(eval); err != nil {
			errs = append(errs, fmt.Errorf("failed to store evaluation: %w", err))
		}
	}
	if m.deps.Metrics != nil {
		if err := m.deps.Metrics.WriteEvaluation(eval); err != nil {
			errs = append(errs, fmt.Errorf("failed to write evaluation metrics: %w", err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
