package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/fairwaylabs/sgrid/pkg/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fairwaylabs/sgrid/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	evaluations metric.Int64Counter
	candidates  metric.Int64Counter
	duration    metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	out.evaluations, err = m.Int64Counter(
		"engine.evaluations",
		metric.WithDescription("Total grid evaluations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluations counter: %w", err)
	}

	out.candidates, err = m.Int64Counter(
		"engine.candidates",
		metric.WithDescription("Total target candidates evaluated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating candidates counter: %w", err)
	}

	out.duration, err = m.Float64Histogram(
		"engine.duration",
		metric.WithDescription("Grid evaluation time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &out, nil
}

func (m *metrics) record(kind core.GridKind, candidates int, elapsed time.Duration) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("kind", string(kind)))
	m.evaluations.Add(ctx, 1, attrs)
	if candidates > 0 {
		m.candidates.Add(ctx, int64(candidates))
	}
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}
