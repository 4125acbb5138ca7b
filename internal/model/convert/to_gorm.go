// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"fmt"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/internal/model"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// coordinateToPoint converts a core.Coordinate to a geom.Point and its SRID.
// Geographic input is stored in EPSG:3857; local metres are stored as is.
func coordinateToPoint(c core.Coordinate) (geom.Point, int, error) {
	p, err := geo.Point3857(c)
	if err != nil {
		return geom.Point{}, 0, err
	}
	if c.CRS == core.CRSLocal {
		return p, 0, nil
	}
	return p, int(core.CRSWebMercator), nil
}

// CoreToEvaluation converts a core.Evaluation to a GORM model.Evaluation.
func CoreToEvaluation(e *core.Evaluation) (model.Evaluation, error) {
	if e.Grid == nil {
		return model.Evaluation{}, fmt.Errorf("evaluation has no grid")
	}

	start, srid, err := coordinateToPoint(e.Shot.Start)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("start: %w", err)
	}
	aim, _, err := coordinateToPoint(e.Shot.Aim)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("aim: %w", err)
	}
	pin, _, err := coordinateToPoint(e.Shot.Pin)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("pin: %w", err)
	}

	grid := datatypes.JSON("{}")
	if len(e.GeoJSON) > 0 {
		grid = datatypes.JSON(e.GeoJSON)
	}

	g := e.Grid
	return model.Evaluation{
		ID:                    e.ID,
		CreatedAt:             e.Time,
		Kind:                  string(g.Kind),
		SRID:                  srid,
		Start:                 start,
		Aim:                   aim,
		Pin:                   pin,
		StartTerrain:          g.StartTerrain.String(),
		DispersionInput:       e.Shot.Dispersion,
		Dispersion:            g.Dispersion,
		DistanceToHole:        g.DistanceToHole,
		StrokesRemainingStart: g.StrokesRemainingStart,
		HoleOutRate:           g.HoleOutRate,
		WeightedStrokesGained: g.WeightedStrokesGained,
		IdealStrokesGained:    g.IdealStrokesGained,
		BaselineStrokesGained: g.BaselineStrokesGained,
		RelativeStrokesGained: g.RelativeStrokesGained,
		Cells:                 len(g.Cells),
		DurationMs:            float64(e.Duration.Microseconds()) / 1000,
		Grid:                  grid,
	}, nil
}
