package course

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// GeoJSON feature property names
const (
	PropTerrain  = "terrainType"
	PropPriority = "priority"
)

var boundaryLabels = map[string]bool{
	"boundary": true,
	"course":   true,
}

// Parse reads a GeoJSON FeatureCollection of course regions and builds a Course.
// Each feature carries a "terrainType" property (a terrain label, or "boundary")
// and an optional "priority", a positive integer rank where lower wins.
func Parse(data []byte, crs core.CRS) (*Course, error) {
	var fc geom.GeoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse course GeoJSON: %v", ErrMalformedGeometry, err)
	}

	features := make([]Feature, 0, len(fc))
	for i, f := range fc {
		feature, err := featureFromGeoJSON(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		features = append(features, feature)
	}
	return New(features, crs)
}

// Read is Parse over an io.Reader.
func Read(r io.Reader, crs core.CRS) (*Course, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read course GeoJSON: %w", err)
	}
	return Parse(data, crs)
}

func featureFromGeoJSON(f geom.GeoJSONFeature) (Feature, error) {
	label, ok := f.Properties[PropTerrain].(string)
	if !ok {
		return Feature{}, fmt.Errorf("%w: missing %q property", ErrMalformedGeometry, PropTerrain)
	}

	feature := Feature{Geometry: f.Geometry}
	if boundaryLabels[strings.ToLower(label)] {
		feature.Boundary = true
	} else {
		terrain, err := core.ParseTerrain(label)
		if err != nil {
			return Feature{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
		}
		feature.Terrain = terrain
	}

	if raw, ok := f.Properties[PropPriority]; ok {
		priority, ok := raw.(float64)
		if !ok || priority < 1 || priority != math.Trunc(priority) || priority > math.MaxInt32 {
			return Feature{}, fmt.Errorf("%w: %q must be a positive integer, got %v", ErrMalformedGeometry, PropPriority, raw)
		}
		feature.Priority = int(priority)
	}
	return feature, nil
}
