package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Hexagon builds a flat-top regular hexagon around center.
func Hexagon(center geom.XY, side float64) geom.Polygon {
	flat := make([]float64, 0, 14)
	for i := 0; i <= 6; i++ {
		angle := float64(i%6) * math.Pi / 3
		flat = append(flat, center.X+side*math.Cos(angle), center.Y+side*math.Sin(angle))
	}
	return geom.NewPolygon([]geom.LineString{geom.NewLineString(geom.NewSequence(flat, geom.DimXY))})
}

// Disc approximates a circle with a regular polygon of the given number of segments.
func Disc(center geom.XY, radius float64, segments int) geom.Polygon {
	if segments < 3 {
		segments = 3
	}
	flat := make([]float64, 0, (segments+1)*2)
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i%segments) / float64(segments)
		flat = append(flat, center.X+radius*math.Cos(angle), center.Y+radius*math.Sin(angle))
	}
	return geom.NewPolygon([]geom.LineString{geom.NewLineString(geom.NewSequence(flat, geom.DimXY))})
}

// PointXY wraps xy as a simplefeatures point.
func PointXY(xy geom.XY) geom.Point {
	return geom.NewPoint(geom.Coordinates{XY: xy, Type: geom.DimXY})
}

// Contains reports whether xy lies inside or on the boundary of p.
func Contains(p geom.Polygon, xy geom.XY) bool {
	return geom.Intersects(p.AsGeometry(), PointXY(xy).AsGeometry())
}
