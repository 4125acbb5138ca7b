package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Course and shot coordinates arrive as WGS84 lon/lat (4326), Web Mercator (3857) or
// already-planar local metres. Everything geographic goes through 3857 and is then
// rescaled by cos(latitude) of the frame origin, so one frame unit is one ground metre
// around the course. Persisted points stay in 3857.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ErrUnsupportedCRS is returned when a coordinate cannot be brought into a frame
var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

// web mercator is undefined past this latitude
const maxMercatorLatitude = 85.05112878

var (
	to3857   = wgs84.EPSG().Transform(4326, 3857)
	from3857 = wgs84.EPSG().Transform(3857, 4326)
)

// CoordinateFromString parses a string in the format "x,y" or "x,y,crs" into a
// core.Coordinate. Without an explicit EPSG code the coordinate is WGS84 lon/lat.
func CoordinateFromString(coords string) (core.Coordinate, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	crs := core.CRSWGS84
	if len(coordsSplit) > 2 {
		code, err := strconv.Atoi(strings.TrimSpace(coordsSplit[2]))
		if err != nil {
			return core.Coordinate{}, ErrInvalidCoordinates
		}
		crs = core.CRS(code)
	}
	c := core.Coordinate{X: x, Y: y, CRS: crs}
	if err := Validate(c); err != nil {
		return core.Coordinate{}, err
	}
	return c, nil
}

// Validate checks that c is finite and within the valid range of its CRS.
func Validate(c core.Coordinate) error {
	if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) {
		return ErrInvalidCoordinates
	}
	switch c.CRS {
	case core.CRSLocal, core.CRSWebMercator:
		return nil
	case core.CRSWGS84:
		if c.X < -180 || c.X > 180 || math.Abs(c.Y) > maxMercatorLatitude {
			return ErrInvalidCoordinates
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCRS, c.CRS)
	}
}

// Coords3857From4326 creates a GPS point from a longitude and latitude
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	if err := Validate(core.LonLat(longitude, latitude)); err != nil {
		return geom.Point{}, err
	}
	x, y, _ := to3857(longitude, latitude, 0)
	point = geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Type: geom.DimXY,
		},
	)
	return point, nil
}

// Point3857 converts any geographic coordinate into a 3857 point for storage.
// Local coordinates are stored as-is.
func Point3857(c core.Coordinate) (geom.Point, error) {
	if err := Validate(c); err != nil {
		return geom.Point{}, err
	}
	if c.CRS == core.CRSWGS84 {
		return Coords3857From4326(c.X, c.Y)
	}
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: c.X, Y: c.Y}, Type: geom.DimXY}), nil
}

// Distance returns the planar distance between two frame points.
func Distance(a, b geom.XY) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
