// pkg/core/coordinate.go
package core

import "fmt"

// CRS tags the coordinate reference system of a Coordinate using EPSG codes.
type CRS int

const (
	// CRSLocal marks coordinates that are already planar metres in a local frame.
	CRSLocal       CRS = 0
	CRSWebMercator CRS = 3857
	CRSWGS84       CRS = 4326
)

func (c CRS) String() string {
	switch c {
	case CRSLocal:
		return "local"
	default:
		return fmt.Sprintf("EPSG:%d", int(c))
	}
}

// Coordinate is a point in the given CRS.
// For CRSWGS84, X is longitude and Y is latitude.
type Coordinate struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	CRS CRS     `json:"crs"`
}

// LonLat builds a WGS84 coordinate.
func LonLat(lon, lat float64) Coordinate {
	return Coordinate{X: lon, Y: lat, CRS: CRSWGS84}
}

// Local builds a planar coordinate in metres.
func Local(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y, CRS: CRSLocal}
}
