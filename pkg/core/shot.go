// pkg/core/shot.go
package core

// ShotContext describes a single shot to evaluate.
//
// Dispersion is either an absolute standard deviation in metres (positive) or,
// when negative, a fraction of the start-to-aim distance (-0.1 means 10%).
type ShotContext struct {
	Start        Coordinate   `json:"start"`
	Aim          Coordinate   `json:"aim"`
	Pin          Coordinate   `json:"pin"`
	Dispersion   float64      `json:"dispersion"`
	StartTerrain *TerrainType `json:"startTerrain,omitempty"` // classified from the course when nil
}
