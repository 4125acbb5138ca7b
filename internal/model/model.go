package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ServiceInfo{},
	&Evaluation{},
}

// ServiceInfo records which build created the schema
type ServiceInfo struct {
	gorm.Model
	Name          string `json:"name" gorm:"size:64"`
	SchemaVersion int    `json:"schemaVersion"`
}

func (*ServiceInfo) TableName() string {
	return "service_infos"
}

// Evaluation is one stored outcome or target grid.
// Points are stored in EPSG:3857 for geographic courses and as raw local metres
// (SRID 0) for local courses.
type Evaluation struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_evaluation_created_at"`
	Kind      string    `json:"kind" gorm:"size:16;index:idx_evaluation_kind"`
	SRID      int       `json:"srid"`

	Start geom.Point `json:"start" gorm:"type:geometry"`
	Aim   geom.Point `json:"aim" gorm:"type:geometry"`
	Pin   geom.Point `json:"pin" gorm:"type:geometry"`

	StartTerrain          string  `json:"startTerrain" gorm:"size:32"`
	DispersionInput       float64 `json:"dispersionInput"`       // as requested, negative for relative
	Dispersion            float64 `json:"dispersion"`            // resolved, metres
	DistanceToHole        float64 `json:"distanceToHole"`
	StrokesRemainingStart float64 `json:"strokesRemainingStart"`
	HoleOutRate           float64 `json:"holeOutRate"`
	WeightedStrokesGained float64 `json:"weightedStrokesGained"`
	IdealStrokesGained    float64 `json:"idealStrokesGained"`
	BaselineStrokesGained float64 `json:"baselineStrokesGained"`
	RelativeStrokesGained float64 `json:"relativeStrokesGained"`
	Cells                 int     `json:"cells"`
	DurationMs            float64 `json:"durationMs"`

	Grid datatypes.JSON `json:"grid"` // exported GeoJSON FeatureCollection
}

func (*Evaluation) TableName() string {
	return "evaluations"
}
