// pkg/core/terrain.go
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTerrain is returned when a terrain label has no TerrainType
var ErrUnknownTerrain = errors.New("unknown terrain type")

// TerrainType classifies the ground a ball rests on
type TerrainType uint8

const (
	TerrainGreen TerrainType = iota
	TerrainFairway
	TerrainRough
	TerrainBunker
	TerrainHazard
	TerrainTee
	TerrainOutOfBounds
	TerrainHole // synthetic, only produced by hole-out blending
)

// AllTerrains lists every TerrainType in declaration order.
var AllTerrains = []TerrainType{
	TerrainGreen,
	TerrainFairway,
	TerrainRough,
	TerrainBunker,
	TerrainHazard,
	TerrainTee,
	TerrainOutOfBounds,
	TerrainHole,
}

var terrainNames = map[TerrainType]string{
	TerrainGreen:       "green",
	TerrainFairway:     "fairway",
	TerrainRough:       "rough",
	TerrainBunker:      "bunker",
	TerrainHazard:      "hazard",
	TerrainTee:         "tee",
	TerrainOutOfBounds: "out_of_bounds",
	TerrainHole:        "hole",
}

// aliases accepted when parsing course data
var terrainAliases = map[string]TerrainType{
	"sand":  TerrainBunker,
	"water": TerrainHazard,
	"oob":   TerrainOutOfBounds,
}

// String returns the canonical label, e.g. "out_of_bounds".
func (t TerrainType) String() string {
	if name, ok := terrainNames[t]; ok {
		return name
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

// ParseTerrain converts a label into a TerrainType.
func ParseTerrain(label string) (TerrainType, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	for t, name := range terrainNames {
		if name == key {
			return t, nil
		}
	}
	if t, ok := terrainAliases[key]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTerrain, label)
}

// MarshalText implements encoding.TextMarshaler.
func (t TerrainType) MarshalText() ([]byte, error) {
	if _, ok := terrainNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTerrain, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TerrainType) UnmarshalText(text []byte) error {
	parsed, err := ParseTerrain(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
