package regression

import (
	"fmt"

	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/spf13/viper"
)

// fileTable mirrors the on-disk layout:
//
//	{"strokesRemaining": {"fairway": [{"lo": 0, "hi": 600, "coefficients": [2.2, 0.0065]}]},
//	 "holeOut": {...}}
type fileTable struct {
	StrokesRemaining map[string][]Segment `mapstructure:"strokesRemaining"`
	HoleOut          map[string][]Segment `mapstructure:"holeOut"`
}

// LoadFile reads a coefficient table from a JSON, YAML or TOML file.
// It uses its own viper instance so it never touches the global configuration.
func LoadFile(path string) (*Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading regression table: %w", err)
	}

	var raw fileTable
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("error decoding regression table: %w", err)
	}

	sr, err := curvesByTerrain(raw.StrokesRemaining)
	if err != nil {
		return nil, err
	}
	ho, err := curvesByTerrain(raw.HoleOut)
	if err != nil {
		return nil, err
	}

	t := &Table{StrokesRemainingCurves: sr, HoleOutCurves: ho}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func curvesByTerrain(raw map[string][]Segment) (map[core.TerrainType]Curve, error) {
	curves := make(map[core.TerrainType]Curve, len(raw))
	for label, segments := range raw {
		terrain, err := core.ParseTerrain(label)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
		}
		curves[terrain] = Curve(segments)
	}
	return curves, nil
}
