package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDispersion is returned for non-finite dispersion values and for
// dispersions above the configured ceiling
var ErrInvalidDispersion = errors.New("invalid dispersion")

// ResolveDispersion turns a shot's dispersion input into an absolute standard
// deviation in metres. A negative value is a fraction of the start-to-aim distance.
// The result never drops below floor; above ceiling it is rejected, since grid
// cell counts grow with the square of the dispersion once cells reach their
// maximum side. A ceiling of 0 disables the check.
func ResolveDispersion(value, startToAim, floor, ceiling float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDispersion, value)
	}
	abs := value
	if value < 0 {
		abs = -value * startToAim
	}
	sigma := math.Max(abs, floor)
	if ceiling > 0 && sigma > ceiling {
		return 0, fmt.Errorf("%w: %.1f m exceeds the %.1f m limit", ErrInvalidDispersion, sigma, ceiling)
	}
	return sigma, nil
}
