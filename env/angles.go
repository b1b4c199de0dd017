package env

import (
	"fmt"
	"math"
)

// Launch angle fan for a run. Angles are declination angles in radians,
// positive towards the bottom.
type Angles struct {
	Alpha []float64

	// Angular spacing between consecutive launch angles.
	Dalpha float64

	// When >= 0, every job traces this single angle index and the job
	// space collapses to the source list.
	SingleAlpha int
}

// Build a uniform launch angle fan from a degree interval.
func NewAngleFan(firstDeg, lastDeg float64, n int) (*Angles, error) {
	if n <= 0 {
		return nil, fmt.Errorf("angles: number of launch angles must be positive")
	}
	if n > 1 && lastDeg <= firstDeg {
		return nil, fmt.Errorf("angles: last angle must exceed first angle")
	}

	ang := &Angles{
		Alpha:       make([]float64, n),
		SingleAlpha: -1,
	}
	if n == 1 {
		ang.Alpha[0] = firstDeg * math.Pi / 180.0
		return ang, nil
	}

	ang.Dalpha = (lastDeg - firstDeg) * math.Pi / 180.0 / float64(n-1)
	for i := 0; i < n; i++ {
		ang.Alpha[i] = (firstDeg * math.Pi / 180.0) + float64(i)*ang.Dalpha
	}
	return ang, nil
}

// Number of launch angles in the fan.
func (ang *Angles) Nalpha() int {
	return len(ang.Alpha)
}

// Minimum number of beams needed to cover the receiver ranges at the
// given frequency without under-sampling the fan. Used to warn on
// coherent runs with too few beams.
func (ang *Angles) OptimalCount(c, freq0, rMax float64) int {
	dalphaOpt := math.Sqrt(c / (6.0 * freq0 * rMax))
	return 2 + int((ang.Alpha[len(ang.Alpha)-1]-ang.Alpha[0])/dalphaOpt)
}
