package env

import (
	"fmt"

	"github.com/RookieLinux/bellhopcuda/log"
)

var logger = log.New("env")

// Source and receiver coordinates for a run. All values are in meters;
// depths increase downward. The slices arrive already decoded by the
// caller, this type only validates and derives spacing information.
type Position struct {
	// Source depths.
	Sz []float64

	// Receiver depths and ranges.
	Rz []float64
	Rr []float64

	// Range spacing between the last two receiver ranges.
	DeltaR float64
}

// Build a validated Position from decoded coordinate vectors.
func NewPosition(sz, rz, rr []float64) (*Position, error) {
	if len(sz) == 0 || len(rz) == 0 || len(rr) == 0 {
		return nil, fmt.Errorf("position: source depths, receiver depths and receiver ranges must be non-empty")
	}
	if !monotonic(rr) {
		return nil, fmt.Errorf("position: receiver ranges are not monotonically increasing")
	}
	if !monotonic(rz) {
		return nil, fmt.Errorf("position: receiver depths are not monotonically increasing")
	}

	pos := &Position{Sz: sz, Rz: rz, Rr: rr}
	if len(rr) > 1 {
		pos.DeltaR = rr[len(rr)-1] - rr[len(rr)-2]
	}
	return pos, nil
}

// Shift source and receiver depths that fall outside [zMin, zMax] back
// into the water column.
func (pos *Position) ClampDepths(zMin, zMax float64) {
	var topBdry, botBdry bool
	for i, z := range pos.Sz {
		if z < zMin {
			topBdry = true
			pos.Sz[i] = zMin
		}
		if z > zMax {
			botBdry = true
			pos.Sz[i] = zMax
		}
	}
	if topBdry {
		logger.Warning("source above or too near the top bdry has been moved down")
	}
	if botBdry {
		logger.Warning("source below or too near the bottom bdry has been moved up")
	}

	topBdry, botBdry = false, false
	for i, z := range pos.Rz {
		if z < zMin {
			topBdry = true
			pos.Rz[i] = zMin
		}
		if z > zMax {
			botBdry = true
			pos.Rz[i] = zMax
		}
	}
	if topBdry {
		logger.Warning("receiver above or too near the top bdry has been moved down")
	}
	if botBdry {
		logger.Warning("receiver below or too near the bottom bdry has been moved up")
	}
}

// Convert a coordinate vector given in km to meters in place.
func KmToM(x []float64) {
	for i := range x {
		x[i] *= 1000.0
	}
}

func monotonic(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return false
		}
	}
	return true
}
