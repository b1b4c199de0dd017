package env

import "github.com/RookieLinux/bellhopcuda/types"

// Sound speed field evaluator. Eval returns the local sound speed and
// its spatial gradient at the given (r, z) position.
type SSP interface {
	Eval(x types.Vec2) (c float64, gradc types.Vec2)
}

// Constant sound speed everywhere.
type Isovelocity struct {
	C0 float64
}

func (s Isovelocity) Eval(_ types.Vec2) (float64, types.Vec2) {
	return s.C0, types.Vec2{}
}

// Sound speed varying linearly with depth: c(z) = C0 + Cz*z.
type LinearSSP struct {
	C0 float64
	Cz float64
}

func (s LinearSSP) Eval(x types.Vec2) (float64, types.Vec2) {
	return s.C0 + s.Cz*x[1], types.Vec2{0, s.Cz}
}

// Piecewise-linear depth profile, the usual tabulated SSP input. Depths
// must be monotonically increasing; evaluation clamps to the table ends.
type ProfileSSP struct {
	Z []float64
	C []float64
}

func (s *ProfileSSP) Eval(x types.Vec2) (float64, types.Vec2) {
	z := x[1]
	n := len(s.Z)
	if z <= s.Z[0] {
		return s.C[0], types.Vec2{}
	}
	if z >= s.Z[n-1] {
		return s.C[n-1], types.Vec2{}
	}

	i := searchLEQ(s.Z, z)
	cz := (s.C[i+1] - s.C[i]) / (s.Z[i+1] - s.Z[i])
	return s.C[i] + cz*(z-s.Z[i]), types.Vec2{0, cz}
}

// Largest index i with x[i] <= v, assuming x sorted ascending and v
// within the table. Never returns the last index.
func searchLEQ(x []float64, v float64) int {
	lo, hi := 0, len(x)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x[mid] <= v {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
