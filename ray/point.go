package ray

import "github.com/RookieLinux/bellhopcuda/types"

// One sample along a ray. Immutable once produced; the trace loop owns
// a rolling window of at most three consecutive points so a reflection
// can emit a double step without reallocating.
type Point struct {
	// Position (r, z).
	X types.Vec2

	// Tangent scaled by slowness: dx/ds = c * T, |T| = 1/c.
	T types.Vec2

	// Local sound speed.
	C float64

	// Complex travel time.
	Tau complex128

	Amp   float64
	Phase float64

	// Paraxial ray components for geometric beam spreading.
	P types.Vec2
	Q types.Vec2

	NumTopBnc int32
	NumBotBnc int32
}

// Identifies one (source, launch angle) job. Read-only after creation.
type InitInfo struct {
	ISz    int
	IAlpha int

	// Resolved by Init.
	Xs           types.Vec2
	Alpha        float64
	SrcDeclAngle float64
}

// Raised on out-of-range job indices. This indicates a dispatcher bug
// rather than bad input, so it aborts the run instead of being folded
// into the per-worker error buffer.
type FatalConfigError string

func (e FatalConfigError) Error() string { return string(e) }

// Marks the error as run-aborting for the dispatcher's recover handler.
func (e FatalConfigError) Fatal() {}
