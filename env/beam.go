package env

import "github.com/RookieLinux/bellhopcuda/types"

// Output produced by a run.
type RunMode uint8

const (
	// Emit the traced ray trajectories themselves.
	RunRay RunMode = iota

	// Accumulate a complex pressure field over the receiver grid.
	RunField

	// Record per-receiver arrival tables.
	RunArrivals
)

// How a beam distributes energy across the receiver grid.
type BeamShape uint8

const (
	// Geometric (hat function) influence.
	ShapeHat BeamShape = iota

	// Gaussian influence.
	ShapeGaussian
)

// Source coherence option.
type Coherence uint8

const (
	Coherent Coherence = iota

	// Semi-coherent: Lloyd mirror source pattern.
	SemiCoherent

	Incoherent
)

// Beam and stepping options for a run.
type Beam struct {
	RunMode   RunMode
	Shape     BeamShape
	Coherence Coherence

	// Half-widths of the axis-aligned box a ray may not leave,
	// relative to the source (r, z).
	Box types.Vec2

	// Nominal integration step size in meters.
	Deltas float64

	// Storage limit for a single ray trajectory.
	MaxSteps int
}
