package ray

import (
	"fmt"
	"math"

	"github.com/RookieLinux/bellhopcuda/bdry"
	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/log"
	"github.com/RookieLinux/bellhopcuda/types"
)

var logger = log.New("ray")

// Amplitude below which a ray is considered to have lost its energy.
const energyFloor = 0.005

// A ray gives up after this many consecutive forced minimum steps.
const maxSmallSteps = 50

// Ray drives a single acoustic ray through the environment: Init,
// repeated Update (step, boundary locate, optional reflect) and
// Terminate. One instance per job; nothing here is shared across rays.
type Ray struct {
	Env *env.Env

	omega float64
	xs    types.Vec2

	// Cached boundary locators for this ray.
	Top bdry.State
	Bot bdry.State

	// Signed normal distances to the boundaries at the start and end
	// of the current step.
	DistBegTop, DistBegBot float64
	DistEndTop, DistEndBot float64

	smallSteps int
}

// Create a ray bound to a run environment.
func New(e *env.Env) *Ray {
	return &Ray{
		Env:   e,
		omega: 2.0 * math.Pi * e.Freq0,
	}
}

// Initialize the ray for one job. Resolves the source position and
// launch angle, evaluates the local sound speed, applies the source
// beam pattern and locates the initial boundary segments. Returns
// false when the source sits on or outside a boundary; that job
// contributes nothing. Out-of-range job indices abort the run.
func (r *Ray) Init(ri *InitInfo) (point0 Point, ok bool) {
	pos, ang := r.Env.Pos, r.Env.Angles
	if ri.ISz < 0 || ri.ISz >= len(pos.Sz) || ri.IAlpha < 0 || ri.IAlpha >= ang.Nalpha() {
		panic(FatalConfigError(fmt.Sprintf(
			"invalid ray init indexes: isz=%d ialpha=%d", ri.ISz, ri.IAlpha)))
	}

	ri.Xs = types.Vec2{0.0, pos.Sz[ri.ISz]}
	ri.Alpha = ang.Alpha[ri.IAlpha]
	ri.SrcDeclAngle = ri.Alpha * 180.0 / math.Pi
	r.xs = ri.Xs

	tinit := types.Vec2{math.Cos(ri.Alpha), math.Sin(ri.Alpha)}
	c, _ := r.Env.SSP.Eval(ri.Xs)

	// Are there enough beams?
	rMax := pos.Rr[len(pos.Rr)-1]
	if r.Env.Beam.Coherence == env.Coherent && ri.IAlpha == 0 {
		if nOpt := ang.OptimalCount(c, r.Env.Freq0, rMax); ang.Nalpha() < nOpt {
			logger.Warningf("too few beams: Nalpha should be at least %d", nOpt)
		}
	}

	amp0 := r.Env.Pattern.Amplitude(ri.SrcDeclAngle)

	// Lloyd mirror pattern for the semi-coherent option
	if r.Env.Beam.Coherence == env.SemiCoherent {
		amp0 *= math.Sqrt(2.0) * math.Abs(math.Sin(r.omega/c*ri.Xs[1]*math.Sin(ri.Alpha)))
	}

	point0 = Point{
		X:   ri.Xs,
		T:   tinit.Mul(1.0 / c),
		C:   c,
		Amp: amp0,
		P:   types.Vec2{1.0, 0.0},
		Q:   types.Vec2{0.0, 1.0},
	}
	// second component of q is not used in geometric beam tracing;
	// zero the initial condition to save work
	if r.Env.Beam.Shape == env.ShapeHat {
		point0.Q = types.Vec2{0.0, 0.0}
	}

	r.Top.ISeg, r.Bot.ISeg = 0, 0
	r.Env.Top.Locate(ri.Xs, &r.Top)
	r.Env.Bot.Locate(ri.Xs, &r.Bot)
	r.DistBegTop, r.DistBegBot = bdry.Distances(point0.X, &r.Top, &r.Bot)
	r.smallSteps = 0

	if r.DistBegTop <= 0.0 || r.DistBegBot <= 0.0 {
		logger.Debug("terminating the ray trace because the source is on or outside the boundaries")
		return point0, false
	}

	return point0, true
}

// Advance the ray by one integration step and resolve any boundary
// crossing. Returns the number of points produced: 1 for a plain step,
// 2 when the step crossed a boundary and a reflected point follows. A
// single step is short enough that it can cross at most one boundary.
func (r *Ray) Update(point0, point1, point2 *Point) int {
	topRefl, botRefl := r.step(point0, point1)

	// Positions move by at most one segment per step, so these are
	// local walks from the previous segment index.
	r.Env.Top.Locate(point1.X, &r.Top)
	r.Env.Bot.Locate(point1.X, &r.Bot)
	r.DistEndTop, r.DistEndBot = bdry.Distances(point1.X, &r.Top, &r.Bot)

	if !topRefl && !botRefl {
		return 1
	}

	b, st := r.Env.Bot, &r.Bot
	if topRefl {
		b, st = r.Env.Top, &r.Top
	}
	r.reflect(point1, point2, b, st)
	r.DistEndTop, r.DistEndBot = bdry.Distances(point2.X, &r.Top, &r.Bot)
	return 2
}

// Evaluate the stopping predicates for the current point. Returns true
// when the ray is done and stores the number of valid points in
// nsteps. A ray that exits through the near boundary edge does not
// count the step that took it out; every other stop keeps it.
func (r *Ray) Terminate(point *Point, nsteps *int, is int) bool {
	beam := r.Env.Beam

	leftbox := math.Abs(point.X[0]-r.xs[0]) > beam.Box[0] ||
		math.Abs(point.X[1]) > beam.Box[1]

	escaped0 := point.X[0] < math.Max(r.Env.Top.RMin(), r.Env.Bot.RMin())
	escapedN := point.X[0] > math.Max(r.Env.Top.RMax(), r.Env.Bot.RMax())
	escaped := escaped0 || escapedN ||
		(r.DistBegTop < 0.0 && r.DistEndTop < 0.0) ||
		(r.DistBegBot < 0.0 && r.DistEndBot < 0.0)

	lostenergy := point.Amp < energyFloor
	backward := point.T[0] < 0.0
	toomanysmallsteps := r.smallSteps > maxSmallSteps

	if leftbox || escaped || lostenergy || backward || toomanysmallsteps {
		switch {
		case leftbox:
			logger.Debugf("ray left beam box (%g,%g)", beam.Box[0], beam.Box[1])
		case escaped:
			logger.Debug("ray escaped the boundaries")
		case lostenergy:
			logger.Debugf("ray energy dropped to %g", point.Amp)
		case backward:
			logger.Debug("ray is going backwards")
		default:
			logger.Debug("ray stalled on minimum-size steps")
		}
		if escaped0 {
			*nsteps = is
		} else {
			*nsteps = is + 1
		}
		return true
	}
	if is >= beam.MaxSteps-3 {
		logger.Warning("insufficient storage for ray trajectory")
		*nsteps = is
		return true
	}

	r.DistBegTop = r.DistEndTop
	r.DistBegBot = r.DistEndBot
	return false
}
