package ray

import (
	"math"

	"github.com/RookieLinux/bellhopcuda/types"
)

// Fraction of the nominal step below which a step counts as forced-small.
const smallStepFrac = 1e-6

// Advance the ray one numerical step from point0 into point1 using a
// midpoint (RK2) integration of the ray equations
//
//	dx/ds = c * t,  dt/ds = -grad(c) / c^2,  dq/ds = c * p,  dtau/ds = 1/c
//
// The step size is reduced so the ray lands on a top or bottom boundary
// instead of overshooting it; the returned flags report which boundary
// (if any) was hit. At most one flag is set: the step snaps to the
// nearer crossing.
func (r *Ray) step(point0, point1 *Point) (topRefl, botRefl bool) {
	h := r.Env.Beam.Deltas

	// The crossing tests below compare against the cached segment
	// planes, which are only valid within the current segments; keep
	// the step from skipping past a segment edge.
	if dr := point0.T[0] * point0.C; dr > 0.0 {
		_, topEnd := r.Env.Top.SegRange(&r.Top)
		_, botEnd := r.Env.Bot.SegRange(&r.Bot)
		if rEdge := math.Min(topEnd, botEnd); point0.X[0]+dr*h > rEdge {
			h = (rEdge - point0.X[0]) / dr
		}
	} else if dr < 0.0 {
		topBeg, _ := r.Env.Top.SegRange(&r.Top)
		botBeg, _ := r.Env.Bot.SegRange(&r.Bot)
		if rEdge := math.Max(topBeg, botBeg); point0.X[0]+dr*h < rEdge {
			h = (rEdge - point0.X[0]) / dr
		}
	}

	hTrial := h
	r.take(point0, point1, hTrial)

	// Test for a crossing from inside to outside against the cached
	// boundary planes, and shrink the step to land on the nearer one.
	dTop := -r.Top.N.Dot(point1.X.Sub(r.Top.X))
	dBot := -r.Bot.N.Dot(point1.X.Sub(r.Bot.X))

	if dTop < 0.0 && r.DistBegTop > 0.0 {
		topRefl = true
		h = hTrial * r.DistBegTop / (r.DistBegTop - dTop)
	}
	if dBot < 0.0 && r.DistBegBot > 0.0 {
		if hBot := hTrial * r.DistBegBot / (r.DistBegBot - dBot); !topRefl || hBot < h {
			topRefl = false
			botRefl = true
			h = hBot
		}
	}

	hMin := smallStepFrac * r.Env.Beam.Deltas
	if h < hMin {
		h = hMin
		r.smallSteps++
	} else {
		r.smallSteps = 0
	}
	if h != hTrial {
		r.take(point0, point1, h)
	}

	return topRefl, botRefl
}

// Integrate one step of size h from point0 into point1.
func (r *Ray) take(point0, point1 *Point, h float64) {
	c0, gradc0 := point0.C, r.gradAt(point0.X)

	// Euler predictor to the midpoint, full step with midpoint slopes.
	xm := point0.X.Add(point0.T.Mul(0.5 * h * c0))
	tm := point0.T.Sub(gradc0.Mul(0.5 * h / (c0 * c0)))
	cm, gradcm := r.Env.SSP.Eval(xm)

	point1.X = point0.X.Add(tm.Mul(h * cm))
	point1.T = point0.T.Sub(gradcm.Mul(h / (cm * cm)))

	c1, _ := r.Env.SSP.Eval(point1.X)
	point1.C = c1
	point1.Tau = point0.Tau + complex(h/cm, 0.0)

	// Sound speed curvature vanishes for the piecewise-linear profiles
	// supported here, so p is constant along the step.
	point1.P = point0.P
	point1.Q = point0.Q.Add(point0.P.Mul(h * cm))

	point1.Amp = point0.Amp
	point1.Phase = point0.Phase
	point1.NumTopBnc = point0.NumTopBnc
	point1.NumBotBnc = point0.NumBotBnc
}

func (r *Ray) gradAt(x types.Vec2) types.Vec2 {
	_, gradc := r.Env.SSP.Eval(x)
	return gradc
}

// Receiver arrival declination angle for a tangent vector, in degrees.
func DeclAngle(t types.Vec2) float64 {
	return math.Atan2(t[1], t[0]) * 180.0 / math.Pi
}
