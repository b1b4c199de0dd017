package field

import (
	"math"
	"math/cmplx"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/ray"
	"github.com/RookieLinux/bellhopcuda/types"
)

// Gaussian beams are cut off past this many standard deviations.
const beamWindow = 4.0

// Maps the segments of one ray onto the receiver grid, accumulating
// either complex pressure (field runs) or arrival records (arrivals
// runs). One instance per job; the pressure sub-array it writes is
// exclusive to the job's source.
type Influence struct {
	e     *env.Env
	omega float64
	ri    *ray.InitInfo

	// Reference beam spreading q0 = c(source)/Dalpha, so that q/q0 is
	// the beam radius.
	q0     float64
	ratio1 float64 // point source fan density factor

	// Caustic phase tracking.
	qOld  float64
	phase float64

	// Exactly one of these is set.
	u   []complex128
	arr *ArrivalTable

	cellBase int
}

// Create the influence accumulator for one job. u receives coherent or
// incoherent pressure for field runs and must be the source's
// exclusive sub-array; arr receives arrivals for arrivals runs.
func NewInfluence(e *env.Env, ri *ray.InitInfo, point0 *ray.Point, u []complex128, arr *ArrivalTable) *Influence {
	dalpha := e.Angles.Dalpha
	if dalpha == 0.0 {
		// single-angle fan: treat the lone beam as one degree wide
		dalpha = types.DegRad
	}

	return &Influence{
		e:        e,
		omega:    2.0 * math.Pi * e.Freq0,
		ri:       ri,
		q0:       point0.C / dalpha,
		ratio1:   math.Sqrt(math.Abs(math.Cos(ri.Alpha))),
		qOld:     point0.Q[0],
		u:        u,
		arr:      arr,
		cellBase: ri.ISz * len(e.Pos.Rz) * len(e.Pos.Rr),
	}
}

// Distribute one ray segment's contribution onto the receivers whose
// ranges it spans.
func (inf *Influence) Step(point0, point1 *ray.Point) {
	pos := inf.e.Pos

	rayt := point1.X.Sub(point0.X)
	rlen := rayt.Len()
	if rlen < 1e3*math.SmallestNonzeroFloat64 {
		return
	}
	rayt = rayt.Mul(1.0 / rlen)
	rayn := rayt.Perp()
	rcvrDeclAngle := ray.DeclAngle(rayt)

	// phase shifts at caustics
	q := point0.Q[0]
	if (q <= 0.0 && inf.qOld > 0.0) || (q >= 0.0 && inf.qOld < 0.0) {
		inf.phase += math.Pi / 2.0
	}
	inf.qOld = q

	dqds := point1.Q[0] - point0.Q[0]
	dtauds := point1.Tau - point0.Tau

	rA, rB := point0.X[0], point1.X[0]
	if rA > rB {
		rA, rB = rB, rA
	}

	radiusMax := math.Max(math.Abs(point0.Q[0]), math.Abs(point1.Q[0])) / inf.q0
	zMin := math.Min(point0.X[1], point1.X[1]) - beamWindow*radiusMax
	zMax := math.Max(point0.X[1], point1.X[1]) + beamWindow*radiusMax

	for ir, rr := range pos.Rr {
		if rr < rA || rr >= rB {
			continue
		}

		for irz, rz := range pos.Rz {
			if rz < zMin || rz > zMax {
				continue
			}

			xRcvr := types.Vec2{rr, rz}
			d := xRcvr.Sub(point0.X)
			s := d.Dot(rayt) / rlen // proportional distance along the segment
			n := math.Abs(d.Dot(rayn))

			qInt := point0.Q[0] + s*dqds
			radius := math.Abs(qInt / inf.q0)
			if radius == 0.0 {
				continue
			}

			var w float64
			switch inf.e.Beam.Shape {
			case env.ShapeGaussian:
				if n >= beamWindow*radius {
					continue
				}
				w = math.Exp(-0.5 * (n / radius) * (n / radius))
			default:
				if n >= radius {
					continue
				}
				w = (radius - n) / radius
			}

			amp := inf.ratio1 * math.Sqrt(point1.C/math.Abs(qInt)) * point1.Amp * w
			delay := point0.Tau + complex(s, 0)*dtauds

			// an extra quarter-wave shift if the caustic sits inside
			// this segment before the receiver
			phaseInt := inf.phase
			if (qInt <= 0.0 && inf.qOld > 0.0) || (qInt >= 0.0 && inf.qOld < 0.0) {
				phaseInt += math.Pi / 2.0
			}

			if inf.arr != nil {
				inf.arr.Add(inf.cellBase+irz*len(pos.Rr)+ir, inf.omega, Arrival{
					A:             float32(amp),
					Phase:         float32(point1.Phase + phaseInt),
					Delay:         complex64(delay),
					SrcDeclAngle:  float32(inf.ri.SrcDeclAngle),
					RcvrDeclAngle: float32(rcvrDeclAngle),
					NTopBnc:       point1.NumTopBnc,
					NBotBnc:       point1.NumBotBnc,
				})
				continue
			}

			idx := irz*len(pos.Rr) + ir
			switch inf.e.Beam.Coherence {
			case env.Coherent:
				arg := complex(0.0, point1.Phase+phaseInt) -
					complex(0.0, 1.0)*complex(inf.omega, 0.0)*delay
				inf.u[idx] += complex(amp, 0.0) * cmplx.Exp(arg)
			default:
				// incoherent and semi-coherent runs accumulate intensity
				inf.u[idx] += complex(amp*amp, 0.0)
			}
		}
	}
}
