package ray

import (
	"math"
	"math/cmplx"

	"github.com/RookieLinux/bellhopcuda/bdry"
)

// A reflection coefficient below this kills the ray outright.
const reflFloor = 1e-5

// Compute the reflected ray point for an incident point sitting on a
// boundary. The tangent is mirrored about the boundary normal, the
// paraxial p component picks up the boundary-curvature correction, and
// the amplitude/phase are modified by the boundary's reflection
// coefficient. Purely local: safe to run concurrently across rays.
func (r *Ray) reflect(point1, point2 *Point, b *bdry.Boundary, st *bdry.State) {
	nBdry, tBdry, kappa := b.ReflectGeometry(point1.X, st)

	tg := point1.T.Dot(tBdry) // tangential component of ray slowness
	th := point1.T.Dot(nBdry) // normal component

	point2.X = point1.X
	point2.T = point1.T.Sub(nBdry.Mul(2.0 * th))

	c, gradc := r.Env.SSP.Eval(point1.X)

	// Incident and reflected unit tangents/normals for the curvature
	// change terms.
	rayt := point1.T.Mul(c)
	rayn := rayt.Perp()
	raytTilde := point2.T.Mul(c)
	raynTilde := raytTilde.Perp().Mul(-1.0)

	rn := 2.0 * kappa / (c * c) / th
	cnjump := -gradc.Dot(raynTilde.Sub(rayn))
	csjump := -gradc.Dot(raytTilde.Sub(rayt))
	if b.Top {
		cnjump = -cnjump
		rn = -rn
	}
	rm := tg / th
	rn += rm * (2.0*cnjump - rm*csjump) / (c * c)

	point2.C = c
	point2.Tau = point1.Tau
	point2.P = point1.P.Add(point1.Q.Mul(rn))
	point2.Q = point1.Q

	point2.NumTopBnc = point1.NumTopBnc
	point2.NumBotBnc = point1.NumBotBnc
	if b.Top {
		point2.NumTopBnc++
	} else {
		point2.NumBotBnc++
	}

	switch b.Hs.BC {
	case bdry.Rigid:
		point2.Amp = point1.Amp
		point2.Phase = point1.Phase

	case bdry.Vacuum:
		point2.Amp = point1.Amp
		point2.Phase = point1.Phase + math.Pi

	case bdry.TabulatedRC:
		// grazing angle of incidence; the table is symmetric about 90
		theta := math.Abs(math.Atan2(th, tg)) * 180.0 / math.Pi
		if theta > 90.0 {
			theta = 180.0 - theta
		}
		mag, phase := b.Refl.Interp(theta)
		point2.Amp = point1.Amp * mag
		point2.Phase = point1.Phase + phase

	case bdry.AcoustoElastic:
		refl := r.rayleigh(b.Hs, c, tg, th)
		if cmplx.Abs(refl) < reflFloor {
			// ray is dead; the energy predicate stops it next check
			point2.Amp = 0.0
			point2.Phase = point1.Phase
		} else {
			point2.Amp = point1.Amp * cmplx.Abs(refl)
			point2.Phase = point1.Phase + math.Atan2(imag(refl), real(refl))
		}
	}
}

// Rayleigh reflection coefficient against an attenuating fluid
// half-space. tg and th are the tangential and normal slowness
// components of the incident ray at the boundary.
func (r *Ray) rayleigh(hs bdry.HalfSpace, c, tg, th float64) complex128 {
	kx := complex(r.omega*math.Abs(tg), 0.0) // wavenumber along the boundary
	kzIn := complex(r.omega*math.Abs(th), 0.0)

	kOut := hs.Wavenumber(r.omega)
	gammaOut := cmplx.Sqrt(kOut*kOut - kx*kx)
	if imag(gammaOut) < 0.0 {
		gammaOut = -gammaOut
	}

	rhoIn := 1.0
	return (complex(hs.Rho, 0.0)*kzIn - complex(rhoIn, 0.0)*gammaOut) /
		(complex(hs.Rho, 0.0)*kzIn + complex(rhoIn, 0.0)*gammaOut)
}
