package bdry

import "math"

// Boundary condition applied when a ray reflects.
type BC uint8

const (
	// Perfectly rigid: unit reflection, no phase change.
	Rigid BC = iota

	// Pressure release: unit reflection, pi phase flip.
	Vacuum

	// Acoustic half-space behind the boundary (Rayleigh coefficient).
	AcoustoElastic

	// Tabulated angle-dependent reflection coefficient.
	TabulatedRC
)

// Acoustic properties of the half-space behind a boundary.
type HalfSpace struct {
	BC BC

	// Compressional sound speed (m/s) and density ratio relative to
	// the water at the boundary.
	Cp  float64
	Rho float64

	// Attenuation in dB per wavelength.
	Alpha float64
}

// One entry of an angle-tabulated reflection coefficient: angle of
// incidence (degrees from the boundary normal), magnitude and phase.
type ReflCoef struct {
	Theta float64
	Mag   float64
	Phase float64
}

// Angle-tabulated reflection coefficient, sorted by Theta ascending.
type ReflTable []ReflCoef

// Interpolate the reflection coefficient at the given angle of
// incidence. Angles outside the table clamp to the end entries.
func (rt ReflTable) Interp(thetaDeg float64) (mag, phase float64) {
	n := len(rt)
	if n == 0 {
		return 1.0, 0.0
	}
	if thetaDeg <= rt[0].Theta || n == 1 {
		return rt[0].Mag, rt[0].Phase
	}
	if thetaDeg >= rt[n-1].Theta {
		return rt[n-1].Mag, rt[n-1].Phase
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if rt[mid].Theta <= thetaDeg {
			lo = mid
		} else {
			hi = mid
		}
	}

	s := (thetaDeg - rt[lo].Theta) / (rt[lo+1].Theta - rt[lo].Theta)
	mag = (1.0-s)*rt[lo].Mag + s*rt[lo+1].Mag
	phase = (1.0-s)*rt[lo].Phase + s*rt[lo+1].Phase
	return mag, phase
}

// Complex wavenumber in the half-space at angular frequency omega,
// including attenuation. Alpha is converted from dB/wavelength to an
// imaginary sound speed component.
func (hs HalfSpace) Wavenumber(omega float64) complex128 {
	if hs.Cp <= 0 {
		return 0
	}
	// dB/wavelength -> nepers: alpha/(40 pi log10 e)
	eta := hs.Alpha / (40.0 * math.Pi * math.Log10(math.E))
	cp := complex(hs.Cp, 0) / complex(1.0, eta)
	return complex(omega, 0) / cp
}
