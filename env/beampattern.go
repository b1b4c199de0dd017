package env

// Source beam pattern: amplitude as a function of launch declination
// angle. Angles are in degrees, sorted ascending.
type BeamPattern struct {
	AngleDeg []float64
	Level    []float64
}

// Omnidirectional pattern.
func DefaultBeamPattern() *BeamPattern {
	return &BeamPattern{
		AngleDeg: []float64{-180.0, 180.0},
		Level:    []float64{1.0, 1.0},
	}
}

// Linearly interpolate the pattern at the given launch angle. The
// lookup is clamped so that interpolation always uses the last two
// valid entries when the angle falls past the table end.
func (bp *BeamPattern) Amplitude(angleDeg float64) float64 {
	ibp := searchLEQ(bp.AngleDeg, clamp(angleDeg, bp.AngleDeg[0], bp.AngleDeg[len(bp.AngleDeg)-1]))
	if ibp > len(bp.AngleDeg)-2 {
		ibp = len(bp.AngleDeg) - 2
	}

	s := (angleDeg - bp.AngleDeg[ibp]) / (bp.AngleDeg[ibp+1] - bp.AngleDeg[ibp])
	return (1.0-s)*bp.Level[ibp] + s*bp.Level[ibp+1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
