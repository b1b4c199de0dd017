package env

import (
	"math"
	"testing"

	"github.com/RookieLinux/bellhopcuda/types"
)

func TestNewAngleFan(t *testing.T) {
	ang, err := NewAngleFan(-20, 20, 41)
	if err != nil {
		t.Fatal(err)
	}

	if ang.Nalpha() != 41 {
		t.Fatalf("expected 41 launch angles; got %d", ang.Nalpha())
	}
	if math.Abs(ang.Dalpha-types.DegRad) > 1e-12 {
		t.Fatalf("expected 1 degree spacing; got %g rad", ang.Dalpha)
	}
	if math.Abs(ang.Alpha[20]) > 1e-12 {
		t.Fatalf("expected the middle angle to be horizontal; got %g", ang.Alpha[20])
	}
	if math.Abs(ang.Alpha[0]+20*types.DegRad) > 1e-12 {
		t.Fatalf("expected the first angle at -20 degrees; got %g rad", ang.Alpha[0])
	}

	if _, err = NewAngleFan(-20, 20, 0); err == nil {
		t.Fatal("expected an error for an empty fan")
	}
	if _, err = NewAngleFan(20, -20, 5); err == nil {
		t.Fatal("expected an error for a reversed angle interval")
	}

	single, err := NewAngleFan(5, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if single.Dalpha != 0 {
		t.Fatalf("expected zero spacing for a single-angle fan; got %g", single.Dalpha)
	}
}

func TestBeamPatternAmplitude(t *testing.T) {
	bp := &BeamPattern{
		AngleDeg: []float64{-30, 0, 30},
		Level:    []float64{0, 1, 0},
	}

	type spec struct {
		angle float64
		exp   float64
	}
	specs := []spec{
		{-30, 0},
		{-15, 0.5},
		{0, 1},
		{15, 0.5},
		{30, 0},
	}

	for index, s := range specs {
		if amp := bp.Amplitude(s.angle); math.Abs(amp-s.exp) > 1e-12 {
			t.Fatalf("[spec %d] expected amplitude %g at %g degrees; got %g", index, s.exp, s.angle, amp)
		}
	}

	// past the table end the last two entries keep being used
	if amp := bp.Amplitude(60); math.Abs(amp+1.0) > 1e-12 {
		t.Fatalf("expected extrapolation from the last two entries to yield -1; got %g", amp)
	}

	omni := DefaultBeamPattern()
	for _, angle := range []float64{-90, 0, 45, 180} {
		if amp := omni.Amplitude(angle); math.Abs(amp-1.0) > 1e-12 {
			t.Fatalf("expected unit amplitude from the default pattern at %g degrees; got %g", angle, amp)
		}
	}
}

func TestNewPosition(t *testing.T) {
	pos, err := NewPosition([]float64{500}, []float64{100, 200}, []float64{1000, 2000, 3000})
	if err != nil {
		t.Fatal(err)
	}
	if pos.DeltaR != 1000 {
		t.Fatalf("expected receiver range spacing 1000; got %g", pos.DeltaR)
	}

	if _, err = NewPosition(nil, []float64{100}, []float64{1000}); err == nil {
		t.Fatal("expected an error for missing source depths")
	}
	if _, err = NewPosition([]float64{500}, []float64{100}, []float64{2000, 1000}); err == nil {
		t.Fatal("expected an error for non-monotonic receiver ranges")
	}
}

func TestClampDepths(t *testing.T) {
	pos, err := NewPosition([]float64{-10, 500, 1200}, []float64{-5, 900}, []float64{1000})
	if err != nil {
		t.Fatal(err)
	}
	pos.ClampDepths(0, 1000)

	exp := []float64{0, 500, 1000}
	for i, z := range pos.Sz {
		if z != exp[i] {
			t.Fatalf("expected source depth %g at index %d; got %g", exp[i], i, z)
		}
	}
	if pos.Rz[0] != 0 {
		t.Fatalf("expected the shallow receiver clamped to 0; got %g", pos.Rz[0])
	}
}

func TestProfileSSP(t *testing.T) {
	ssp := &ProfileSSP{
		Z: []float64{0, 100, 200},
		C: []float64{1500, 1480, 1520},
	}

	type spec struct {
		z     float64
		expC  float64
		expCz float64
	}
	specs := []spec{
		{0, 1500, 0},   // clamped at the top
		{-50, 1500, 0}, // above the table
		{50, 1490, -0.2},
		{150, 1500, 0.4},
		{200, 1520, 0},
		{300, 1520, 0}, // below the table
	}

	for index, s := range specs {
		c, gradc := ssp.Eval(types.Vec2{0, s.z})
		if math.Abs(c-s.expC) > 1e-9 {
			t.Fatalf("[spec %d] expected c=%g at z=%g; got %g", index, s.expC, s.z, c)
		}
		if math.Abs(gradc[1]-s.expCz) > 1e-9 {
			t.Fatalf("[spec %d] expected dc/dz=%g at z=%g; got %g", index, s.expCz, s.z, gradc[1])
		}
	}
}
