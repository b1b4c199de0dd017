package bdry

import (
	"math"
	"testing"

	"github.com/RookieLinux/bellhopcuda/types"
)

func TestLocateUsesHint(t *testing.T) {
	b, err := New(Flat, []types.Vec2{
		{0, 100}, {100, 100}, {200, 100}, {300, 100},
	}, false, HalfSpace{BC: Rigid}, nil)
	if err != nil {
		t.Fatal(err)
	}

	type spec struct {
		hint    int
		r       float64
		expSeg  int
		expOrig float64
	}
	specs := []spec{
		{0, 50, 0, 0},
		{0, 250, 2, 200},
		{2, 50, 0, 0},
		{1, 150, 1, 100},
		// out-of-table positions clamp to the end segments
		{0, 500, 2, 200},
		{2, -10, 0, 0},
		// stale hints outside the table are clamped before the walk
		{99, 150, 1, 100},
	}

	for index, s := range specs {
		st := State{ISeg: s.hint}
		b.Locate(types.Vec2{s.r, 50}, &st)
		if st.ISeg != s.expSeg {
			t.Fatalf("[spec %d] expected segment %d for r=%g; got %d", index, s.expSeg, s.r, st.ISeg)
		}
		if st.X[0] != s.expOrig {
			t.Fatalf("[spec %d] expected segment origin %g; got %g", index, s.expOrig, st.X[0])
		}
	}
}

func TestDistancesSigns(t *testing.T) {
	top, err := New(Flat, []types.Vec2{{0, 0}, {1000, 0}}, true, HalfSpace{BC: Vacuum}, nil)
	if err != nil {
		t.Fatal(err)
	}
	bot, err := New(Flat, []types.Vec2{{0, 100}, {1000, 100}}, false, HalfSpace{BC: Rigid}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// outward normals: up through the top, down through the bottom
	if top.Pts[0].N != (types.Vec2{0, -1}) {
		t.Fatalf("expected top outward normal (0,-1); got %v", top.Pts[0].N)
	}
	if bot.Pts[0].N != (types.Vec2{0, 1}) {
		t.Fatalf("expected bottom outward normal (0,1); got %v", bot.Pts[0].N)
	}

	var topSt, botSt State
	type spec struct {
		z       float64
		distTop float64
		distBot float64
	}
	specs := []spec{
		{50, 50, 50},   // inside: both positive
		{0, 0, 100},    // on the top boundary
		{-10, -10, 110}, // above the surface
		{120, 120, -20}, // below the bottom
	}

	for index, s := range specs {
		x := types.Vec2{500, s.z}
		top.Locate(x, &topSt)
		bot.Locate(x, &botSt)
		dTop, dBot := Distances(x, &topSt, &botSt)
		if dTop != s.distTop {
			t.Fatalf("[spec %d] expected top distance %g at z=%g; got %g", index, s.distTop, s.z, dTop)
		}
		if dBot != s.distBot {
			t.Fatalf("[spec %d] expected bottom distance %g at z=%g; got %g", index, s.distBot, s.z, dBot)
		}
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Flat, []types.Vec2{{0, 0}}, true, HalfSpace{}, nil); err == nil {
		t.Fatal("expected an error for a single-node boundary")
	}
	if _, err := New(Flat, []types.Vec2{{0, 0}, {100, 0}, {100, 10}}, true, HalfSpace{}, nil); err == nil {
		t.Fatal("expected an error for non-monotonic node ranges")
	}
}

func TestCurvilinearCurvature(t *testing.T) {
	// bottom dipping down and back up: the tangent angle drops from
	// +45 to -45 degrees across the middle node
	b, err := New(Curvilinear, []types.Vec2{
		{0, 100}, {100, 200}, {200, 100},
	}, false, HalfSpace{BC: Rigid}, nil)
	if err != nil {
		t.Fatal(err)
	}

	segLen := math.Sqrt(2.0) * 100.0
	expKappa := -(math.Pi / 4.0) / segLen
	if math.Abs(b.Pts[0].Kappa-expKappa) > 1e-12 {
		t.Fatalf("expected curvature %g on the first segment; got %g", expKappa, b.Pts[0].Kappa)
	}
	if math.Abs(b.Pts[1].Kappa-expKappa) > 1e-12 {
		t.Fatalf("expected curvature %g on the second segment; got %g", expKappa, b.Pts[1].Kappa)
	}

	// the averaged node tangent at the kink is horizontal
	if math.Abs(b.Pts[1].Nodet[1]) > 1e-12 || b.Pts[1].Nodet[0] != 1.0 {
		t.Fatalf("expected horizontal node tangent at the kink; got %v", b.Pts[1].Nodet)
	}
}

func TestReflectGeometryInterpolation(t *testing.T) {
	b, err := New(Curvilinear, []types.Vec2{
		{0, 100}, {100, 200}, {200, 100},
	}, false, HalfSpace{BC: Rigid}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// halfway along the first segment the interpolated normal is the
	// average of the two node normals
	st := State{}
	b.Locate(types.Vec2{50, 150}, &st)
	nInt, tInt, kappa := b.ReflectGeometry(types.Vec2{50, 150}, &st)

	expN := b.Pts[0].Noden.Add(b.Pts[1].Noden).Mul(0.5)
	if math.Abs(nInt[0]-expN[0]) > 1e-12 || math.Abs(nInt[1]-expN[1]) > 1e-12 {
		t.Fatalf("expected interpolated normal %v; got %v", expN, nInt)
	}
	expT := b.Pts[0].Nodet.Add(b.Pts[1].Nodet).Mul(0.5)
	if math.Abs(tInt[0]-expT[0]) > 1e-12 || math.Abs(tInt[1]-expT[1]) > 1e-12 {
		t.Fatalf("expected interpolated tangent %v; got %v", expT, tInt)
	}
	if kappa != b.Pts[0].Kappa {
		t.Fatalf("expected segment curvature %g; got %g", b.Pts[0].Kappa, kappa)
	}
}

func TestReflTableInterp(t *testing.T) {
	table := ReflTable{
		{Theta: 0, Mag: 1.0, Phase: 0.0},
		{Theta: 45, Mag: 0.5, Phase: 0.1},
		{Theta: 90, Mag: 0.25, Phase: 0.2},
	}

	type spec struct {
		theta    float64
		expMag   float64
		expPhase float64
	}
	specs := []spec{
		{0, 1.0, 0.0},
		{22.5, 0.75, 0.05},
		{45, 0.5, 0.1},
		{67.5, 0.375, 0.15},
		{90, 0.25, 0.2},
		// out-of-table angles clamp to the end entries
		{-10, 1.0, 0.0},
		{120, 0.25, 0.2},
	}

	for index, s := range specs {
		mag, phase := table.Interp(s.theta)
		if math.Abs(mag-s.expMag) > 1e-12 {
			t.Fatalf("[spec %d] expected magnitude %g at theta=%g; got %g", index, s.expMag, s.theta, mag)
		}
		if math.Abs(phase-s.expPhase) > 1e-12 {
			t.Fatalf("[spec %d] expected phase %g at theta=%g; got %g", index, s.expPhase, s.theta, phase)
		}
	}

	if mag, phase := ReflTable(nil).Interp(45); mag != 1.0 || phase != 0.0 {
		t.Fatalf("expected unit coefficient for an empty table; got %g, %g", mag, phase)
	}
}

func TestHalfSpaceWavenumber(t *testing.T) {
	hs := HalfSpace{Cp: 1600, Rho: 1.8}
	omega := 2.0 * math.Pi * 100.0

	k := hs.Wavenumber(omega)
	if math.Abs(real(k)-omega/1600.0) > 1e-12 || imag(k) != 0 {
		t.Fatalf("expected lossless wavenumber %g; got %v", omega/1600.0, k)
	}

	hs.Alpha = 0.5
	k = hs.Wavenumber(omega)
	if imag(k) <= 0 {
		t.Fatalf("expected positive imaginary part for an attenuating half-space; got %v", k)
	}
}
