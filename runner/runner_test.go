package runner

import (
	"math"
	"testing"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/tracer"
)

func testConfig() *env.Config {
	cfg := &env.Config{Freq0: 50}
	cfg.SourceDepths = []float64{500}
	cfg.ReceiverDepths = []float64{500}
	cfg.ReceiverRanges = []float64{500, 1000}
	cfg.Angles.FirstDeg = -10
	cfg.Angles.LastDeg = 10
	cfg.Angles.N = 21
	cfg.Bot.Depth = 1000
	return cfg
}

func TestRunnerRayMode(t *testing.T) {
	cfg := testConfig()
	cfg.Beam.Mode = "ray"
	cfg.Beam.MaxSteps = 5000
	cfg.Workers = 2

	e, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	r, err := New(e, tracer.NewPerfectScheduler(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Run(); err != nil {
		t.Fatal(err)
	}

	if len(r.Rays) != 21 {
		t.Fatalf("expected 21 traced rays; got %d", len(r.Rays))
	}
	for i, trajectory := range r.Rays {
		if len(trajectory) < 2 {
			t.Fatalf("expected ray %d to produce a trajectory; got %d points", i, len(trajectory))
		}
		last := trajectory[len(trajectory)-1]
		if last.X[0] < 1000 {
			t.Fatalf("expected ray %d to span the receiver ranges; stopped at r=%g", i, last.X[0])
		}
	}

	stats := r.Stats()
	var total int32
	for _, ts := range stats.Tracers {
		total += ts.NumJobs
	}
	if total != 21 {
		t.Fatalf("expected the tracer stats to cover all 21 jobs; got %d", total)
	}
}

func TestRunnerArrivalsMode(t *testing.T) {
	cfg := testConfig()
	cfg.Beam.Mode = "arrivals"
	cfg.Beam.MaxSteps = 5000
	cfg.ArrMemoryMB = 1
	cfg.Workers = 1

	e, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	r, err := New(e, tracer.NewPerfectScheduler(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Run(); err != nil {
		t.Fatal(err)
	}

	// the receiver sits on the axis of the horizontal beam, 500 m from
	// the source: the direct arrival travels at 1500 m/s
	if r.Arrivals.Count(0) < 1 {
		t.Fatal("expected at least one arrival at the near receiver")
	}
	var found bool
	for _, a := range r.Arrivals.Cell(0) {
		if a.NTopBnc != 0 || a.NBotBnc != 0 {
			continue
		}
		if math.Abs(float64(real(a.Delay))-500.0/1500.0) < 1e-3 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected a direct arrival with a 1/3 s travel time")
	}
}

func TestRunnerFieldMode(t *testing.T) {
	cfg := testConfig()
	cfg.Beam.Mode = "field"
	cfg.Beam.MaxSteps = 5000
	cfg.Workers = 2

	e, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	r, err := New(e, tracer.NewPerfectScheduler(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Run(); err != nil {
		t.Fatal(err)
	}

	// the direct beam passes straight through the on-axis receiver, so
	// the field there cannot vanish
	if r.Pressure.PeakMagnitude() <= 0 {
		t.Fatal("expected a non-zero pressure field at the receivers")
	}
}
