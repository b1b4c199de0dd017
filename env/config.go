package env

import (
	"fmt"
	"os"

	"github.com/RookieLinux/bellhopcuda/bdry"
	"github.com/RookieLinux/bellhopcuda/types"
	"github.com/sugawarayuuta/sonnet"
)

// Everything a run needs, fully validated: coordinate tables, angle
// fan, sound speed field, beam options and boundary geometry. Built
// once before dispatch and treated as immutable by all workers.
type Env struct {
	Freq0   float64
	Pos     *Position
	Angles  *Angles
	SSP     SSP
	Pattern *BeamPattern
	Beam    *Beam

	Top *bdry.Boundary
	Bot *bdry.Boundary

	// Total memory budget for arrival storage, in bytes.
	ArrMemory int64

	// Requested worker count; 0 selects one worker per CPU.
	Workers int
}

// Raw JSON run configuration as decoded from disk.
type Config struct {
	Freq0 float64 `json:"freq0"`

	SourceDepths   []float64 `json:"source_depths"`
	ReceiverDepths []float64 `json:"receiver_depths"`
	ReceiverRanges []float64 `json:"receiver_ranges"`
	RangesInKm     bool      `json:"ranges_in_km"`

	Angles struct {
		FirstDeg float64 `json:"first_deg"`
		LastDeg  float64 `json:"last_deg"`
		N        int     `json:"n"`
		Single   int     `json:"single"`
	} `json:"angles"`

	SSP struct {
		Type string    `json:"type"` // iso | linear | profile
		C0   float64   `json:"c0"`
		Cz   float64   `json:"cz"`
		Z    []float64 `json:"z"`
		C    []float64 `json:"c"`
	} `json:"ssp"`

	Pattern struct {
		AngleDeg []float64 `json:"angle_deg"`
		Level    []float64 `json:"level"`
	} `json:"pattern"`

	Top Surface `json:"top"`
	Bot Surface `json:"bot"`

	Beam struct {
		Mode      string  `json:"mode"`  // ray | field | arrivals
		Shape     string  `json:"shape"` // hat | gaussian
		Coherence string  `json:"coherence"`
		BoxR      float64 `json:"box_r"`
		BoxZ      float64 `json:"box_z"`
		Deltas    float64 `json:"deltas"`
		MaxSteps  int     `json:"max_steps"`
	} `json:"beam"`

	ArrMemoryMB int64 `json:"arrivals_memory_mb"`
	Workers     int   `json:"workers"`
}

// Boundary section of the configuration.
type Surface struct {
	Kind string `json:"kind"` // flat | curvilinear

	// Either an explicit node list or a constant depth spanning the
	// receiver ranges.
	Nodes [][2]float64 `json:"nodes"`
	Depth float64      `json:"depth"`

	BC    string  `json:"bc"` // rigid | vacuum | acousto-elastic | table
	Cp    float64 `json:"cp"`
	Rho   float64 `json:"rho"`
	Alpha float64 `json:"alpha"`

	Refl []struct {
		ThetaDeg float64 `json:"theta_deg"`
		Mag      float64 `json:"mag"`
		PhaseDeg float64 `json:"phase_deg"`
	} `json:"refl"`
}

// Load a run configuration from a JSON document on disk.
func Load(path string) (*Env, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err = sonnet.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	return cfg.Build()
}

// Validate the raw configuration and build the run environment.
func (cfg *Config) Build() (*Env, error) {
	if cfg.Freq0 <= 0 {
		return nil, fmt.Errorf("config: freq0 must be positive")
	}

	if cfg.RangesInKm {
		KmToM(cfg.ReceiverRanges)
	}
	pos, err := NewPosition(cfg.SourceDepths, cfg.ReceiverDepths, cfg.ReceiverRanges)
	if err != nil {
		return nil, err
	}

	var ang *Angles
	if cfg.Angles.N == 0 && cfg.Angles.FirstDeg == 0 && cfg.Angles.LastDeg == 0 {
		return nil, fmt.Errorf("config: missing launch angle fan")
	}
	if ang, err = NewAngleFan(cfg.Angles.FirstDeg, cfg.Angles.LastDeg, cfg.Angles.N); err != nil {
		return nil, err
	}
	if cfg.Angles.Single > 0 {
		if cfg.Angles.Single > ang.Nalpha() {
			return nil, fmt.Errorf("config: single angle index %d out of range", cfg.Angles.Single)
		}
		ang.SingleAlpha = cfg.Angles.Single - 1
	} else {
		ang.SingleAlpha = -1
	}

	var ssp SSP
	switch cfg.SSP.Type {
	case "", "iso":
		ssp = Isovelocity{C0: defaultFloat(cfg.SSP.C0, 1500.0)}
	case "linear":
		ssp = LinearSSP{C0: defaultFloat(cfg.SSP.C0, 1500.0), Cz: cfg.SSP.Cz}
	case "profile":
		if len(cfg.SSP.Z) != len(cfg.SSP.C) || len(cfg.SSP.Z) < 2 {
			return nil, fmt.Errorf("config: ssp profile needs matching z/c tables with at least two entries")
		}
		if !monotonic(cfg.SSP.Z) {
			return nil, fmt.Errorf("config: ssp profile depths are not monotonically increasing")
		}
		ssp = &ProfileSSP{Z: cfg.SSP.Z, C: cfg.SSP.C}
	default:
		return nil, fmt.Errorf("config: unknown ssp type %q", cfg.SSP.Type)
	}

	pattern := DefaultBeamPattern()
	if len(cfg.Pattern.AngleDeg) > 0 {
		if len(cfg.Pattern.AngleDeg) != len(cfg.Pattern.Level) || len(cfg.Pattern.AngleDeg) < 2 {
			return nil, fmt.Errorf("config: beam pattern needs matching angle/level tables with at least two entries")
		}
		pattern = &BeamPattern{AngleDeg: cfg.Pattern.AngleDeg, Level: cfg.Pattern.Level}
	}

	rMax := pos.Rr[len(pos.Rr)-1]
	top, err := cfg.Top.build(true, rMax)
	if err != nil {
		return nil, fmt.Errorf("config: top boundary: %v", err)
	}
	bot, err := cfg.Bot.build(false, rMax)
	if err != nil {
		return nil, fmt.Errorf("config: bottom boundary: %v", err)
	}

	beam := &Beam{
		Box:      types.Vec2{cfg.Beam.BoxR, cfg.Beam.BoxZ},
		Deltas:   cfg.Beam.Deltas,
		MaxSteps: cfg.Beam.MaxSteps,
	}
	switch cfg.Beam.Mode {
	case "ray":
		beam.RunMode = RunRay
	case "", "field":
		beam.RunMode = RunField
	case "arrivals":
		beam.RunMode = RunArrivals
	default:
		return nil, fmt.Errorf("config: unknown run mode %q", cfg.Beam.Mode)
	}
	switch cfg.Beam.Shape {
	case "", "hat":
		beam.Shape = ShapeHat
	case "gaussian":
		beam.Shape = ShapeGaussian
	default:
		return nil, fmt.Errorf("config: unknown beam shape %q", cfg.Beam.Shape)
	}
	switch cfg.Beam.Coherence {
	case "", "coherent":
		beam.Coherence = Coherent
	case "semi-coherent":
		beam.Coherence = SemiCoherent
	case "incoherent":
		beam.Coherence = Incoherent
	default:
		return nil, fmt.Errorf("config: unknown coherence option %q", cfg.Beam.Coherence)
	}
	if beam.Box[0] == 0 {
		beam.Box[0] = 1.01 * rMax
	}
	if beam.Box[1] == 0 {
		beam.Box[1] = 1.01 * maxDepth(bot)
	}
	if beam.Deltas <= 0 {
		// default to roughly ten steps between receiver ranges
		beam.Deltas = pos.DeltaR / 10.0
		if beam.Deltas <= 0 {
			beam.Deltas = rMax / 1000.0
		}
	}
	if beam.MaxSteps <= 0 {
		beam.MaxSteps = 100000
	}

	return &Env{
		Freq0:     cfg.Freq0,
		Pos:       pos,
		Angles:    ang,
		SSP:       ssp,
		Pattern:   pattern,
		Beam:      beam,
		Top:       top,
		Bot:       bot,
		ArrMemory: cfg.ArrMemoryMB << 20,
		Workers:   cfg.Workers,
	}, nil
}

func (sc *Surface) build(top bool, rMax float64) (*bdry.Boundary, error) {
	var kind bdry.Kind
	switch sc.Kind {
	case "", "flat":
		kind = bdry.Flat
	case "curvilinear":
		kind = bdry.Curvilinear
	default:
		return nil, fmt.Errorf("unknown boundary kind %q", sc.Kind)
	}

	hs := bdry.HalfSpace{
		Cp:    sc.Cp,
		Rho:   defaultFloat(sc.Rho, 1.0),
		Alpha: sc.Alpha,
	}
	switch sc.BC {
	case "rigid":
		hs.BC = bdry.Rigid
	case "vacuum":
		hs.BC = bdry.Vacuum
	case "", "acousto-elastic":
		hs.BC = bdry.AcoustoElastic
		if top {
			// a top surface without properties behaves as pressure release
			if sc.Cp == 0 {
				hs.BC = bdry.Vacuum
			}
		} else if sc.Cp == 0 {
			hs.BC = bdry.Rigid
		}
	case "table":
		hs.BC = bdry.TabulatedRC
	default:
		return nil, fmt.Errorf("unknown boundary condition %q", sc.BC)
	}

	var refl bdry.ReflTable
	for _, rc := range sc.Refl {
		refl = append(refl, bdry.ReflCoef{
			Theta: rc.ThetaDeg,
			Mag:   rc.Mag,
			Phase: rc.PhaseDeg * types.DegRad,
		})
	}
	if hs.BC == bdry.TabulatedRC && len(refl) == 0 {
		return nil, fmt.Errorf("tabulated boundary condition without a reflection table")
	}

	nodes := make([]types.Vec2, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		nodes = append(nodes, types.Vec2{n[0], n[1]})
	}
	if len(nodes) == 0 {
		// constant-depth boundary spanning slightly past the receivers
		nodes = []types.Vec2{
			{-0.05 * rMax, sc.Depth},
			{1.05 * rMax, sc.Depth},
		}
	}

	return bdry.New(kind, nodes, top, hs, refl)
}

func defaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func maxDepth(b *bdry.Boundary) float64 {
	var max float64
	for _, pt := range b.Pts {
		if pt.X[1] > max {
			max = pt.X[1]
		}
	}
	return max
}
