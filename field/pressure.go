package field

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/types"
)

// Dense complex pressure accumulator indexed by (source, receiver
// depth, receiver range). Jobs accumulate into private per-job grids
// and fold them in through Merge; complex adds cannot be done
// atomically.
type PressureField struct {
	U   []complex128
	NSz int
	NRz int
	NRr int

	mu sync.Mutex
}

func NewPressureField(nSz, nRz, nRr int) *PressureField {
	return &PressureField{
		U:   make([]complex128, nSz*nRz*nRr),
		NSz: nSz,
		NRz: nRz,
		NRr: nRr,
	}
}

// The sub-array for one source.
func (f *PressureField) Source(isz int) []complex128 {
	stride := f.NRz * f.NRr
	return f.U[isz*stride : (isz+1)*stride]
}

// Fold one job's private grid into the source's sub-array. Several
// jobs share a source (one per launch angle), so the fold is the one
// synchronized write of a field run.
func (f *PressureField) Merge(isz int, u []complex128) {
	dst := f.Source(isz)
	f.mu.Lock()
	for i, v := range u {
		dst[i] += v
	}
	f.mu.Unlock()
}

// Pressure at one grid point.
func (f *PressureField) At(isz, irz, irr int) complex128 {
	return f.U[(isz*f.NRz+irz)*f.NRr+irr]
}

// Scale the accumulated pressure into output units after all workers
// joined: fan-density factor for coherent runs, square-root of the
// accumulated intensity otherwise, and cylindrical spreading per
// receiver range.
func (f *PressureField) Finalize(e *env.Env) {
	var cnst float64
	if e.Beam.Coherence == env.Coherent {
		c, _ := e.SSP.Eval(types.Vec2{0.0, e.Pos.Sz[0]})
		cnst = -e.Angles.Dalpha * math.Sqrt(e.Freq0) / c
	} else {
		cnst = -1.0
		for i, u := range f.U {
			f.U[i] = complex(math.Sqrt(real(u)), 0.0)
		}
	}

	for isz := 0; isz < f.NSz; isz++ {
		for irz := 0; irz < f.NRz; irz++ {
			for irr := 0; irr < f.NRr; irr++ {
				idx := (isz*f.NRz+irz)*f.NRr + irr
				factor := cnst
				if r := e.Pos.Rr[irr]; r > 0.0 {
					factor /= math.Sqrt(r)
				}
				f.U[idx] *= complex(factor, 0.0)
			}
		}
	}
}

// Largest pressure magnitude over the whole grid, for run summaries.
func (f *PressureField) PeakMagnitude() float64 {
	var peak float64
	for _, u := range f.U {
		if m := cmplx.Abs(u); m > peak {
			peak = m
		}
	}
	return peak
}
