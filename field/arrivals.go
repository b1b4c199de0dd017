package field

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync/atomic"
	"unsafe"

	"github.com/RookieLinux/bellhopcuda/log"
)

var logger = log.New("field")

// Arrivals with essentially the same phase are grouped into one.
const phaseTol = 0.05

// A single eigenray contribution at a (source, receiver) cell.
type Arrival struct {
	A     float32
	Phase float32
	Delay complex64

	// Launch angles at the source and arrival angles at the receiver,
	// in degrees. Azimuth is carried for layout compatibility with 3D
	// arrival records and stays zero in 2D runs.
	SrcDeclAngle  float32
	SrcAzimAngle  float32
	RcvrDeclAngle float32
	RcvrAzimAngle float32

	NTopBnc int32
	NBotBnc int32
}

// Slot-reservation policy, fixed at table construction time.
type Policy uint8

const (
	// Single worker: merge reflected pairs in place and evict the
	// weakest stored arrival when the cell is full.
	MergeEnabled Policy = iota

	// Concurrent workers: reserve slots with an atomic counter and
	// never touch previously written data. Merging in place would
	// need per-cell locking, which would destroy throughput, so
	// arrivals past capacity are simply dropped.
	AtomicAppendOnly
)

// Bounded per-receiver arrival storage for a whole run. Cells are
// addressed by a flat (source, receiver depth, receiver range) index;
// concurrent workers only ever contend on the per-cell counters.
type ArrivalTable struct {
	arr     []Arrival
	nArr    []int32
	maxNArr int32
	policy  Policy
}

// Create the arrival table for a run. The per-cell capacity is derived
// from the total storage budget in bytes, and the reservation policy
// from the worker count.
func NewArrivalTable(memBudget int64, nCells, workers int) (*ArrivalTable, error) {
	if nCells <= 0 {
		return nil, fmt.Errorf("arrivals: no cells to store arrivals for")
	}

	maxNArr := memBudget / (int64(nCells) * int64(unsafe.Sizeof(Arrival{})))
	if maxNArr < 1 {
		return nil, fmt.Errorf("arrivals: storage budget of %d bytes cannot hold one arrival per cell", memBudget)
	}

	policy := AtomicAppendOnly
	if workers == 1 {
		policy = MergeEnabled
	}
	logger.Noticef("( maximum # of arrivals = %d )", maxNArr)

	return &ArrivalTable{
		arr:     make([]Arrival, int64(nCells)*maxNArr),
		nArr:    make([]int32, nCells),
		maxNArr: int32(maxNArr),
		policy:  policy,
	}, nil
}

// Per-cell arrival capacity.
func (t *ArrivalTable) MaxNArr() int32 { return t.maxNArr }

// Policy selected at construction.
func (t *ArrivalTable) Policy() Policy { return t.policy }

// Number of stored arrivals in a cell, clamped to capacity: the atomic
// reservation counter may overshoot but stored slots never do.
func (t *ArrivalTable) Count(cell int) int32 {
	n := atomic.LoadInt32(&t.nArr[cell])
	if n > t.maxNArr {
		n = t.maxNArr
	}
	return n
}

// Stored arrivals of a cell. Only valid after all workers joined.
func (t *ArrivalTable) Cell(cell int) []Arrival {
	base := cell * int(t.maxNArr)
	return t.arr[base : base+int(t.Count(cell))]
}

// Is this the second step of a reflected pair on the same ray? If so
// the arrivals are combined to conserve space. The test only looks at
// the most recently stored arrival; the first half of the pair may
// already have been evicted into an earlier slot and is then missed.
// This mirrors the reference implementation, which documents it as a
// known limitation.
func (t *ArrivalTable) isSecondStepOfPair(omega float64, a *Arrival, base int, nt int32) bool {
	if nt < 1 {
		return false
	}
	prev := &t.arr[base+int(nt)-1]
	dDelay := complex128(a.Delay - prev.Delay)
	return omega*cmplx.Abs(dDelay) < phaseTol &&
		math.Abs(float64(prev.Phase-a.Phase)) < phaseTol
}

// Add one arrival to a cell, following the policy fixed at
// construction.
func (t *ArrivalTable) Add(cell int, omega float64, a Arrival) {
	base := cell * int(t.maxNArr)

	if t.policy == AtomicAppendOnly {
		nt := atomic.AddInt32(&t.nArr[cell], 1) - 1
		if nt >= t.maxNArr {
			return // capacity drop
		}
		t.arr[base+int(nt)] = a
		return
	}

	nt := t.nArr[cell]
	if !t.isSecondStepOfPair(omega, &a, base, nt) {
		var iArr int32
		if nt >= t.maxNArr { // space not available to add an arrival?
			// replace the weakest stored arrival
			iArr = -1
			weakest := a.A
			for i := int32(0); i < t.maxNArr; i++ {
				if t.arr[base+int(i)].A < weakest {
					weakest = t.arr[base+int(i)].A
					iArr = i
				}
			}
			if iArr < 0 {
				return // weaker than everything stored
			}
		} else {
			iArr = nt
			t.nArr[cell] = nt + 1
		}
		t.arr[base+int(iArr)] = a
		return
	}

	// weight old ray information vs. new based on arrival amplitude
	prev := &t.arr[base+int(nt)-1]
	ampTot := prev.A + a.A
	w1 := prev.A / ampTot
	w2 := a.A / ampTot

	prev.Delay = complex(w1, 0)*prev.Delay + complex(w2, 0)*a.Delay
	prev.A = ampTot
	prev.SrcDeclAngle = w1*prev.SrcDeclAngle + w2*a.SrcDeclAngle
	prev.SrcAzimAngle = w1*prev.SrcAzimAngle + w2*a.SrcAzimAngle
	prev.RcvrDeclAngle = w1*prev.RcvrDeclAngle + w2*a.RcvrDeclAngle
	prev.RcvrAzimAngle = w1*prev.RcvrAzimAngle + w2*a.RcvrAzimAngle
}
