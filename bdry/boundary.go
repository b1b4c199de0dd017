package bdry

import (
	"fmt"
	"math"

	"github.com/RookieLinux/bellhopcuda/types"
)

// Boundary representation.
type Kind uint8

const (
	// Piecewise-linear: position, normal and tangent are constant
	// within a segment.
	Flat Kind = iota

	// Curvilinear: node normals, tangents and curvature are
	// interpolated across the enclosing segment.
	Curvilinear
)

// One boundary node together with the geometry of the segment that
// starts at it.
type Point struct {
	// Node position (r, z).
	X types.Vec2

	// Unit tangent and outward unit normal of the segment [i, i+1].
	T types.Vec2
	N types.Vec2

	// Node-averaged tangent and normal, used by curvilinear
	// interpolation at reflection points.
	Nodet types.Vec2
	Noden types.Vec2

	// Segment length and curvature.
	Len   float64
	Kappa float64
}

// A top or bottom boundary: an ordered table of nodes spanning the
// range extent of the run, plus the acoustic properties of the
// half-space behind it.
type Boundary struct {
	Kind Kind
	Pts  []Point

	// True for the top (surface) boundary; flips the outward normal.
	Top bool

	Hs   HalfSpace
	Refl ReflTable
}

// Per-ray cached locator into a boundary table: the enclosing segment
// index plus the segment geometry currently applicable to the ray.
// Owned exclusively by the ray working on it.
type State struct {
	ISeg int
	X    types.Vec2
	N    types.Vec2
}

// Build a boundary from node positions ordered by increasing range.
func New(kind Kind, nodes []types.Vec2, top bool, hs HalfSpace, refl ReflTable) (*Boundary, error) {
	if len(nodes) < 2 {
		return nil, fmt.Errorf("bdry: need at least two nodes, got %d", len(nodes))
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i][0] <= nodes[i-1][0] {
			return nil, fmt.Errorf("bdry: node ranges are not monotonically increasing")
		}
	}

	b := &Boundary{
		Kind: kind,
		Pts:  make([]Point, len(nodes)),
		Top:  top,
		Hs:   hs,
		Refl: refl,
	}

	for i, x := range nodes {
		b.Pts[i].X = x
	}

	// Segment tangents and outward normals. The outward normal points
	// out of the water column: up through the top boundary and down
	// through the bottom.
	for i := 0; i < len(nodes)-1; i++ {
		d := nodes[i+1].Sub(nodes[i])
		b.Pts[i].Len = d.Len()
		b.Pts[i].T = d.Normalize()
		b.Pts[i].N = b.Pts[i].T.Perp()
		if top {
			b.Pts[i].N = b.Pts[i].N.Mul(-1.0)
		}
	}
	last := len(nodes) - 1
	b.Pts[last].T = b.Pts[last-1].T
	b.Pts[last].N = b.Pts[last-1].N
	b.Pts[last].Len = b.Pts[last-1].Len

	// Node-averaged geometry and segment curvature for the
	// curvilinear representation.
	b.Pts[0].Nodet = b.Pts[0].T
	b.Pts[last].Nodet = b.Pts[last-1].T
	for i := 1; i < last; i++ {
		b.Pts[i].Nodet = b.Pts[i-1].T.Add(b.Pts[i].T).Normalize()
	}
	for i := range b.Pts {
		b.Pts[i].Noden = b.Pts[i].Nodet.Perp()
		if top {
			b.Pts[i].Noden = b.Pts[i].Noden.Mul(-1.0)
		}
	}
	if kind == Curvilinear {
		for i := 0; i < last; i++ {
			phi0 := math.Atan2(b.Pts[i].Nodet[1], b.Pts[i].Nodet[0])
			phi1 := math.Atan2(b.Pts[i+1].Nodet[1], b.Pts[i+1].Nodet[0])
			b.Pts[i].Kappa = (phi1 - phi0) / b.Pts[i].Len
		}
		b.Pts[last].Kappa = b.Pts[last-1].Kappa
	}

	return b, nil
}

// Range extent covered by the boundary table.
func (b *Boundary) RMin() float64 { return b.Pts[0].X[0] }
func (b *Boundary) RMax() float64 { return b.Pts[len(b.Pts)-1].X[0] }

// Range interval of the segment st refers to.
func (b *Boundary) SegRange(st *State) (r0, r1 float64) {
	return b.Pts[st.ISeg].X[0], b.Pts[st.ISeg+1].X[0]
}

// Locate the segment enclosing x and refresh the cached geometry in st.
// The previous segment index is used as a search hint: a ray moves by
// at most one segment per step, so the walk terminates immediately in
// the common case.
func (b *Boundary) Locate(x types.Vec2, st *State) {
	iSeg := st.ISeg
	if iSeg < 0 {
		iSeg = 0
	}
	if iSeg > len(b.Pts)-2 {
		iSeg = len(b.Pts) - 2
	}

	for iSeg > 0 && x[0] < b.Pts[iSeg].X[0] {
		iSeg--
	}
	for iSeg < len(b.Pts)-2 && x[0] >= b.Pts[iSeg+1].X[0] {
		iSeg++
	}

	st.ISeg = iSeg
	st.X = b.Pts[iSeg].X
	st.N = b.Pts[iSeg].N
}

// Interpolated geometry at a reflection point inside the segment st
// refers to: outward normal, boundary tangent and curvature. Flat
// boundaries return the segment constants.
func (b *Boundary) ReflectGeometry(x types.Vec2, st *State) (nInt, tInt types.Vec2, kappa float64) {
	bd0 := &b.Pts[st.ISeg]
	bd1 := &b.Pts[st.ISeg+1]

	if b.Kind == Curvilinear {
		// proportional distance along segment
		sss := x.Sub(bd0.X).Dot(bd0.T) / bd0.Len
		nInt = bd0.Noden.Mul(1.0 - sss).Add(bd1.Noden.Mul(sss))
		tInt = bd0.Nodet.Mul(1.0 - sss).Add(bd1.Nodet.Mul(sss))
	} else {
		nInt = bd0.N
		tInt = bd0.T
	}
	return nInt, tInt, bd0.Kappa
}

// Signed normal distances from a ray position to the top and bottom
// boundaries. Outward normals make both distances positive strictly
// inside the medium.
func Distances(rayx types.Vec2, top, bot *State) (distTop, distBot float64) {
	dTop := rayx.Sub(top.X)
	dBot := rayx.Sub(bot.X)
	distTop = -top.N.Dot(dTop)
	distBot = -bot.N.Dot(dBot)
	return distTop, distBot
}
