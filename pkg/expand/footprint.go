package expand

import (
	"math"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// footprintSlack absorbs rounding on points that lie on the bounds.
const footprintSlack = 1e-9

// Footprint is the input's bounding rectangle on the two axes orthogonal
// to the growth axis.
type Footprint struct {
	Axis     geom.Axis
	U, V     geom.Axis
	Min, Max [2]float64
}

// NewFootprint measures m. An empty mesh yields an empty rectangle that
// contains nothing.
func NewFootprint(m *geom.Mesh, axis geom.Axis) Footprint {
	return footprintOf(axis, m)
}

// Unbounded returns a footprint containing every point.
func Unbounded(axis geom.Axis) Footprint {
	u, v := axis.Others()
	inf := math.Inf(1)
	return Footprint{Axis: axis, U: u, V: v, Min: [2]float64{-inf, -inf}, Max: [2]float64{inf, inf}}
}

// footprintOf is the bounding rectangle of all of meshes.
func footprintOf(axis geom.Axis, meshes ...*geom.Mesh) Footprint {
	u, v := axis.Others()
	f := Footprint{Axis: axis, U: u, V: v, Min: [2]float64{1, 1}, Max: [2]float64{-1, -1}}
	first := true
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for _, p := range m.Polygons {
			for _, pt := range p.Vertices {
				pu, pv := geom.Component(pt, u), geom.Component(pt, v)
				if first {
					f.Min, f.Max = [2]float64{pu, pv}, [2]float64{pu, pv}
					first = false
					continue
				}
				f.Min = [2]float64{math.Min(f.Min[0], pu), math.Min(f.Min[1], pv)}
				f.Max = [2]float64{math.Max(f.Max[0], pu), math.Max(f.Max[1], pv)}
			}
		}
	}
	return f
}

// Contains reports whether p projects inside the rectangle, bounds
// included.
func (f Footprint) Contains(p v3.Vec) bool {
	pu, pv := geom.Component(p, f.U), geom.Component(p, f.V)
	return pu >= f.Min[0]-footprintSlack && pu <= f.Max[0]+footprintSlack &&
		pv >= f.Min[1]-footprintSlack && pv <= f.Max[1]+footprintSlack
}

// ContainsMesh reports whether every vertex of m is inside.
func (f Footprint) ContainsMesh(m *geom.Mesh) bool {
	for _, p := range m.Polygons {
		for _, v := range p.Vertices {
			if !f.Contains(v) {
				return false
			}
		}
	}
	return true
}
