package expand

import (
	"math"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// tiny is the length below which a vector is treated as zero.
	tiny = 1e-12
	// flatness is the relative triple product below which a wedge is too
	// thin to be worth a triangular cross-section.
	flatness = 1e-3
)

// ConnectEdge builds the closed solid that bridges the edge start→end and
// its copy displaced by step, the signed growth along the axis.
//
// reach is the displacement the slab of the grown face applied to the edge
// (delta times its unit normal), or the zero vector when no face on the
// edge is extruded or only axis-parallel walls are wanted. When reach and
// step span a real wedge with the edge, the cross-section is the triangle
// {0, step, reach}. Otherwise it is a parallelogram {0, step, step+w, w}
// where w is eps long and leans toward inward with the step and edge
// components removed.
//
// It returns nil when the edge is parallel to step, since moving such an
// edge along the axis sweeps no area.
func ConnectEdge(start, end, step, reach, inward v3.Vec, eps float64) *geom.Mesh {
	e := end.Sub(start)
	if e.Length() < tiny || step.Length() < tiny {
		return nil
	}
	if r := reach.Length(); r > tiny {
		triple := math.Abs(e.Dot(step.Cross(reach)))
		if triple > flatness*e.Length()*step.Length()*r {
			return geom.Prism(geom.NewPolygon(start, start.Add(step), start.Add(reach)), e)
		}
	}
	w, ok := wallOffset(e, step, inward, eps)
	if !ok {
		return nil
	}
	return geom.Prism(geom.NewPolygon(start, start.Add(step), start.Add(step).Add(w), start.Add(w)), e)
}

// ConnectRidge fills the wedge opened between the slabs of two grown faces
// meeting at start→end, whose displaced copies are start+reachA and
// start+reachB. It returns nil when the wedge is flat.
func ConnectRidge(start, end, reachA, reachB v3.Vec) *geom.Mesh {
	e := end.Sub(start)
	a, b := reachA.Length(), reachB.Length()
	if e.Length() < tiny || a < tiny || b < tiny {
		return nil
	}
	if math.Abs(e.Dot(reachA.Cross(reachB))) <= flatness*e.Length()*a*b {
		return nil
	}
	return geom.Prism(geom.NewPolygon(start, start.Add(reachA), start.Add(reachB)), e)
}

// wallOffset returns the eps-long thickness vector of a parallelogram wall,
// orthogonal to both the edge e and step.
func wallOffset(e, step, inward v3.Vec, eps float64) (v3.Vec, bool) {
	s := step.MulScalar(1 / step.Length())
	along := e.Sub(s.MulScalar(e.Dot(s)))
	if along.Length() < tiny*e.Length() || along.Length() < tiny {
		return v3.Vec{}, false
	}
	along = along.MulScalar(1 / along.Length())

	w := inward.Sub(s.MulScalar(inward.Dot(s)))
	w = w.Sub(along.MulScalar(w.Dot(along)))
	if w.Length() < 1e-9 {
		w = along.Cross(s)
		if w.Dot(inward) < 0 {
			w = w.MulScalar(-1)
		}
	}
	return w.MulScalar(eps / w.Length()), true
}

// ConnectVertex builds an axis-aligned pillar from v to v+step. On the two
// other axes it is eps wide and centered on v, so every connector touching
// the segment v→v+step overlaps the pillar by volume. The cross-section is
// then clipped to within; nil means nothing of it is left.
func ConnectVertex(v, step v3.Vec, axis geom.Axis, eps float64, within Footprint) *geom.Mesh {
	if step.Length() < tiny {
		return nil
	}
	lo, hi := v, v
	a0, a1 := geom.Component(v, axis), geom.Component(v.Add(step), axis)
	lo = geom.WithComponent(lo, axis, math.Min(a0, a1))
	hi = geom.WithComponent(hi, axis, math.Max(a0, a1))

	for i, o := range []geom.Axis{within.U, within.V} {
		at := geom.Component(v, o)
		l := math.Max(at-eps/2, within.Min[i])
		h := math.Min(at+eps/2, within.Max[i])
		if h-l < tiny {
			return nil
		}
		lo = geom.WithComponent(lo, o, l)
		hi = geom.WithComponent(hi, o, h)
	}
	return geom.Cuboid(lo, hi)
}
