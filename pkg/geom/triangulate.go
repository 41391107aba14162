package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

type point2 struct{ x, y float64 }

// project drops the dominant component of normal, keeping the 2D winding
// counter-clockwise for a polygon wound counter-clockwise around normal.
func project(vs []v3.Vec, normal v3.Vec) []point2 {
	ax, ay, az := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	out := make([]point2, len(vs))
	for i, v := range vs {
		var p point2
		switch {
		case ax >= ay && ax >= az:
			p = point2{v.Y, v.Z}
			if normal.X < 0 {
				p = point2{v.Z, v.Y}
			}
		case ay >= az:
			p = point2{v.Z, v.X}
			if normal.Y < 0 {
				p = point2{v.X, v.Z}
			}
		default:
			p = point2{v.X, v.Y}
			if normal.Z < 0 {
				p = point2{v.Y, v.X}
			}
		}
		out[i] = p
	}
	return out
}

func cross2(o, a, b point2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// segmentsCross reports a proper crossing or a touching configuration
// between segments a1a2 and b1b2.
func segmentsCross(a1, a2, b1, b2 point2) bool {
	d1 := cross2(b1, b2, a1)
	d2 := cross2(b1, b2, a2)
	d3 := cross2(a1, a2, b1)
	d4 := cross2(a1, a2, b2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(b1, b2, a1)) ||
		(d2 == 0 && onSegment(b1, b2, a2)) ||
		(d3 == 0 && onSegment(a1, a2, b1)) ||
		(d4 == 0 && onSegment(a1, a2, b2))
}

func onSegment(a, b, p point2) bool {
	return math.Min(a.x, b.x) <= p.x && p.x <= math.Max(a.x, b.x) &&
		math.Min(a.y, b.y) <= p.y && p.y <= math.Max(a.y, b.y)
}

func inTriangle(p, a, b, c point2) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}

// Triangulate splits p into triangles with the same winding. Convex
// polygons are fanned; others are ear-clipped in their dominant projection.
func (p Polygon) Triangulate() []Polygon {
	vs := p.Vertices
	if len(vs) < 3 {
		return nil
	}
	if len(vs) == 3 {
		return []Polygon{p.Clone()}
	}
	if p.IsConvex() {
		return fan(vs, allIndices(len(vs)))
	}

	pts := project(vs, p.Newell())
	idx := allIndices(len(vs))
	var out []Polygon
	for len(idx) > 3 {
		ear := -1
		for i := range idx {
			a, b, c := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if cross2(pts[a], pts[b], pts[c]) <= 0 {
				continue
			}
			blocked := false
			for _, k := range idx {
				if k == a || k == b || k == c {
					continue
				}
				if inTriangle(pts[k], pts[a], pts[b], pts[c]) {
					blocked = true
					break
				}
			}
			if !blocked {
				ear = i
				break
			}
		}
		if ear < 0 {
			// Numerically hopeless remainder.
			return append(out, fan(vs, idx)...)
		}
		a, b, c := idx[(ear+len(idx)-1)%len(idx)], idx[ear], idx[(ear+1)%len(idx)]
		out = append(out, NewPolygon(vs[a], vs[b], vs[c]))
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	return append(out, NewPolygon(vs[idx[0]], vs[idx[1]], vs[idx[2]]))
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func fan(vs []v3.Vec, idx []int) []Polygon {
	out := make([]Polygon, 0, len(idx)-2)
	for i := 1; i+1 < len(idx); i++ {
		out = append(out, NewPolygon(vs[idx[0]], vs[idx[i]], vs[idx[i+1]]))
	}
	return out
}
