package geom

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegenerate is returned when a polygon has no well-defined plane.
var ErrDegenerate = errors.New("geom: degenerate polygon")

// degenerateArea is the smallest Newell magnitude treated as a real face.
const degenerateArea = 1e-12

// Polygon is a planar, convex-or-concave simple face. Vertices are ordered
// counter-clockwise when viewed from the side the outward normal points to.
type Polygon struct {
	Vertices []v3.Vec
}

// NewPolygon builds a polygon from its vertices.
func NewPolygon(vs ...v3.Vec) Polygon {
	return Polygon{Vertices: append([]v3.Vec(nil), vs...)}
}

// Plane is an oriented plane: points p with Normal·p == W.
type Plane struct {
	Normal v3.Vec
	W      float64
}

// Distance is the signed distance from p to the plane.
func (pl Plane) Distance(p v3.Vec) float64 {
	return pl.Normal.Dot(p) - pl.W
}

// Flip returns the plane facing the other way.
func (pl Plane) Flip() Plane {
	return Plane{Normal: pl.Normal.MulScalar(-1), W: -pl.W}
}

// Newell returns the unnormalized Newell normal. Its length is twice the
// polygon area.
func (p Polygon) Newell() v3.Vec {
	var n v3.Vec
	vs := p.Vertices
	for i := range vs {
		a, b := vs[i], vs[(i+1)%len(vs)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// PlaneOf derives the outward plane of p from its winding using Newell's
// method, which tolerates slightly non-planar and non-convex input.
func PlaneOf(p Polygon) (Plane, error) {
	if len(p.Vertices) < 3 {
		return Plane{}, ErrDegenerate
	}
	n := p.Newell()
	l := n.Length()
	if l < degenerateArea || math.IsNaN(l) || math.IsInf(l, 0) {
		return Plane{}, ErrDegenerate
	}
	n = n.MulScalar(1 / l)
	return Plane{Normal: n, W: n.Dot(p.Centroid())}, nil
}

// Area returns the polygon's area.
func (p Polygon) Area() float64 {
	return p.Newell().Length() / 2
}

// Centroid returns the vertex average.
func (p Polygon) Centroid() v3.Vec {
	var c v3.Vec
	if len(p.Vertices) == 0 {
		return c
	}
	for _, v := range p.Vertices {
		c = c.Add(v)
	}
	return c.MulScalar(1 / float64(len(p.Vertices)))
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	return Polygon{Vertices: append([]v3.Vec(nil), p.Vertices...)}
}

// Flip reverses the winding, turning the polygon inside out.
func (p Polygon) Flip() Polygon {
	n := len(p.Vertices)
	out := make([]v3.Vec, n)
	for i, v := range p.Vertices {
		out[n-1-i] = v
	}
	return Polygon{Vertices: out}
}

// Translate moves every vertex by d.
func (p Polygon) Translate(d v3.Vec) Polygon {
	out := make([]v3.Vec, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = v.Add(d)
	}
	return Polygon{Vertices: out}
}

// Transform applies an affine transform. Mirroring transforms flip the
// winding, so the result is re-flipped to stay outward facing.
func (p Polygon) Transform(m sdf.M44) Polygon {
	out := make([]v3.Vec, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = m.MulPosition(v)
	}
	q := Polygon{Vertices: out}
	if determinant3(m) < 0 {
		return q.Flip()
	}
	return q
}

// determinant3 is the determinant of the linear part of m.
func determinant3(m sdf.M44) float64 {
	x := m.MulPosition(v3.Vec{X: 1}).Sub(m.MulPosition(v3.Vec{}))
	y := m.MulPosition(v3.Vec{Y: 1}).Sub(m.MulPosition(v3.Vec{}))
	z := m.MulPosition(v3.Vec{Z: 1}).Sub(m.MulPosition(v3.Vec{}))
	return x.Dot(y.Cross(z))
}

// IsConvex reports whether every corner turns the same way as the polygon
// normal, allowing collinear corners.
func (p Polygon) IsConvex() bool {
	n := p.Newell()
	if n.Length() < degenerateArea {
		return false
	}
	vs := p.Vertices
	for i := range vs {
		a := vs[i].Sub(vs[(i+len(vs)-1)%len(vs)])
		b := vs[(i+1)%len(vs)].Sub(vs[i])
		scale := a.Length() * b.Length() * n.Length()
		if a.Cross(b).Dot(n) < -1e-6*scale {
			return false
		}
	}
	return true
}

// IsSimple reports whether no two non-adjacent edges of p cross, checked in
// the polygon's dominant projection.
func (p Polygon) IsSimple() bool {
	pts := project(p.Vertices, p.Newell())
	n := len(pts)
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1, b2 := pts[j], pts[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

// Finite reports whether every coordinate is a real number.
func (p Polygon) Finite() bool {
	for _, v := range p.Vertices {
		for _, c := range [3]float64{v.X, v.Y, v.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}
