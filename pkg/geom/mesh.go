package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Mesh is an unordered polygon soup. A valid solid is closed: every directed
// edge appears exactly once and its reverse exactly once.
type Mesh struct {
	Name     string
	Polygons []Polygon
}

// NewMesh wraps polygons in a mesh.
func NewMesh(polys ...Polygon) *Mesh {
	return &Mesh{Polygons: polys}
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return &Mesh{}
	}
	return &Mesh{
		Name:     m.Name,
		Polygons: lo.Map(m.Polygons, func(p Polygon, _ int) Polygon { return p.Clone() }),
	}
}

// IsEmpty reports whether m has no polygons.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Polygons) == 0
}

// VertexCount counts polygon corners, not unique positions.
func (m *Mesh) VertexCount() int {
	return lo.SumBy(m.Polygons, func(p Polygon) int { return len(p.Vertices) })
}

// Translate returns m moved by d.
func (m *Mesh) Translate(d v3.Vec) *Mesh {
	return &Mesh{
		Name:     m.Name,
		Polygons: lo.Map(m.Polygons, func(p Polygon, _ int) Polygon { return p.Translate(d) }),
	}
}

// Transform returns m under the affine transform t.
func (m *Mesh) Transform(t sdf.M44) *Mesh {
	return &Mesh{
		Name:     m.Name,
		Polygons: lo.Map(m.Polygons, func(p Polygon, _ int) Polygon { return p.Transform(t) }),
	}
}

// Flip returns m turned inside out.
func (m *Mesh) Flip() *Mesh {
	return &Mesh{
		Name:     m.Name,
		Polygons: lo.Map(m.Polygons, func(p Polygon, _ int) Polygon { return p.Flip() }),
	}
}

// Volume is the signed enclosed volume; positive for outward-facing solids.
// Fan decomposition is exact for any simple planar polygon.
func (m *Mesh) Volume() float64 {
	var vol float64
	for _, p := range m.Polygons {
		vs := p.Vertices
		for i := 1; i+1 < len(vs); i++ {
			vol += vs[0].Dot(vs[i].Cross(vs[i+1]))
		}
	}
	return vol / 6
}

// Area is the total surface area.
func (m *Mesh) Area() float64 {
	return lo.SumBy(m.Polygons, func(p Polygon) float64 { return p.Area() })
}

// Bounds returns the axis-aligned bounding box. An empty mesh has a zero box.
func (m *Mesh) Bounds() sdf.Box3 {
	if m.IsEmpty() {
		return sdf.Box3{}
	}
	lo3 := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi3 := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range m.Polygons {
		for _, v := range p.Vertices {
			lo3 = v3.Vec{X: math.Min(lo3.X, v.X), Y: math.Min(lo3.Y, v.Y), Z: math.Min(lo3.Z, v.Z)}
			hi3 = v3.Vec{X: math.Max(hi3.X, v.X), Y: math.Max(hi3.Y, v.Y), Z: math.Max(hi3.Z, v.Z)}
		}
	}
	return sdf.Box3{Min: lo3, Max: hi3}
}

// Triangles returns every polygon split into triangles.
func (m *Mesh) Triangles() []Polygon {
	return lo.FlatMap(m.Polygons, func(p Polygon, _ int) []Polygon { return p.Triangulate() })
}

// Cuboid builds the axis-aligned box spanning min and max with outward
// counter-clockwise faces.
func Cuboid(min, max v3.Vec) *Mesh {
	x0, y0, z0 := min.X, min.Y, min.Z
	x1, y1, z1 := max.X, max.Y, max.Z
	p := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
	return NewMesh(
		NewPolygon(p(x0, y0, z0), p(x0, y0, z1), p(x0, y1, z1), p(x0, y1, z0)), // -x
		NewPolygon(p(x1, y0, z0), p(x1, y1, z0), p(x1, y1, z1), p(x1, y0, z1)), // +x
		NewPolygon(p(x0, y0, z0), p(x1, y0, z0), p(x1, y0, z1), p(x0, y0, z1)), // -y
		NewPolygon(p(x0, y1, z0), p(x0, y1, z1), p(x1, y1, z1), p(x1, y1, z0)), // +y
		NewPolygon(p(x0, y0, z0), p(x0, y1, z0), p(x1, y1, z0), p(x1, y0, z0)), // -z
		NewPolygon(p(x0, y0, z1), p(x1, y0, z1), p(x1, y1, z1), p(x0, y1, z1)), // +z
	)
}

// Sweep builds the closed solid traced by moving base along offset: the base
// reversed, the base translated, and one quad per base edge. The result is
// outward facing when offset points along the base's normal.
func Sweep(base Polygon, offset v3.Vec) *Mesh {
	vs := base.Vertices
	far := base.Translate(offset)
	polys := make([]Polygon, 0, len(vs)+2)
	polys = append(polys, base.Flip(), far)
	for i := range vs {
		j := (i + 1) % len(vs)
		polys = append(polys, NewPolygon(vs[i], vs[j], far.Vertices[j], far.Vertices[i]))
	}
	return NewMesh(polys...)
}

// Prism is Sweep with its orientation corrected from the signed volume, so
// the winding of base does not matter.
func Prism(base Polygon, offset v3.Vec) *Mesh {
	m := Sweep(base, offset)
	if m.Volume() < 0 {
		return m.Flip()
	}
	return m
}
