package kernel

import (
	"github.com/chazu/solidgrow/pkg/geom"
)

// Buffers is a triangle mesh in flat render-ready arrays: vertices has 3
// floats per vertex (x,y,z), normals has 3 floats per vertex, indices has 3
// uint32s per triangle. Every triangle owns its three vertices so normals
// stay flat.
type Buffers struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`
}

// ToBuffers triangulates m into render buffers. Triangles without area are
// dropped.
func ToBuffers(m *geom.Mesh) *Buffers {
	b := &Buffers{}
	if m == nil {
		return b
	}
	b.PartName = m.Name
	for _, tri := range m.Triangles() {
		pl, err := geom.PlaneOf(tri)
		if err != nil {
			continue
		}
		nx, ny, nz := float32(pl.Normal.X), float32(pl.Normal.Y), float32(pl.Normal.Z)
		for _, v := range tri.Vertices {
			b.Indices = append(b.Indices, uint32(b.VertexCount()))
			b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			b.Normals = append(b.Normals, nx, ny, nz)
		}
	}
	return b
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (b *Buffers) IsEmpty() bool {
	return len(b.Vertices) == 0
}

// Positions returns the vertices as triples.
func (b *Buffers) Positions() [][3]float32 {
	out := make([][3]float32, b.VertexCount())
	for i := range out {
		out[i] = [3]float32{b.Vertices[i*3], b.Vertices[i*3+1], b.Vertices[i*3+2]}
	}
	return out
}

// NormalTriples returns the normals as triples.
func (b *Buffers) NormalTriples() [][3]float32 {
	out := make([][3]float32, len(b.Normals)/3)
	for i := range out {
		out[i] = [3]float32{b.Normals[i*3], b.Normals[i*3+1], b.Normals[i*3+2]}
	}
	return out
}
