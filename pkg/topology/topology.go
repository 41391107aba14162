// Package topology indexes which faces meet at each edge and vertex of a
// polygon soup. Vertices are identified by quantized keys, so positions that
// differ by less than the quantizer precision are the same vertex.
package topology

import (
	"errors"
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNotWatertight is returned by CheckWatertight.
var ErrNotWatertight = errors.New("topology: mesh is not watertight")

// EdgeKey identifies an undirected edge; A sorts before B.
type EdgeKey struct {
	A, B geom.Key
}

// MakeEdgeKey returns the canonical key of the edge between a and b.
func MakeEdgeKey(a, b geom.Key) EdgeKey {
	if b.Less(a) {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// Edge accumulates every face incident on one undirected edge.
type Edge struct {
	Key EdgeKey
	// Start and End are the positions of the first registration, in the
	// direction the first face traversed the edge.
	Start, End v3.Vec
	Planes     []geom.Plane
	Faces      []int
}

// Midpoint returns the middle of the edge.
func (e *Edge) Midpoint() v3.Vec {
	return e.Start.Add(e.End).MulScalar(0.5)
}

// Manifold reports whether exactly two faces share the edge.
func (e *Edge) Manifold() bool {
	return len(e.Faces) == 2
}

// Vertex accumulates every face incident on one vertex.
type Vertex struct {
	Key      geom.Key
	Position v3.Vec
	Planes   []geom.Plane
	Faces    []int
}

// Index is the adjacency of one mesh. Iteration via EdgeKeys and VertexKeys
// follows first-registration order so downstream output is deterministic.
type Index struct {
	Quantizer geom.Quantizer
	Planes    []geom.Plane

	edges      map[EdgeKey]*Edge
	vertices   map[geom.Key]*Vertex
	edgeKeys   []EdgeKey
	vertexKeys []geom.Key
}

// Build indexes every polygon of m. Polygons without a plane are rejected.
func Build(m *geom.Mesh, q geom.Quantizer) (*Index, error) {
	idx := &Index{
		Quantizer: q,
		Planes:    make([]geom.Plane, len(m.Polygons)),
		edges:     make(map[EdgeKey]*Edge),
		vertices:  make(map[geom.Key]*Vertex),
	}
	for fi, p := range m.Polygons {
		pl, err := geom.PlaneOf(p)
		if err != nil {
			return nil, fmt.Errorf("topology: polygon %d: %w", fi, err)
		}
		idx.Planes[fi] = pl
		vs := p.Vertices
		for i, v := range vs {
			next := vs[(i+1)%len(vs)]
			idx.addEdge(v, next, pl, fi)
			idx.addVertex(v, pl, fi)
		}
	}
	return idx, nil
}

func (idx *Index) addEdge(a, b v3.Vec, pl geom.Plane, face int) {
	ka, kb := idx.Quantizer.Key(a), idx.Quantizer.Key(b)
	if ka == kb {
		return
	}
	key := MakeEdgeKey(ka, kb)
	e, ok := idx.edges[key]
	if !ok {
		e = &Edge{Key: key, Start: a, End: b}
		idx.edges[key] = e
		idx.edgeKeys = append(idx.edgeKeys, key)
	}
	e.Planes = append(e.Planes, pl)
	e.Faces = append(e.Faces, face)
}

func (idx *Index) addVertex(v v3.Vec, pl geom.Plane, face int) {
	key := idx.Quantizer.Key(v)
	vx, ok := idx.vertices[key]
	if !ok {
		vx = &Vertex{Key: key, Position: v}
		idx.vertices[key] = vx
		idx.vertexKeys = append(idx.vertexKeys, key)
	}
	// A face touching the same vertex twice is registered once.
	if n := len(vx.Faces); n > 0 && vx.Faces[n-1] == face {
		return
	}
	vx.Planes = append(vx.Planes, pl)
	vx.Faces = append(vx.Faces, face)
}

// Edges returns every edge in first-registration order.
func (idx *Index) Edges() []*Edge {
	out := make([]*Edge, len(idx.edgeKeys))
	for i, k := range idx.edgeKeys {
		out[i] = idx.edges[k]
	}
	return out
}

// Vertices returns every vertex in first-registration order.
func (idx *Index) Vertices() []*Vertex {
	out := make([]*Vertex, len(idx.vertexKeys))
	for i, k := range idx.vertexKeys {
		out[i] = idx.vertices[k]
	}
	return out
}

// Edge looks up an edge by its canonical key.
func (idx *Index) Edge(k EdgeKey) (*Edge, bool) {
	e, ok := idx.edges[k]
	return e, ok
}

// Vertex looks up a vertex by key.
func (idx *Index) Vertex(k geom.Key) (*Vertex, bool) {
	v, ok := idx.vertices[k]
	return v, ok
}

// BoundaryEdges returns edges not shared by exactly two faces.
func (idx *Index) BoundaryEdges() []*Edge {
	var out []*Edge
	for _, e := range idx.Edges() {
		if !e.Manifold() {
			out = append(out, e)
		}
	}
	return out
}

type directed struct {
	from, to geom.Key
}

// CheckWatertight verifies that every directed edge of m occurs exactly once
// and is matched by exactly one occurrence of its reverse.
func CheckWatertight(m *geom.Mesh, q geom.Quantizer) error {
	counts := make(map[directed]int)
	var order []directed
	for _, p := range m.Polygons {
		vs := p.Vertices
		for i, v := range vs {
			d := directed{q.Key(v), q.Key(vs[(i+1)%len(vs)])}
			if d.from == d.to {
				continue
			}
			if counts[d] == 0 {
				order = append(order, d)
			}
			counts[d]++
		}
	}
	var bad int
	var first directed
	for _, d := range order {
		if counts[d] != 1 || counts[directed{d.to, d.from}] != 1 {
			if bad == 0 {
				first = d
			}
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%w: %d unmatched directed edges, first %v -> %v",
			ErrNotWatertight, bad, first.from, first.to)
	}
	return nil
}

// Check reports the mesh-level topology findings of m as validation
// warnings, in the shape geom.Validate uses.
func Check(m *geom.Mesh, q geom.Quantizer) geom.ValidationResult {
	var r geom.ValidationResult
	if err := CheckWatertight(m, q); err != nil {
		r.Warnings = append(r.Warnings, geom.ValidationError{
			Polygon:  -1,
			Message:  err.Error(),
			Severity: geom.SeverityWarning,
		})
	}
	return r
}
