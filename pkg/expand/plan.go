package expand

import (
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/topology"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Pieces are the solids an expansion combines. For a positive delta the
// result is the union of all of them; for a negative delta Kept minus
// every slab.
type Pieces struct {
	Kept    *geom.Mesh
	Slabs   []*geom.Mesh
	Walls   []*geom.Mesh
	Pillars []*geom.Mesh
}

// Parts returns the pieces in composition order: kept, slabs, walls,
// pillars.
func (p *Pieces) Parts() []*geom.Mesh {
	out := make([]*geom.Mesh, 0, 1+len(p.Slabs)+len(p.Walls)+len(p.Pillars))
	out = append(out, p.Kept)
	out = append(out, p.Slabs...)
	out = append(out, p.Walls...)
	return append(out, p.Pillars...)
}

// Connectors returns walls followed by pillars.
func (p *Pieces) Connectors() []*geom.Mesh {
	out := make([]*geom.Mesh, 0, len(p.Walls)+len(p.Pillars))
	out = append(out, p.Walls...)
	return append(out, p.Pillars...)
}

// planner holds the per-face state shared by the connector builders.
type planner struct {
	opts      Options
	mesh      *geom.Mesh
	axis      geom.Axis
	unit      v3.Vec
	index     *topology.Index
	align     []Alignment
	eps       float64
	footprint *Footprint
	// bounds clips pillars: the footprint when filtering, otherwise the
	// rectangle of the kept mesh, slabs and walls.
	bounds Footprint
}

// Plan classifies every face of m and builds the slabs and connectors of
// the expansion without combining them. Connectors are only built for a
// positive delta.
func Plan(opts Options, m *geom.Mesh) (*Pieces, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = geom.NewMesh()
	}
	axis, _ := opts.Axis()
	idx, err := topology.Build(m, geom.NewQuantizer(opts.Precision))
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	p := &planner{
		opts:  opts,
		mesh:  m,
		axis:  axis,
		unit:  axis.Unit(),
		index: idx,
		align: make([]Alignment, len(m.Polygons)),
		eps:   opts.thickness(),
	}
	for i, pl := range idx.Planes {
		p.align[i] = Classify(pl.Normal, p.unit, opts.Tolerance)
	}
	if opts.Footprint {
		f := NewFootprint(m, axis)
		p.footprint = &f
	}

	pieces := &Pieces{Kept: m.Clone()}
	if opts.Delta == 0 {
		return pieces, nil
	}
	for i, poly := range m.Polygons {
		if !p.grown(i) {
			continue
		}
		slab, err := Extrude(poly, opts.Delta)
		if err != nil {
			return nil, fmt.Errorf("expand: face %d: %w", i, err)
		}
		pieces.Slabs = append(pieces.Slabs, slab)
	}
	if opts.Delta < 0 {
		return pieces, nil
	}
	for _, e := range idx.Edges() {
		pieces.Walls = append(pieces.Walls, p.edgeConnectors(e)...)
	}
	if p.footprint != nil {
		p.bounds = *p.footprint
	} else {
		parts := append([]*geom.Mesh{pieces.Kept}, pieces.Slabs...)
		p.bounds = footprintOf(axis, append(parts, pieces.Walls...)...)
	}
	rim := p.boundaryVertices()
	for _, v := range idx.Vertices() {
		pieces.Pillars = append(pieces.Pillars, p.vertexConnectors(v, rim[v.Key])...)
	}
	return pieces, nil
}

func (p *planner) grown(face int) bool {
	return p.opts.Grows(p.align[face])
}

// step is the displacement along the axis for growth direction s.
func (p *planner) step(s Alignment) v3.Vec {
	return p.unit.MulScalar(s.Sign() * p.opts.Delta)
}

// signsOf lists, in first-seen order, the directions of the grown faces
// among faces.
func (p *planner) signsOf(faces []int) []Alignment {
	var out []Alignment
	for _, f := range faces {
		if !p.grown(f) {
			continue
		}
		if len(out) == 0 || (len(out) == 1 && out[0] != p.align[f]) {
			out = append(out, p.align[f])
		}
	}
	return out
}

// keep applies the footprint filter to a finished connector.
func (p *planner) keep(m *geom.Mesh) bool {
	if m == nil {
		return false
	}
	return p.footprint == nil || p.footprint.ContainsMesh(m)
}

func (p *planner) edgeConnectors(e *topology.Edge) []*geom.Mesh {
	grown := 0
	for _, f := range e.Faces {
		if p.grown(f) {
			grown++
		}
	}
	manifold := e.Manifold()
	switch {
	case manifold && grown == 0:
		return nil
	case p.footprint != nil && !p.footprint.Contains(e.Midpoint()):
		return nil
	case manifold && grown == 2:
		return p.ridge(e)
	}

	var inward v3.Vec
	for _, pl := range e.Planes {
		inward = inward.Sub(pl.Normal)
	}
	signs := p.signsOf(e.Faces)
	if len(signs) == 0 {
		signs = p.opts.signs()
	}

	var out []*geom.Mesh
	for _, s := range signs {
		var reach v3.Vec
		if p.footprint == nil {
			for i, f := range e.Faces {
				if p.grown(f) && p.align[f] == s {
					reach = e.Planes[i].Normal.MulScalar(p.opts.Delta)
					break
				}
			}
		}
		if m := ConnectEdge(e.Start, e.End, p.step(s), reach, inward, p.eps); p.keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// ridge fills the gap between the slabs of two grown faces whose normals
// differ. Faces growing in opposite directions are left alone.
func (p *planner) ridge(e *topology.Edge) []*geom.Mesh {
	fa, fb := e.Faces[0], e.Faces[1]
	if p.align[fa] != p.align[fb] {
		return nil
	}
	na, nb := e.Planes[0].Normal, e.Planes[1].Normal
	if na.Dot(nb) > 1-1e-9 {
		return nil
	}
	d := p.opts.Delta
	if m := ConnectRidge(e.Start, e.End, na.MulScalar(d), nb.MulScalar(d)); p.keep(m) {
		return []*geom.Mesh{m}
	}
	return nil
}

// boundaryVertices marks the endpoints of edges that are not shared by
// exactly two faces.
func (p *planner) boundaryVertices() map[geom.Key]bool {
	out := make(map[geom.Key]bool)
	for _, e := range p.index.BoundaryEdges() {
		out[e.Key.A] = true
		out[e.Key.B] = true
	}
	return out
}

func (p *planner) vertexConnectors(v *topology.Vertex, onBoundary bool) []*geom.Mesh {
	grown := 0
	for _, f := range v.Faces {
		if p.grown(f) {
			grown++
		}
	}
	mixed := grown > 0 && grown < len(v.Faces)
	if !mixed && !onBoundary {
		return nil
	}
	if p.footprint != nil && !p.footprint.Contains(v.Position) {
		return nil
	}

	signs := p.signsOf(v.Faces)
	if len(signs) == 0 {
		signs = p.opts.signs()
	}
	var out []*geom.Mesh
	for _, s := range signs {
		if m := ConnectVertex(v.Position, p.step(s), p.axis, p.eps, p.bounds); p.keep(m) {
			out = append(out, m)
		}
	}
	return out
}
