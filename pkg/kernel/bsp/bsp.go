// Package bsp implements kernel.Kernel with binary space partitioning trees,
// following the classic csg.js construction: each operand becomes a BSP
// tree whose polygons are clipped against the other tree.
//
// Output polygons are convex fragments carrying their parent's plane; they
// share positions but not topology, so callers normally retessellate.
package bsp

import (
	"fmt"
	"math"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// epsilon is the plane thickness used to classify points.
const epsilon = 1e-5

// DefaultMaxDepth is the depth headroom a tree gets on top of its polygon
// count. A convex operand builds a chain as deep as its face count, so the
// count itself is always allowed; running past it by more than the headroom
// means numerically inconsistent input rather than real geometry.
const DefaultMaxDepth = 4096

// Splitter selection tests a few candidate planes against a sample of the
// node's polygons, keeping each node's cost linear in its polygon count.
const (
	splitterCandidates = 5
	splitterSample     = 64
)

// Kernel is the BSP CSG backend.
type Kernel struct {
	// MaxDepth is the depth allowed beyond the operands' polygon count.
	MaxDepth int
}

// New returns a BSP kernel with the default depth limit.
func New() *Kernel {
	return &Kernel{MaxDepth: DefaultMaxDepth}
}

// Union returns a ∪ b.
func (k *Kernel) Union(a, b *geom.Mesh) (*geom.Mesh, error) {
	return k.run(a, b, func(na, nb *node) error {
		na.clipTo(nb)
		nb.clipTo(na)
		nb.invert()
		nb.clipTo(na)
		nb.invert()
		return na.build(nb.allPolygons(), 0)
	})
}

// Difference returns a − b.
func (k *Kernel) Difference(a, b *geom.Mesh) (*geom.Mesh, error) {
	return k.run(a, b, func(na, nb *node) error {
		na.invert()
		na.clipTo(nb)
		nb.clipTo(na)
		nb.invert()
		nb.clipTo(na)
		nb.invert()
		if err := na.build(nb.allPolygons(), 0); err != nil {
			return err
		}
		na.invert()
		return nil
	})
}

// Intersection returns a ∩ b.
func (k *Kernel) Intersection(a, b *geom.Mesh) (*geom.Mesh, error) {
	return k.run(a, b, func(na, nb *node) error {
		na.invert()
		nb.clipTo(na)
		nb.invert()
		na.clipTo(nb)
		nb.clipTo(na)
		if err := na.build(nb.allPolygons(), 0); err != nil {
			return err
		}
		na.invert()
		return nil
	})
}

func (k *Kernel) run(a, b *geom.Mesh, op func(na, nb *node) error) (*geom.Mesh, error) {
	maxDepth := k.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	pa, err := fromMesh(a)
	if err != nil {
		return nil, err
	}
	pb, err := fromMesh(b)
	if err != nil {
		return nil, err
	}
	maxDepth += len(pa) + len(pb)
	na, nb := &node{maxDepth: maxDepth}, &node{maxDepth: maxDepth}
	if err := na.build(pa, 0); err != nil {
		return nil, err
	}
	if err := nb.build(pb, 0); err != nil {
		return nil, err
	}
	if err := op(na, nb); err != nil {
		return nil, err
	}
	return toMesh(na.allPolygons(), a)
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// fromMesh converts m to convex BSP polygons, triangulating concave faces
// and skipping faces without area.
func fromMesh(m *geom.Mesh) ([]polygon, error) {
	if m == nil {
		return nil, nil
	}
	var out []polygon
	for i, p := range m.Polygons {
		if !p.Finite() {
			return nil, fmt.Errorf("%w: polygon %d has non-finite coordinates", kernel.ErrBoolean, i)
		}
		pieces := []geom.Polygon{p}
		if !p.IsConvex() {
			pieces = p.Triangulate()
		}
		for _, piece := range pieces {
			pl, err := geom.PlaneOf(piece)
			if err != nil {
				continue
			}
			out = append(out, polygon{
				vertices: append([]v3.Vec(nil), piece.Vertices...),
				plane:    plane{normal: pl.Normal, w: pl.W},
			})
		}
	}
	return out, nil
}

func toMesh(polys []polygon, like *geom.Mesh) (*geom.Mesh, error) {
	out := &geom.Mesh{Polygons: make([]geom.Polygon, 0, len(polys))}
	if like != nil {
		out.Name = like.Name
	}
	for _, p := range polys {
		gp := geom.Polygon{Vertices: p.vertices}
		if !gp.Finite() {
			return nil, fmt.Errorf("%w: result has non-finite coordinates", kernel.ErrBoolean)
		}
		out.Polygons = append(out.Polygons, gp)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Planes and polygons
// ---------------------------------------------------------------------------

type plane struct {
	normal v3.Vec
	w      float64
}

func (pl plane) flip() plane {
	return plane{normal: pl.normal.MulScalar(-1), w: -pl.w}
}

type polygon struct {
	vertices []v3.Vec
	plane    plane
}

func (p polygon) flip() polygon {
	n := len(p.vertices)
	vs := make([]v3.Vec, n)
	for i, v := range p.vertices {
		vs[n-1-i] = v
	}
	return polygon{vertices: vs, plane: p.plane.flip()}
}

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

// classify returns the union of the sides p's vertices lie on.
func (pl plane) classify(p polygon) int {
	t := coplanar
	for _, v := range p.vertices {
		d := pl.normal.Dot(v) - pl.w
		if d < -epsilon {
			t |= back
		} else if d > epsilon {
			t |= front
		}
	}
	return t
}

// split sorts p into the four lists relative to pl, cutting spanning
// polygons. Pieces keep p's plane.
func (pl plane) split(p polygon, coplanarFront, coplanarBack, fronts, backs *[]polygon) {
	polygonType := 0
	types := make([]int, len(p.vertices))
	for i, v := range p.vertices {
		t := pl.normal.Dot(v) - pl.w
		typ := coplanar
		if t < -epsilon {
			typ = back
		} else if t > epsilon {
			typ = front
		}
		polygonType |= typ
		types[i] = typ
	}

	switch polygonType {
	case coplanar:
		if pl.normal.Dot(p.plane.normal) > 0 {
			*coplanarFront = append(*coplanarFront, p)
		} else {
			*coplanarBack = append(*coplanarBack, p)
		}
	case front:
		*fronts = append(*fronts, p)
	case back:
		*backs = append(*backs, p)
	case spanning:
		var f, b []v3.Vec
		n := len(p.vertices)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := p.vertices[i], p.vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				d := vj.Sub(vi)
				t := (pl.w - pl.normal.Dot(vi)) / pl.normal.Dot(d)
				v := vi.Add(d.MulScalar(t))
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*fronts = append(*fronts, polygon{vertices: f, plane: p.plane})
		}
		if len(b) >= 3 {
			*backs = append(*backs, polygon{vertices: b, plane: p.plane})
		}
	}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

type node struct {
	plane    *plane
	front    *node
	back     *node
	polygons []polygon
	maxDepth int
}

func (n *node) child() *node {
	return &node{maxDepth: n.maxDepth}
}

// invert converts solid space to empty space and vice versa.
func (n *node) invert() {
	for i := range n.polygons {
		n.polygons[i] = n.polygons[i].flip()
	}
	if n.plane != nil {
		pl := n.plane.flip()
		n.plane = &pl
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys inside this tree's solid.
func (n *node) clipPolygons(polys []polygon) []polygon {
	if n.plane == nil {
		return append([]polygon(nil), polys...)
	}
	var fronts, backs []polygon
	for _, p := range polys {
		n.plane.split(p, &fronts, &backs, &fronts, &backs)
	}
	if n.front != nil {
		fronts = n.front.clipPolygons(fronts)
	}
	if n.back != nil {
		backs = n.back.clipPolygons(backs)
	} else {
		backs = nil
	}
	return append(fronts, backs...)
}

// clipTo removes every polygon of this tree inside bsp.
func (n *node) clipTo(bsp *node) {
	n.polygons = bsp.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(bsp)
	}
	if n.back != nil {
		n.back.clipTo(bsp)
	}
}

func (n *node) allPolygons() []polygon {
	out := append([]polygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

// build inserts polys into the tree. A node adopting a new splitting plane
// keeps the polygon it came from, so a slightly warped polygon can never be
// split by its own plane forever.
func (n *node) build(polys []polygon, depth int) error {
	if len(polys) == 0 {
		return nil
	}
	if depth > n.maxDepth {
		return fmt.Errorf("%w: bsp depth exceeds %d", kernel.ErrBoolean, n.maxDepth)
	}
	if n.plane == nil {
		i := pickSplitter(polys)
		pl := polys[i].plane
		if math.IsNaN(pl.w) || math.IsNaN(pl.normal.Dot(pl.normal)) {
			return fmt.Errorf("%w: invalid plane", kernel.ErrBoolean)
		}
		n.plane = &pl
		n.polygons = append(n.polygons, polys[i])
		rest := make([]polygon, 0, len(polys)-1)
		polys = append(append(rest, polys[:i]...), polys[i+1:]...)
	}
	var fronts, backs []polygon
	for _, p := range polys {
		n.plane.split(p, &n.polygons, &n.polygons, &fronts, &backs)
	}
	if len(fronts) > 0 {
		if n.front == nil {
			n.front = n.child()
		}
		if err := n.front.build(fronts, depth+1); err != nil {
			return err
		}
	}
	if len(backs) > 0 {
		if n.back == nil {
			n.back = n.child()
		}
		if err := n.back.build(backs, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// pickSplitter returns the index of the candidate whose plane cuts the
// fewest sampled polygons and leaves the most even front/back split.
func pickSplitter(polys []polygon) int {
	if len(polys) <= 2 {
		return 0
	}
	stride := len(polys)/splitterSample + 1
	step := len(polys)/splitterCandidates + 1
	best, bestCost := 0, math.MaxInt
	for c := 0; c < len(polys); c += step {
		pl := polys[c].plane
		var fronts, backs, cuts int
		for i := 0; i < len(polys); i += stride {
			if i == c {
				continue
			}
			switch pl.classify(polys[i]) {
			case front:
				fronts++
			case back:
				backs++
			case spanning:
				cuts++
			}
		}
		balance := fronts - backs
		if balance < 0 {
			balance = -balance
		}
		if cost := 8*cuts + balance; cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best
}
