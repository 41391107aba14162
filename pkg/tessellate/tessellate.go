// Package tessellate cleans up polygon soups produced by Boolean
// operations: it welds coincident vertices, repairs T-junctions, merges
// coplanar neighbours back into convex faces and removes vertices that no
// longer turn a corner. The result shares vertices exactly along every edge,
// which is what topology.CheckWatertight expects.
package tessellate

import (
	"fmt"

	"github.com/chazu/solidgrow/internal/logging"
	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/samber/lo"
)

var log = logging.Named("tessellate")

// Options tunes retessellation.
type Options struct {
	// Precision is the welding grid.
	Precision float64
	// Tolerance is the distance under which a point counts as lying on a
	// line or plane.
	Tolerance float64
	// MaxPasses bounds the fixpoint iteration.
	MaxPasses int
}

// DefaultOptions returns the tolerances used by Retessellate.
func DefaultOptions() Options {
	return Options{
		Precision: geom.DefaultPrecision,
		Tolerance: 1e-5,
		MaxPasses: 8,
	}
}

// Retessellate cleans m with DefaultOptions. It is idempotent: applying it
// to its own output yields the same geometry.
func Retessellate(m *geom.Mesh) (*geom.Mesh, error) {
	return RetessellateWith(m, DefaultOptions())
}

// RetessellateWith cleans m, repeating the cleanup passes until the mesh
// stops changing. The input is not mutated.
func RetessellateWith(m *geom.Mesh, opts Options) (*geom.Mesh, error) {
	if m == nil {
		return &geom.Mesh{}, nil
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultOptions().MaxPasses
	}
	if !(opts.Tolerance > 0) {
		opts.Tolerance = DefaultOptions().Tolerance
	}
	q := geom.NewQuantizer(opts.Precision)

	for i, p := range m.Polygons {
		if !p.Finite() {
			return nil, fmt.Errorf("tessellate: polygon %d: %w", i, geom.ErrInvalidGeometry)
		}
	}

	cur := m.Clone()
	prev := geom.Fingerprint(cur, q)
	for pass := 1; pass <= opts.MaxPasses; pass++ {
		before := len(cur.Polygons)
		cur = weld(cur, q)
		cur = repairTJunctions(cur, q, opts.Tolerance)
		cur = mergeCoplanar(cur, q, opts.Tolerance)
		cur = removeCollinear(cur, q, opts.Tolerance)
		cur = dropDegenerate(cur, q)

		fp := geom.Fingerprint(cur, q)
		log.Debugf("pass %d: %d -> %d polygons", pass, before, len(cur.Polygons))
		if fp == prev {
			return cur, nil
		}
		prev = fp
	}
	log.Warnf("no fixpoint after %d passes, %d polygons", opts.MaxPasses, len(cur.Polygons))
	return cur, nil
}

// dropDegenerate removes polygons that collapsed below three distinct
// vertices or lost their area.
func dropDegenerate(m *geom.Mesh, q geom.Quantizer) *geom.Mesh {
	out := &geom.Mesh{Name: m.Name}
	out.Polygons = lo.FilterMap(m.Polygons, func(p geom.Polygon, _ int) (geom.Polygon, bool) {
		p = dedupe(p, q)
		if len(p.Vertices) < 3 {
			return p, false
		}
		if _, err := geom.PlaneOf(p); err != nil {
			return p, false
		}
		return p, true
	})
	return out
}

// dedupe removes consecutive repeats (including the wrap-around) and
// spikes a-b-a until none remain.
func dedupe(p geom.Polygon, q geom.Quantizer) geom.Polygon {
	vs := append(p.Vertices[:0:0], p.Vertices...)
	for changed := true; changed && len(vs) >= 3; {
		changed = false
		for i := 0; i < len(vs) && len(vs) >= 3; i++ {
			next := (i + 1) % len(vs)
			if q.Key(vs[i]) == q.Key(vs[next]) {
				vs = append(vs[:next], vs[next+1:]...)
				changed = true
				break
			}
			after := (i + 2) % len(vs)
			if q.Key(vs[i]) == q.Key(vs[after]) {
				// spike i -> next -> i: drop the tip and one copy of the base
				vs = removeIndices(vs, next, after)
				changed = true
				break
			}
		}
	}
	if len(vs) < 3 {
		vs = nil
	}
	return geom.Polygon{Vertices: vs}
}

func removeIndices[T any](s []T, a, b int) []T {
	out := make([]T, 0, len(s))
	for i, v := range s {
		if i != a && i != b {
			out = append(out, v)
		}
	}
	return out
}
