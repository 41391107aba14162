package tessellate

import (
	"math"
	"slices"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/dhconnelly/rtreego"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// weld snaps every vertex to the first position seen for its key, so that
// coincident vertices become bit-identical.
func weld(m *geom.Mesh, q geom.Quantizer) *geom.Mesh {
	rep := make(map[geom.Key]v3.Vec)
	out := &geom.Mesh{Name: m.Name, Polygons: make([]geom.Polygon, 0, len(m.Polygons))}
	for _, p := range m.Polygons {
		vs := make([]v3.Vec, len(p.Vertices))
		for i, v := range p.Vertices {
			k := q.Key(v)
			r, ok := rep[k]
			if !ok {
				rep[k] = v
				r = v
			}
			vs[i] = r
		}
		wp := dedupe(geom.Polygon{Vertices: vs}, q)
		if len(wp.Vertices) >= 3 {
			out.Polygons = append(out.Polygons, wp)
		}
	}
	return out
}

// vertexItem is a mesh vertex stored in the R-tree.
type vertexItem struct {
	key  geom.Key
	pos  v3.Vec
	rect rtreego.Rect
}

func (v *vertexItem) Bounds() rtreego.Rect {
	return v.rect
}

type splitPoint struct {
	t   float64
	key geom.Key
	pos v3.Vec
}

// repairTJunctions inserts into each edge every mesh vertex lying strictly
// inside it, so that both sides of a seam reference the same vertices.
func repairTJunctions(m *geom.Mesh, q geom.Quantizer, tol float64) *geom.Mesh {
	tree := rtreego.NewTree(3, 25, 50)
	seen := make(map[geom.Key]bool)
	for _, p := range m.Polygons {
		for _, v := range p.Vertices {
			k := q.Key(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			tree.Insert(&vertexItem{key: k, pos: v, rect: rtreego.Point{v.X, v.Y, v.Z}.ToRect(tol)})
		}
	}

	out := &geom.Mesh{Name: m.Name, Polygons: make([]geom.Polygon, 0, len(m.Polygons))}
	for _, p := range m.Polygons {
		vs := make([]v3.Vec, 0, len(p.Vertices))
		for i, a := range p.Vertices {
			b := p.Vertices[(i+1)%len(p.Vertices)]
			vs = append(vs, a)
			for _, sp := range pointsOnEdge(tree, a, b, q, tol) {
				vs = append(vs, sp.pos)
			}
		}
		out.Polygons = append(out.Polygons, geom.Polygon{Vertices: vs})
	}
	return out
}

// pointsOnEdge returns the indexed vertices within tol of the open segment
// ab, ordered from a to b.
func pointsOnEdge(tree *rtreego.Rtree, a, b v3.Vec, q geom.Quantizer, tol float64) []splitPoint {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 <= tol*tol {
		return nil
	}
	corner := rtreego.Point{min(a.X, b.X) - tol, min(a.Y, b.Y) - tol, min(a.Z, b.Z) - tol}
	lengths := []float64{
		math.Abs(d.X) + 2*tol,
		math.Abs(d.Y) + 2*tol,
		math.Abs(d.Z) + 2*tol,
	}
	bb, err := rtreego.NewRect(corner, lengths)
	if err != nil {
		return nil
	}
	ka, kb := q.Key(a), q.Key(b)
	tEps := tol / math.Sqrt(l2)

	var out []splitPoint
	for _, s := range tree.SearchIntersect(bb) {
		item := s.(*vertexItem)
		if item.key == ka || item.key == kb {
			continue
		}
		t := item.pos.Sub(a).Dot(d) / l2
		if t <= tEps || t >= 1-tEps {
			continue
		}
		foot := a.Add(d.MulScalar(t))
		if foot.Sub(item.pos).Length() >= tol {
			continue
		}
		out = append(out, splitPoint{t: t, key: item.key, pos: item.pos})
	}
	slices.SortFunc(out, func(x, y splitPoint) int {
		switch {
		case x.t < y.t:
			return -1
		case x.t > y.t:
			return 1
		}
		return x.key.Compare(y.key)
	})
	return out
}
