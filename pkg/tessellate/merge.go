package tessellate

import (
	"math"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Coplanarity thresholds for grouping polygons.
const (
	normalTolerance = 1e-6
	offsetTolerance = 1e-5
)

type dirEdge struct {
	from, to geom.Key
}

type planeGroup struct {
	plane   geom.Plane
	members []int
}

// mergeCoplanar joins pairs of polygons on the same plane that share an
// edge in opposite directions, as long as the union stays convex and simple.
func mergeCoplanar(m *geom.Mesh, q geom.Quantizer, tol float64) *geom.Mesh {
	polys := make([]geom.Polygon, len(m.Polygons))
	copy(polys, m.Polygons)

	var groups []*planeGroup
	for i, p := range polys {
		pl, err := geom.PlaneOf(p)
		if err != nil {
			continue
		}
		var g *planeGroup
		for _, cand := range groups {
			if math.Abs(cand.plane.Normal.Dot(pl.Normal)-1) < normalTolerance &&
				math.Abs(cand.plane.W-pl.W) < offsetTolerance {
				g = cand
				break
			}
		}
		if g == nil {
			g = &planeGroup{plane: pl}
			groups = append(groups, g)
		}
		g.members = append(g.members, i)
	}

	dead := make([]bool, len(polys))
	for _, g := range groups {
		if len(g.members) > 1 {
			mergeGroup(polys, dead, g.members, q, tol)
		}
	}

	out := &geom.Mesh{Name: m.Name, Polygons: make([]geom.Polygon, 0, len(polys))}
	for i, p := range polys {
		if !dead[i] {
			out.Polygons = append(out.Polygons, p)
		}
	}
	return out
}

func mergeGroup(polys []geom.Polygon, dead []bool, members []int, q geom.Quantizer, tol float64) {
	owner := make(map[dirEdge]int)
	register := func(i int) {
		vs := polys[i].Vertices
		for k, v := range vs {
			owner[dirEdge{q.Key(v), q.Key(vs[(k+1)%len(vs)])}] = i
		}
	}
	for _, i := range members {
		register(i)
	}

	for _, pi := range members {
		for !dead[pi] {
			merged := false
			p := polys[pi]
			for e, u := range p.Vertices {
				v := p.Vertices[(e+1)%len(p.Vertices)]
				ku, kv := q.Key(u), q.Key(v)
				qi, ok := owner[dirEdge{kv, ku}]
				if !ok || qi == pi || dead[qi] {
					continue
				}
				j := findEdge(polys[qi], kv, ku, q)
				if j < 0 {
					continue
				}
				cand, ok := join(p, e, polys[qi], j, q, tol)
				if !ok {
					continue
				}
				polys[pi] = cand
				dead[qi] = true
				register(pi)
				merged = true
				break
			}
			if !merged {
				break
			}
		}
	}
}

// findEdge returns the index i with p[i] == from and p[i+1] == to, or -1.
func findEdge(p geom.Polygon, from, to geom.Key, q geom.Quantizer) int {
	vs := p.Vertices
	for i, v := range vs {
		if q.Key(v) == from && q.Key(vs[(i+1)%len(vs)]) == to {
			return i
		}
	}
	return -1
}

// join glues p and o along p's edge i, which o traverses in reverse as its
// edge j. The merged loop runs p from the edge's end around to its start,
// then o's vertices strictly between the shared endpoints.
func join(p geom.Polygon, i int, o geom.Polygon, j int, q geom.Quantizer, tol float64) (geom.Polygon, bool) {
	np, no := len(p.Vertices), len(o.Vertices)
	vs := make([]v3.Vec, 0, np+no-2)
	for k := 0; k < np; k++ {
		vs = append(vs, p.Vertices[(i+1+k)%np])
	}
	for k := 2; k < no; k++ {
		vs = append(vs, o.Vertices[(j+k)%no])
	}
	merged := dedupe(geom.Polygon{Vertices: vs}, q)
	if len(merged.Vertices) < 3 {
		return geom.Polygon{}, false
	}
	if merged.Newell().Dot(p.Newell()) <= 0 {
		return geom.Polygon{}, false
	}
	if !merged.IsConvex() || !merged.IsSimple() {
		return geom.Polygon{}, false
	}
	want := p.Area() + o.Area()
	if math.Abs(merged.Area()-want) > tol*math.Max(1, want) {
		return geom.Polygon{}, false
	}
	return merged, true
}

// removeCollinear drops vertices that lie on a straight run in every
// polygon that references them. A vertex that is a corner anywhere stays.
func removeCollinear(m *geom.Mesh, q geom.Quantizer, tol float64) *geom.Mesh {
	refs := make(map[geom.Key]int)
	straight := make(map[geom.Key]int)
	for _, p := range m.Polygons {
		vs := p.Vertices
		n := len(vs)
		for i, v := range vs {
			k := q.Key(v)
			refs[k]++
			if isStraight(vs[(i+n-1)%n], v, vs[(i+1)%n], tol) {
				straight[k]++
			}
		}
	}

	out := &geom.Mesh{Name: m.Name, Polygons: make([]geom.Polygon, 0, len(m.Polygons))}
	for _, p := range m.Polygons {
		vs := make([]v3.Vec, 0, len(p.Vertices))
		for _, v := range p.Vertices {
			k := q.Key(v)
			if refs[k] == straight[k] {
				continue
			}
			vs = append(vs, v)
		}
		if len(vs) >= 3 {
			out.Polygons = append(out.Polygons, geom.Polygon{Vertices: vs})
		}
	}
	return out
}

// isStraight reports whether b lies on segment ac, continuing forward.
func isStraight(a, b, c v3.Vec, tol float64) bool {
	ab, bc, ac := b.Sub(a), c.Sub(b), c.Sub(a)
	l := ac.Length()
	if l < tol {
		return false
	}
	return ab.Cross(ac).Length()/l <= tol && ab.Dot(bc) > 0
}
