package topology

import (
	"testing"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func unitCube() *geom.Mesh {
	return geom.Cuboid(vec(0, 0, 0), vec(1, 1, 1))
}

// openBox is a unit cube without its +y face.
func openBox() *geom.Mesh {
	m := unitCube()
	m.Polygons = append(m.Polygons[:3], m.Polygons[4:]...)
	return m
}

func TestMakeEdgeKeyIsCanonical(t *testing.T) {
	a, b := geom.Key{X: 0, Y: 1, Z: 0}, geom.Key{X: 0, Y: 0, Z: 5}
	assert.Equal(t, MakeEdgeKey(a, b), MakeEdgeKey(b, a))
	assert.Equal(t, b, MakeEdgeKey(a, b).A)
}

func TestBuildCube(t *testing.T) {
	idx, err := Build(unitCube(), geom.NewQuantizer(geom.DefaultPrecision))
	require.NoError(t, err)

	edges := idx.Edges()
	require.Len(t, edges, 12)
	for _, e := range edges {
		assert.Len(t, e.Planes, 2)
		assert.True(t, e.Manifold())
		assert.InDelta(t, 1.0, e.End.Sub(e.Start).Length(), 1e-12)
	}

	verts := idx.Vertices()
	require.Len(t, verts, 8)
	for _, v := range verts {
		assert.Len(t, v.Faces, 3)
	}
	assert.Empty(t, idx.BoundaryEdges())
	assert.Len(t, idx.Planes, 6)
}

func TestBuildOpenBox(t *testing.T) {
	idx, err := Build(openBox(), geom.NewQuantizer(geom.DefaultPrecision))
	require.NoError(t, err)
	boundary := idx.BoundaryEdges()
	require.Len(t, boundary, 4)
	for _, e := range boundary {
		assert.Len(t, e.Faces, 1)
		assert.InDelta(t, 1.0, e.Midpoint().Y, 1e-12)
	}
}

func TestBuildWeldsNearbyVertices(t *testing.T) {
	m := unitCube()
	m.Polygons[0].Vertices[0] = vec(1e-7, 0, -1e-7)
	idx, err := Build(m, geom.NewQuantizer(geom.DefaultPrecision))
	require.NoError(t, err)
	assert.Len(t, idx.Vertices(), 8)
	assert.Empty(t, idx.BoundaryEdges())
}

func TestBuildIsDeterministic(t *testing.T) {
	q := geom.NewQuantizer(geom.DefaultPrecision)
	a, err := Build(unitCube(), q)
	require.NoError(t, err)
	b, err := Build(unitCube(), q)
	require.NoError(t, err)
	for i, e := range a.Edges() {
		assert.Equal(t, e.Key, b.Edges()[i].Key)
	}
}

func TestBuildRejectsDegeneratePolygon(t *testing.T) {
	m := unitCube()
	m.Polygons = append(m.Polygons, geom.NewPolygon(vec(0, 0, 0), vec(1, 0, 0), vec(2, 0, 0)))
	_, err := Build(m, geom.NewQuantizer(geom.DefaultPrecision))
	assert.ErrorIs(t, err, geom.ErrDegenerate)
}

func TestLookup(t *testing.T) {
	q := geom.NewQuantizer(geom.DefaultPrecision)
	idx, err := Build(unitCube(), q)
	require.NoError(t, err)

	e, ok := idx.Edge(MakeEdgeKey(q.Key(vec(1, 1, 1)), q.Key(vec(1, 1, 0))))
	require.True(t, ok)
	assert.Len(t, e.Faces, 2)

	v, ok := idx.Vertex(q.Key(vec(0, 1, 0)))
	require.True(t, ok)
	assert.Equal(t, vec(0, 1, 0), v.Position)

	_, ok = idx.Vertex(q.Key(vec(0.5, 0.5, 0.5)))
	assert.False(t, ok)
}

func TestCheckWatertight(t *testing.T) {
	q := geom.NewQuantizer(geom.DefaultPrecision)
	tests := []struct {
		name string
		mesh *geom.Mesh
		ok   bool
	}{
		{"cube", unitCube(), true},
		{"open box", openBox(), false},
		{"duplicated face", func() *geom.Mesh {
			m := unitCube()
			m.Polygons = append(m.Polygons, m.Polygons[0].Clone())
			return m
		}(), false},
		{"flipped face", func() *geom.Mesh {
			m := unitCube()
			m.Polygons[2] = m.Polygons[2].Flip()
			return m
		}(), false},
		{"triangulated cube", geom.NewMesh(unitCube().Triangles()...), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWatertight(tt.mesh, q)
			if tt.ok {
				assert.NoError(t, err)
				assert.Empty(t, Check(tt.mesh, q).Warnings)
			} else {
				assert.ErrorIs(t, err, ErrNotWatertight)
				assert.Len(t, Check(tt.mesh, q).Warnings, 1)
			}
		})
	}
}
