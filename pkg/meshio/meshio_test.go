package meshio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/topology"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var q = geom.NewQuantizer(geom.DefaultPrecision)

func cube() *geom.Mesh {
	m := geom.Cuboid(v3.Vec{}, v3.Vec{X: 1, Y: 2, Z: 3})
	m.Name = "block"
	return m
}

const asciiTriangle = `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 2 0 0
    endloop
  endfacet
endsolid tri
`

func TestReadASCII(t *testing.T) {
	m, err := ReadSTL(strings.NewReader(asciiTriangle))
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name)
	require.Len(t, m.Polygons, 1, "zero-area facet is dropped")
	assert.InDelta(t, 0.5, m.Polygons[0].Area(), 1e-12)
}

func TestReadASCIIErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad number", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 zero\n"},
		{"short vertex", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0\n"},
		{"two vertices", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSTL(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, cube()))
	assert.Equal(t, 84+12*50, buf.Len())

	m, err := ReadSTL(&buf)
	require.NoError(t, err)
	assert.Equal(t, "block", m.Name)
	assert.Len(t, m.Polygons, 12)
	assert.InDelta(t, 6.0, m.Volume(), 1e-6)
	assert.NoError(t, topology.CheckWatertight(m, q))
}

func TestBinaryWithSolidHeader(t *testing.T) {
	m := cube()
	m.Name = "solid but binary"
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, m))

	got, err := ReadSTL(&buf)
	require.NoError(t, err)
	assert.Len(t, got.Polygons, 12)
}

func TestTruncatedBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, cube()))
	_, err := ReadSTL(bytes.NewReader(buf.Bytes()[:buf.Len()-10]))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = ReadSTL(bytes.NewReader([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"part.stl", "part.stl.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			m := cube()
			m.Name = ""
			require.NoError(t, Save(path, m))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "part", got.Name)
			assert.InDelta(t, 6.0, got.Volume(), 1e-6)
		})
	}

	plain, err := os.Stat(filepath.Join(dir, "part.stl"))
	require.NoError(t, err)
	packed, err := os.Stat(filepath.Join(dir, "part.stl.zst"))
	require.NoError(t, err)
	assert.Less(t, packed.Size(), plain.Size())
	assert.True(t, Compressed("a.ZST"))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.stl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteGLB(t *testing.T) {
	var buf bytes.Buffer
	other := geom.Cuboid(v3.Vec{X: 5}, v3.Vec{X: 6, Y: 1, Z: 1})
	require.NoError(t, WriteGLB(&buf, cube(), other, geom.NewMesh()))
	assert.Equal(t, "glTF", string(buf.Bytes()[:4]))

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(&buf).Decode(&doc))
	require.Len(t, doc.Meshes, 2)
	assert.Equal(t, "block", doc.Meshes[0].Name)
	assert.Equal(t, "mesh1", doc.Meshes[1].Name)
	assert.Len(t, doc.Scenes[0].Nodes, 2)
	require.Len(t, doc.Materials, 2)
	assert.NotEqual(t, *doc.Materials[0].PBRMetallicRoughness.BaseColorFactor, *doc.Materials[1].PBRMetallicRoughness.BaseColorFactor)
}

func TestColorForWraps(t *testing.T) {
	assert.Equal(t, ColorFor(0), ColorFor(len(Palette)))
	c := ColorFor(0)
	assert.InDelta(t, float32(0x4A)/255, c[0], 1e-6)
	assert.Equal(t, float32(1), c[3])
}

func TestSaveGLBByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.glb")
	require.NoError(t, Save(path, cube()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "glTF", string(data[:4]))
}
