package meshio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/kernel"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Palette assigns distinct colors to parts, cycling when there are more
// parts than entries.
var Palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// ColorFor returns the palette color of the i-th part as linear RGBA.
func ColorFor(i int) [4]float32 {
	hex := Palette[i%len(Palette)]
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return [4]float32{0.8, 0.8, 0.8, 1}
	}
	return [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

// WriteGLB encodes the meshes as one binary glTF scene, one node per mesh
// with flat normals and its own palette material.
func WriteGLB(w io.Writer, meshes ...*geom.Mesh) error {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "solidgrow"

	for i, m := range meshes {
		b := kernel.ToBuffers(m)
		if b.IsEmpty() {
			continue
		}
		posAccessor := modeler.WritePosition(doc, b.Positions())
		normalAccessor := modeler.WriteNormal(doc, b.NormalTriples())
		indicesAccessor := modeler.WriteIndices(doc, b.Indices)
		prim := &gltf.Primitive{
			Attributes: map[string]uint32{
				gltf.POSITION: uint32(posAccessor),
				gltf.NORMAL:   uint32(normalAccessor),
			},
			Indices:  gltf.Index(uint32(indicesAccessor)),
			Material: gltf.Index(uint32(len(doc.Materials))),
		}
		color := ColorFor(len(doc.Meshes))
		pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &color, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
		doc.Materials = append(doc.Materials, &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque})
		name := b.PartName
		if name == "" {
			name = fmt.Sprintf("mesh%d", i)
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("meshio: glb: %w", err)
	}
	return nil
}

// SaveGLB writes the meshes to path as binary glTF.
func SaveGLB(path string, meshes ...*geom.Mesh) error {
	var buf bytes.Buffer
	if err := WriteGLB(&buf, meshes...); err != nil {
		return err
	}
	return writeFile(path, &buf)
}
