// Package sdfx renders smooth primitives (spheres, cylinders, rounded
// boxes) into polygon meshes using the github.com/deadsy/sdfx SDF library
// and marching cubes. The meshes feed the Boolean kernels like any other
// solid.
package sdfx

import (
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// defaultMeshCells controls marching cubes tessellation resolution along
// the longest bounding box axis.
const defaultMeshCells = 48

// Mesher converts SDF solids to meshes.
type Mesher struct {
	Cells int
}

// New returns a Mesher at the default resolution.
func New() *Mesher {
	return &Mesher{Cells: defaultMeshCells}
}

// Sphere meshes a sphere of the given radius centered at the origin.
func (m *Mesher) Sphere(radius float64) (*geom.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return m.Render(s)
}

// Cylinder meshes a z-aligned cylinder centered at the origin.
func (m *Mesher) Cylinder(height, radius float64) (*geom.Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return m.Render(s)
}

// RoundedBox meshes a box with rounded edges. The box has its minimum
// corner at the origin so that placement translations work like Cuboid.
func (m *Mesher) RoundedBox(x, y, z, round float64) (*geom.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, round)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	// sdf.Box3D centers the box at the origin.
	t := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return m.Render(sdf.Transform3D(s, t))
}

// Render runs marching cubes over s and returns its triangles as polygons.
// Sliver triangles without a plane are dropped.
func (m *Mesher) Render(s sdf.SDF3) (*geom.Mesh, error) {
	cells := m.Cells
	if cells <= 0 {
		cells = defaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	out := &geom.Mesh{Polygons: make([]geom.Polygon, 0, len(triangles))}
	for _, tri := range triangles {
		p := geom.NewPolygon(tri[0], tri[1], tri[2])
		if _, err := geom.PlaneOf(p); err != nil {
			continue
		}
		out.Polygons = append(out.Polygons, p)
	}
	if out.IsEmpty() {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}
	return out, nil
}
