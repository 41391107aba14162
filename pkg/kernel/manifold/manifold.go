//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ManifoldKernel)(nil)

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct {
	quantizer geom.Quantizer
}

// New creates a new ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{quantizer: geom.NewQuantizer(geom.DefaultPrecision)}, nil
}

// Union returns the boolean union of two meshes.
func (k *ManifoldKernel) Union(a, b *geom.Mesh) (*geom.Mesh, error) {
	return k.boolean(a, b, func(alloc unsafe.Pointer, pa, pb *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_union(alloc, pa, pb)
	})
}

// Difference returns the boolean difference (a minus b).
func (k *ManifoldKernel) Difference(a, b *geom.Mesh) (*geom.Mesh, error) {
	return k.boolean(a, b, func(alloc unsafe.Pointer, pa, pb *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_difference(alloc, pa, pb)
	})
}

// Intersection returns the boolean intersection of two meshes.
func (k *ManifoldKernel) Intersection(a, b *geom.Mesh) (*geom.Mesh, error) {
	return k.boolean(a, b, func(alloc unsafe.Pointer, pa, pb *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_intersection(alloc, pa, pb)
	})
}

type binaryOp func(alloc unsafe.Pointer, a, b *C.ManifoldManifold) *C.ManifoldManifold

func (k *ManifoldKernel) boolean(a, b *geom.Mesh, op binaryOp) (*geom.Mesh, error) {
	ma, err := k.toManifold(a)
	if err != nil {
		return nil, err
	}
	defer C.manifold_delete_manifold(ma)
	mb, err := k.toManifold(b)
	if err != nil {
		return nil, err
	}
	defer C.manifold_delete_manifold(mb)

	res := op(unsafe.Pointer(C.manifold_alloc_manifold()), ma, mb)
	defer C.manifold_delete_manifold(res)
	if st := C.manifold_status(res); st != C.MANIFOLD_NO_ERROR {
		return nil, fmt.Errorf("%w: manifold status %d", kernel.ErrBoolean, int(st))
	}
	out, err := fromManifold(res)
	if err != nil {
		return nil, err
	}
	if a != nil {
		out.Name = a.Name
	}
	return out, nil
}

// toManifold welds m's triangles into an indexed MeshGL; Manifold requires
// shared vertices to recognise a closed surface.
func (k *ManifoldKernel) toManifold(m *geom.Mesh) (*C.ManifoldManifold, error) {
	if m == nil {
		m = &geom.Mesh{}
	}
	index := make(map[geom.Key]uint32)
	var props []float32
	var tris []uint32
	for _, tri := range m.Triangles() {
		var ids [3]uint32
		for i, v := range tri.Vertices {
			key := k.quantizer.Key(v)
			id, ok := index[key]
			if !ok {
				id = uint32(len(props) / 3)
				index[key] = id
				props = append(props, float32(v.X), float32(v.Y), float32(v.Z))
			}
			ids[i] = id
		}
		if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
			continue
		}
		tris = append(tris, ids[:]...)
	}
	if len(tris) == 0 {
		return C.manifold_empty(unsafe.Pointer(C.manifold_alloc_manifold())), nil
	}

	meshGL := C.manifold_meshgl(unsafe.Pointer(C.manifold_alloc_meshgl()),
		(*C.float)(unsafe.Pointer(&props[0])), C.size_t(len(props)/3), C.size_t(3),
		(*C.uint32_t)(unsafe.Pointer(&tris[0])), C.size_t(len(tris)/3),
	)
	defer C.manifold_delete_meshgl(meshGL)

	ptr := C.manifold_of_meshgl(unsafe.Pointer(C.manifold_alloc_manifold()), meshGL)
	if st := C.manifold_status(ptr); st != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(ptr)
		return nil, fmt.Errorf("%w: operand rejected with manifold status %d", kernel.ErrBoolean, int(st))
	}
	return ptr, nil
}

// fromManifold extracts the triangles of a manifold as polygons.
func fromManifold(ptr *C.ManifoldManifold) (*geom.Mesh, error) {
	meshGL := C.manifold_get_meshgl(unsafe.Pointer(C.manifold_alloc_meshgl()), ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &geom.Mesh{}, nil
	}

	// The first 3 properties of every vertex are its position.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&propData[0])), meshGL)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), meshGL)

	pos := func(i uint32) v3.Vec {
		base := int(i) * numProp
		return v3.Vec{X: float64(propData[base]), Y: float64(propData[base+1]), Z: float64(propData[base+2])}
	}
	out := &geom.Mesh{Polygons: make([]geom.Polygon, 0, numTri)}
	for t := 0; t < numTri; t++ {
		i0, i1, i2 := indices[t*3], indices[t*3+1], indices[t*3+2]
		if int(i0) >= numVert || int(i1) >= numVert || int(i2) >= numVert {
			return nil, fmt.Errorf("manifold: triangle %d references vertex out of range", t)
		}
		out.Polygons = append(out.Polygons, geom.NewPolygon(pos(i0), pos(i1), pos(i2)))
	}
	return out, nil
}
