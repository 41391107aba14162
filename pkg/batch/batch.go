// Package batch runs a per-solid operation over nested collections of
// geometry, returning a collection of the same shape.
package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/solidgrow/pkg/expand"
	"github.com/chazu/solidgrow/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ErrUnsupported is returned for leaves an operation cannot handle, such
// as 2D geometry passed to a 3D operation.
var ErrUnsupported = errors.New("batch: unsupported geometry")

// Kind enumerates the item variants.
type Kind int

const (
	KindSolid      Kind = iota // closed 3D mesh
	KindPath2D                 // open or closed 2D polyline
	KindRegion2D               // filled 2D outlines
	KindCollection             // nested items
)

func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindPath2D:
		return "path2d"
	case KindRegion2D:
		return "region2d"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Item is one node of a geometry tree.
type Item interface {
	Kind() Kind
	item() // marker method restricting implementations to this package
}

// Solid wraps a 3D mesh.
type Solid struct {
	Mesh *geom.Mesh
}

// Path2D is a 2D polyline.
type Path2D struct {
	Points []v2.Vec
	Closed bool
}

// Region2D is a 2D area bounded by one or more closed outlines.
type Region2D struct {
	Outlines [][]v2.Vec
}

// Collection holds nested items in order.
type Collection struct {
	Items []Item
}

func (Solid) Kind() Kind      { return KindSolid }
func (Path2D) Kind() Kind     { return KindPath2D }
func (Region2D) Kind() Kind   { return KindRegion2D }
func (Collection) Kind() Kind { return KindCollection }

func (Solid) item()      {}
func (Path2D) item()     {}
func (Region2D) item()   {}
func (Collection) item() {}

// Of wraps meshes as a flat collection.
func Of(meshes ...*geom.Mesh) Collection {
	items := make([]Item, len(meshes))
	for i, m := range meshes {
		items[i] = Solid{Mesh: m}
	}
	return Collection{Items: items}
}

// Func transforms one solid.
type Func func(m *geom.Mesh) (*geom.Mesh, error)

// Apply runs fn on every solid under it and rebuilds the tree around the
// results. 2D leaves fail with ErrUnsupported. Errors name the leaf by its
// index path, e.g. "[2][0]".
func Apply(it Item, fn Func) (Item, error) {
	return apply(it, fn, nil)
}

func apply(it Item, fn Func, path []int) (Item, error) {
	switch v := it.(type) {
	case Solid:
		out, err := fn(v.Mesh)
		if err != nil {
			return nil, fmt.Errorf("batch: %s: %w", formatPath(path), err)
		}
		return Solid{Mesh: out}, nil
	case *Solid:
		return apply(*v, fn, path)
	case Collection:
		items := make([]Item, len(v.Items))
		for i, child := range v.Items {
			out, err := apply(child, fn, append(path, i))
			if err != nil {
				return nil, err
			}
			items[i] = out
		}
		return Collection{Items: items}, nil
	case *Collection:
		return apply(*v, fn, path)
	case nil:
		return nil, fmt.Errorf("batch: %s: nil item: %w", formatPath(path), ErrUnsupported)
	default:
		return nil, fmt.Errorf("batch: %s: %s: %w", formatPath(path), it.Kind(), ErrUnsupported)
	}
}

func formatPath(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	var b strings.Builder
	for _, i := range path {
		fmt.Fprintf(&b, "[%d]", i)
	}
	return b.String()
}

// Expand applies a directional expansion to every solid under it.
func Expand(opts expand.Options, it Item) (Item, error) {
	return ExpandWith(expand.New(nil), opts, it)
}

// ExpandWith is Expand with a caller-supplied Expander.
func ExpandWith(e *expand.Expander, opts expand.Options, it Item) (Item, error) {
	return Apply(it, func(m *geom.Mesh) (*geom.Mesh, error) {
		return e.Expand(opts, m)
	})
}

// Solids flattens the tree into its meshes, depth first. Non-solid leaves
// are skipped.
func Solids(it Item) []*geom.Mesh {
	var out []*geom.Mesh
	walk(it, func(m *geom.Mesh) { out = append(out, m) })
	return out
}

func walk(it Item, visit func(*geom.Mesh)) {
	switch v := it.(type) {
	case Solid:
		visit(v.Mesh)
	case *Solid:
		visit(v.Mesh)
	case Collection:
		for _, child := range v.Items {
			walk(child, visit)
		}
	case *Collection:
		walk(*v, visit)
	}
}
