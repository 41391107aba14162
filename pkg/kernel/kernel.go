// Package kernel defines the Boolean solid-modeling interface. Backends
// (the pure-Go BSP kernel, the cgo manifold binding) combine closed polygon
// meshes behind this interface so the rest of the system never depends on
// a particular CSG implementation.
package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
)

// ErrBoolean marks a failed Boolean operation. Backends wrap it.
var ErrBoolean = errors.New("kernel: boolean operation failed")

// Kernel combines closed, outward-facing meshes. Implementations must not
// mutate their operands.
type Kernel interface {
	Union(a, b *geom.Mesh) (*geom.Mesh, error)
	Difference(a, b *geom.Mesh) (*geom.Mesh, error)
	Intersection(a, b *geom.Mesh) (*geom.Mesh, error)
}

// Op selects a Boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Apply runs op on a and b.
func Apply(k Kernel, op Op, a, b *geom.Mesh) (*geom.Mesh, error) {
	switch op {
	case OpUnion:
		return k.Union(a, b)
	case OpDifference:
		return k.Difference(a, b)
	case OpIntersection:
		return k.Intersection(a, b)
	}
	return nil, fmt.Errorf("%w: unknown op %v", ErrBoolean, op)
}

// Fold reduces parts left to right: ((p0 op p1) op p2) ... The first error
// aborts the fold and no partial result is returned.
func Fold(k Kernel, op Op, parts []*geom.Mesh) (*geom.Mesh, error) {
	if len(parts) == 0 {
		return &geom.Mesh{}, nil
	}
	acc := parts[0].Clone()
	for i, p := range parts[1:] {
		next, err := Apply(k, op, acc, p)
		if err != nil {
			return nil, fmt.Errorf("kernel: %s of part %d: %w", op, i+1, err)
		}
		acc = next
	}
	return acc, nil
}
