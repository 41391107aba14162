//go:build manifold

package manifold

import (
	"math"
	"testing"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func box(x0, y0, z0, x1, y1, z1 float64) *geom.Mesh {
	return geom.Cuboid(v3.Vec{X: x0, Y: y0, Z: z0}, v3.Vec{X: x1, Y: y1, Z: z1})
}

func TestBooleanVolumes(t *testing.T) {
	k := mustNew(t)
	a := box(0, 0, 0, 10, 10, 10)
	b := box(5, 5, 5, 15, 15, 15)

	tests := []struct {
		name string
		op   kernel.Op
		want float64
	}{
		{"union", kernel.OpUnion, 2000 - 125},
		{"difference", kernel.OpDifference, 1000 - 125},
		{"intersection", kernel.OpIntersection, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := kernel.Apply(k, tt.op, a, b)
			if err != nil {
				t.Fatalf("%s error = %v", tt.op, err)
			}
			if v := got.Volume(); math.Abs(v-tt.want) > 1e-3 {
				t.Errorf("%s volume = %f, want %f", tt.op, v, tt.want)
			}
		})
	}
}

func TestDifferenceBounds(t *testing.T) {
	k := mustNew(t)
	result, err := k.Difference(box(-5, -5, -5, 5, 5, 5), box(-2, -2, -10, 2, 2, 10))
	if err != nil {
		t.Fatalf("Difference() error = %v", err)
	}

	// The hole is contained within the box footprint, so bounds are unchanged.
	bb := result.Bounds()
	if math.Abs(bb.Min.X+5) > 1e-6 || math.Abs(bb.Max.Z-5) > 1e-6 {
		t.Errorf("Difference bounds = %v, want [-5,5]^3", bb)
	}
}

func TestOpenOperandRejected(t *testing.T) {
	k := mustNew(t)
	open := box(0, 0, 0, 1, 1, 1)
	open.Polygons = open.Polygons[1:]
	if _, err := k.Union(open, box(2, 2, 2, 3, 3, 3)); err == nil {
		t.Error("Union() with an open operand error = nil, want error")
	}
}
