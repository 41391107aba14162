package kernel

import (
	"errors"
	"testing"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Buffers helper method tests ---

func TestBuffersVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Buffers{Vertices: tt.vertices}
			if got := b.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuffersIsEmpty(t *testing.T) {
	t.Run("empty buffers", func(t *testing.T) {
		b := &Buffers{}
		if !b.IsEmpty() {
			t.Error("IsEmpty() = false for empty buffers, want true")
		}
	})
	t.Run("non-empty buffers", func(t *testing.T) {
		b := &Buffers{Vertices: []float32{1, 2, 3}}
		if b.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty buffers, want false")
		}
	})
}

func TestToBuffersCube(t *testing.T) {
	m := geom.Cuboid(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	m.Name = "cube"
	b := ToBuffers(m)
	if got := b.TriangleCount(); got != 12 {
		t.Fatalf("TriangleCount() = %d, want 12", got)
	}
	if got := b.VertexCount(); got != 36 {
		t.Errorf("VertexCount() = %d, want 36", got)
	}
	if len(b.Normals) != len(b.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(b.Normals), len(b.Vertices))
	}
	if b.PartName != "cube" {
		t.Errorf("PartName = %q, want %q", b.PartName, "cube")
	}
	if got := len(b.Positions()); got != 36 {
		t.Errorf("len(Positions()) = %d, want 36", got)
	}
	if got := len(b.NormalTriples()); got != 36 {
		t.Errorf("len(NormalTriples()) = %d, want 36", got)
	}
}

func TestToBuffersNil(t *testing.T) {
	if !ToBuffers(nil).IsEmpty() {
		t.Error("ToBuffers(nil) should be empty")
	}
}

// --- Fold with a recording stub kernel ---

// stubKernel records every call and concatenates polygons, which is enough
// to observe fold order without real CSG.
type stubKernel struct {
	calls  []string
	failAt int
}

func (k *stubKernel) do(name string, a, b *geom.Mesh) (*geom.Mesh, error) {
	k.calls = append(k.calls, name+":"+a.Name+"+"+b.Name)
	if k.failAt > 0 && len(k.calls) == k.failAt {
		return nil, ErrBoolean
	}
	out := &geom.Mesh{Name: "(" + a.Name + b.Name + ")"}
	out.Polygons = append(append(out.Polygons, a.Polygons...), b.Polygons...)
	return out, nil
}

func (k *stubKernel) Union(a, b *geom.Mesh) (*geom.Mesh, error)        { return k.do("union", a, b) }
func (k *stubKernel) Difference(a, b *geom.Mesh) (*geom.Mesh, error)   { return k.do("difference", a, b) }
func (k *stubKernel) Intersection(a, b *geom.Mesh) (*geom.Mesh, error) { return k.do("intersection", a, b) }

// Compile-time check that the stub implements the interface.
var _ Kernel = (*stubKernel)(nil)

func named(name string) *geom.Mesh {
	return &geom.Mesh{Name: name}
}

func TestFoldIsLeftToRight(t *testing.T) {
	k := &stubKernel{}
	got, err := Fold(k, OpUnion, []*geom.Mesh{named("a"), named("b"), named("c")})
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if got.Name != "((ab)c)" {
		t.Errorf("Fold() name = %q, want %q", got.Name, "((ab)c)")
	}
	want := []string{"union:a+b", "union:(ab)+c"}
	if len(k.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", k.calls, want)
	}
	for i := range want {
		if k.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, k.calls[i], want[i])
		}
	}
}

func TestFoldEdgeCases(t *testing.T) {
	k := &stubKernel{}
	empty, err := Fold(k, OpUnion, nil)
	if err != nil || !empty.IsEmpty() {
		t.Errorf("Fold(nil) = %v, %v; want empty mesh", empty, err)
	}
	single, err := Fold(k, OpDifference, []*geom.Mesh{named("only")})
	if err != nil || single.Name != "only" {
		t.Errorf("Fold(single) = %v, %v; want clone of operand", single, err)
	}
	if len(k.calls) != 0 {
		t.Errorf("kernel called %d times, want 0", len(k.calls))
	}
}

func TestFoldAbortsOnError(t *testing.T) {
	k := &stubKernel{failAt: 2}
	got, err := Fold(k, OpIntersection, []*geom.Mesh{named("a"), named("b"), named("c"), named("d")})
	if !errors.Is(err, ErrBoolean) {
		t.Fatalf("Fold() error = %v, want ErrBoolean", err)
	}
	if got != nil {
		t.Errorf("Fold() returned partial result %q", got.Name)
	}
	if len(k.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(k.calls))
	}
}

func TestApplyUnknownOp(t *testing.T) {
	if _, err := Apply(&stubKernel{}, Op(42), named("a"), named("b")); !errors.Is(err, ErrBoolean) {
		t.Errorf("Apply(Op(42)) error = %v, want ErrBoolean", err)
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpUnion, "union"},
		{OpDifference, "difference"},
		{OpIntersection, "intersection"},
		{Op(9), "Op(9)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op.String() = %q, want %q", got, tt.want)
		}
	}
}
