package sdfx

import (
	"math"
	"testing"
)

func TestSphere(t *testing.T) {
	m := New()
	mesh, err := m.Sphere(10)
	if err != nil {
		t.Fatalf("Sphere() error = %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	want := 4.0 / 3.0 * math.Pi * 1000
	if got := mesh.Volume(); math.Abs(got-want)/want > 0.05 {
		t.Errorf("Volume() = %f, want within 5%% of %f", got, want)
	}
	bb := mesh.Bounds()
	if bb.Max.X > 10.5 || bb.Min.X < -10.5 {
		t.Errorf("bounds x = [%f, %f], want within radius", bb.Min.X, bb.Max.X)
	}
}

func TestCylinder(t *testing.T) {
	m := New()
	mesh, err := m.Cylinder(50, 10)
	if err != nil {
		t.Fatalf("Cylinder() error = %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	bb := mesh.Bounds()
	if math.Abs(bb.Max.Z-25) > 1 || math.Abs(bb.Min.Z+25) > 1 {
		t.Errorf("bounds z = [%f, %f], want about [-25, 25]", bb.Min.Z, bb.Max.Z)
	}
	if mesh.Volume() <= 0 {
		t.Errorf("Volume() = %f, want positive (outward facing)", mesh.Volume())
	}
}

func TestRoundedBoxMinCornerAtOrigin(t *testing.T) {
	m := &Mesher{Cells: 32}
	mesh, err := m.RoundedBox(100, 50, 25, 2)
	if err != nil {
		t.Fatalf("RoundedBox() error = %v", err)
	}
	bb := mesh.Bounds()
	if math.Abs(bb.Min.X) > 2 || math.Abs(bb.Min.Y) > 2 || math.Abs(bb.Min.Z) > 2 {
		t.Errorf("RoundedBox min = %v, want near origin", bb.Min)
	}
	if math.Abs(bb.Max.X-100) > 2 {
		t.Errorf("RoundedBox max x = %f, want near 100", bb.Max.X)
	}
}

func TestInvalidPrimitive(t *testing.T) {
	m := New()
	if _, err := m.Sphere(-1); err == nil {
		t.Error("Sphere(-1) error = nil, want error")
	}
	if _, err := m.Cylinder(10, -2); err == nil {
		t.Error("Cylinder(10, -2) error = nil, want error")
	}
}
