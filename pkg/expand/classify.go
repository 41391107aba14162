package expand

import (
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Alignment is a face's relation to the growth axis.
type Alignment int

const (
	AlignedNegative Alignment = -1 // normal points along -axis
	NotAligned      Alignment = 0
	AlignedPositive Alignment = 1 // normal points along +axis
)

func (a Alignment) String() string {
	switch a {
	case AlignedNegative:
		return "aligned(-)"
	case NotAligned:
		return "not-aligned"
	case AlignedPositive:
		return "aligned(+)"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// Sign returns +1, -1 or 0.
func (a Alignment) Sign() float64 {
	return float64(a)
}

// Classify compares a unit normal with the unit direction dir. The
// comparison is strict, so a dot product exactly at ±tol is NotAligned.
func Classify(normal, dir v3.Vec, tol float64) Alignment {
	d := normal.Dot(dir)
	switch {
	case d > tol:
		return AlignedPositive
	case d < -tol:
		return AlignedNegative
	}
	return NotAligned
}

// ClassifyPolygon classifies p by its Newell normal.
func ClassifyPolygon(p geom.Polygon, dir v3.Vec, tol float64) (Alignment, error) {
	pl, err := geom.PlaneOf(p)
	if err != nil {
		return NotAligned, err
	}
	return Classify(pl.Normal, dir, tol), nil
}
