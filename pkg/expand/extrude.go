package expand

import (
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
)

// Extrude sweeps p along its own unit normal by d and returns the closed,
// outward-facing slab. A negative d sweeps into the solid behind p. The
// slab's volume is Area(p)·|d|.
func Extrude(p geom.Polygon, d float64) (*geom.Mesh, error) {
	if d == 0 {
		return nil, fmt.Errorf("expand: extrude by zero: %w", geom.ErrDegenerate)
	}
	pl, err := geom.PlaneOf(p)
	if err != nil {
		return nil, err
	}
	slab := geom.Sweep(p, pl.Normal.MulScalar(d))
	if d < 0 {
		slab = slab.Flip()
	}
	return slab, nil
}
