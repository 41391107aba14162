// Package expand grows a closed polygon mesh along one coordinate axis.
//
// Faces whose normals point within a tolerance of the chosen axis are
// extruded along their own normals. Thin connector solids close the gaps
// that opens against the neighbouring faces, and everything is merged with
// a Boolean kernel and cleaned up into a watertight mesh. A negative delta
// carves the aligned faces inward instead.
package expand

import (
	"fmt"
	"math"

	"github.com/chazu/solidgrow/internal/logging"
	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/kernel"
	"github.com/chazu/solidgrow/pkg/kernel/bsp"
	"github.com/chazu/solidgrow/pkg/tessellate"
	"github.com/chazu/solidgrow/pkg/topology"
	"github.com/sirupsen/logrus"
)

// Expander runs expansions with one Boolean kernel.
type Expander struct {
	kernel kernel.Kernel
	log    *logrus.Entry
}

// New returns an Expander using k. A nil k selects the BSP kernel.
func New(k kernel.Kernel) *Expander {
	if k == nil {
		k = bsp.New()
	}
	return &Expander{kernel: k, log: logging.Named("expand")}
}

// Directional expands m with the BSP kernel.
func Directional(opts Options, m *geom.Mesh) (*geom.Mesh, error) {
	return New(nil).Expand(opts, m)
}

// Compose folds parts left to right with op and retessellates the result.
func Compose(k kernel.Kernel, op kernel.Op, parts []*geom.Mesh) (*geom.Mesh, error) {
	acc, err := kernel.Fold(k, op, parts)
	if err != nil {
		return nil, fmt.Errorf("expand: compose: %w", err)
	}
	return tessellate.Retessellate(acc)
}

// Expand returns a new mesh; m is never modified. Invalid polygons fail
// before any work is done, and a result that is not watertight fails with
// topology.ErrNotWatertight instead of being returned. A zero delta, or one
// smaller than the quantization grid, or no enabled direction, returns a
// cleaned copy.
func (e *Expander) Expand(opts Options, m *geom.Mesh) (*geom.Mesh, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = geom.NewMesh()
	}
	if err := geom.Validate(m).Err(); err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	axis, ok := opts.Axis()
	if !ok {
		e.log.WithField("direction", opts.Direction).Warnf("unknown direction, using %s", axis)
	}
	q := geom.NewQuantizer(opts.Precision)
	if check := topology.Check(m, q); len(check.Warnings) > 0 {
		e.log.WithField("count", len(check.Warnings)).Warn("input is not a closed manifold, boundary edges get connectors")
	}

	if math.Abs(opts.Delta) < opts.Precision || len(opts.signs()) == 0 {
		e.log.WithField("delta", opts.Delta).Debug("nothing to grow")
		out, err := tessellate.Retessellate(m.Clone())
		if err != nil {
			return nil, err
		}
		out.Name = m.Name
		return out, nil
	}

	pieces, err := Plan(opts, m)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"axis":    axis,
		"delta":   opts.Delta,
		"slabs":   len(pieces.Slabs),
		"walls":   len(pieces.Walls),
		"pillars": len(pieces.Pillars),
	}).Debug("planned expansion")

	op, parts := kernel.OpUnion, pieces.Parts()
	if opts.Delta < 0 {
		op = kernel.OpDifference
		parts = append([]*geom.Mesh{pieces.Kept}, pieces.Slabs...)
	}
	out, err := Compose(e.kernel, op, parts)
	if err != nil {
		return nil, err
	}
	out.Name = m.Name
	if err := topology.CheckWatertight(out, q); err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	return out, nil
}
