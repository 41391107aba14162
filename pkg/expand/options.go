package expand

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/solidgrow/pkg/geom"
)

// ErrInvalidOptions is returned when Options cannot be used.
var ErrInvalidOptions = errors.New("expand: invalid options")

// Options configures a directional expansion.
type Options struct {
	// Delta is the signed growth distance. Negative values carve.
	Delta float64
	// Direction names the growth axis: "x", "y" or "z". Anything else
	// falls back to "y" with a logged warning.
	Direction string
	// Tolerance is the dot-product threshold in [0,1] above which a face
	// normal counts as aligned with the axis. See AngularTolerance.
	Tolerance float64
	// ExpandUp grows faces facing +Direction.
	ExpandUp bool
	// ExpandDown grows faces facing -Direction.
	ExpandDown bool
	// Footprint restricts connectors to the input's bounding rectangle on
	// the two other axes.
	Footprint bool
	// Epsilon scales the thickness of connector walls and pillars.
	Epsilon float64
	// Precision is the vertex quantization grid used to match edges.
	Precision float64
}

// DefaultOptions returns one-sided growth by 1 along +y.
func DefaultOptions() Options {
	return Options{
		Delta:      1,
		Direction:  "y",
		Tolerance:  0.85,
		ExpandUp:   true,
		ExpandDown: false,
		Footprint:  false,
		Epsilon:    1e-3,
		Precision:  geom.DefaultPrecision,
	}
}

// Validate checks the numeric options. An unknown Direction is not an
// error.
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Delta) || math.IsInf(o.Delta, 0):
		return fmt.Errorf("%w: delta %v is not finite", ErrInvalidOptions, o.Delta)
	case math.IsNaN(o.Tolerance) || o.Tolerance < 0 || o.Tolerance > 1:
		return fmt.Errorf("%w: tolerance %v outside [0,1]", ErrInvalidOptions, o.Tolerance)
	case !(o.Epsilon > 0) || math.IsInf(o.Epsilon, 0):
		return fmt.Errorf("%w: epsilon %v must be positive", ErrInvalidOptions, o.Epsilon)
	case !(o.Precision > 0) || math.IsInf(o.Precision, 0):
		return fmt.Errorf("%w: precision %v must be positive", ErrInvalidOptions, o.Precision)
	}
	return nil
}

// Axis resolves Direction. ok is false when the fallback axis was used.
func (o Options) Axis() (axis geom.Axis, ok bool) {
	a, err := geom.ParseAxis(o.Direction)
	if err != nil {
		return geom.AxisY, false
	}
	return a, true
}

// AngularTolerance returns the largest angle, in degrees, between a face
// normal and the axis for which the face still counts as aligned.
func (o Options) AngularTolerance() float64 {
	return math.Acos(o.Tolerance) * 180 / math.Pi
}

// Grows reports whether faces classified as a are extruded.
func (o Options) Grows(a Alignment) bool {
	return (a == AlignedPositive && o.ExpandUp) || (a == AlignedNegative && o.ExpandDown)
}

// signs lists the enabled growth directions, + first.
func (o Options) signs() []Alignment {
	var out []Alignment
	if o.ExpandUp {
		out = append(out, AlignedPositive)
	}
	if o.ExpandDown {
		out = append(out, AlignedNegative)
	}
	return out
}

// thickness is the cross-section size of connectors.
func (o Options) thickness() float64 {
	return o.Epsilon * math.Max(math.Abs(o.Delta), 1)
}
