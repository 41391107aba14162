package geom

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis names one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis converts "x", "y" or "z" (any case) to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", s)
}

// Unit returns the positive unit vector along the axis.
func (a Axis) Unit() v3.Vec {
	switch a {
	case AxisX:
		return v3.Vec{X: 1}
	case AxisZ:
		return v3.Vec{Z: 1}
	default:
		return v3.Vec{Y: 1}
	}
}

// Others returns the two axes orthogonal to a, in ascending order.
func (a Axis) Others() (Axis, Axis) {
	switch a {
	case AxisX:
		return AxisY, AxisZ
	case AxisZ:
		return AxisX, AxisY
	default:
		return AxisX, AxisZ
	}
}

// Component returns the coordinate of v along a.
func Component(v v3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisZ:
		return v.Z
	default:
		return v.Y
	}
}

// WithComponent returns v with its coordinate along a replaced by c.
func WithComponent(v v3.Vec, a Axis, c float64) v3.Vec {
	switch a {
	case AxisX:
		v.X = c
	case AxisZ:
		v.Z = c
	default:
		v.Y = c
	}
	return v
}
