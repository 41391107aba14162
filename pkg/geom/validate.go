package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry wraps blocking validation findings.
var ErrInvalidGeometry = errors.New("geom: invalid geometry")

// planarityTolerance is the largest vertex distance from a polygon's plane
// accepted without a warning.
const planarityTolerance = 1e-6

// ValidationSeverity indicates whether a finding blocks processing or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks processing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single finding. Polygon is -1 for mesh-level
// findings.
type ValidationError struct {
	Polygon  int
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Polygon < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] polygon %d: %s", e.Severity, e.Polygon, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Err returns nil when there are no errors, otherwise an error wrapping
// ErrInvalidGeometry that names the first finding.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	if len(r.Errors) == 1 {
		return fmt.Errorf("%w: %s", ErrInvalidGeometry, r.Errors[0].Error())
	}
	return fmt.Errorf("%w: %s (and %d more)", ErrInvalidGeometry, r.Errors[0].Error(), len(r.Errors)-1)
}

// Merge appends other's findings.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Validate checks every polygon of m for structural soundness. It is
// read-only.
func Validate(m *Mesh) ValidationResult {
	var r ValidationResult
	if m == nil {
		return r
	}
	for i, p := range m.Polygons {
		errs, warns := validatePolygon(i, p)
		r.Errors = append(r.Errors, errs...)
		r.Warnings = append(r.Warnings, warns...)
	}
	return r
}

func validatePolygon(i int, p Polygon) (errs, warns []ValidationError) {
	fail := func(format string, args ...any) {
		errs = append(errs, ValidationError{Polygon: i, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	if len(p.Vertices) < 3 {
		fail("has %d vertices, need at least 3", len(p.Vertices))
		return errs, nil
	}
	if !p.Finite() {
		fail("has non-finite coordinates")
		return errs, nil
	}
	for j, v := range p.Vertices {
		next := p.Vertices[(j+1)%len(p.Vertices)]
		if v.Sub(next).Length() == 0 {
			fail("repeats vertex %d consecutively", j)
			return errs, nil
		}
	}
	pl, err := PlaneOf(p)
	if err != nil {
		fail("has zero area")
		return errs, nil
	}
	var worst float64
	for _, v := range p.Vertices {
		worst = math.Max(worst, math.Abs(pl.Distance(v)))
	}
	if worst > planarityTolerance*math.Max(1, p.Area()) {
		warns = append(warns, ValidationError{
			Polygon:  i,
			Message:  fmt.Sprintf("is non-planar by %g", worst),
			Severity: SeverityWarning,
		})
	}
	return errs, warns
}
