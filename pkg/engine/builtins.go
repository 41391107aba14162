package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/solidgrow/pkg/batch"
	"github.com/chazu/solidgrow/pkg/expand"
	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/kernel"
	"github.com/chazu/solidgrow/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a mesh so it can be passed between builtins.
type sexpSolid struct {
	mesh *geom.Mesh
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	if s.mesh.Name != "" {
		return fmt.Sprintf("(solid %q %d faces)", s.mesh.Name, len(s.mesh.Polygons))
	}
	return fmt.Sprintf("(solid %d faces)", len(s.mesh.Polygons))
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float returns the keyword value, the positional argument at pos when the
// keyword is absent, or def.
func (a kwArgs) float(key string, pos int, def float64) (float64, error) {
	if v, ok := a.kw[key]; ok {
		return toFloat64(v)
	}
	if pos >= 0 && pos < len(a.positional) {
		return toFloat64(a.positional[pos])
	}
	return def, nil
}

func (a kwArgs) bool(key string, def bool) (bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	if v == zygo.SexpNull {
		return true, nil
	}
	return toBool(v)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a geom.Axis.
func toAxis(s zygo.Sexp) (geom.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	return geom.ParseAxis(name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// errNotGeometry marks values that are neither solids nor lists of them.
var errNotGeometry = errors.New("expected solid or list of solids")

// toItem converts a solid or a (nested) list of solids into a batch tree.
func toItem(s zygo.Sexp) (batch.Item, error) {
	if solid, ok := s.(*sexpSolid); ok {
		return batch.Solid{Mesh: solid.mesh}, nil
	}
	elems, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("%w, got %T", errNotGeometry, s)
	}
	items := make([]batch.Item, 0, len(elems))
	for _, el := range elems {
		it, err := toItem(el)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return batch.Collection{Items: items}, nil
}

// fromItem is the inverse of toItem; collections become lists.
func fromItem(it batch.Item) zygo.Sexp {
	switch v := it.(type) {
	case batch.Solid:
		return &sexpSolid{mesh: v.Mesh}
	case batch.Collection:
		elems := make([]zygo.Sexp, len(v.Items))
		for i, child := range v.Items {
			elems[i] = fromItem(child)
		}
		return zygo.MakeList(elems)
	}
	return zygo.SexpNull
}

// solidsOf flattens every argument into its meshes.
func solidsOf(args []zygo.Sexp) ([]*geom.Mesh, error) {
	var out []*geom.Mesh
	for i, a := range args {
		it, err := toItem(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, batch.Solids(it)...)
	}
	return out, nil
}

// mapSolids applies fn to every solid under the single positional argument
// and keeps the list structure.
func mapSolids(op string, pa kwArgs, fn batch.Func) (zygo.Sexp, error) {
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("%s requires a solid or list of solids", op)
	}
	it, err := toItem(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
	}
	out, err := batch.Apply(it, fn)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
	}
	return fromItem(out), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the geometry builtins into a zygomys
// environment. Source code must be preprocessed with preprocessSource()
// so that :keyword tokens become recognizable string literals.
func (e *Engine) registerBuiltins(env *zygo.Zlisp) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (cube 2) or (cube :size 2 :center true)
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := pa.float("size", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: size: %w", err)
		}
		if size <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: size must be positive, got %g", size)
		}
		center, err := pa.bool("center", false)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: center: %w", err)
		}
		corner := v3.Vec{}
		if center {
			corner = v3.Vec{X: -size / 2, Y: -size / 2, Z: -size / 2}
		}
		m := geom.Cuboid(corner, corner.Add(v3.Vec{X: size, Y: size, Z: size}))
		m.Name = "cube"
		return &sexpSolid{mesh: m}, nil
	})

	// -----------------------------------------------------------------------
	// (cuboid :min (vec3 0 0 0) :max (vec3 2 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		minV, maxV := pa.kw["min"], pa.kw["max"]
		if minV == nil || maxV == nil {
			return zygo.SexpNull, fmt.Errorf("cuboid requires :min and :max")
		}
		lo, err := toVec3(minV)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: min: %w", err)
		}
		hi, err := toVec3(maxV)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: max: %w", err)
		}
		if hi.X <= lo.X || hi.Y <= lo.Y || hi.Z <= lo.Z {
			return zygo.SexpNull, fmt.Errorf("cuboid: max must exceed min on every axis")
		}
		m := geom.Cuboid(lo, hi)
		m.Name = "cuboid"
		return &sexpSolid{mesh: m}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r, err := pa.float("radius", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		m, err := e.mesher.Sphere(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		m.Name = "sphere"
		return &sexpSolid{mesh: m}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, err := pa.float("height", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		r, err := pa.float("radius", 1, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		m, err := e.mesher.Cylinder(h, r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		m.Name = "cylinder"
		return &sexpSolid{mesh: m}, nil
	})

	// -----------------------------------------------------------------------
	// (translate solid (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and a vec3")
		}
		d, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		return mapSolids("translate", pa, func(m *geom.Mesh) (*geom.Mesh, error) {
			return m.Translate(d), nil
		})
	})

	// -----------------------------------------------------------------------
	// (rotate solid :axis :z :degrees 10)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		axis := geom.AxisZ
		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
			}
			axis = a
		}
		deg, err := pa.float("degrees", -1, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: degrees: %w", err)
		}
		rad := deg * math.Pi / 180
		var t sdf.M44
		switch axis {
		case geom.AxisX:
			t = sdf.RotateX(rad)
		case geom.AxisY:
			t = sdf.RotateY(rad)
		default:
			t = sdf.RotateZ(rad)
		}
		return mapSolids("rotate", pa, func(m *geom.Mesh) (*geom.Mesh, error) {
			return m.Transform(t), nil
		})
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// Arguments may be solids or lists of solids; lists are flattened.
	// -----------------------------------------------------------------------
	for _, op := range []kernel.Op{kernel.OpUnion, kernel.OpDifference, kernel.OpIntersection} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			parts, err := solidsOf(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			if len(parts) == 0 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least one solid", name)
			}
			m, err := expand.Compose(e.kernel, op, parts)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpSolid{mesh: m}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (retessellate solid)
	// -----------------------------------------------------------------------
	env.AddFunction("retessellate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return mapSolids("retessellate", parseArgs(args), tessellate.Retessellate)
	})

	// -----------------------------------------------------------------------
	// (volume solid) sums over lists.
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		parts, err := solidsOf(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		total := 0.0
		for _, m := range parts {
			total += m.Volume()
		}
		return &zygo.SexpFloat{Val: total}, nil
	})

	// -----------------------------------------------------------------------
	// (expand-directional solid :delta 1 :direction :y :tolerance 0.85
	//                     :up true :down false :footprint false)
	//
	// Registered as "expand_directional"; the preprocessor converts the
	// kebab-case name in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("expand_directional", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts, err := expandOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("expand-directional: %w", err)
		}
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("expand-directional requires a solid or list of solids")
		}
		it, err := toItem(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("expand-directional: %w", err)
		}
		out, err := batch.ExpandWith(e.expander, opts, it)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("expand-directional: %w", err)
		}
		return fromItem(out), nil
	})
}

// expandOptions reads expansion keywords on top of the defaults.
func expandOptions(pa kwArgs) (expand.Options, error) {
	o := expand.DefaultOptions()
	var err error
	if o.Delta, err = pa.float("delta", -1, o.Delta); err != nil {
		return o, fmt.Errorf("delta: %w", err)
	}
	if v, ok := pa.kw["direction"]; ok {
		if o.Direction, err = toKeywordString(v); err != nil {
			return o, fmt.Errorf("direction: %w", err)
		}
	}
	if o.Tolerance, err = pa.float("tolerance", -1, o.Tolerance); err != nil {
		return o, fmt.Errorf("tolerance: %w", err)
	}
	if o.Epsilon, err = pa.float("epsilon", -1, o.Epsilon); err != nil {
		return o, fmt.Errorf("epsilon: %w", err)
	}
	if o.ExpandUp, err = pa.bool("up", o.ExpandUp); err != nil {
		return o, fmt.Errorf("up: %w", err)
	}
	if o.ExpandDown, err = pa.bool("down", o.ExpandDown); err != nil {
		return o, fmt.Errorf("down: %w", err)
	}
	if o.Footprint, err = pa.bool("footprint", o.Footprint); err != nil {
		return o, fmt.Errorf("footprint: %w", err)
	}
	return o, o.Validate()
}
