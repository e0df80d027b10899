package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/heartwood/pkg/brep"
	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/part"
	"github.com/chazu/heartwood/pkg/shape"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Heartwood Lisp source code before passing it
// to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: add-union -> add_union
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a shape.Shape so it can be returned from constructors
// and consumed by `defpart` and the feature verbs.
type sexpShape struct {
	s shape.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if _, ok := s.s.(*shape.TrimPlane); ok {
		return "(plane)"
	}
	return fmt.Sprintf("(shape %s)", s.s.Kind())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpPartRef wraps a *part.Part so later forms can address it.
type sexpPartRef struct {
	p *part.Part
}

func (r *sexpPartRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", r.p.Name())
}
func (r *sexpPartRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geometry.Vec3.
type sexpVec3 struct {
	vec geometry.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
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
				// Keyword at end with no value: treat as flag with nil.
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape.Shape from a sexpShape.
func toShape(s zygo.Sexp) (shape.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.s, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toPartRef extracts a *part.Part from a sexpPartRef.
func toPartRef(s zygo.Sexp) (*part.Part, error) {
	if ref, ok := s.(*sexpPartRef); ok {
		return ref.p, nil
	}
	return nil, fmt.Errorf("expected part reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geometry.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geometry.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// floats extracts exactly n positional float arguments.
func floats(name string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Heartwood DSL builtins into a zygomys
// environment. The builtins operate on the provided Model, populating it
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, m *Model, k kernel.Kernel, reg part.Registry) {

	// -----------------------------------------------------------------------
	// Shape constructors: (box 100 50 20), (cylinder 40 8), (sphere 12)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		dims, err := floats("box", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{s: shape.NewBox(k, dims[0], dims[1], dims[2])}, nil
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats("cylinder", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{s: shape.NewCylinder(k, v[0], v[1])}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats("sphere", args, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{s: shape.NewSphere(k, v[0])}, nil
	})

	// -----------------------------------------------------------------------
	// (brep-box 100 50 20) -- boundary-representation base shape, for parts
	// that take trim features instead of booleans.
	// -----------------------------------------------------------------------
	env.AddFunction("brep_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		dims, err := floats("brep-box", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{s: shape.NewBrepBox(dims[0], dims[1], dims[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: geometry.Vec3{X: v[0], Y: v[1], Z: v[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :origin (vec3 0 0 50) :normal (vec3 0 0 1) :tolerance 1e-6)
	// Material on the normal side of the plane is discarded by trim.
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var origin geometry.Vec3
		if v, ok := pa.kw["origin"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: origin: %w", err)
			}
			origin = vec
		}

		nv, ok := pa.kw["normal"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("plane requires a :normal argument")
		}
		normal, err := toVec3(nv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
		}
		if normal.Length() == 0 {
			return zygo.SexpNull, fmt.Errorf("plane: normal must be non-zero")
		}

		tol := brep.DefaultTolerance
		if v, ok := pa.kw["tolerance"]; ok {
			t, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: tolerance: %w", err)
			}
			tol = t
		}

		return &sexpShape{s: shape.NewTrimPlane(origin, normal, tol)}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (box 100 50 20))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a base shape")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		base, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: base: %w", err)
		}
		if _, ok := base.(*shape.TrimPlane); ok {
			return zygo.SexpNull, fmt.Errorf("defpart: a cutting plane cannot be a base shape")
		}

		p, err := part.New(partName, base, reg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}
		if err := m.Add(p); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}

		return &sexpPartRef{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		p := m.Lookup(partName)
		if p == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}

		return &sexpPartRef{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// Feature verbs: (add-union ref (sphere 10)), (add-difference ...),
	// (add-intersection ...), (add-trim ref (plane ...)).
	// Each applies the operation and records it in the part's history.
	// -----------------------------------------------------------------------
	addFeature := func(display, op string) {
		env.AddFunction(strings.ReplaceAll(display, "-", "_"),
			func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
				if len(args) != 2 {
					return zygo.SexpNull, fmt.Errorf("%s requires a part reference and a shape", display)
				}
				p, err := toPartRef(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: part: %w", display, err)
				}
				operand, err := toShape(args[1])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand: %w", display, err)
				}
				if _, err := p.AddFeature(operand, op); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
				}
				return &sexpPartRef{p: p}, nil
			})
	}
	addFeature("add-union", part.OpUnion)
	addFeature("add-difference", part.OpDifference)
	addFeature("add-intersection", part.OpIntersection)
	addFeature("add-trim", part.OpTrim)

	// -----------------------------------------------------------------------
	// (move ref (vec3 10 0 0)) and (rotate ref (vec3 0 0 90)), degrees.
	// -----------------------------------------------------------------------
	transformVerb := func(display string, mk func(geometry.Vec3) geometry.Transform) {
		env.AddFunction(display, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a part reference and a vec3", display)
			}
			p, err := toPartRef(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: part: %w", display, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: vector: %w", display, err)
			}
			p.Transform(mk(v))
			return &sexpPartRef{p: p}, nil
		})
	}
	transformVerb("move", geometry.Translation)
	transformVerb("rotate", geometry.Rotation)

	// -----------------------------------------------------------------------
	// (set-frame ref :origin (vec3 ...) :xaxis (vec3 ...) :yaxis (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("set_frame", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("set-frame requires a part reference")
		}
		p, err := toPartRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-frame: part: %w", err)
		}

		origin := geometry.Vec3{}
		xaxis := geometry.Vec3{X: 1}
		yaxis := geometry.Vec3{Y: 1}
		if v, ok := pa.kw["origin"]; ok {
			if origin, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-frame: origin: %w", err)
			}
		}
		if v, ok := pa.kw["xaxis"]; ok {
			if xaxis, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-frame: xaxis: %w", err)
			}
		}
		if v, ok := pa.kw["yaxis"]; ok {
			if yaxis, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-frame: yaxis: %w", err)
			}
		}

		p.SetFrame(geometry.NewFrame(origin, xaxis, yaxis))
		return &sexpPartRef{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (reset-features ref) discards the whole history; (replay ref) rebuilds
	// the current shape from the baseline.
	// -----------------------------------------------------------------------
	env.AddFunction("reset_features", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("reset-features requires a part reference")
		}
		p, err := toPartRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reset-features: part: %w", err)
		}
		if err := p.ClearFeatures(); err != nil {
			return zygo.SexpNull, fmt.Errorf("reset-features: %w", err)
		}
		return &sexpPartRef{p: p}, nil
	})

	env.AddFunction("replay", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("replay requires a part reference")
		}
		p, err := toPartRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("replay: part: %w", err)
		}
		if err := p.ReplayAllFeatures(); err != nil {
			return zygo.SexpNull, fmt.Errorf("replay: %w", err)
		}
		return &sexpPartRef{p: p}, nil
	})
}
