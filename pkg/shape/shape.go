// Package shape defines the polymorphic geometry contract of the part
// engine. A Shape is a concrete geometric representation — mesh-backed or
// boundary-representation-backed — that knows how to transform itself,
// produce a drawable mesh, and deep-copy itself. The kind tag is what the
// engine's type-coherence check compares; the set of kinds is closed.
package shape

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/brep"
	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Kind identifies which feature family a shape belongs to.
type Kind int

const (
	Mesh Kind = iota // polyhedral, boolean features
	Brep             // boundary representation, trim features
)

func (k Kind) String() string {
	switch k {
	case Mesh:
		return "mesh"
	case Brep:
		return "brep"
	default:
		return "unknown"
	}
}

// Shape is the capability set shared by all geometry backends.
type Shape interface {
	// Kind returns the feature family this shape accepts.
	Kind() Kind
	// Transform applies a rigid transform in place.
	Transform(t geometry.Transform)
	// Drawable returns the triangle-mesh representation for renderers
	// and exporters. It never mutates the shape.
	Drawable() (*kernel.Mesh, error)
	// Clone returns a deep, independent copy. Mutating the clone must
	// never be observable through the original and vice versa.
	Clone() Shape
}

// Record is the serialized form of a Shape. The kind discriminator selects
// which payload field is populated.
type Record struct {
	Kind      string          `json:"kind"`
	Def       *Def            `json:"def,omitempty"`       // mesh shapes
	Body      *brep.Body      `json:"body,omitempty"`      // brep shapes
	Plane     *geometry.Plane `json:"plane,omitempty"`     // trim planes
	Tolerance float64         `json:"tolerance,omitempty"` // trim planes
}

// Encode externalizes a shape into its Record form.
func Encode(s Shape) (*Record, error) {
	switch v := s.(type) {
	case *MeshShape:
		return &Record{Kind: "mesh", Def: v.Def()}, nil
	case *BrepShape:
		return &Record{Kind: "brep", Body: v.body.Clone()}, nil
	case *TrimPlane:
		pl := v.Plane
		return &Record{Kind: "plane", Plane: &pl, Tolerance: v.Tolerance}, nil
	}
	return nil, fmt.Errorf("encode: unsupported shape type %T", s)
}

// Decode rebuilds a shape from its Record form. Mesh shapes are
// reconstructed by re-executing their constructive definition against the
// given kernel; nothing cached is restored.
func Decode(r *Record, k kernel.Kernel) (Shape, error) {
	switch r.Kind {
	case "mesh":
		if r.Def == nil {
			return nil, fmt.Errorf("decode: mesh record without def")
		}
		return FromDef(k, r.Def)
	case "brep":
		if r.Body == nil {
			return nil, fmt.Errorf("decode: brep record without body")
		}
		return NewBrep(r.Body.Clone()), nil
	case "plane":
		if r.Plane == nil {
			return nil, fmt.Errorf("decode: plane record without plane")
		}
		return &TrimPlane{Plane: *r.Plane, Tolerance: r.Tolerance}, nil
	}
	return nil, fmt.Errorf("decode: unknown shape kind %q", r.Kind)
}
