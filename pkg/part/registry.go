package part

import (
	"sort"

	"github.com/chazu/heartwood/pkg/brep"
	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/shape"
)

// Operation names for the mesh feature kind.
const (
	OpUnion        = "union"
	OpDifference   = "difference"
	OpIntersection = "intersection"
)

// OpTrim is the single operation of the brep feature kind.
const OpTrim = "trim"

// MeshOp combines the part's current mesh shape with an operand and
// returns the result. A nil result with a nil error means the operation
// produced no usable geometry.
type MeshOp func(current, operand *shape.MeshShape) (*shape.MeshShape, error)

// TrimOp cuts a body with a plane and returns the surviving pieces.
// An empty slice is a valid kernel answer meaning nothing survived.
type TrimOp func(body *brep.Body, plane geometry.Plane, tolerance float64) ([]*brep.Body, error)

// Registry maps operation names to kernels, per feature kind. It is passed
// into part construction so that kernels are swappable without global
// state; tests install stub operations the same way callers install real
// ones.
type Registry struct {
	Mesh map[string]MeshOp
	Brep map[string]TrimOp
}

// DefaultRegistry wires the standard operations: mesh booleans through the
// given solid kernel, trim through the brep trimming kernel.
func DefaultRegistry(k kernel.Kernel) Registry {
	return Registry{
		Mesh: map[string]MeshOp{
			OpUnion: func(a, b *shape.MeshShape) (*shape.MeshShape, error) {
				return shape.Union(a, b), nil
			},
			OpDifference: func(a, b *shape.MeshShape) (*shape.MeshShape, error) {
				return shape.Difference(a, b), nil
			},
			OpIntersection: func(a, b *shape.MeshShape) (*shape.MeshShape, error) {
				return shape.Intersection(a, b), nil
			},
		},
		Brep: map[string]TrimOp{
			OpTrim: brep.Trim,
		},
	}
}

// meshOps returns the registered mesh operation names, sorted, for error
// messages.
func (r Registry) meshOps() []string {
	names := make([]string, 0, len(r.Mesh))
	for name := range r.Mesh {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// brepOps returns the registered brep operation names, sorted.
func (r Registry) brepOps() []string {
	names := make([]string, 0, len(r.Brep))
	for name := range r.Brep {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
