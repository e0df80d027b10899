package shape

import (
	"github.com/chazu/heartwood/pkg/brep"
	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
)

// BrepShape is the boundary-representation geometry variant. It takes
// ownership of the body passed to its constructor.
type BrepShape struct {
	body *brep.Body
}

var _ Shape = (*BrepShape)(nil)

// NewBrep wraps a body. The shape owns the body from here on; callers
// that need to keep using the body should pass a clone.
func NewBrep(body *brep.Body) *BrepShape {
	if body == nil {
		body = &brep.Body{}
	}
	return &BrepShape{body: body}
}

// NewBrepBox returns a box body shape with its minimum corner at the origin.
func NewBrepBox(x, y, z float64) *BrepShape {
	return &BrepShape{body: brep.Box(x, y, z)}
}

// Kind returns Brep.
func (s *BrepShape) Kind() Kind { return Brep }

// Transform applies a rigid transform to the body vertices.
func (s *BrepShape) Transform(t geometry.Transform) {
	s.body.Transform(t)
}

// Drawable triangulates the body faces.
func (s *BrepShape) Drawable() (*kernel.Mesh, error) {
	return s.body.Mesh(), nil
}

// Clone returns a deep copy sharing no storage with the receiver.
func (s *BrepShape) Clone() Shape {
	return &BrepShape{body: s.body.Clone()}
}

// Body returns the underlying body. Callers must treat it as read-only;
// mutations would bypass the engine's snapshot discipline.
func (s *BrepShape) Body() *brep.Body { return s.body }

// TrimPlane is the operand form of the brep backend's feature kind: an
// oriented cutting plane plus the trimming tolerance. Material on the side
// the normal points at is removed.
type TrimPlane struct {
	Plane     geometry.Plane `json:"plane"`
	Tolerance float64        `json:"tolerance,omitempty"`
}

var _ Shape = (*TrimPlane)(nil)

// NewTrimPlane builds a trim plane from an origin and normal. A zero
// tolerance falls back to the trim kernel default.
func NewTrimPlane(origin, normal geometry.Vec3, tolerance float64) *TrimPlane {
	return &TrimPlane{
		Plane:     geometry.Plane{Origin: origin, Normal: normal.Normalized()},
		Tolerance: tolerance,
	}
}

// Kind returns Brep: a trim plane is input geometry for brep features.
func (s *TrimPlane) Kind() Kind { return Brep }

// Transform moves the plane rigidly.
func (s *TrimPlane) Transform(t geometry.Transform) {
	s.Plane = t.ApplyPlane(s.Plane)
}

// Drawable returns an empty mesh; a cutting plane has no renderable solid.
func (s *TrimPlane) Drawable() (*kernel.Mesh, error) {
	return &kernel.Mesh{}, nil
}

// Clone returns an independent copy.
func (s *TrimPlane) Clone() Shape {
	c := *s
	return &c
}
