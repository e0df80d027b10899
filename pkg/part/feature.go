package part

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/shape"
)

// Feature is one recorded operation on a part: the operand geometry, the
// operation name, and — once applied — the snapshot of the shape the part
// had immediately before, which is what an undo restores. Features are
// created only by Part.AddFeature and die when removed from their part's
// feature list.
type Feature interface {
	// Operation returns the registered operation name.
	Operation() string
	// Input returns the operand geometry this feature applies.
	Input() shape.Shape
	// Previous returns the snapshot captured by the most recent Apply,
	// or nil if the feature has not been applied.
	Previous() shape.Shape
	// Apply runs the operation against the part's current shape,
	// snapshotting first. It is called on every replay, not just once.
	Apply(p *Part) error
	// Restore rewinds the owner part's current shape to the snapshot.
	Restore() error

	// transform propagates a part transform to the operand and to the
	// captured snapshot so both replays and rewinds stay consistent
	// with the new placement.
	transform(t geometry.Transform)
}

// baseFeature carries the state shared by both feature kinds.
type baseFeature struct {
	op       string
	input    shape.Shape
	owner    *Part       // back-reference, set by Apply; never owning
	previous shape.Shape // exclusively owned snapshot
}

func (f *baseFeature) Operation() string     { return f.op }
func (f *baseFeature) Input() shape.Shape    { return f.input }
func (f *baseFeature) Previous() shape.Shape { return f.previous }

func (f *baseFeature) transform(t geometry.Transform) {
	f.input.Transform(t)
	if f.previous != nil {
		f.previous.Transform(t)
	}
}

// Restore hands the snapshot back to the owner part. The snapshot's
// ownership transfers to the part; the feature must be re-applied before
// it can restore again.
func (f *baseFeature) Restore() error {
	if f.owner == nil {
		return ErrUnassociated
	}
	f.owner.current = f.previous
	return nil
}

// commit installs an apply result: snapshot, back-reference, and the
// part's new current shape, in one step so a failed kernel call leaves
// nothing half-written.
func (f *baseFeature) commit(p *Part, snapshot, result shape.Shape) {
	f.owner = p
	f.previous = snapshot
	p.current = result
}

// meshFeature integrates an operand mesh through a boolean operation.
type meshFeature struct {
	baseFeature
	fn MeshOp
}

func (f *meshFeature) Apply(p *Part) error {
	cur, ok := p.current.(*shape.MeshShape)
	if !ok {
		return fmt.Errorf("%w: %s feature on %s geometry", ErrTypeMismatch, shape.Mesh, p.current.Kind())
	}
	operand := f.input.(*shape.MeshShape)

	snapshot := p.current.Clone()
	result, err := f.fn(cur, operand)
	if err != nil {
		return fmt.Errorf("apply %s: %w", f.op, err)
	}
	if result == nil {
		return fmt.Errorf("apply %s: %w", f.op, ErrNoResult)
	}
	f.commit(p, snapshot, result)
	return nil
}

// brepFeature trims the part body with a cutting plane.
type brepFeature struct {
	baseFeature
	fn TrimOp
}

func (f *brepFeature) Apply(p *Part) error {
	cur, ok := p.current.(*shape.BrepShape)
	if !ok {
		return fmt.Errorf("%w: %s feature on %s geometry", ErrTypeMismatch, shape.Brep, p.current.Kind())
	}
	plane := f.input.(*shape.TrimPlane)

	snapshot := p.current.Clone()
	results, err := f.fn(cur.Body(), plane.Plane, plane.Tolerance)
	if err != nil {
		return fmt.Errorf("apply %s: %w", f.op, err)
	}
	// The kernel returns candidate pieces; take the first non-empty one.
	var result *shape.BrepShape
	for _, body := range results {
		if body != nil && !body.IsEmpty() {
			result = shape.NewBrep(body)
			break
		}
	}
	if result == nil {
		return fmt.Errorf("apply %s: %w", f.op, ErrNoResult)
	}
	// Re-orient the trimmed body into the part's local frame.
	if reorient := geometry.BetweenFrames(geometry.WorldXY(), p.Frame()); !reorient.IsIdentity() {
		result.Transform(reorient)
	}
	f.commit(p, snapshot, result)
	return nil
}

// newFeature resolves the operation for the part's current feature kind
// and validates the operand. Both checks run before any geometry is
// touched.
func newFeature(p *Part, input shape.Shape, op string) (Feature, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input geometry", ErrTypeMismatch)
	}
	switch p.current.Kind() {
	case shape.Mesh:
		fn, ok := p.registry.Mesh[op]
		if !ok {
			return nil, fmt.Errorf("%w: %q, expected one of %v", ErrUnknownOperation, op, p.registry.meshOps())
		}
		if _, ok := input.(*shape.MeshShape); !ok {
			return nil, fmt.Errorf("%w: %s geometry accepts mesh operands, got %T", ErrTypeMismatch, p.current.Kind(), input)
		}
		return &meshFeature{baseFeature: baseFeature{op: op, input: input}, fn: fn}, nil
	case shape.Brep:
		fn, ok := p.registry.Brep[op]
		if !ok {
			return nil, fmt.Errorf("%w: %q, expected one of %v", ErrUnknownOperation, op, p.registry.brepOps())
		}
		if _, ok := input.(*shape.TrimPlane); !ok {
			return nil, fmt.Errorf("%w: %s geometry accepts trim planes, got %T", ErrTypeMismatch, p.current.Kind(), input)
		}
		return &brepFeature{baseFeature: baseFeature{op: op, input: input}, fn: fn}, nil
	}
	return nil, fmt.Errorf("%w: unsupported geometry kind %v", ErrTypeMismatch, p.current.Kind())
}
