package shape

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Def is the constructive record of a mesh shape: a small CSG tree of
// primitive, transform, and boolean nodes. Persistence stores Defs instead
// of kernel solids so that loading a design re-executes every kernel
// operation rather than restoring cached geometry.
type Def struct {
	Op       string    `json:"op"`
	Args     []float64 `json:"args,omitempty"`
	Children []*Def    `json:"children,omitempty"`
}

// Clone returns a deep copy of the tree.
func (d *Def) Clone() *Def {
	if d == nil {
		return nil
	}
	c := &Def{Op: d.Op}
	if len(d.Args) > 0 {
		c.Args = make([]float64, len(d.Args))
		copy(c.Args, d.Args)
	}
	for _, ch := range d.Children {
		c.Children = append(c.Children, ch.Clone())
	}
	return c
}

// build interprets the tree against a kernel.
func (d *Def) build(k kernel.Kernel) (kernel.Solid, error) {
	child := func(i int) (kernel.Solid, error) {
		if len(d.Children) <= i {
			return nil, fmt.Errorf("def %q: missing child %d", d.Op, i)
		}
		return d.Children[i].build(k)
	}
	args := func(n int) error {
		if len(d.Args) != n {
			return fmt.Errorf("def %q: expected %d args, got %d", d.Op, n, len(d.Args))
		}
		return nil
	}

	switch d.Op {
	case "box":
		if err := args(3); err != nil {
			return nil, err
		}
		return k.Box(d.Args[0], d.Args[1], d.Args[2]), nil
	case "cylinder":
		if err := args(2); err != nil {
			return nil, err
		}
		return k.Cylinder(d.Args[0], d.Args[1]), nil
	case "sphere":
		if err := args(1); err != nil {
			return nil, err
		}
		return k.Sphere(d.Args[0]), nil
	case "translate":
		if err := args(3); err != nil {
			return nil, err
		}
		s, err := child(0)
		if err != nil {
			return nil, err
		}
		return k.Translate(s, d.Args[0], d.Args[1], d.Args[2]), nil
	case "rotate":
		if err := args(3); err != nil {
			return nil, err
		}
		s, err := child(0)
		if err != nil {
			return nil, err
		}
		return k.Rotate(s, d.Args[0], d.Args[1], d.Args[2]), nil
	case "union", "difference", "intersection":
		a, err := child(0)
		if err != nil {
			return nil, err
		}
		b, err := child(1)
		if err != nil {
			return nil, err
		}
		switch d.Op {
		case "union":
			return k.Union(a, b), nil
		case "difference":
			return k.Difference(a, b), nil
		default:
			return k.Intersection(a, b), nil
		}
	}
	return nil, fmt.Errorf("def: unknown op %q", d.Op)
}

// MeshShape is the mesh-backed geometry variant. It pairs an immutable
// kernel solid with the constructive Def that produced it. Operations
// always produce new MeshShapes; the solid handle is never mutated.
type MeshShape struct {
	k     kernel.Kernel
	def   *Def
	solid kernel.Solid
}

var _ Shape = (*MeshShape)(nil)

// NewBox returns a box shape with its minimum corner at the origin.
func NewBox(k kernel.Kernel, x, y, z float64) *MeshShape {
	return &MeshShape{
		k:     k,
		def:   &Def{Op: "box", Args: []float64{x, y, z}},
		solid: k.Box(x, y, z),
	}
}

// NewCylinder returns a Z-axis cylinder centered at the origin.
func NewCylinder(k kernel.Kernel, height, radius float64) *MeshShape {
	return &MeshShape{
		k:     k,
		def:   &Def{Op: "cylinder", Args: []float64{height, radius}},
		solid: k.Cylinder(height, radius),
	}
}

// NewSphere returns a sphere centered at the origin.
func NewSphere(k kernel.Kernel, radius float64) *MeshShape {
	return &MeshShape{
		k:     k,
		def:   &Def{Op: "sphere", Args: []float64{radius}},
		solid: k.Sphere(radius),
	}
}

// FromDef rebuilds a mesh shape by interpreting a constructive definition
// against the kernel. Every primitive, transform, and boolean in the tree
// is re-executed.
func FromDef(k kernel.Kernel, def *Def) (*MeshShape, error) {
	solid, err := def.build(k)
	if err != nil {
		return nil, err
	}
	return &MeshShape{k: k, def: def.Clone(), solid: solid}, nil
}

// Kind returns Mesh.
func (s *MeshShape) Kind() Kind { return Mesh }

// Transform applies a rigid transform: rotation about the world axes,
// then translation.
func (s *MeshShape) Transform(t geometry.Transform) {
	if r := t.Rotation; r != (geometry.Vec3{}) {
		s.solid = s.k.Rotate(s.solid, r.X, r.Y, r.Z)
		s.def = &Def{Op: "rotate", Args: []float64{r.X, r.Y, r.Z}, Children: []*Def{s.def}}
	}
	if v := t.Translation; v != (geometry.Vec3{}) {
		s.solid = s.k.Translate(s.solid, v.X, v.Y, v.Z)
		s.def = &Def{Op: "translate", Args: []float64{v.X, v.Y, v.Z}, Children: []*Def{s.def}}
	}
}

// Drawable tessellates the solid into a triangle mesh.
func (s *MeshShape) Drawable() (*kernel.Mesh, error) {
	return s.k.ToMesh(s.solid)
}

// Clone returns a deep copy. The kernel solid handle is shared: solids are
// immutable values, so the copy can never observe mutation through it.
func (s *MeshShape) Clone() Shape {
	return &MeshShape{k: s.k, def: s.def.Clone(), solid: s.solid}
}

// Def returns a copy of the constructive definition.
func (s *MeshShape) Def() *Def { return s.def.Clone() }

// Solid returns the underlying kernel solid handle.
func (s *MeshShape) Solid() kernel.Solid { return s.solid }

// Kernel returns the kernel this shape was built with.
func (s *MeshShape) Kernel() kernel.Kernel { return s.k }

// boolean combines two mesh shapes through a kernel boolean op.
func boolean(op string, a, b *MeshShape, solid kernel.Solid) *MeshShape {
	return &MeshShape{
		k:     a.k,
		def:   &Def{Op: op, Children: []*Def{a.def.Clone(), b.def.Clone()}},
		solid: solid,
	}
}

// Union returns a new shape covering both operands.
func Union(a, b *MeshShape) *MeshShape {
	return boolean("union", a, b, a.k.Union(a.solid, b.solid))
}

// Difference returns a new shape with b removed from a.
func Difference(a, b *MeshShape) *MeshShape {
	return boolean("difference", a, b, a.k.Difference(a.solid, b.solid))
}

// Intersection returns a new shape covering the overlap of the operands.
func Intersection(a, b *MeshShape) *MeshShape {
	return boolean("intersection", a, b, a.k.Intersection(a.solid, b.solid))
}
