// Package kernel defines the abstract solid-modeling kernel interface.
// Implementations (sdfx today, others behind the same contract) provide
// primitives, boolean operations, and tessellation. The part engine treats
// kernel results as opaque: it orders, snapshots, and replays them without
// ever inspecting the numerical content of an operation.
package kernel

// Solid is an opaque handle to a kernel solid. Solids are immutable;
// every operation returns a new handle.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract solid-modeling interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Rigid transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Tessellation
	ToMesh(s Solid) (*Mesh, error)
}
