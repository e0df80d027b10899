// Package brep provides a planar-faced boundary representation and the
// trimming kernel that cuts bodies with oriented planes. Bodies are the
// concrete geometry behind the engine's brep backend; the part engine calls
// Trim through its operation registry and never looks inside.
package brep

import (
	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Body is a boundary representation with planar faces. Faces index into the
// shared vertex list and wind counter-clockwise when viewed from outside.
type Body struct {
	Vertices []geometry.Vec3 `json:"vertices"`
	Faces    [][]int         `json:"faces"`
}

// Box returns a box body with its minimum corner at the origin, matching
// the placement convention of the mesh kernel primitives.
func Box(x, y, z float64) *Body {
	return &Body{
		Vertices: []geometry.Vec3{
			{X: 0, Y: 0, Z: 0}, {X: x, Y: 0, Z: 0}, {X: x, Y: y, Z: 0}, {X: 0, Y: y, Z: 0},
			{X: 0, Y: 0, Z: z}, {X: x, Y: 0, Z: z}, {X: x, Y: y, Z: z}, {X: 0, Y: y, Z: z},
		},
		Faces: [][]int{
			{3, 2, 1, 0}, // bottom, normal -Z
			{4, 5, 6, 7}, // top, normal +Z
			{0, 1, 5, 4}, // front, normal -Y
			{2, 3, 7, 6}, // back, normal +Y
			{1, 2, 6, 5}, // right, normal +X
			{3, 0, 4, 7}, // left, normal -X
		},
	}
}

// IsEmpty reports whether the body has no faces.
func (b *Body) IsEmpty() bool {
	return len(b.Faces) == 0
}

// Clone returns a deep copy sharing no storage with the receiver.
func (b *Body) Clone() *Body {
	c := &Body{
		Vertices: make([]geometry.Vec3, len(b.Vertices)),
		Faces:    make([][]int, len(b.Faces)),
	}
	copy(c.Vertices, b.Vertices)
	for i, f := range b.Faces {
		c.Faces[i] = make([]int, len(f))
		copy(c.Faces[i], f)
	}
	return c
}

// Transform applies a rigid transform to every vertex in place.
func (b *Body) Transform(t geometry.Transform) {
	for i, v := range b.Vertices {
		b.Vertices[i] = t.Apply(v)
	}
}

// BoundingBox returns the axis-aligned bounds of the body's vertices.
func (b *Body) BoundingBox() (min, max [3]float64) {
	if len(b.Vertices) == 0 {
		return min, max
	}
	first := b.Vertices[0]
	min = [3]float64{first.X, first.Y, first.Z}
	max = min
	for _, v := range b.Vertices[1:] {
		c := [3]float64{v.X, v.Y, v.Z}
		for j := 0; j < 3; j++ {
			if c[j] < min[j] {
				min[j] = c[j]
			}
			if c[j] > max[j] {
				max[j] = c[j]
			}
		}
	}
	return min, max
}

// faceNormal computes the outward normal of a face loop using Newell's
// method, which tolerates slightly non-planar loops.
func (b *Body) faceNormal(face []int) geometry.Vec3 {
	var n geometry.Vec3
	for i, vi := range face {
		v := b.Vertices[vi]
		w := b.Vertices[face[(i+1)%len(face)]]
		n.X += (v.Y - w.Y) * (v.Z + w.Z)
		n.Y += (v.Z - w.Z) * (v.X + w.X)
		n.Z += (v.X - w.X) * (v.Y + w.Y)
	}
	return n.Normalized()
}

// Mesh fan-triangulates the body into a drawable triangle mesh with flat
// per-face normals.
func (b *Body) Mesh() *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, face := range b.Faces {
		if len(face) < 3 {
			continue
		}
		n := b.faceNormal(face)
		for i := 1; i+1 < len(face); i++ {
			for _, vi := range []int{face[0], face[i], face[i+1]} {
				v := b.Vertices[vi]
				m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
				m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			}
		}
	}
	return m
}
