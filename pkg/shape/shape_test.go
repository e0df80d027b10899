package shape

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
)

// stubSolid records the operations that produced it as a readable trace,
// so tests can compare results structurally without real geometry.
type stubSolid struct {
	trace string
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) { return min, max }

type stubKernel struct{}

var _ kernel.Kernel = (*stubKernel)(nil)

func trace(s kernel.Solid) string { return s.(*stubSolid).trace }

func (k *stubKernel) Box(x, y, z float64) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("box(%g,%g,%g)", x, y, z)}
}

func (k *stubKernel) Cylinder(height, radius float64) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("cylinder(%g,%g)", height, radius)}
}

func (k *stubKernel) Sphere(radius float64) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("sphere(%g)", radius)}
}

func (k *stubKernel) Union(a, b kernel.Solid) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("union(%s,%s)", trace(a), trace(b))}
}

func (k *stubKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("difference(%s,%s)", trace(a), trace(b))}
}

func (k *stubKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("intersection(%s,%s)", trace(a), trace(b))}
}

func (k *stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("translate(%s,%g,%g,%g)", trace(s), x, y, z)}
}

func (k *stubKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return &stubSolid{trace: fmt.Sprintf("rotate(%s,%g,%g,%g)", trace(s), x, y, z)}
}

func (k *stubKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{Vertices: []float32{0, 0, 0}}, nil
}

func TestMeshShapeConstruction(t *testing.T) {
	k := &stubKernel{}
	tests := []struct {
		name  string
		make  func() *MeshShape
		trace string
		def   string
	}{
		{"box", func() *MeshShape { return NewBox(k, 1, 2, 3) }, "box(1,2,3)", "box"},
		{"cylinder", func() *MeshShape { return NewCylinder(k, 10, 2) }, "cylinder(10,2)", "cylinder"},
		{"sphere", func() *MeshShape { return NewSphere(k, 5) }, "sphere(5)", "sphere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.make()
			if got := trace(s.Solid()); got != tt.trace {
				t.Errorf("solid trace = %q, want %q", got, tt.trace)
			}
			if s.Def().Op != tt.def {
				t.Errorf("def op = %q, want %q", s.Def().Op, tt.def)
			}
			if s.Kind() != Mesh {
				t.Errorf("Kind() = %v, want Mesh", s.Kind())
			}
		})
	}
}

func TestMeshShapeBooleans(t *testing.T) {
	k := &stubKernel{}
	a := NewBox(k, 1, 1, 1)
	b := NewSphere(k, 2)

	u := Union(a, b)
	if got := trace(u.Solid()); got != "union(box(1,1,1),sphere(2))" {
		t.Errorf("union trace = %q", got)
	}
	d := Difference(a, b)
	if got := trace(d.Solid()); got != "difference(box(1,1,1),sphere(2))" {
		t.Errorf("difference trace = %q", got)
	}
	i := Intersection(a, b)
	if got := trace(i.Solid()); got != "intersection(box(1,1,1),sphere(2))" {
		t.Errorf("intersection trace = %q", got)
	}
	// Operands must be untouched.
	if got := trace(a.Solid()); got != "box(1,1,1)" {
		t.Errorf("operand mutated: %q", got)
	}
}

func TestMeshShapeTransform(t *testing.T) {
	k := &stubKernel{}
	s := NewBox(k, 1, 1, 1)
	s.Transform(geometry.Transform{
		Rotation:    geometry.Vec3{Z: 90},
		Translation: geometry.Vec3{X: 5},
	})
	want := "translate(rotate(box(1,1,1),0,0,90),5,0,0)"
	if got := trace(s.Solid()); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}
	if s.Def().Op != "translate" {
		t.Errorf("def root = %q, want translate wrapper", s.Def().Op)
	}
}

func TestMeshShapeCloneIndependence(t *testing.T) {
	k := &stubKernel{}
	s := NewBox(k, 1, 1, 1)
	c := s.Clone().(*MeshShape)
	c.Transform(geometry.Translation(geometry.Vec3{X: 9}))

	if got := trace(s.Solid()); got != "box(1,1,1)" {
		t.Errorf("original mutated through clone: %q", got)
	}
	if !reflect.DeepEqual(s.Def(), &Def{Op: "box", Args: []float64{1, 1, 1}}) {
		t.Errorf("original def mutated: %+v", s.Def())
	}
}

func TestDefRebuild(t *testing.T) {
	k := &stubKernel{}
	a := NewBox(k, 1, 1, 1)
	b := NewCylinder(k, 4, 1)
	b.Transform(geometry.Translation(geometry.Vec3{Z: 2}))
	u := Difference(a, b)

	rebuilt, err := FromDef(k, u.Def())
	if err != nil {
		t.Fatalf("FromDef failed: %v", err)
	}
	if trace(rebuilt.Solid()) != trace(u.Solid()) {
		t.Errorf("rebuilt trace = %q, want %q", trace(rebuilt.Solid()), trace(u.Solid()))
	}
}

func TestDefRebuildErrors(t *testing.T) {
	k := &stubKernel{}
	tests := []struct {
		name string
		def  *Def
	}{
		{"unknown op", &Def{Op: "helix"}},
		{"bad args", &Def{Op: "box", Args: []float64{1}}},
		{"missing child", &Def{Op: "union", Children: []*Def{{Op: "sphere", Args: []float64{1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromDef(k, tt.def); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	k := &stubKernel{}

	t.Run("mesh", func(t *testing.T) {
		s := Union(NewBox(k, 1, 2, 3), NewSphere(k, 4))
		rec, err := Encode(s)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var back Record
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		decoded, err := Decode(&back, k)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		ms, ok := decoded.(*MeshShape)
		if !ok {
			t.Fatalf("decoded type = %T, want *MeshShape", decoded)
		}
		if trace(ms.Solid()) != trace(s.Solid()) {
			t.Errorf("decoded trace = %q, want %q", trace(ms.Solid()), trace(s.Solid()))
		}
	})

	t.Run("brep", func(t *testing.T) {
		s := NewBrepBox(10, 20, 30)
		rec, err := Encode(s)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		decoded, err := Decode(rec, k)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		bs, ok := decoded.(*BrepShape)
		if !ok {
			t.Fatalf("decoded type = %T, want *BrepShape", decoded)
		}
		if !reflect.DeepEqual(bs.Body(), s.Body()) {
			t.Error("decoded body differs from original")
		}
	})

	t.Run("plane", func(t *testing.T) {
		s := NewTrimPlane(geometry.Vec3{Z: 5}, geometry.Vec3{Z: 2}, 1e-5)
		rec, err := Encode(s)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		decoded, err := Decode(rec, k)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		tp, ok := decoded.(*TrimPlane)
		if !ok {
			t.Fatalf("decoded type = %T, want *TrimPlane", decoded)
		}
		if tp.Tolerance != 1e-5 {
			t.Errorf("tolerance = %v, want 1e-5", tp.Tolerance)
		}
		if tp.Plane.Normal != (geometry.Vec3{Z: 1}) {
			t.Errorf("normal = %v, want unit Z", tp.Plane.Normal)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := Decode(&Record{Kind: "nurbs"}, k); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

func TestBrepShapeCloneIndependence(t *testing.T) {
	s := NewBrepBox(10, 10, 10)
	c := s.Clone().(*BrepShape)
	c.Transform(geometry.Translation(geometry.Vec3{X: 100}))

	min, _ := s.Body().BoundingBox()
	if min != ([3]float64{0, 0, 0}) {
		t.Errorf("original body moved through clone: min = %v", min)
	}
}

func TestTrimPlaneTransform(t *testing.T) {
	s := NewTrimPlane(geometry.Vec3{Z: 5}, geometry.Vec3{Z: 1}, 0)
	s.Transform(geometry.Translation(geometry.Vec3{Z: 3}))
	if s.Plane.Origin != (geometry.Vec3{Z: 8}) {
		t.Errorf("origin = %v, want z=8", s.Plane.Origin)
	}
	if s.Plane.Normal != (geometry.Vec3{Z: 1}) {
		t.Errorf("normal = %v, want unit Z", s.Plane.Normal)
	}
}

func TestNewBrepNil(t *testing.T) {
	s := NewBrep(nil)
	if !s.Body().IsEmpty() {
		t.Error("nil body should wrap as empty")
	}
	m, err := s.Drawable()
	if err != nil {
		t.Fatalf("Drawable failed: %v", err)
	}
	if !m.IsEmpty() {
		t.Error("empty body should produce empty mesh")
	}
}
