package brep

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/heartwood/pkg/geometry"
)

// DefaultTolerance is the trimming tolerance used when a caller passes
// zero or a negative value.
const DefaultTolerance = 1e-6

// Trim cuts a body with an oriented plane and returns the surviving
// pieces. Material on the side the normal points at is discarded; the cut
// is capped with a planar face. The tolerance decides when a vertex counts
// as lying on the plane.
//
// The returned slice follows the kernel contract of the part engine: an
// empty slice is a valid answer meaning the plane removed everything (or
// the body was already empty); it is not an error. Convex bodies are the
// supported input class; concave bodies may produce a self-intersecting
// cap face.
func Trim(body *Body, plane geometry.Plane, tolerance float64) ([]*Body, error) {
	if body == nil {
		return nil, fmt.Errorf("trim: nil body")
	}
	if plane.Normal == (geometry.Vec3{}) {
		return nil, fmt.Errorf("trim: degenerate plane normal")
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if body.IsEmpty() {
		return nil, nil
	}

	normal := plane.Normal.Normalized()
	dist := func(p geometry.Vec3) float64 {
		return normal.Dot(p.Sub(plane.Origin))
	}

	bld := newBodyBuilder(tolerance)
	var capPoints []geometry.Vec3

	for _, face := range body.Faces {
		clipped := clipFace(body, face, dist, tolerance)
		if len(clipped) < 3 {
			continue
		}
		bld.addFace(clipped)
		for _, p := range clipped {
			if math.Abs(dist(p)) <= tolerance {
				capPoints = append(capPoints, p)
			}
		}
	}

	if bld.empty() {
		return nil, nil
	}

	if cap := orderCapLoop(capPoints, plane.Origin, normal, tolerance); len(cap) >= 3 {
		bld.addFace(cap)
	}

	return []*Body{bld.body()}, nil
}

// clipFace clips one face loop against the half-space dist(p) <= tol,
// Sutherland-Hodgman style.
func clipFace(b *Body, face []int, dist func(geometry.Vec3) float64, tol float64) []geometry.Vec3 {
	var out []geometry.Vec3
	n := len(face)
	for i := 0; i < n; i++ {
		cur := b.Vertices[face[i]]
		next := b.Vertices[face[(i+1)%n]]
		dc := dist(cur)
		dn := dist(next)

		if dc <= tol {
			out = append(out, cur)
		}
		// Edge crosses the plane: emit the intersection point.
		if (dc > tol && dn < -tol) || (dc < -tol && dn > tol) {
			t := dc / (dc - dn)
			out = append(out, cur.Add(next.Sub(cur).Scale(t)))
		}
	}
	return out
}

// orderCapLoop builds the cap face loop from the points left on the cutting
// plane, sorted by angle around their centroid. The loop winds so that its
// outward normal matches the plane normal.
func orderCapLoop(points []geometry.Vec3, origin, normal geometry.Vec3, tol float64) []geometry.Vec3 {
	unique := dedupePoints(points, tol)
	if len(unique) < 3 {
		return nil
	}

	var centroid geometry.Vec3
	for _, p := range unique {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(len(unique)))

	// In-plane basis for angle sorting.
	u := unique[0].Sub(centroid).Normalized()
	if u.Length() == 0 {
		return nil
	}
	v := normal.Cross(u)

	sort.Slice(unique, func(i, j int) bool {
		return capAngle(unique[i], centroid, u, v) < capAngle(unique[j], centroid, u, v)
	})
	return unique
}

func capAngle(p, centroid, u, v geometry.Vec3) float64 {
	d := p.Sub(centroid)
	return math.Atan2(d.Dot(v), d.Dot(u))
}

// dedupePoints merges points closer than tol.
func dedupePoints(points []geometry.Vec3, tol float64) []geometry.Vec3 {
	merge := tol * 10
	var unique []geometry.Vec3
	for _, p := range points {
		found := false
		for _, q := range unique {
			if p.Sub(q).Length() <= merge {
				found = true
				break
			}
		}
		if !found {
			unique = append(unique, p)
		}
	}
	return unique
}

// bodyBuilder accumulates faces into a Body, welding vertices that fall
// within the tolerance of one another.
type bodyBuilder struct {
	b     *Body
	tol   float64
	index map[[3]int64]int
}

func newBodyBuilder(tol float64) *bodyBuilder {
	return &bodyBuilder{
		b:     &Body{},
		tol:   tol,
		index: make(map[[3]int64]int),
	}
}

func (bb *bodyBuilder) key(p geometry.Vec3) [3]int64 {
	q := 1 / (bb.tol * 10)
	return [3]int64{
		int64(math.Round(p.X * q)),
		int64(math.Round(p.Y * q)),
		int64(math.Round(p.Z * q)),
	}
}

func (bb *bodyBuilder) vertex(p geometry.Vec3) int {
	k := bb.key(p)
	if i, ok := bb.index[k]; ok {
		return i
	}
	i := len(bb.b.Vertices)
	bb.b.Vertices = append(bb.b.Vertices, p)
	bb.index[k] = i
	return i
}

func (bb *bodyBuilder) addFace(loop []geometry.Vec3) {
	face := make([]int, 0, len(loop))
	for _, p := range loop {
		vi := bb.vertex(p)
		// Welding can collapse consecutive points onto one vertex.
		if len(face) > 0 && face[len(face)-1] == vi {
			continue
		}
		face = append(face, vi)
	}
	if len(face) >= 3 && face[0] == face[len(face)-1] {
		face = face[:len(face)-1]
	}
	if len(face) >= 3 {
		bb.b.Faces = append(bb.b.Faces, face)
	}
}

func (bb *bodyBuilder) empty() bool {
	return len(bb.b.Faces) == 0
}

func (bb *bodyBuilder) body() *Body {
	return bb.b
}
