package geometry

import "math"

// Transform is a rigid transformation: a rotation about the world axes
// (Euler angles in degrees, applied X then Y then Z) followed by a
// translation. This matches the transform surface of the geometry kernels,
// which compose rotations about the origin with translations.
type Transform struct {
	Rotation    Vec3 `json:"rotation,omitempty"`    // Euler angles, degrees
	Translation Vec3 `json:"translation,omitempty"` // mm
}

// Translation returns a pure translation transform.
func Translation(v Vec3) Transform {
	return Transform{Translation: v}
}

// Rotation returns a pure rotation transform from Euler angles in degrees.
func Rotation(v Vec3) Transform {
	return Transform{Rotation: v}
}

// IsIdentity reports whether the transform moves nothing.
func (t Transform) IsIdentity() bool {
	return t.Rotation == (Vec3{}) && t.Translation == (Vec3{})
}

// Apply transforms the point p: rotate about the world origin, then
// translate.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.matrix().apply(p).Add(t.Translation)
}

// ApplyDirection transforms the direction d, ignoring the translation
// component.
func (t Transform) ApplyDirection(d Vec3) Vec3 {
	return t.matrix().apply(d)
}

// ApplyFrame transforms a frame: the origin as a point, the axes as
// directions.
func (t Transform) ApplyFrame(f Frame) Frame {
	return Frame{
		Origin: t.Apply(f.Origin),
		XAxis:  t.ApplyDirection(f.XAxis),
		YAxis:  t.ApplyDirection(f.YAxis),
	}
}

// ApplyPlane transforms a cutting plane.
func (t Transform) ApplyPlane(pl Plane) Plane {
	return Plane{
		Origin: t.Apply(pl.Origin),
		Normal: t.ApplyDirection(pl.Normal),
	}
}

// BetweenFrames returns the transform that carries geometry positioned
// relative to frame `from` into the same position relative to frame `to`.
// This is the change of basis used when producing a part's drawable in its
// local frame.
func BetweenFrames(from, to Frame) Transform {
	a := basis(from)
	b := basis(to)
	// R = B * A^T maps from's axes onto to's axes.
	r := b.mul(a.transpose())
	rot := r.eulerDegrees()
	// p' = R*(p - from.Origin) + to.Origin
	trans := to.Origin.Sub(r.apply(from.Origin))
	return Transform{Rotation: rot, Translation: trans}
}

// mat3 is a 3x3 rotation matrix, rows-major. Internal to the package;
// the public surface stays in Euler form so transforms serialize compactly
// and map directly onto the kernel transform calls.
type mat3 [3][3]float64

func (m mat3) apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m mat3) mul(n mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

func (m mat3) transpose() mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// basis builds the rotation matrix whose columns are the frame axes.
func basis(f Frame) mat3 {
	x := f.XAxis.Normalized()
	y := f.YAxis.Normalized()
	z := f.ZAxis().Normalized()
	return mat3{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
}

// matrix builds the rotation matrix Rz*Ry*Rx from the Euler angles.
func (t Transform) matrix() mat3 {
	rx := t.Rotation.X * math.Pi / 180
	ry := t.Rotation.Y * math.Pi / 180
	rz := t.Rotation.Z * math.Pi / 180
	sx, cx := math.Sincos(rx)
	sy, cy := math.Sincos(ry)
	sz, cz := math.Sincos(rz)
	return mat3{
		{cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx},
		{sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx},
		{-sy, cy * sx, cy * cx},
	}
}

// eulerDegrees extracts Euler angles (X-then-Y-then-Z convention, degrees)
// from a proper rotation matrix. At the gimbal singularity (|r20| ~ 1) the
// X angle is folded into Z.
func (m mat3) eulerDegrees() Vec3 {
	const deg = 180 / math.Pi
	if m[2][0] <= -1+1e-12 {
		return Vec3{Y: 90, Z: math.Atan2(m[0][1], m[0][2]) * deg}
	}
	if m[2][0] >= 1-1e-12 {
		return Vec3{Y: -90, Z: math.Atan2(-m[0][1], -m[0][2]) * deg}
	}
	return Vec3{
		X: math.Atan2(m[2][1], m[2][2]) * deg,
		Y: math.Asin(-m[2][0]) * deg,
		Z: math.Atan2(m[1][0], m[0][0]) * deg,
	}
}
