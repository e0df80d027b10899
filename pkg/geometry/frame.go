package geometry

// Frame is a right-handed coordinate system defined by an origin and two
// in-plane axes. The Z axis is derived as XAxis x YAxis.
type Frame struct {
	Origin Vec3 `json:"origin"`
	XAxis  Vec3 `json:"xaxis"`
	YAxis  Vec3 `json:"yaxis"`
}

// NewFrame builds a frame from an origin and two axis directions.
// The axes are normalized and the Y axis is re-orthogonalized against X
// so that callers can pass approximate directions.
func NewFrame(origin, xaxis, yaxis Vec3) Frame {
	x := xaxis.Normalized()
	z := x.Cross(yaxis).Normalized()
	y := z.Cross(x)
	return Frame{Origin: origin, XAxis: x, YAxis: y}
}

// WorldXY returns the world coordinate frame at the origin.
func WorldXY() Frame {
	return Frame{
		XAxis: Vec3{X: 1},
		YAxis: Vec3{Y: 1},
	}
}

// ZAxis returns the frame normal, XAxis x YAxis.
func (f Frame) ZAxis() Vec3 {
	return f.XAxis.Cross(f.YAxis)
}

// IsZero reports whether the frame is the uninitialized zero value,
// as opposed to a deliberately constructed frame.
func (f Frame) IsZero() bool {
	return f.XAxis == (Vec3{}) && f.YAxis == (Vec3{})
}

// Plane is an oriented cutting plane. The normal points away from the
// material that survives a trim.
type Plane struct {
	Origin Vec3 `json:"origin"`
	Normal Vec3 `json:"normal"`
}

// SignedDistance returns the signed distance from p to the plane,
// positive on the normal side.
func (pl Plane) SignedDistance(p Vec3) float64 {
	return pl.Normal.Normalized().Dot(p.Sub(pl.Origin))
}
