package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}
)

// HPRToQuat converts heading (about Z), pitch (about X) and roll (about Y),
// all in radians, applied in that order.
func HPRToQuat(hpr mgl64.Vec3) mgl64.Quat {
	h := mgl64.QuatRotate(hpr.X(), axisZ)
	p := mgl64.QuatRotate(hpr.Y(), axisX)
	r := mgl64.QuatRotate(hpr.Z(), axisY)
	return h.Mul(p).Mul(r).Normalize()
}

// IntegrateAngular rotates q by the angular velocity omega (rad/s, world
// frame) applied for t seconds.
func IntegrateAngular(q mgl64.Quat, omega mgl64.Vec3, t float64) mgl64.Quat {
	rate := omega.Len()
	if rate < Epsilon || t == 0 {
		return q
	}
	delta := mgl64.QuatRotate(rate*t, omega.Mul(1/rate))
	return delta.Mul(q).Normalize()
}

// Heading returns the yaw of q measured from +Y towards -X.
func Heading(q mgl64.Quat) float64 {
	forward := q.Rotate(axisY)
	return math.Atan2(-forward.X(), forward.Y())
}

// AlignToNormal tilts q so its up axis matches normal while keeping the
// heading. A zero normal leaves q unchanged.
func AlignToNormal(q mgl64.Quat, normal mgl64.Vec3) mgl64.Quat {
	if normal.Len() < Epsilon {
		return q
	}
	up := normal.Normalize()

	forward := q.Rotate(axisY)
	forward = forward.Sub(up.Mul(forward.Dot(up)))
	if forward.Len() < Epsilon {
		// pitched straight up or down; fall back to the flat heading
		sin, cos := math.Sincos(Heading(q))
		forward = mgl64.Vec3{-sin, cos, 0}
		forward = forward.Sub(up.Mul(forward.Dot(up)))
	}
	forward = forward.Normalize()
	right := forward.Cross(up).Normalize()

	m := mgl64.Mat3FromCols(right, forward, up)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// WrapAngle maps a to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
