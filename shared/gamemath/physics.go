package gamemath

import "github.com/go-gl/mathgl/mgl64"

// Epsilon is the magnitude below which vectors are treated as zero.
const Epsilon = 1e-9

// ExtrapolateTranslation returns origin + vel*t + 0.5*acc*t².
// Pass a zero acc for first-order prediction.
func ExtrapolateTranslation(origin, vel, acc mgl64.Vec3, t float64) mgl64.Vec3 {
	return origin.Add(vel.Mul(t)).Add(acc.Mul(0.5 * t * t))
}

// LerpVec3 interpolates between two points. alpha is not clamped.
func LerpVec3(from, to mgl64.Vec3, alpha float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(alpha))
}

// DistanceSquared avoids the square root for range comparisons.
func DistanceSquared(a, b mgl64.Vec3) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}
