package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is a ground plane through Point with an upward facing unit Normal.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// PlaneFromPoints fits a plane through three terrain hits. It returns false
// when the points are collinear or the plane is vertical.
func PlaneFromPoints(a, b, c mgl64.Vec3) (Plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < Epsilon {
		return Plane{}, false
	}
	n = n.Normalize()
	if n.Z() < 0 {
		n = n.Mul(-1)
	}
	if n.Z() < Epsilon {
		return Plane{}, false
	}
	return Plane{Point: a, Normal: n}, true
}

// HeightAt returns the plane's Z at (x, y).
func (p Plane) HeightAt(x, y float64) float64 {
	n := p.Normal
	return p.Point.Z() - (n.X()*(x-p.Point.X())+n.Y()*(y-p.Point.Y()))/n.Z()
}

// FootprintProbes returns the XY probe points of a three-point ground clamp:
// front center, rear left and rear right of a length x width footprint rotated
// by heading. Z is copied from center.
func FootprintProbes(center mgl64.Vec3, heading, length, width float64) [3]mgl64.Vec3 {
	halfL, halfW := length/2, width/2
	sin, cos := math.Sincos(heading)
	local := [3][2]float64{
		{0, halfL},
		{-halfW, -halfL},
		{halfW, -halfL},
	}

	var probes [3]mgl64.Vec3
	for i, p := range local {
		// rotate about +Z
		x := p[0]*cos - p[1]*sin
		y := p[0]*sin + p[1]*cos
		probes[i] = mgl64.Vec3{center.X() + x, center.Y() + y, center.Z()}
	}
	return probes
}
