package systems

import (
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/shared/gamemath"
	"github.com/go-gl/mathgl/mgl64"
)

// Terrain answers straight down ray casts. ok is false when nothing is hit.
type Terrain interface {
	IntersectDownward(p mgl64.Vec3) (hit, normal mgl64.Vec3, ok bool)
}

// EyePoint is the viewer ground clamping detail is measured from.
type EyePoint interface {
	EyePosition() (mgl64.Vec3, bool)
}

// groundClamp rests the pose on the terrain. Close to the eye point the
// footprint is sampled on three points, further away on one. A miss leaves
// the pose as it was.
func (m *DeadReckoningManager) groundClamp(dr *components.DeadReckoningData, pos mgl64.Vec3, rot mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
	if m.useThreePointClamp(dr, pos) {
		return m.clampThreePoint(dr, pos, rot)
	}
	return m.clampOnePoint(dr, pos, rot)
}

func (m *DeadReckoningManager) useThreePointClamp(dr *components.DeadReckoningData, pos mgl64.Vec3) bool {
	if m.eye == nil {
		return false
	}
	if dr.ModelDimensions.X() <= 0 || dr.ModelDimensions.Y() <= 0 {
		return false
	}
	eye, ok := m.eye.EyePosition()
	if !ok {
		return false
	}
	return gamemath.DistanceSquared(eye, pos) < m.highResRangeSq
}

func (m *DeadReckoningManager) rayStart(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{p.X(), p.Y(), p.Z() + m.rayStartHeight}
}

func (m *DeadReckoningManager) clampOnePoint(dr *components.DeadReckoningData, pos mgl64.Vec3, rot mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
	hit, normal, ok := m.terrain.IntersectDownward(m.rayStart(pos))
	if !ok {
		return pos, rot
	}
	pos[2] = hit.Z() + dr.GroundOffset
	return pos, gamemath.AlignToNormal(rot, normal)
}

func (m *DeadReckoningManager) clampThreePoint(dr *components.DeadReckoningData, pos mgl64.Vec3, rot mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
	probes := gamemath.FootprintProbes(pos, gamemath.Heading(rot), dr.ModelDimensions.X(), dr.ModelDimensions.Y())

	var hits [3]mgl64.Vec3
	missed := false
	for i, probe := range probes {
		hit, _, ok := m.terrain.IntersectDownward(m.rayStart(probe))
		if !ok {
			missed = true
			continue
		}
		hits[i] = hit
	}
	if missed {
		return pos, rot
	}

	plane, ok := gamemath.PlaneFromPoints(hits[0], hits[1], hits[2])
	if !ok {
		return pos, rot
	}
	pos[2] = plane.HeightAt(pos.X(), pos.Y()) + dr.GroundOffset
	return pos, gamemath.AlignToNormal(rot, plane.Normal)
}
