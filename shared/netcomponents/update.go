package netcomponents

import (
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// Field flags for EntityUpdateData. A remote participant only sends what
// changed, so each kinematic field is applied only when its bit is set.
const (
	FieldTranslation uint16 = 1 << iota
	FieldRotation
	FieldVelocity
	FieldAcceleration
	FieldAngularVelocity
	FieldAlgorithm
)

// ArticulationUpdate is the network form of one articulated part.
type ArticulationUpdate struct {
	Name   string
	Metric netconfig.ArticulationMetric
	Start  mgl64.Vec3
	Rate   mgl64.Vec3
}

// EntityUpdateData is an already deserialized state update for one remote
// entity. Rotation is heading/pitch/roll in radians.
type EntityUpdateData struct {
	Sequence  uint32
	Timestamp float64
	Fields    uint16

	Translation     mgl64.Vec3
	Rotation        mgl64.Vec3
	Velocity        mgl64.Vec3
	Acceleration    mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Algorithm       netconfig.Algorithm

	Articulations []ArticulationUpdate
}

// Has reports whether the field bit is set.
func (u *EntityUpdateData) Has(field uint16) bool {
	return u.Fields&field != 0
}

var EntityUpdate = donburi.NewComponentType[EntityUpdateData]()
