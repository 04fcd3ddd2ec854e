package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// TransformData is the pose an entity is drawn and simulated at. Z is up.
type TransformData struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

var Transform = donburi.NewComponentType[TransformData]()
