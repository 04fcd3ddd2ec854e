package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// CameraData is the local viewer. Its position selects the ground clamping
// level of detail for nearby entities.
type CameraData struct {
	Position mgl64.Vec3
}

var Camera = donburi.NewComponentType[CameraData]()
