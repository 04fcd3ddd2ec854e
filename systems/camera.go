package systems

import (
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/tags"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

var viewerQuery = donburi.NewQuery(filter.Contains(tags.Viewer, components.Camera))

// CameraEyePoint reads the eye point from the world's viewer camera.
type CameraEyePoint struct {
	World donburi.World
}

func (c CameraEyePoint) EyePosition() (mgl64.Vec3, bool) {
	entry, ok := viewerQuery.First(c.World)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return components.Camera.Get(entry).Position, true
}

// NewCameraFollowSystem returns an update system that eases the viewer camera
// towards a point above the target entity.
func NewCameraFollowSystem(target func() esync.NetworkId) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		cameraEntry, ok := viewerQuery.First(e.World)
		if !ok {
			return
		}
		camera := components.Camera.Get(cameraEntry)

		entity := esync.FindByNetworkId(e.World, target())
		if !e.World.Valid(entity) {
			return
		}
		entry := e.World.Entry(entity)
		if !entry.HasComponent(components.Transform) {
			return
		}

		goal := components.Transform.Get(entry).Translation.Add(mgl64.Vec3{0, 0, config.Camera.FollowHeight})
		camera.Position = camera.Position.Add(goal.Sub(camera.Position).Mul(config.Camera.FollowSmoothing))
	}
}
