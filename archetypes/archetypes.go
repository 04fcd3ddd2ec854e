package archetypes

import (
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/tags"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

var (
	RemoteEntity = newArchetype(
		tags.Remote,
		components.Transform,
		components.DeadReckoning,
		esync.NetworkIdComponent,
	)
	LocalEntity = newArchetype(
		components.Transform,
		components.DeadReckoning,
		esync.NetworkIdComponent,
	)
	Viewer = newArchetype(
		tags.Viewer,
		components.Camera,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

// SpawnInWorld creates the archetype directly in a world without an ECS.
func (a *archetype) SpawnInWorld(w donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	return w.Entry(w.Create(append(a.components, cs...)...))
}
