package core

import (
	"slices"

	"github.com/automoto/deadreckoning/archetypes"
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/network"
	"github.com/automoto/deadreckoning/shared/netcomponents"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

const ReplayName = "ReplayFeed"

// Replay plays a recorded session back through the EntityUpdate components,
// releasing each update once the replay clock passes its timestamp.
type Replay struct {
	world   donburi.World
	updates []network.RecordedUpdate
	next    int
	clock   float64
	start   float64
}

func NewReplay(world donburi.World, rec *network.Recording) *Replay {
	updates := slices.Clone(rec.Updates)
	slices.SortStableFunc(updates, func(a, b network.RecordedUpdate) int {
		switch {
		case a.Update.Timestamp < b.Update.Timestamp:
			return -1
		case a.Update.Timestamp > b.Update.Timestamp:
			return 1
		}
		return 0
	})

	r := &Replay{world: world, updates: updates}
	if len(updates) > 0 {
		r.start = updates[0].Update.Timestamp
	}
	return r
}

func (r *Replay) Name() string {
	return ReplayName
}

// Spawn creates one remote entity for every network id in the recording that
// the world does not know yet. The returned entries still need registering.
func (r *Replay) Spawn() map[esync.NetworkId]*donburi.Entry {
	spawned := make(map[esync.NetworkId]*donburi.Entry)
	for _, u := range r.updates {
		if _, ok := spawned[u.ID]; ok {
			continue
		}
		if r.world.Valid(esync.FindByNetworkId(r.world, u.ID)) {
			continue
		}

		entry := archetypes.RemoteEntity.SpawnInWorld(r.world, netcomponents.EntityUpdate)
		dr := components.NewDeadReckoning(netconfig.AlgorithmVelocityOnly)
		dr.GroundOffset = config.DeadReckoning.ModelDimensions.Z() / 2
		components.DeadReckoning.SetValue(entry, dr)
		components.Transform.SetValue(entry, components.TransformData{Translation: u.Update.Translation, Rotation: mgl64.QuatIdent()})
		esync.NetworkIdComponent.SetValue(entry, u.ID)
		spawned[u.ID] = entry
	}
	logger.Info("replay entities spawned", "count", len(spawned), "updates", len(r.updates))
	return spawned
}

// Done reports whether every update was released.
func (r *Replay) Done() bool {
	return r.next >= len(r.updates)
}

func (r *Replay) OnTick(dt float64) {
	r.clock += dt
	for ; r.next < len(r.updates); r.next++ {
		u := r.updates[r.next]
		if u.Update.Timestamp-r.start > r.clock {
			return
		}
		entity := esync.FindByNetworkId(r.world, u.ID)
		if !r.world.Valid(entity) {
			continue
		}
		entry := r.world.Entry(entity)
		if !entry.HasComponent(netcomponents.EntityUpdate) {
			entry.AddComponent(netcomponents.EntityUpdate)
		}
		netcomponents.EntityUpdate.SetValue(entry, u.Update)
	}
}
