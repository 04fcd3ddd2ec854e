package core

import (
	"math"
	"math/rand"

	"github.com/automoto/deadreckoning/archetypes"
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/shared/netcomponents"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

const (
	FeedName = "SyntheticFeed"

	turretName = "turret"
)

// feedEntity is the ground truth of one synthetic remote entity.
type feedEntity struct {
	id       esync.NetworkId
	entity   donburi.Entity
	seq      uint32
	pos      mgl64.Vec3
	speed    float64
	heading  float64
	turnRate float64
	turret   float64
	nextSend float64
}

func (e *feedEntity) velocity() mgl64.Vec3 {
	sin, cos := math.Sincos(e.heading)
	return mgl64.Vec3{-sin * e.speed, cos * e.speed, 0}
}

// Feed stands in for a remote participant. It moves entities along circular
// paths and every UpdateInterval (plus jitter) writes a fresh EntityUpdate
// component on each, the way the network sync layer would.
type Feed struct {
	world    donburi.World
	rng      *rand.Rand
	entities []*feedEntity
	clock    float64

	interval float64
	jitter   float64
}

func NewFeed(world donburi.World, seed int64) *Feed {
	return &Feed{
		world:    world,
		rng:      rand.New(rand.NewSource(seed)),
		interval: config.Server.UpdateInterval,
		jitter:   config.Server.UpdateJitter,
	}
}

func (f *Feed) Name() string {
	return FeedName
}

// SetUpdateInterval changes how often updates are sent.
func (f *Feed) SetUpdateInterval(interval, jitter float64) {
	f.interval = interval
	f.jitter = jitter
}

// Spawn creates a remote entity with a dead reckoning record and starts
// simulating its truth. The caller registers it with the manager.
func (f *Feed) Spawn(id esync.NetworkId, pos mgl64.Vec3, speed, turnRate float64) *donburi.Entry {
	entry := archetypes.RemoteEntity.SpawnInWorld(f.world, netcomponents.EntityUpdate)

	dr := components.NewDeadReckoning(netconfig.AlgorithmVelocityOnly)
	dr.GroundOffset = config.DeadReckoning.ModelDimensions.Z() / 2
	dr.Nodes = components.NewNodeMap(turretName)
	components.DeadReckoning.SetValue(entry, dr)
	components.Transform.SetValue(entry, components.TransformData{Translation: pos, Rotation: mgl64.QuatIdent()})
	esync.NetworkIdComponent.SetValue(entry, id)

	f.entities = append(f.entities, &feedEntity{
		id:       id,
		entity:   entry.Entity(),
		pos:      pos,
		speed:    speed,
		heading:  f.rng.Float64() * 2 * math.Pi,
		turnRate: turnRate,
	})
	return entry
}

// Truth returns the current true position of id.
func (f *Feed) Truth(id esync.NetworkId) (mgl64.Vec3, bool) {
	for _, e := range f.entities {
		if e.id == id {
			return e.pos, true
		}
	}
	return mgl64.Vec3{}, false
}

func (f *Feed) OnTick(dt float64) {
	f.clock += dt

	for _, e := range f.entities {
		e.heading += e.turnRate * dt
		e.pos = e.pos.Add(e.velocity().Mul(dt))
		e.turret += 0.5 * dt

		if f.clock < e.nextSend || !f.world.Valid(e.entity) {
			continue
		}
		f.send(e)
		e.nextSend = f.clock + f.interval + (f.rng.Float64()*2-1)*f.jitter
	}
}

func (f *Feed) send(e *feedEntity) {
	e.seq++
	update := netcomponents.EntityUpdateData{
		Sequence:  e.seq,
		Timestamp: f.clock,
		Fields: netcomponents.FieldTranslation | netcomponents.FieldRotation |
			netcomponents.FieldVelocity | netcomponents.FieldAngularVelocity,
		Translation:     e.pos,
		Rotation:        mgl64.Vec3{e.heading, 0, 0},
		Velocity:        e.velocity(),
		AngularVelocity: mgl64.Vec3{0, 0, e.turnRate},
		Articulations: []netcomponents.ArticulationUpdate{{
			Name:   turretName,
			Metric: netconfig.MetricAzimuth,
			Start:  mgl64.Vec3{e.turret, 0, 0},
			Rate:   mgl64.Vec3{0.5, 0, 0},
		}},
	}
	netcomponents.EntityUpdate.SetValue(f.world.Entry(e.entity), update)
}

// TrackingError returns the mean horizontal distance between each entity's
// true position and where it is drawn.
func (f *Feed) TrackingError() float64 {
	var total float64
	var n int
	for _, e := range f.entities {
		if !f.world.Valid(e.entity) {
			continue
		}
		drawn := components.Transform.Get(f.world.Entry(e.entity)).Translation
		d := e.pos.Sub(drawn)
		total += math.Hypot(d.X(), d.Y())
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
