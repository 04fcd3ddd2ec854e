package systems

import (
	"errors"
	"fmt"
	"slices"

	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/automoto/deadreckoning/tags"
	"github.com/charmbracelet/log"
	"github.com/leap-fish/necs/esync"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var logger = log.WithPrefix("deadreckoning")

var (
	ErrAlreadyRegistered = errors.New("entity already registered")
	ErrNoDeadReckoning   = errors.New("entity has no dead reckoning state")
	ErrInvalidEntity     = errors.New("invalid entity")
)

// DeadReckoningManager drives every registered entity's dead reckoning once
// per simulation tick. It holds entity handles only; the state itself lives in
// each entity's DeadReckoning component.
//
// The manager is not safe for concurrent use. Register, unregister and OnTick
// must all run on the simulation goroutine.
type DeadReckoningManager struct {
	world donburi.World
	name  string

	entities map[esync.NetworkId]donburi.Entity
	order    []esync.NetworkId // sorted, so ticks are deterministic

	terrain Terrain
	eye     EyePoint

	highResRange   float64
	highResRangeSq float64
	forceClampTime float64
	rayStartHeight float64
	curve          ease.TweenFunc
}

// NewDeadReckoningManager returns a manager for entities of world with the
// tunables from config.DeadReckoning. Ground clamping stays off until a
// terrain collaborator is set.
func NewDeadReckoningManager(world donburi.World) *DeadReckoningManager {
	m := &DeadReckoningManager{
		world:          world,
		name:           config.DefaultInstanceName,
		entities:       make(map[esync.NetworkId]donburi.Entity),
		forceClampTime: config.DeadReckoning.ForceClampTime,
		rayStartHeight: config.DeadReckoning.ClampRayStartHeight,
		curve:          smoothingCurve(config.DeadReckoning.SmoothingCurve),
	}
	m.SetHighResGroundClampingRange(config.DeadReckoning.HighResGroundClampingRange)
	return m
}

// Name identifies the manager in a simulation's component registry.
func (m *DeadReckoningManager) Name() string {
	return m.name
}

func (m *DeadReckoningManager) SetName(name string) {
	m.name = name
}

// RegisterEntity starts dead reckoning the entity behind entry under id. The
// entry must already carry a populated DeadReckoning component. Registering an
// id twice fails and keeps the original registration.
func (m *DeadReckoningManager) RegisterEntity(id esync.NetworkId, entry *donburi.Entry) error {
	if entry == nil || !entry.Valid() {
		return fmt.Errorf("register %d: %w", id, ErrInvalidEntity)
	}
	if !entry.HasComponent(components.DeadReckoning) {
		return fmt.Errorf("register %d: %w", id, ErrNoDeadReckoning)
	}
	if _, exists := m.entities[id]; exists {
		logger.Warn("duplicate registration ignored", "id", id)
		return fmt.Errorf("register %d: %w", id, ErrAlreadyRegistered)
	}

	m.entities[id] = entry.Entity()
	i, _ := slices.BinarySearch(m.order, id)
	m.order = slices.Insert(m.order, i, id)

	logger.Info("registered entity", "id", id, "remote", entry.HasComponent(tags.Remote))
	return nil
}

// UnregisterEntity stops dead reckoning id. It reports whether id was
// registered; an unknown id is not an error.
func (m *DeadReckoningManager) UnregisterEntity(id esync.NetworkId) bool {
	if _, exists := m.entities[id]; !exists {
		return false
	}
	delete(m.entities, id)
	if i, found := slices.BinarySearch(m.order, id); found {
		m.order = slices.Delete(m.order, i, i+1)
	}
	logger.Info("unregistered entity", "id", id)
	return true
}

// IsRegistered reports whether id is currently registered.
func (m *DeadReckoningManager) IsRegistered(id esync.NetworkId) bool {
	_, ok := m.entities[id]
	return ok
}

// Len returns the number of registered entities.
func (m *DeadReckoningManager) Len() int {
	return len(m.order)
}

// SetTerrainCollaborator sets the terrain used for ground clamping. nil turns
// clamping off.
func (m *DeadReckoningManager) SetTerrainCollaborator(t Terrain) {
	m.terrain = t
}

// SetEyePointCollaborator sets the viewer used to choose between three-point
// and one-point clamping. Without one every entity is clamped on one point.
func (m *DeadReckoningManager) SetEyePointCollaborator(e EyePoint) {
	m.eye = e
}

// SetHighResGroundClampingRange sets the eye distance under which entities
// are clamped on three points.
func (m *DeadReckoningManager) SetHighResGroundClampingRange(r float64) {
	m.highResRange = r
	m.highResRangeSq = r * r
}

func (m *DeadReckoningManager) HighResGroundClampingRange() float64 {
	return m.highResRange
}

// SetForceClampTime sets how often, in seconds, an entity that has not moved
// is clamped again.
func (m *DeadReckoningManager) SetForceClampTime(seconds float64) {
	m.forceClampTime = seconds
}

func (m *DeadReckoningManager) ForceClampTime() float64 {
	return m.forceClampTime
}

// SetSmoothingCurve selects the blend curve of new smoothing windows, one of
// config.SmoothingLinear or config.SmoothingSine.
func (m *DeadReckoningManager) SetSmoothingCurve(name string) {
	m.curve = smoothingCurve(name)
}

// OnTick advances every registered entity by dt seconds. Entities whose
// handle went stale since the last tick are unregistered after the pass.
func (m *DeadReckoningManager) OnTick(dt float64) {
	var stale []esync.NetworkId

	for _, id := range m.order {
		entity := m.entities[id]
		if !m.world.Valid(entity) {
			stale = append(stale, id)
			continue
		}
		entry := m.world.Entry(entity)
		if !entry.HasComponent(components.DeadReckoning) {
			stale = append(stale, id)
			continue
		}
		m.tickEntity(entry, dt)
	}

	for _, id := range stale {
		logger.Debug("dropping stale entity", "id", id)
		m.UnregisterEntity(id)
	}
}

func (m *DeadReckoningManager) tickEntity(entry *donburi.Entry, dt float64) {
	dr := components.DeadReckoning.Get(entry)
	if dr.Algorithm == netconfig.AlgorithmNone {
		return
	}

	if m.advancePose(dr, dt) {
		mode := dr.EffectiveUpdateMode(entry.HasComponent(tags.Remote))
		if mode == netconfig.UpdateModeCalculateAndMoveEntity && entry.HasComponent(components.Transform) {
			t := components.Transform.Get(entry)
			t.Translation = dr.Prediction.Translation
			t.Rotation = dr.Prediction.Rotation
		}
	}

	applyArticulations(dr, dt)
	dr.ClearUpdatedFlags()
}

// advancePose updates the predicted pose and reports whether it changed. An
// entity that is at rest keeps its last clamped pose until the force clamp
// timer runs out.
func (m *DeadReckoningManager) advancePose(dr *components.DeadReckoningData, dt float64) bool {
	p := &dr.Prediction

	if dr.IsTranslationUpdated() {
		p.TranslationElapsed = 0
	}
	if dr.IsRotationUpdated() {
		p.RotationElapsed = 0
	}
	p.TranslationElapsed += dt
	p.RotationElapsed += dt
	p.ForceClampTimer += dt

	due := p.ForceClampTimer >= m.forceClampTime
	if p.Initialized && !dr.IsUpdated() && !inMotion(dr) && !due {
		return false
	}

	if dr.Algorithm == netconfig.AlgorithmStatic {
		m.placeStatic(dr)
	} else {
		m.extrapolate(dr, dt)
	}
	p.Initialized = true

	if !dr.Flying && m.terrain != nil {
		p.Translation, p.Rotation = m.groundClamp(dr, p.Translation, p.Rotation)
	}
	p.ForceClampTimer = 0
	return true
}

// NewDeadReckoningSystem runs the manager as an ECS update system at a fixed
// tick rate.
func NewDeadReckoningSystem(m *DeadReckoningManager, tickRate int) func(*ecs.ECS) {
	dt := 1.0 / float64(max(tickRate, 1))
	return func(e *ecs.ECS) {
		m.OnTick(dt)
	}
}
