package network

import (
	"errors"
	"fmt"

	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/shared/netcomponents"
	"github.com/charmbracelet/log"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

var logger = log.WithPrefix("intake")

var (
	ErrStaleUpdate   = errors.New("stale update")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrNoRecord      = errors.New("entity has no dead reckoning state")
)

// Intake applies deserialized entity updates to dead reckoning records in
// sequence order. Updates that are not newer than the last one applied for
// the same entity are dropped.
type Intake struct {
	histories map[esync.NetworkId]*UpdateHistory
	lastRead  map[esync.NetworkId]uint32
	recorder  *Recorder
	applied   int
	dropped   int
}

func NewIntake() *Intake {
	return &Intake{
		histories: make(map[esync.NetworkId]*UpdateHistory),
		lastRead:  make(map[esync.NetworkId]uint32),
	}
}

// History returns the update history of id, or nil if nothing was applied.
func (in *Intake) History(id esync.NetworkId) *UpdateHistory {
	return in.histories[id]
}

// Forget drops the history of id.
func (in *Intake) Forget(id esync.NetworkId) {
	delete(in.histories, id)
	delete(in.lastRead, id)
}

// SetRecorder makes every applied update also go to r. Nil stops recording.
func (in *Intake) SetRecorder(r *Recorder) {
	in.recorder = r
}

// seen records that seq was read for id and reports whether it already was
// on the previous read.
func (in *Intake) seen(id esync.NetworkId, seq uint32) bool {
	last, ok := in.lastRead[id]
	in.lastRead[id] = seq
	return ok && last == seq
}

// Stats returns how many updates were applied and how many arrived out of
// order and were dropped.
func (in *Intake) Stats() (applied, dropped int) {
	return in.applied, in.dropped
}

// newer compares sequence numbers allowing for wrap around.
func newer(seq, last uint32) bool {
	return int32(seq-last) > 0
}

// Apply writes u into the dead reckoning record of the entity with network
// id id.
func (in *Intake) Apply(world donburi.World, id esync.NetworkId, u netcomponents.EntityUpdateData) error {
	entity := esync.FindByNetworkId(world, id)
	if !world.Valid(entity) {
		return fmt.Errorf("apply update %d to %d: %w", u.Sequence, id, ErrUnknownEntity)
	}
	entry := world.Entry(entity)
	if !entry.HasComponent(components.DeadReckoning) {
		return fmt.Errorf("apply update %d to %d: %w", u.Sequence, id, ErrNoRecord)
	}

	history, ok := in.histories[id]
	if !ok {
		history = &UpdateHistory{}
		in.histories[id] = history
	}
	if !history.Empty() && !newer(u.Sequence, history.NextSeq()-1) {
		in.dropped++
		return fmt.Errorf("apply update %d to %d: %w", u.Sequence, id, ErrStaleUpdate)
	}

	dr := components.DeadReckoning.Get(entry)
	predicted := dr.CurrentTranslation()
	applyUpdate(dr, u)
	history.Store(u, predicted)
	in.applied++

	if in.recorder != nil {
		if err := in.recorder.Record(id, u); err != nil {
			logger.Warn("recording failed, recorder detached", "session", in.recorder.Session(), "error", err)
			in.recorder = nil
		}
	}

	logger.Debug("applied update", "id", id, "seq", u.Sequence, "error", history.PredictionError(u.Sequence))
	return nil
}

func applyUpdate(dr *components.DeadReckoningData, u netcomponents.EntityUpdateData) {
	if u.Has(netcomponents.FieldAlgorithm) {
		dr.Algorithm = u.Algorithm
	}
	if u.Has(netcomponents.FieldTranslation) {
		dr.SetLastKnownTranslation(u.Translation)
		dr.SetLastTranslationUpdatedTime(u.Timestamp)
	}
	if u.Has(netcomponents.FieldRotation) {
		dr.SetLastKnownRotation(u.Rotation)
		dr.SetLastRotationUpdatedTime(u.Timestamp)
	}
	if u.Has(netcomponents.FieldVelocity) {
		dr.SetLastKnownVelocity(u.Velocity)
	}
	if u.Has(netcomponents.FieldAcceleration) {
		dr.SetLastKnownAcceleration(u.Acceleration)
	}
	if u.Has(netcomponents.FieldAngularVelocity) {
		dr.SetLastKnownAngularVelocity(u.AngularVelocity)
	}
	for _, a := range u.Articulations {
		dr.UpdateArticulation(a.Name, a.Metric, a.Start, a.Rate)
	}
}

var pendingQuery = donburi.NewQuery(filter.Contains(
	netcomponents.EntityUpdate,
	components.DeadReckoning,
	esync.NetworkIdComponent,
))

// NewIntakeSystem returns an update system that applies the EntityUpdate
// component the network sync layer last wrote on each entity. The component
// stays on the entity, so a sequence read on the previous tick is skipped
// without being applied or counted as dropped again.
func NewIntakeSystem(in *Intake) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		type pending struct {
			id     esync.NetworkId
			update netcomponents.EntityUpdateData
		}
		var updates []pending
		pendingQuery.Each(e.World, func(entry *donburi.Entry) {
			updates = append(updates, pending{
				id:     esync.NetworkIdComponent.GetValue(entry),
				update: netcomponents.EntityUpdate.GetValue(entry),
			})
		})

		for _, p := range updates {
			if in.seen(p.id, p.update.Sequence) {
				continue
			}
			err := in.Apply(e.World, p.id, p.update)
			if err != nil && !errors.Is(err, ErrStaleUpdate) {
				logger.Warn("dropping update", "id", p.id, "error", err)
			}
		}
	}
}
