package systems

import (
	"math"
	"testing"

	"github.com/automoto/deadreckoning/archetypes"
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/shared/gamemath"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

const dt = 0.1

// slopeTerrain is the plane z = base + a*x + b*y.
type slopeTerrain struct {
	base, a, b float64
	calls      int
}

func (s *slopeTerrain) IntersectDownward(p mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, bool) {
	s.calls++
	z := s.base + s.a*p.X() + s.b*p.Y()
	if z > p.Z() {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return mgl64.Vec3{p.X(), p.Y(), z}, mgl64.Vec3{-s.a, -s.b, 1}.Normalize(), true
}

type missTerrain struct{}

func (missTerrain) IntersectDownward(mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, bool) {
	return mgl64.Vec3{}, mgl64.Vec3{}, false
}

type fixedEye mgl64.Vec3

func (e fixedEye) EyePosition() (mgl64.Vec3, bool) { return mgl64.Vec3(e), true }

func spawn(t *testing.T, w donburi.World, m *DeadReckoningManager, id esync.NetworkId, remote bool, dr components.DeadReckoningData) *donburi.Entry {
	t.Helper()
	arch := archetypes.LocalEntity
	if remote {
		arch = archetypes.RemoteEntity
	}
	entry := arch.SpawnInWorld(w)
	components.DeadReckoning.SetValue(entry, dr)
	components.Transform.SetValue(entry, components.TransformData{Rotation: mgl64.QuatIdent()})
	esync.NetworkIdComponent.SetValue(entry, id)
	require.NoError(t, m.RegisterEntity(id, entry))
	return entry
}

func flyingRecord(algorithm netconfig.Algorithm) components.DeadReckoningData {
	dr := components.NewDeadReckoning(algorithm)
	dr.Flying = true
	return dr
}

func translation(entry *donburi.Entry) mgl64.Vec3 {
	return components.Transform.Get(entry).Translation
}

func TestAlgorithmNoneNeverMoves(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	m.SetTerrainCollaborator(&slopeTerrain{})

	entry := spawn(t, w, m, 1, true, components.NewDeadReckoning(netconfig.AlgorithmNone))
	before := components.TransformData{Translation: mgl64.Vec3{3, 4, 5}, Rotation: mgl64.QuatRotate(1, mgl64.Vec3{0, 0, 1})}
	components.Transform.SetValue(entry, before)

	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(mgl64.Vec3{100, 0, 0})
	dr.SetLastKnownVelocity(mgl64.Vec3{1, 1, 1})

	for range 10 {
		m.OnTick(dt)
	}
	assert.Equal(t, before, *components.Transform.Get(entry))
}

func TestStaticPlacesExactly(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmStatic))

	p := mgl64.Vec3{12.25, -3.5, 7.125}
	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(p)
	dr.SetLastKnownRotation(mgl64.Vec3{0.4, 0, 0})
	dr.SetLastKnownVelocity(mgl64.Vec3{5, 5, 5})

	m.OnTick(dt)
	assert.Equal(t, p, translation(entry))
	assert.Equal(t, dr.LastKnownQuatRotation(), components.Transform.Get(entry).Rotation)

	m.OnTick(dt)
	assert.Equal(t, p, translation(entry), "static never integrates velocity")
}

func TestVelocityOnly(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmVelocityOnly))

	p := mgl64.Vec3{1, 2, 3}
	v := mgl64.Vec3{2, -1, 0.5}
	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(p)
	dr.SetLastKnownVelocity(v)
	dr.SetLastKnownAcceleration(mgl64.Vec3{10, 10, 10})

	m.OnTick(dt)
	assert.True(t, translation(entry).ApproxEqualThreshold(p.Add(v.Mul(dt)), 1e-12))

	m.OnTick(dt)
	assert.True(t, translation(entry).ApproxEqualThreshold(p.Add(v.Mul(2*dt)), 1e-12),
		"acceleration is ignored: %v", translation(entry))
}

func TestVelocityAndAcceleration(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmVelocityAndAcceleration))

	p := mgl64.Vec3{0, 0, 10}
	v := mgl64.Vec3{3, 0, 0}
	a := mgl64.Vec3{0, 0, -9.8}
	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(p)
	dr.SetLastKnownVelocity(v)
	dr.SetLastKnownAcceleration(a)

	for range 5 {
		m.OnTick(dt)
	}
	elapsed := 5 * dt
	want := p.Add(v.Mul(elapsed)).Add(a.Mul(0.5 * elapsed * elapsed))
	assert.True(t, translation(entry).ApproxEqualThreshold(want, 1e-9), "got %v want %v", translation(entry), want)
}

func TestAngularVelocity(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmVelocityOnly))

	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownRotation(mgl64.Vec3{0.2, 0, 0})
	dr.SetLastKnownAngularVelocity(mgl64.Vec3{0, 0, 1})

	for range 3 {
		m.OnTick(dt)
	}
	assert.InDelta(t, 0.2+3*dt, gamemath.Heading(components.Transform.Get(entry).Rotation), 1e-9)
}

func TestSmoothingConverges(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	rec := flyingRecord(netconfig.AlgorithmVelocityOnly)
	rec.MaxTranslationSmoothingSteps = 5
	entry := spawn(t, w, m, 1, true, rec)

	v := mgl64.Vec3{1, 0, 0}
	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(mgl64.Vec3{})
	dr.SetLastKnownVelocity(v)

	m.OnTick(dt)
	assert.Zero(t, dr.CurrentTotalTranslationSmoothingSteps(), "the first update snaps")
	m.OnTick(dt)
	m.OnTick(dt)
	require.InDelta(t, 0.3, translation(entry).X(), 1e-12)

	dr.SetLastKnownTranslation(mgl64.Vec3{1, 0, 0})
	prev := translation(entry).X()
	m.OnTick(dt)

	n := dr.CurrentTotalTranslationSmoothingSteps()
	require.Equal(t, 4, n)
	assert.Zero(t, dr.CurrentTotalRotationSmoothingSteps(), "rotation window is independent")

	first := translation(entry).X() - prev
	assert.InDelta(t, 0.24, first, 1e-6)

	prev = translation(entry).X()
	for i := range n {
		m.OnTick(dt)
		cur := translation(entry).X()
		assert.InDelta(t, first, cur-prev, 1e-6, "step %d", i+1)
		prev = cur
	}

	assert.Zero(t, dr.CurrentTotalTranslationSmoothingSteps())
	pure := dr.LastKnownTranslation().Add(v.Mul(dr.Prediction.TranslationElapsed))
	assert.Equal(t, pure, translation(entry))
	assert.InDelta(t, 1.5, translation(entry).X(), 1e-9)

	m.OnTick(dt)
	assert.InDelta(t, 1.6, translation(entry).X(), 1e-9)
}

func TestSmoothingSineCurveConverges(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	m.SetSmoothingCurve("sine")
	rec := flyingRecord(netconfig.AlgorithmVelocityOnly)
	rec.MaxTranslationSmoothingSteps = 6
	entry := spawn(t, w, m, 1, true, rec)

	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(mgl64.Vec3{})
	m.OnTick(dt)

	dr.SetLastKnownTranslation(mgl64.Vec3{0, 6, 0})
	prev := 0.0
	for range 6 {
		m.OnTick(dt)
		cur := translation(entry).Y()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, mgl64.Vec3{0, 6, 0}, translation(entry))
}

func TestRotationSmoothing(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	rec := flyingRecord(netconfig.AlgorithmVelocityOnly)
	rec.MaxRotationSmoothingSteps = 4
	entry := spawn(t, w, m, 1, true, rec)

	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownRotation(mgl64.Vec3{0, 0, 0})
	m.OnTick(dt)

	dr.SetLastKnownRotation(mgl64.Vec3{1, 0, 0})
	m.OnTick(dt)
	assert.Equal(t, 3, dr.CurrentTotalRotationSmoothingSteps())
	assert.Zero(t, dr.CurrentTotalTranslationSmoothingSteps())
	heading := gamemath.Heading(components.Transform.Get(entry).Rotation)
	assert.InDelta(t, 0.25, heading, 1e-6)

	for range 3 {
		m.OnTick(dt)
	}
	assert.InDelta(t, 1, gamemath.Heading(components.Transform.Get(entry).Rotation), 1e-9)
}

func TestSmoothingSteps(t *testing.T) {
	cases := []struct {
		name    string
		avg     float64
		haveAvg bool
		dt      float64
		max     int
		want    int
	}{
		{"no average uses the maximum", 0, false, 0.1, 8, 8},
		{"spans the update interval", 0.25, true, 0.1, 8, 3},
		{"capped", 5, true, 0.1, 8, 8},
		{"at least one step", 0.01, true, 0.1, 8, 1},
		{"zero maximum snaps", 0.25, true, 0.1, 0, 0},
		{"zero dt", 0.25, true, 0, 8, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, smoothingSteps(tc.avg, tc.haveAvg, tc.dt, tc.max))
		})
	}
}

func TestSmoothingWindowFollowsUpdateInterval(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmVelocityOnly))

	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(mgl64.Vec3{})
	dr.SetLastTranslationUpdatedTime(1)
	m.OnTick(dt)

	dr.SetLastKnownTranslation(mgl64.Vec3{1, 0, 0})
	dr.SetLastTranslationUpdatedTime(1.25)
	m.OnTick(dt)
	assert.Equal(t, 2, dr.CurrentTotalTranslationSmoothingSteps(), "ceil(0.25/0.1) = 3 steps, one consumed")
}

func TestGroundClampFlatConverges(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	m.SetTerrainCollaborator(&slopeTerrain{base: 2})

	rec := components.NewDeadReckoning(netconfig.AlgorithmVelocityOnly)
	rec.GroundOffset = 0.5
	entry := spawn(t, w, m, 1, true, rec)

	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(mgl64.Vec3{5, 5, 10})

	for i := range 20 {
		m.OnTick(dt)
		assert.InDelta(t, 2.5, translation(entry).Z(), 1e-12, "tick %d", i)
	}
	up := components.Transform.Get(entry).Rotation.Rotate(mgl64.Vec3{0, 0, 1})
	assert.True(t, up.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-9))
}

func TestGroundClampSlope(t *testing.T) {
	slope := &slopeTerrain{base: 1, a: 0.2, b: 0.1}
	normal := mgl64.Vec3{-0.2, -0.1, 1}.Normalize()

	setup := func(t *testing.T, eye mgl64.Vec3) (*DeadReckoningManager, *donburi.Entry) {
		w := donburi.NewWorld()
		m := NewDeadReckoningManager(w)
		m.SetTerrainCollaborator(slope)
		m.SetEyePointCollaborator(fixedEye(eye))
		m.SetHighResGroundClampingRange(100)

		rec := components.NewDeadReckoning(netconfig.AlgorithmStatic)
		rec.GroundOffset = 0.5
		entry := spawn(t, w, m, 1, true, rec)
		dr := components.DeadReckoning.Get(entry)
		dr.SetLastKnownTranslation(mgl64.Vec3{10, 10, 0})
		dr.SetLastKnownRotation(mgl64.Vec3{0.3, 0, 0})
		return m, entry
	}

	t.Run("three point", func(t *testing.T) {
		m, entry := setup(t, mgl64.Vec3{10, 10, 20})
		slope.calls = 0
		m.OnTick(dt)

		assert.Equal(t, 3, slope.calls)
		assert.InDelta(t, 4.5, translation(entry).Z(), 1e-9)
		up := components.Transform.Get(entry).Rotation.Rotate(mgl64.Vec3{0, 0, 1})
		assert.True(t, up.ApproxEqualThreshold(normal, 1e-9), "up %v normal %v", up, normal)
	})

	t.Run("one point", func(t *testing.T) {
		m, entry := setup(t, mgl64.Vec3{1000, 1000, 0})
		slope.calls = 0
		m.OnTick(dt)

		assert.Equal(t, 1, slope.calls)
		assert.InDelta(t, 4.5, translation(entry).Z(), 1e-9)
	})
}

func TestGroundClampLOD(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	terrain := &slopeTerrain{}
	m.SetTerrainCollaborator(terrain)
	m.SetHighResGroundClampingRange(50)

	entry := spawn(t, w, m, 1, true, components.NewDeadReckoning(netconfig.AlgorithmVelocityOnly))
	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownTranslation(mgl64.Vec3{0, 0, 0})
	dr.SetLastKnownVelocity(mgl64.Vec3{1, 0, 0})

	tick := func() int {
		terrain.calls = 0
		m.OnTick(dt)
		return terrain.calls
	}

	assert.Equal(t, 1, tick(), "no eye point")

	m.SetEyePointCollaborator(fixedEye{0, 10, 0})
	assert.Equal(t, 3, tick(), "inside range")

	m.SetEyePointCollaborator(fixedEye{0, 60, 0})
	assert.Equal(t, 1, tick(), "outside range")

	m.SetEyePointCollaborator(fixedEye{0, 10, 0})
	m.SetHighResGroundClampingRange(0)
	assert.Equal(t, 1, tick(), "zero range")
	assert.Equal(t, 0.0, m.HighResGroundClampingRange())
}

func TestGroundClampMissesLeaveHeight(t *testing.T) {
	t.Run("no terrain", func(t *testing.T) {
		w := donburi.NewWorld()
		m := NewDeadReckoningManager(w)
		entry := spawn(t, w, m, 1, true, components.NewDeadReckoning(netconfig.AlgorithmStatic))
		components.DeadReckoning.Get(entry).SetLastKnownTranslation(mgl64.Vec3{1, 2, 7})

		m.OnTick(dt)
		assert.Equal(t, mgl64.Vec3{1, 2, 7}, translation(entry))
	})

	t.Run("nothing below", func(t *testing.T) {
		w := donburi.NewWorld()
		m := NewDeadReckoningManager(w)
		m.SetTerrainCollaborator(missTerrain{})
		m.SetEyePointCollaborator(fixedEye{})
		entry := spawn(t, w, m, 1, true, components.NewDeadReckoning(netconfig.AlgorithmStatic))
		components.DeadReckoning.Get(entry).SetLastKnownTranslation(mgl64.Vec3{1, 2, 7})

		m.OnTick(dt)
		assert.Equal(t, mgl64.Vec3{1, 2, 7}, translation(entry))
	})

	t.Run("one probe over an edge", func(t *testing.T) {
		w := donburi.NewWorld()
		m := NewDeadReckoningManager(w)
		// the ground ends at x = 10.5; the rear probes of an entity facing -X hang over
		m.SetTerrainCollaborator(edgeTerrain{limit: 10.5})
		m.SetEyePointCollaborator(fixedEye{10, 0, 0})
		rec := components.NewDeadReckoning(netconfig.AlgorithmStatic)
		entry := spawn(t, w, m, 1, true, rec)
		dr := components.DeadReckoning.Get(entry)
		dr.SetLastKnownTranslation(mgl64.Vec3{10, 0, 7})
		dr.SetLastKnownRotation(mgl64.Vec3{math.Pi / 2, 0, 0})

		m.OnTick(dt)
		assert.Equal(t, 7.0, translation(entry).Z())
	})
}

// edgeTerrain is flat ground at z = 0 for x < limit.
type edgeTerrain struct{ limit float64 }

func (e edgeTerrain) IntersectDownward(p mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, bool) {
	if p.X() >= e.limit {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return mgl64.Vec3{p.X(), p.Y(), 0}, mgl64.Vec3{0, 0, 1}, true
}

func TestFlyingSkipsClamp(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	terrain := &slopeTerrain{}
	m.SetTerrainCollaborator(terrain)

	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmStatic))
	components.DeadReckoning.Get(entry).SetLastKnownTranslation(mgl64.Vec3{0, 0, 30})

	m.OnTick(dt)
	assert.Equal(t, 30.0, translation(entry).Z())
	assert.Zero(t, terrain.calls)
}

func TestForceClampTimer(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	terrain := &slopeTerrain{base: 1}
	m.SetTerrainCollaborator(terrain)
	m.SetForceClampTime(0.25)
	assert.Equal(t, 0.25, m.ForceClampTime())

	entry := spawn(t, w, m, 1, true, components.NewDeadReckoning(netconfig.AlgorithmStatic))
	components.DeadReckoning.Get(entry).SetLastKnownTranslation(mgl64.Vec3{0, 0, 5})

	m.OnTick(dt)
	assert.Equal(t, 1, terrain.calls)
	assert.Equal(t, 1.0, translation(entry).Z())

	// terrain streams in higher while the entity sits still
	terrain.base = 2
	m.OnTick(dt)
	m.OnTick(dt)
	assert.Equal(t, 1, terrain.calls, "not due yet")
	assert.Equal(t, 1.0, translation(entry).Z())

	m.OnTick(dt)
	assert.Equal(t, 2, terrain.calls)
	assert.Equal(t, 2.0, translation(entry).Z())
}

func TestRegisterEntity(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)
	assert.Equal(t, "DeadReckoningComponent", m.Name())

	original := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmStatic))
	components.DeadReckoning.Get(original).SetLastKnownTranslation(mgl64.Vec3{1, 1, 1})

	t.Run("duplicate id", func(t *testing.T) {
		other := archetypes.RemoteEntity.SpawnInWorld(w)
		components.DeadReckoning.SetValue(other, flyingRecord(netconfig.AlgorithmStatic))
		components.DeadReckoning.Get(other).SetLastKnownTranslation(mgl64.Vec3{9, 9, 9})

		err := m.RegisterEntity(1, other)
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
		assert.Equal(t, 1, m.Len())

		m.OnTick(dt)
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, translation(original))
		assert.Equal(t, mgl64.Vec3{}, translation(other), "rejected entity is not driven")
	})

	t.Run("missing component", func(t *testing.T) {
		bare := w.Entry(w.Create(components.Transform))
		assert.ErrorIs(t, m.RegisterEntity(2, bare), ErrNoDeadReckoning)
		assert.False(t, m.IsRegistered(2))
	})

	t.Run("invalid entry", func(t *testing.T) {
		assert.ErrorIs(t, m.RegisterEntity(3, nil), ErrInvalidEntity)
	})

	t.Run("unregister", func(t *testing.T) {
		assert.False(t, m.UnregisterEntity(42))
		assert.True(t, m.UnregisterEntity(1))
		assert.False(t, m.IsRegistered(1))
		assert.NoError(t, m.RegisterEntity(1, original))
	})
}

func TestUpdateModes(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)

	record := func(mode netconfig.UpdateMode) components.DeadReckoningData {
		dr := flyingRecord(netconfig.AlgorithmStatic)
		dr.UpdateMode = mode
		return dr
	}
	cases := []struct {
		name   string
		remote bool
		mode   netconfig.UpdateMode
		moved  bool
	}{
		{"remote auto", true, netconfig.UpdateModeAuto, true},
		{"remote calculate only", true, netconfig.UpdateModeCalculateOnly, false},
		{"local auto", false, netconfig.UpdateModeAuto, false},
		{"local calculate and move", false, netconfig.UpdateModeCalculateAndMoveEntity, true},
	}

	entries := make([]*donburi.Entry, len(cases))
	for i, tc := range cases {
		entries[i] = spawn(t, w, m, esync.NetworkId(i+1), tc.remote, record(tc.mode))
		components.DeadReckoning.Get(entries[i]).SetLastKnownTranslation(mgl64.Vec3{4, 5, 6})
	}

	m.OnTick(dt)

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dr := components.DeadReckoning.Get(entries[i])
			assert.Equal(t, mgl64.Vec3{4, 5, 6}, dr.CurrentTranslation(), "prediction is always computed")
			if tc.moved {
				assert.Equal(t, mgl64.Vec3{4, 5, 6}, translation(entries[i]))
			} else {
				assert.Equal(t, mgl64.Vec3{}, translation(entries[i]))
			}
			assert.Equal(t, tc.mode, dr.UpdateMode)
		})
	}
}

func TestDeferredRemoval(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)

	doomed := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmStatic))
	survivor := spawn(t, w, m, 2, true, flyingRecord(netconfig.AlgorithmStatic))
	components.DeadReckoning.Get(survivor).SetLastKnownTranslation(mgl64.Vec3{1, 0, 0})

	w.Remove(doomed.Entity())
	require.Equal(t, 2, m.Len())

	m.OnTick(dt)
	assert.Equal(t, 1, m.Len())
	assert.False(t, m.IsRegistered(1))
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, translation(survivor))
}

func TestArticulationsDriveNodes(t *testing.T) {
	w := donburi.NewWorld()
	m := NewDeadReckoningManager(w)

	nodes := components.NewNodeMap("turret", "mast")
	rec := flyingRecord(netconfig.AlgorithmStatic)
	rec.Nodes = nodes
	turret := rec.AddArticulation("turret", netconfig.MetricAzimuth, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	rec.AddArticulation("mast", netconfig.MetricZ, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 2})
	antenna := rec.AddArticulation("antenna", netconfig.MetricExtension, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	entry := spawn(t, w, m, 1, true, rec)

	m.OnTick(0.5)

	assert.True(t, nodes["turret"].Rotation.ApproxEqual(gamemath.HPRToQuat(mgl64.Vec3{0.5, 0, 0})))
	assert.True(t, nodes["mast"].Translation.ApproxEqualThreshold(mgl64.Vec3{0, 0, 2}, 1e-12))

	dr := components.DeadReckoning.Get(entry)
	a, ok := dr.Articulations.Get(antenna)
	require.True(t, ok)
	assert.InDelta(t, 0.5, a.Current.X(), 1e-12, "parts without a node still advance")

	dr.UpdateArticulation("turret", netconfig.MetricAzimuth, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{})
	m.OnTick(0.5)
	a, _ = dr.Articulations.Get(turret)
	assert.InDelta(t, -1, a.Current.X(), 1e-12)
	assert.True(t, nodes["turret"].Rotation.ApproxEqual(gamemath.HPRToQuat(mgl64.Vec3{-1, 0, 0})))
}

func TestDeadReckoningSystem(t *testing.T) {
	w := donburi.NewWorld()
	e := ecs.NewECS(w)
	m := NewDeadReckoningManager(w)
	e.AddSystem(NewDeadReckoningSystem(m, 50))

	entry := spawn(t, w, m, 1, true, flyingRecord(netconfig.AlgorithmVelocityOnly))
	dr := components.DeadReckoning.Get(entry)
	dr.SetLastKnownVelocity(mgl64.Vec3{5, 0, 0})

	e.Update()
	e.Update()
	assert.InDelta(t, 0.2, translation(entry).X(), 1e-12)
}
