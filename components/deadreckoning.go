package components

import (
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/shared/gamemath"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// TranslationSmoothing blends from the trajectory an entity was following
// before an update into the trajectory the update describes.
type TranslationSmoothing struct {
	Remaining int // ticks left in the window; 0 means pure extrapolation
	Steps     int
	Blend     *gween.Tween

	From             mgl64.Vec3
	FromVelocity     mgl64.Vec3
	FromAcceleration mgl64.Vec3
}

// RotationSmoothing is TranslationSmoothing for orientation.
type RotationSmoothing struct {
	Remaining int
	Steps     int
	Blend     *gween.Tween

	From                mgl64.Quat
	FromAngularVelocity mgl64.Vec3
}

// PredictionState is the manager's per-entity bookkeeping. Translation and
// Rotation hold the most recent dead reckoned pose whether or not it was
// written back to the entity.
type PredictionState struct {
	Initialized bool

	Translation mgl64.Vec3
	Rotation    mgl64.Quat

	// rates the current pose was extrapolated with
	Velocity        mgl64.Vec3
	Acceleration    mgl64.Vec3
	AngularVelocity mgl64.Vec3

	TranslationElapsed float64
	RotationElapsed    float64
	ForceClampTimer    float64

	TranslationSmoothing TranslationSmoothing
	RotationSmoothing    RotationSmoothing
}

// DeadReckoningData is the dead reckoning state of one entity: the last
// ground truth received for it, how to extrapolate from that truth, and the
// entity's articulated parts.
type DeadReckoningData struct {
	Algorithm    netconfig.Algorithm
	UpdateMode   netconfig.UpdateMode
	Flying       bool
	GroundOffset float64

	MaxTranslationSmoothingSteps int
	MaxRotationSmoothingSteps    int
	ModelDimensions              mgl64.Vec3

	Nodes         NodeResolver
	Articulations ArticulationList

	Prediction PredictionState

	lastTranslation    mgl64.Vec3
	lastRotation       mgl64.Vec3
	lastRotationMatrix mgl64.Mat3
	lastQuatRotation   mgl64.Quat

	velocity        mgl64.Vec3
	acceleration    mgl64.Vec3
	angularVelocity mgl64.Vec3

	lastTranslationUpdatedTime float64
	lastRotationUpdatedTime    float64
	hasTranslationTime         bool
	hasRotationTime            bool
	avgTranslationInterval     float64
	avgRotationInterval        float64
	hasAvgTranslationInterval  bool
	hasAvgRotationInterval     bool

	updated            bool
	translationUpdated bool
	rotationUpdated    bool
}

var DeadReckoning = donburi.NewComponentType[DeadReckoningData]()

// NewDeadReckoning returns a record with the configured defaults and an
// identity orientation.
func NewDeadReckoning(algorithm netconfig.Algorithm) DeadReckoningData {
	return DeadReckoningData{
		Algorithm:                    algorithm,
		UpdateMode:                   netconfig.UpdateModeAuto,
		MaxTranslationSmoothingSteps: config.DeadReckoning.MaxTranslationSmoothingSteps,
		MaxRotationSmoothingSteps:    config.DeadReckoning.MaxRotationSmoothingSteps,
		ModelDimensions:              config.DeadReckoning.ModelDimensions,
		lastRotationMatrix:           mgl64.Ident3(),
		lastQuatRotation:             mgl64.QuatIdent(),
		Prediction: PredictionState{
			Rotation: mgl64.QuatIdent(),
		},
	}
}

// SetLastKnownTranslation records new ground truth for the position.
func (d *DeadReckoningData) SetLastKnownTranslation(v mgl64.Vec3) {
	d.lastTranslation = v
	d.translationUpdated = true
	d.updated = true
}

// SetLastKnownRotation records new ground truth for the orientation, given as
// heading/pitch/roll in radians.
func (d *DeadReckoningData) SetLastKnownRotation(hpr mgl64.Vec3) {
	d.lastRotation = hpr
	d.lastQuatRotation = gamemath.HPRToQuat(hpr)
	d.lastRotationMatrix = d.lastQuatRotation.Mat4().Mat3()
	d.rotationUpdated = true
	d.updated = true
}

func (d *DeadReckoningData) SetLastKnownVelocity(v mgl64.Vec3) {
	d.velocity = v
	d.updated = true
}

func (d *DeadReckoningData) SetLastKnownAcceleration(v mgl64.Vec3) {
	d.acceleration = v
	d.updated = true
}

func (d *DeadReckoningData) SetLastKnownAngularVelocity(v mgl64.Vec3) {
	d.angularVelocity = v
	d.updated = true
}

// SetLastTranslationUpdatedTime records when the translation truth was
// produced and folds the gap since the previous one into a rolling average.
// The first call only records the time.
func (d *DeadReckoningData) SetLastTranslationUpdatedTime(t float64) {
	if d.hasTranslationTime {
		d.avgTranslationInterval, d.hasAvgTranslationInterval = rollAverage(
			d.avgTranslationInterval, d.hasAvgTranslationInterval, t-d.lastTranslationUpdatedTime)
	}
	d.lastTranslationUpdatedTime = t
	d.hasTranslationTime = true
}

// SetLastRotationUpdatedTime is SetLastTranslationUpdatedTime for rotation.
func (d *DeadReckoningData) SetLastRotationUpdatedTime(t float64) {
	if d.hasRotationTime {
		d.avgRotationInterval, d.hasAvgRotationInterval = rollAverage(
			d.avgRotationInterval, d.hasAvgRotationInterval, t-d.lastRotationUpdatedTime)
	}
	d.lastRotationUpdatedTime = t
	d.hasRotationTime = true
}

func rollAverage(avg float64, has bool, interval float64) (float64, bool) {
	if !has {
		return interval, true
	}
	return 0.5 * (avg + interval), true
}

// EffectiveUpdateMode resolves Auto: remote entities are moved, locally
// authoritative ones are only calculated.
func (d *DeadReckoningData) EffectiveUpdateMode(isRemote bool) netconfig.UpdateMode {
	if d.UpdateMode != netconfig.UpdateModeAuto {
		return d.UpdateMode
	}
	if isRemote {
		return netconfig.UpdateModeCalculateAndMoveEntity
	}
	return netconfig.UpdateModeCalculateOnly
}

// ClearUpdatedFlags marks the current truth as consumed.
func (d *DeadReckoningData) ClearUpdatedFlags() {
	d.updated = false
	d.translationUpdated = false
	d.rotationUpdated = false
}

func (d *DeadReckoningData) IsUpdated() bool            { return d.updated }
func (d *DeadReckoningData) IsTranslationUpdated() bool { return d.translationUpdated }
func (d *DeadReckoningData) IsRotationUpdated() bool    { return d.rotationUpdated }

func (d *DeadReckoningData) LastKnownTranslation() mgl64.Vec3 { return d.lastTranslation }
func (d *DeadReckoningData) LastKnownRotation() mgl64.Vec3    { return d.lastRotation }

// LastKnownRotationMatrix returns the orientation truth as a rotation matrix.
func (d *DeadReckoningData) LastKnownRotationMatrix() mgl64.Mat3 {
	if d.lastRotationMatrix == (mgl64.Mat3{}) {
		return mgl64.Ident3()
	}
	return d.lastRotationMatrix
}

// LastKnownQuatRotation returns the orientation truth as a quaternion.
func (d *DeadReckoningData) LastKnownQuatRotation() mgl64.Quat {
	if d.lastQuatRotation == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return d.lastQuatRotation
}

func (d *DeadReckoningData) LastKnownVelocity() mgl64.Vec3        { return d.velocity }
func (d *DeadReckoningData) LastKnownAcceleration() mgl64.Vec3    { return d.acceleration }
func (d *DeadReckoningData) LastKnownAngularVelocity() mgl64.Vec3 { return d.angularVelocity }

func (d *DeadReckoningData) LastTranslationUpdatedTime() float64 { return d.lastTranslationUpdatedTime }
func (d *DeadReckoningData) LastRotationUpdatedTime() float64    { return d.lastRotationUpdatedTime }

// AverageTimeBetweenTranslationUpdates returns false until two timestamps
// have been recorded.
func (d *DeadReckoningData) AverageTimeBetweenTranslationUpdates() (float64, bool) {
	return d.avgTranslationInterval, d.hasAvgTranslationInterval
}

func (d *DeadReckoningData) AverageTimeBetweenRotationUpdates() (float64, bool) {
	return d.avgRotationInterval, d.hasAvgRotationInterval
}

func (d *DeadReckoningData) CurrentTranslation() mgl64.Vec3 { return d.Prediction.Translation }
func (d *DeadReckoningData) CurrentRotation() mgl64.Quat    { return d.Prediction.Rotation }

func (d *DeadReckoningData) CurrentTotalTranslationSmoothingSteps() int {
	return d.Prediction.TranslationSmoothing.Remaining
}

func (d *DeadReckoningData) CurrentTotalRotationSmoothingSteps() int {
	return d.Prediction.RotationSmoothing.Remaining
}

// AddArticulation appends a new articulated part.
func (d *DeadReckoningData) AddArticulation(name string, metric netconfig.ArticulationMetric, start, rate mgl64.Vec3) ArticulationHandle {
	return d.Articulations.PushBack(Articulation{
		Name:    name,
		Metric:  metric,
		Start:   start,
		Rate:    rate,
		Current: start,
	})
}

// UpdateArticulation restarts the first part named name from a fresh update,
// adding the part if it is not known yet.
func (d *DeadReckoningData) UpdateArticulation(name string, metric netconfig.ArticulationMetric, start, rate mgl64.Vec3) ArticulationHandle {
	d.updated = true
	if h, a, ok := d.Articulations.FindByName(name); ok {
		a.Metric = metric
		a.ResetOnNewUpdate(start, rate)
		return h
	}
	h := d.AddArticulation(name, metric, start, rate)
	if a, ok := d.Articulations.Get(h); ok {
		a.Updated = true
	}
	return h
}

func (d *DeadReckoningData) RemoveArticulation(h ArticulationHandle) bool {
	return d.Articulations.Remove(h)
}

func (d *DeadReckoningData) RemoveArticulationMatching(a Articulation) bool {
	return d.Articulations.RemoveMatching(a)
}

func (d *DeadReckoningData) RemoveAllArticulationsByName(name string) int {
	return d.Articulations.RemoveAllByName(name)
}
