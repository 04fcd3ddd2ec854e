package systems

import (
	"math"

	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/config"
	"github.com/automoto/deadreckoning/shared/gamemath"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

func smoothingCurve(name string) ease.TweenFunc {
	if name == config.SmoothingSine {
		return ease.InOutSine
	}
	return ease.Linear
}

// smoothingSteps sizes a smoothing window to span the average gap between
// updates, so a correction is fully blended in by the time the next update is
// expected.
func smoothingSteps(avgInterval float64, haveAvg bool, dt float64, maxSteps int) int {
	if maxSteps <= 0 {
		return 0
	}
	if !haveAvg || avgInterval <= 0 || dt <= 0 {
		return maxSteps
	}
	return min(max(int(math.Ceil(avgInterval/dt)), 1), maxSteps)
}

// inMotion reports whether extrapolation would move the entity this tick
// without a new update.
func inMotion(dr *components.DeadReckoningData) bool {
	if !dr.Algorithm.Extrapolates() {
		return false
	}
	p := &dr.Prediction
	if p.TranslationSmoothing.Remaining > 0 || p.RotationSmoothing.Remaining > 0 {
		return true
	}
	moving := dr.LastKnownVelocity().Len() > gamemath.Epsilon ||
		dr.LastKnownAngularVelocity().Len() > gamemath.Epsilon
	if dr.Algorithm == netconfig.AlgorithmVelocityAndAcceleration {
		moving = moving || dr.LastKnownAcceleration().Len() > gamemath.Epsilon
	}
	return moving
}

// placeStatic puts the entity exactly on its last known pose.
func (m *DeadReckoningManager) placeStatic(dr *components.DeadReckoningData) {
	p := &dr.Prediction
	p.Translation = dr.LastKnownTranslation()
	p.Rotation = dr.LastKnownQuatRotation()
	p.Velocity = mgl64.Vec3{}
	p.Acceleration = mgl64.Vec3{}
	p.AngularVelocity = mgl64.Vec3{}
	p.TranslationSmoothing.Remaining = 0
	p.RotationSmoothing.Remaining = 0
}

// extrapolate projects the last known pose forward by the time since the
// matching update, blending in from the previous trajectory while a smoothing
// window is open.
func (m *DeadReckoningManager) extrapolate(dr *components.DeadReckoningData, dt float64) {
	p := &dr.Prediction

	vel := dr.LastKnownVelocity()
	var acc mgl64.Vec3
	if dr.Algorithm == netconfig.AlgorithmVelocityAndAcceleration {
		acc = dr.LastKnownAcceleration()
	}
	angVel := dr.LastKnownAngularVelocity()

	if p.Initialized && dr.IsTranslationUpdated() {
		avg, ok := dr.AverageTimeBetweenTranslationUpdates()
		steps := smoothingSteps(avg, ok, dt, dr.MaxTranslationSmoothingSteps)
		p.TranslationSmoothing = components.TranslationSmoothing{
			Remaining:        steps,
			Steps:            steps,
			Blend:            m.newBlend(steps),
			From:             p.Translation,
			FromVelocity:     p.Velocity,
			FromAcceleration: p.Acceleration,
		}
	} else if !p.Initialized {
		p.TranslationSmoothing.Remaining = 0
	}

	if p.Initialized && dr.IsRotationUpdated() {
		avg, ok := dr.AverageTimeBetweenRotationUpdates()
		steps := smoothingSteps(avg, ok, dt, dr.MaxRotationSmoothingSteps)
		p.RotationSmoothing = components.RotationSmoothing{
			Remaining:           steps,
			Steps:               steps,
			Blend:               m.newBlend(steps),
			From:                p.Rotation,
			FromAngularVelocity: p.AngularVelocity,
		}
	} else if !p.Initialized {
		p.RotationSmoothing.Remaining = 0
	}

	translation := gamemath.ExtrapolateTranslation(dr.LastKnownTranslation(), vel, acc, p.TranslationElapsed)
	if ts := &p.TranslationSmoothing; ts.Remaining > 0 {
		alpha := stepBlend(ts.Blend)
		ts.Remaining--
		if ts.Remaining > 0 {
			old := gamemath.ExtrapolateTranslation(ts.From, ts.FromVelocity, ts.FromAcceleration, p.TranslationElapsed)
			translation = gamemath.LerpVec3(old, translation, alpha)
		}
	}

	rotation := gamemath.IntegrateAngular(dr.LastKnownQuatRotation(), angVel, p.RotationElapsed)
	if rs := &p.RotationSmoothing; rs.Remaining > 0 {
		alpha := stepBlend(rs.Blend)
		rs.Remaining--
		if rs.Remaining > 0 {
			old := gamemath.IntegrateAngular(rs.From, rs.FromAngularVelocity, p.RotationElapsed)
			if old.Dot(rotation) < 0 {
				// shortest arc
				rotation = rotation.Scale(-1)
			}
			rotation = mgl64.QuatSlerp(old, rotation, alpha).Normalize()
		}
	}

	p.Translation = translation
	p.Rotation = rotation
	p.Velocity = vel
	p.Acceleration = acc
	p.AngularVelocity = angVel
}

// newBlend returns a 0→1 tween over steps ticks. nil means snap.
func (m *DeadReckoningManager) newBlend(steps int) *gween.Tween {
	if steps <= 0 {
		return nil
	}
	return gween.New(0, 1, float32(steps), m.curve)
}

func stepBlend(t *gween.Tween) float64 {
	if t == nil {
		return 1
	}
	v, _ := t.Update(1)
	return float64(v)
}
