package config

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/quasilyte/gdata"
)

const tunablesItem = "deadreckoning"

var logger = log.WithPrefix("config")

// itemStore is the part of gdata.Manager persistence needs.
type itemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

var store itemStore

// InitPersistence opens the gdata storage for appName. Failing to open it is
// logged and leaves persistence disabled.
func InitPersistence(appName string) error {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		logger.Warn("could not initialize persistence", "error", err)
		return err
	}
	store = m
	return nil
}

// SavedTunables is the dead reckoning tunables as stored on disk. Numeric
// fields are pointers because zero is a meaningful value for most of them; a
// missing field keeps the built in default.
type SavedTunables struct {
	HighResGroundClampingRange   *float64 `json:"highResGroundClampingRange,omitempty"`
	ForceClampTime               *float64 `json:"forceClampTime,omitempty"`
	MaxTranslationSmoothingSteps *int     `json:"maxTranslationSmoothingSteps,omitempty"`
	MaxRotationSmoothingSteps    *int     `json:"maxRotationSmoothingSteps,omitempty"`
	SmoothingCurve               string   `json:"smoothingCurve,omitempty"`
	ClampRayStartHeight          *float64 `json:"clampRayStartHeight,omitempty"`
}

// LoadTunables loads saved tunables. It returns nil when persistence is off
// or nothing was saved yet.
func LoadTunables() (*SavedTunables, error) {
	if store == nil {
		return nil, nil
	}

	data, err := store.LoadItem(tunablesItem)
	if err != nil {
		logger.Warn("could not load tunables", "error", err)
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	var saved SavedTunables
	if err := json.Unmarshal(data, &saved); err != nil {
		logger.Warn("could not parse saved tunables", "error", err)
		return nil, err
	}
	return &saved, nil
}

// SaveTunables stores the current DeadReckoning tunables.
func SaveTunables() error {
	if store == nil {
		return nil
	}

	current := DeadReckoning
	data, err := json.Marshal(SavedTunables{
		HighResGroundClampingRange:   &current.HighResGroundClampingRange,
		ForceClampTime:               &current.ForceClampTime,
		MaxTranslationSmoothingSteps: &current.MaxTranslationSmoothingSteps,
		MaxRotationSmoothingSteps:    &current.MaxRotationSmoothingSteps,
		SmoothingCurve:               current.SmoothingCurve,
		ClampRayStartHeight:          &current.ClampRayStartHeight,
	})
	if err != nil {
		logger.Warn("could not serialize tunables", "error", err)
		return err
	}

	if err := store.SaveItem(tunablesItem, data); err != nil {
		logger.Warn("could not save tunables", "error", err)
		return err
	}
	return nil
}

// ApplyTunables copies the set fields of saved over DeadReckoning. Negative
// values and unknown curves are ignored.
func ApplyTunables(saved *SavedTunables) {
	if saved == nil {
		return
	}
	applyTunable(&DeadReckoning.HighResGroundClampingRange, saved.HighResGroundClampingRange)
	applyTunable(&DeadReckoning.ForceClampTime, saved.ForceClampTime)
	applyTunable(&DeadReckoning.MaxTranslationSmoothingSteps, saved.MaxTranslationSmoothingSteps)
	applyTunable(&DeadReckoning.MaxRotationSmoothingSteps, saved.MaxRotationSmoothingSteps)
	applyTunable(&DeadReckoning.ClampRayStartHeight, saved.ClampRayStartHeight)
	if saved.SmoothingCurve == SmoothingLinear || saved.SmoothingCurve == SmoothingSine {
		DeadReckoning.SmoothingCurve = saved.SmoothingCurve
	}
}

func applyTunable[T int | float64](dst *T, saved *T) {
	if saved != nil && *saved >= 0 {
		*dst = *saved
	}
}
