package config

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultInstanceName identifies the dead reckoning manager in a simulation's
// component registry.
const DefaultInstanceName = "DeadReckoningComponent"

// Smoothing curves accepted by DeadReckoningConfig.SmoothingCurve
const (
	SmoothingLinear = "linear"
	SmoothingSine   = "sine"
)

// DeadReckoningConfig contains the dead reckoning manager tunables
type DeadReckoningConfig struct {
	HighResGroundClampingRange float64 // Eye distance under which three-point clamping is used
	ForceClampTime             float64 // Seconds between forced re-clamps of unchanged entities

	MaxTranslationSmoothingSteps int // Upper bound for a translation smoothing window, in ticks
	MaxRotationSmoothingSteps    int // Upper bound for a rotation smoothing window, in ticks
	SmoothingCurve               string

	ClampRayStartHeight float64    // Height above the entity the downward ray starts from
	ModelDimensions     mgl64.Vec3 // Default footprint (length, width, height)
}

// TerrainConfig contains heightfield defaults
type TerrainConfig struct {
	CellSize      float64 // World units per heightfield cell
	ElevationKey  string  // Tile property holding a tile's elevation
	LayerName     string  // TMX layer read as terrain
	ElevationStep float64 // World units per elevation property unit
}

// ServerConfig contains headless simulation host settings
type ServerConfig struct {
	TickRate       int
	DemoEntities   int
	UpdateInterval float64 // Seconds between synthetic remote updates
	UpdateJitter   float64 // Max random offset added to UpdateInterval
}

// CameraConfig contains viewer camera settings
type CameraConfig struct {
	FollowSmoothing float64 // Fraction of the remaining distance covered per tick
	FollowHeight    float64 // Height above the followed entity
}

// Global configuration instances
var DeadReckoning DeadReckoningConfig
var Terrain TerrainConfig
var Server ServerConfig
var Camera CameraConfig

func init() {
	DeadReckoning = DeadReckoningConfig{
		HighResGroundClampingRange: 100.0,
		ForceClampTime:             0.25,

		MaxTranslationSmoothingSteps: 8,
		MaxRotationSmoothingSteps:    8,
		SmoothingCurve:               SmoothingLinear,

		ClampRayStartHeight: 1000.0,
		ModelDimensions:     mgl64.Vec3{4, 2, 2},
	}

	Terrain = TerrainConfig{
		CellSize:      1.0,
		ElevationKey:  "elevation",
		LayerName:     "terrain",
		ElevationStep: 1.0,
	}

	Camera = CameraConfig{
		FollowSmoothing: 0.1,
		FollowHeight:    20.0,
	}

	Server = ServerConfig{
		TickRate:       60,
		DemoEntities:   8,
		UpdateInterval: 0.2,
		UpdateJitter:   0.05,
	}
}
