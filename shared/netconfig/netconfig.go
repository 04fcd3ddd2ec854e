// Package netconfig defines lightweight types shared between the update intake
// and the dead reckoning systems. It must have zero dependencies on the ECS so
// wire payloads can carry these values directly.
package netconfig

import "fmt"

// Algorithm selects how an entity's pose is predicted between updates.
type Algorithm int

const (
	AlgorithmNone Algorithm = iota
	AlgorithmStatic
	AlgorithmVelocityOnly
	AlgorithmVelocityAndAcceleration
)

var algorithmNames = map[Algorithm]string{
	AlgorithmNone:                    "none",
	AlgorithmStatic:                  "static",
	AlgorithmVelocityOnly:            "velocity_only",
	AlgorithmVelocityAndAcceleration: "velocity_and_acceleration",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return "unknown"
}

// Extrapolates reports whether the algorithm integrates velocity.
func (a Algorithm) Extrapolates() bool {
	return a == AlgorithmVelocityOnly || a == AlgorithmVelocityAndAcceleration
}

// ParseAlgorithm maps a name produced by Algorithm.String back to its value.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if name == s {
			return a, nil
		}
	}
	return AlgorithmNone, fmt.Errorf("unknown dead reckoning algorithm %q", s)
}

// UpdateMode selects whether a computed pose is written back to the entity.
type UpdateMode int

const (
	UpdateModeAuto UpdateMode = iota
	UpdateModeCalculateOnly
	UpdateModeCalculateAndMoveEntity
)

var updateModeNames = map[UpdateMode]string{
	UpdateModeAuto:                   "auto",
	UpdateModeCalculateOnly:          "calculate_only",
	UpdateModeCalculateAndMoveEntity: "calculate_and_move_entity",
}

func (m UpdateMode) String() string {
	if name, ok := updateModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseUpdateMode maps a name produced by UpdateMode.String back to its value.
func ParseUpdateMode(s string) (UpdateMode, error) {
	for m, name := range updateModeNames {
		if name == s {
			return m, nil
		}
	}
	return UpdateModeAuto, fmt.Errorf("unknown dead reckoning update mode %q", s)
}

// ArticulationMetric identifies which degree of freedom an articulated part
// represents. Position-like metrics move the part, the rest rotate it.
type ArticulationMetric int

const (
	MetricPosition ArticulationMetric = iota
	MetricExtension
	MetricX
	MetricY
	MetricZ
	MetricAzimuth
	MetricElevation
	MetricRotation
)

var metricNames = map[ArticulationMetric]string{
	MetricPosition:  "position",
	MetricExtension: "extension",
	MetricX:         "x",
	MetricY:         "y",
	MetricZ:         "z",
	MetricAzimuth:   "azimuth",
	MetricElevation: "elevation",
	MetricRotation:  "rotation",
}

func (m ArticulationMetric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return "unknown"
}

// Angular reports whether the metric integrates as an angle.
func (m ArticulationMetric) Angular() bool {
	return m == MetricAzimuth || m == MetricElevation || m == MetricRotation
}
