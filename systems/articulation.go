package systems

import (
	"github.com/automoto/deadreckoning/components"
	"github.com/automoto/deadreckoning/shared/gamemath"
)

// applyArticulations advances each articulated part and drives its model
// node. Parts without a node are still advanced.
func applyArticulations(dr *components.DeadReckoningData, dt float64) {
	for _, a := range dr.Articulations.All() {
		a.Advance(dt)

		if dr.Nodes == nil {
			continue
		}
		node, ok := dr.Nodes.Resolve(a.Name)
		if !ok {
			continue
		}
		if a.Metric.Angular() {
			node.SetLocalRotation(gamemath.HPRToQuat(a.Current))
		} else {
			node.SetLocalTranslation(a.Current)
		}
	}
}
