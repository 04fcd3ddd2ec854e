package protocol

import (
	"github.com/automoto/deadreckoning/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDEntityUpdate uint = 20
)

// RegisterComponents registers the dead reckoning update payload with necs for
// serialization. It must be called before any network operations.
//
// Updates are not interpolated by necs; smoothing is owned by the dead
// reckoning manager.
func RegisterComponents() error {
	return esync.RegisterComponent(
		SyncIDEntityUpdate,
		netcomponents.EntityUpdateData{},
		netcomponents.EntityUpdate,
	)
}
