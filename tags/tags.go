package tags

import "github.com/yohamta/donburi"

var (
	// Remote marks entities whose authoritative state comes from another
	// participant. Entities without it are locally authoritative.
	Remote = donburi.NewTag().SetName("Remote")
	Viewer = donburi.NewTag().SetName("Viewer")
)

// Resolv tags for the terrain space
const (
	ResolvTerrain = "terrain"
	ResolvProbe   = "probe"
)
