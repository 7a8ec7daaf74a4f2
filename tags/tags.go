package tags

import "github.com/yohamta/donburi"

var (
	NavAgent = donburi.NewTag().SetName("NavAgent")
)

// Resolv tags for collision geometry
const (
	ResolvSolid    = "solid"
	ResolvPlatform = "platform" // one-way, can be dropped through
	ResolvRamp     = "ramp"

	// Slope type tags
	Slope45UpRight = "45_up_right"
	Slope45UpLeft  = "45_up_left"
)
