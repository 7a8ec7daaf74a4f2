// Package leveldata provides TMX level parsing shared by the navigation tools.
// It has no dependencies on resolv or donburi, only pure data.
package leveldata

// CollisionData holds all collision-relevant data parsed from a TMX level file.
// Coordinates are in pixels with Y growing downward, as in Tiled.
type CollisionData struct {
	Name        string
	SolidRects  []SolidRect
	Platforms   []PlatformRect
	SpawnPoints []SpawnPoint
	MapWidth    int
	MapHeight   int
	TileWidth   int
	TileHeight  int
}

// SolidRect represents a solid collision tile.
type SolidRect struct {
	X, Y, W, H float64
	SlopeType  string // "", "45_up_right", "45_up_left"
}

// PlatformRect is a one-way platform that can be stood on and dropped through.
type PlatformRect struct {
	X, Y, W, H float64
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}
