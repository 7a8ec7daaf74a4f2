package geometry

import (
	"cmp"
	"slices"

	"github.com/solarlune/resolv"

	"github.com/automoto/doomerang-nav/shared/leveldata"
	"github.com/automoto/doomerang-nav/tags"
)

const defaultCellSize = 16

// NewSpace builds a resolv.Space from parsed level data. Each object's Data
// holds its shape id: solid tiles first, then one-way platforms, matching
// FromCollisionData.
func NewSpace(data *leveldata.CollisionData) *resolv.Space {
	cellW, cellH := data.TileWidth, data.TileHeight
	if cellW <= 0 || cellH <= 0 {
		cellW, cellH = defaultCellSize, defaultCellSize
	}
	space := resolv.NewSpace(data.MapWidth, data.MapHeight, cellW, cellH)

	id := 0
	for _, r := range data.SolidRects {
		var obj *resolv.Object
		switch r.SlopeType {
		case tags.Slope45UpRight:
			obj = resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvRamp, tags.Slope45UpRight)
		case tags.Slope45UpLeft:
			obj = resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvRamp, tags.Slope45UpLeft)
		default:
			obj = resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvSolid)
		}
		obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
		obj.Data = id
		space.Add(obj)
		id++
	}

	for _, p := range data.Platforms {
		obj := resolv.NewObject(p.X, p.Y, p.W, p.H, tags.ResolvPlatform)
		obj.SetShape(resolv.NewRectangle(0, 0, p.W, p.H))
		obj.Data = id
		space.Add(obj)
		id++
	}

	return space
}

// FromSpace converts the tagged objects of a resolv space (pixels, Y down)
// into world shapes (Y up). scale converts pixels to world units and
// mapHeight is the space height in pixels. Objects without a solid,
// platform or ramp tag are ignored. An int in obj.Data is used as the shape
// id; other objects are numbered in the space's scan order. Shapes are
// returned sorted by id.
func FromSpace(space *resolv.Space, scale, mapHeight float64) []Shape {
	var shapes []Shape
	for i, obj := range space.Objects() {
		if id, ok := obj.Data.(int); ok {
			i = id
		}
		x, y, w, h := toWorld(obj.X, obj.Y, obj.W, obj.H, scale, mapHeight)
		switch {
		case obj.HasTags(tags.ResolvRamp) && obj.HasTags(tags.Slope45UpRight):
			shapes = append(shapes, SlopeShape(i, x, y, w, h, true))
		case obj.HasTags(tags.ResolvRamp) && obj.HasTags(tags.Slope45UpLeft):
			shapes = append(shapes, SlopeShape(i, x, y, w, h, false))
		case obj.HasTags(tags.ResolvPlatform):
			shapes = append(shapes, RectShape(i, x, y, w, h, true))
		case obj.HasTags(tags.ResolvSolid), obj.HasTags(tags.ResolvRamp):
			shapes = append(shapes, RectShape(i, x, y, w, h, false))
		}
	}
	slices.SortFunc(shapes, func(a, b Shape) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return shapes
}

// FromCollisionData converts level data straight to world shapes without
// going through a resolv space.
func FromCollisionData(data *leveldata.CollisionData, scale float64) []Shape {
	mapHeight := float64(data.MapHeight)
	shapes := make([]Shape, 0, len(data.SolidRects)+len(data.Platforms))
	for _, r := range data.SolidRects {
		id := len(shapes)
		x, y, w, h := toWorld(r.X, r.Y, r.W, r.H, scale, mapHeight)
		switch r.SlopeType {
		case tags.Slope45UpRight:
			shapes = append(shapes, SlopeShape(id, x, y, w, h, true))
		case tags.Slope45UpLeft:
			shapes = append(shapes, SlopeShape(id, x, y, w, h, false))
		default:
			shapes = append(shapes, RectShape(id, x, y, w, h, false))
		}
	}
	for _, p := range data.Platforms {
		x, y, w, h := toWorld(p.X, p.Y, p.W, p.H, scale, mapHeight)
		shapes = append(shapes, RectShape(len(shapes), x, y, w, h, true))
	}
	return shapes
}

// ToWorld converts a pixel position (Y down) to world units (Y up).
func ToWorld(px, py, scale, mapHeight float64) (x, y float64) {
	return px * scale, (mapHeight - py) * scale
}

func toWorld(px, py, pw, ph, scale, mapHeight float64) (x, y, w, h float64) {
	return px * scale, (mapHeight - py - ph) * scale, pw * scale, ph * scale
}
