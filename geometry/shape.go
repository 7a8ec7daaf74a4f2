// Package geometry turns static collision shapes into the flat top surfaces
// agents can stand on.
package geometry

import (
	"fmt"
	"slices"

	"github.com/automoto/doomerang-nav/shared/gamemath"
	"github.com/automoto/doomerang-nav/tags"
)

// Shape is one static collision outline in world units with Y up.
type Shape struct {
	ID     int
	Points []gamemath.Vec2
	OneWay bool   // Can be stood on and dropped through
	Tag    string // resolv tag the shape came from, informational
}

// RectShape returns an axis-aligned box whose bottom-left corner is (x, y).
func RectShape(id int, x, y, w, h float64, oneWay bool) Shape {
	tag := tags.ResolvSolid
	if oneWay {
		tag = tags.ResolvPlatform
	}
	return Shape{
		ID: id,
		Points: []gamemath.Vec2{
			gamemath.V(x, y),
			gamemath.V(x+w, y),
			gamemath.V(x+w, y+h),
			gamemath.V(x, y+h),
		},
		OneWay: oneWay,
		Tag:    tag,
	}
}

// SlopeShape returns a right triangle filling the box at (x, y). upRight
// slopes rise toward +X.
func SlopeShape(id int, x, y, w, h float64, upRight bool) Shape {
	s := Shape{ID: id, Tag: tags.ResolvRamp}
	if upRight {
		s.Points = []gamemath.Vec2{gamemath.V(x, y), gamemath.V(x+w, y), gamemath.V(x+w, y+h)}
	} else {
		s.Points = []gamemath.Vec2{gamemath.V(x, y), gamemath.V(x+w, y), gamemath.V(x, y+h)}
	}
	return s
}

// Bounds returns the axis-aligned box around the shape.
func (s Shape) Bounds() (lo, hi gamemath.Vec2) {
	return gamemath.Bounds(s.Points)
}

// Contains reports whether p is strictly inside the outline.
func (s Shape) Contains(p gamemath.Vec2) bool {
	return gamemath.PointInPolygon(s.Points, p)
}

// normalized returns a counter-clockwise copy of s, or an error when the
// outline is degenerate.
func (s Shape) normalized() (Shape, *GeometryError) {
	if len(s.Points) < 3 {
		return Shape{}, &GeometryError{ShapeID: s.ID, Reason: fmt.Sprintf("outline has %d points", len(s.Points))}
	}
	area := gamemath.SignedArea(s.Points)
	if area == 0 {
		return Shape{}, &GeometryError{ShapeID: s.ID, Reason: "outline has zero area"}
	}
	out := s
	out.Points = slices.Clone(s.Points)
	if area < 0 {
		slices.Reverse(out.Points)
	}
	return out, nil
}

// Surface is a walkable top span of one or more shapes.
type Surface struct {
	ID       int
	Left     float64
	Right    float64
	Y        float64
	ShapeID  int   // Owning shape, the leftmost when spans were merged
	ShapeIDs []int // Every shape that contributed to the span
	OneWay   bool
}

// Width returns Right - Left.
func (s Surface) Width() float64 {
	return s.Right - s.Left
}

// SpansX reports whether x lies within [Left, Right].
func (s Surface) SpansX(x float64) bool {
	return x >= s.Left && x <= s.Right
}

// HasShape reports whether shape id contributed to the surface.
func (s Surface) HasShape(id int) bool {
	return slices.Contains(s.ShapeIDs, id)
}

// GeometryError describes a shape that produced no usable top surface.
// Extraction records it and carries on.
type GeometryError struct {
	ShapeID int
	Reason  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("shape %d: %s", e.ShapeID, e.Reason)
}
