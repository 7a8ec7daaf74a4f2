package gamemath

import "math"

// SignedArea returns the polygon area, positive for counter-clockwise winding.
func SignedArea(pts []Vec2) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		sum += a.Cross(b)
	}
	return sum / 2
}

func orientation(a, b, c Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p Vec2) bool {
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}

// SegmentsIntersect reports whether segments ab and cd share any point.
func SegmentsIntersect(a, b, c, d Vec2) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)

	if ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0)) {
		return true
	}
	switch {
	case o1 == 0 && onSegment(a, b, c):
		return true
	case o2 == 0 && onSegment(a, b, d):
		return true
	case o3 == 0 && onSegment(c, d, a):
		return true
	case o4 == 0 && onSegment(c, d, b):
		return true
	}
	return false
}

// SegmentCrossesPolygon reports whether ab touches any edge of poly.
func SegmentCrossesPolygon(a, b Vec2, poly []Vec2) bool {
	for i := range poly {
		if SegmentsIntersect(a, b, poly[i], poly[(i+1)%len(poly)]) {
			return true
		}
	}
	return false
}

// VerticalRayHit returns the Y where the vertical line at x crosses segment ab.
// Vertical segments never report a hit.
func VerticalRayHit(a, b Vec2, x float64) (float64, bool) {
	if a.X == b.X {
		return 0, false
	}
	if x < min(a.X, b.X) || x > max(a.X, b.X) {
		return 0, false
	}
	t := (x - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*t, true
}

// DistanceToSegment returns the distance from p to segment ab.
func DistanceToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ClampFloat(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// DistanceToPolyline returns the distance from p to the nearest segment of pts.
func DistanceToPolyline(p Vec2, pts []Vec2) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Dist(pts[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = min(best, DistanceToSegment(p, pts[i-1], pts[i]))
	}
	return best
}

// Bounds returns the axis-aligned bounding box of pts.
func Bounds(pts []Vec2) (lo, hi Vec2) {
	if len(pts) == 0 {
		return Vec2{}, Vec2{}
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi
}

// PointInPolygon reports whether p lies strictly inside poly, using an
// even-odd crossing count so concave outlines work too.
func PointInPolygon(poly []Vec2, p Vec2) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
