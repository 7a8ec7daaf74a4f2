package geometry

import (
	"cmp"
	"math"
	"slices"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

const probeEpsilon = 1e-9

// Probe positions along a candidate edge, as fractions of its length.
var probeTs = [...]float64{0.1, 0.3, 0.5, 0.7, 0.9}

// Extraction is the result of one extraction pass.
type Extraction struct {
	Surfaces []Surface
	Shapes   []Shape // Valid shapes, counter-clockwise, in input order
	Skipped  []GeometryError
}

type span struct {
	left, right, y float64
	shapeID        int
	oneWay         bool
}

// Extract finds the upward-facing spans of every shape. Shapes without a
// usable top face are reported in Skipped and otherwise ignored.
func Extract(shapes []Shape, cfg config.GeometryConfig) Extraction {
	var ex Extraction
	for _, s := range shapes {
		n, gerr := s.normalized()
		if gerr != nil {
			ex.Skipped = append(ex.Skipped, *gerr)
			continue
		}
		ex.Shapes = append(ex.Shapes, n)
	}

	var spans []span
	for i := range ex.Shapes {
		spans = append(spans, topSpans(ex.Shapes, i, cfg)...)
	}

	ex.Surfaces = mergeSpans(spans, cfg)
	ex.Surfaces = slices.DeleteFunc(ex.Surfaces, func(s Surface) bool {
		return s.Width() < cfg.MinSurfaceWidth
	})
	slices.SortFunc(ex.Surfaces, func(a, b Surface) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.Left, b.Left), cmp.Compare(a.ShapeID, b.ShapeID))
	})
	for i := range ex.Surfaces {
		ex.Surfaces[i].ID = i
	}

	used := make(map[int]bool, len(ex.Shapes))
	for _, s := range ex.Surfaces {
		for _, id := range s.ShapeIDs {
			used[id] = true
		}
	}
	for _, s := range ex.Shapes {
		if !used[s.ID] {
			ex.Skipped = append(ex.Skipped, GeometryError{ShapeID: s.ID, Reason: "no exposed top face"})
		}
	}
	return ex
}

// topSpans returns the exposed top spans of all[idx].
func topSpans(all []Shape, idx int, cfg config.GeometryConfig) []span {
	s := all[idx]
	var out []span
	for i := range s.Points {
		a := s.Points[i]
		b := s.Points[(i+1)%len(s.Points)]
		edge := b.Sub(a)
		l := edge.Len()
		if l == 0 {
			continue
		}
		// outward normal of a CCW edge is (edge.Y, -edge.X)
		ny := -edge.X / l
		if ny <= cfg.AmbiguousNormalThreshold {
			continue
		}
		if !probeAgrees(all, idx, a, b, ny > cfg.TopNormalThreshold, cfg.ProbeHeight) {
			continue
		}

		y := (a.Y + b.Y) / 2
		for _, part := range uncovered(all, idx, b.X, a.X, y, cfg.ProbeHeight) {
			out = append(out, span{left: part[0], right: part[1], y: y, shapeID: s.ID, oneWay: s.OneWay})
		}
	}
	return out
}

// probeAgrees confirms a candidate edge with short vertical probes. A steep
// normal needs one clear probe; an ambiguous one needs all of them.
func probeAgrees(all []Shape, idx int, a, b gamemath.Vec2, strong bool, height float64) bool {
	clear := 0
	for _, t := range probeTs {
		if probeClear(all, idx, a, b, a.Lerp(b, t), height) {
			clear++
		}
	}
	if strong {
		return clear > 0
	}
	return clear == len(probeTs)
}

// probeClear casts down from height above p and reports whether the first
// boundary it meets is the candidate edge ab.
func probeClear(all []Shape, idx int, a, b, p gamemath.Vec2, height float64) bool {
	top := p.Y + height
	start := gamemath.V(p.X, top)
	for j, s := range all {
		if s.Contains(start) {
			return false
		}
		for k := range s.Points {
			c := s.Points[k]
			d := s.Points[(k+1)%len(s.Points)]
			if j == idx && c == a && d == b {
				continue
			}
			if y, ok := gamemath.VerticalRayHit(c, d, p.X); ok && y > p.Y+probeEpsilon && y <= top {
				return false
			}
		}
	}
	return true
}

// uncovered removes from [left, right] every X range occupied by another
// shape within height above y.
func uncovered(all []Shape, idx int, left, right, y, height float64) [][2]float64 {
	parts := [][2]float64{{left, right}}
	for j, s := range all {
		if j == idx {
			continue
		}
		lo, hi := s.Bounds()
		if hi.Y <= y+probeEpsilon || lo.Y >= y+height {
			continue
		}
		if hi.X <= left || lo.X >= right {
			continue
		}
		parts = subtractInterval(parts, lo.X, hi.X)
		if len(parts) == 0 {
			break
		}
	}
	return parts
}

func subtractInterval(parts [][2]float64, lo, hi float64) [][2]float64 {
	out := parts[:0:0]
	for _, p := range parts {
		if hi <= p[0] || lo >= p[1] {
			out = append(out, p)
			continue
		}
		if lo > p[0] {
			out = append(out, [2]float64{p[0], lo})
		}
		if hi < p[1] {
			out = append(out, [2]float64{hi, p[1]})
		}
	}
	return out
}

// mergeSpans joins touching spans of equal height into surfaces. Without
// MergeCoplanar only spans of the same shape are joined.
func mergeSpans(spans []span, cfg config.GeometryConfig) []Surface {
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Or(cmp.Compare(a.y, b.y), cmp.Compare(a.left, b.left), cmp.Compare(a.shapeID, b.shapeID))
	})

	var out []Surface
	for start := 0; start < len(spans); {
		// band of spans whose height is within tolerance of the first
		end := start + 1
		for end < len(spans) && spans[end].y-spans[start].y <= cfg.MergeTolerance {
			end++
		}
		band := spans[start:end]
		slices.SortStableFunc(band, func(a, b span) int {
			return cmp.Or(cmp.Compare(a.left, b.left), cmp.Compare(a.shapeID, b.shapeID))
		})

		var cur []Surface
		for _, sp := range band {
			merged := false
			for i := range cur {
				c := &cur[i]
				if c.OneWay != sp.oneWay || sp.left > c.Right+cfg.MergeTolerance {
					continue
				}
				if !cfg.MergeCoplanar && c.ShapeID != sp.shapeID {
					continue
				}
				c.Right = math.Max(c.Right, sp.right)
				if !slices.Contains(c.ShapeIDs, sp.shapeID) {
					c.ShapeIDs = append(c.ShapeIDs, sp.shapeID)
				}
				merged = true
				break
			}
			if !merged {
				cur = append(cur, Surface{
					Left:     sp.left,
					Right:    sp.right,
					Y:        sp.y,
					ShapeID:  sp.shapeID,
					ShapeIDs: []int{sp.shapeID},
					OneWay:   sp.oneWay,
				})
			}
		}
		for i := range cur {
			slices.Sort(cur[i].ShapeIDs)
		}
		out = append(out, cur...)
		start = end
	}
	return out
}
