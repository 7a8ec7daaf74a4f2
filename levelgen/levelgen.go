// Package levelgen builds deterministic platform layouts for benchmarks and
// the navtool CLI.
package levelgen

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/automoto/doomerang-nav/geometry"
)

// Options shapes a generated layout. Units are world units.
type Options struct {
	Platforms    int
	MinWidth     float64
	MaxWidth     float64
	MinGap       float64
	MaxGap       float64
	Thickness    float64
	HeightRange  float64 // Heights vary within ±HeightRange
	MaxStep      float64 // Largest height change between neighbours
	HeightSnap   float64
	OneWayEvery  int // Every nth platform is one-way, 0 disables
	LedgeEvery   int // Every nth platform gets a one-way ledge above it, 0 disables
	LedgeHeight  float64
	NoiseScale   float64
	NoiseAlpha   float64
	NoiseBeta    float64
	NoiseOctaves int32
}

// DefaultOptions returns a layout that the default jump limits can traverse.
func DefaultOptions() Options {
	return Options{
		Platforms:    40,
		MinWidth:     0.6,
		MaxWidth:     6,
		MinGap:       0.8,
		MaxGap:       3,
		Thickness:    0.5,
		HeightRange:  6,
		MaxStep:      2.5,
		HeightSnap:   0.25,
		OneWayEvery:  5,
		LedgeEvery:   4,
		LedgeHeight:  2.5,
		NoiseScale:   0.15,
		NoiseAlpha:   2,
		NoiseBeta:    2,
		NoiseOctaves: 3,
	}
}

// Generate lays out opts.Platforms platforms left to right. Heights follow 1D
// Perlin noise, widths and gaps come from a generator seeded with seed, so
// the same seed always yields the same shapes.
func Generate(seed int64, opts Options) []geometry.Shape {
	noise := perlin.NewPerlin(opts.NoiseAlpha, opts.NoiseBeta, opts.NoiseOctaves, seed)
	rng := rand.New(rand.NewSource(seed))

	shapes := make([]geometry.Shape, 0, opts.Platforms+opts.Platforms/max(opts.LedgeEvery, 1))
	x := 0.0
	prevY := 0.0
	for i := range opts.Platforms {
		w := opts.MinWidth + rng.Float64()*(opts.MaxWidth-opts.MinWidth)
		y := noise.Noise1D(float64(i)*opts.NoiseScale) * opts.HeightRange
		if i > 0 {
			y = max(prevY-opts.MaxStep, min(prevY+opts.MaxStep, y))
		}
		y = snap(y, opts.HeightSnap)

		oneWay := opts.OneWayEvery > 0 && i%opts.OneWayEvery == opts.OneWayEvery-1
		shapes = append(shapes, geometry.RectShape(len(shapes), x, y-opts.Thickness, w, opts.Thickness, oneWay))

		if opts.LedgeEvery > 0 && i%opts.LedgeEvery == opts.LedgeEvery-1 && w >= 2*opts.MinWidth {
			lw := w / 2
			shapes = append(shapes, geometry.RectShape(len(shapes), x+lw/2, y+opts.LedgeHeight-0.2, lw, 0.2, true))
		}

		prevY = y
		x += w + opts.MinGap + rng.Float64()*(opts.MaxGap-opts.MinGap)
	}
	return shapes
}

func snap(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
