// Package torus rasterizes the rotating ASCII torus into a low-resolution glyph grid.
package torus

import (
	"errors"
	"fmt"
	"iter"

	"golang.org/x/exp/constraints"
)

// Sampling grid. Angles are integer counters scaled by sampleScale, so
// theta advances 0.1 rad and phi 0.03 rad per step.
const (
	sampleLimit = 628
	thetaStep   = 10
	phiStep     = 3
	sampleScale = 100.0
)

// Geometry holds the torus constants and the logical grid size for one render call.
type Geometry struct {
	R1     float64 // minor radius (cross-section circle)
	R2     float64 // major radius (distance to the axis of revolution)
	K2     float64 // viewer distance
	Width  int
	Height int
}

// DefaultGeometry returns R1=1, R2=2, K2=5 on an 80x60 grid.
func DefaultGeometry() Geometry {
	return Geometry{R1: 1, R2: 2, K2: 5, Width: 80, Height: 60}
}

// K1 is the projection scale. The outer edge of the torus (x = R1+R2, z = 0)
// lands 3/8 of the grid height away from the centre.
func (g Geometry) K1() float64 {
	return float64(g.Height) * g.K2 * 3 / (8 * (g.R1 + g.R2))
}

// Validate reports geometries the rasterizer cannot draw sensibly.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid %dx%d: dimensions must be positive", g.Width, g.Height)
	}
	if g.R1 <= 0 || g.R2 <= 0 {
		return errors.New("radii must be positive")
	}
	if g.K2 <= g.R1+g.R2 {
		return fmt.Errorf("viewer distance %.3g must exceed R1+R2 (%.3g) or depth can reach zero", g.K2, g.R1+g.R2)
	}
	return nil
}

// Index maps a projected point to its offset in the row-major grid.
// Points outside [0,Width)x[0,Height) are rejected, never clamped or wrapped.
func (g Geometry) Index(x, y int) (int, bool) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0, false
	}
	return x + g.Width*y, true
}

// Sample is a point on the torus surface before rotation.
type Sample struct {
	Theta float64 // around the cross-sectional circle
	Phi   float64 // around the axis of revolution
}

// Samples yields the fixed coarse sampling grid, theta in the outer loop.
func Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for t := 0; t < sampleLimit; t += thetaStep {
			for p := 0; p < sampleLimit; p += phiStep {
				if !yield(Sample{Theta: float64(t) / sampleScale, Phi: float64(p) / sampleScale}) {
					return
				}
			}
		}
	}
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
