// Package math provides spatial helpers for mesh processing.
// Vectors are mgl32 types; this package adds the tolerance-based
// comparisons and quantization that treat near-coincident vertices
// as the same point.
package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultQuantizeScale maps positions onto a 0.001 unit grid.
const DefaultQuantizeScale float32 = 1000

// DefaultPositionTolerance is the per-axis distance under which two
// positions are considered equal.
const DefaultPositionTolerance float32 = 1e-5

// SpatialKey identifies one quantization bucket.
type SpatialKey [3]int32

// Quantize scales p by scale and rounds each axis independently,
// halves away from zero. A non-positive scale falls back to
// DefaultQuantizeScale. Axes beyond the int32 range saturate and NaN
// maps to 0; callers that care filter with IsFiniteVec3 first.
func Quantize(p mgl32.Vec3, scale float32) SpatialKey {
	if scale <= 0 {
		scale = DefaultQuantizeScale
	}
	return SpatialKey{
		roundAxis(p[0] * scale),
		roundAxis(p[1] * scale),
		roundAxis(p[2] * scale),
	}
}

func roundAxis(v float32) int32 {
	r := gomath.Round(float64(v))
	switch {
	case gomath.IsNaN(r):
		return 0
	case r >= gomath.MaxInt32:
		return gomath.MaxInt32
	case r <= gomath.MinInt32:
		return gomath.MinInt32
	}
	return int32(r)
}

// ApproxEqual reports whether every axis of a and b differs by less
// than tolerance.
func ApproxEqual(a, b mgl32.Vec3, tolerance float32) bool {
	return a.ApproxFuncEqual(b, func(x, y float32) bool {
		return mgl32.Abs(x-y) < tolerance
	})
}

// PositionTable is a running list of distinct positions, each paired
// with a value. Lookup is linear in the number of distinct positions.
type PositionTable[T any] struct {
	tolerance float32
	positions []mgl32.Vec3
	values    []T
}

// NewPositionTable creates an empty table. A non-positive tolerance
// falls back to DefaultPositionTolerance.
func NewPositionTable[T any](tolerance float32) *PositionTable[T] {
	if tolerance <= 0 {
		tolerance = DefaultPositionTolerance
	}
	return &PositionTable[T]{tolerance: tolerance}
}

// Find returns the value recorded for the first position approximately
// equal to p.
func (t *PositionTable[T]) Find(p mgl32.Vec3) (T, bool) {
	for i, q := range t.positions {
		if ApproxEqual(q, p, t.tolerance) {
			return t.values[i], true
		}
	}
	var zero T
	return zero, false
}

// Insert records value for p without checking for an existing match.
func (t *PositionTable[T]) Insert(p mgl32.Vec3, value T) {
	t.positions = append(t.positions, p)
	t.values = append(t.values, value)
}
