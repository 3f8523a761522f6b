package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// NormalizeOr returns v scaled to unit length, or fallback when v has
// zero or non-finite length.
func NormalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || !IsFinite(l) {
		return fallback
	}
	return v.Normalize()
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	return !gomath.IsNaN(float64(f)) && !gomath.IsInf(float64(f), 0)
}

// IsFiniteVec3 reports whether every component of v is finite.
func IsFiniteVec3(v mgl32.Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}
