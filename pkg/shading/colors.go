package shading

import (
	"math/rand"

	randomdata "github.com/Pallinder/go-randomdata"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/pkg/math"
	"github.com/Faultbox/wireframe/pkg/mesh"
)

// ColorSource draws a fresh colour.
type ColorSource func() mgl32.Vec4

// RandomColor draws each RGB channel uniformly from [0, 1) with alpha 1,
// using the process-wide randomdata generator.
func RandomColor() mgl32.Vec4 {
	return mgl32.Vec4{
		float32(randomdata.Decimal(1)),
		float32(randomdata.Decimal(1)),
		float32(randomdata.Decimal(1)),
		1,
	}
}

// SeededColors reseeds the randomdata generator and returns RandomColor,
// so the colours drawn after the call are reproducible for a given seed.
// The generator is shared; concurrent callers interleave their draws.
func SeededColors(seed int64) ColorSource {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))
	return RandomColor
}

// AssignRandomColors returns one colour per vertex. Vertices whose
// positions agree within tolerance on every axis share a colour.
func AssignRandomColors(positions [][3]float32, tolerance float32, next ColorSource) [][4]float32 {
	if next == nil {
		next = RandomColor
	}
	table := math.NewPositionTable[mgl32.Vec4](tolerance)
	out := make([][4]float32, len(positions))
	for i, p := range positions {
		c, ok := table.Find(mgl32.Vec3(p))
		if !ok {
			c = next()
			table.Insert(mgl32.Vec3(p), c)
		}
		out[i] = c
	}
	return out
}

// ColorOptions configures ApplyRandomColors.
type ColorOptions struct {
	// Tolerance is the per-axis match distance; 0 means
	// math.DefaultPositionTolerance.
	Tolerance float32
	// Source draws new colours; nil means RandomColor.
	Source ColorSource
	// Force overwrites an existing Target attribute.
	Force bool
	// Target defaults to mesh.AttrColor.
	Target string
	Logger *zap.Logger
}

// ApplyRandomColors fills Target with spatially consistent random
// colours. It reports false without touching the mesh when Target
// already exists and Force is not set.
func ApplyRandomColors(m *mesh.Mesh, opts ColorOptions) (bool, error) {
	if opts.Target == "" {
		opts.Target = mesh.AttrColor
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if m.HasAttribute(opts.Target) && !opts.Force {
		log.Debug("mesh already has colours", zap.String("mesh", m.Name), zap.String("attribute", opts.Target))
		return false, nil
	}

	positions, err := mesh.Positions(m)
	if err != nil {
		return false, err
	}
	colors := AssignRandomColors(positions, opts.Tolerance, opts.Source)
	if err := m.SetAttribute(opts.Target, mesh.Float32x4(colors)); err != nil {
		return false, err
	}

	log.Debug("assigned random colours",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(positions)))
	return true, nil
}
