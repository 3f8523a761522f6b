// Package shading holds the passes that prepare a mesh's shading
// attributes before wireframe extraction: normal smoothing over
// duplicated vertices and the random debug colour fill.
package shading

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/pkg/math"
	"github.com/Faultbox/wireframe/pkg/mesh"
)

// SmoothNormals returns one normal per vertex, shared by every vertex in
// the same quantization bucket. Bucket normals are summed first and
// normalized once. A bucket whose sum has zero length keeps each
// vertex's own normal, as does a vertex with a non-finite position.
// normals must be as long as positions.
func SmoothNormals(positions, normals [][3]float32, scale float32) [][3]float32 {
	sums := make(map[math.SpatialKey]mgl32.Vec3, len(positions))
	keys := make([]math.SpatialKey, len(positions))
	finite := make([]bool, len(positions))
	for i, p := range positions {
		if !math.IsFiniteVec3(mgl32.Vec3(p)) {
			continue
		}
		key := math.Quantize(mgl32.Vec3(p), scale)
		keys[i] = key
		finite[i] = true
		sums[key] = sums[key].Add(mgl32.Vec3(normals[i]))
	}

	unit := make(map[math.SpatialKey]mgl32.Vec3, len(sums))
	for key, sum := range sums {
		// A zero vector marks a degenerate bucket.
		unit[key] = math.NormalizeOr(sum, mgl32.Vec3{})
	}

	out := make([][3]float32, len(positions))
	for i, key := range keys {
		n := unit[key]
		if !finite[i] || n == (mgl32.Vec3{}) {
			out[i] = normals[i]
			continue
		}
		out[i] = n
	}
	return out
}

// SmoothOptions configures ApplySmoothNormals.
type SmoothOptions struct {
	// Scale is the quantization factor; 0 means math.DefaultQuantizeScale.
	Scale float32
	// Source and Target default to mesh.AttrNormal. Writing to
	// mesh.AttrSmoothNormal keeps the authored normals intact.
	Source string
	Target string
	Logger *zap.Logger
}

// ApplySmoothNormals smooths the Source normals of m and stores them in
// Target. The mesh is modified in place.
func ApplySmoothNormals(m *mesh.Mesh, opts SmoothOptions) error {
	if opts.Source == "" {
		opts.Source = mesh.AttrNormal
	}
	if opts.Target == "" {
		opts.Target = mesh.AttrNormal
	}
	if opts.Scale <= 0 {
		opts.Scale = math.DefaultQuantizeScale
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	positions, err := mesh.Positions(m)
	if err != nil {
		return err
	}
	values, ok := m.Attribute(opts.Source)
	if !ok {
		return fmt.Errorf("%w: %s", mesh.ErrMissingAttribute, opts.Source)
	}
	normals, ok := values.AsFloat32x3()
	if !ok {
		return fmt.Errorf("%w: %s has format %s", mesh.ErrMissingAttribute, opts.Source, values.Format())
	}

	smoothed := SmoothNormals(positions, normals, opts.Scale)
	if err := m.SetAttribute(opts.Target, mesh.Float32x3(smoothed)); err != nil {
		return err
	}

	log.Debug("smoothed normals",
		zap.String("mesh", m.Name),
		zap.String("source", opts.Source),
		zap.String("target", opts.Target),
		zap.Int("vertices", len(positions)))
	return nil
}
