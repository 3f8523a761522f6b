package shading

import "github.com/go-gl/mathgl/mgl32"

// Material is the shading snapshot handed to the renderer together with
// each extracted line mesh. It is copied by value and never mutated by
// the pipeline.
type Material struct {
	LineColor             mgl32.Vec4
	FillColor             mgl32.Vec4
	OutlineWidth          float32
	WireframeDisplacement float32
	FillDisplacement      float32
	FillShininess         float32
	FillSpecularStrength  float32
}

// DefaultMaterial returns the stock line and fill parameters.
func DefaultMaterial() Material {
	return Material{
		LineColor:            mgl32.Vec4{1, 0.3, 1, 1},
		FillColor:            mgl32.Vec4{0, 0.3, 0, 1},
		OutlineWidth:         0.1,
		FillShininess:        250,
		FillSpecularStrength: 0.1,
	}
}

// Extras renders the snapshot as a JSON-friendly map for material
// metadata.
func (m Material) Extras() map[string]interface{} {
	return map[string]interface{}{
		"line_color":             [4]float32(m.LineColor),
		"fill_color":             [4]float32(m.FillColor),
		"outline_width":          m.OutlineWidth,
		"wireframe_displacement": m.WireframeDisplacement,
		"fill_displacement":      m.FillDisplacement,
		"fill_shininess":         m.FillShininess,
		"fill_specular_strength": m.FillSpecularStrength,
	}
}
