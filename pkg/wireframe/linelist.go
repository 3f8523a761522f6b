package wireframe

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wireframe/pkg/mesh"
)

// optionalFields are the capabilities a Vert may carry beyond position
// and normal.
const optionalFields = mesh.HasColor | mesh.HasJointIndices | mesh.HasJointWeights

// Vert is a snapshot of one vertex's attributes.
type Vert struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
	Joints   [4]uint16
	Weights  mgl32.Vec4
	// Present marks which of Color, Joints and Weights hold data.
	Present mesh.Capabilities
}

// HasColor reports whether Color was captured.
func (v Vert) HasColor() bool { return v.Present.Has(mesh.HasColor) }

// HasJoints reports whether Joints was captured.
func (v Vert) HasJoints() bool { return v.Present.Has(mesh.HasJointIndices) }

// HasWeights reports whether Weights was captured.
func (v Vert) HasWeights() bool { return v.Present.Has(mesh.HasJointWeights) }

// Line is one retained edge, endpoints in discovery order.
type Line [2]Vert

// LineList is the ordered set of retained edges.
type LineList []Line

// snapshot captures vertex i from the view.
func snapshot(view *mesh.View, i uint32) Vert {
	v := Vert{
		Position: mgl32.Vec3(view.Positions[i]),
		Present:  view.Caps & optionalFields,
	}
	if view.Normals != nil {
		v.Normal = mgl32.Vec3(view.Normals[i])
	}
	if view.Colors != nil {
		v.Color = mgl32.Vec4(view.Colors[i])
	}
	if view.JointIndices != nil {
		v.Joints = view.JointIndices[i]
	}
	if view.JointWeights != nil {
		v.Weights = mgl32.Vec4(view.JointWeights[i])
	}
	return v
}

// lineBuilder appends a Line for every edge the EdgeSet accepts.
type lineBuilder struct {
	view  *mesh.View
	edges *EdgeSet
	lines LineList
}

func newLineBuilder(view *mesh.View, sizeHint int) *lineBuilder {
	return &lineBuilder{
		view:  view,
		edges: NewEdgeSet(sizeHint),
		lines: make(LineList, 0, sizeHint),
	}
}

// add emits (v1, v2) unless the edge was seen before. Callers guarantee
// both indices are in range.
func (b *lineBuilder) add(v1, v2 uint32) bool {
	if !b.edges.Propose(v1, v2) {
		return false
	}
	b.lines = append(b.lines, Line{snapshot(b.view, v1), snapshot(b.view, v2)})
	return true
}
