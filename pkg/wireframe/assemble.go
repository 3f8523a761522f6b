package wireframe

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wireframe/pkg/mesh"
)

// ErrOddVertexCount is returned by Disassemble for a line mesh that does
// not hold whole segments.
var ErrOddVertexCount = errors.New("wireframe: line mesh has an odd vertex count")

// Assemble flattens lines into a non-indexed line-list mesh, two vertices
// per line in line order. POSITION and NORMAL are always written; COLOR_0,
// JOINTS_0 and WEIGHTS_0 only when caps says the source mesh had them.
// Every Vert must carry the same optional fields.
func Assemble(name string, lines LineList, caps mesh.Capabilities) (*mesh.Mesh, error) {
	n := 2 * len(lines)
	positions := make([][3]float32, 0, n)
	normals := make([][3]float32, 0, n)

	var (
		colors  [][4]float32
		joints  [][4]uint16
		weights [][4]float32
	)
	wantColor := caps.Has(mesh.HasColor)
	wantJoints := caps.Has(mesh.HasJointIndices)
	wantWeights := caps.Has(mesh.HasJointWeights)
	if wantColor {
		colors = make([][4]float32, 0, n)
	}
	if wantJoints {
		joints = make([][4]uint16, 0, n)
	}
	if wantWeights {
		weights = make([][4]float32, 0, n)
	}

	var present mesh.Capabilities
	if len(lines) > 0 {
		present = lines[0][0].Present & optionalFields
	}
	for i, line := range lines {
		for end, v := range line {
			if got := v.Present & optionalFields; got != present {
				return nil, fmt.Errorf("%w: line %d end %d has %s, first vertex %s",
					ErrInconsistentAttributeLength, i, end, got, present)
			}
			if missing := (caps & optionalFields) &^ v.Present; missing != 0 {
				return nil, fmt.Errorf("%w: line %d end %d lacks %s",
					ErrInconsistentAttributeLength, i, end, missing)
			}
			positions = append(positions, v.Position)
			normals = append(normals, v.Normal)
			if wantColor {
				colors = append(colors, v.Color)
			}
			if wantJoints {
				joints = append(joints, v.Joints)
			}
			if wantWeights {
				weights = append(weights, v.Weights)
			}
		}
	}

	out := mesh.New(name, mesh.LineList)
	attrs := []struct {
		name   string
		values mesh.Values
		keep   bool
	}{
		{mesh.AttrPosition, mesh.Float32x3(positions), true},
		{mesh.AttrNormal, mesh.Float32x3(normals), true},
		{mesh.AttrColor, mesh.Float32x4(colors), wantColor},
		{mesh.AttrJointIndices, mesh.Uint16x4(joints), wantJoints},
		{mesh.AttrJointWeights, mesh.Float32x4(weights), wantWeights},
	}
	for _, a := range attrs {
		if !a.keep {
			continue
		}
		if err := out.SetAttribute(a.name, a.values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Disassemble rebuilds the line list from a mesh produced by Assemble:
// entries 2k and 2k+1 form line k.
func Disassemble(m *mesh.Mesh) (LineList, error) {
	view, err := mesh.Read(m, mesh.ReadOptions{NormalAttributes: []string{mesh.AttrNormal}})
	if err != nil {
		return nil, err
	}
	if view.Len()%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddVertexCount, view.Len())
	}

	lines := make(LineList, 0, view.Len()/2)
	for i := 0; i+1 < view.Len(); i += 2 {
		lines = append(lines, Line{snapshot(view, uint32(i)), snapshot(view, uint32(i+1))})
	}
	return lines, nil
}
