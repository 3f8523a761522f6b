package wireframe

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wireframe/pkg/mesh"
)

// quad builds two triangles sharing the edge 1-2, with stable ids 10..13.
func quad(t *testing.T, indices mesh.Indices) *mesh.Mesh {
	t.Helper()
	m := mesh.New("quad", mesh.TriangleList)
	m.Indices = indices
	set := func(name string, v mesh.Values) {
		if err := m.SetAttribute(name, v); err != nil {
			t.Fatalf("SetAttribute(%s) failed: %v", name, err)
		}
	}
	set(mesh.AttrPosition, mesh.Float32x3([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}))
	set(mesh.AttrNormal, mesh.Float32x3([][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}))
	set(mesh.AttrStableID, mesh.Uint32([]uint32{10, 11, 12, 13}))
	return m
}

func withSkin(t *testing.T, m *mesh.Mesh) *mesh.Mesh {
	t.Helper()
	n := m.VertexCount()
	colors := make([][4]float32, n)
	joints := make([][4]uint16, n)
	weights := make([][4]float32, n)
	for i := 0; i < n; i++ {
		colors[i] = [4]float32{float32(i) / 4, 0.5, 1, 1}
		joints[i] = [4]uint16{uint16(i), uint16(i + 1), 0, 0}
		weights[i] = [4]float32{0.75, 0.25, 0, 0}
	}
	for name, v := range map[string]mesh.Values{
		mesh.AttrColor:        mesh.Float32x4(colors),
		mesh.AttrJointIndices: mesh.Uint16x4(joints),
		mesh.AttrJointWeights: mesh.Float32x4(weights),
	} {
		if err := m.SetAttribute(name, v); err != nil {
			t.Fatalf("SetAttribute(%s) failed: %v", name, err)
		}
	}
	return m
}

func endpoints(lines LineList) [][2]mgl32.Vec3 {
	out := make([][2]mgl32.Vec3, len(lines))
	for i, l := range lines {
		out[i] = [2]mgl32.Vec3{l[0].Position, l[1].Position}
	}
	return out
}

func TestExtractSingleTriangle(t *testing.T) {
	m := mesh.New("tri", mesh.TriangleList)
	m.SetAttribute(mesh.AttrPosition, mesh.Float32x3([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}))
	m.SetAttribute(mesh.AttrNormal, mesh.Float32x3([][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}))

	res, err := Extract(m, FullEdges(), Options{})
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if len(res.Lines) != 3 {
		t.Errorf("len(Lines) = %d, want 3", len(res.Lines))
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", res.Diagnostics)
	}
	if res.Mesh.Topology != mesh.LineList || res.Mesh.VertexCount() != 6 {
		t.Errorf("Mesh = %s with %d vertices, want LineList with 6", res.Mesh.Topology, res.Mesh.VertexCount())
	}
}

func TestExtractSharedEdge(t *testing.T) {
	tests := []struct {
		name    string
		indices mesh.Indices
	}{
		{"uint16", mesh.U16Indices([]uint16{0, 1, 2, 2, 1, 3})},
		{"uint32", mesh.U32Indices([]uint32{0, 1, 2, 2, 1, 3})},
	}
	want := [][2]mgl32.Vec3{
		{{0, 0, 0}, {1, 0, 0}},
		{{1, 0, 0}, {0, 1, 0}},
		{{0, 1, 0}, {0, 0, 0}},
		{{1, 0, 0}, {1, 1, 0}},
		{{1, 1, 0}, {0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(quad(t, tt.indices), FullEdges(), Options{})
			if err != nil {
				t.Fatalf("Extract() failed: %v", err)
			}
			if got := endpoints(res.Lines); !reflect.DeepEqual(got, want) {
				t.Errorf("lines = %v, want %v", got, want)
			}
		})
	}
}

func TestExtractNonIndexed(t *testing.T) {
	m := mesh.New("soup", mesh.TriangleList)
	// Two triangles sharing an edge, vertices duplicated per triangle.
	m.SetAttribute(mesh.AttrPosition, mesh.Float32x3([][3]float32{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0, 1, 0}, {1, 0, 0}, {1, 1, 0},
	}))

	res, err := Extract(m, FullEdges(), Options{})
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	// Edges are keyed by vertex slot, so the duplicated shared edge counts twice.
	if len(res.Lines) != 6 {
		t.Errorf("len(Lines) = %d, want 6", len(res.Lines))
	}
	if got := CountDiagnostics(res.Diagnostics, MissingAttribute); got != 1 {
		t.Errorf("MissingAttribute diagnostics = %d, want 1", got)
	}
	if res.Lines[0][0].Normal != (mgl32.Vec3{}) {
		t.Errorf("Normal = %v, want zero when the mesh has none", res.Lines[0][0].Normal)
	}
}

func TestExtractMalformedTriangles(t *testing.T) {
	tests := []struct {
		name      string
		indices   mesh.Indices
		wantLines int
		wantKind  DiagnosticKind
	}{
		{"trailing indices", mesh.U16Indices([]uint16{0, 1, 2, 2, 1, 3, 0}), 5, MalformedTriangleList},
		{"out of range", mesh.U32Indices([]uint32{0, 1, 9, 2, 1, 3}), 3, IndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(quad(t, tt.indices), FullEdges(), Options{})
			if err != nil {
				t.Fatalf("Extract() failed: %v", err)
			}
			if len(res.Lines) != tt.wantLines {
				t.Errorf("len(Lines) = %d, want %d", len(res.Lines), tt.wantLines)
			}
			if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != tt.wantKind {
				t.Errorf("Diagnostics = %v, want one %s", res.Diagnostics, tt.wantKind)
			}
		})
	}
}

func TestExtractRejectsLineTopology(t *testing.T) {
	m := quad(t, mesh.Indices{})
	m.Topology = mesh.LineList

	if _, err := Extract(m, FullEdges(), Options{}); !errors.Is(err, ErrUnsupportedTopology) {
		t.Errorf("Extract() error = %v, want ErrUnsupportedTopology", err)
	}
}

func TestExtractMissingPositions(t *testing.T) {
	m := mesh.New("empty", mesh.TriangleList)
	if _, err := Extract(m, FullEdges(), Options{}); !errors.Is(err, mesh.ErrMissingAttribute) {
		t.Errorf("Extract() error = %v, want ErrMissingAttribute", err)
	}
}

func TestExtractExternalEdges(t *testing.T) {
	indices := mesh.U16Indices([]uint16{0, 1, 2, 2, 1, 3})

	tests := []struct {
		name       string
		pairs      [][2]uint32
		want       [][2]mgl32.Vec3
		unresolved int
	}{
		{
			name:  "duplicate pair absorbed",
			pairs: [][2]uint32{{10, 11}, {11, 12}, {10, 11}},
			want: [][2]mgl32.Vec3{
				{{0, 0, 0}, {1, 0, 0}},
				{{1, 0, 0}, {0, 1, 0}},
			},
		},
		{
			name:  "reversed duplicate absorbed",
			pairs: [][2]uint32{{13, 10}, {10, 13}},
			want:  [][2]mgl32.Vec3{{{1, 1, 0}, {0, 0, 0}}},
		},
		{
			name:       "unknown id",
			pairs:      [][2]uint32{{10, 99}},
			want:       [][2]mgl32.Vec3{},
			unresolved: 1,
		},
		{
			name:       "unknown id does not affect others",
			pairs:      [][2]uint32{{98, 99}, {12, 13}},
			want:       [][2]mgl32.Vec3{{{0, 1, 0}, {1, 1, 0}}},
			unresolved: 1,
		},
		{
			name:  "self pair",
			pairs: [][2]uint32{{11, 11}},
			want:  [][2]mgl32.Vec3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(quad(t, indices), ExternalEdges(tt.pairs), Options{})
			if err != nil {
				t.Fatalf("Extract() failed: %v", err)
			}
			if got := endpoints(res.Lines); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %v, want %v", got, tt.want)
			}
			if got := CountDiagnostics(res.Diagnostics, UnresolvedEdgeID); got != tt.unresolved {
				t.Errorf("UnresolvedEdgeID diagnostics = %d, want %d", got, tt.unresolved)
			}
			if len(res.Diagnostics) != tt.unresolved {
				t.Errorf("Diagnostics = %v, want %d", res.Diagnostics, tt.unresolved)
			}
		})
	}
}

func TestExtractUnresolvedDiagnostic(t *testing.T) {
	res, err := Extract(quad(t, mesh.Indices{}), ExternalEdges([][2]uint32{{97, 10}, {98, 99}}), Options{})
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("len(Diagnostics) = %d, want 2", len(res.Diagnostics))
	}
	if got := res.Diagnostics[0].Missing; !reflect.DeepEqual(got, []uint32{97}) {
		t.Errorf("Missing = %v, want [97]", got)
	}
	if got := res.Diagnostics[1].Missing; !reflect.DeepEqual(got, []uint32{98, 99}) {
		t.Errorf("Missing = %v, want [98 99]", got)
	}
}

func TestExtractExternalNeedsStableIDs(t *testing.T) {
	m := quad(t, mesh.Indices{})
	m.RemoveAttribute(mesh.AttrStableID)

	_, err := Extract(m, ExternalEdges([][2]uint32{{10, 11}}), Options{})
	if !errors.Is(err, ErrNoStableIDAttribute) {
		t.Errorf("Extract() error = %v, want ErrNoStableIDAttribute", err)
	}

	// A custom attribute name is honoured.
	m.SetAttribute("_ID", mesh.Uint32([]uint32{10, 11, 12, 13}))
	res, err := Extract(m, ExternalEdges([][2]uint32{{10, 11}}), Options{StableIDAttribute: "_ID"})
	if err != nil {
		t.Fatalf("Extract(_ID) failed: %v", err)
	}
	if len(res.Lines) != 1 {
		t.Errorf("len(Lines) = %d, want 1", len(res.Lines))
	}
}

func TestExtractDoesNotModifySource(t *testing.T) {
	m := withSkin(t, quad(t, mesh.U16Indices([]uint16{0, 1, 2, 2, 1, 3})))
	before := m.Clone()

	if _, err := Extract(m, FullEdges(), Options{}); err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if !reflect.DeepEqual(m, before) {
		t.Error("Extract() modified the source mesh")
	}
}

func TestAssembleRoundTrip(t *testing.T) {
	m := withSkin(t, quad(t, mesh.U32Indices([]uint32{0, 1, 2, 2, 1, 3})))

	res, err := Extract(m, FullEdges(), Options{})
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	want := mesh.HasNormal | mesh.HasColor | mesh.HasJointIndices | mesh.HasJointWeights
	if res.Capabilities != want {
		t.Errorf("Capabilities = %s, want %s", res.Capabilities, want)
	}

	for _, name := range []string{mesh.AttrPosition, mesh.AttrNormal, mesh.AttrColor, mesh.AttrJointIndices, mesh.AttrJointWeights} {
		v, ok := res.Mesh.Attribute(name)
		if !ok {
			t.Errorf("output lacks %s", name)
			continue
		}
		if v.Len() != 2*len(res.Lines) {
			t.Errorf("len(%s) = %d, want %d", name, v.Len(), 2*len(res.Lines))
		}
	}
	if res.Mesh.HasAttribute(mesh.AttrStableID) {
		t.Error("output carries the stable id attribute")
	}

	lines, err := Disassemble(res.Mesh)
	if err != nil {
		t.Fatalf("Disassemble() failed: %v", err)
	}
	if !reflect.DeepEqual(lines, res.Lines) {
		t.Errorf("Disassemble() = %+v, want %+v", lines, res.Lines)
	}
}

func TestAssembleOmitsAbsentAttributes(t *testing.T) {
	res, err := Extract(quad(t, mesh.Indices{}), FullEdges(), Options{})
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	got := res.Mesh.AttributeNames()
	want := []string{mesh.AttrNormal, mesh.AttrPosition}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AttributeNames() = %v, want %v", got, want)
	}
}

func TestAssembleInconsistentVerts(t *testing.T) {
	colored := Vert{Position: mgl32.Vec3{0, 0, 0}, Present: mesh.HasColor}
	plain := Vert{Position: mgl32.Vec3{1, 0, 0}}

	tests := []struct {
		name  string
		lines LineList
		caps  mesh.Capabilities
	}{
		{"color requested, one end lacks it", LineList{{colored, plain}}, mesh.HasNormal | mesh.HasColor},
		{"color not requested, one end has it", LineList{{colored, plain}}, mesh.HasNormal},
		{"second line differs", LineList{{plain, plain}, {plain, colored}}, mesh.HasNormal},
		{"requested field absent everywhere", LineList{{plain, plain}}, mesh.HasNormal | mesh.HasColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assemble("bad", tt.lines, tt.caps); !errors.Is(err, ErrInconsistentAttributeLength) {
				t.Errorf("Assemble() error = %v, want ErrInconsistentAttributeLength", err)
			}
		})
	}
}

func TestAssembleUniformExtraField(t *testing.T) {
	lines := LineList{{
		{Position: mgl32.Vec3{0, 0, 0}, Present: mesh.HasColor},
		{Position: mgl32.Vec3{1, 0, 0}, Present: mesh.HasColor},
	}}
	out, err := Assemble("ok", lines, mesh.HasNormal)
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}
	if out.HasAttribute(mesh.AttrColor) {
		t.Error("COLOR_0 written although caps omit it")
	}
}

func TestAssembleEmpty(t *testing.T) {
	out, err := Assemble("empty", nil, mesh.HasNormal)
	if err != nil {
		t.Fatalf("Assemble(nil) failed: %v", err)
	}
	if out.VertexCount() != 0 {
		t.Errorf("VertexCount() = %d, want 0", out.VertexCount())
	}
}

func TestDisassembleOddCount(t *testing.T) {
	m := mesh.New("odd", mesh.LineList)
	m.SetAttribute(mesh.AttrPosition, mesh.Float32x3([][3]float32{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}))
	if _, err := Disassemble(m); !errors.Is(err, ErrOddVertexCount) {
		t.Errorf("Disassemble() error = %v, want ErrOddVertexCount", err)
	}
}
