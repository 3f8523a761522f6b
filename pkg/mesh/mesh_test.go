package mesh

import (
	"errors"
	"reflect"
	"testing"
)

func triangle() *Mesh {
	m := New("tri", TriangleList)
	m.SetAttribute(AttrPosition, Float32x3([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}))
	m.SetAttribute(AttrNormal, Float32x3([][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}))
	return m
}

func TestSetAttributeLengthCheck(t *testing.T) {
	m := triangle()

	err := m.SetAttribute(AttrColor, Float32x4([][4]float32{{1, 1, 1, 1}}))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("SetAttribute(short color) error = %v, want ErrLengthMismatch", err)
	}
	if m.HasAttribute(AttrColor) {
		t.Error("rejected attribute was stored")
	}

	err = m.SetAttribute(AttrPosition, Float32x3([][3]float32{{0, 0, 0}}))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("SetAttribute(short positions) error = %v, want ErrLengthMismatch", err)
	}

	if err := m.SetAttribute("", Float32(nil)); !errors.Is(err, ErrEmptyName) {
		t.Errorf("SetAttribute(\"\") error = %v, want ErrEmptyName", err)
	}
}

func TestAttributeNamesSorted(t *testing.T) {
	m := triangle()
	m.SetAttribute(AttrStableID, Uint32([]uint32{1, 2, 3}))

	got := m.AttributeNames()
	want := []string{AttrNormal, AttrPosition, AttrStableID}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AttributeNames() = %v, want %v", got, want)
	}

	m.RemoveAttribute(AttrStableID)
	if m.HasAttribute(AttrStableID) {
		t.Error("RemoveAttribute did not remove")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := triangle()
	m.Indices = U16Indices([]uint16{0, 1, 2})

	c := m.Clone()
	positions, _ := c.Attribute(AttrPosition)
	data, _ := positions.AsFloat32x3()
	data[0] = [3]float32{9, 9, 9}
	c.Indices.U16[0] = 2

	orig, _ := Positions(m)
	if orig[0] != [3]float32{0, 0, 0} {
		t.Errorf("clone shares position storage: %v", orig[0])
	}
	if m.Indices.U16[0] != 0 {
		t.Error("clone shares index storage")
	}
	if c.VertexCount() != 3 || c.Name != "tri" {
		t.Errorf("clone lost data: count=%d name=%q", c.VertexCount(), c.Name)
	}
}

func TestIndices(t *testing.T) {
	tests := []struct {
		name string
		idx  Indices
		want []uint32
	}{
		{"none", Indices{}, nil},
		{"u16", U16Indices([]uint16{3, 1, 2}), []uint32{3, 1, 2}},
		{"u32", U32Indices([]uint32{70000, 0, 1}), []uint32{70000, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.idx.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", tt.idx.Len(), len(tt.want))
			}
			for i, w := range tt.want {
				if got := tt.idx.At(i); got != w {
					t.Errorf("At(%d) = %d, want %d", i, got, w)
				}
			}
		})
	}
}

func TestValuesFormat(t *testing.T) {
	v := Uint16x4([][4]uint16{{1, 2, 3, 4}})
	if v.Format() != FormatUint16x4 || v.Len() != 1 {
		t.Errorf("Uint16x4 values: format=%s len=%d", v.Format(), v.Len())
	}
	if _, ok := v.AsFloat32x4(); ok {
		t.Error("AsFloat32x4 accepted Uint16x4 data")
	}
	if got := Format(42).String(); got != "Format(42)" {
		t.Errorf("Format(42).String() = %q", got)
	}
}
