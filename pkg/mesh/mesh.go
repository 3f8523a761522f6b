// Package mesh provides the generic per-vertex attribute container read by
// the wireframe pipeline, and a typed view over it.
package mesh

import (
	"errors"
	"fmt"
	"sort"
)

// Standard attribute names. They follow glTF semantics so loaders can map
// accessors one to one.
const (
	AttrPosition     = "POSITION"
	AttrNormal       = "NORMAL"
	AttrColor        = "COLOR_0"
	AttrJointIndices = "JOINTS_0"
	AttrJointWeights = "WEIGHTS_0"
	AttrSmoothNormal = "_SMOOTH_NORMAL"
	AttrStableID     = "_VERT_INDEX"
)

// Container errors.
var (
	ErrLengthMismatch = errors.New("mesh: attribute length does not match vertex count")
	ErrEmptyName      = errors.New("mesh: empty attribute name")
)

// Topology is the primitive assembly mode.
type Topology int

// Topologies.
const (
	TriangleList Topology = iota
	LineList
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "TriangleList"
	case LineList:
		return "LineList"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// IndexFormat describes the shape of the index buffer.
type IndexFormat int

// Index formats. IndexNone means vertices are consumed in order.
const (
	IndexNone IndexFormat = iota
	IndexUint16
	IndexUint32
)

// Indices is an optional index buffer.
type Indices struct {
	Format IndexFormat
	U16    []uint16
	U32    []uint32
}

// U16Indices wraps a 16-bit index buffer.
func U16Indices(idx []uint16) Indices { return Indices{Format: IndexUint16, U16: idx} }

// U32Indices wraps a 32-bit index buffer.
func U32Indices(idx []uint32) Indices { return Indices{Format: IndexUint32, U32: idx} }

// Len returns the number of indices, 0 for IndexNone.
func (i Indices) Len() int {
	switch i.Format {
	case IndexUint16:
		return len(i.U16)
	case IndexUint32:
		return len(i.U32)
	}
	return 0
}

// At returns the n-th index widened to uint32.
func (i Indices) At(n int) uint32 {
	if i.Format == IndexUint16 {
		return uint32(i.U16[n])
	}
	return i.U32[n]
}

// Mesh is a set of named per-vertex attributes plus optional topology
// data. All attributes share the vertex count of AttrPosition.
type Mesh struct {
	Name     string
	Topology Topology
	Indices  Indices

	attributes map[string]Values
}

// New creates an empty mesh.
func New(name string, topology Topology) *Mesh {
	return &Mesh{
		Name:       name,
		Topology:   topology,
		attributes: make(map[string]Values),
	}
}

// Attribute returns the named attribute.
func (m *Mesh) Attribute(name string) (Values, bool) {
	v, ok := m.attributes[name]
	return v, ok
}

// HasAttribute reports whether the named attribute exists.
func (m *Mesh) HasAttribute(name string) bool {
	_, ok := m.attributes[name]
	return ok
}

// SetAttribute inserts or replaces an attribute. Its length must match the
// vertex count once positions exist; replacing positions requires every
// other attribute to keep matching.
func (m *Mesh) SetAttribute(name string, v Values) error {
	if name == "" {
		return ErrEmptyName
	}
	if m.attributes == nil {
		m.attributes = make(map[string]Values)
	}
	if name == AttrPosition {
		for other, values := range m.attributes {
			if other != AttrPosition && values.Len() != v.Len() {
				return fmt.Errorf("%w: %s has %d elements, positions %d",
					ErrLengthMismatch, other, values.Len(), v.Len())
			}
		}
	} else if pos, ok := m.attributes[AttrPosition]; ok && pos.Len() != v.Len() {
		return fmt.Errorf("%w: %s has %d elements, positions %d",
			ErrLengthMismatch, name, v.Len(), pos.Len())
	}
	m.attributes[name] = v
	return nil
}

// RemoveAttribute deletes the named attribute if present.
func (m *Mesh) RemoveAttribute(name string) {
	delete(m.attributes, name)
}

// AttributeNames returns attribute names in sorted order.
func (m *Mesh) AttributeNames() []string {
	names := make([]string, 0, len(m.attributes))
	for name := range m.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VertexCount returns the number of positions, 0 if none are set.
func (m *Mesh) VertexCount() int {
	return m.attributes[AttrPosition].Len()
}

// Clone returns a deep copy, safe to mutate independently.
func (m *Mesh) Clone() *Mesh {
	out := New(m.Name, m.Topology)
	out.Indices = Indices{
		Format: m.Indices.Format,
		U16:    append([]uint16(nil), m.Indices.U16...),
		U32:    append([]uint32(nil), m.Indices.U32...),
	}
	for name, v := range m.attributes {
		out.attributes[name] = v.clone()
	}
	return out
}
