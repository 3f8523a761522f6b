package mesh

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingAttribute is returned when a mandatory attribute is absent or
// unreadable.
var ErrMissingAttribute = errors.New("mesh: missing attribute")

// Capabilities records which optional attributes a mesh provides.
type Capabilities uint8

// Capability flags.
const (
	HasNormal Capabilities = 1 << iota
	HasColor
	HasJointIndices
	HasJointWeights
	HasStableID
)

// Has reports whether every flag in f is set.
func (c Capabilities) Has(f Capabilities) bool {
	return c&f == f
}

// String lists the set flags, e.g. "normal|color".
func (c Capabilities) String() string {
	var parts []string
	for _, f := range []struct {
		flag Capabilities
		name string
	}{
		{HasNormal, "normal"},
		{HasColor, "color"},
		{HasJointIndices, "joints"},
		{HasJointWeights, "weights"},
		{HasStableID, "stable_id"},
	} {
		if c.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ReadOptions controls which attributes Read consults.
type ReadOptions struct {
	// NormalAttributes is tried in order; the first readable one wins.
	NormalAttributes []string
	// StableIDAttribute names the scalar stable-id attribute.
	StableIDAttribute string
	Logger            *zap.Logger
}

// DefaultNormalAttributes prefers smoothed normals over authored ones.
var DefaultNormalAttributes = []string{AttrSmoothNormal, AttrNormal}

func (o ReadOptions) withDefaults() ReadOptions {
	if len(o.NormalAttributes) == 0 {
		o.NormalAttributes = DefaultNormalAttributes
	}
	if o.StableIDAttribute == "" {
		o.StableIDAttribute = AttrStableID
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// View is a typed, length-checked snapshot of a mesh's attributes.
// Optional slices are nil when the attribute is absent or unreadable.
type View struct {
	Positions    [][3]float32
	Normals      [][3]float32
	Colors       [][4]float32
	JointIndices [][4]uint16
	JointWeights [][4]float32
	StableIDs    []uint32

	// NormalSource is the attribute the normals came from.
	NormalSource string
	// Rejected lists attributes that were present but had an
	// unexpected format or length.
	Rejected []string
	Caps     Capabilities
}

// Len returns the vertex count.
func (v *View) Len() int { return len(v.Positions) }

// Positions returns the mandatory position attribute.
func Positions(m *Mesh) ([][3]float32, error) {
	values, ok := m.Attribute(AttrPosition)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, AttrPosition)
	}
	positions, ok := values.AsFloat32x3()
	if !ok {
		return nil, fmt.Errorf("%w: %s has format %s", ErrMissingAttribute, AttrPosition, values.Format())
	}
	return positions, nil
}

// Read builds a View. Only a missing or mistyped position attribute is an
// error; optional attributes with the wrong format or length are logged
// and left out.
func Read(m *Mesh, opts ReadOptions) (*View, error) {
	opts = opts.withDefaults()
	positions, err := Positions(m)
	if err != nil {
		return nil, err
	}

	r := reader{mesh: m, n: len(positions), log: opts.Logger}
	v := &View{Positions: positions}

	for _, name := range opts.NormalAttributes {
		if normals, ok := optional(&r, name, Values.AsFloat32x3); ok {
			v.Normals = normals
			v.NormalSource = name
			v.Caps |= HasNormal
			break
		}
	}
	var ok bool
	if v.Colors, ok = optional(&r, AttrColor, Values.AsFloat32x4); ok {
		v.Caps |= HasColor
	}
	if v.JointIndices, ok = optional(&r, AttrJointIndices, Values.AsUint16x4); ok {
		v.Caps |= HasJointIndices
	}
	if v.JointWeights, ok = optional(&r, AttrJointWeights, Values.AsFloat32x4); ok {
		v.Caps |= HasJointWeights
	}
	if v.StableIDs, ok = r.stableIDs(opts.StableIDAttribute); ok {
		v.Caps |= HasStableID
	}
	v.Rejected = r.rejected
	return v, nil
}

type reader struct {
	mesh     *Mesh
	n        int
	log      *zap.Logger
	rejected []string
}

func (r *reader) reject(name string, reason string, fields ...zap.Field) {
	r.rejected = append(r.rejected, name)
	r.log.Warn("ignoring attribute: "+reason, append([]zap.Field{zap.String("attribute", name)}, fields...)...)
}

// optional returns the attribute as []T when it exists with the expected
// format and the vertex count.
func optional[T any](r *reader, name string, as func(Values) ([]T, bool)) ([]T, bool) {
	values, ok := r.mesh.Attribute(name)
	if !ok {
		r.log.Debug("attribute absent", zap.String("attribute", name))
		return nil, false
	}
	data, ok := as(values)
	if !ok {
		r.reject(name, "unexpected format", zap.Stringer("format", values.Format()))
		return nil, false
	}
	if len(data) != r.n {
		r.reject(name, "length mismatch", zap.Int("len", len(data)), zap.Int("vertices", r.n))
		return nil, false
	}
	return data, true
}

// stableIDs accepts scalar integer ids, or scalar floats truncated to
// integers.
func (r *reader) stableIDs(name string) ([]uint32, bool) {
	values, ok := r.mesh.Attribute(name)
	if !ok {
		r.log.Debug("attribute absent", zap.String("attribute", name))
		return nil, false
	}
	if values.Format() == FormatUint32 {
		return optional(r, name, Values.AsUint32)
	}
	floats, ok := optional(r, name, Values.AsFloat32)
	if !ok {
		return nil, false
	}
	ids := make([]uint32, len(floats))
	for i, f := range floats {
		if f < 0 || float64(f) >= 1<<32 || gomath.IsNaN(float64(f)) {
			r.reject(name, "stable id out of range", zap.Int("vertex", i), zap.Float32("value", f))
			return nil, false
		}
		ids[i] = uint32(f)
	}
	return ids, true
}
