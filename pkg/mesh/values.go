package mesh

import "fmt"

// Format is the element type of an attribute.
type Format int

// Attribute formats.
const (
	FormatFloat32 Format = iota + 1
	FormatFloat32x3
	FormatFloat32x4
	FormatUint16x4
	FormatUint32
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatFloat32:
		return "Float32"
	case FormatFloat32x3:
		return "Float32x3"
	case FormatFloat32x4:
		return "Float32x4"
	case FormatUint16x4:
		return "Uint16x4"
	case FormatUint32:
		return "Uint32"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Values holds one attribute's per-vertex data. Only the slice that
// matches Format is populated.
type Values struct {
	format    Format
	float32   []float32
	float32x3 [][3]float32
	float32x4 [][4]float32
	uint16x4  [][4]uint16
	uint32    []uint32
}

// Float32 wraps scalar float data.
func Float32(data []float32) Values { return Values{format: FormatFloat32, float32: data} }

// Float32x3 wraps vec3 float data.
func Float32x3(data [][3]float32) Values { return Values{format: FormatFloat32x3, float32x3: data} }

// Float32x4 wraps vec4 float data.
func Float32x4(data [][4]float32) Values { return Values{format: FormatFloat32x4, float32x4: data} }

// Uint16x4 wraps quads of 16-bit integers.
func Uint16x4(data [][4]uint16) Values { return Values{format: FormatUint16x4, uint16x4: data} }

// Uint32 wraps scalar integer data.
func Uint32(data []uint32) Values { return Values{format: FormatUint32, uint32: data} }

// Format returns the element type.
func (v Values) Format() Format { return v.format }

// Len returns the number of elements.
func (v Values) Len() int {
	switch v.format {
	case FormatFloat32:
		return len(v.float32)
	case FormatFloat32x3:
		return len(v.float32x3)
	case FormatFloat32x4:
		return len(v.float32x4)
	case FormatUint16x4:
		return len(v.uint16x4)
	case FormatUint32:
		return len(v.uint32)
	}
	return 0
}

// AsFloat32 returns scalar float data if that is the stored format.
func (v Values) AsFloat32() ([]float32, bool) { return v.float32, v.format == FormatFloat32 }

// AsFloat32x3 returns vec3 data if that is the stored format.
func (v Values) AsFloat32x3() ([][3]float32, bool) {
	return v.float32x3, v.format == FormatFloat32x3
}

// AsFloat32x4 returns vec4 data if that is the stored format.
func (v Values) AsFloat32x4() ([][4]float32, bool) {
	return v.float32x4, v.format == FormatFloat32x4
}

// AsUint16x4 returns integer quads if that is the stored format.
func (v Values) AsUint16x4() ([][4]uint16, bool) { return v.uint16x4, v.format == FormatUint16x4 }

// AsUint32 returns scalar integer data if that is the stored format.
func (v Values) AsUint32() ([]uint32, bool) { return v.uint32, v.format == FormatUint32 }

// clone deep-copies the stored slice.
func (v Values) clone() Values {
	out := Values{format: v.format}
	switch v.format {
	case FormatFloat32:
		out.float32 = append([]float32(nil), v.float32...)
	case FormatFloat32x3:
		out.float32x3 = append([][3]float32(nil), v.float32x3...)
	case FormatFloat32x4:
		out.float32x4 = append([][4]float32(nil), v.float32x4...)
	case FormatUint16x4:
		out.uint16x4 = append([][4]uint16(nil), v.uint16x4...)
	case FormatUint32:
		out.uint32 = append([]uint32(nil), v.uint32...)
	}
	return out
}
