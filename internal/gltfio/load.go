// Package gltfio moves meshes between glTF documents and the mesh
// container used by the wireframe pipeline.
package gltfio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/pkg/formats"
	"github.com/Faultbox/wireframe/pkg/mesh"
)

// Primitive is one glTF primitive loaded into a mesh.
type Primitive struct {
	Mesh *mesh.Mesh
	// MeshIndex and Index locate the primitive in the document.
	MeshIndex int
	Index     int
	// Nodes lists the nodes that instance the primitive's mesh.
	Nodes []int
	// Key is the selection key from node or mesh extras, empty if none.
	Key string
}

// Document is a loaded glTF document plus its pipeline view.
type Document struct {
	GLTF       *gltf.Document
	Primitives []*Primitive
	// Selections holds the edge selections found in scene extras.
	Selections *formats.SceneSelections
	// Skipped names the primitives that could not be loaded.
	Skipped []string

	log *zap.Logger
}

// Load opens a .gltf or .glb file.
func Load(path string, log *zap.Logger) (*Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return FromGLTF(doc, log)
}

// Decode reads a document from r. Buffers must be embedded.
func Decode(r io.Reader, log *zap.Logger) (*Document, error) {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode gltf")
	}
	return FromGLTF(doc, log)
}

// FromGLTF builds the pipeline view of doc. Primitives that are neither
// triangles nor lines, or that lack readable positions, are skipped.
func FromGLTF(doc *gltf.Document, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Document{GLTF: doc, log: log}

	sel, err := sceneSelections(doc)
	if err != nil {
		return nil, err
	}
	d.Selections = sel

	users := meshUsers(doc)
	for mi, m := range doc.Meshes {
		key := meshKey(doc, mi, users[mi], log)
		for pi, p := range m.Primitives {
			name := primitiveName(m, mi, pi)
			loaded, err := readPrimitive(doc, p, name, log)
			if err != nil {
				log.Warn("skipping primitive", zap.String("primitive", name), zap.Error(err))
				d.Skipped = append(d.Skipped, name)
				continue
			}
			d.Primitives = append(d.Primitives, &Primitive{
				Mesh:      loaded,
				MeshIndex: mi,
				Index:     pi,
				Nodes:     users[mi],
				Key:       key,
			})
		}
	}

	log.Debug("loaded gltf",
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("primitives", len(d.Primitives)),
		zap.Int("skipped", len(d.Skipped)),
		zap.Int("selections", len(d.Selections.Edges)))
	return d, nil
}

// Selection returns the edge selection for p, if the scene carries one.
func (d *Document) Selection(p *Primitive) (formats.Selection, bool) {
	if p.Key == "" {
		return nil, false
	}
	return d.Selections.Lookup(p.Key)
}

func primitiveName(m *gltf.Mesh, mi, pi int) string {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("mesh%d", mi)
	}
	if len(m.Primitives) > 1 {
		name = fmt.Sprintf("%s_p%d", name, pi)
	}
	return name
}

// meshUsers maps a mesh index to the nodes that reference it.
func meshUsers(doc *gltf.Document) map[int][]int {
	users := make(map[int][]int)
	for ni, n := range doc.Nodes {
		if n.Mesh != nil {
			users[int(*n.Mesh)] = append(users[int(*n.Mesh)], ni)
		}
	}
	return users
}

// meshKey finds the selection key on the first referencing node that has
// one, then on the mesh itself.
func meshKey(doc *gltf.Document, mi int, nodes []int, log *zap.Logger) string {
	candidates := make([]interface{}, 0, len(nodes)+1)
	for _, ni := range nodes {
		candidates = append(candidates, doc.Nodes[ni].Extras)
	}
	candidates = append(candidates, doc.Meshes[mi].Extras)

	for _, extras := range candidates {
		raw, ok := extrasJSON(extras)
		if !ok {
			continue
		}
		key, err := formats.PrimitiveKey(raw)
		if err == nil {
			return key
		}
		if !errors.Is(err, formats.ErrNoPrimitiveIndex) {
			log.Warn("ignoring primitive index", zap.Int("mesh", mi), zap.Error(err))
		}
	}
	return ""
}

// sceneSelections reads the selections of the default scene, or of the
// first scene that has any.
func sceneSelections(doc *gltf.Document) (*formats.SceneSelections, error) {
	order := make([]int, 0, len(doc.Scenes))
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		order = append(order, int(*doc.Scene))
	}
	for i := range doc.Scenes {
		order = append(order, i)
	}

	empty := &formats.SceneSelections{Edges: map[string]formats.Selection{}}
	for _, si := range order {
		raw, ok := extrasJSON(doc.Scenes[si].Extras)
		if !ok {
			continue
		}
		sel, err := formats.ParseSceneExtras(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "scene %d extras", si)
		}
		if len(sel.Edges) > 0 {
			return sel, nil
		}
	}
	return empty, nil
}

// extrasJSON re-encodes decoded extras so the formats parsers can read
// them whatever shape the decoder produced.
func extrasJSON(extras interface{}) ([]byte, bool) {
	if extras == nil {
		return nil, false
	}
	raw, err := json.Marshal(extras)
	if err != nil || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive, name string, log *zap.Logger) (*mesh.Mesh, error) {
	var topology mesh.Topology
	switch p.Mode {
	case gltf.PrimitiveTriangles:
		topology = mesh.TriangleList
	case gltf.PrimitiveLines:
		topology = mesh.LineList
	default:
		return nil, errors.Errorf("unsupported primitive mode %d", p.Mode)
	}

	posIdx, ok := p.Attributes[mesh.AttrPosition]
	if !ok {
		return nil, errors.Errorf("no %s attribute", mesh.AttrPosition)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", mesh.AttrPosition)
	}

	m := mesh.New(name, topology)
	if err := m.SetAttribute(mesh.AttrPosition, mesh.Float32x3(positions)); err != nil {
		return nil, err
	}

	if p.Indices != nil {
		acr := doc.Accessors[*p.Indices]
		indices, err := modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read indices")
		}
		m.Indices = toIndices(acr.ComponentType, indices)
	}

	for attr, acrIdx := range p.Attributes {
		if attr == mesh.AttrPosition {
			continue
		}
		acr := doc.Accessors[acrIdx]
		data, err := modeler.ReadAccessor(doc, acr, nil)
		if err != nil {
			log.Warn("failed to read attribute", zap.String("primitive", name), zap.String("attribute", attr), zap.Error(err))
			continue
		}
		values, ok := convert(attr, data, acr.Normalized)
		if !ok {
			log.Debug("attribute not carried", zap.String("primitive", name), zap.String("attribute", attr),
				zap.String("type", fmt.Sprintf("%T", data)))
			continue
		}
		if err := m.SetAttribute(attr, values); err != nil {
			log.Warn("attribute length mismatch", zap.String("primitive", name), zap.String("attribute", attr), zap.Error(err))
		}
	}
	return m, nil
}

func toIndices(ct gltf.ComponentType, indices []uint32) mesh.Indices {
	if ct == gltf.ComponentUbyte || ct == gltf.ComponentUshort {
		narrow := make([]uint16, len(indices))
		for i, v := range indices {
			narrow[i] = uint16(v)
		}
		return mesh.U16Indices(narrow)
	}
	return mesh.U32Indices(indices)
}

// convert maps accessor data onto the container's formats. Colours and
// weights become float vec4, joints become uint16x4, and scalars become
// float or uint32 ids.
func convert(attr string, data interface{}, normalized bool) (mesh.Values, bool) {
	switch {
	case strings.HasPrefix(attr, "COLOR_"):
		return convertVec4(data, true)
	case strings.HasPrefix(attr, "WEIGHTS_"):
		return convertVec4(data, normalized)
	case strings.HasPrefix(attr, "JOINTS_"):
		return convertJoints(data)
	}

	switch v := data.(type) {
	case [][3]float32:
		return mesh.Float32x3(v), true
	case [][4]float32:
		return mesh.Float32x4(v), true
	case []float32:
		return mesh.Float32(v), true
	case []uint32:
		return mesh.Uint32(v), true
	case []uint16:
		ids := make([]uint32, len(v))
		for i, x := range v {
			ids[i] = uint32(x)
		}
		return mesh.Uint32(ids), true
	case []uint8:
		ids := make([]uint32, len(v))
		for i, x := range v {
			ids[i] = uint32(x)
		}
		return mesh.Uint32(ids), true
	}
	return mesh.Values{}, false
}

func convertVec4(data interface{}, normalized bool) (mesh.Values, bool) {
	const u8, u16 = 255.0, 65535.0
	scale := func(max float32) float32 {
		if normalized {
			return 1 / max
		}
		return 1
	}

	var out [][4]float32
	switch v := data.(type) {
	case [][4]float32:
		return mesh.Float32x4(v), true
	case [][3]float32:
		out = make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{c[0], c[1], c[2], 1}
		}
	case [][4]uint8:
		s := scale(u8)
		out = make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) * s, float32(c[1]) * s, float32(c[2]) * s, float32(c[3]) * s}
		}
	case [][3]uint8:
		s := scale(u8)
		out = make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) * s, float32(c[1]) * s, float32(c[2]) * s, 1}
		}
	case [][4]uint16:
		s := scale(u16)
		out = make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) * s, float32(c[1]) * s, float32(c[2]) * s, float32(c[3]) * s}
		}
	case [][3]uint16:
		s := scale(u16)
		out = make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) * s, float32(c[1]) * s, float32(c[2]) * s, 1}
		}
	default:
		return mesh.Values{}, false
	}
	return mesh.Float32x4(out), true
}

func convertJoints(data interface{}) (mesh.Values, bool) {
	switch v := data.(type) {
	case [][4]uint16:
		return mesh.Uint16x4(v), true
	case [][4]uint8:
		out := make([][4]uint16, len(v))
		for i, j := range v {
			out[i] = [4]uint16{uint16(j[0]), uint16(j[1]), uint16(j[2]), uint16(j[3])}
		}
		return mesh.Uint16x4(out), true
	}
	return mesh.Values{}, false
}
