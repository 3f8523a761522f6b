package gltfio

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/pkg/mesh"
	"github.com/Faultbox/wireframe/pkg/shading"
)

// WireframeSuffix is appended to the names of generated meshes and nodes.
const WireframeSuffix = "_wireframe"

// Placement controls where a line mesh is attached.
type Placement struct {
	// KeepSource leaves the triangle mesh on its node. Otherwise the
	// node loses its mesh, skin and morph weights, and only the line
	// mesh on the child node remains.
	KeepSource bool
	Material   shading.Material
}

// AddWireframe stores lines as a line-list mesh and attaches it under
// every node that instances the source primitive, copying the skin so
// skinning still applies. It returns the new mesh index.
func (d *Document) AddWireframe(p *Primitive, lines *mesh.Mesh, place Placement) (int, error) {
	if lines.Topology != mesh.LineList {
		return 0, errors.Errorf("wireframe %s has topology %s", lines.Name, lines.Topology)
	}
	if lines.VertexCount() == 0 {
		return 0, errors.Errorf("wireframe %s has no lines", lines.Name)
	}

	attrs, err := writeAttributes(d.GLTF, lines)
	if err != nil {
		return 0, errors.Wrapf(err, "wireframe %s", lines.Name)
	}

	doc := d.GLTF
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        lines.Name,
		DoubleSided: true,
		Extras:      place.Material.Extras(),
	})
	material := uint32(len(doc.Materials) - 1)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: lines.Name,
		Primitives: []*gltf.Primitive{{
			Mode:       gltf.PrimitiveLines,
			Attributes: attrs,
			Material:   gltf.Index(material),
		}},
	})
	meshIdx := len(doc.Meshes) - 1

	if len(p.Nodes) == 0 {
		d.addRootNode(lines.Name, meshIdx)
	}
	for _, ni := range p.Nodes {
		parent := doc.Nodes[ni]
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: fmt.Sprintf("%s%s", nodeName(parent, ni), WireframeSuffix),
			Mesh: gltf.Index(uint32(meshIdx)),
			Skin: parent.Skin,
		})
		parent.Children = append(parent.Children, uint32(len(doc.Nodes)-1))
		if !place.KeepSource {
			// skin and weights are only valid on a node with a mesh.
			parent.Mesh = nil
			parent.Skin = nil
			parent.Weights = nil
		}
	}

	d.log.Debug("added wireframe",
		zap.String("mesh", lines.Name),
		zap.Int("vertices", lines.VertexCount()),
		zap.Ints("nodes", p.Nodes))
	return meshIdx, nil
}

// UpdateAttributes copies the named attributes of p.Mesh back onto the
// source primitive, replacing existing accessors.
func (d *Document) UpdateAttributes(p *Primitive, names ...string) error {
	prim := d.GLTF.Meshes[p.MeshIndex].Primitives[p.Index]
	for _, name := range names {
		values, ok := p.Mesh.Attribute(name)
		if !ok {
			continue
		}
		idx, err := writeValues(d.GLTF, name, values)
		if err != nil {
			return errors.Wrapf(err, "primitive %s", p.Mesh.Name)
		}
		prim.Attributes[name] = idx
	}
	return nil
}

func (d *Document) addRootNode(name string, meshIdx int) {
	doc := d.GLTF
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(uint32(meshIdx))})
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	scene := 0
	if doc.Scene != nil {
		scene = int(*doc.Scene)
	}
	doc.Scenes[scene].Nodes = append(doc.Scenes[scene].Nodes, uint32(len(doc.Nodes)-1))
}

func nodeName(n *gltf.Node, idx int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node%d", idx)
}

func writeAttributes(doc *gltf.Document, m *mesh.Mesh) (map[string]uint32, error) {
	attrs := make(map[string]uint32)
	for _, name := range m.AttributeNames() {
		values, _ := m.Attribute(name)
		idx, err := writeValues(doc, name, values)
		if err != nil {
			return nil, err
		}
		attrs[name] = idx
	}
	return attrs, nil
}

// writeValues appends one attribute as a new accessor.
func writeValues(doc *gltf.Document, name string, values mesh.Values) (uint32, error) {
	switch name {
	case mesh.AttrPosition:
		if v, ok := values.AsFloat32x3(); ok {
			return modeler.WritePosition(doc, v), nil
		}
	case mesh.AttrNormal:
		if v, ok := values.AsFloat32x3(); ok {
			return modeler.WriteNormal(doc, v), nil
		}
	case mesh.AttrColor:
		if v, ok := values.AsFloat32x4(); ok {
			return modeler.WriteColor(doc, v), nil
		}
	case mesh.AttrJointIndices:
		if v, ok := values.AsUint16x4(); ok {
			return modeler.WriteJoints(doc, v), nil
		}
	case mesh.AttrJointWeights:
		if v, ok := values.AsFloat32x4(); ok {
			return modeler.WriteWeights(doc, v), nil
		}
	default:
		return writeGeneric(doc, values)
	}
	return 0, errors.Errorf("attribute %s has unexpected format %s", name, values.Format())
}

// writeGeneric stores custom attributes such as smoothed normals and
// stable ids.
func writeGeneric(doc *gltf.Document, values mesh.Values) (uint32, error) {
	switch values.Format() {
	case mesh.FormatFloat32:
		v, _ := values.AsFloat32()
		return modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, v), nil
	case mesh.FormatFloat32x3:
		v, _ := values.AsFloat32x3()
		return modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, v), nil
	case mesh.FormatFloat32x4:
		v, _ := values.AsFloat32x4()
		return modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, v), nil
	case mesh.FormatUint16x4:
		v, _ := values.AsUint16x4()
		return modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, v), nil
	case mesh.FormatUint32:
		v, _ := values.AsUint32()
		return modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, v), nil
	}
	return 0, errors.Errorf("unsupported format %s", values.Format())
}
