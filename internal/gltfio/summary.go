package gltfio

import (
	"github.com/Faultbox/wireframe/pkg/mesh"
)

// PrimitiveSummary describes one loaded primitive.
type PrimitiveSummary struct {
	Name         string   `json:"name"`
	Mesh         int      `json:"mesh"`
	Primitive    int      `json:"primitive"`
	Topology     string   `json:"topology"`
	Vertices     int      `json:"vertices"`
	Indices      int      `json:"indices"`
	Attributes   []string `json:"attributes"`
	Capabilities string   `json:"capabilities"`
	NormalSource string   `json:"normal_source,omitempty"`
	Rejected     []string `json:"rejected,omitempty"`
	Key          string   `json:"key,omitempty"`
	Selected     int      `json:"selected_edges"`
	Nodes        []int    `json:"nodes"`
	Error        string   `json:"error,omitempty"`
}

// Summary describes a loaded document.
type Summary struct {
	Primitives []PrimitiveSummary `json:"primitives"`
	Skipped    []string           `json:"skipped,omitempty"`
	// Selections maps each scene selection key to its edge count.
	Selections map[string]int `json:"selections"`
	// Unclaimed lists selection keys no primitive refers to.
	Unclaimed []string `json:"unclaimed,omitempty"`
}

// Summarize reads every primitive with opts and reports what the
// extraction would see.
func (d *Document) Summarize(opts mesh.ReadOptions) Summary {
	s := Summary{
		Skipped:    append([]string(nil), d.Skipped...),
		Selections: make(map[string]int),
	}
	claimed := make(map[string]bool)

	for _, p := range d.Primitives {
		ps := PrimitiveSummary{
			Name:       p.Mesh.Name,
			Mesh:       p.MeshIndex,
			Primitive:  p.Index,
			Topology:   p.Mesh.Topology.String(),
			Vertices:   p.Mesh.VertexCount(),
			Indices:    p.Mesh.Indices.Len(),
			Attributes: p.Mesh.AttributeNames(),
			Key:        p.Key,
			Nodes:      p.Nodes,
		}
		if sel, ok := d.Selection(p); ok {
			ps.Selected = len(sel)
			claimed[p.Key] = true
		}

		view, err := mesh.Read(p.Mesh, opts)
		if err != nil {
			ps.Error = err.Error()
		} else {
			ps.Capabilities = view.Caps.String()
			ps.NormalSource = view.NormalSource
			ps.Rejected = view.Rejected
		}
		s.Primitives = append(s.Primitives, ps)
	}

	for _, key := range d.Selections.Keys() {
		sel, _ := d.Selections.Lookup(key)
		s.Selections[key] = len(sel)
		if !claimed[key] {
			s.Unclaimed = append(s.Unclaimed, key)
		}
	}
	return s
}
