// Package wireframe turns a triangle mesh into an attribute-preserving
// line list, either from every triangle edge or from an edge selection
// addressed by stable vertex ids.
package wireframe

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/pkg/mesh"
)

// Mode selects where the edges come from.
type Mode struct {
	external bool
	pairs    [][2]uint32
}

// FullEdges emits every distinct triangle edge.
func FullEdges() Mode { return Mode{} }

// ExternalEdges emits the given stable-id pairs in order.
func ExternalEdges(pairs [][2]uint32) Mode {
	return Mode{external: true, pairs: pairs}
}

// IsExternal reports whether the mode resolves a stable-id selection.
func (m Mode) IsExternal() bool { return m.external }

// Pairs returns the selection of an external mode.
func (m Mode) Pairs() [][2]uint32 { return m.pairs }

// String returns "full" or "external(n)".
func (m Mode) String() string {
	if m.external {
		return fmt.Sprintf("external(%d)", len(m.pairs))
	}
	return "full"
}

// Options configures one extraction call.
type Options struct {
	// Logger receives diagnostics as warnings. Nil discards them.
	Logger *zap.Logger
	// NormalAttributes and StableIDAttribute default to
	// mesh.DefaultNormalAttributes and mesh.AttrStableID.
	NormalAttributes  []string
	StableIDAttribute string
}

// Result is the output of Extract.
type Result struct {
	Lines        LineList
	Mesh         *mesh.Mesh
	Capabilities mesh.Capabilities
	Diagnostics  []Diagnostic
}

// Extract builds the line mesh for m. The source mesh is only read.
//
// A missing position attribute, a non-triangle mesh in FullEdges mode or a
// mesh without stable ids in ExternalEdges mode fail the call. Everything
// else is reported in Result.Diagnostics and skipped.
func Extract(m *mesh.Mesh, mode Mode, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("mesh", m.Name), zap.Stringer("mode", mode))

	view, err := mesh.Read(m, mesh.ReadOptions{
		NormalAttributes:  opts.NormalAttributes,
		StableIDAttribute: opts.StableIDAttribute,
		Logger:            log,
	})
	if err != nil {
		return nil, err
	}

	rep := &report{log: log}
	if !view.Caps.Has(mesh.HasNormal) {
		rep.add(Diagnostic{Kind: MissingAttribute, Attribute: mesh.AttrNormal})
	}
	for _, name := range view.Rejected {
		rep.add(Diagnostic{Kind: MissingAttribute, Attribute: name})
	}

	var b *lineBuilder
	if mode.IsExternal() {
		b = newLineBuilder(view, len(mode.Pairs()))
		if err := resolveSelection(b, mode.Pairs(), rep); err != nil {
			return nil, err
		}
	} else {
		if m.Topology != mesh.TriangleList {
			return nil, fmt.Errorf("%w: got %s", ErrUnsupportedTopology, m.Topology)
		}
		b = newLineBuilder(view, view.Len())
		enumerateTriangles(b, m.Indices, rep)
	}

	caps := view.Caps & (mesh.HasNormal | optionalFields)
	out, err := Assemble(m.Name+"_wireframe", b.lines, caps)
	if err != nil {
		return nil, err
	}

	log.Debug("extracted",
		zap.Int("lines", len(b.lines)),
		zap.Stringer("caps", caps),
		zap.Int("diagnostics", len(rep.diagnostics)))

	return &Result{
		Lines:        b.lines,
		Mesh:         out,
		Capabilities: caps,
		Diagnostics:  rep.diagnostics,
	}, nil
}
