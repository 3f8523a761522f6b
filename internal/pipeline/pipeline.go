// Package pipeline runs the wireframe passes over every primitive of a
// loaded glTF document: colour fill, normal smoothing, edge-mode
// resolution, extraction and output.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/internal/config"
	"github.com/Faultbox/wireframe/internal/gltfio"
	"github.com/Faultbox/wireframe/pkg/formats"
	"github.com/Faultbox/wireframe/pkg/mesh"
	"github.com/Faultbox/wireframe/pkg/shading"
	"github.com/Faultbox/wireframe/pkg/wireframe"
)

// ErrNoSelection is returned in external mode for a primitive that has no
// edge selection.
var ErrNoSelection = errors.New("no edge selection for primitive")

// Options configures a Runner. The zero value runs full-edge extraction
// with no extra passes.
type Options struct {
	Mode              string
	SmoothNormals     bool
	SmoothScale       float32
	RandomColors      bool
	ForceColors       bool
	ColorTolerance    float32
	Colors            shading.ColorSource
	StableIDAttribute string
	NormalAttributes  []string
	KeepSource        bool
	Material          shading.Material
	// Override replaces the scene selections for every primitive.
	Override formats.Selection
}

// OptionsFromConfig maps the extract and shading sections onto Options.
// Colors is left nil; seed the source once per process with
// shading.SeededColors.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:              cfg.Extract.Mode,
		SmoothNormals:     cfg.Extract.SmoothNormals,
		SmoothScale:       cfg.Extract.SmoothScale,
		RandomColors:      cfg.Extract.RandomColors,
		ForceColors:       cfg.Extract.ForceColors,
		ColorTolerance:    cfg.Extract.ColorTolerance,
		StableIDAttribute: cfg.Extract.StableIDAttribute,
		NormalAttributes:  cfg.Extract.NormalAttributes,
		KeepSource:        cfg.Extract.KeepSource,
		Material:          cfg.Shading.Material(),
	}
}

// PrimitiveReport summarizes one processed primitive.
type PrimitiveReport struct {
	Name         string
	Mode         string
	Fallback     bool
	Colored      bool
	Smoothed     bool
	Lines        int
	MeshIndex    int // -1 when no line mesh was written
	Capabilities mesh.Capabilities
	Diagnostics  []wireframe.Diagnostic
}

// Report summarizes a run.
type Report struct {
	Primitives []PrimitiveReport
	Skipped    []string
}

// Lines returns the total number of lines written.
func (r *Report) Lines() int {
	n := 0
	for _, p := range r.Primitives {
		n += p.Lines
	}
	return n
}

// Runner applies Options to documents. A Runner is safe for concurrent
// use on distinct documents.
type Runner struct {
	opts Options
	log  *zap.Logger
}

// New creates a Runner.
func New(opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeFull
	}
	return &Runner{opts: opts, log: log}
}

// Run processes every loaded primitive of d and adds the line meshes to
// the document. Line primitives already in the document are left alone.
func (r *Runner) Run(d *gltfio.Document) (*Report, error) {
	report := &Report{Skipped: append([]string(nil), d.Skipped...)}

	// Snapshot first: AddWireframe appends meshes, not primitives.
	prims := append([]*gltfio.Primitive(nil), d.Primitives...)
	for _, p := range prims {
		if p.Mesh.Topology != mesh.TriangleList {
			r.log.Debug("skipping non-triangle primitive", zap.String("primitive", p.Mesh.Name))
			report.Skipped = append(report.Skipped, p.Mesh.Name)
			continue
		}
		pr, err := r.process(d, p)
		if err != nil {
			return report, fmt.Errorf("primitive %s: %w", p.Mesh.Name, err)
		}
		report.Primitives = append(report.Primitives, *pr)
	}

	r.log.Info("wireframe extraction complete",
		zap.Int("primitives", len(report.Primitives)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("lines", report.Lines()))
	return report, nil
}

func (r *Runner) process(d *gltfio.Document, p *gltfio.Primitive) (*PrimitiveReport, error) {
	log := r.log.With(zap.String("primitive", p.Mesh.Name))
	pr := &PrimitiveReport{Name: p.Mesh.Name, MeshIndex: -1}

	var updated []string
	if r.opts.RandomColors {
		applied, err := shading.ApplyRandomColors(p.Mesh, shading.ColorOptions{
			Tolerance: r.opts.ColorTolerance,
			Source:    r.opts.Colors,
			Force:     r.opts.ForceColors,
			Logger:    log,
		})
		if err != nil {
			return nil, err
		}
		pr.Colored = applied
		if applied {
			updated = append(updated, mesh.AttrColor)
		}
	}

	if r.opts.SmoothNormals {
		if p.Mesh.HasAttribute(mesh.AttrNormal) {
			err := shading.ApplySmoothNormals(p.Mesh, shading.SmoothOptions{
				Scale:  r.opts.SmoothScale,
				Source: mesh.AttrNormal,
				Target: mesh.AttrSmoothNormal,
				Logger: log,
			})
			if err != nil {
				return nil, err
			}
			pr.Smoothed = true
			updated = append(updated, mesh.AttrSmoothNormal)
		} else {
			log.Warn("no normals to smooth")
		}
	}

	if r.opts.KeepSource && len(updated) > 0 {
		if err := d.UpdateAttributes(p, updated...); err != nil {
			return nil, err
		}
	}

	mode, err := r.resolveMode(d, p)
	if err != nil {
		return nil, err
	}
	extractOpts := wireframe.Options{
		Logger:            log,
		NormalAttributes:  r.opts.NormalAttributes,
		StableIDAttribute: r.opts.StableIDAttribute,
	}

	res, err := wireframe.Extract(p.Mesh, mode, extractOpts)
	if errors.Is(err, wireframe.ErrNoStableIDAttribute) && r.opts.Mode == config.ModeAuto {
		log.Warn("selection present but mesh has no stable ids, using all edges")
		pr.Fallback = true
		mode = wireframe.FullEdges()
		res, err = wireframe.Extract(p.Mesh, mode, extractOpts)
	}
	if err != nil {
		return nil, err
	}

	pr.Mode = mode.String()
	pr.Lines = len(res.Lines)
	pr.Capabilities = res.Capabilities
	pr.Diagnostics = res.Diagnostics

	if len(res.Lines) == 0 {
		log.Warn("no lines extracted")
		return pr, nil
	}
	pr.MeshIndex, err = d.AddWireframe(p, res.Mesh, gltfio.Placement{
		KeepSource: r.opts.KeepSource,
		Material:   r.opts.Material,
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

// resolveMode picks the edge mode for one primitive. Auto uses the
// selection when one exists and full edges otherwise.
func (r *Runner) resolveMode(d *gltfio.Document, p *gltfio.Primitive) (wireframe.Mode, error) {
	sel, ok := r.opts.Override, r.opts.Override != nil
	if !ok {
		sel, ok = d.Selection(p)
	}

	switch r.opts.Mode {
	case config.ModeFull:
		return wireframe.FullEdges(), nil
	case config.ModeExternal:
		if !ok {
			return wireframe.Mode{}, ErrNoSelection
		}
		return wireframe.ExternalEdges(sel), nil
	case config.ModeAuto:
		if ok {
			return wireframe.ExternalEdges(sel), nil
		}
		return wireframe.FullEdges(), nil
	}
	return wireframe.Mode{}, fmt.Errorf("unknown mode %q", r.opts.Mode)
}
