package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/wireframe/internal/config"
	"github.com/Faultbox/wireframe/internal/gltfio"
	"github.com/Faultbox/wireframe/internal/pipeline"
	"github.com/Faultbox/wireframe/pkg/mesh"
)

// quadGLB encodes two triangles sharing an edge as a binary glTF.
func quadGLB(t *testing.T) []byte {
	t.Helper()
	doc := gltf.NewDocument()
	attrs := map[string]uint32{
		mesh.AttrPosition: modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}),
		mesh.AttrNormal:   modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}),
	}
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       "Quad",
		Primitives: []*gltf.Primitive{{Attributes: attrs, Indices: gltf.Index(indices)}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "QuadNode", Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	d, err := gltfio.FromGLTF(doc, nil)
	if err != nil {
		t.Fatalf("FromGLTF() failed: %v", err)
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf, true); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	return buf.Bytes()
}

func newServer() *Server {
	cfg := config.Default()
	return New(cfg.Server, pipeline.Options{Mode: config.ModeAuto, KeepSource: true}, nil)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestExtract(t *testing.T) {
	rec := do(t, newServer(), http.MethodPost, "/extract?mode=full&smooth=false&colors=false", quadGLB(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "model/gltf-binary" {
		t.Errorf("Content-Type = %q, want model/gltf-binary", ct)
	}
	if got := rec.Header().Get(HeaderLines); got != "5" {
		t.Errorf("%s = %q, want 5", HeaderLines, got)
	}
	if got := rec.Header().Get(HeaderPrimitives); got != "1" {
		t.Errorf("%s = %q, want 1", HeaderPrimitives, got)
	}

	out, err := gltfio.Decode(bytes.NewReader(rec.Body.Bytes()), nil)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	var lines *mesh.Mesh
	for _, p := range out.Primitives {
		if p.Mesh.Topology == mesh.LineList {
			lines = p.Mesh
		}
	}
	if lines == nil {
		t.Fatal("response has no line primitive")
	}
	if lines.VertexCount() != 10 {
		t.Errorf("VertexCount() = %d, want 10", lines.VertexCount())
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       []byte
		maxUpload  int64
		wantStatus int
	}{
		{"unknown mode", "/extract?mode=outline", nil, 0, http.StatusBadRequest},
		{"bad flag", "/extract?smooth=maybe", nil, 0, http.StatusBadRequest},
		{"not gltf", "/extract", []byte("not a model"), 0, http.StatusBadRequest},
		{"too large", "/extract", nil, 16, http.StatusBadRequest},
		{"external without selection", "/extract?mode=external", nil, 0, http.StatusUnprocessableEntity},
	}

	glb := quadGLB(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer()
			if tt.maxUpload > 0 {
				s.maxUpload = tt.maxUpload
			}
			body := tt.body
			if body == nil {
				body = glb
			}

			rec := do(t, s, http.MethodPost, tt.target, body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			if resp["error"] == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestExtractRejectsGet(t *testing.T) {
	rec := do(t, newServer(), http.MethodGet, "/extract", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestInspect(t *testing.T) {
	rec := do(t, newServer(), http.MethodPost, "/inspect", quadGLB(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var sum gltfio.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(sum.Primitives) != 1 {
		t.Fatalf("len(Primitives) = %d, want 1", len(sum.Primitives))
	}
	p := sum.Primitives[0]
	if p.Name != "Quad" || p.Vertices != 4 || p.Indices != 6 {
		t.Errorf("primitive = %+v, want Quad with 4 vertices and 6 indices", p)
	}
	if p.Capabilities != "normal" {
		t.Errorf("Capabilities = %q, want normal", p.Capabilities)
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		query      string
		wantMode   string
		wantSmooth bool
		wantColors bool
		wantForce  bool
		wantErr    bool
	}{
		{"", config.ModeAuto, true, true, false, false},
		{"mode=external", config.ModeExternal, true, true, false, false},
		{"smooth=false&colors=0", config.ModeAuto, false, false, false, false},
		{"force=true", config.ModeAuto, true, true, true, false},
		{"mode=nope", "", false, false, false, true},
		{"colors=yes", "", false, false, false, true},
	}

	s := New(config.Default().Server, pipeline.Options{
		Mode:          config.ModeAuto,
		SmoothNormals: true,
		RandomColors:  true,
	}, nil)
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/extract?"+tt.query, nil)
			opts, err := s.options(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("options() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.Mode != tt.wantMode || opts.SmoothNormals != tt.wantSmooth ||
				opts.RandomColors != tt.wantColors || opts.ForceColors != tt.wantForce {
				t.Errorf("options() = %+v, want mode %s smooth %v colors %v force %v",
					opts, tt.wantMode, tt.wantSmooth, tt.wantColors, tt.wantForce)
			}
		})
	}
}
