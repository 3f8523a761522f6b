// Package server exposes wireframe extraction over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/internal/config"
	"github.com/Faultbox/wireframe/internal/gltfio"
	"github.com/Faultbox/wireframe/internal/pipeline"
	"github.com/Faultbox/wireframe/pkg/mesh"
	"github.com/Faultbox/wireframe/pkg/wireframe"
)

// Response headers set by /extract.
const (
	HeaderLines      = "X-Wireframe-Lines"
	HeaderPrimitives = "X-Wireframe-Primitives"
)

// Server serves the extraction API.
type Server struct {
	addr      string
	maxUpload int64
	defaults  pipeline.Options
	log       *zap.Logger
}

// New creates a server. defaults are the pipeline options each request
// starts from; query parameters override mode, smoothing and colours.
func New(cfg config.ServerConfig, defaults pipeline.Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		addr:      cfg.Addr,
		maxUpload: cfg.MaxUploadMB << 20,
		defaults:  defaults,
		log:       log,
	}
}

// Handler returns the routed handler with panic recovery and access
// logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodPost)

	stdlog := zap.NewStdLog(s.log)
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(stdlog))(r)
	return handlers.LoggingHandler(zap.NewStdLog(s.log.Named("access")).Writer(), h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}

	report, err := pipeline.New(opts, s.log).Run(doc)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrNoSelection) || errors.Is(err, wireframe.ErrNoStableIDAttribute) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err)
		return
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf, true); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set(HeaderLines, strconv.Itoa(report.Lines()))
	w.Header().Set(HeaderPrimitives, strconv.Itoa(len(report.Primitives)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc.Summarize(mesh.ReadOptions{
		NormalAttributes:  s.defaults.NormalAttributes,
		StableIDAttribute: s.defaults.StableIDAttribute,
	}))
}

// decode reads a GLB request body, writing the error response itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*gltfio.Document, bool) {
	body := http.MaxBytesReader(w, r.Body, s.maxUpload)
	defer body.Close()

	doc, err := gltfio.Decode(body, s.log)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return doc, true
}

// options applies the mode, smooth, colors and force query parameters.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	q := r.URL.Query()

	if mode := q.Get("mode"); mode != "" {
		switch mode {
		case config.ModeAuto, config.ModeFull, config.ModeExternal:
			opts.Mode = mode
		default:
			return opts, errors.Errorf("unknown mode %q", mode)
		}
	}
	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{"smooth", &opts.SmoothNormals},
		{"colors", &opts.RandomColors},
		{"force", &opts.ForceColors},
	} {
		v := q.Get(b.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrapf(err, "query parameter %s", b.name)
		}
		*b.dst = parsed
	}
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
