// Package server serves model summaries and GLB previews over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/objkit/internal/assets"
	"github.com/Faultbox/objkit/internal/export"
	"github.com/Faultbox/objkit/pkg/formats"
	"github.com/Faultbox/objkit/pkg/model"
)

// Importer loads a converted model by asset path.
type Importer interface {
	Import(path string) (*model.Model, error)
}

type server struct {
	importer Importer
	log      *zap.Logger
}

// New returns the preview handler:
//
//	GET /models/{path}.json  summary of {path}.obj
//	GET /models/{path}.glb   binary glTF of {path}.obj
//	GET /healthz
func New(importer Importer, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &server{importer: importer, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/models/{path:.+}.json", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/models/{path:.+}.glb", s.handleGLB).Methods(http.MethodGet)

	stdLog := zap.NewStdLog(log)
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(stdLog))(r)
	h = handlers.LoggingHandler(stdLog.Writer(), h)
	return h
}

// Run serves h on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("stopping server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok\n"))
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.Summarize(m))
}

func (s *server) handleGLB(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}

	name := path.Base(mux.Vars(r)["path"])
	var buf bytes.Buffer
	if err := export.WriteGLB(&buf, m, name); err != nil {
		s.log.Error("exporting glb", zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Write(buf.Bytes())
}

func (s *server) load(w http.ResponseWriter, r *http.Request) (*model.Model, bool) {
	objPath := modelPath(mux.Vars(r)["path"])

	m, err := s.importer.Import(objPath)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			s.log.Error("import failed", zap.String("path", objPath), zap.Error(err))
		} else {
			s.log.Debug("import rejected", zap.String("path", objPath), zap.Int("status", status), zap.Error(err))
		}
		writeError(w, status, err)
		return nil, false
	}
	return m, true
}

// modelPath maps a route variable to a root-relative .obj path. References
// inside the file are confined by the importer.
func modelPath(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p + ".obj"
}

func statusOf(err error) int {
	var perr *formats.ParseError
	switch {
	case errors.Is(err, assets.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &perr),
		errors.Is(err, formats.ErrIndexRange),
		errors.Is(err, model.ErrIndexRange),
		errors.Is(err, model.ErrGroupRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
