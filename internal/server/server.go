// Package server exposes the render pipeline, orbit tracking, dimension
// estimates and saved views over HTTP.
//
// # Routes
//
//	GET    /healthz              liveness and version
//	POST   /api/render           JSON options in, PNG out
//	POST   /api/dimension        JSON options in, JSON estimate out
//	GET    /api/track            orbit of ?point= as JSON
//	GET    /api/views            list saved views
//	GET    /api/views/{name}     load a view
//	PUT    /api/views/{name}     save a view
//	DELETE /api/views/{name}     delete a view
//	GET    /ws/refine            websocket: successive-refinement passes
//
// Errors are JSON objects with the machine-readable code from pkg/errors.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/fractalview/pkg/config"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/observability"
	"github.com/matzehuels/fractalview/pkg/pipeline"
	"github.com/matzehuels/fractalview/pkg/view"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// requestIDHeader carries the request ID in both directions.
const requestIDHeader = "X-Request-ID"

// Server handles HTTP requests. It holds no per-request state.
type Server struct {
	runner *pipeline.Runner
	views  view.Store
	cfg    config.Config
	logger *log.Logger
}

// New creates a server. cfg supplies the defaults for omitted request
// fields.
func New(runner *pipeline.Runner, views view.Store, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, views: views, cfg: cfg, logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/dimension", s.handleDimension)
		r.Get("/track", s.handleTrack)
		r.Route("/views", func(r chi.Router) {
			r.Get("/", s.handleListViews)
			r.Get("/{name}", s.handleLoadView)
			r.Put("/{name}", s.handleSaveView)
			r.Delete("/{name}", s.handleDeleteView)
		})
	})
	r.Get("/ws/refine", s.handleRefine)
	return r
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const loggerKey ctxKey = 0

// requestID tags the request with an ID, taken from the client when given,
// and attaches a logger carrying it.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), loggerKey, s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		loggerFrom(r.Context()).Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed)
	})
}

func loggerFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParams, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeDegenerateFit:
		return http.StatusBadRequest
	case errors.ErrCodeViewNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCancelled:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	observability.Server().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status == http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body over the defaults already held by v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil // empty body keeps the defaults
		}
		if code := errors.GetCode(err); code != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}
