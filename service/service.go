// Exposes conversions over HTTP.
//
//	POST /v1/convert/avd2svg
//	POST /v1/convert/svg2avd
//	GET  /healthz
//	GET  /metrics
//
// The request body is the source document. By default the response is
// the converted document, with one X-Avdconv-Diagnostic header per
// diagnostic. Clients sending Accept: application/json (or ?format=json)
// receive a JSON object instead.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benoitkugler/avdconv/batch"
	"github.com/benoitkugler/avdconv/convert"
)

// DiagnosticHeader carries the diagnostics of raw responses.
const DiagnosticHeader = "X-Avdconv-Diagnostic"

const defaultMaxBodyBytes = 1 << 20

// ConvertResponse is the JSON body of a successful conversion.
type ConvertResponse struct {
	Output      string               `json:"output"`
	Diagnostics []convert.Diagnostic `json:"diagnostics"`
}

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves conversions with a batch.Runner, whose
// Sink is not used.
type Server struct {
	runner       *batch.Runner
	logger       *slog.Logger
	maxBodyBytes int64
	metrics      http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes limits the size of uploaded documents.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// WithMetricsHandler replaces the default Prometheus handler
// served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New returns a Server converting with `runner`.
func New(runner *batch.Runner, opts ...Option) *Server {
	s := &Server{
		runner:       runner,
		logger:       slog.Default(),
		maxBodyBytes: defaultMaxBodyBytes,
		metrics:      promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics)
	r.Post("/v1/convert/{direction}", s.handleConvert)
	return r
}

// ListenAndServe serves the API on `addr` until `ctx` is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	dir, err := convert.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.runner.ConvertBytes(r.Context(), dir, data)
	if err != nil {
		var parseErr *convert.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if wantsJSON(r) {
		diags := res.Diagnostics
		if diags == nil {
			diags = []convert.Diagnostic{}
		}
		writeJSON(w, http.StatusOK, ConvertResponse{Output: string(res.Output), Diagnostics: diags})
		return
	}
	for _, d := range res.Diagnostics {
		w.Header().Add(DiagnosticHeader, d.Message)
	}
	w.Header().Set("Content-Type", dir.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(res.Output)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// logRequests logs one line per request with slog.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
