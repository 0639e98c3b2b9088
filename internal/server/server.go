// Package server exposes document generation and offer storage over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/output"
	"github.com/gompdf/offerpdf/internal/store"
	"github.com/gompdf/offerpdf/pkg/api"
)

// MaxBodySize caps request bodies; embedded images make offers large
const MaxBodySize = 32 << 20

// Server routes HTTP requests to the generator, the offer store and the output sink
type Server struct {
	gen    *api.Generator
	store  store.Store
	sink   output.Sink
	logger *slog.Logger
	router *mux.Router
}

// New creates a server and registers its routes
func New(gen *api.Generator, st store.Store, sink output.Sink, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{gen: gen, store: st, sink: sink, logger: logger, router: mux.NewRouter()}

	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r := s.router.PathPrefix("/api").Subrouter()
	r.HandleFunc("/plan", s.handlePlan).Methods(http.MethodPost)
	r.HandleFunc("/pdf", s.handlePDF).Methods(http.MethodPost)
	r.HandleFunc("/preview", s.handlePreview).Methods(http.MethodPost)
	r.HandleFunc("/estimate", s.handleEstimate).Methods(http.MethodGet)
	r.HandleFunc("/offers", s.handleListOffers).Methods(http.MethodGet)
	r.HandleFunc("/offers", s.handleCreateOffer).Methods(http.MethodPost)
	r.HandleFunc("/offers/{id}", s.handleGetOffer).Methods(http.MethodGet)
	r.HandleFunc("/offers/{id}", s.handlePutOffer).Methods(http.MethodPut)
	r.HandleFunc("/offers/{id}", s.handleDeleteOffer).Methods(http.MethodDelete)
	r.HandleFunc("/offers/{id}/pdf", s.handleRenderOffer).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String())
	})
}

// errorBody is the JSON error response
type errorBody struct {
	Error  string           `json:"error"`
	Kind   string           `json:"kind,omitempty"`
	Issues []lineitem.Issue `json:"issues,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Error: err.Error()}
	code := http.StatusInternalServerError

	var verr *lineitem.ValidationError
	var syntax *json.SyntaxError
	var maxBytes *http.MaxBytesError
	switch kind := document.KindOf(err); {
	case kind == document.KindValidation || kind == document.KindEmptyInput:
		code = http.StatusUnprocessableEntity
		body.Kind = kind.String()
		if errors.As(err, &verr) {
			body.Issues = verr.Issues
		}
	case kind == document.KindLayout:
		code = http.StatusBadRequest
		body.Kind = kind.String()
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, output.ErrExists):
		code = http.StatusConflict
	case errors.As(err, &maxBytes):
		code = http.StatusRequestEntityTooLarge
	case errors.As(err, &syntax), errors.Is(err, errBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code, body)
}

var errBadRequest = errors.New("bad request")

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		code = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorBody{Error: fmt.Sprintf("failed to encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (document.Request, error) {
	var req document.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err := dec.Decode(&req); err != nil {
		var syntax *json.SyntaxError
		var maxBytes *http.MaxBytesError
		if errors.As(err, &syntax) || errors.As(err, &maxBytes) {
			return req, err
		}
		return req, fmt.Errorf("%w: invalid offer JSON: %v", errBadRequest, err)
	}
	return req, nil
}
