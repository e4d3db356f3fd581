// Package api provides the HTTP interface to ragstore.
//
// Routes mirror the document, search, query and upload endpoints of the
// original web backend. Handlers translate JSON and multipart requests into
// driving port calls and map domain errors to status codes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/custodia-labs/ragstore/internal/logger"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestIDMiddleware reuses an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("%s %s %d %v [%s]", r.Method, r.URL.Path, rec.status,
			time.Since(start).Round(time.Microsecond), RequestID(r.Context()))
	})
}

// corsMiddleware allows browser front ends on other origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	// Register routes
	r.HandleFunc("/health", handler.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", handler.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/documents", handler.HandleListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/chunks", handler.HandleDocumentChunks).Methods(http.MethodGet)
	r.HandleFunc("/chunks/{id}", handler.HandleChunk).Methods(http.MethodGet)
	r.HandleFunc("/search", handler.HandleSearch).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/query", handler.HandleQuery).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/upload", handler.HandleUpload).Methods(http.MethodPost, http.MethodOptions)

	return r
}
