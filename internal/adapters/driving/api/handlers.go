package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

const (
	defaultTopK = 10

	// multipartMemory is kept in memory per upload; larger parts spill to disk.
	multipartMemory = 32 << 20

	// maxUploadFiles bounds the number of files in one upload request.
	maxUploadFiles = 32

	// multipartOverhead allows for part headers and boundaries on top of file content.
	multipartOverhead = 1 << 20
)

var errServiceUnavailable = errors.New("service not configured")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Search   driving.SearchService
	Answer   driving.AnswerService
	Document driving.DocumentService
	Ingest   driving.IngestService
}

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	ports          Ports
	maxUploadBytes int64
}

// NewHandler creates a handler. Files larger than maxUploadBytes are rejected.
func NewHandler(ports Ports, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = domain.DefaultAppSettings().Server.MaxUploadBytes
	}
	return &Handler{ports: ports, maxUploadBytes: maxUploadBytes}
}

// maxRequestBytes caps a whole upload request.
func (h *Handler) maxRequestBytes() int64 {
	return h.maxUploadBytes*maxUploadFiles + multipartOverhead
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchResponse is returned by POST /search.
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Message string `json:"message"`
	*domain.IngestResult
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStatus handles GET /status requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	if h.ports.Document == nil {
		sendError(w, errServiceUnavailable)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"store":  h.ports.Document.Status(),
	})
}

// HandleListDocuments handles GET /documents requests.
func (h *Handler) HandleListDocuments(w http.ResponseWriter, _ *http.Request) {
	if h.ports.Document == nil {
		sendError(w, errServiceUnavailable)
		return
	}
	docs := h.ports.Document.ListDocuments()
	sendJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"documents":       docs,
		"total_documents": len(docs),
	})
}

// HandleDocumentChunks handles GET /documents/{id}/chunks requests.
func (h *Handler) HandleDocumentChunks(w http.ResponseWriter, r *http.Request) {
	if h.ports.Document == nil {
		sendError(w, errServiceUnavailable)
		return
	}
	id := mux.Vars(r)["id"]
	chunks, err := h.ports.Document.DocumentChunks(id)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"document_id":  id,
		"chunks":       chunks,
		"total_chunks": len(chunks),
	})
}

// HandleChunk handles GET /chunks/{id} requests.
func (h *Handler) HandleChunk(w http.ResponseWriter, r *http.Request) {
	if h.ports.Document == nil {
		sendError(w, errServiceUnavailable)
		return
	}
	chunk, err := h.ports.Document.Chunk(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"chunk":  chunk,
	})
}

// HandleSearch handles POST /search requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if h.ports.Search == nil {
		sendError(w, errServiceUnavailable)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, fmt.Errorf("%w: invalid JSON: %w", domain.ErrInvalidInput, err))
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	results, err := h.ports.Search.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

// HandleQuery handles POST /query requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if h.ports.Answer == nil {
		sendError(w, errServiceUnavailable)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, fmt.Errorf("%w: invalid JSON: %w", domain.ErrInvalidInput, err))
		return
	}

	answer, err := h.ports.Answer.Answer(r.Context(), req.Query)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, answer)
}

// HandleUpload handles POST /upload requests with one or more "files" parts.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.ports.Ingest == nil {
		sendError(w, errServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		sendError(w, fmt.Errorf("%w: invalid multipart form: %w", domain.ErrInvalidInput, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		sendError(w, fmt.Errorf("%w: no files in form field \"files\"", domain.ErrEmptyInput))
		return
	}
	if len(headers) > maxUploadFiles {
		sendError(w, fmt.Errorf("%w: at most %d files per upload", domain.ErrInvalidInput, maxUploadFiles))
		return
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			sendError(w, fmt.Errorf("open %s: %w", fh.Filename, err))
			return
		}
		// Read one byte past the limit so the service can tell the file is too large.
		content, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
		f.Close()
		if err != nil {
			sendError(w, fmt.Errorf("read %s: %w", fh.Filename, err))
			return
		}
		files = append(files, domain.UploadedFile{Name: fh.Filename, Content: content})
	}

	result, err := h.ports.Ingest.IngestFiles(r.Context(), files)
	if err != nil && result == nil {
		sendError(w, err)
		return
	}
	if err != nil {
		logger.Warn("Upload indexed but not saved: %v", err)
	}
	sendJSON(w, http.StatusOK, UploadResponse{
		Message:      fmt.Sprintf("Successfully processed %d files", result.DocumentsIndexed),
		IngestResult: result,
	})
}

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, errServiceUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sendError writes err as {"detail": "..."} with its mapped status.
func sendError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	sendJSON(w, status, map[string]string{"detail": strings.TrimSpace(err.Error())})
}

// sendJSON writes a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}
