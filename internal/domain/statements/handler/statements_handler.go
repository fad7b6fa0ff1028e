// Package handler exposes the statement pipeline over HTTP: the upload
// form and results page, and the JSON API under /api/v1.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FACorreiaa/statement-insights/internal/domain/categorization"
	"github.com/FACorreiaa/statement-insights/internal/domain/extract"
	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/internal/domain/statements"
	"github.com/FACorreiaa/statement-insights/pkg/logger"
	"github.com/FACorreiaa/statement-insights/pkg/spool"
)

const (
	// DefaultMaxUploadBytes bounds a whole multipart request.
	DefaultMaxUploadBytes = 32 << 20

	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// The API route takes the supplemental formats; the HTML form stays
// PDF-only.
var apiAllowedExts = map[string]bool{
	".pdf":  true,
	".csv":  true,
	".xlsx": true,
	".xlsm": true,
}

// Handler serves the web and API surface of the statements pipeline.
// Request-scoped logging comes from the context, where the server middleware
// put a logger carrying the request ID.
type Handler struct {
	statements     *statements.Service
	categories     *categorization.Service
	spool          *spool.Spool
	tmpl           *template.Template
	maxUploadBytes int64
}

// New creates a Handler.
func New(statementsSvc *statements.Service, catSvc *categorization.Service, spoolStore *spool.Spool, tmpl *template.Template) *Handler {
	return &Handler{
		statements:     statementsSvc,
		categories:     catSvc,
		spool:          spoolStore,
		tmpl:           tmpl,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// WithMaxUploadBytes overrides the multipart request size limit.
func (h *Handler) WithMaxUploadBytes(n int64) *Handler {
	if n > 0 {
		h.maxUploadBytes = n
	}
	return h
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.FromContext(r.Context()).Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// UploadPage serves the upload form.
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index.html", map[string]any{
		"Title": "Statement Insights",
	})
}

// Upload handles the HTML form POST. Validation happens before any file is
// spooled: an empty upload set or any non-.pdf name rejects the whole batch.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	uploads, ok := h.formFiles(w, r)
	if !ok {
		return
	}

	for _, fh := range uploads {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			http.Error(w, fmt.Sprintf("%q is not a PDF file. The upload form accepts only .pdf statements.", fh.Filename), http.StatusBadRequest)
			return
		}
	}

	result, err := h.processUploads(r.Context(), uploads)
	if err != nil {
		logger.FromContext(r.Context()).Error("statement upload failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "results.html", map[string]any{
		"Title":  "Statement Insights",
		"Result": result,
	})
}

// ProcessAPI is the JSON variant of Upload. It additionally accepts CSV and
// XLSX statements.
func (h *Handler) ProcessAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse multipart form"})
		return
	}

	uploads := r.MultipartForm.File["statements"]
	if len(uploads) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files uploaded; attach at least one statement"})
		return
	}
	for _, fh := range uploads {
		if !apiAllowedExts[strings.ToLower(filepath.Ext(fh.Filename))] {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("%s: unsupported file type, accepted extensions are .pdf, .csv, .xlsx", fh.Filename),
			})
			return
		}
	}

	result, err := h.processUploads(r.Context(), uploads)
	if err != nil {
		logger.FromContext(r.Context()).Error("statement processing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "statement processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Message:       result.Outcome,
		RowsExtracted: result.Summary.RowsExtracted(),
		Columns:       result.Columns,
		Summary:       result.Summary,
		Report:        result.Report,
		Suggestions:   result.Suggestions,
		CategoryChart: result.CategoryChartB64,
		TrendChart:    result.TrendChartB64,
		Messages:      result.Messages,
	})
}

// SearchCategories serves GET /api/v1/categories/search?q=&limit=.
func (h *Handler) SearchCategories(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
		return
	}
	limit := queryInt(r, "limit", defaultSearchLimit)

	hits, err := h.categories.SearchRules(query, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("rule search failed", "query", query, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "rule search failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query": query,
		"hits":  hits,
		"count": len(hits),
	})
}

// ListRules serves GET /api/v1/rules: the active rule table in match order.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.categories.Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"rules":  rules,
		"count":  len(rules),
		"source": h.categories.RuleSource(),
	})
}

// Healthz is the liveness endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "statement-insights",
	})
}

// formFiles parses the multipart form and returns the uploaded statement
// files, writing the 400 itself when the set is empty or unparseable.
func (h *Handler) formFiles(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse upload form", http.StatusBadRequest)
		return nil, false
	}

	uploads := r.MultipartForm.File["statements"]
	if len(uploads) == 0 {
		http.Error(w, "No files uploaded. Attach at least one PDF statement.", http.StatusBadRequest)
		return nil, false
	}
	return uploads, true
}

// processUploads spools the validated files into a fresh batch, runs the
// pipeline, and removes the batch on every exit path.
func (h *Handler) processUploads(ctx context.Context, uploads []*multipart.FileHeader) (*statements.Result, error) {
	batch, err := h.spool.NewBatch()
	if err != nil {
		return nil, fmt.Errorf("create spool batch: %w", err)
	}
	defer batch.Close()

	for _, fh := range uploads {
		if err := saveUpload(batch, fh); err != nil {
			return nil, fmt.Errorf("store upload %s: %w", fh.Filename, err)
		}
	}

	return h.statements.Process(ctx, batch.Files()), nil
}

func saveUpload(batch *spool.Batch, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = batch.Add(fh.Filename, f)
	return err
}

type processResponse struct {
	Message       string                    `json:"message"`
	RowsExtracted int                       `json:"rows_extracted"`
	Columns       []string                  `json:"columns,omitempty"`
	Summary       extract.Summary           `json:"summary"`
	Report        *insights.Report          `json:"report,omitempty"`
	Suggestions   []insights.SuggestionHint `json:"suggestions,omitempty"`
	CategoryChart string                    `json:"category_chart,omitempty"`
	TrendChart    string                    `json:"trend_chart,omitempty"`
	Messages      []string                  `json:"messages"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("json response encode failed", "error", err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	if n > maxSearchLimit {
		return maxSearchLimit
	}
	return n
}
