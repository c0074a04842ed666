package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidbz/tarifa/internal/config"
	"github.com/davidbz/tarifa/internal/document"
	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
)

// Handler serves the pricing documents read-only. It never computes prices.
type Handler struct {
	store       *DocumentStore
	metrics     *DocumentMetrics
	cacheMaxAge int
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(store *DocumentStore, metrics *DocumentMetrics, cfg *config.ServerConfig) *Handler {
	maxAge := 0
	if cfg != nil {
		maxAge = cfg.CacheMaxAge
	}

	return &Handler{
		store:       store,
		metrics:     metrics,
		cacheMaxAge: maxAge,
	}
}

// HandleDocument serves one document, honoring If-None-Match.
func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ctx := observability.WithDocument(r.Context(), name)
	logger := observability.FromContext(ctx)

	doc, err := h.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			h.metrics.observe(name, resultNotFound)
			writeError(w, http.StatusNotFound, fmt.Sprintf("document %s not found", name))
			return
		}
		logger.Error("document lookup failed", observability.Error(err))
		writeError(w, http.StatusInternalServerError, "document lookup failed")
		return
	}

	w.Header().Set("ETag", doc.ETag)
	w.Header().Set("Last-Modified", doc.LoadedAt.Format(http.TimeFormat))
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cacheMaxAge))

	if etagMatches(r.Header.Get("If-None-Match"), doc.ETag) {
		h.metrics.observe(name, resultNotModified)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", fmt.Sprint(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	h.metrics.observe(name, resultServed)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(doc.Data); err != nil {
		logger.Warn("failed to write document", observability.Error(err))
	}
}

// HandleIndex lists the served documents.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": h.store.List(r.Context()),
	})
}

// HandleSchema serves the JSON Schema of a document.
func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	schema, err := document.Schema(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cacheMaxAge))
	writeJSON(w, http.StatusOK, schema)
}

// HandleHealth reports healthy once the documents are loaded.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	count := h.store.Len()
	if count == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unavailable",
			"documents": count,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"documents": count,
	})
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(context.Background()).Warn("failed to encode response", observability.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
