package memstore

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/preview"
)

// OrgHeader carries the calling organization. Requests without it land in
// the default organization.
const OrgHeader = "X-Org-ID"

// OrgFromRequest resolves the calling organization for a request.
func OrgFromRequest(r *http.Request) string {
	if org := r.Header.Get(OrgHeader); org != "" {
		return org
	}
	return "default"
}

// RoutesDeps holds the dependencies needed to register document routes.
type RoutesDeps struct {
	Store    *Store
	Embedder embeddings.Embedder
	Preview  *preview.Renderer
	Logger   *slog.Logger
}

// RegisterRoutes wires up the document REST API endpoints.
func RegisterRoutes(r chi.Router, deps RoutesDeps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &routeHandler{deps: deps}
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/", h.createDocument)
		r.Get("/", h.listDocuments)
		r.Get("/{id}", h.getDocument)
		r.Delete("/{id}", h.deleteDocument)
		r.Get("/{id}/preview", h.previewDocument)
	})
}

type routeHandler struct {
	deps RoutesDeps
}

type createDocumentRequest struct {
	Title    string         `json:"title"`
	Type     string         `json:"type,omitempty"`
	Content  string         `json:"content"`
	Summary  string         `json:"summary,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type createDocumentResponse struct {
	Document *Document `json:"document"`
	Chunks   int       `json:"chunks"`
}

// createDocument ingests a document: store it, split the content into
// chunks, embed them, and index the chunk set.
func (h *routeHandler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	ctx := r.Context()
	doc, err := h.deps.Store.CreateDocument(ctx, Document{
		OrgID:    OrgFromRequest(r),
		Title:    req.Title,
		Type:     req.Type,
		Content:  req.Content,
		Summary:  req.Summary,
		Metadata: req.Metadata,
		Status:   StatusProcessing,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	pieces := SplitChunks(req.Content)
	vectors, err := h.deps.Embedder.Embed(ctx, pieces)
	if err != nil {
		// The resilient embedder never errors; a bare provider might.
		h.deps.Logger.Warn("embedding chunks failed, indexing without vectors", "document", doc.ID, "error", err)
		vectors = nil
	}

	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = Chunk{Content: p}
		if i < len(vectors) {
			chunks[i].Embedding = vectors[i]
		}
	}

	if err := h.deps.Store.AddChunks(ctx, doc, chunks); err != nil {
		h.deps.Store.SetDocumentStatus(ctx, doc.OrgID, doc.ID, StatusFailed)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := h.deps.Store.SetDocumentStatus(ctx, doc.OrgID, doc.ID, StatusDone); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	doc.Status = StatusDone

	writeJSON(w, http.StatusCreated, createDocumentResponse{Document: doc, Chunks: len(chunks)})
}

func (h *routeHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	opts := ListOptions{}
	if tags := r.URL.Query().Get("containerTags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.ContainerTags = append(opts.ContainerTags, t)
			}
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	docs, err := h.deps.Store.ListDocuments(r.Context(), OrgFromRequest(r), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": len(docs)})
}

func (h *routeHandler) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.GetDocument(r.Context(), OrgFromRequest(r), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *routeHandler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	err := h.deps.Store.DeleteDocument(r.Context(), OrgFromRequest(r), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *routeHandler) previewDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.GetDocument(r.Context(), OrgFromRequest(r), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	page, err := h.deps.Preview.Render(doc.Title, doc.Content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
