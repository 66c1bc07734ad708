package memstore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/preview"
)

func setupRouteServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	store := NewStore(database, cache.New(time.Minute))

	r := chi.NewRouter()
	RegisterRoutes(r, RoutesDeps{
		Store:    store,
		Embedder: embeddings.NewResilient(nil, nil),
		Preview:  preview.NewRenderer(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func postDocument(t *testing.T, srv *httptest.Server, org, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/documents", strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if org != "" {
		req.Header.Set(OrgHeader, org)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestCreateDocumentRoute(t *testing.T) {
	srv, store := setupRouteServer(t)

	resp := postDocument(t, srv, "acme",
		`{"title": "Runbook", "content": "Step one.\n\nStep two.", "metadata": {"containerTags": ["ops"]}}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body createDocumentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Document == nil || body.Document.ID == "" {
		t.Fatal("expected created document with id")
	}
	if body.Document.Status != StatusDone {
		t.Errorf("status = %s, want done", body.Document.Status)
	}
	if body.Chunks != 1 {
		t.Errorf("chunks = %d, want 1 (short paragraphs pack)", body.Chunks)
	}

	// Chunks must be indexed with embeddings, scoped to the org.
	rows, err := store.FetchChunks(t.Context(), "acme", 10)
	if err != nil {
		t.Fatalf("FetchChunks: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 indexed chunk, got %d", len(rows))
	}
	if rows[0].Embedding == nil {
		t.Error("indexed chunk should carry an embedding")
	}
	if rows[0].Document == nil || rows[0].Document.Title != "Runbook" {
		t.Error("chunk should join back to its document")
	}
}

func TestCreateDocumentRouteValidation(t *testing.T) {
	srv, _ := setupRouteServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"content": "x"}`},
		{"missing content", `{"title": "x"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postDocument(t, srv, "", tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetDocumentRoute(t *testing.T) {
	srv, _ := setupRouteServer(t)

	resp := postDocument(t, srv, "acme", `{"title": "Doc", "content": "body"}`)
	var created createDocumentResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/documents/"+created.Document.ID, nil)
	req.Header.Set(OrgHeader, "acme")
	got, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", got.StatusCode)
	}

	// A different org must not see it.
	req2, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/documents/"+created.Document.ID, nil)
	req2.Header.Set(OrgHeader, "rival")
	other, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	other.Body.Close()
	if other.StatusCode != http.StatusNotFound {
		t.Errorf("cross-org read status = %d, want 404", other.StatusCode)
	}
}

func TestListDocumentsRoute(t *testing.T) {
	srv, _ := setupRouteServer(t)

	for i := 0; i < 3; i++ {
		resp := postDocument(t, srv, "acme", fmt.Sprintf(`{"title": "Doc %d", "content": "body"}`, i))
		resp.Body.Close()
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/documents?limit=2", nil)
	req.Header.Set(OrgHeader, "acme")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Documents []Document `json:"documents"`
		Total     int        `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Total != 2 || len(body.Documents) != 2 {
		t.Errorf("expected 2 documents, got %+v", body)
	}
}

func TestDeleteDocumentRoute(t *testing.T) {
	srv, _ := setupRouteServer(t)

	resp := postDocument(t, srv, "acme", `{"title": "Doc", "content": "body"}`)
	var created createDocumentResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/documents/"+created.Document.ID, nil)
	req.Header.Set(OrgHeader, "acme")
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", del.StatusCode)
	}

	// Deleting again is a 404.
	again, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", again.StatusCode)
	}
}

func TestPreviewDocumentRoute(t *testing.T) {
	srv, _ := setupRouteServer(t)

	resp := postDocument(t, srv, "acme", `{"title": "Notes", "content": "# Heading\n\nSome **bold** text."}`)
	var created createDocumentResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/documents/"+created.Document.ID+"/preview", nil)
	req.Header.Set(OrgHeader, "acme")
	got, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer got.Body.Close()

	if got.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", got.StatusCode)
	}
	if ct := got.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	page, err := io.ReadAll(got.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(page), "<strong>bold</strong>") {
		t.Error("preview should render markdown to HTML")
	}
}
