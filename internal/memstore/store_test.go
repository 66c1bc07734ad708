package memstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, cache.New(time.Minute))
}

func seedDocument(t *testing.T, s *Store, orgID, title string, chunks []Chunk) *Document {
	t.Helper()
	doc, err := s.CreateDocument(context.Background(), Document{
		OrgID: orgID,
		Title: title,
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := s.AddChunks(context.Background(), doc, chunks); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	return doc
}

func TestCreateAndGetDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc, err := s.CreateDocument(ctx, Document{
		OrgID:    "org1",
		Title:    "Quarterly notes",
		Content:  "full text",
		Metadata: map[string]any{"containerTags": []string{"proj_a"}},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.GetDocument(ctx, "org1", doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "Quarterly notes" {
		t.Errorf("title = %q", got.Title)
	}
	tags := ContainerTags(got.Metadata)
	if len(tags) != 1 || tags[0] != "proj_a" {
		t.Errorf("container tags = %v", tags)
	}
}

func TestGetDocumentTenantIsolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := seedDocument(t, s, "org1", "secret", nil)

	if _, err := s.GetDocument(ctx, "org2", doc.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound across orgs, got %v", err)
	}
}

func TestFetchChunksScopedToOrg(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedDocument(t, s, "org1", "a", []Chunk{{Content: "one"}, {Content: "two"}})
	seedDocument(t, s, "org2", "b", []Chunk{{Content: "other tenant"}})

	rows, err := s.FetchChunks(ctx, "org1", 10)
	if err != nil {
		t.Fatalf("FetchChunks: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.OrgID != "org1" {
			t.Errorf("cross-tenant chunk leaked: %+v", r.Chunk)
		}
		if r.Document == nil || r.Document.OrgID != "org1" {
			t.Errorf("joined document missing or wrong org")
		}
	}
}

func TestFetchChunksJoinsDocumentFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := seedDocument(t, s, "org1", "joined", []Chunk{{Content: "c"}})

	rows, err := s.FetchChunks(ctx, "org1", 5)
	if err != nil {
		t.Fatalf("FetchChunks: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Document.ID != doc.ID || rows[0].Document.Title != "joined" {
		t.Errorf("joined document = %+v", rows[0].Document)
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	vec := []float32{0.5, -0.25, 1.0}
	seedDocument(t, s, "org1", "v", []Chunk{{Content: "c", Embedding: vec}})

	rows, err := s.FetchChunks(ctx, "org1", 5)
	if err != nil {
		t.Fatalf("FetchChunks: %v", err)
	}
	got := rows[0].Embedding
	if len(got) != 3 || got[0] != 0.5 || got[1] != -0.25 || got[2] != 1.0 {
		t.Errorf("embedding round trip = %v", got)
	}
}

func TestChunksMissingEmbeddingBackfill(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedDocument(t, s, "org1", "d", []Chunk{
		{Content: "has vector", Embedding: []float32{1}},
		{Content: "needs vector"},
	})

	n, err := s.CountChunksMissingEmbedding(ctx)
	if err != nil {
		t.Fatalf("CountChunksMissingEmbedding: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 unembedded chunk, got %d", n)
	}

	missing, err := s.ChunksMissingEmbedding(ctx, 10)
	if err != nil {
		t.Fatalf("ChunksMissingEmbedding: %v", err)
	}
	if len(missing) != 1 || missing[0].Content != "needs vector" {
		t.Fatalf("unexpected missing set: %+v", missing)
	}

	if err := s.SetChunkEmbedding(ctx, missing[0].ID, []float32{2}); err != nil {
		t.Fatalf("SetChunkEmbedding: %v", err)
	}

	n, _ = s.CountChunksMissingEmbedding(ctx)
	if n != 0 {
		t.Errorf("expected 0 unembedded after backfill, got %d", n)
	}
}

func TestListDocumentsCacheInvalidation(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()
	listCache := cache.New(time.Minute)
	s := NewStore(database, listCache)
	ctx := context.Background()

	seedDocument(t, s, "org1", "first", nil)

	docs, err := s.ListDocuments(ctx, "org1", ListOptions{})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	// Second document must appear despite the cached first read.
	seedDocument(t, s, "org1", "second", nil)

	docs, err = s.ListDocuments(ctx, "org1", ListOptions{})
	if err != nil {
		t.Fatalf("ListDocuments after write: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("cache served stale list: got %d documents", len(docs))
	}
}

func TestListDocumentsTagFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateDocument(ctx, Document{
		OrgID: "org1", Title: "a", Metadata: map[string]any{"containerTags": []string{"proj_a"}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateDocument(ctx, Document{
		OrgID: "org1", Title: "b", Metadata: map[string]any{"containerTags": []string{"proj_b"}},
	}); err != nil {
		t.Fatal(err)
	}

	docs, err := s.ListDocuments(ctx, "org1", ListOptions{ContainerTags: []string{"proj_b"}})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "b" {
		t.Errorf("tag filter result = %+v", docs)
	}
}

func TestListDocumentsTagFilterPagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// Interleave tagged and untagged documents so pagination over the
	// filtered set would under-fill if LIMIT/OFFSET ran before the filter.
	for i := 0; i < 6; i++ {
		tags := []string{"other"}
		if i%2 == 0 {
			tags = []string{"proj"}
		}
		if _, err := s.CreateDocument(ctx, Document{
			OrgID: "org1", Title: fmt.Sprintf("doc-%d", i),
			Metadata: map[string]any{"containerTags": tags},
		}); err != nil {
			t.Fatal(err)
		}
	}

	page1, err := s.ListDocuments(ctx, "org1", ListOptions{ContainerTags: []string{"proj"}, Limit: 2})
	if err != nil {
		t.Fatalf("ListDocuments page 1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1 size = %d, want 2", len(page1))
	}

	page2, err := s.ListDocuments(ctx, "org1", ListOptions{ContainerTags: []string{"proj"}, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListDocuments page 2: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("page 2 size = %d, want 1", len(page2))
	}

	seen := map[string]bool{}
	for _, d := range append(page1, page2...) {
		if seen[d.ID] {
			t.Errorf("document %s appeared on both pages", d.ID)
		}
		seen[d.ID] = true
	}

	past, err := s.ListDocuments(ctx, "org1", ListOptions{ContainerTags: []string{"proj"}, Limit: 2, Offset: 10})
	if err != nil {
		t.Fatalf("ListDocuments past end: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("offset past end returned %d documents", len(past))
	}
}

func TestDeleteDocumentCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := seedDocument(t, s, "org1", "gone", []Chunk{{Content: "c1"}, {Content: "c2"}})

	if err := s.DeleteDocument(ctx, "org1", doc.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	rows, err := s.FetchChunks(ctx, "org1", 10)
	if err != nil {
		t.Fatalf("FetchChunks: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected chunks cascaded away, got %d", len(rows))
	}
}
