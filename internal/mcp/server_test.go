package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/search"
	"github.com/guilhermexp/memoria/internal/similarity"
)

func setupMCP(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := memstore.NewStore(database, cache.New(time.Minute))
	engine := search.NewEngine(store, embeddings.NewResilient(nil, nil), nil)
	return NewServer(engine, store)
}

// seedDocument stores a document with one embedded chunk and returns it.
func seedDocument(t *testing.T, s *Server, orgID, title, content string) *memstore.Document {
	t.Helper()
	doc, err := s.store.CreateDocument(t.Context(), memstore.Document{
		OrgID:   orgID,
		Title:   title,
		Content: content,
		Summary: "seeded test document",
		Metadata: map[string]any{
			"containerTags": []any{"notes"},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	chunk := memstore.Chunk{
		Content:   content,
		Embedding: similarity.Deterministic(content),
	}
	if err := s.store.AddChunks(t.Context(), doc, []memstore.Chunk{chunk}); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	return doc
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		required []string
	}{
		{"search_memory", searchMemoryTool, []string{"query"}},
		{"get_document", getDocumentTool, []string{"document_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.name {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.name)
			}
			if tt.tool.Description == "" {
				t.Error("tool description is empty")
			}
			if tt.name == "search_memory" {
				// Tag filtering matches any provided tag, not all of them.
				desc := tt.tool.InputSchema.Properties["container_tags"].(map[string]any)["description"].(string)
				if !strings.Contains(desc, "at least one") {
					t.Errorf("container_tags description = %q, want any-tag semantics", desc)
				}
			}
			for _, param := range tt.required {
				found := false
				for _, r := range tt.tool.InputSchema.Required {
					if r == param {
						found = true
					}
				}
				if !found {
					t.Errorf("parameter %q not marked required", param)
				}
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	s := setupMCP(t)
	if s.engine == nil {
		t.Error("engine not set")
	}
	if s.store == nil {
		t.Error("store not set")
	}
	if s.mcp == nil {
		t.Error("mcp server not initialized")
	}
}

func TestHandleSearchMemory(t *testing.T) {
	s := setupMCP(t)
	seedDocument(t, s, "default", "Deploy runbook", "Restart the ingest worker after every schema migration.")
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "Restart the ingest worker after every schema migration.",
		}

		result, err := s.handleSearchMemory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Deploy runbook") {
			t.Errorf("result missing document title: %s", text)
		}
		if !strings.Contains(text, "Restart the ingest worker") {
			t.Errorf("result missing chunk content: %s", text)
		}
	})

	t.Run("org scoping", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "ingest worker",
			"org":   "other-org",
		}

		result, err := s.handleSearchMemory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if text := resultText(t, result); !strings.Contains(text, "No results") {
			t.Errorf("expected empty-store message, got: %s", text)
		}
	})

	t.Run("container tag filter", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query":          "ingest worker",
			"container_tags": "billing",
		}

		result, err := s.handleSearchMemory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text := resultText(t, result); !strings.Contains(text, "No results") {
			t.Errorf("tag filter should exclude the seeded doc, got: %s", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := s.handleSearchMemory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty store", func(t *testing.T) {
		empty := setupMCP(t)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "anything",
		}

		result, err := empty.handleSearchMemory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})
}

func TestHandleGetDocument(t *testing.T) {
	s := setupMCP(t)
	doc := seedDocument(t, s, "default", "Deploy runbook", "Restart the ingest worker after every schema migration.")
	ctx := context.Background()

	t.Run("existing document", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"document_id": doc.ID,
		}

		result, err := s.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		for _, want := range []string{"Title: Deploy runbook", "Tags: notes", "Restart the ingest worker"} {
			if !strings.Contains(text, want) {
				t.Errorf("result missing %q: %s", want, text)
			}
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"document_id": "nope",
		}

		result, err := s.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown document")
		}
	})

	t.Run("wrong org", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"document_id": doc.ID,
			"org":         "other-org",
		}

		result, err := s.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for cross-org lookup")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := s.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing document_id")
		}
	})
}

// resultText extracts the text content of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
