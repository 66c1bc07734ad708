package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/search"
)

// handleSearchMemory performs semantic search over the memory store.
func (s *Server) handleSearchMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	var tags []string
	if tagStr := request.GetString("container_tags", ""); tagStr != "" {
		for _, t := range strings.Split(tagStr, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	org := request.GetString("org", "default")

	resp, err := s.engine.Search(ctx, org, search.Request{
		Query:         query,
		Limit:         limit,
		ContainerTags: tags,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(resp.Results) == 0 {
		return mcp.NewToolResultText("No results found. The memory store may be empty for this organization."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(resp.Results)), nil
}

// handleGetDocument returns the full content of one stored document.
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: document_id"), nil
	}
	org := request.GetString("org", "default")

	doc, err := s.store.GetDocument(ctx, org, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no document with id %q", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching document: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", doc.Title)
	fmt.Fprintf(&sb, "Type: %s\n", doc.Type)
	if doc.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", doc.Summary)
	}
	if tags := memstore.ContainerTags(doc.Metadata); len(tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(tags, ", "))
	}
	sb.WriteString("\n")
	sb.WriteString(doc.Content)

	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a rich text format
// optimized for AI agent consumption.
func formatSearchResults(results []search.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Document: %s (%s)\n", r.Title, r.DocumentID))
		if r.Type != "" {
			sb.WriteString(fmt.Sprintf("Type: %s\n", r.Type))
		}
		sb.WriteString(fmt.Sprintf("Score: %.1f%%\n", r.Score*100))

		for _, c := range r.Chunks {
			sb.WriteString("\n")
			sb.WriteString(c.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
