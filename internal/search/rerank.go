package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/guilhermexp/memoria/internal/llm"
)

// Reranker reorders a ranked result list. Implementations may re-score but
// must never change the result count; the engine enforces this by
// discarding any output that is not a permutation of the input.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []SearchResult) ([]SearchResult, error)
}

// rerank applies the configured reranker to the result list, keeping the
// original order on any failure or contract violation.
func (e *Engine) rerank(ctx context.Context, query string, results []SearchResult) []SearchResult {
	if len(results) < 2 {
		return results
	}
	reranked, err := e.reranker.Rerank(ctx, query, results)
	if err != nil {
		e.logger.Warn("rerank pass failed, keeping blended order", "error", err)
		return results
	}
	if !samePermutation(results, reranked) {
		e.logger.Warn("reranker violated permutation contract, keeping blended order",
			"in", len(results), "out", len(reranked))
		return results
	}
	return reranked
}

// samePermutation checks that out contains exactly the documents of in.
func samePermutation(in, out []SearchResult) bool {
	if len(in) != len(out) {
		return false
	}
	seen := make(map[string]int, len(in))
	for _, r := range in {
		seen[r.DocumentID]++
	}
	for _, r := range out {
		seen[r.DocumentID]--
		if seen[r.DocumentID] < 0 {
			return false
		}
	}
	return true
}

const rerankSystemPrompt = `You rerank search results. Given a query and a numbered list of documents, respond with JSON: {"order": [...]} listing every document number exactly once, most relevant first. No other text.`

// LLMReranker reorders the top results with one JSON-mode completion.
type LLMReranker struct {
	provider llm.Provider
	model    string
}

// NewLLMReranker creates a reranker backed by the given provider.
func NewLLMReranker(provider llm.Provider, model string) *LLMReranker {
	return &LLMReranker{provider: provider, model: model}
}

// Rerank asks the LLM for a relevance ordering over the candidate list.
// The returned slice holds the same results in the LLM's order; any
// malformed or incomplete answer is an error, letting the engine keep the
// original order.
func (r *LLMReranker) Rerank(ctx context.Context, query string, results []SearchResult) ([]SearchResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nDocuments:\n", query)
	for i, res := range results {
		excerpt := ""
		if len(res.Chunks) > 0 {
			excerpt = truncate(res.Chunks[0].Content, 300)
		}
		fmt.Fprintf(&sb, "%d. %s — %s\n", i+1, res.Title, excerpt)
	}

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: rerankSystemPrompt},
			{Role: llm.RoleUser, Content: sb.String()},
		},
		MaxTokens:   512,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank completion: %w", err)
	}

	var parsed struct {
		Order []int `json:"order"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parsing rerank response: %w", err)
	}
	if len(parsed.Order) != len(results) {
		return nil, fmt.Errorf("rerank returned %d positions for %d results", len(parsed.Order), len(results))
	}

	out := make([]SearchResult, 0, len(results))
	used := make(map[int]bool, len(results))
	for _, n := range parsed.Order {
		idx := n - 1
		if idx < 0 || idx >= len(results) || used[idx] {
			return nil, fmt.Errorf("rerank order is not a permutation: %v", parsed.Order)
		}
		used[idx] = true
		out = append(out, results[idx])
	}
	return out, nil
}

// truncate shortens s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
