package agentic

import (
	"context"
	"fmt"
	"strings"

	"github.com/guilhermexp/memoria/internal/llm"
)

const plannerSystemPrompt = `You refine search queries. Given the original question and an explanation of what the results so far are missing, respond with a single improved search query targeting the missing information. Respond with the query text only, no quotes, no commentary.`

// Planner derives the next round's query from the evaluator's stated
// information gaps, so later rounds search for what is missing instead of
// re-running the same query against a wider window.
type Planner struct {
	provider llm.Provider
	model    string
}

// NewPlanner creates a planner backed by the given provider.
func NewPlanner(provider llm.Provider, model string) *Planner {
	return &Planner{provider: provider, model: model}
}

// Plan returns a refined query. Any provider failure or empty output is an
// error; the orchestrator keeps the current query in that case.
func (p *Planner) Plan(ctx context.Context, original, reasoning string) (string, error) {
	if p.provider == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	prompt := fmt.Sprintf("Original question: %s\n\nWhat is missing: %s", original, reasoning)
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model: p.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: plannerSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("plan completion: %w", err)
	}

	query := strings.TrimSpace(resp.Content)
	if query == "" {
		return "", fmt.Errorf("planner returned empty query")
	}
	return query, nil
}
