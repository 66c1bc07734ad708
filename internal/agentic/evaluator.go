package agentic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/guilhermexp/memoria/internal/llm"
	"github.com/guilhermexp/memoria/internal/search"
)

const evaluatorSystemPrompt = `You judge whether retrieved documents answer a question. Respond with JSON exactly matching {"canAnswer": boolean, "reasoning": string}. canAnswer is true only when the excerpts actually contain the answer, not merely related material. No other fields, no other text.`

// Evaluator asks an LLM whether the accumulated results answer the query.
type Evaluator struct {
	provider llm.Provider
	model    string
}

// NewEvaluator creates an evaluator backed by the given provider.
func NewEvaluator(provider llm.Provider, model string) *Evaluator {
	return &Evaluator{provider: provider, model: model}
}

// Evaluate returns the evaluator's verdict on the results. Any provider or
// parse failure is an error; the orchestrator maps errors to "cannot
// answer, keep searching".
func (e *Evaluator) Evaluate(ctx context.Context, query string, results []search.SearchResult) (Verdict, error) {
	if e.provider == nil {
		return Verdict{}, fmt.Errorf("no llm provider configured")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nRetrieved excerpts:\n", query)
	if len(results) == 0 {
		sb.WriteString("(none)\n")
	}
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s (score %.2f)\n", i+1, r.Title, r.Score)
		for _, c := range r.Chunks {
			fmt.Fprintf(&sb, "   %s\n", truncate(c.Content, 500))
		}
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: evaluatorSystemPrompt},
			{Role: llm.RoleUser, Content: sb.String()},
		},
		MaxTokens:   512,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("evaluation completion: %w", err)
	}

	// The contract is strict: both fields present, nothing else accepted.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(resp.Content), &raw); err != nil {
		return Verdict{}, fmt.Errorf("parsing evaluation response: %w", err)
	}
	canRaw, ok := raw["canAnswer"]
	if !ok {
		return Verdict{}, fmt.Errorf("evaluation response missing canAnswer")
	}
	reasonRaw, ok := raw["reasoning"]
	if !ok {
		return Verdict{}, fmt.Errorf("evaluation response missing reasoning")
	}

	var v Verdict
	if err := json.Unmarshal(canRaw, &v.CanAnswer); err != nil {
		return Verdict{}, fmt.Errorf("canAnswer is not a boolean: %w", err)
	}
	if err := json.Unmarshal(reasonRaw, &v.Reasoning); err != nil {
		return Verdict{}, fmt.Errorf("reasoning is not a string: %w", err)
	}
	return v, nil
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
