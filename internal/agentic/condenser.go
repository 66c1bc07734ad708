package agentic

import (
	"context"
	"fmt"
	"strings"

	"github.com/guilhermexp/memoria/internal/llm"
)

const condenserSystemPrompt = `You rewrite a conversational follow-up into a standalone search query. Use the conversation history to resolve pronouns and implicit references. Respond with the rewritten query only, no explanation.`

// Condenser rewrites follow-up utterances ("what about the second one?")
// into standalone queries using conversation history.
type Condenser struct {
	provider llm.Provider
	model    string
}

// NewCondenser creates a condenser backed by the given provider.
func NewCondenser(provider llm.Provider, model string) *Condenser {
	return &Condenser{provider: provider, model: model}
}

// Condense returns the standalone query for the latest utterance. Without
// history, on any provider failure, or on empty output it returns the
// utterance unchanged. The second return reports whether condensation
// actually changed the query.
func (c *Condenser) Condense(ctx context.Context, history []Turn, latest string) (string, bool) {
	if len(history) == 0 || c.provider == nil {
		return latest, false
	}

	var sb strings.Builder
	sb.WriteString("Conversation:\n")
	for _, t := range history {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
	}
	fmt.Fprintf(&sb, "\nFollow-up: %s", latest)

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: condenserSystemPrompt},
			{Role: llm.RoleUser, Content: sb.String()},
		},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return latest, false
	}

	query := strings.TrimSpace(resp.Content)
	if query == "" {
		return latest, false
	}
	return query, query != latest
}
