// Package llm abstracts the completion providers used by the retrieval
// pipeline for evaluation, query condensing, and reranking. All three are
// short, temperature-0, often JSON-mode calls; providers only need to
// implement single-shot completion.
package llm

import "context"

// Provider is a completion backend.
type Provider interface {
	// Complete sends one completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the backend in logs.
	Name() string
}
