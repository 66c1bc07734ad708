// Package agentic implements multi-round search: retrieve, ask an LLM
// whether the results answer the question, and widen the search (memory
// plus optional web) until they do or the round ceiling is hit.
package agentic

import (
	"github.com/guilhermexp/memoria/internal/search"
)

// Mode bounds how many search rounds a request may consume.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeBalanced Mode = "balanced"
	ModeDeep     Mode = "deep"
)

// rounds returns the round ceiling for the mode. Unknown modes get the
// balanced ceiling.
func (m Mode) rounds() int {
	switch m {
	case ModeFast:
		return 1
	case ModeDeep:
		return 5
	default:
		return 3
	}
}

// Turn is one prior exchange in the caller's conversation, used to condense
// a follow-up utterance into a standalone query.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one agentic search call.
type Request struct {
	Query             string   `json:"q"`
	Mode              Mode     `json:"mode"`
	History           []Turn   `json:"history,omitempty"`
	Limit             int      `json:"limit"`
	ChunkThreshold    float64  `json:"chunkThreshold"`
	DocumentThreshold float64  `json:"documentThreshold"`
	ContainerTags     []string `json:"containerTags,omitempty"`
}

// Verdict is the evaluator's strict output contract.
type Verdict struct {
	CanAnswer bool   `json:"canAnswer"`
	Reasoning string `json:"reasoning"`
}

// RoundProgress is one progress frame, streamed over the websocket variant
// after every round.
type RoundProgress struct {
	Round     int    `json:"round"`
	Query     string `json:"query"`
	Results   int    `json:"results"`
	CanAnswer bool   `json:"canAnswer"`
	Reasoning string `json:"reasoning"`
}

// Response is the final outcome of an agentic search.
type Response struct {
	Results   []search.SearchResult `json:"results"`
	Rounds    int                   `json:"rounds"`
	CanAnswer bool                  `json:"canAnswer"`
	Reasoning string                `json:"reasoning"`
	Query     string                `json:"query"`
	Condensed bool                  `json:"condensed"`
	TimingMS  int64                 `json:"timing"`
}
