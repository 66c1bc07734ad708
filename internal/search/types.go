package search

import (
	"errors"
	"time"
)

// Validation errors surfaced to callers before any I/O happens.
var (
	ErrEmptyQuery   = errors.New("search: query must not be empty")
	ErrInvalidLimit = errors.New("search: limit must be positive")
)

// maxExcerpts caps the chunk excerpts returned per document when the caller
// asks for more than the single best chunk.
const maxExcerpts = 3

// Request describes one search call.
type Request struct {
	Query             string   `json:"q"`
	Limit             int      `json:"limit"`
	ChunkThreshold    float64  `json:"chunkThreshold"`
	DocumentThreshold float64  `json:"documentThreshold"`
	// OnlyMatchingChunks defaults to true: each document returns just its
	// strongest excerpt. Pointer so an absent JSON field keeps the default.
	OnlyMatchingChunks *bool    `json:"onlyMatchingChunks"`
	IncludeSummary     bool     `json:"includeSummary"`
	IncludeFullDocs    bool     `json:"includeFullDocs"`
	ContainerTags      []string `json:"containerTags"`
	ScopedDocumentIDs  []string `json:"scopedDocumentIds"`
}

// onlyMatching resolves the OnlyMatchingChunks default.
func (r *Request) onlyMatching() bool {
	if r.OnlyMatchingChunks == nil {
		return true
	}
	return *r.OnlyMatchingChunks
}

// Defaults are applied to request fields the caller leaves unset. The
// zero value of a Defaults field keeps the stock default.
type Defaults struct {
	Limit             int
	ChunkThreshold    float64
	DocumentThreshold float64
	HybridWeight      float64
}

func stockDefaults() Defaults {
	return Defaults{Limit: 10, HybridWeight: 0.7}
}

// normalize applies defaults and rejects malformed requests. Runs before
// any store or provider call.
func (r *Request) normalize(d Defaults) error {
	if r.Query == "" {
		return ErrEmptyQuery
	}
	if r.Limit == 0 {
		r.Limit = d.Limit
	}
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.ChunkThreshold == 0 {
		r.ChunkThreshold = d.ChunkThreshold
	}
	if r.DocumentThreshold == 0 {
		r.DocumentThreshold = d.DocumentThreshold
	}
	return nil
}

// Mode selects the hybrid search scoring strategy.
type Mode string

const (
	ModeVector  Mode = "vector"
	ModeKeyword Mode = "keyword"
	ModeHybrid  Mode = "hybrid"
)

// HybridRequest extends Request with blend configuration.
type HybridRequest struct {
	Request
	Mode Mode `json:"mode"`
	// WeightVector is the vector-side weight in hybrid mode, in [0, 1].
	WeightVector  float64 `json:"weightVector"`
	RerankResults bool    `json:"rerankResults"`
}

// normalizeHybrid validates the hybrid-specific fields on top of the base
// request rules.
func (r *HybridRequest) normalizeHybrid(d Defaults) error {
	if err := r.normalize(d); err != nil {
		return err
	}
	switch r.Mode {
	case "":
		r.Mode = ModeHybrid
	case ModeVector, ModeKeyword, ModeHybrid:
	default:
		return errors.New("search: mode must be vector, keyword, or hybrid")
	}
	if r.WeightVector < 0 || r.WeightVector > 1 {
		return errors.New("search: weightVector must be in [0, 1]")
	}
	if r.Mode == ModeHybrid && r.WeightVector == 0 {
		r.WeightVector = d.HybridWeight
	}
	return nil
}

// ScoredChunk is a chunk that survived filtering, with its similarity
// score. IsRelevant is always true on output: filtering happened upstream.
type ScoredChunk struct {
	ChunkID    string  `json:"chunkId"`
	DocumentID string  `json:"documentId"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	IsRelevant bool    `json:"isRelevant"`
}

// SearchResult is one ranked document with its best excerpts.
type SearchResult struct {
	DocumentID string         `json:"documentId"`
	Title      string         `json:"title"`
	Type       string         `json:"type"`
	Score      float64        `json:"score"`
	Summary    string         `json:"summary,omitempty"`
	Content    string         `json:"content,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Chunks     []ScoredChunk  `json:"chunks"`
	// Source distinguishes store results from web supplements in agentic
	// searches. Plain searches always report "memory".
	Source string `json:"source"`
}

// Response is the externally visible result of one search call.
type Response struct {
	Results  []SearchResult `json:"results"`
	TimingMS int64          `json:"timing"`
	Total    int            `json:"total"`
}
