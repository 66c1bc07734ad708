// Package search implements the retrieval engine: it turns a free-text
// query plus filter constraints into a ranked set of documents and the most
// relevant excerpts within them. Scoring combines dense vector similarity
// with keyword overlap (hybrid variant), aggregated from chunk level up to
// document level with independent thresholds at both granularities.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/events"
	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/similarity"
)

// ChunkSource is the bulk read the engine is built on. Implementations
// must scope strictly to the given organization.
type ChunkSource interface {
	FetchChunks(ctx context.Context, orgID string, limit int) ([]memstore.ChunkRow, error)
}

// Engine executes searches against a chunk source. It holds no per-request
// state; concurrent searches share only the source and the embedder.
type Engine struct {
	source   ChunkSource
	embedder embeddings.Embedder
	logger   *slog.Logger

	bus      *events.Bus
	reranker Reranker
	defaults Defaults
}

// NewEngine creates a search engine. The embedder should normally be an
// embeddings.Resilient so provider outages degrade instead of failing.
func NewEngine(source ChunkSource, embedder embeddings.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{source: source, embedder: embedder, logger: logger, defaults: stockDefaults()}
}

// SetDefaults overrides the stock request defaults. Zero-valued fields are
// left at their stock values.
func (e *Engine) SetDefaults(d Defaults) {
	if d.Limit > 0 {
		e.defaults.Limit = d.Limit
	}
	if d.ChunkThreshold > 0 {
		e.defaults.ChunkThreshold = d.ChunkThreshold
	}
	if d.DocumentThreshold > 0 {
		e.defaults.DocumentThreshold = d.DocumentThreshold
	}
	if d.HybridWeight > 0 {
		e.defaults.HybridWeight = d.HybridWeight
	}
}

// SetEventBus wires an event bus; nil disables emission.
func (e *Engine) SetEventBus(bus *events.Bus) { e.bus = bus }

// SetReranker wires the optional hybrid rerank pass; nil disables it.
func (e *Engine) SetReranker(r Reranker) { e.reranker = r }

// Search runs the plain vector pipeline: embed the query, bulk-fetch
// chunks, aggregate to ranked document groups, shape the response.
// Validation errors and store errors propagate; embedding failure degrades
// to the deterministic fallback vector.
func (e *Engine) Search(ctx context.Context, orgID string, req Request) (*Response, error) {
	start := time.Now()
	if err := req.normalize(e.defaults); err != nil {
		return nil, err
	}

	queryVec, rows, err := e.gather(ctx, orgID, &req)
	if err != nil {
		return nil, err
	}

	groups := aggregate(rows, vectorScorer(queryVec), &req)
	results := assemble(groups, &req)
	e.emit(orgID, req.Query, results)

	return &Response{
		Results:  results,
		TimingMS: time.Since(start).Milliseconds(),
		Total:    len(results),
	}, nil
}

// HybridSearch runs the blended vector/keyword variant. Hybrid-specific
// failures downgrade silently to the plain vector pipeline — the caller
// always gets a normal response. Validation errors still propagate: a
// malformed request is the caller's bug, not a degradation.
func (e *Engine) HybridSearch(ctx context.Context, orgID string, req HybridRequest) (*Response, error) {
	resp, err := e.hybridSearch(ctx, orgID, req)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrInvalidLimit) {
		return nil, err
	}

	e.logger.Warn("hybrid search failed, falling back to vector search", "error", err)
	return e.Search(ctx, orgID, req.Request)
}

func (e *Engine) hybridSearch(ctx context.Context, orgID string, req HybridRequest) (*Response, error) {
	start := time.Now()
	if err := req.normalizeHybrid(e.defaults); err != nil {
		return nil, err
	}

	queryVec, rows, err := e.gather(ctx, orgID, &req.Request)
	if err != nil {
		return nil, err
	}

	queryTokens := tokenize(req.Query)
	vector := vectorScorer(queryVec)

	var score scoreFunc
	switch req.Mode {
	case ModeVector:
		score = vector
	case ModeKeyword:
		score = func(row memstore.ChunkRow) float64 {
			return keywordScore(queryTokens, row.Content)
		}
	default:
		w := req.WeightVector
		score = func(row memstore.ChunkRow) float64 {
			return w*vector(row) + (1-w)*keywordScore(queryTokens, row.Content)
		}
	}

	groups := aggregate(rows, score, &req.Request)
	results := assemble(groups, &req.Request)

	if req.RerankResults && e.reranker != nil {
		results = e.rerank(ctx, req.Query, results)
	}

	e.emit(orgID, req.Query, results)

	return &Response{
		Results:  results,
		TimingMS: time.Since(start).Milliseconds(),
		Total:    len(results),
	}, nil
}

// gather embeds the query and fetches the candidate chunks. The two calls
// have no data dependency, so they run concurrently; outputs are assigned
// by name, never by arrival order.
func (e *Engine) gather(ctx context.Context, orgID string, req *Request) ([]float32, []memstore.ChunkRow, error) {
	var (
		wg       sync.WaitGroup
		queryVec []float32
		embedErr error
		rows     []memstore.ChunkRow
		fetchErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		queryVec, embedErr = embeddings.EmbedOne(ctx, e.embedder, req.Query)
	}()
	go func() {
		defer wg.Done()
		rows, fetchErr = e.source.FetchChunks(ctx, orgID, req.Limit)
	}()
	wg.Wait()

	if fetchErr != nil {
		return nil, nil, fmt.Errorf("search: fetching chunks: %w", fetchErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if embedErr != nil || queryVec == nil {
		// Embedding is an optimization, never a hard dependency.
		if embedErr != nil {
			e.logger.Warn("query embedding failed, using deterministic fallback", "error", embedErr)
		}
		queryVec = similarity.Deterministic(req.Query)
	}
	return queryVec, rows, nil
}

// emit publishes per-document scoring events plus a search summary.
func (e *Engine) emit(orgID, query string, results []SearchResult) {
	if e.bus == nil {
		return
	}
	for _, r := range results {
		e.bus.Publish(events.Event{
			Type:       events.TypeDocumentScored,
			OrgID:      orgID,
			DocumentID: r.DocumentID,
			Score:      r.Score,
			Query:      query,
		})
	}
	e.bus.Publish(events.Event{
		Type:    events.TypeSearchFinished,
		OrgID:   orgID,
		Query:   query,
		Results: len(results),
	})
}
