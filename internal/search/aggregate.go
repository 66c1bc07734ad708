package search

import (
	"sort"

	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/similarity"
)

// documentGroup accumulates the surviving chunks of one document during
// aggregation. Created on the first chunk seen for the document, discarded
// at the end of the call.
type documentGroup struct {
	doc    *memstore.Document
	tags   []string
	chunks []ScoredChunk
	best   float64
}

// scoreFunc computes a chunk's relevance score. The plain pipeline uses
// cosine similarity against the query embedding; the hybrid variant blends
// in keyword overlap.
type scoreFunc func(row memstore.ChunkRow) float64

// vectorScorer returns the standard cosine scorer. Rows without a stored
// embedding get the deterministic fallback vector so their scores are
// stable across calls.
func vectorScorer(queryVec []float32) scoreFunc {
	return func(row memstore.ChunkRow) float64 {
		vec := row.Embedding
		if vec == nil {
			vec = similarity.Deterministic(row.Content)
		}
		return similarity.Cosine(queryVec, vec)
	}
}

// aggregate turns the flat over-fetched chunk rows into ranked document
// groups:
//
//  1. orphan rows (no joined document) are discarded
//  2. container tags come from document metadata, falling back to chunk
//     metadata
//  3. rows failing the container-tag or scoped-id filters are discarded
//  4. survivors are scored and grouped by document; each group tracks its
//     best chunk score
//  5. groups below the document threshold are dropped
//  6. remaining groups sort descending by best score — ties keep original
//     retrieval order — and truncate to the limit
//  7. within each group, chunks below the chunk threshold are dropped and
//     the rest sort descending; the single best is kept when the caller
//     asked for only matching chunks, otherwise up to maxExcerpts
func aggregate(rows []memstore.ChunkRow, score scoreFunc, req *Request) []*documentGroup {
	var scoped map[string]bool
	if len(req.ScopedDocumentIDs) > 0 {
		scoped = make(map[string]bool, len(req.ScopedDocumentIDs))
		for _, id := range req.ScopedDocumentIDs {
			scoped[id] = true
		}
	}

	groups := make(map[string]*documentGroup)
	var order []*documentGroup

	for _, row := range rows {
		if row.Document == nil {
			continue
		}

		tags := memstore.ContainerTags(row.Document.Metadata)
		if len(tags) == 0 {
			tags = memstore.ContainerTags(row.Metadata)
		}
		if !memstore.TagsIntersect(tags, req.ContainerTags) {
			continue
		}
		if scoped != nil && !scoped[row.DocumentID] {
			continue
		}

		s := score(row)

		g, ok := groups[row.DocumentID]
		if !ok {
			g = &documentGroup{doc: row.Document, tags: tags, best: s}
			groups[row.DocumentID] = g
			order = append(order, g)
		}
		if s > g.best {
			g.best = s
		}
		g.chunks = append(g.chunks, ScoredChunk{
			ChunkID:    row.ID,
			DocumentID: row.DocumentID,
			Content:    row.Content,
			Score:      s,
			IsRelevant: true,
		})
	}

	// Document-level threshold.
	kept := order[:0]
	for _, g := range order {
		if g.best >= req.DocumentThreshold {
			kept = append(kept, g)
		}
	}

	// Rank by best score; the stable sort breaks ties by retrieval order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].best > kept[j].best
	})
	if len(kept) > req.Limit {
		kept = kept[:req.Limit]
	}

	for _, g := range kept {
		g.chunks = selectExcerpts(g.chunks, req.ChunkThreshold, req.onlyMatching())
	}
	return kept
}

// selectExcerpts applies the chunk-level threshold and keeps the strongest
// excerpts in score order.
func selectExcerpts(chunks []ScoredChunk, threshold float64, onlyBest bool) []ScoredChunk {
	filtered := chunks[:0]
	for _, c := range chunks {
		if c.Score >= threshold {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})

	keep := maxExcerpts
	if onlyBest {
		keep = 1
	}
	if len(filtered) > keep {
		filtered = filtered[:keep]
	}
	return filtered
}
