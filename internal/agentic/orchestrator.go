package agentic

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/guilhermexp/memoria/internal/search"
	"github.com/guilhermexp/memoria/internal/websearch"
)

// Searcher is the memory retrieval the orchestrator loops over. The
// production implementation is *search.Engine.
type Searcher interface {
	Search(ctx context.Context, orgID string, req search.Request) (*search.Response, error)
}

// ResultEvaluator judges whether accumulated results answer the query.
type ResultEvaluator interface {
	Evaluate(ctx context.Context, query string, results []search.SearchResult) (Verdict, error)
}

// QueryCondenser rewrites a follow-up utterance into a standalone query.
type QueryCondenser interface {
	Condense(ctx context.Context, history []Turn, latest string) (string, bool)
}

// WebSearcher supplements memory results with live web results.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// QueryPlanner derives a follow-up query from the evaluator's stated gaps.
type QueryPlanner interface {
	Plan(ctx context.Context, original, reasoning string) (string, error)
}

// webScore is the neutral score assigned to web supplements; they rank
// below strong memory hits but above weak ones.
const webScore = 0.5

// Orchestrator drives the multi-round search loop.
type Orchestrator struct {
	searcher  Searcher
	evaluator ResultEvaluator
	logger    *slog.Logger

	condenser QueryCondenser
	web       WebSearcher
	planner   QueryPlanner
}

// NewOrchestrator creates an orchestrator over the given retrieval and
// evaluation backends.
func NewOrchestrator(searcher Searcher, evaluator ResultEvaluator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{searcher: searcher, evaluator: evaluator, logger: logger}
}

// SetCondenser wires conversation-history condensation; nil disables it.
func (o *Orchestrator) SetCondenser(c QueryCondenser) { o.condenser = c }

// SetWebSearch wires the web supplement; nil disables it.
func (o *Orchestrator) SetWebSearch(w WebSearcher) { o.web = w }

// SetPlanner wires follow-up query refinement; nil keeps the same query
// across rounds.
func (o *Orchestrator) SetPlanner(p QueryPlanner) { o.planner = p }

// Run executes the agentic loop. onRound, if non-nil, receives a progress
// frame after every completed round. Cancellation mid-loop returns the
// best-effort partial state accumulated so far rather than an error.
func (o *Orchestrator) Run(ctx context.Context, orgID string, req Request, onRound func(RoundProgress)) (*Response, error) {
	start := time.Now()
	if req.Query == "" {
		return nil, search.ErrEmptyQuery
	}
	if req.Limit == 0 {
		req.Limit = 10
	}
	if req.Limit < 0 {
		return nil, search.ErrInvalidLimit
	}

	query := req.Query
	condensed := false
	if o.condenser != nil && len(req.History) > 0 {
		query, condensed = o.condenser.Condense(ctx, req.History, req.Query)
	}

	ceiling := req.Mode.rounds()
	merged := make(map[string]search.SearchResult)
	var verdict Verdict
	rounds := 0
	// roundQuery drifts as the planner refines it; the response reports the
	// condensed original.
	roundQuery := query

	for round := 1; round <= ceiling; round++ {
		if ctx.Err() != nil {
			verdict = Verdict{Reasoning: "search cancelled"}
			break
		}
		rounds = round

		// Each round widens the retrieval window.
		sreq := search.Request{
			Query:             roundQuery,
			Limit:             req.Limit * round,
			ChunkThreshold:    req.ChunkThreshold,
			DocumentThreshold: req.DocumentThreshold,
			ContainerTags:     req.ContainerTags,
		}
		resp, err := o.searcher.Search(ctx, orgID, sreq)
		if err != nil {
			o.logger.Warn("agentic round retrieval failed", "round", round, "error", err)
		} else {
			mergeResults(merged, resp.Results)
		}

		current := ranked(merged)

		// The web leg runs concurrently with evaluation; its results are
		// only merged if the verdict says memory alone cannot answer.
		var (
			wg         sync.WaitGroup
			webResults []websearch.Result
			webErr     error
		)
		if o.web != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				webResults, webErr = o.web.Search(ctx, roundQuery)
			}()
		}

		v, verr := o.evaluator.Evaluate(ctx, roundQuery, current)
		if verr != nil {
			o.logger.Warn("evaluation failed, continuing search", "round", round, "error", verr)
			v = Verdict{CanAnswer: false, Reasoning: "evaluation unavailable"}
		}
		wg.Wait()
		verdict = v

		if !v.CanAnswer && o.web != nil {
			if webErr != nil {
				o.logger.Warn("web search failed", "round", round, "error", webErr)
			} else {
				mergeResults(merged, webToResults(webResults))
			}
		}

		if onRound != nil {
			onRound(RoundProgress{
				Round:     round,
				Query:     roundQuery,
				Results:   len(merged),
				CanAnswer: v.CanAnswer,
				Reasoning: v.Reasoning,
			})
		}
		if v.CanAnswer {
			break
		}

		// Aim the next round at what the evaluator said is missing.
		if o.planner != nil && v.Reasoning != "" && round < ceiling {
			if next, err := o.planner.Plan(ctx, roundQuery, v.Reasoning); err != nil {
				o.logger.Warn("query planning failed, keeping current query", "round", round, "error", err)
			} else {
				roundQuery = next
			}
		}
	}

	results := ranked(merged)
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return &Response{
		Results:   results,
		Rounds:    rounds,
		CanAnswer: verdict.CanAnswer,
		Reasoning: verdict.Reasoning,
		Query:     query,
		Condensed: condensed,
		TimingMS:  time.Since(start).Milliseconds(),
	}, nil
}

// mergeResults folds new results into the accumulated set, keyed by
// document id. A document seen in multiple rounds keeps its highest score.
func mergeResults(merged map[string]search.SearchResult, results []search.SearchResult) {
	for _, r := range results {
		if existing, ok := merged[r.DocumentID]; !ok || r.Score > existing.Score {
			merged[r.DocumentID] = r
		}
	}
}

// ranked flattens the accumulated set into a deterministic ordering: score
// descending, document id ascending on ties.
func ranked(merged map[string]search.SearchResult) []search.SearchResult {
	out := make([]search.SearchResult, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocumentID < out[j].DocumentID
	})
	return out
}

// webToResults converts web hits to the common result schema, tagged with
// their provenance so callers can tell them apart from memory.
func webToResults(results []websearch.Result) []search.SearchResult {
	out := make([]search.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, search.SearchResult{
			DocumentID: r.URL,
			Title:      r.Title,
			Type:       "web",
			Score:      webScore,
			Metadata:   map[string]any{"url": r.URL},
			Chunks: []search.ScoredChunk{{
				DocumentID: r.URL,
				Content:    r.Snippet,
				Score:      webScore,
				IsRelevant: true,
			}},
			Source: "web",
		})
	}
	return out
}
