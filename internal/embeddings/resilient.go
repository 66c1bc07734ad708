package embeddings

import (
	"context"
	"log/slog"

	"github.com/guilhermexp/memoria/internal/similarity"
)

// Resilient wraps an Embedder so that provider failures degrade to the
// deterministic fallback vector instead of failing the caller. A search
// never aborts because the embedding provider is down; it only loses
// ranking quality, and the degradation is logged at warning level.
type Resilient struct {
	inner  Embedder
	logger *slog.Logger
}

// NewResilient wraps inner with fallback behavior. A nil inner embedder is
// allowed: every text then maps to its deterministic vector, which keeps
// offline and test setups fully functional.
func NewResilient(inner Embedder, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{inner: inner, logger: logger}
}

func (r *Resilient) Name() string {
	if r.inner == nil {
		return "deterministic-fallback"
	}
	return r.inner.Name()
}

func (r *Resilient) Dimensions() int {
	return similarity.Dimension
}

// Embed returns one vector per input text. On provider failure every text
// falls back to similarity.Deterministic, so identical text always yields
// identical scores regardless of provider health.
func (r *Resilient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if r.inner != nil {
		vecs, err := r.inner.Embed(ctx, texts)
		if err == nil && len(vecs) == len(texts) {
			for i, v := range vecs {
				vecs[i] = similarity.EnsureSize(v)
			}
			return vecs, nil
		}
		if err != nil {
			r.logger.Warn("embedding provider unavailable, using deterministic fallback",
				"provider", r.inner.Name(), "error", err)
		} else {
			r.logger.Warn("embedding provider returned short batch, using deterministic fallback",
				"provider", r.inner.Name(), "want", len(texts), "got", len(vecs))
		}
	}

	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = similarity.Deterministic(t)
	}
	return vecs, nil
}
