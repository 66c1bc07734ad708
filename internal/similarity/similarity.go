// Package similarity implements the vector math used by the retrieval
// engine: cosine scoring, dimension normalization, and the deterministic
// fallback embedding used for chunks indexed without a precomputed vector.
package similarity

import (
	"hash/fnv"
	"math"
)

// Dimension is the canonical embedding width. All vectors are coerced to
// this size before comparison.
const Dimension = 1536

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Both vectors are coerced to Dimension first, so mismatched lengths are
// never an error. Returns 0 when either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	a = EnsureSize(a)
	b = EnsureSize(b)

	var dot, normA, normB float64
	for i := 0; i < Dimension; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EnsureSize returns a copy of v padded with zeros or truncated to
// Dimension. The input slice is never modified. A vector already at the
// canonical size is returned as-is.
func EnsureSize(v []float32) []float32 {
	if len(v) == Dimension {
		return v
	}
	out := make([]float32, Dimension)
	copy(out, v)
	return out
}

// Deterministic derives a fallback embedding from text alone. It is a pure
// function: identical text always yields a bit-identical vector, so scores
// computed against it are stable across calls. The vector is generated by
// seeding a xorshift PRNG with the FNV-1a hash of the text and drawing
// Dimension values in [-1, 1].
func Deterministic(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}

	v := make([]float32, Dimension)
	for i := range v {
		// xorshift64
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		// Map the top 53 bits onto [-1, 1).
		v[i] = float32(float64(state>>11)/float64(1<<52) - 1)
	}
	return v
}
