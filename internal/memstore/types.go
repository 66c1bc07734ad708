package memstore

import "time"

// DocumentStatus tracks where a document is in the ingestion lifecycle.
type DocumentStatus string

const (
	StatusQueued     DocumentStatus = "queued"
	StatusProcessing DocumentStatus = "processing"
	StatusDone       DocumentStatus = "done"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a stored memory item: a piece of ingested text with its
// chunked, embedded representation living in the chunks table.
type Document struct {
	ID        string         `json:"id"`
	OrgID     string         `json:"orgId"`
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Content   string         `json:"content,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Chunk is one contiguous slice of a document's text. Chunks are immutable
// once indexed; re-ingesting a document replaces its chunk set.
type Chunk struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	OrgID      string         `json:"orgId"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	// Embedding is nil for rows indexed before embedding support; the
	// search engine substitutes a deterministic fallback vector.
	Embedding []float32 `json:"-"`
}

// ChunkRow is a chunk joined with its parent document, as returned by the
// bulk retrieval read. Document is nil for orphan rows.
type ChunkRow struct {
	Chunk
	Document *Document
}

// ListOptions narrows a document list read.
type ListOptions struct {
	ContainerTags []string
	Limit         int
	Offset        int
}
