// Package memstore persists documents and their chunks, and serves the bulk
// chunk read the retrieval engine is built on. Every read is scoped by
// organization id; cross-tenant rows are unreachable by construction.
package memstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
)

// ErrNotFound is returned when a document does not exist in the caller's
// organization.
var ErrNotFound = errors.New("memstore: not found")

// minFetch is the floor for the bulk chunk read. Small limits still fetch
// enough candidates to survive downstream filtering.
const minFetch = 50

// overFetchFactor multiplies the requested limit for the raw read.
const overFetchFactor = 8

// Store persists documents and chunks in SQLite.
type Store struct {
	db    *db.DB
	cache *cache.ListCache
}

// NewStore creates a Store. The cache may be nil, in which case list reads
// always hit the database.
func NewStore(database *db.DB, listCache *cache.ListCache) *Store {
	return &Store{db: database, cache: listCache}
}

// CreateDocument inserts a document. A missing ID is generated; timestamps
// are set to now. List caches for the organization are invalidated.
func (s *Store) CreateDocument(ctx context.Context, doc Document) (*Document, error) {
	if doc.OrgID == "" {
		return nil, fmt.Errorf("memstore: document org id is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Type == "" {
		doc.Type = "text"
	}
	if doc.Status == "" {
		doc.Status = StatusDone
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, org_id, title, doc_type, content, summary, metadata, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OrgID, doc.Title, doc.Type, nullable(doc.Content), nullable(doc.Summary),
		string(marshalMetadata(doc.Metadata)), string(doc.Status), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	s.invalidate(doc.OrgID)
	return &doc, nil
}

// AddChunks inserts the chunk set for a document in one transaction.
// Chunks inherit the document's org id.
func (s *Store) AddChunks(ctx context.Context, doc *Document, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk insert: %w", err)
	}
	defer tx.Rollback()

	for i := range chunks {
		c := &chunks[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.DocumentID = doc.ID
		c.OrgID = doc.OrgID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, document_id, org_id, content, metadata, embedding)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.DocumentID, c.OrgID, c.Content, string(marshalMetadata(c.Metadata)), encodeVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}

	s.invalidate(doc.OrgID)
	return nil
}

// GetDocument fetches one document scoped to the caller's organization.
func (s *Store) GetDocument(ctx context.Context, orgID, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, org_id, title, doc_type, content, summary, metadata, status, created_at, updated_at
		 FROM documents WHERE id = ? AND org_id = ?`, id, orgID)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// SetDocumentStatus moves a document through the ingestion lifecycle.
func (s *Store) SetDocumentStatus(ctx context.Context, orgID, id string, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = ? WHERE id = ? AND org_id = ?`,
		string(status), time.Now().UTC(), id, orgID)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.invalidate(orgID)
	return nil
}

// DeleteDocument removes a document (and its chunks via cascade) within the
// caller's organization.
func (s *Store) DeleteDocument(ctx context.Context, orgID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND org_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.invalidate(orgID)
	return nil
}

// ListDocuments returns documents for an organization, newest first,
// optionally filtered by container tags. Results are served from the
// injected cache when present.
func (s *Store) ListDocuments(ctx context.Context, orgID string, opts ListOptions) ([]Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	key := cache.Key(orgID, opts.ContainerTags, limit, opts.Offset)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key).([]Document); ok {
			return cached, nil
		}
	}

	// Container tags live inside the JSON metadata column, so the tag
	// filter runs in Go. Pagination happens after filtering; pushing
	// LIMIT/OFFSET into SQL would page over unfiltered rows.
	query := `SELECT id, org_id, title, doc_type, content, summary, metadata, status, created_at, updated_at
		 FROM documents WHERE org_id = ?
		 ORDER BY created_at DESC, id`
	args := []any{orgID}
	if len(opts.ContainerTags) == 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if !TagsIntersect(ContainerTags(doc.Metadata), opts.ContainerTags) {
			continue
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if len(opts.ContainerTags) > 0 {
		if opts.Offset > 0 {
			if opts.Offset >= len(docs) {
				docs = []Document{}
			} else {
				docs = docs[opts.Offset:]
			}
		}
		if len(docs) > limit {
			docs = docs[:limit]
		}
	}

	if s.cache != nil {
		s.cache.Put(key, orgID, docs)
	}
	return docs, nil
}

// FetchChunks issues the single bulk read the search pipeline consumes:
// chunks joined with their parent documents, scoped to orgID, over-fetched
// by max(minFetch, limit×overFetchFactor) so enough candidates survive
// score filtering. No score-based filtering happens here.
func (s *Store) FetchChunks(ctx context.Context, orgID string, limit int) ([]ChunkRow, error) {
	fetch := limit * overFetchFactor
	if fetch < minFetch {
		fetch = minFetch
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.document_id, c.org_id, c.content, c.metadata, c.embedding,
		        d.id, d.org_id, d.title, d.doc_type, d.content, d.summary, d.metadata, d.status, d.created_at, d.updated_at
		 FROM chunks c
		 LEFT JOIN documents d ON d.id = c.document_id
		 WHERE c.org_id = ?
		 ORDER BY c.created_at, c.id
		 LIMIT ?`, orgID, fetch)
	if err != nil {
		return nil, fmt.Errorf("fetching chunks: %w", err)
	}
	defer rows.Close()

	var out []ChunkRow
	for rows.Next() {
		var (
			cr           ChunkRow
			chunkMeta    []byte
			embedding    []byte
			docID        sql.NullString
			docOrg       sql.NullString
			docTitle     sql.NullString
			docType      sql.NullString
			docContent   sql.NullString
			docSummary   sql.NullString
			docMeta      sql.NullString
			docStatus    sql.NullString
			docCreatedAt sql.NullTime
			docUpdatedAt sql.NullTime
		)
		err := rows.Scan(
			&cr.ID, &cr.DocumentID, &cr.OrgID, &cr.Content, &chunkMeta, &embedding,
			&docID, &docOrg, &docTitle, &docType, &docContent, &docSummary,
			&docMeta, &docStatus, &docCreatedAt, &docUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}

		cr.Metadata = normalizeMetadata(chunkMeta)
		cr.Embedding = decodeVector(embedding)

		if docID.Valid {
			cr.Document = &Document{
				ID:        docID.String,
				OrgID:     docOrg.String,
				Title:     docTitle.String,
				Type:      docType.String,
				Content:   docContent.String,
				Summary:   docSummary.String,
				Metadata:  normalizeMetadata([]byte(docMeta.String)),
				Status:    DocumentStatus(docStatus.String),
				CreatedAt: docCreatedAt.Time,
				UpdatedAt: docUpdatedAt.Time,
			}
		}
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows: %w", err)
	}
	return out, nil
}

// CountChunksMissingEmbedding returns how many chunks lack a stored vector.
func (s *Store) CountChunksMissingEmbedding(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE embedding IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting unembedded chunks: %w", err)
	}
	return n, nil
}

// ChunksMissingEmbedding returns up to limit chunks lacking a stored
// vector, oldest first. Used by the reembed backfill.
func (s *Store) ChunksMissingEmbedding(ctx context.Context, limit int) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, org_id, content, metadata
		 FROM chunks WHERE embedding IS NULL
		 ORDER BY created_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unembedded chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var meta []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.OrgID, &c.Content, &meta); err != nil {
			return nil, fmt.Errorf("scanning unembedded chunk: %w", err)
		}
		c.Metadata = normalizeMetadata(meta)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// SetChunkEmbedding stores a computed vector for an existing chunk.
func (s *Store) SetChunkEmbedding(ctx context.Context, chunkID string, vector []float32) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chunks SET embedding = ? WHERE id = ?`, encodeVector(vector), chunkID)
	if err != nil {
		return fmt.Errorf("storing chunk embedding: %w", err)
	}
	return nil
}

func (s *Store) invalidate(orgID string) {
	if s.cache != nil {
		s.cache.InvalidateOrg(orgID)
	}
}

// scanner abstracts *sql.Row and *sql.Rows for scanDocument.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc     Document
		content sql.NullString
		summary sql.NullString
		meta    []byte
		status  string
	)
	err := row.Scan(&doc.ID, &doc.OrgID, &doc.Title, &doc.Type, &content, &summary,
		&meta, &status, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Content = content.String
	doc.Summary = summary.String
	doc.Metadata = normalizeMetadata(meta)
	doc.Status = DocumentStatus(status)
	return &doc, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
