package search

// assemble shapes ranked document groups into the external result schema.
// Summary and full content are withheld unless explicitly requested, which
// keeps default payloads small.
func assemble(groups []*documentGroup, req *Request) []SearchResult {
	results := make([]SearchResult, 0, len(groups))
	for _, g := range groups {
		r := SearchResult{
			DocumentID: g.doc.ID,
			Title:      g.doc.Title,
			Type:       g.doc.Type,
			Score:      g.best,
			Metadata:   g.doc.Metadata,
			CreatedAt:  g.doc.CreatedAt,
			UpdatedAt:  g.doc.UpdatedAt,
			Chunks:     g.chunks,
			Source:     "memory",
		}
		if req.IncludeSummary {
			r.Summary = g.doc.Summary
		}
		if req.IncludeFullDocs {
			r.Content = g.doc.Content
		}
		results = append(results, r)
	}
	return results
}
