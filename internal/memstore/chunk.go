package memstore

import "strings"

// maxChunkChars bounds the size of one indexed chunk. Paragraphs are
// packed together until the next one would cross the bound.
const maxChunkChars = 1200

// SplitChunks breaks document content into chunk-sized pieces along
// paragraph boundaries. Oversized paragraphs are split at the nearest
// space before the bound. Empty content yields no chunks.
func SplitChunks(content string) []string {
	paragraphs := splitParagraphs(content)
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		for len(p) > maxChunkChars {
			flush()
			cut := strings.LastIndexByte(p[:maxChunkChars], ' ')
			if cut <= 0 {
				cut = maxChunkChars
			}
			chunks = append(chunks, strings.TrimSpace(p[:cut]))
			p = strings.TrimSpace(p[cut:])
		}
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p)+2 > maxChunkChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()
	return chunks
}

// splitParagraphs splits on blank lines and trims each paragraph.
func splitParagraphs(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
