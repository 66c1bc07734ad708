// Package preview renders stored document content to HTML for the
// document preview endpoint.
package preview

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts markdown document content to a standalone HTML page.
// Safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// NewRenderer creates a renderer with GFM tables, autolinks, and fenced
// code highlighting. Raw HTML in document content is escaped: stored
// documents come from API callers and are untrusted.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Renderer{
		md:   md,
		tmpl: template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// Render produces a full HTML page for the given document.
func (r *Renderer) Render(title, content string) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(content), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	var page bytes.Buffer
	err := r.tmpl.Execute(&page, map[string]any{
		"Title": title,
		"Body":  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("executing page template: %w", err)
	}
	return page.String(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #1f2328; }
pre { background: #f6f8fa; padding: 1rem; border-radius: 6px; overflow-x: auto; }
code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 0.9em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 0.4rem 0.8rem; }
blockquote { border-left: 4px solid #d1d9e0; margin-left: 0; padding-left: 1rem; color: #59636e; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`
