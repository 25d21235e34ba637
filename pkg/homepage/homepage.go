// Package homepage renders the optional operator-authored HOMEPAGE_FILE_PATH
// markdown file into the static HTML served at GET / (spec §1, §6).
package homepage

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmm "go.abhg.dev/goldmark/mermaid"
)

// pageTemplate wraps the sanitized markdown body with a minimal shell that
// surfaces the configured API base URL, the same way the teacher's views
// package templates operator-facing pages.
const pageTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>webdex</title></head>
<body>
<div id="content">{{.Body}}</div>
<script>window.WEBDEX_API_BASE_URL = {{.APIBaseURL}};</script>
</body>
</html>`

// Renderer converts the homepage markdown file to sanitized HTML, using the
// same goldmark + bluemonday pipeline the teacher uses for ingested docs.
type Renderer struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
	tmpl     *template.Template
}

// New builds a Renderer with GFM + mermaid support, matching
// pkg/prov/markdown.New's configuration.
func New() (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(
			extension.GFM,
			&gmm.Extender{RenderMode: gmm.RenderModeClient, NoScript: true},
		),
	)

	tmpl, err := template.New("homepage").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse homepage template: %w", err)
	}

	return &Renderer{md: md, sanitize: bluemonday.UGCPolicy(), tmpl: tmpl}, nil
}

type templateData struct {
	Body       template.HTML
	APIBaseURL string
}

// RenderFile reads path, converts it to sanitized HTML, and wraps it in the
// page shell templated with apiBaseURL (spec §6, API_BASE_URL). A file that
// cannot be read is an error; the API collaborator then serves the built-in
// page, as it does when HOMEPAGE_FILE_PATH is unset.
func (r *Renderer) RenderFile(path, apiBaseURL string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert homepage markdown: %w", err)
	}

	sanitized := r.sanitize.SanitizeBytes(buf.Bytes())

	var out bytes.Buffer

	data := templateData{Body: template.HTML(sanitized), APIBaseURL: apiBaseURL} //nolint:gosec // sanitized above via bluemonday
	if err := r.tmpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("failed to render homepage template: %w", err)
	}

	return out.Bytes(), nil
}

// DefaultPage is served when HOMEPAGE_FILE_PATH is not configured.
func DefaultPage(apiBaseURL string) []byte {
	return []byte(fmt.Sprintf(`<!DOCTYPE html><html><body><h1>webdex</h1><p>API base: %s</p></body></html>`, template.HTMLEscapeString(apiBaseURL)))
}
