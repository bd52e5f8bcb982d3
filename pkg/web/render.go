package web

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"seconds": func(d time.Duration) string {
		return humanize.FtoaWithDigits(d.Seconds(), 2) + "s"
	},
}

// markdownRenderer turns model output into sanitized HTML for the preview.
type markdownRenderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render converts src to HTML. Conversion failures yield an empty preview.
func (r *markdownRenderer) Render(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}
