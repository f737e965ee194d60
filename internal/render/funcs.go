package render

import (
	"html/template"
	"time"

	"github.com/starford/jera/internal/models"
)

// funcMap is available in every layout and include.
var funcMap = template.FuncMap{
	"formatDate": formatDate,
	"safeHTML":   safeHTML,
	"limit":      limit,
}

func formatDate(layout string, t time.Time) string {
	return t.Format(layout)
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// limit truncates a post list, for "latest N posts" blocks.
func limit(n int, pages []*models.Page) []*models.Page {
	if n < 0 || n >= len(pages) {
		return pages
	}
	return pages[:n]
}
