package build

import (
	"time"

	"github.com/starford/jera/internal/apperr"
)

// Report summarizes one build run. It is what the CLI prints, the
// preview API serves and the SSE broker broadcasts after rebuilds.
type Report struct {
	Posts     int             `json:"posts"`
	Pages     int             `json:"pages"`
	Generated int             `json:"generated"`
	Static    int             `json:"static"`
	Skipped   int             `json:"skipped"`
	Drafts    int             `json:"drafts"`
	Errors    []*apperr.Error `json:"errors,omitempty"`
	Duration  time.Duration   `json:"duration"`
	OutputDir string          `json:"output_dir"`
	BuiltAt   time.Time       `json:"built_at"`
}

// Failed reports whether any error was recorded. A failed build still
// writes the documents that rendered, but the process must exit
// non-zero.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// Written returns the total number of output documents.
func (r *Report) Written() int {
	return r.Posts + r.Pages + r.Generated + r.Static
}
