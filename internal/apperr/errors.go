// Package apperr defines application-level errors shared by the build
// pipeline, the HTTP API and the MCP server.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for the authoring surface.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Kind classifies a build error and decides its handling policy: parse
// and write errors abort the build, content and render errors are
// collected per item and the affected document is skipped.
type Kind int

const (
	KindParse Kind = iota
	KindContent
	KindRender
	KindWrite
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindContent:
		return "content"
	case KindRender:
		return "render"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Fatal reports whether an error of this kind must stop the build.
func (k Kind) Fatal() bool {
	return k == KindParse || k == KindWrite
}

// Error is a classified build error tied to the source or output path
// it affected. Path may be empty for site-level failures.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// New wraps err as a classified error for path.
func New(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Newf is New with a formatted cause.
func Newf(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// MarshalJSON flattens the error for report and API output.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Path    string `json:"path,omitempty"`
		Message string `json:"message"`
	}{Kind: e.Kind.String(), Path: e.Path, Message: e.Err.Error()})
}

// Collector accumulates recoverable errors during a build.
type Collector struct {
	errs []*Error
}

// Add records an error.
func (c *Collector) Add(e *Error) {
	c.errs = append(c.errs, e)
}

// Addf records a new classified error built from a format string.
func (c *Collector) Addf(kind Kind, path, format string, args ...any) {
	c.Add(Newf(kind, path, format, args...))
}

// Errors returns the recorded errors in insertion order.
func (c *Collector) Errors() []*Error { return c.errs }

// Len returns the number of recorded errors.
func (c *Collector) Len() int { return len(c.errs) }

// ByKind returns the recorded errors of one kind, in insertion order.
func (c *Collector) ByKind(k Kind) []*Error {
	var out []*Error
	for _, e := range c.errs {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
