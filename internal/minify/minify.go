// internal/minify/minify.go
//
// HTML minification boundary.
//
// Context
// -------
// The view manager optionally shrinks rendered pages before they are sent
// or cached.  Minification is opaque to the rest of the stack: a Minifier
// takes text and returns text or an error.  Errors are never swallowed; the
// caller turns them into a render failure rather than serving unminified
// output when minified output was asked for.
//
// Mode
// ----
// Auto follows the runtime mode: off in development (readable markup while
// editing templates), on in production.
//
// Notes
// -----
//   - HTML uses tdewolff/minify with document tags and attribute quotes
//     kept, so the output is still a complete, valid page.
//   - Inline CSS, JS, and SVG are minified too.
package minify

import (
	"fmt"
	"regexp"
	"strings"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// Minifier shrinks rendered text.
type Minifier interface {
	Minify(text string) (string, error)
}

// Error wraps a minifier failure.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "minify: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Mode selects when minification runs.
type Mode int

const (
	Auto Mode = iota
	Always
	Never
)

// ParseMode maps config strings ("auto", "always", "never") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "always", "on", "true":
		return Always, nil
	case "never", "off", "false":
		return Never, nil
	}
	return Auto, fmt.Errorf("minify: unknown mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case Always:
		return "always"
	case Never:
		return "never"
	default:
		return "auto"
	}
}

// Enabled resolves m for the runtime mode.
func (m Mode) Enabled(dev bool) bool {
	switch m {
	case Always:
		return true
	case Never:
		return false
	default:
		return !dev
	}
}

// HTML minifies text/html with embedded stylesheets, scripts, and SVG.
type HTML struct {
	m *tdminify.M
}

// NewHTML returns a ready HTML minifier.  It is safe for concurrent use.
func NewHTML() *HTML {
	m := tdminify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return &HTML{m: m}
}

func (h *HTML) Minify(text string) (string, error) {
	out, err := h.m.String("text/html", text)
	if err != nil {
		return "", &Error{Err: err}
	}
	return out, nil
}

// Nop returns its input unchanged.
type Nop struct{}

func (Nop) Minify(text string) (string, error) { return text, nil }

// Func adapts a plain function to Minifier.
type Func func(string) (string, error)

func (f Func) Minify(text string) (string, error) { return f(text) }
