// Package engine is the template-language boundary.  An Engine compiles
// named sources and renders them against arbitrary data; it knows nothing
// about files, reloads, caching, or HTTP.
//
// Two engines ship with stencil:
//
//   - HTML        – Go html/template, contextual auto-escaping.
//   - Handlebars  – Mustache-style {{name}} templates via raymond.
//
// Engines are not safe for concurrent Register/Unregister.  The registry
// serializes writes and allows concurrent Render calls.
package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Render for unknown names.
var ErrNotFound = errors.New("template not found")

// Engine compiles and renders named templates.
type Engine interface {
	// Register compiles source under name, replacing any previous template
	// of that name only on success.
	Register(name, source string) error
	// Render executes name against data.
	Render(name string, data any) (string, error)
	// Unregister drops name.  Unknown names are ignored.
	Unregister(name string)
	// Has reports whether name is registered.
	Has(name string) bool
}

// New returns the engine for kind ("html" or "handlebars").
func New(kind string) (Engine, error) {
	switch kind {
	case "", "html":
		return NewHTML(), nil
	case "handlebars", "hbs":
		return NewHandlebars(), nil
	default:
		return nil, fmt.Errorf("engine: unknown kind %q", kind)
	}
}
