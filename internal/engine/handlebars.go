package engine

import (
	"fmt"

	"github.com/aymerick/raymond"
)

// Handlebars renders Mustache/Handlebars sources through raymond.  Values
// are HTML-escaped unless written with triple braces.
type Handlebars struct {
	helpers   map[string]any
	templates map[string]*raymond.Template
}

// NewHandlebars returns an empty Handlebars engine with the shared helpers.
func NewHandlebars() *Handlebars {
	return &Handlebars{
		helpers: map[string]any{
			"inc":          inc,
			"dec":          dec,
			"eq_str":       eqStr,
			"ne_str":       neStr,
			"lookup_map":   lookupMap,
			"lookup_array": lookupArray,
		},
		templates: make(map[string]*raymond.Template),
	}
}

func (e *Handlebars) Register(name, source string) error {
	t, err := raymond.Parse(source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	t.RegisterHelpers(e.helpers)
	e.templates[name] = t
	return nil
}

func (e *Handlebars) Render(name string, data any) (string, error) {
	t, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if data == nil {
		data = map[string]any{}
	}
	return t.Exec(data)
}

func (e *Handlebars) Unregister(name string) { delete(e.templates, name) }

func (e *Handlebars) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}
