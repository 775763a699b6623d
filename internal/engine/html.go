package engine

import (
	"bytes"
	"fmt"
	"html/template"
)

// HTML renders with html/template.  Each name is its own template tree.
type HTML struct {
	funcs     template.FuncMap
	templates map[string]*template.Template
}

// NewHTML returns an empty html/template engine with the shared helpers.
func NewHTML() *HTML {
	return &HTML{
		funcs: template.FuncMap{
			"dict":         dict,
			"inc":          inc,
			"dec":          dec,
			"eq_str":       eqStr,
			"ne_str":       neStr,
			"lookup_map":   lookupMap,
			"lookup_array": lookupArray,
		},
		templates: make(map[string]*template.Template),
	}
}

func (e *HTML) Register(name, source string) error {
	t, err := template.New(name).Funcs(e.funcs).Parse(source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	e.templates[name] = t
	return nil
}

func (e *HTML) Render(name string, data any) (string, error) {
	t, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *HTML) Unregister(name string) { delete(e.templates, name) }

func (e *HTML) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}
