package registry

import (
	"errors"
	"fmt"

	"github.com/yanizio/stencil/internal/engine"
)

var (
	// ErrNotFound is wrapped by RenderError for unknown template names.
	ErrNotFound = engine.ErrNotFound

	// ErrSealed is returned when registering after Seal.
	ErrSealed = errors.New("registry: sealed, templates are immutable")
)

// RegistrationError reports a template that could not be read or compiled.
// At startup it is fatal; during reload the previous template stays active.
type RegistrationError struct {
	Name string
	Path string // empty for in-memory sources
	Err  error
}

func (e *RegistrationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("register template %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("register template %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// RenderError reports a failed render.  It also carries minification
// failures so callers see one error type for "no page produced".
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %s: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
