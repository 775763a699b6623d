// internal/registry/registry.go
//
// Reloadable template registry.
//
/*
Context
--------
The Registry owns the engine's template table and remembers, for every
file-backed template, the source path and the modification time seen when
it was last compiled.  In development mode `ReloadIfNeeded()` runs once per
request: it stats every tracked file and recompiles only those whose mtime
moved forward (or was never known).  Untouched templates keep their compiled
handle, so a reload pass costs one stat per template.

In production the table is filled at startup and then sealed.  A sealed
registry rejects registrations, skips reload, and renders without taking
the lock.

Failure semantics
-----------------
  • Register* fails atomically: on error nothing is recorded for the name.
  • The sealed flag is checked again under the write lock, so nothing is
    installed once Seal has returned.
  • A reload failure (stat, read, or compile) is logged, the previous
    compiled template stays active, the recorded mtime is left alone so the
    next pass retries, and the scan moves on to the next template.  All
    failures from one pass come back combined via multierr.

Notes
-----
  • Edits that land inside the filesystem's mtime resolution after a reload
    can be missed until the next write.  Acceptable for a dev-only path.
  • Oxford commas, two spaces after periods.
*/
package registry

import (
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/stencil/internal/engine"
	"github.com/yanizio/stencil/internal/metrics"
)

// loadConcurrency bounds parallel file reads in RegisterDir.
const loadConcurrency = 8

// source is the bookkeeping for one registered name.
type source struct {
	path    string    // empty for in-memory templates
	mtime   time.Time // zero means unknown, forces reload
	version uint64    // bumped on every successful compile
}

// Registry wraps an engine with per-template reload tracking.
type Registry struct {
	mu     sync.RWMutex
	eng    engine.Engine
	files  map[string]*source
	reload bool
	sealed atomic.Bool
	log    *zap.SugaredLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithReload enables ReloadIfNeeded.  Off by default.
func WithReload(on bool) Option { return func(r *Registry) { r.reload = on } }

// WithLogger sets the logger; the global zap.S() is used otherwise.
func WithLogger(l *zap.SugaredLogger) Option { return func(r *Registry) { r.log = l } }

// New returns an empty registry over eng.
func New(eng engine.Engine, opts ...Option) *Registry {
	r := &Registry{
		eng:   eng,
		files: make(map[string]*source),
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = zap.S()
	}
	return r
}

/*──────────────────────────── registration ────────────────────────────────*/

// RegisterFile reads and compiles path under name and starts tracking its
// modification time.
func (r *Registry) RegisterFile(name, path string) error {
	if r.sealed.Load() {
		return &RegistrationError{Name: name, Path: path, Err: ErrSealed}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &RegistrationError{Name: name, Path: path, Err: err}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return &RegistrationError{Name: name, Path: path, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return &RegistrationError{Name: name, Path: path, Err: ErrSealed}
	}
	return r.install(name, path, info.ModTime(), string(src))
}

// RegisterString compiles an in-memory source.  It is never reloaded.
func (r *Registry) RegisterString(name, src string) error {
	if r.sealed.Load() {
		return &RegistrationError{Name: name, Err: ErrSealed}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return &RegistrationError{Name: name, Err: ErrSealed}
	}
	return r.install(name, "", time.Time{}, src)
}

// RegisterDir registers every template under root (see CollectTemplates)
// and returns how many were registered.  Files are read concurrently and
// compiled in name order; the first failure stops the batch.
func (r *Registry) RegisterDir(root string, exts ...string) (int, error) {
	if r.sealed.Load() {
		return 0, &RegistrationError{Path: root, Err: ErrSealed}
	}

	files, err := CollectTemplates(root, exts...)
	if err != nil {
		return 0, &RegistrationError{Path: root, Err: err}
	}

	type loaded struct {
		mtime time.Time
		src   string
	}
	out := make([]loaded, len(files))

	var g errgroup.Group
	g.SetLimit(loadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			info, err := os.Stat(f.Path)
			if err != nil {
				return &RegistrationError{Name: f.Name, Path: f.Path, Err: err}
			}
			src, err := os.ReadFile(f.Path)
			if err != nil {
				return &RegistrationError{Name: f.Name, Path: f.Path, Err: err}
			}
			out[i] = loaded{mtime: info.ModTime(), src: string(src)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return 0, &RegistrationError{Path: root, Err: ErrSealed}
	}
	for i, f := range files {
		if err := r.install(f.Name, f.Path, out[i].mtime, out[i].src); err != nil {
			return i, err
		}
	}
	r.log.Infow("templates registered", "dir", root, "count", len(files))
	return len(files), nil
}

// install compiles src and records it.  Caller holds r.mu.
func (r *Registry) install(name, path string, mtime time.Time, src string) error {
	if err := r.eng.Register(name, src); err != nil {
		return &RegistrationError{Name: name, Path: path, Err: err}
	}
	s, ok := r.files[name]
	if !ok {
		s = &source{}
		r.files[name] = s
	}
	s.path = path
	s.mtime = mtime
	s.version++
	return nil
}

// Unregister removes name and returns the file path it was loaded from.
// ok is false when name is unknown or the registry is sealed.
func (r *Registry) Unregister(name string) (path string, ok bool) {
	if r.sealed.Load() {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return "", false
	}

	s, ok := r.files[name]
	if !ok {
		return "", false
	}
	r.eng.Unregister(name)
	delete(r.files, name)
	return s.path, true
}

/*─────────────────────────────── reload ───────────────────────────────────*/

// ReloadIfNeeded recompiles file-backed templates whose modification time
// advanced.  It is a no-op unless the registry was built WithReload(true)
// and has not been sealed.
func (r *Registry) ReloadIfNeeded() error {
	_, err := r.ReloadChanged()
	return err
}

// ReloadChanged is ReloadIfNeeded that also reports how many templates were
// recompiled, so callers holding rendered output know when it went stale.
func (r *Registry) ReloadChanged() (int, error) {
	if !r.reload || r.sealed.Load() {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return 0, nil
	}

	var (
		n    int
		errs error
	)
	for _, name := range r.namesLocked() {
		s := r.files[name]
		if s.path == "" {
			continue
		}
		changed, err := r.reloadOne(name, s)
		if err != nil {
			metrics.ReloadErrorsTotal.Inc()
			r.log.Errorw("template reload failed", "template", name, "path", s.path, "err", err)
			errs = multierr.Append(errs, err)
			continue
		}
		if changed {
			n++
		}
	}
	return n, errs
}

// reloadOne checks a single template and reports whether it was
// recompiled.  Caller holds r.mu.
func (r *Registry) reloadOne(name string, s *source) (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, &RegistrationError{Name: name, Path: s.path, Err: err}
	}

	mtime := info.ModTime()
	if !s.mtime.IsZero() && !mtime.After(s.mtime) {
		return false, nil
	}

	src, err := os.ReadFile(s.path)
	if err != nil {
		return false, &RegistrationError{Name: name, Path: s.path, Err: err}
	}
	if err := r.eng.Register(name, string(src)); err != nil {
		return false, &RegistrationError{Name: name, Path: s.path, Err: err}
	}

	s.mtime = mtime
	s.version++
	metrics.ReloadTotal.Inc()
	r.log.Infow("template reloaded", "template", name, "path", s.path, "version", s.version)
	return true, nil
}

/*─────────────────────────────── render ───────────────────────────────────*/

// Render executes name against data.  Sealed registries render lock-free.
func (r *Registry) Render(name string, data any) (string, error) {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	metrics.RenderTotal.Inc()
	out, err := r.eng.Render(name, data)
	if err != nil {
		metrics.RenderErrorsTotal.Inc()
		return "", &RenderError{Name: name, Err: err}
	}
	return out, nil
}

// Seal freezes the table.  Further registrations fail with ErrSealed and
// ReloadIfNeeded does nothing.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

/*──────────────────────────── introspection ───────────────────────────────*/

func (r *Registry) Sealed() bool     { return r.sealed.Load() }
func (r *Registry) Reloadable() bool { return r.reload && !r.sealed.Load() }

// Names lists registered templates in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	out := make([]string, 0, len(r.files))
	for name := range r.files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len reports how many templates are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// Path returns the source file for name; "" for in-memory templates.
func (r *Registry) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.files[name]
	if !ok {
		return "", false
	}
	return s.path, true
}

// Version counts successful compiles of name, starting at 1.  It is 0 for
// unknown names.
func (r *Registry) Version(name string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.files[name]; ok {
		return s.version
	}
	return 0
}
