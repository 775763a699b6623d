// internal/view/manager.go
//
// Render orchestrator: registry, fingerprint, conditional match, minify,
// and the page cache, behind one entry point.
//
// Public helpers
// --------------
//   - Build          – render, fingerprint, 304 decision, minify.
//   - BuildCached    – same, but consult and fill the page cache by key.
//   - BuildFromCache – cache-only answer, never renders.
//   - Serve/Handler  – the same flow wired to net/http.
//
// Order of work (Build)
// ---------------------
//  1. Render through the registry.  Errors go back to the caller untouched.
//  2. Fingerprint the raw output.
//  3. If the client's If-None-Match weak-matches, stop: 304, no minify.
//  4. Minify when the resolved mode says so.  A minifier failure is a
//     RenderError; unminified HTML is never served in its place.
//
// BuildCached runs steps 1–4 once per key and stores the result.  A reload
// that recompiles anything clears the whole cache.  Two
// goroutines that miss on the same key at the same moment both render; the
// cache lock only protects the map.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/stencil/internal/cache"
	"github.com/yanizio/stencil/internal/etag"
	"github.com/yanizio/stencil/internal/metrics"
	"github.com/yanizio/stencil/internal/minify"
	"github.com/yanizio/stencil/internal/registry"
)

// DefaultCacheCapacity is used when Options.CacheCapacity is negative.
const DefaultCacheCapacity = 64

// Options configures a Manager.
type Options struct {
	CacheCapacity int         // 0 disables the page cache, <0 means DefaultCacheCapacity
	ReadPromotion bool        // cache reads refresh recency
	Minify        minify.Mode // default mode for Serve/Handler
	Dev           bool        // resolves minify.Auto
	Minifier      minify.Minifier
	Logger        *zap.SugaredLogger
}

// Manager is shared by every request goroutine.
type Manager struct {
	reg      *registry.Registry
	cache    *cache.LRU
	minifier minify.Minifier
	mode     minify.Mode
	dev      bool
	log      *zap.SugaredLogger
}

// New wires a Manager around reg.
func New(reg *registry.Registry, opts Options) *Manager {
	capacity := opts.CacheCapacity
	if capacity < 0 {
		capacity = DefaultCacheCapacity
	}
	var copts []cache.Option
	if opts.ReadPromotion {
		copts = append(copts, cache.WithReadPromotion())
	}

	m := &Manager{
		reg:      reg,
		cache:    cache.New(capacity, copts...),
		minifier: opts.Minifier,
		mode:     opts.Minify,
		dev:      opts.Dev,
		log:      opts.Logger,
	}
	if m.minifier == nil {
		m.minifier = minify.NewHTML()
	}
	if m.log == nil {
		m.log = zap.S()
	}
	return m
}

/*──────────────────────────────── build ───────────────────────────────────*/

// Build renders name against data and decides between a full response and
// not-modified.  Nothing is cached.
func (m *Manager) Build(inm etag.IfNoneMatch, mode minify.Mode, name string, data any) (*Response, error) {
	raw, tag, err := m.render(name, data)
	if err != nil {
		return nil, err
	}
	if inm.WeakEq(tag) {
		metrics.NotModifiedTotal.Inc()
		return notModified(tag, false), nil
	}
	body, err := m.minify(mode, name, raw)
	if err != nil {
		return nil, err
	}
	return &Response{body: body, tag: tag}, nil
}

// BuildCached answers from the page cache when key is present and fills it
// on a miss.  The stored entry is the final (possibly minified) HTML plus
// the fingerprint of the raw render.
func (m *Manager) BuildCached(inm etag.IfNoneMatch, key string, mode minify.Mode, name string, data any) (*Response, error) {
	if res, ok := m.BuildFromCache(inm, key); ok {
		return res, nil
	}

	raw, tag, err := m.render(name, data)
	if err != nil {
		return nil, err
	}
	body, err := m.minify(mode, name, raw)
	if err != nil {
		return nil, err
	}
	m.cache.Insert(key, cache.Entry{HTML: body, ETag: tag})

	if inm.WeakEq(tag) {
		metrics.NotModifiedTotal.Inc()
		return notModified(tag, false), nil
	}
	return &Response{body: body, tag: tag}, nil
}

// BuildFromCache looks key up without rendering.  ok is false on a miss.
func (m *Manager) BuildFromCache(inm etag.IfNoneMatch, key string) (*Response, bool) {
	e, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	if inm.WeakEq(e.ETag) {
		metrics.NotModifiedTotal.Inc()
		return notModified(e.ETag, true), true
	}
	return &Response{body: e.HTML, tag: e.ETag, cached: true}, true
}

func (m *Manager) render(name string, data any) (string, etag.EntityTag, error) {
	raw, err := m.reg.Render(name, data)
	if err != nil {
		return "", etag.EntityTag{}, err
	}
	return raw, etag.ComputeString(raw), nil
}

func (m *Manager) minify(mode minify.Mode, name, raw string) (string, error) {
	if !mode.Enabled(m.dev) {
		return raw, nil
	}
	out, err := m.minifier.Minify(raw)
	if err != nil {
		metrics.RenderErrorsTotal.Inc()
		return "", &registry.RenderError{Name: name, Err: err}
	}
	return out, nil
}

/*─────────────────────────────── registry ─────────────────────────────────*/

// Render is a plain render with no fingerprint, minify, or cache.
func (m *Manager) Render(name string, data any) (string, error) {
	return m.reg.Render(name, data)
}

// ReloadIfNeeded recompiles changed templates and, when any were
// recompiled, drops the page cache so cached routes pick up the edit.
// No-op in production.
func (m *Manager) ReloadIfNeeded() error {
	n, err := m.reg.ReloadChanged()
	if n > 0 {
		dropped := m.cache.Len()
		m.cache.Clear()
		m.log.Infow("render cache cleared after reload", "templates", n, "entries", dropped)
	}
	return err
}

// Registry exposes the template table for introspection.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Dev reports whether the manager runs in development mode.
func (m *Manager) Dev() bool { return m.dev }

// Mode is the default minify mode used by Serve and Handler.
func (m *Manager) Mode() minify.Mode { return m.mode }

/*──────────────────────────────── cache ───────────────────────────────────*/

func (m *Manager) CacheLen() int                      { return m.cache.Len() }
func (m *Manager) CacheCap() int                      { return m.cache.Cap() }
func (m *Manager) CacheKeys() []string                { return m.cache.Keys() }
func (m *Manager) ContainsKey(key string) bool        { return m.cache.Contains(key) }
func (m *Manager) Get(key string) (cache.Entry, bool) { return m.cache.Get(key) }

// Insert stores e under key and returns the value it replaced, if any.
func (m *Manager) Insert(key string, e cache.Entry) (cache.Entry, bool) {
	return m.cache.Insert(key, e)
}

// ClearCache drops every cached page.
func (m *Manager) ClearCache() {
	m.cache.Clear()
	m.log.Infow("render cache cleared")
}

/*───────────────────────────────── http ───────────────────────────────────*/

// DataFunc builds the render context for one request.
type DataFunc func(r *http.Request) (any, error)

// Serve runs the build flow for r and writes the result.  An empty key
// skips the cache.  Failures are logged and answered with 500.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request, name, key string, data any) {
	inm := etag.FromRequest(r)

	var (
		res *Response
		err error
	)
	if key == "" {
		res, err = m.Build(inm, m.mode, name, data)
	} else {
		res, err = m.BuildCached(inm, key, m.mode, name, data)
	}
	if err != nil {
		m.log.Errorw("render failed", "template", name, "key", key, "path", r.URL.Path, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	res.ServeHTTP(w, r)
}

// Handler adapts one template into an http.Handler.  dataFn may be nil.
func (m *Manager) Handler(name, key string, dataFn DataFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data any
		if dataFn != nil {
			d, err := dataFn(r)
			if err != nil {
				m.log.Errorw("render data failed", "template", name, "path", r.URL.Path, "err", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			data = d
		}
		m.Serve(w, r, name, key, data)
	})
}
