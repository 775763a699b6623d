// internal/module/registry.go
//
// A super-light registry: modules call Register(method, path, handler) in
// an init() function.  cmd/web mounts every registered route on the chi
// router once the render manager exists.
//
// Handler signature:
//
//	func(m *view.Manager, w http.ResponseWriter, r *http.Request)
//
// This gives handlers the shared manager (templates, page cache, and
// reload) without a package-level global.
package module

import (
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/stencil/internal/view"
)

// Handler is what modules register.
type Handler func(*view.Manager, http.ResponseWriter, *http.Request)

// Route is one registered endpoint.
type Route struct {
	Method string
	Path   string
	H      Handler
}

var (
	mu       sync.RWMutex
	registry = map[string]Route{}
)

// Register is called from module init() functions.  A second registration
// for the same method and path replaces the first.
func Register(method, path string, h Handler) {
	mu.Lock()
	registry[method+" "+path] = Route{Method: method, Path: path, H: h}
	mu.Unlock()
}

// Routes returns the registered routes sorted by path, then method.
func Routes() []Route {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Route, 0, len(registry))
	for _, rt := range registry {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Mount attaches every route to r, bound to m.
func Mount(r chi.Router, m *view.Manager) {
	for _, rt := range Routes() {
		h := rt.H
		r.Method(rt.Method, rt.Path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			h(m, w, req)
		}))
	}
}
