// modules/debug/debug.go
//
// Operational introspection for the render cache and template registry.
//
//	GET  /debug/cache             size, capacity, keys, and templates
//	GET  /debug/cache?key=<k>     adds "contains" for one key
//	POST /debug/cache/clear       empties the page cache
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/stencil/internal/module"
	"github.com/yanizio/stencil/internal/view"
)

func init() {
	module.Register(http.MethodGet, "/debug/cache", stats)
	module.Register(http.MethodPost, "/debug/cache/clear", clearCache)
}

type template struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Version uint64 `json:"version"`
}

type cacheStats struct {
	Size      int        `json:"size"`
	Capacity  int        `json:"capacity"`
	Keys      []string   `json:"keys"`
	Contains  *bool      `json:"contains,omitempty"`
	Dev       bool       `json:"dev"`
	Sealed    bool       `json:"sealed"`
	Templates []template `json:"templates"`
}

// stats writes a JSON snapshot.  Keys are listed most recently used first.
func stats(m *view.Manager, w http.ResponseWriter, r *http.Request) {
	reg := m.Registry()
	out := cacheStats{
		Size:     m.CacheLen(),
		Capacity: m.CacheCap(),
		Keys:     m.CacheKeys(),
		Dev:      m.Dev(),
		Sealed:   reg.Sealed(),
	}
	if key := r.URL.Query().Get("key"); key != "" {
		ok := m.ContainsKey(key)
		out.Contains = &ok
	}
	for _, name := range reg.Names() {
		path, _ := reg.Path(name)
		out.Templates = append(out.Templates, template{Name: name, Path: path, Version: reg.Version(name)})
	}
	writeJSON(w, http.StatusOK, out)
}

func clearCache(m *view.Manager, w http.ResponseWriter, _ *http.Request) {
	before := m.CacheLen()
	m.ClearCache()
	writeJSON(w, http.StatusOK, map[string]int{"cleared": before})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
