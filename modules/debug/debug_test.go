package debug

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/yanizio/stencil/internal/cache"
	"github.com/yanizio/stencil/internal/engine"
	"github.com/yanizio/stencil/internal/module"
	"github.com/yanizio/stencil/internal/registry"
	"github.com/yanizio/stencil/internal/view"
)

func newRouter(t *testing.T) (*view.Manager, http.Handler) {
	t.Helper()
	log := zap.NewNop().Sugar()
	reg := registry.New(engine.NewHandlebars(), registry.WithLogger(log))
	if err := reg.RegisterString("greet", "Hello, {{name}}!"); err != nil {
		t.Fatalf("RegisterString: %v", err)
	}
	m := view.New(reg, view.Options{CacheCapacity: 4, Logger: log})
	r := chi.NewRouter()
	module.Mount(r, m)
	return m, r
}

func TestStats(t *testing.T) {
	m, r := newRouter(t)
	m.Insert("a", cache.Entry{HTML: "A"})
	m.Insert("b", cache.Entry{HTML: "B"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/cache?key=a", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got cacheStats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	yes := true
	want := cacheStats{
		Size:      2,
		Capacity:  4,
		Keys:      []string{"b", "a"},
		Contains:  &yes,
		Templates: []template{{Name: "greet", Version: 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	m, r := newRouter(t)
	m.Insert("a", cache.Entry{HTML: "A"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/cache/clear", nil))
	if rec.Code != http.StatusOK || m.CacheLen() != 0 {
		t.Fatalf("clear: status %d, len %d", rec.Code, m.CacheLen())
	}
	if rec.Body.String() != "{\n  \"cleared\": 1\n}\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
