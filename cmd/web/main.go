// cmd/web/main.go
//
// stencil – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load config (conf/.env → conf/global.yaml → STENCIL_* env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Build the template engine named by render.engine and register every
//     file under render.template_dir.  A bad template is fatal here.
//
//  4. Production: seal the registry (lock-free renders, no reload).
//     Development: leave it open and install the per-request reload
//     middleware.
//
//  5. Build the render manager (page cache, minify mode).
//
//  6. Router:
//
//     • /               – index template, conditional GET, uncached
//     • /pages/{page}   – pages/<page> template, cached by page key;
//                         non-canonical slugs 404
//     • /metrics        – Prometheus
//     • module routes   – module.Mount (e.g., /debug/cache)
//
//  7. Serve until SIGINT or SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/stencil/internal/config"
	"github.com/yanizio/stencil/internal/engine"
	"github.com/yanizio/stencil/internal/logger"
	"github.com/yanizio/stencil/internal/middleware"
	"github.com/yanizio/stencil/internal/module"
	"github.com/yanizio/stencil/internal/registry"
	"github.com/yanizio/stencil/internal/routing"
	"github.com/yanizio/stencil/internal/server"
	"github.com/yanizio/stencil/internal/view"

	_ "github.com/yanizio/stencil/modules/debug" // cache introspection
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Abs(cfg.Log.Dir), cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Templates ───────────────────────────────────────────────────
	//
	m, err := buildManager(cfg, logOut)
	if err != nil {
		logOut.Fatalw("template registration failed", "err", err)
	}

	//
	// ── 2.  Router ──────────────────────────────────────────────────────
	//
	r := newRouter(cfg, m, logOut)

	//
	// ── 3.  Serve until signalled ───────────────────────────────────────
	//
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.HTTP.ListenAddr, r, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	if err := server.Run(ctx, srv, logOut); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
}

// buildManager registers the template directory and wraps it in a
// view.Manager configured from cfg.Render.
func buildManager(cfg *config.Config, logOut *zap.SugaredLogger) (*view.Manager, error) {
	rc := cfg.Render
	eng, err := engine.New(rc.Engine)
	if err != nil {
		return nil, err
	}

	reg := registry.New(eng, registry.WithReload(rc.Dev()), registry.WithLogger(logOut))
	dir := cfg.Paths.Abs(rc.TemplateDir)
	if _, err := reg.RegisterDir(dir, rc.Extensions...); err != nil {
		return nil, err
	}
	if !rc.Dev() {
		reg.Seal()
	}

	m := view.New(reg, view.Options{
		CacheCapacity: rc.CacheCapacity,
		ReadPromotion: rc.PromoteOnRead,
		Minify:        rc.MinifyMode(),
		Dev:           rc.Dev(),
		Logger:        logOut,
	})
	logOut.Infow("render manager ready",
		"mode", rc.Mode,
		"engine", rc.Engine,
		"templates", reg.Len(),
		"cache_capacity", m.CacheCap(),
		"minify", rc.MinifyMode().String(),
	)
	return m, nil
}

// newRouter mounts the page routes, /metrics, and module routes.
func newRouter(cfg *config.Config, m *view.Manager, logOut *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(logOut))
	r.Use(middleware.Security)
	if cfg.Render.Dev() {
		r.Use(middleware.Reload(m, logOut))
	}

	r.Method(http.MethodGet, "/", m.Handler("index", "", pageData))
	r.Get("/pages/{page}", func(w http.ResponseWriter, req *http.Request) {
		page := chi.URLParam(req, "page")
		if !routing.IsSlug(page) {
			http.NotFound(w, req)
			return
		}
		name := "pages/" + page
		if _, ok := m.Registry().Path(name); !ok {
			http.NotFound(w, req)
			return
		}
		data, _ := pageData(req)
		m.Serve(w, req, name, "pages::"+page, data)
	})
	r.Handle("/metrics", promhttp.Handler())

	module.Mount(r, m)
	return r
}

var demoPages = []string{"about", "contact"}

// pageData is the render context shared by the demo pages.  It must not
// vary per request for cached routes, or every client gets the first
// caller's values.
func pageData(req *http.Request) (any, error) {
	links := make([]string, 0, len(demoPages))
	for _, p := range demoPages {
		links = append(links, routing.BuildPath("pages", p))
	}
	return map[string]any{
		"site":  "stencil",
		"path":  req.URL.Path,
		"pages": demoPages,
		"links": links,
	}, nil
}
