// internal/middleware/reload.go
//
// Per-request template reload for development mode.
//
// Context
// -------
// Reload wraps the router so every request first asks the render manager
// to recompile any template whose file changed.  Failures do not block the
// request: the registry keeps the previous compiled version, the error is
// logged, and the page is served from what is loaded.
//
// Notes
// -----
// • cmd/web installs this only when render.mode is development.  A sealed
//   registry turns ReloadIfNeeded into a no-op anyway.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// Reloader is satisfied by *view.Manager and *registry.Registry.
type Reloader interface {
	ReloadIfNeeded() error
}

// Reload returns middleware that runs rl.ReloadIfNeeded before next.
func Reload(rl Reloader, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.S()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rl.ReloadIfNeeded(); err != nil {
				log.Warnw("serving previous templates after reload failure",
					"path", r.URL.Path, "err", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}
