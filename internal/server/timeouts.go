// internal/server/timeouts.go
//
// HTTP server helper with explicit timeouts and graceful shutdown.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// The values come from the `http.*` config keys.  Zero falls back to the
// defaults below so a bare struct is still safe.
//
// Run serves until ctx is cancelled (cmd/web wires SIGINT and SIGTERM into
// ctx), then drains in-flight requests for up to ShutdownGrace.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second

	// ShutdownGrace bounds how long Run waits for active requests.
	ShutdownGrace = 30 * time.Second
)

// Timeouts mirrors config.HTTP without importing it.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// New constructs an *http.Server with the given timeouts.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       orDefault(t.Read, DefaultReadTimeout),
		ReadHeaderTimeout: orDefault(t.Read, DefaultReadTimeout),
		WriteTimeout:      orDefault(t.Write, DefaultWriteTimeout),
		IdleTimeout:       orDefault(t.Idle, DefaultIdleTimeout),
	}
}

// Run starts srv and blocks until ctx is done or the listener fails.  A
// clean shutdown returns nil.
func Run(ctx context.Context, srv *http.Server, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.S()
	}

	errc := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutdown signal received", "grace", ShutdownGrace.String())
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	log.Infow("server stopped gracefully")
	return nil
}
