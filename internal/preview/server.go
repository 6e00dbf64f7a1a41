// Package preview serves a staged site from local disk so it can be checked
// in a browser before it is deployed.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/devfolio/internal/logfields"
)

const shutdownTimeout = 5 * time.Second

// NewHandler returns a router serving the files under root, plus /health.
func NewHandler(root string) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/*", noCache(http.FileServer(http.Dir(root))))

	return r
}

// Pages are regenerated on every run; never let the browser keep a stale copy.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Serve serves root on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil on a clean shutdown.
func Serve(ctx context.Context, ln net.Listener, root string) error {
	srv := &http.Server{
		Handler:           NewHandler(root),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("preview listening", slog.String("addr", ln.Addr().String()), logfields.Path(root))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
