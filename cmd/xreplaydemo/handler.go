package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xreplay"
)

// newHandler 组装路由：recover -> xreplay -> 业务路由
func newHandler(m *xreplay.Manager, logger xlog.Logger, activateHeader string) http.Handler {
	router := chi.NewRouter()
	log := m.Logger("xreplaydemo.handler")

	replay := m.HTTPMiddleware(
		xreplay.WithActivateHeader(activateHeader),
		xreplay.WithReplayErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error(r.Context(), "replay failed", xlog.Err(err), xlog.Path(r.URL.Path))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}),
	)
	router.Use(recoverMiddleware(logger), replay)

	router.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "world"
		}
		log.Debug(ctx, "resolving greeting", slog.String("name", name))
		log.Info(ctx, "greeting served", xlog.Path(r.URL.Path))
		fmt.Fprintf(w, "hello, %s\n", name)
	})

	router.Get("/debug", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log.Trace(ctx, "debug endpoint entered")
		m.Activate(ctx)
		log.Debug(ctx, "replay activated explicitly", slog.Int("buffered", m.Len(ctx)))
		fmt.Fprintln(w, "replay activated")
	})

	router.Get("/boom", func(_ http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log.Debug(ctx, "about to fail", xlog.Method(r.Method))
		panic("boom")
	})
	return router
}

// recoverMiddleware 在回放之后兜底 panic，返回 500
func recoverMiddleware(logger xlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error(r.Context(), "handler panic",
						slog.Any("panic", rec), xlog.Method(r.Method), xlog.Path(r.URL.Path))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
