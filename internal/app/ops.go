package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// opsHandler serves the operational endpoints: liveness and readiness.
func (a *App) opsHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
		defer cancel()

		if a.postgres != nil {
			if err := a.postgres.Ping(ctx); err != nil {
				a.logger.Warn("postgres readiness check failed", zap.Error(err))
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if a.redis != nil {
			if err := a.redis.Ping(ctx).Err(); err != nil {
				a.logger.Warn("redis readiness check failed", zap.Error(err))
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return r
}
