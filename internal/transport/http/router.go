// Package http assembles the HTTP surface: middleware chain, module
// routes, health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"landshare/pkg/platform/middleware/auth"
	"landshare/pkg/platform/middleware/metadata"
	"landshare/pkg/platform/middleware/requestid"
	"landshare/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports backend health for /healthz. Nil checkers are
// skipped so dev mode (no postgres, no redis) stays healthy.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router needs.
type Deps struct {
	Logger         *slog.Logger
	Verifier       auth.Verifier
	Handlers       []Registrar
	HealthCheckers map[string]HealthChecker
}

// NewRouter builds the full route tree. Module routes sit behind the
// bearer-token middleware; /healthz and /metrics are unauthenticated.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", healthHandler(deps.HealthCheckers))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller(deps.Verifier, deps.Logger))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})

	return r
}

type healthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

func healthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Backends: map[string]string{}}
		status := http.StatusOK
		for name, checker := range checkers {
			if checker == nil {
				continue
			}
			if err := checker.Health(r.Context()); err != nil {
				resp.Status = "degraded"
				resp.Backends[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Backends[name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
