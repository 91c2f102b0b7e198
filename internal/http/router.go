// Package httpapi assembles the service router. Transport concerns only;
// business logic stays in the domain packages.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	verificationhandler "dinehalal/internal/verification/handler"
	"dinehalal/pkg/platform/httputil"
)

// HealthChecker reports connectivity of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RegistryState exposes the registry load state for the health endpoint.
type RegistryState interface {
	Loaded() bool
	Len() int
}

// Deps collects everything the router mounts.
type Deps struct {
	Verification *verificationhandler.Handler
	Registry     RegistryState

	// Optional dependency checks by name, nil entries are skipped.
	Checks map[string]HealthChecker
}

// NewRouter wires all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(v1 chi.Router) {
		deps.Verification.Register(v1)
	})

	r.Get("/healthz", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"registry_loaded": deps.Registry.Loaded(),
			"registry_size":   deps.Registry.Len(),
		}

		healthy := true
		for name, check := range deps.Checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status[name] = "unhealthy"
				healthy = false
			} else {
				status[name] = "ok"
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	}
}
