// Package httptransport exposes the operational HTTP surface: liveness,
// readiness and Prometheus metrics. The storefront domain itself is consumed
// as a library; request/response semantics for commerce operations live with
// the callers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/pkg/platform/middleware/metadata"
	"storefront/pkg/platform/middleware/requestid"
	"storefront/pkg/platform/middleware/requesttime"
	"storefront/pkg/requestcontext"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router wires the ops endpoints.
type Router struct {
	logger *slog.Logger
	deps   map[string]HealthChecker
}

// Option configures a Router.
type Option func(*Router)

// WithDependency registers a named dependency for the readiness probe.
// A nil checker is ignored so optional backends can be passed unconditionally.
func WithDependency(name string, checker HealthChecker) Option {
	return func(rt *Router) {
		if checker != nil {
			rt.deps[name] = checker
		}
	}
}

// New builds the ops handler.
func New(logger *slog.Logger, opts ...Option) http.Handler {
	rt := &Router{
		logger: logger,
		deps:   make(map[string]HealthChecker),
	}
	for _, opt := range opts {
		opt(rt)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(rt.accessLog)

	r.Get("/healthz", rt.handleHealthz)
	r.Get("/readyz", rt.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (rt *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz fails when any registered dependency is unreachable.
func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for name, dep := range rt.deps {
		if err := dep.Health(ctx); err != nil {
			rt.logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
			http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (rt *Router) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		ctx := r.Context()
		rt.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", metadata.GetClientIP(ctx),
			"user_agent", metadata.GetUserAgent(ctx),
			"request_id", requestcontext.RequestID(ctx),
		)
	})
}
