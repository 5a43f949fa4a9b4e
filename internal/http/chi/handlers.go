package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"github.com/divebase/divebase/webhook"
)

// Handlers sets up the delivery admin and ops API routes.
// metricsHandler may be nil when metrics export is disabled.
func Handlers(ctx context.Context, deliveryService webhook.UseCase, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("divebase-webhooks", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	// A synchronous delivery attempt can legitimately take the full 30s
	// outbound timeout, so the handler budget is above it
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Delivery admin routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/webhooks/{webhook_id}/stats", getStats(deliveryService).ServeHTTP)
		r.Post("/webhooks/{webhook_id}/test", postTestEvent(deliveryService).ServeHTTP)
		r.Post("/deliveries/{delivery_id}/retry", postRetry(deliveryService).ServeHTTP)
		r.Post("/deliveries/process", postProcess(deliveryService).ServeHTTP)
		r.Post("/deliveries/cleanup", postCleanup(deliveryService).ServeHTTP)
	})

	return r
}
