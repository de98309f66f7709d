package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
	"github.com/lalithlochan/officebell/internal/redis"
)

// HealthCheck reports the status of one dependency.
type HealthCheck func(r *http.Request) (name string, detail interface{}, ok bool)

// RouterOptions carries what NewRouter needs besides the handler.
type RouterOptions struct {
	Limiter        *redis.RateLimiter
	RequestTimeout time.Duration
	Health         []HealthCheck
}

// NewRouter mounts the handler's routes under /v1 with the standard
// middleware stack, plus /health and /metrics.
func NewRouter(h *Handler, logger *zap.Logger, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(metrics.Middleware)
	r.Use(RequestLogger(logger))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(RateLimitMiddleware(opts.Limiter, logger, UserKeyFunc))

			r.Post("/notifications", h.ShowNotification)
			r.Get("/notifications", h.ListLive)
			r.Delete("/notifications", h.DismissAll)
			r.Patch("/notifications/{id}", h.UpdateNotification)
			r.Delete("/notifications/{id}", h.DismissNotification)

			r.Post("/reminders", h.ScheduleReminder)
			r.Get("/reminders", h.ListReminders)
			r.Delete("/reminders/{id}", h.CancelReminder)

			r.Get("/preferences", h.GetPreferences)
			r.Put("/preferences", h.PutPreferences)
		})

		r.With(RateLimitMiddleware(opts.Limiter, logger, IPKeyFunc)).
			Post("/assistant/interactions", h.AssistantInteraction)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		checks := make(map[string]interface{}, len(opts.Health))
		for _, check := range opts.Health {
			name, detail, ok := check(req)
			checks[name] = detail
			if !ok {
				status = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        http.StatusText(status),
			"orchestrators": h.registry.Len(),
			"checks":        checks,
		})
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}
