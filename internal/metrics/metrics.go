package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "officebell_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	notificationsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_notifications_shown_total",
			Help: "Show outcomes by kind, channel, and status",
		},
		[]string{"kind", "channel", "status"},
	)

	notificationsDismissed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_notifications_dismissed_total",
			Help: "Persistent notifications dismissed, by cause",
		},
		[]string{"cause"},
	)

	liveNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "officebell_live_notifications",
			Help: "Persistent notifications currently live across all users",
		},
	)

	remindersScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_reminders_total",
			Help: "Reminder scheduling outcomes",
		},
		[]string{"status"},
	)

	webhookAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_assistant_webhook_attempts_total",
			Help: "Assistant webhook attempts by outcome",
		},
		[]string{"outcome"},
	)

	webhookCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "officebell_assistant_webhook_call_duration_seconds",
			Help:    "Wall-clock duration of a webhook call including retries",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"success"},
	)

	sinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_sink_deliveries_total",
			Help: "Ephemeral sink deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	prefsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officebell_preferences_cache_total",
			Help: "Preference cache lookups by result",
		},
		[]string{"result"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "officebell_circuit_breaker_state",
			Help: "Circuit breaker state by name (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	rateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "officebell_rate_limit_rejections_total",
			Help: "Requests rejected by rate limiter",
		},
	)

	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "officebell_db_connections_active",
			Help: "Active database connections",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordShow records the outcome of a show call
func RecordShow(kind, channel, status string) {
	notificationsShown.WithLabelValues(kind, channel, status).Inc()
}

// RecordDismiss records a dismissal; cause is "explicit", "all" or "expired"
func RecordDismiss(cause string) {
	notificationsDismissed.WithLabelValues(cause).Inc()
}

// AddLiveNotifications adjusts the live notification gauge
func AddLiveNotifications(delta int) {
	liveNotifications.Add(float64(delta))
}

// RecordReminder records a reminder scheduling outcome
func RecordReminder(status string) {
	remindersScheduled.WithLabelValues(status).Inc()
}

// RecordWebhookAttempt records a single webhook attempt outcome
func RecordWebhookAttempt(outcome string) {
	webhookAttempts.WithLabelValues(outcome).Inc()
}

// RecordWebhookCall records the total duration of a webhook call
func RecordWebhookCall(success bool, duration time.Duration) {
	webhookCallDuration.WithLabelValues(strconv.FormatBool(success)).Observe(duration.Seconds())
}

// RecordSinkDelivery records an ephemeral sink delivery result
func RecordSinkDelivery(sink, status string) {
	sinkDeliveries.WithLabelValues(sink, status).Inc()
}

// RecordPreferencesCache records a cache "hit" or "miss"
func RecordPreferencesCache(result string) {
	prefsCacheHits.WithLabelValues(result).Inc()
}

// SetBreakerState records the current state of a named circuit breaker
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordRateLimitRejection records a rate limit rejection
func RecordRateLimitRejection() {
	rateLimitRejections.Inc()
}

// SetDBConnections sets active database connection count
func SetDBConnections(count int) {
	dbConnectionsActive.Set(float64(count))
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		RecordRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}
