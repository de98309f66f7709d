package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/prefs"
	"github.com/lalithlochan/officebell/internal/redis"
	"github.com/lalithlochan/officebell/internal/webhook"
)

// ShowDeduper replays the first outcome of a show request that carries an
// Idempotency-Key. *redis.ShowDeduper implements it.
type ShowDeduper interface {
	CheckOrReserve(ctx context.Context, userID, key string) (*redis.ShowRecord, error)
	Store(ctx context.Context, userID, key string, rec redis.ShowRecord) error
	Release(ctx context.Context, userID, key string) error
}

// AssistantCaller is the part of *webhook.Client the handler uses.
type AssistantCaller interface {
	Call(ctx context.Context, payload webhook.Payload, cfg webhook.Config) webhook.CallResult
}

// ShowRequest is the body of POST /v1/users/{userID}/notifications.
// DurationMs, when set, overrides Duration.
type ShowRequest struct {
	Kind        notify.Kind         `json:"kind"`
	Category    notify.Category     `json:"category"`
	Channel     notify.Channel      `json:"channel"`
	Title       string              `json:"title"`
	Body        string              `json:"body,omitempty"`
	Duration    notify.DurationTier `json:"duration,omitempty"`
	DurationMs  *int                `json:"duration_ms,omitempty"`
	Actions     []notify.Action     `json:"actions,omitempty"`
	Dismissible bool                `json:"dismissible"`
	NoHaptic    bool                `json:"no_haptic,omitempty"`
	Data        map[string]string   `json:"data,omitempty"`
}

func (s ShowRequest) toRequest() notify.Request {
	req := notify.Request{
		Kind:        s.Kind,
		Category:    s.Category,
		Channel:     s.Channel,
		Title:       s.Title,
		Body:        s.Body,
		Duration:    notify.Tier(s.Duration),
		Actions:     s.Actions,
		Dismissible: s.Dismissible,
		NoHaptic:    s.NoHaptic,
		Data:        s.Data,
	}
	if s.DurationMs != nil {
		req.Duration = notify.Millis(*s.DurationMs)
	}
	return req
}

// ShowResponse is returned for every show outcome.
type ShowResponse struct {
	ID     string        `json:"id,omitempty"`
	Status notify.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// ReminderRequest is the body of POST /v1/users/{userID}/reminders.
type ReminderRequest struct {
	EventAt time.Time         `json:"event_at"`
	Title   string            `json:"title"`
	Body    string            `json:"body,omitempty"`
	Kind    notify.Kind       `json:"kind,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// ErrorResponse represents an error in problem+json format
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Handler holds dependencies for API handlers
type Handler struct {
	logger    *zap.Logger
	registry  *Registry
	store     prefs.Store
	dedup     ShowDeduper     // nil if Redis not configured
	assistant AssistantCaller // nil if no webhook endpoint
	webhook   webhook.Config
}

// HandlerOptions wires optional features into the handler.
type HandlerOptions struct {
	Dedup     ShowDeduper
	Assistant AssistantCaller
	Webhook   webhook.Config
}

func NewHandler(logger *zap.Logger, registry *Registry, store prefs.Store, opts HandlerOptions) *Handler {
	return &Handler{
		logger:    logger.Named("api"),
		registry:  registry,
		store:     store,
		dedup:     opts.Dedup,
		assistant: opts.Assistant,
		webhook:   opts.Webhook,
	}
}

// statusCode maps a show or reminder outcome to its HTTP status.
func statusCode(s notify.Status) int {
	switch s {
	case notify.StatusDelivered, notify.StatusScheduled:
		return http.StatusCreated
	case notify.StatusSuppressed:
		return http.StatusOK
	case notify.StatusSkipped:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) orchestrator(w http.ResponseWriter, r *http.Request) (*notify.Orchestrator, bool) {
	userID := chi.URLParam(r, "userID")
	o, err := h.registry.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to prepare orchestrator",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		h.writeError(w, http.StatusServiceUnavailable, "preferences_unavailable", "Preferences could not be loaded", "")
		return nil, false
	}
	return o, true
}

// ShowNotification handles POST /v1/users/{userID}/notifications.
// Supports idempotency via the Idempotency-Key header.
func (h *Handler) ShowNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	idempotencyKey := r.Header.Get("Idempotency-Key")

	var body ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}
	if body.Title == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing title", "title is required")
		return
	}
	if body.Channel != "" && body.Channel != notify.ChannelEphemeral && body.Channel != notify.ChannelPersistent {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid channel", "channel must be ephemeral or persistent")
		return
	}
	if body.Category != "" && !body.Category.Valid() {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid category", "")
		return
	}

	if idempotencyKey != "" && h.dedup != nil {
		rec, err := h.dedup.CheckOrReserve(ctx, userID, idempotencyKey)
		if err != nil {
			if errors.Is(err, redis.ErrShowInFlight) {
				h.writeError(w, http.StatusConflict, "duplicate_request",
					"Request is already being processed",
					"Another request with this idempotency key is in progress")
				return
			}
			h.logger.Warn("idempotency check failed, proceeding",
				zap.Error(err),
				zap.String("idempotency_key", idempotencyKey),
			)
			idempotencyKey = ""
		} else if rec != nil {
			w.Header().Set("X-Idempotency-Replayed", "true")
			status := notify.Status(rec.Status)
			h.writeJSON(w, statusCode(status), ShowResponse{ID: rec.ID, Status: status})
			return
		}
	}

	o, ok := h.orchestrator(w, r)
	if !ok {
		h.release(ctx, userID, idempotencyKey)
		return
	}

	res := o.Show(ctx, body.toRequest())
	resp := ShowResponse{ID: res.ID, Status: res.Status}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}

	if idempotencyKey != "" && h.dedup != nil {
		switch res.Status {
		case notify.StatusFailed, notify.StatusSkipped:
			h.release(ctx, userID, idempotencyKey)
		default:
			if err := h.dedup.Store(ctx, userID, idempotencyKey, redis.ShowRecord{ID: res.ID, Status: string(res.Status)}); err != nil {
				h.logger.Warn("failed to store show outcome",
					zap.Error(err),
					zap.String("idempotency_key", idempotencyKey),
				)
			}
		}
	}

	h.logger.Info("show handled",
		zap.String("user_id", userID),
		zap.String("id", res.ID),
		zap.String("kind", string(body.Kind)),
		zap.String("status", string(res.Status)),
	)
	h.writeJSON(w, statusCode(res.Status), resp)
}

func (h *Handler) release(ctx context.Context, userID, key string) {
	if key == "" || h.dedup == nil {
		return
	}
	if err := h.dedup.Release(ctx, userID, key); err != nil {
		h.logger.Warn("failed to release idempotency key", zap.Error(err))
	}
}

// ListLive handles GET /v1/users/{userID}/notifications.
func (h *Handler) ListLive(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	live := o.Live()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  live,
		"count": len(live),
	})
}

// UpdateNotification handles PATCH /v1/users/{userID}/notifications/{id}.
func (h *Handler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch notify.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if !o.Update(id, patch) {
		h.writeError(w, http.StatusNotFound, "not_found", "Notification not found", "")
		return
	}
	n, _ := o.Get(id)
	h.writeJSON(w, http.StatusOK, n)
}

// DismissNotification handles DELETE /v1/users/{userID}/notifications/{id}.
// Dismissing an unknown id is not an error.
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	o.Dismiss(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// DismissAll handles DELETE /v1/users/{userID}/notifications.
func (h *Handler) DismissAll(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"dismissed": o.DismissAll()})
}

// ScheduleReminder handles POST /v1/users/{userID}/reminders.
func (h *Handler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var body ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}
	if body.EventAt.IsZero() || body.Title == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing required fields", "event_at and title are required")
		return
	}

	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	res := o.ScheduleReminder(r.Context(), notify.Reminder{
		EventAt: body.EventAt,
		Title:   body.Title,
		Body:    body.Body,
		Kind:    body.Kind,
		Data:    body.Data,
	})
	h.writeJSON(w, statusCode(res.Status), res)
}

// ListReminders handles GET /v1/users/{userID}/reminders.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	pending := o.PendingReminders()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  pending,
		"count": len(pending),
	})
}

// CancelReminder handles DELETE /v1/users/{userID}/reminders/{id}.
func (h *Handler) CancelReminder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if !o.CancelReminder(chi.URLParam(r, "id")) {
		h.writeError(w, http.StatusNotFound, "not_found", "Reminder not found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /v1/users/{userID}/preferences. Users without
// stored preferences see the defaults.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	p, err := h.store.GetPreferences(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get preferences", zap.Error(err), zap.String("user_id", userID))
		h.writeError(w, http.StatusInternalServerError, "database_error", "Failed to load preferences", "")
		return
	}
	if p == nil {
		defaults := notify.DefaultPreferences()
		p = &defaults
	}
	h.writeJSON(w, http.StatusOK, p)
}

// PutPreferences handles PUT /v1/users/{userID}/preferences and refreshes
// the live orchestrator, if there is one.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	p := notify.DefaultPreferences()
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	if err := h.store.SavePreferences(r.Context(), userID, p); err != nil {
		if errors.Is(err, prefs.ErrInvalidPreferences) {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid preferences", err.Error())
			return
		}
		h.logger.Error("failed to save preferences", zap.Error(err), zap.String("user_id", userID))
		h.writeError(w, http.StatusInternalServerError, "database_error", "Failed to save preferences", "")
		return
	}

	h.registry.RefreshPreferences(userID, p)

	h.logger.Info("preferences updated", zap.String("user_id", userID))
	h.writeJSON(w, http.StatusOK, p)
}

// AssistantInteraction handles POST /v1/assistant/interactions. The body is
// the webhook payload; the response is the CallResult.
func (h *Handler) AssistantInteraction(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		h.writeError(w, http.StatusServiceUnavailable, "assistant_disabled", "Assistant webhook is not configured", "")
		return
	}

	var payload webhook.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}
	if payload.InteractionType == "" || payload.SessionID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing required fields", "interaction_type and sessionId are required")
		return
	}

	result := h.assistant.Call(r.Context(), payload, h.webhook)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	h.writeJSON(w, status, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in problem+json format
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
