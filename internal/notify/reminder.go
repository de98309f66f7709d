package notify

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
)

// Reminder describes an upcoming event the user should be reminded of.
type Reminder struct {
	EventAt time.Time         `json:"event_at"`
	Title   string            `json:"title"`
	Body    string            `json:"body,omitempty"`
	Kind    Kind              `json:"kind,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// ReminderResult reports what ScheduleReminder did. ID is the reminder id
// when Status is StatusScheduled and the notification id when the reminder
// was due already and shown straight away.
type ReminderResult struct {
	ID     string    `json:"id,omitempty"`
	Status Status    `json:"status"`
	FireAt time.Time `json:"fire_at"`
	Err    error     `json:"-"`
}

// PendingReminder is a reminder whose timer has not fired yet.
type PendingReminder struct {
	ID       string    `json:"id"`
	FireAt   time.Time `json:"fire_at"`
	Reminder Reminder  `json:"reminder"`
}

type pendingReminder struct {
	fireAt   time.Time
	reminder Reminder
}

func (r Reminder) request() Request {
	kind := r.Kind
	if kind == "" {
		kind = KindRoomBookingReminder
	}
	data := map[string]string{"event_at": r.EventAt.Format(time.RFC3339)}
	for k, v := range r.Data {
		data[k] = v
	}
	return Request{
		Kind:        kind,
		Category:    CategoryInfo,
		Channel:     ChannelPersistent,
		Title:       r.Title,
		Body:        r.Body,
		Duration:    Persistent(),
		Dismissible: true,
		Data:        data,
	}
}

// ScheduleReminder arms a persistent notification for the user's lead time
// before r.EventAt. Without loaded preferences nothing is scheduled. The
// reminder is gated both now and again when it fires.
func (o *Orchestrator) ScheduleReminder(ctx context.Context, r Reminder) ReminderResult {
	req := r.request()

	o.mu.Lock()
	if o.prefs == nil || o.timers == nil {
		o.mu.Unlock()
		o.logger.Debug("reminder skipped, orchestrator not ready")
		metrics.RecordReminder(string(StatusSkipped))
		return ReminderResult{Status: StatusSkipped}
	}
	fireAt := r.EventAt.Add(-time.Duration(o.prefs.LeadMinutes()) * time.Minute)
	if !o.prefs.Allows(req.Kind) {
		o.mu.Unlock()
		metrics.RecordReminder(string(StatusSuppressed))
		return ReminderResult{Status: StatusSuppressed, FireAt: fireAt}
	}

	if !fireAt.After(o.timers.Now()) {
		o.mu.Unlock()
		res := o.Show(ctx, req)
		metrics.RecordReminder(string(res.Status))
		return ReminderResult{ID: res.ID, Status: res.Status, FireAt: fireAt, Err: res.Err}
	}

	id := newReminderID()
	o.reminders[id] = &pendingReminder{fireAt: fireAt, reminder: r}
	o.timers.ArmAt(id, fireAt, func() { o.fireReminder(id) })
	o.mu.Unlock()

	o.logger.Debug("reminder scheduled",
		zap.String("id", id),
		zap.Time("event_at", r.EventAt),
		zap.Time("fire_at", fireAt),
	)
	metrics.RecordReminder(string(StatusScheduled))
	return ReminderResult{ID: id, Status: StatusScheduled, FireAt: fireAt}
}

func (o *Orchestrator) fireReminder(id string) {
	o.mu.Lock()
	p, ok := o.reminders[id]
	if ok {
		delete(o.reminders, id)
	}
	loaded := o.prefs != nil
	o.mu.Unlock()

	if !ok {
		return
	}
	if !loaded {
		metrics.RecordReminder("dropped")
		return
	}

	res := o.Show(context.Background(), p.reminder.request())
	o.logger.Debug("reminder fired",
		zap.String("reminder_id", id),
		zap.String("id", res.ID),
		zap.String("status", string(res.Status)),
	)
	metrics.RecordReminder("fired_" + string(res.Status))
}

// CancelReminder disarms a pending reminder. It returns false if the
// reminder is unknown or has already fired.
func (o *Orchestrator) CancelReminder(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.reminders[id]; !ok {
		return false
	}
	delete(o.reminders, id)
	if o.timers != nil {
		o.timers.Cancel(id)
	}
	metrics.RecordReminder("cancelled")
	return true
}

// PendingReminders lists reminders that have not fired, soonest first.
func (o *Orchestrator) PendingReminders() []PendingReminder {
	o.mu.Lock()
	out := make([]PendingReminder, 0, len(o.reminders))
	for id, p := range o.reminders {
		out = append(out, PendingReminder{ID: id, FireAt: p.fireAt, Reminder: p.reminder})
	}
	o.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}
