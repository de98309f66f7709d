// Package notify decides whether, where and for how long each notification
// of the application is delivered.
//
// An Orchestrator serves one user. It gates requests against that user's
// preferences, hands ephemeral toasts to a sink, and keeps persistent
// notifications in an ordered live set whose auto-dismiss timers it owns.
// User callbacks, haptics and observers are always invoked without the
// orchestrator lock held, so they may call back into it.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
)

// Status is the outcome of Show or ScheduleReminder.
type Status string

const (
	StatusDelivered  Status = "delivered"
	StatusScheduled  Status = "scheduled"
	StatusSuppressed Status = "suppressed"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// ShowResult reports what Show did. Suppressed and Skipped are not errors;
// Err is only set when Status is StatusFailed.
type ShowResult struct {
	ID     string `json:"id,omitempty"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// Delivered reports whether the notification reached its channel.
func (r ShowResult) Delivered() bool { return r.Status == StatusDelivered }

const historySize = 50

// Options configures an Orchestrator.
type Options struct {
	UserID    string
	Timers    Timers
	Ephemeral EphemeralSink
	Haptics   HapticSignaler
	Observers []SnapshotObserver
	Logger    *zap.Logger
}

// Orchestrator is the notification dispatcher for one user.
type Orchestrator struct {
	mu sync.Mutex

	userID    string
	timers    Timers
	ephemeral EphemeralSink
	haptics   HapticSignaler
	observers []SnapshotObserver
	logger    *zap.Logger

	prefs     *Preferences
	live      []*LiveNotification
	history   []LiveNotification
	reminders map[string]*pendingReminder
	revision  uint64
}

// New creates an Orchestrator. Timers is required; every other dependency
// is optional and its absence is reported through ShowResult.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		userID:    opts.UserID,
		timers:    opts.Timers,
		ephemeral: opts.Ephemeral,
		haptics:   opts.Haptics,
		observers: opts.Observers,
		logger:    logger.Named("orchestrator").With(zap.String("user_id", opts.UserID)),
		reminders: make(map[string]*pendingReminder),
	}
}

// UserID returns the user this orchestrator serves.
func (o *Orchestrator) UserID() string { return o.userID }

// SetPreferences replaces the loaded preferences. nil unloads them.
func (o *Orchestrator) SetPreferences(p *Preferences) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p == nil {
		o.prefs = nil
		return
	}
	cp := *p
	o.prefs = &cp
}

// LoadPreferences fetches preferences from store. It reports false when the
// user has none stored; the orchestrator then stays in its empty state.
func (o *Orchestrator) LoadPreferences(ctx context.Context, store PreferenceStore) (bool, error) {
	p, err := store.GetPreferences(ctx, o.userID)
	if err != nil {
		o.logger.Warn("failed to load preferences", zap.Error(err))
		return false, err
	}
	if p == nil {
		o.logger.Debug("no stored preferences")
		return false, nil
	}
	o.SetPreferences(p)
	return true, nil
}

// Preferences returns a copy of the loaded preferences, or nil.
func (o *Orchestrator) Preferences() *Preferences {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prefs == nil {
		return nil
	}
	cp := *o.prefs
	return &cp
}

// Show gates and delivers req. See ShowResult for the possible outcomes.
func (o *Orchestrator) Show(ctx context.Context, req Request) ShowResult {
	req = req.withDefaults().clone()

	o.mu.Lock()
	allowed := o.prefs.Allows(req.Kind)
	o.mu.Unlock()

	if !allowed {
		o.logger.Debug("notification suppressed by preference",
			zap.String("kind", string(req.Kind)),
		)
		metrics.RecordShow(string(req.Kind), string(req.Channel), string(StatusSuppressed))
		return ShowResult{Status: StatusSuppressed}
	}

	id := newNotificationID()
	durationMs := req.Duration.Resolve()

	var res ShowResult
	switch req.Channel {
	case ChannelEphemeral:
		res = o.showEphemeral(ctx, id, req, durationMs)
	case ChannelPersistent:
		res = o.showPersistent(ctx, id, req, durationMs)
	default:
		o.logger.Error("rejecting notification with unknown channel",
			zap.String("channel", string(req.Channel)),
		)
		res = ShowResult{Status: StatusFailed, Err: ErrUnknownChannel}
	}

	metrics.RecordShow(string(req.Kind), string(req.Channel), string(res.Status))
	if res.Status != StatusDelivered {
		return res
	}

	if !req.NoHaptic && o.haptics != nil {
		o.haptics.Signal(HapticFor(req.Category))
	}
	if req.OnShow != nil {
		req.OnShow(id)
	}
	if req.Channel == ChannelPersistent {
		o.armExpiry(id)
	}
	return res
}

func (o *Orchestrator) showEphemeral(ctx context.Context, id string, req Request, durationMs int) ShowResult {
	if o.ephemeral == nil {
		o.logger.Warn("ephemeral sink not configured, skipping toast",
			zap.String("kind", string(req.Kind)),
		)
		return ShowResult{Status: StatusSkipped}
	}

	toast := Toast{
		ID:          id,
		UserID:      o.userID,
		Kind:        req.Kind,
		Category:    req.Category,
		Title:       req.Title,
		Body:        req.Body,
		Duration:    time.Duration(durationMs) * time.Millisecond,
		Dismissible: req.Dismissible,
		Data:        req.Data,
	}
	if len(req.Actions) > 0 {
		primary := req.Actions[0]
		toast.PrimaryAction = &primary
	}

	if err := o.ephemeral.Accept(ctx, toast); err != nil {
		o.logger.Error("ephemeral sink rejected toast",
			zap.String("id", id),
			zap.Error(err),
		)
		return ShowResult{Status: StatusFailed, Err: err}
	}

	o.logger.Debug("toast delivered",
		zap.String("id", id),
		zap.String("kind", string(req.Kind)),
		zap.Int("duration_ms", durationMs),
	)
	return ShowResult{ID: id, Status: StatusDelivered}
}

func (o *Orchestrator) showPersistent(ctx context.Context, id string, req Request, durationMs int) ShowResult {
	if o.timers == nil {
		o.logger.Warn("scheduler not configured, skipping persistent notification")
		return ShowResult{Status: StatusSkipped}
	}

	o.mu.Lock()
	now := o.timers.Now()
	n := &LiveNotification{ID: id, Request: req, CreatedAt: now}
	if durationMs > 0 {
		expires := now.Add(time.Duration(durationMs) * time.Millisecond)
		n.ExpiresAt = &expires
	}
	o.live = append(o.live, n)
	snap := o.snapshotLocked()
	o.mu.Unlock()

	metrics.AddLiveNotifications(1)
	o.logger.Debug("persistent notification shown",
		zap.String("id", id),
		zap.String("kind", string(req.Kind)),
		zap.Int("duration_ms", durationMs),
	)
	o.publish(ctx, snap)
	return ShowResult{ID: id, Status: StatusDelivered}
}

// armExpiry starts the auto-dismiss timer once Show has run every callback,
// so an expiry can never be observed before OnShow. The deadline stays the
// one computed at insertion; a notification dismissed in the meantime gets
// no timer.
func (o *Orchestrator) armExpiry(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := o.indexLocked(id)
	if idx < 0 || o.live[idx].ExpiresAt == nil {
		return
	}
	o.timers.ArmAt(id, *o.live[idx].ExpiresAt, func() { o.expire(id) })
}

func (o *Orchestrator) expire(id string) {
	if o.dismiss(id, "expired") {
		o.logger.Debug("persistent notification expired", zap.String("id", id))
	}
}

// Dismiss removes a live notification, cancels its timer and invokes its
// OnDismiss once. Unknown or already dismissed ids are a no-op and return
// false.
func (o *Orchestrator) Dismiss(id string) bool {
	return o.dismiss(id, "explicit")
}

func (o *Orchestrator) dismiss(id, cause string) bool {
	o.mu.Lock()
	idx := o.indexLocked(id)
	if idx < 0 {
		o.mu.Unlock()
		return false
	}
	if o.timers != nil {
		o.timers.Cancel(id)
	}
	n := o.live[idx]
	o.live = append(o.live[:idx], o.live[idx+1:]...)
	o.retireLocked(n)
	snap := o.snapshotLocked()
	o.mu.Unlock()

	metrics.AddLiveNotifications(-1)
	metrics.RecordDismiss(cause)
	o.publish(context.Background(), snap)

	if n.Request.OnDismiss != nil {
		n.Request.OnDismiss(id)
	}
	return true
}

// DismissAll dismisses every live notification and returns how many there
// were. Toasts already handed to the ephemeral sink are not affected.
func (o *Orchestrator) DismissAll() int {
	o.mu.Lock()
	items := o.live
	o.live = nil
	for _, n := range items {
		if o.timers != nil {
			o.timers.Cancel(n.ID)
		}
		o.retireLocked(n)
	}
	var snap Snapshot
	if len(items) > 0 {
		snap = o.snapshotLocked()
	}
	o.mu.Unlock()

	if len(items) == 0 {
		return 0
	}

	metrics.AddLiveNotifications(-len(items))
	for range items {
		metrics.RecordDismiss("all")
	}
	o.publish(context.Background(), snap)

	for _, n := range items {
		if n.Request.OnDismiss != nil {
			n.Request.OnDismiss(n.ID)
		}
	}
	o.logger.Debug("dismissed all persistent notifications", zap.Int("count", len(items)))
	return len(items)
}

// Update merges patch into a live notification. Timers, haptics and OnShow
// are not touched. It returns false if id is not live.
func (o *Orchestrator) Update(id string, patch Patch) bool {
	o.mu.Lock()
	idx := o.indexLocked(id)
	if idx < 0 {
		o.mu.Unlock()
		return false
	}
	patch.apply(&o.live[idx].Request)
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.publish(context.Background(), snap)
	return true
}

// Live returns a copy of the live set in insertion order.
func (o *Orchestrator) Live() []LiveNotification {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.itemsLocked()
}

// Get returns a copy of one live notification.
func (o *Orchestrator) Get(id string) (LiveNotification, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := o.indexLocked(id)
	if idx < 0 {
		return LiveNotification{}, false
	}
	return o.live[idx].copy(), true
}

// History returns the most recently dismissed persistent notifications,
// oldest first.
func (o *Orchestrator) History() []LiveNotification {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]LiveNotification, len(o.history))
	copy(out, o.history)
	return out
}

// Close disarms every pending timer, including reminders. The live set is
// left as is.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timers != nil {
		o.timers.Stop()
	}
	o.reminders = make(map[string]*pendingReminder)
}

func (o *Orchestrator) indexLocked(id string) int {
	for i, n := range o.live {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (o *Orchestrator) retireLocked(n *LiveNotification) {
	var now time.Time
	if o.timers != nil {
		now = o.timers.Now()
	} else {
		now = time.Now()
	}
	done := n.copy()
	done.DismissedAt = &now
	o.history = append(o.history, done)
	if len(o.history) > historySize {
		o.history = o.history[len(o.history)-historySize:]
	}
}

func (o *Orchestrator) itemsLocked() []LiveNotification {
	out := make([]LiveNotification, len(o.live))
	for i, n := range o.live {
		out[i] = n.copy()
	}
	return out
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	o.revision++
	return Snapshot{UserID: o.userID, Revision: o.revision, Items: o.itemsLocked()}
}

func (o *Orchestrator) publish(ctx context.Context, snap Snapshot) {
	for _, obs := range o.observers {
		if err := obs.Render(ctx, snap); err != nil {
			o.logger.Warn("snapshot observer failed",
				zap.Uint64("revision", snap.Revision),
				zap.Error(err),
			)
		}
	}
}
