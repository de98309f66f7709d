package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/prefs"
	"github.com/lalithlochan/officebell/internal/scheduler"
)

// DefaultIdleTTL is how long an orchestrator with nothing live and nothing
// pending is kept after its last use.
const DefaultIdleTTL = 30 * time.Minute

// RegistryOptions are the shared dependencies handed to every orchestrator.
type RegistryOptions struct {
	Store     prefs.Store
	Ephemeral notify.EphemeralSink
	Observers []notify.SnapshotObserver
	Haptics   notify.HapticSignaler

	// NewTimers builds the scheduler for one user. Defaults to a
	// wall-clock scheduler.
	NewTimers func() notify.Timers
	// IdleTTL bounds how long an idle orchestrator is retained.
	// Defaults to DefaultIdleTTL.
	IdleTTL time.Duration
	Logger  *zap.Logger
}

type registryEntry struct {
	orch     *notify.Orchestrator
	lastUsed time.Time
}

// Registry holds one orchestrator per user, created on first use and
// dropped by EvictIdle once it has been idle for IdleTTL.
type Registry struct {
	mu            sync.Mutex
	orchestrators map[string]*registryEntry
	// loading counts in-flight first loads per user; latest holds
	// preferences written while such a load was running.
	loading map[string]int
	latest  map[string]*notify.Preferences
	opts    RegistryOptions
	logger  *zap.Logger
	now     func() time.Time
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewTimers == nil {
		logger := opts.Logger
		opts.NewTimers = func() notify.Timers {
			return scheduler.New(scheduler.SystemClock{}, logger)
		}
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	return &Registry{
		orchestrators: make(map[string]*registryEntry),
		loading:       make(map[string]int),
		latest:        make(map[string]*notify.Preferences),
		opts:          opts,
		logger:        opts.Logger.Named("registry"),
		now:           time.Now,
	}
}

// Get returns the user's orchestrator, creating it and loading its
// preferences on first use. Users without stored preferences start from
// notify.DefaultPreferences. A store error is returned and nothing is
// cached, so the next request retries the load.
func (r *Registry) Get(ctx context.Context, userID string) (*notify.Orchestrator, error) {
	r.mu.Lock()
	if e, ok := r.orchestrators[userID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.orch, nil
	}
	r.loading[userID]++
	r.mu.Unlock()

	o := notify.New(notify.Options{
		UserID:    userID,
		Timers:    r.opts.NewTimers(),
		Ephemeral: r.opts.Ephemeral,
		Haptics:   r.opts.Haptics,
		Observers: r.opts.Observers,
		Logger:    r.opts.Logger,
	})

	found, err := o.LoadPreferences(ctx, r.opts.Store)
	if err != nil {
		r.mu.Lock()
		r.doneLoadingLocked(userID)
		r.mu.Unlock()
		o.Close()
		return nil, fmt.Errorf("load preferences for %s: %w", userID, err)
	}
	if !found {
		defaults := notify.DefaultPreferences()
		o.SetPreferences(&defaults)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	latest := r.latest[userID]
	r.doneLoadingLocked(userID)

	if e, ok := r.orchestrators[userID]; ok {
		// Lost the race to a concurrent Get.
		o.Close()
		e.lastUsed = r.now()
		return e.orch, nil
	}
	if latest != nil {
		// A write landed while the store read was in flight.
		o.SetPreferences(latest)
	}
	r.orchestrators[userID] = &registryEntry{orch: o, lastUsed: r.now()}
	r.logger.Debug("orchestrator created",
		zap.String("user_id", userID),
		zap.Bool("stored_preferences", found),
	)
	return o, nil
}

func (r *Registry) doneLoadingLocked(userID string) {
	r.loading[userID]--
	if r.loading[userID] <= 0 {
		delete(r.loading, userID)
		delete(r.latest, userID)
	}
}

// Lookup returns the orchestrator only if it already exists.
func (r *Registry) Lookup(userID string) (*notify.Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.orchestrators[userID]
	if !ok {
		return nil, false
	}
	return e.orch, true
}

// RefreshPreferences applies freshly stored preferences to the user's
// orchestrator. When the orchestrator is still being created they are held
// and applied once its load finishes. Users with neither are untouched.
func (r *Registry) RefreshPreferences(userID string, p notify.Preferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.orchestrators[userID]; ok {
		e.orch.SetPreferences(&p)
		return
	}
	if r.loading[userID] > 0 {
		r.latest[userID] = &p
	}
}

// EvictIdle closes and drops orchestrators unused for IdleTTL that have no
// live notifications and no pending reminders. It returns how many were
// dropped.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.opts.IdleTTL)
	evicted := 0
	for userID, e := range r.orchestrators {
		if e.lastUsed.After(cutoff) {
			continue
		}
		if len(e.orch.Live()) > 0 || len(e.orch.PendingReminders()) > 0 {
			continue
		}
		e.orch.Close()
		delete(r.orchestrators, userID)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle orchestrators",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(r.orchestrators)),
		)
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orchestrators)
}

// Close stops every orchestrator's timers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.orchestrators {
		e.orch.Close()
		delete(r.orchestrators, id)
	}
}
