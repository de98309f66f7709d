package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/prefs"
	"github.com/lalithlochan/officebell/internal/scheduler"
	"github.com/lalithlochan/officebell/internal/testutil"
)

func TestRegistry_LoadsStoredPreferences(t *testing.T) {
	store := prefs.NewMemoryStore()
	p := notify.DefaultPreferences()
	p.AdminAlerts = false
	require.NoError(t, store.SavePreferences(context.Background(), "u-1", p))

	r := NewRegistry(RegistryOptions{Store: store, Logger: zap.NewNop()})
	defer r.Close()

	o, err := r.Get(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, o.Preferences())
	assert.False(t, o.Preferences().AdminAlerts)
}

func TestRegistry_DefaultsWhenNothingStored(t *testing.T) {
	r := NewRegistry(RegistryOptions{Store: prefs.NewMemoryStore(), Logger: zap.NewNop()})
	defer r.Close()

	o, err := r.Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, notify.DefaultPreferences(), *o.Preferences())
}

func TestRegistry_SameOrchestratorPerUser(t *testing.T) {
	r := NewRegistry(RegistryOptions{Store: prefs.NewMemoryStore(), Logger: zap.NewNop()})
	defer r.Close()

	const workers = 32
	got := make([]*notify.Orchestrator, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := r.Get(context.Background(), "u-1")
			if err == nil {
				got[i] = o
			}
		}(i)
	}
	wg.Wait()

	for _, o := range got {
		assert.Same(t, got[0], o)
	}
	assert.Equal(t, 1, r.Len())

	other, err := r.Get(context.Background(), "u-2")
	require.NoError(t, err)
	assert.NotSame(t, got[0], other)
	assert.Equal(t, "u-2", other.UserID())
}

func TestRegistry_LookupAndClose(t *testing.T) {
	r := NewRegistry(RegistryOptions{Store: prefs.NewMemoryStore(), Logger: zap.NewNop()})

	_, ok := r.Lookup("u-1")
	assert.False(t, ok, "Lookup must not create")

	_, err := r.Get(context.Background(), "u-1")
	require.NoError(t, err)
	_, ok = r.Lookup("u-1")
	assert.True(t, ok)

	r.Close()
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_StoreError(t *testing.T) {
	r := NewRegistry(RegistryOptions{Store: failingStore{}, Logger: zap.NewNop()})

	_, err := r.Get(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, r.Len())
}

// gatedStore reads, then holds the result until release is closed, so a
// write can land between the read and its use.
type gatedStore struct {
	prefs.Store
	entered chan struct{}
	release chan struct{}
}

func (s gatedStore) GetPreferences(ctx context.Context, userID string) (*notify.Preferences, error) {
	p, err := s.Store.GetPreferences(ctx, userID)
	close(s.entered)
	<-s.release
	return p, err
}

func TestRegistry_WriteDuringFirstLoadWins(t *testing.T) {
	store := gatedStore{
		Store:   prefs.NewMemoryStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewRegistry(RegistryOptions{Store: store, Logger: zap.NewNop()})
	defer r.Close()

	type result struct {
		o   *notify.Orchestrator
		err error
	}
	done := make(chan result, 1)
	go func() {
		o, err := r.Get(context.Background(), "u-1")
		done <- result{o, err}
	}()

	<-store.entered
	updated := notify.DefaultPreferences()
	updated.Parking = false
	require.NoError(t, store.Store.SavePreferences(context.Background(), "u-1", updated))
	r.RefreshPreferences("u-1", updated)
	close(store.release)

	res := <-done
	require.NoError(t, res.err)
	assert.False(t, res.o.Preferences().Parking)
	assert.Empty(t, r.latest, "held writes are dropped once the load finishes")
	assert.Empty(t, r.loading)
}

func TestRegistry_RefreshWithoutOrchestratorIsNoop(t *testing.T) {
	r := NewRegistry(RegistryOptions{Store: prefs.NewMemoryStore(), Logger: zap.NewNop()})
	defer r.Close()

	r.RefreshPreferences("u-1", notify.DefaultPreferences())
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.latest)
}

func TestRegistry_EvictIdle(t *testing.T) {
	clock := testutil.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	r := NewRegistry(RegistryOptions{
		Store:     prefs.NewMemoryStore(),
		NewTimers: func() notify.Timers { return scheduler.New(clock, zap.NewNop()) },
		IdleTTL:   time.Minute,
		Logger:    zap.NewNop(),
	})
	defer r.Close()
	now := clock.Now()
	r.now = func() time.Time { return now }

	idle, err := r.Get(context.Background(), "idle")
	require.NoError(t, err)
	busy, err := r.Get(context.Background(), "busy")
	require.NoError(t, err)
	require.True(t, busy.Show(context.Background(), notify.Request{
		Channel:  notify.ChannelPersistent,
		Title:    "still here",
		Duration: notify.Persistent(),
	}).Delivered())
	_, err = r.Get(context.Background(), "recent")
	require.NoError(t, err)

	assert.Equal(t, 0, r.EvictIdle(), "nothing is past the idle TTL yet")

	now = now.Add(45 * time.Second)
	_, err = r.Get(context.Background(), "recent")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, r.EvictIdle())

	_, ok := r.Lookup("idle")
	assert.False(t, ok)
	_, ok = r.Lookup("busy")
	assert.True(t, ok, "a user with live notifications is kept")
	_, ok = r.Lookup("recent")
	assert.True(t, ok)

	again, err := r.Get(context.Background(), "idle")
	require.NoError(t, err)
	assert.NotSame(t, idle, again)
}
