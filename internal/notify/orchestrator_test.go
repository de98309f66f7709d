package notify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/scheduler"
	"github.com/lalithlochan/officebell/internal/testutil"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu      sync.Mutex
	toasts  []notify.Toast
	snaps   []notify.Snapshot
	haptics []notify.Haptic
	failSnk error
}

func (r *recorder) Accept(_ context.Context, t notify.Toast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSnk != nil {
		return r.failSnk
	}
	r.toasts = append(r.toasts, t)
	return nil
}

func (r *recorder) Render(_ context.Context, s notify.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
	return nil
}

func (r *recorder) Signal(h notify.Haptic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.haptics = append(r.haptics, h)
}

func (r *recorder) toastCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.toasts)
}

func (r *recorder) hapticList() []notify.Haptic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Haptic(nil), r.haptics...)
}

func (r *recorder) lastSnapshot() notify.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return notify.Snapshot{}
	}
	return r.snaps[len(r.snaps)-1]
}

type fixture struct {
	orch  *notify.Orchestrator
	clock *testutil.ManualClock
	sched *scheduler.Scheduler
	rec   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.NewManualClock(epoch)
	sched := scheduler.New(clock, zap.NewNop())
	rec := &recorder{}
	orch := notify.New(notify.Options{
		UserID:    "u-1",
		Timers:    sched,
		Ephemeral: rec,
		Haptics:   rec,
		Observers: []notify.SnapshotObserver{rec},
		Logger:    zap.NewNop(),
	})
	t.Cleanup(orch.Close)
	return &fixture{orch: orch, clock: clock, sched: sched, rec: rec}
}

func prefsWith(mut func(p *notify.Preferences)) *notify.Preferences {
	p := notify.DefaultPreferences()
	if mut != nil {
		mut(&p)
	}
	return &p
}

func TestShow_UniqueIDsUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	const workers, perWorker = 100, 100

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				res := f.orch.Show(context.Background(), notify.Request{Title: "hi", NoHaptic: true})
				mu.Lock()
				seen[res.ID] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, workers*perWorker, f.rec.toastCount())
	for id := range seen {
		assert.True(t, strings.HasPrefix(id, "notif_"), id)
		break
	}
}

func TestShow_EphemeralToast(t *testing.T) {
	f := newFixture(t)
	var shown []string

	res := f.orch.Show(context.Background(), notify.Request{
		Kind:     notify.KindBookingConfirmed,
		Category: notify.CategorySuccess,
		Title:    "Room booked",
		Body:     "Orion at 10:00",
		Actions: []notify.Action{
			{Label: "View", Trigger: "open_booking", Style: notify.ActionPrimary},
			{Label: "Close", Trigger: "dismiss"},
		},
		Dismissible: true,
		OnShow:      func(id string) { shown = append(shown, id) },
	})

	require.Equal(t, notify.StatusDelivered, res.Status)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{res.ID}, shown)

	require.Equal(t, 1, f.rec.toastCount())
	toast := f.rec.toasts[0]
	assert.Equal(t, res.ID, toast.ID)
	assert.Equal(t, "u-1", toast.UserID)
	assert.Equal(t, 4*time.Second, toast.Duration)
	require.NotNil(t, toast.PrimaryAction)
	assert.Equal(t, "open_booking", toast.PrimaryAction.Trigger)

	assert.Empty(t, f.orch.Live(), "ephemeral toasts are not tracked")
	assert.Equal(t, 0, f.sched.Len())
	assert.Equal(t, []notify.Haptic{notify.HapticSuccess}, f.rec.hapticList())
}

func TestShow_NoHaptic(t *testing.T) {
	f := newFixture(t)
	res := f.orch.Show(context.Background(), notify.Request{Title: "quiet", NoHaptic: true})
	require.True(t, res.Delivered())
	assert.Empty(t, f.rec.hapticList())
}

func TestShow_MissingSinkIsSkipped(t *testing.T) {
	clock := testutil.NewManualClock(epoch)
	orch := notify.New(notify.Options{UserID: "u-1", Timers: scheduler.New(clock, nil)})
	called := false

	res := orch.Show(context.Background(), notify.Request{Title: "x", OnShow: func(string) { called = true }})

	assert.Equal(t, notify.StatusSkipped, res.Status)
	assert.Empty(t, res.ID)
	assert.NoError(t, res.Err)
	assert.False(t, called)
}

func TestShow_SinkErrorIsFailed(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("push gateway unavailable")
	f.rec.failSnk = boom
	called := false

	res := f.orch.Show(context.Background(), notify.Request{Title: "x", OnShow: func(string) { called = true }})

	assert.Equal(t, notify.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, called)
	assert.Empty(t, f.rec.hapticList())
}

func TestShow_UnknownChannel(t *testing.T) {
	f := newFixture(t)
	res := f.orch.Show(context.Background(), notify.Request{Title: "x", Channel: "carrier_pigeon"})

	assert.Equal(t, notify.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, notify.ErrUnknownChannel)
	assert.Zero(t, f.rec.toastCount())
	assert.Empty(t, f.orch.Live())
}

func TestGatingMatrix(t *testing.T) {
	tests := []struct {
		kind notify.Kind
		off  func(p *notify.Preferences)
	}{
		{notify.KindBookingConfirmed, func(p *notify.Preferences) { p.RoomBookingConfirmations = false }},
		{notify.KindBookingCancelled, func(p *notify.Preferences) { p.RoomBookingConfirmations = false }},
		{notify.KindRoomBookingReminder, func(p *notify.Preferences) { p.RoomBookingReminders = false }},
		{notify.KindParkingReserved, func(p *notify.Preferences) { p.Parking = false }},
		{notify.KindParkingReleased, func(p *notify.Preferences) { p.Parking = false }},
		{notify.KindAttendanceReminder, func(p *notify.Preferences) { p.AttendanceReminders = false }},
		{notify.KindCheckIn, func(p *notify.Preferences) { p.AttendanceReminders = false }},
		{notify.KindAdminAlert, func(p *notify.Preferences) { p.AdminAlerts = false }},
		{notify.KindSystem, func(p *notify.Preferences) { p.SystemNotifications = false }},
	}

	for _, tt := range tests {
		for _, ch := range []notify.Channel{notify.ChannelEphemeral, notify.ChannelPersistent} {
			t.Run(fmt.Sprintf("%s/%s", tt.kind, ch), func(t *testing.T) {
				require.True(t, notify.Gated(tt.kind))

				f := newFixture(t)
				f.orch.SetPreferences(prefsWith(tt.off))
				called := false

				res := f.orch.Show(context.Background(), notify.Request{
					Kind:    tt.kind,
					Channel: ch,
					Title:   "gated",
					OnShow:  func(string) { called = true },
				})

				assert.Equal(t, notify.StatusSuppressed, res.Status)
				assert.Empty(t, res.ID)
				assert.NoError(t, res.Err)
				assert.Zero(t, f.rec.toastCount())
				assert.Empty(t, f.orch.Live())
				assert.Empty(t, f.rec.hapticList())
				assert.False(t, called)
				assert.Equal(t, 0, f.sched.Len())

				f.orch.SetPreferences(prefsWith(nil))
				res = f.orch.Show(context.Background(), notify.Request{Kind: tt.kind, Channel: ch, Title: "open"})
				assert.Equal(t, notify.StatusDelivered, res.Status)
			})
		}
	}
}

// Kinds outside the gating table are delivered even when every flag is
// off. New kinds are enabled until someone wires them to a preference.
func TestGating_UnmappedKindsFailOpen(t *testing.T) {
	f := newFixture(t)
	f.orch.SetPreferences(&notify.Preferences{})

	for _, kind := range []notify.Kind{notify.KindGeneral, notify.KindQRScan, notify.KindLeaveStatus, "some_future_kind"} {
		assert.False(t, notify.Gated(kind), kind)
		res := f.orch.Show(context.Background(), notify.Request{Kind: kind, Title: "x"})
		assert.Equal(t, notify.StatusDelivered, res.Status, kind)
	}
}

func TestGating_NoPreferencesLoaded(t *testing.T) {
	f := newFixture(t)
	require.Nil(t, f.orch.Preferences())

	res := f.orch.Show(context.Background(), notify.Request{Kind: notify.KindAdminAlert, Title: "x"})
	assert.Equal(t, notify.StatusDelivered, res.Status)
}

func TestDurationResolve(t *testing.T) {
	tests := []struct {
		name string
		d    notify.Duration
		want int
	}{
		{"short", notify.Tier(notify.TierShort), 2000},
		{"medium", notify.Tier(notify.TierMedium), 4000},
		{"long", notify.Tier(notify.TierLong), 6000},
		{"persistent", notify.Persistent(), 0},
		{"zero value", notify.Duration{}, 4000},
		{"unknown tier", notify.Tier("forever"), 4000},
		{"explicit", notify.Millis(1500), 1500},
		{"explicit overrides tier", notify.Duration{Tier: notify.TierLong, Millis: 250, Explicit: true}, 250},
		{"explicit zero", notify.Millis(0), 0},
		{"negative clamps", notify.Millis(-20), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Resolve())
		})
	}
}

func TestShow_PersistentTimers(t *testing.T) {
	f := newFixture(t)

	forever := f.orch.Show(context.Background(), notify.Request{
		Channel:  notify.ChannelPersistent,
		Title:    "stays",
		Duration: notify.Persistent(),
	})
	require.True(t, forever.Delivered())
	assert.False(t, f.sched.Armed(forever.ID), "persistent duration must not arm a timer")

	timed := f.orch.Show(context.Background(), notify.Request{
		Channel:  notify.ChannelPersistent,
		Title:    "goes",
		Duration: notify.Millis(1500),
	})
	require.True(t, timed.Delivered())
	deadline, ok := f.sched.Deadline(timed.ID)
	require.True(t, ok)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), deadline)

	n, ok := f.orch.Get(timed.ID)
	require.True(t, ok)
	require.NotNil(t, n.ExpiresAt)
	assert.Equal(t, deadline, *n.ExpiresAt)
	assert.Equal(t, epoch, n.CreatedAt)

	f.clock.Advance(1499 * time.Millisecond)
	assert.Len(t, f.orch.Live(), 2)
	f.clock.Advance(time.Millisecond)

	live := f.orch.Live()
	require.Len(t, live, 1)
	assert.Equal(t, forever.ID, live[0].ID)
}

func TestLive_PreservesInsertionOrder(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for i := 0; i < 5; i++ {
		res := f.orch.Show(context.Background(), notify.Request{
			Channel:  notify.ChannelPersistent,
			Title:    fmt.Sprintf("n%d", i),
			Duration: notify.Persistent(),
		})
		ids = append(ids, res.ID)
	}
	f.orch.Dismiss(ids[2])

	var got []string
	for _, n := range f.orch.Live() {
		got = append(got, n.ID)
	}
	assert.Equal(t, []string{ids[0], ids[1], ids[3], ids[4]}, got)
}

func TestDismiss_Idempotent(t *testing.T) {
	f := newFixture(t)
	dismissed := 0

	res := f.orch.Show(context.Background(), notify.Request{
		Channel:   notify.ChannelPersistent,
		Title:     "x",
		Duration:  notify.Tier(notify.TierLong),
		OnDismiss: func(string) { dismissed++ },
	})
	require.True(t, res.Delivered())
	require.True(t, f.sched.Armed(res.ID))

	assert.True(t, f.orch.Dismiss(res.ID))
	assert.False(t, f.orch.Dismiss(res.ID))
	assert.False(t, f.orch.Dismiss("notif_unknown"))

	assert.Equal(t, 1, dismissed)
	assert.False(t, f.sched.Armed(res.ID))
	assert.Empty(t, f.orch.Live())

	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, dismissed, "cancelled timer must not fire")

	history := f.orch.History()
	require.Len(t, history, 1)
	require.NotNil(t, history[0].DismissedAt)
	assert.Equal(t, epoch, *history[0].DismissedAt)
}

func TestShowThenDismiss_NeverObservedLive(t *testing.T) {
	f := newFixture(t)
	res := f.orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Title: "blink"})
	require.True(t, f.orch.Dismiss(res.ID))

	_, ok := f.orch.Get(res.ID)
	assert.False(t, ok)
	assert.Empty(t, f.rec.lastSnapshot().Items)
}

type slowRecorder struct {
	delay time.Duration
}

func (s slowRecorder) Render(context.Context, notify.Snapshot) error {
	time.Sleep(s.delay)
	return nil
}

func (s slowRecorder) Signal(notify.Haptic) { time.Sleep(s.delay) }

func TestShow_ExpiryNeverPrecedesOnShow(t *testing.T) {
	sched := scheduler.New(scheduler.SystemClock{}, zap.NewNop())
	slow := slowRecorder{delay: 20 * time.Millisecond}
	orch := notify.New(notify.Options{
		UserID:    "u-1",
		Timers:    sched,
		Haptics:   slow,
		Observers: []notify.SnapshotObserver{slow},
		Logger:    zap.NewNop(),
	})
	defer orch.Close()

	var mu sync.Mutex
	var order []string
	record := func(event string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, event)
	}
	dismissed := make(chan struct{})

	res := orch.Show(context.Background(), notify.Request{
		Channel:   notify.ChannelPersistent,
		Title:     "flash",
		Duration:  notify.Millis(1),
		OnShow:    func(string) { record("show") },
		OnDismiss: func(string) { record("dismiss"); close(dismissed) },
	})
	require.True(t, res.Delivered())

	select {
	case <-dismissed:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never expired")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"show", "dismiss"}, order)
}

func TestShow_DismissedInOnShowArmsNoTimer(t *testing.T) {
	f := newFixture(t)
	dismissals := 0

	res := f.orch.Show(context.Background(), notify.Request{
		Channel:   notify.ChannelPersistent,
		Title:     "gone at once",
		Duration:  notify.Millis(500),
		OnShow:    func(id string) { f.orch.Dismiss(id) },
		OnDismiss: func(string) { dismissals++ },
	})
	require.True(t, res.Delivered())

	assert.False(t, f.sched.Armed(res.ID))
	assert.Equal(t, 0, f.sched.Len())
	f.clock.Advance(time.Second)
	assert.Equal(t, 1, dismissals)
}

func TestShowUpdateElapse_DismissesOnce(t *testing.T) {
	f := newFixture(t)
	var dismissed []string

	res := f.orch.Show(context.Background(), notify.Request{
		Channel:   notify.ChannelPersistent,
		Category:  notify.CategoryInfo,
		Title:     "Uploading",
		Duration:  notify.Tier(notify.TierShort),
		OnDismiss: func(id string) { dismissed = append(dismissed, id) },
	})
	require.True(t, res.Delivered())
	hapticsBefore := len(f.rec.hapticList())

	title := "Upload complete"
	cat := notify.CategorySuccess
	require.True(t, f.orch.Update(res.ID, notify.Patch{Title: &title, Category: &cat}))
	assert.Equal(t, 1, f.sched.Len(), "update must not arm another timer")
	assert.Len(t, f.rec.hapticList(), hapticsBefore, "update must not signal haptics")

	n, ok := f.orch.Get(res.ID)
	require.True(t, ok)
	assert.Equal(t, "Upload complete", n.Request.Title)
	assert.Equal(t, notify.CategorySuccess, n.Request.Category)

	f.clock.Advance(2 * time.Second)
	f.clock.Advance(10 * time.Second)

	assert.Equal(t, []string{res.ID}, dismissed)
	assert.Empty(t, f.orch.Live())
	assert.False(t, f.orch.Update(res.ID, notify.Patch{Title: &title}))
}

func TestUpdate_IgnoresInvalidCategory(t *testing.T) {
	f := newFixture(t)
	res := f.orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Category: notify.CategoryWarning})

	bad := notify.Category("purple")
	require.True(t, f.orch.Update(res.ID, notify.Patch{Category: &bad, Data: map[string]string{"k": "v"}}))

	n, _ := f.orch.Get(res.ID)
	assert.Equal(t, notify.CategoryWarning, n.Request.Category)
	assert.Equal(t, "v", n.Request.Data["k"])
}

func TestDismissAll(t *testing.T) {
	f := newFixture(t)
	counts := map[string]int{}
	for i := 0; i < 3; i++ {
		f.orch.Show(context.Background(), notify.Request{
			Channel:   notify.ChannelPersistent,
			Title:     fmt.Sprintf("n%d", i),
			OnDismiss: func(id string) { counts[id]++ },
		})
	}
	f.orch.Show(context.Background(), notify.Request{Title: "toast"})
	require.Equal(t, 3, f.sched.Len())

	assert.Equal(t, 3, f.orch.DismissAll())
	assert.Equal(t, 0, f.orch.DismissAll())

	assert.Len(t, counts, 3)
	for id, c := range counts {
		assert.Equal(t, 1, c, id)
	}
	assert.Equal(t, 0, f.sched.Len())
	assert.Empty(t, f.orch.Live())
	assert.Equal(t, 1, f.rec.toastCount(), "toasts already handed off are untouched")

	f.clock.Advance(time.Minute)
	for _, c := range counts {
		assert.Equal(t, 1, c)
	}
}

func TestSnapshots_RevisionIncreases(t *testing.T) {
	f := newFixture(t)
	a := f.orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Title: "a"})
	f.orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Title: "b"})
	f.orch.Dismiss(a.ID)

	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	require.Len(t, f.rec.snaps, 3)
	for i, s := range f.rec.snaps {
		assert.Equal(t, uint64(i+1), s.Revision)
		assert.Equal(t, "u-1", s.UserID)
	}
	assert.Len(t, f.rec.snaps[1].Items, 2)
	assert.Len(t, f.rec.snaps[2].Items, 1)
}

func TestCallbacks_MayReenter(t *testing.T) {
	f := newFixture(t)
	var follow notify.ShowResult

	res := f.orch.Show(context.Background(), notify.Request{
		Channel: notify.ChannelPersistent,
		Title:   "first",
		OnShow: func(id string) {
			_, ok := f.orch.Get(id)
			assert.True(t, ok)
		},
		OnDismiss: func(string) {
			follow = f.orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Title: "second"})
		},
	})
	require.True(t, f.orch.Dismiss(res.ID))

	require.True(t, follow.Delivered())
	live := f.orch.Live()
	require.Len(t, live, 1)
	assert.Equal(t, "second", live[0].Request.Title)
}

func TestStoredRequestIsACopy(t *testing.T) {
	f := newFixture(t)
	data := map[string]string{"room": "Orion"}
	res := f.orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Data: data})
	data["room"] = "Vega"

	n, _ := f.orch.Get(res.ID)
	assert.Equal(t, "Orion", n.Request.Data["room"])

	n.Request.Data["room"] = "Lyra"
	again, _ := f.orch.Get(res.ID)
	assert.Equal(t, "Orion", again.Request.Data["room"])
}

type failingObserver struct{}

func (failingObserver) Render(context.Context, notify.Snapshot) error {
	return errors.New("queue closed")
}

func TestObserverErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	clock := testutil.NewManualClock(epoch)
	orch := notify.New(notify.Options{
		UserID:    "u-1",
		Timers:    scheduler.New(clock, nil),
		Observers: []notify.SnapshotObserver{failingObserver{}},
		Logger:    zap.New(core),
	})

	res := orch.Show(context.Background(), notify.Request{Channel: notify.ChannelPersistent, Title: "x"})

	assert.True(t, res.Delivered(), "observer failures do not fail the show")
	entries := logs.FilterMessage("snapshot observer failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

type stubStore struct {
	prefs *notify.Preferences
	err   error
}

func (s stubStore) GetPreferences(context.Context, string) (*notify.Preferences, error) {
	return s.prefs, s.err
}

func TestLoadPreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.orch.LoadPreferences(ctx, stubStore{})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, f.orch.Preferences())
	})

	t.Run("present", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.orch.LoadPreferences(ctx, stubStore{prefs: prefsWith(func(p *notify.Preferences) { p.Parking = false })})
		require.NoError(t, err)
		assert.True(t, ok)
		require.NotNil(t, f.orch.Preferences())
		assert.False(t, f.orch.Preferences().Parking)
	})

	t.Run("error", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.orch.LoadPreferences(ctx, stubStore{err: errors.New("db down")})
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Nil(t, f.orch.Preferences())
	})
}

func TestHapticFor(t *testing.T) {
	assert.Equal(t, notify.HapticSuccess, notify.HapticFor(notify.CategorySuccess))
	assert.Equal(t, notify.HapticError, notify.HapticFor(notify.CategoryError))
	assert.Equal(t, notify.HapticWarning, notify.HapticFor(notify.CategoryWarning))
	assert.Equal(t, notify.HapticLight, notify.HapticFor(notify.CategoryInfo))
	assert.Equal(t, notify.HapticMedium, notify.HapticFor(notify.CategoryConfirmation))
}

func TestClose_DisarmsTimers(t *testing.T) {
	f := newFixture(t)
	f.orch.SetPreferences(prefsWith(nil))
	dismissed := 0
	f.orch.Show(context.Background(), notify.Request{
		Channel:   notify.ChannelPersistent,
		OnDismiss: func(string) { dismissed++ },
	})
	f.orch.ScheduleReminder(context.Background(), notify.Reminder{EventAt: epoch.Add(time.Hour), Title: "standup"})

	f.orch.Close()
	f.clock.Advance(2 * time.Hour)

	assert.Zero(t, dismissed)
	assert.Len(t, f.orch.Live(), 1)
	assert.Empty(t, f.orch.PendingReminders())
}
