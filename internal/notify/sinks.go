package notify

import (
	"context"
	"time"
)

// EphemeralSink receives toasts. The sink owns their expiry; the
// orchestrator keeps no state for them.
type EphemeralSink interface {
	Accept(ctx context.Context, toast Toast) error
}

// SnapshotObserver renders the persistent channel from live-set snapshots.
type SnapshotObserver interface {
	Render(ctx context.Context, snap Snapshot) error
}

// HapticSignaler triggers device feedback.
type HapticSignaler interface {
	Signal(h Haptic)
}

// Timers is the scheduler capability the orchestrator depends on.
type Timers interface {
	Now() time.Time
	Arm(id string, delay time.Duration, onFire func())
	ArmAt(id string, at time.Time, onFire func())
	Cancel(id string) bool
	Stop()
}

// SinkFunc adapts a function to EphemeralSink.
type SinkFunc func(ctx context.Context, toast Toast) error

func (f SinkFunc) Accept(ctx context.Context, toast Toast) error { return f(ctx, toast) }

// HapticFunc adapts a function to HapticSignaler.
type HapticFunc func(h Haptic)

func (f HapticFunc) Signal(h Haptic) { f(h) }
