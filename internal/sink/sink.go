// Package sink holds the in-process delivery adapters: a logging sink for
// development, a fan-out sink and haptic signalers.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/notify"
)

// LogSink writes every toast to the logger. It never fails.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("toast")}
}

// Accept implements notify.EphemeralSink.
func (s *LogSink) Accept(_ context.Context, t notify.Toast) error {
	fields := []zap.Field{
		zap.String("id", t.ID),
		zap.String("user_id", t.UserID),
		zap.String("kind", string(t.Kind)),
		zap.String("category", string(t.Category)),
		zap.String("title", t.Title),
		zap.Duration("duration", t.Duration),
	}
	if t.PrimaryAction != nil {
		fields = append(fields, zap.String("action", t.PrimaryAction.Trigger))
	}
	s.logger.Info("toast", fields...)
	return nil
}

// Render implements notify.SnapshotObserver so the same logger can trace
// the persistent channel.
func (s *LogSink) Render(_ context.Context, snap notify.Snapshot) error {
	ids := make([]string, len(snap.Items))
	for i, n := range snap.Items {
		ids[i] = n.ID
	}
	s.logger.Debug("live set",
		zap.String("user_id", snap.UserID),
		zap.Uint64("revision", snap.Revision),
		zap.Strings("ids", ids),
	)
	return nil
}

// MultiSink hands a toast to several transports. Every sink is tried. The
// toast counts as delivered when at least one delivery sink accepted it;
// taps (such as the log) always run but only decide the outcome when no
// delivery sink is configured.
type MultiSink struct {
	sinks []named
}

type named struct {
	name string
	sink notify.EphemeralSink
	tap  bool
}

func NewMultiSink() *MultiSink { return &MultiSink{} }

// Add appends a delivery sink. Nil sinks are ignored so optional transports
// can be passed straight from the wiring code.
func (m *MultiSink) Add(name string, s notify.EphemeralSink) *MultiSink {
	if s != nil {
		m.sinks = append(m.sinks, named{name: name, sink: s})
	}
	return m
}

// AddTap appends a sink whose result does not count towards delivery while
// a delivery sink is present.
func (m *MultiSink) AddTap(name string, s notify.EphemeralSink) *MultiSink {
	if s != nil {
		m.sinks = append(m.sinks, named{name: name, sink: s, tap: true})
	}
	return m
}

func (m *MultiSink) Len() int { return len(m.sinks) }

// Accept implements notify.EphemeralSink.
func (m *MultiSink) Accept(ctx context.Context, t notify.Toast) error {
	if len(m.sinks) == 0 {
		return errors.New("no sinks configured")
	}

	hasDelivery := false
	for _, s := range m.sinks {
		if !s.tap {
			hasDelivery = true
			break
		}
	}

	var errs []error
	accepted := false
	for _, s := range m.sinks {
		err := s.sink.Accept(ctx, t)
		if hasDelivery && s.tap {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return errors.Join(errs...)
	}
	return nil
}

// LogHaptics logs haptic requests at debug level.
type LogHaptics struct {
	logger *zap.Logger
}

func NewLogHaptics(logger *zap.Logger) *LogHaptics {
	return &LogHaptics{logger: logger.Named("haptics")}
}

func (h *LogHaptics) Signal(p notify.Haptic) {
	h.logger.Debug("haptic", zap.String("pattern", string(p)))
}

// HapticRecorder keeps every requested pattern in order.
type HapticRecorder struct {
	mu       sync.Mutex
	patterns []notify.Haptic
}

func (r *HapticRecorder) Signal(p notify.Haptic) {
	r.mu.Lock()
	r.patterns = append(r.patterns, p)
	r.mu.Unlock()
}

// Patterns returns a copy of the recorded patterns.
func (r *HapticRecorder) Patterns() []notify.Haptic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Haptic(nil), r.patterns...)
}
