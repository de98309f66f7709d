package circuitbreaker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/notify"
)

// ProtectedSink decorates an ephemeral sink with a breaker. While the
// breaker is open Accept returns ErrCircuitOpen without calling the sink,
// and the orchestrator reports the show as failed.
type ProtectedSink struct {
	sink    notify.EphemeralSink
	breaker *CircuitBreaker
	logger  *zap.Logger
}

func NewProtectedSink(sink notify.EphemeralSink, breaker *CircuitBreaker, logger *zap.Logger) *ProtectedSink {
	return &ProtectedSink{sink: sink, breaker: breaker, logger: logger}
}

// Accept implements notify.EphemeralSink.
func (p *ProtectedSink) Accept(ctx context.Context, t notify.Toast) error {
	if !p.breaker.Allow() {
		p.logger.Warn("sink rejected by open breaker",
			zap.String("breaker", p.breaker.Name()),
			zap.String("id", t.ID),
			zap.String("kind", string(t.Kind)),
		)
		return fmt.Errorf("%w: %s sink unavailable", ErrCircuitOpen, p.breaker.Name())
	}

	if err := p.sink.Accept(ctx, t); err != nil {
		p.breaker.RecordFailure()
		return err
	}
	p.breaker.RecordSuccess()
	return nil
}

// Breaker returns the wrapped breaker for the health endpoint.
func (p *ProtectedSink) Breaker() *CircuitBreaker { return p.breaker }

// ProtectedObserver is the SnapshotObserver counterpart of ProtectedSink.
type ProtectedObserver struct {
	observer notify.SnapshotObserver
	breaker  *CircuitBreaker
}

func NewProtectedObserver(observer notify.SnapshotObserver, breaker *CircuitBreaker) *ProtectedObserver {
	return &ProtectedObserver{observer: observer, breaker: breaker}
}

// Render implements notify.SnapshotObserver.
func (p *ProtectedObserver) Render(ctx context.Context, snap notify.Snapshot) error {
	if !p.breaker.Allow() {
		return fmt.Errorf("%w: %s observer unavailable", ErrCircuitOpen, p.breaker.Name())
	}
	if err := p.observer.Render(ctx, snap); err != nil {
		p.breaker.RecordFailure()
		return err
	}
	p.breaker.RecordSuccess()
	return nil
}

func (p *ProtectedObserver) Breaker() *CircuitBreaker { return p.breaker }
