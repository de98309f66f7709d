// Package prefs holds the preference store contract used by the gateway
// and an in-memory implementation for development and tests.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lalithlochan/officebell/internal/notify"
)

// ErrInvalidPreferences is returned when a write carries out-of-range values.
var ErrInvalidPreferences = errors.New("invalid preferences")

// MaxReminderLeadMinutes bounds the reminder lead time a user may choose.
const MaxReminderLeadMinutes = 24 * 60

// Store reads and writes per-user preferences.
type Store interface {
	notify.PreferenceStore
	SavePreferences(ctx context.Context, userID string, p notify.Preferences) error
}

// Validate checks p before it is stored.
func Validate(p notify.Preferences) error {
	if p.ReminderLeadMinutes < 0 || p.ReminderLeadMinutes > MaxReminderLeadMinutes {
		return fmt.Errorf("%w: reminder_lead_minutes must be between 0 and %d", ErrInvalidPreferences, MaxReminderLeadMinutes)
	}
	return nil
}

// MemoryStore keeps preferences in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]notify.Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]notify.Preferences)}
}

func (s *MemoryStore) GetPreferences(_ context.Context, userID string) (*notify.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) SavePreferences(_ context.Context, userID string, p notify.Preferences) error {
	if err := Validate(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = p
	return nil
}
