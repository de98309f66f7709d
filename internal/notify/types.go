package notify

import (
	"errors"
	"time"
)

// ErrUnknownChannel is returned for a request whose channel is neither
// ephemeral nor persistent.
var ErrUnknownChannel = errors.New("unknown notification channel")

// Category drives styling and the haptic pattern of a notification.
type Category string

const (
	CategorySuccess      Category = "success"
	CategoryError        Category = "error"
	CategoryWarning      Category = "warning"
	CategoryInfo         Category = "info"
	CategoryConfirmation Category = "confirmation"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySuccess, CategoryError, CategoryWarning, CategoryInfo, CategoryConfirmation:
		return true
	}
	return false
}

// Kind identifies what a notification is about. It is the key used for
// preference gating.
type Kind string

const (
	KindBookingConfirmed    Kind = "booking_confirmed"
	KindBookingCancelled    Kind = "booking_cancelled"
	KindRoomBookingReminder Kind = "room_booking_reminder"
	KindParkingReserved     Kind = "parking_reserved"
	KindParkingReleased     Kind = "parking_released"
	KindAttendanceReminder  Kind = "attendance_reminder"
	KindCheckIn             Kind = "check_in"
	KindQRScan              Kind = "qr_scan"
	KindLeaveStatus         Kind = "leave_status"
	KindAdminAlert          Kind = "admin_alert"
	KindSystem              Kind = "system"
	KindGeneral             Kind = "general"
)

// Channel is the delivery channel discriminant.
type Channel string

const (
	// ChannelEphemeral toasts are handed to the sink, which owns their expiry.
	ChannelEphemeral Channel = "ephemeral"
	// ChannelPersistent notifications live in the orchestrator's live set
	// until dismissed or expired.
	ChannelPersistent Channel = "persistent"
)

// DurationTier is a symbolic display duration.
type DurationTier string

const (
	TierShort      DurationTier = "short"
	TierMedium     DurationTier = "medium"
	TierLong       DurationTier = "long"
	TierPersistent DurationTier = "persistent"
)

var tierMillis = map[DurationTier]int{
	TierShort:      2000,
	TierMedium:     4000,
	TierLong:       6000,
	TierPersistent: 0,
}

// Duration is either a symbolic tier or an explicit millisecond count.
// The zero value resolves to TierMedium.
type Duration struct {
	Tier     DurationTier `json:"tier,omitempty"`
	Millis   int          `json:"ms,omitempty"`
	Explicit bool         `json:"explicit,omitempty"`
}

// Tier returns a symbolic duration.
func Tier(t DurationTier) Duration { return Duration{Tier: t} }

// Millis returns an explicit duration that overrides the tier table.
func Millis(ms int) Duration { return Duration{Millis: ms, Explicit: true} }

// Persistent is shorthand for a duration that never auto-dismisses.
func Persistent() Duration { return Duration{Tier: TierPersistent} }

// Resolve maps d to milliseconds. Zero means no auto-dismiss.
func (d Duration) Resolve() int {
	if d.Explicit {
		return max(d.Millis, 0)
	}
	if ms, ok := tierMillis[d.Tier]; ok {
		return ms
	}
	return tierMillis[TierMedium]
}

// ActionStyle hints how a consumer should render an action.
type ActionStyle string

const (
	ActionDefault     ActionStyle = "default"
	ActionPrimary     ActionStyle = "primary"
	ActionDestructive ActionStyle = "destructive"
	ActionCancel      ActionStyle = "cancel"
)

// Action is a button attached to a notification.
type Action struct {
	Label   string      `json:"label"`
	Trigger string      `json:"trigger"`
	Style   ActionStyle `json:"style,omitempty"`
	Handler func()      `json:"-"`
}

// Request is what callers hand to Show.
type Request struct {
	Kind        Kind     `json:"kind"`
	Category    Category `json:"category"`
	Channel     Channel  `json:"channel"`
	Title       string   `json:"title"`
	Body        string   `json:"body,omitempty"`
	Duration    Duration `json:"duration"`
	Actions     []Action `json:"actions,omitempty"`
	Dismissible bool     `json:"dismissible"`
	NoHaptic    bool     `json:"no_haptic,omitempty"`

	// Data carries deep-link parameters for the consumer.
	Data map[string]string `json:"data,omitempty"`

	OnShow    func(id string) `json:"-"`
	OnDismiss func(id string) `json:"-"`
}

func (r Request) withDefaults() Request {
	if r.Kind == "" {
		r.Kind = KindGeneral
	}
	if r.Category == "" {
		r.Category = CategoryInfo
	}
	if r.Channel == "" {
		r.Channel = ChannelEphemeral
	}
	return r
}

// clone copies the slice and map fields so the stored request cannot be
// mutated through the caller's references.
func (r Request) clone() Request {
	if r.Actions != nil {
		r.Actions = append([]Action(nil), r.Actions...)
	}
	if r.Data != nil {
		data := make(map[string]string, len(r.Data))
		for k, v := range r.Data {
			data[k] = v
		}
		r.Data = data
	}
	return r
}

// Patch holds the fields Update may change. Nil fields are left alone.
type Patch struct {
	Title       *string           `json:"title,omitempty"`
	Body        *string           `json:"body,omitempty"`
	Category    *Category         `json:"category,omitempty"`
	Actions     *[]Action         `json:"actions,omitempty"`
	Dismissible *bool             `json:"dismissible,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

func (p Patch) apply(r *Request) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Body != nil {
		r.Body = *p.Body
	}
	if p.Category != nil && p.Category.Valid() {
		r.Category = *p.Category
	}
	if p.Actions != nil {
		r.Actions = append([]Action(nil), (*p.Actions)...)
	}
	if p.Dismissible != nil {
		r.Dismissible = *p.Dismissible
	}
	if len(p.Data) > 0 {
		if r.Data == nil {
			r.Data = make(map[string]string, len(p.Data))
		}
		for k, v := range p.Data {
			r.Data[k] = v
		}
	}
}

// LiveNotification is a persistent-channel notification tracked by the
// orchestrator.
type LiveNotification struct {
	ID          string     `json:"id"`
	Request     Request    `json:"request"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`
}

func (n LiveNotification) copy() LiveNotification {
	n.Request = n.Request.clone()
	return n
}

// Snapshot is a point-in-time copy of the live set handed to observers.
// Revision increases with every mutation of the live set.
type Snapshot struct {
	UserID   string             `json:"user_id"`
	Revision uint64             `json:"revision"`
	Items    []LiveNotification `json:"items"`
}

// Toast is what an ephemeral sink receives.
type Toast struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id,omitempty"`
	Kind     Kind     `json:"kind"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Body     string   `json:"body,omitempty"`

	// Duration of zero means the toast stays until the user dismisses it.
	Duration      time.Duration     `json:"duration"`
	Dismissible   bool              `json:"dismissible"`
	PrimaryAction *Action           `json:"primary_action,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
}

// Haptic is the feedback pattern requested for a category.
type Haptic string

const (
	HapticSuccess Haptic = "success"
	HapticError   Haptic = "error"
	HapticWarning Haptic = "warning"
	HapticLight   Haptic = "light"
	HapticMedium  Haptic = "medium"
)

// HapticFor maps a category to its haptic pattern.
func HapticFor(c Category) Haptic {
	switch c {
	case CategorySuccess:
		return HapticSuccess
	case CategoryError:
		return HapticError
	case CategoryWarning:
		return HapticWarning
	case CategoryConfirmation:
		return HapticMedium
	default:
		return HapticLight
	}
}
