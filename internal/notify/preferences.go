package notify

import "context"

// Preferences are one user's notification toggles.
type Preferences struct {
	RoomBookingConfirmations bool `json:"room_booking_confirmations"`
	RoomBookingReminders     bool `json:"room_booking_reminders"`
	Parking                  bool `json:"parking"`
	AttendanceReminders      bool `json:"attendance_reminders"`
	AdminAlerts              bool `json:"admin_alerts"`
	SystemNotifications      bool `json:"system_notifications"`
	ReminderLeadMinutes      int  `json:"reminder_lead_minutes"`
}

// DefaultReminderLeadMinutes is used when a user has not chosen a lead time.
const DefaultReminderLeadMinutes = 15

// DefaultPreferences enables every group.
func DefaultPreferences() Preferences {
	return Preferences{
		RoomBookingConfirmations: true,
		RoomBookingReminders:     true,
		Parking:                  true,
		AttendanceReminders:      true,
		AdminAlerts:              true,
		SystemNotifications:      true,
		ReminderLeadMinutes:      DefaultReminderLeadMinutes,
	}
}

// PreferenceStore loads preferences. A user without stored preferences
// yields (nil, nil).
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
}

// gates maps each gated kind to the flag that controls it. Kinds missing
// from this table are always allowed.
var gates = map[Kind]func(*Preferences) bool{
	KindBookingConfirmed:    func(p *Preferences) bool { return p.RoomBookingConfirmations },
	KindBookingCancelled:    func(p *Preferences) bool { return p.RoomBookingConfirmations },
	KindRoomBookingReminder: func(p *Preferences) bool { return p.RoomBookingReminders },
	KindParkingReserved:     func(p *Preferences) bool { return p.Parking },
	KindParkingReleased:     func(p *Preferences) bool { return p.Parking },
	KindAttendanceReminder:  func(p *Preferences) bool { return p.AttendanceReminders },
	KindCheckIn:             func(p *Preferences) bool { return p.AttendanceReminders },
	KindAdminAlert:          func(p *Preferences) bool { return p.AdminAlerts },
	KindSystem:              func(p *Preferences) bool { return p.SystemNotifications },
}

// Gated reports whether kind is controlled by a preference flag.
func Gated(kind Kind) bool {
	_, ok := gates[kind]
	return ok
}

// Allows reports whether a notification of the given kind may be delivered.
// Unmapped kinds fail open. A nil receiver allows everything.
func (p *Preferences) Allows(kind Kind) bool {
	if p == nil {
		return true
	}
	gate, ok := gates[kind]
	if !ok {
		return true
	}
	return gate(p)
}

// LeadMinutes returns the reminder lead time. Zero is a valid choice and
// fires the reminder at the event itself; the default applies to nil
// preferences and negative values.
func (p *Preferences) LeadMinutes() int {
	if p == nil || p.ReminderLeadMinutes < 0 {
		return DefaultReminderLeadMinutes
	}
	return p.ReminderLeadMinutes
}
