package notify

import (
	"context"
	"fmt"
	"time"
)

const (
	timeLayout = "15:04"
	dayLayout  = "Mon 2 Jan"
)

// BookingConfirmed builds the toast shown after a room booking succeeds.
func BookingConfirmed(room string, at time.Time) Request {
	return Request{
		Kind:        KindBookingConfirmed,
		Category:    CategorySuccess,
		Channel:     ChannelEphemeral,
		Title:       "Room booked",
		Body:        fmt.Sprintf("%s is yours on %s at %s.", room, at.Format(dayLayout), at.Format(timeLayout)),
		Duration:    Tier(TierMedium),
		Dismissible: true,
		Actions: []Action{
			{Label: "View booking", Trigger: "open_booking", Style: ActionPrimary},
		},
		Data: map[string]string{"room": room, "at": at.Format(time.RFC3339)},
	}
}

// BookingCancelled builds the toast shown after a room booking is cancelled.
func BookingCancelled(room string) Request {
	return Request{
		Kind:        KindBookingCancelled,
		Category:    CategoryInfo,
		Channel:     ChannelEphemeral,
		Title:       "Booking cancelled",
		Body:        fmt.Sprintf("Your booking for %s was cancelled.", room),
		Duration:    Tier(TierShort),
		Dismissible: true,
		Data:        map[string]string{"room": room},
	}
}

// ParkingReserved builds the toast shown after a parking spot is reserved.
func ParkingReserved(spot string, at time.Time) Request {
	return Request{
		Kind:        KindParkingReserved,
		Category:    CategorySuccess,
		Channel:     ChannelEphemeral,
		Title:       "Parking reserved",
		Body:        fmt.Sprintf("Spot %s is held for %s.", spot, at.Format(dayLayout)),
		Duration:    Tier(TierMedium),
		Dismissible: true,
		Data:        map[string]string{"spot": spot, "at": at.Format(time.RFC3339)},
	}
}

// ParkingReleased builds the toast shown after a parking spot is released.
func ParkingReleased(spot string) Request {
	return Request{
		Kind:        KindParkingReleased,
		Category:    CategoryInfo,
		Channel:     ChannelEphemeral,
		Title:       "Parking released",
		Body:        fmt.Sprintf("Spot %s is available to others again.", spot),
		Duration:    Tier(TierShort),
		Dismissible: true,
		Data:        map[string]string{"spot": spot},
	}
}

// AttendanceReminder asks the user to mark attendance. It stays on screen
// until acted on.
func AttendanceReminder(at time.Time) Request {
	return Request{
		Kind:        KindAttendanceReminder,
		Category:    CategoryWarning,
		Channel:     ChannelPersistent,
		Title:       "Mark your attendance",
		Body:        fmt.Sprintf("You have not checked in for %s yet.", at.Format(dayLayout)),
		Duration:    Persistent(),
		Dismissible: true,
		Actions: []Action{
			{Label: "Check in", Trigger: "check_in", Style: ActionPrimary},
			{Label: "Later", Trigger: "dismiss", Style: ActionCancel},
		},
	}
}

// CheckInRecorded confirms a check-in at a location.
func CheckInRecorded(location string, at time.Time) Request {
	return Request{
		Kind:        KindCheckIn,
		Category:    CategorySuccess,
		Channel:     ChannelEphemeral,
		Title:       "Checked in",
		Body:        fmt.Sprintf("%s at %s.", location, at.Format(timeLayout)),
		Duration:    Tier(TierShort),
		Dismissible: true,
		Data:        map[string]string{"location": location},
	}
}

// QRScanResult reports the outcome of a QR code scan.
func QRScanResult(ok bool, detail string) Request {
	req := Request{
		Kind:        KindQRScan,
		Channel:     ChannelEphemeral,
		Body:        detail,
		Dismissible: true,
	}
	if ok {
		req.Category = CategorySuccess
		req.Title = "Scan successful"
		req.Duration = Tier(TierShort)
	} else {
		req.Category = CategoryError
		req.Title = "Scan failed"
		req.Duration = Tier(TierLong)
	}
	return req
}

// LeaveRequestStatus reports a decision on a leave request. Approved
// requests are a toast; anything else needs acknowledging.
func LeaveRequestStatus(status, dates string) Request {
	req := Request{
		Kind:        KindLeaveStatus,
		Title:       "Leave " + status,
		Body:        fmt.Sprintf("Your leave request for %s was %s.", dates, status),
		Dismissible: true,
		Data:        map[string]string{"status": status, "dates": dates},
	}
	switch status {
	case "approved":
		req.Category = CategorySuccess
		req.Channel = ChannelEphemeral
		req.Duration = Tier(TierLong)
	case "rejected":
		req.Category = CategoryError
		req.Channel = ChannelPersistent
		req.Duration = Persistent()
	default:
		req.Category = CategoryInfo
		req.Channel = ChannelPersistent
		req.Duration = Tier(TierLong)
	}
	return req
}

// AdminAlert builds an alert that stays until dismissed.
func AdminAlert(title, body string) Request {
	return Request{
		Kind:        KindAdminAlert,
		Category:    CategoryWarning,
		Channel:     ChannelPersistent,
		Title:       title,
		Body:        body,
		Duration:    Persistent(),
		Dismissible: true,
	}
}

// SystemNotice builds a low priority system message.
func SystemNotice(title, body string) Request {
	return Request{
		Kind:        KindSystem,
		Category:    CategoryInfo,
		Channel:     ChannelEphemeral,
		Title:       title,
		Body:        body,
		Duration:    Tier(TierLong),
		Dismissible: true,
		NoHaptic:    true,
	}
}

func (o *Orchestrator) SendRoomBookingConfirmation(ctx context.Context, room string, at time.Time) ShowResult {
	return o.Show(ctx, BookingConfirmed(room, at))
}

func (o *Orchestrator) SendParkingConfirmation(ctx context.Context, spot string, at time.Time) ShowResult {
	return o.Show(ctx, ParkingReserved(spot, at))
}

func (o *Orchestrator) SendAttendanceReminder(ctx context.Context, at time.Time) ShowResult {
	return o.Show(ctx, AttendanceReminder(at))
}

func (o *Orchestrator) SendQRScanResult(ctx context.Context, ok bool, detail string) ShowResult {
	return o.Show(ctx, QRScanResult(ok, detail))
}

func (o *Orchestrator) SendLeaveStatus(ctx context.Context, status, dates string) ShowResult {
	return o.Show(ctx, LeaveRequestStatus(status, dates))
}
