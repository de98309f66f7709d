package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalithlochan/officebell/internal/notify"
)

func TestBuilders(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		req      notify.Request
		kind     notify.Kind
		category notify.Category
		channel  notify.Channel
		duration int
	}{
		{"booking confirmed", notify.BookingConfirmed("Orion", at), notify.KindBookingConfirmed, notify.CategorySuccess, notify.ChannelEphemeral, 4000},
		{"booking cancelled", notify.BookingCancelled("Orion"), notify.KindBookingCancelled, notify.CategoryInfo, notify.ChannelEphemeral, 2000},
		{"parking reserved", notify.ParkingReserved("B-12", at), notify.KindParkingReserved, notify.CategorySuccess, notify.ChannelEphemeral, 4000},
		{"parking released", notify.ParkingReleased("B-12"), notify.KindParkingReleased, notify.CategoryInfo, notify.ChannelEphemeral, 2000},
		{"attendance", notify.AttendanceReminder(at), notify.KindAttendanceReminder, notify.CategoryWarning, notify.ChannelPersistent, 0},
		{"check in", notify.CheckInRecorded("HQ lobby", at), notify.KindCheckIn, notify.CategorySuccess, notify.ChannelEphemeral, 2000},
		{"qr ok", notify.QRScanResult(true, "desk 4"), notify.KindQRScan, notify.CategorySuccess, notify.ChannelEphemeral, 2000},
		{"qr failed", notify.QRScanResult(false, "unknown code"), notify.KindQRScan, notify.CategoryError, notify.ChannelEphemeral, 6000},
		{"leave approved", notify.LeaveRequestStatus("approved", "5-6 Mar"), notify.KindLeaveStatus, notify.CategorySuccess, notify.ChannelEphemeral, 6000},
		{"leave rejected", notify.LeaveRequestStatus("rejected", "5-6 Mar"), notify.KindLeaveStatus, notify.CategoryError, notify.ChannelPersistent, 0},
		{"leave pending", notify.LeaveRequestStatus("pending", "5-6 Mar"), notify.KindLeaveStatus, notify.CategoryInfo, notify.ChannelPersistent, 6000},
		{"admin alert", notify.AdminAlert("Fire drill", "At 3pm"), notify.KindAdminAlert, notify.CategoryWarning, notify.ChannelPersistent, 0},
		{"system", notify.SystemNotice("Maintenance", "Tonight"), notify.KindSystem, notify.CategoryInfo, notify.ChannelEphemeral, 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.req.Kind)
			assert.Equal(t, tt.category, tt.req.Category)
			assert.Equal(t, tt.channel, tt.req.Channel)
			assert.Equal(t, tt.duration, tt.req.Duration.Resolve())
			assert.NotEmpty(t, tt.req.Title)
			assert.True(t, tt.req.Dismissible)
		})
	}
}

func TestBookingConfirmed_Body(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	req := notify.BookingConfirmed("Orion", at)

	assert.Equal(t, "Orion is yours on Wed 4 Mar at 10:30.", req.Body)
	require.Len(t, req.Actions, 1)
	assert.Equal(t, "open_booking", req.Actions[0].Trigger)
}

func TestSendHelpers(t *testing.T) {
	f := newFixture(t)
	f.orch.SetPreferences(prefsWith(func(p *notify.Preferences) { p.Parking = false }))
	ctx := context.Background()
	at := epoch.Add(24 * time.Hour)

	assert.Equal(t, notify.StatusSuppressed, f.orch.SendParkingConfirmation(ctx, "B-12", at).Status)
	assert.Equal(t, notify.StatusDelivered, f.orch.SendQRScanResult(ctx, true, "desk 4").Status)
	assert.Equal(t, notify.StatusDelivered, f.orch.SendLeaveStatus(ctx, "rejected", "5-6 Mar").Status)
	assert.Equal(t, notify.StatusDelivered, f.orch.SendAttendanceReminder(ctx, at).Status)

	assert.Equal(t, 1, f.rec.toastCount())
	assert.Len(t, f.orch.Live(), 2)
}
