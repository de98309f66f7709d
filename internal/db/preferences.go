package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/prefs"
)

// querier is the subset of *pgxpool.Pool the repository uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PreferencesRepository stores notification preferences in Postgres.
type PreferencesRepository struct {
	q      querier
	logger *zap.Logger
}

// NewPreferencesRepository creates a repository over the pool.
func NewPreferencesRepository(db *DB, logger *zap.Logger) *PreferencesRepository {
	return &PreferencesRepository{
		q:      db.Pool(),
		logger: logger.Named("preferences-repo"),
	}
}

// GetPreferences returns (nil, nil) for a user without a row.
func (r *PreferencesRepository) GetPreferences(ctx context.Context, userID string) (*notify.Preferences, error) {
	query := `
		SELECT
			room_booking_confirmations, room_booking_reminders, parking,
			attendance_reminders, admin_alerts, system_notifications,
			reminder_lead_minutes
		FROM user_notification_preferences
		WHERE user_id = $1
	`

	var p notify.Preferences
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&p.RoomBookingConfirmations,
		&p.RoomBookingReminders,
		&p.Parking,
		&p.AttendanceReminders,
		&p.AdminAlerts,
		&p.SystemNotifications,
		&p.ReminderLeadMinutes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to load preferences",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("select preferences: %w", err)
	}

	return &p, nil
}

// SavePreferences upserts the user's row.
func (r *PreferencesRepository) SavePreferences(ctx context.Context, userID string, p notify.Preferences) error {
	if err := prefs.Validate(p); err != nil {
		return err
	}

	query := `
		INSERT INTO user_notification_preferences (
			user_id, room_booking_confirmations, room_booking_reminders, parking,
			attendance_reminders, admin_alerts, system_notifications,
			reminder_lead_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (user_id) DO UPDATE SET
			room_booking_confirmations = EXCLUDED.room_booking_confirmations,
			room_booking_reminders     = EXCLUDED.room_booking_reminders,
			parking                    = EXCLUDED.parking,
			attendance_reminders       = EXCLUDED.attendance_reminders,
			admin_alerts               = EXCLUDED.admin_alerts,
			system_notifications       = EXCLUDED.system_notifications,
			reminder_lead_minutes      = EXCLUDED.reminder_lead_minutes,
			updated_at                 = NOW()
	`

	_, err := r.q.Exec(
		ctx,
		query,
		userID,
		p.RoomBookingConfirmations,
		p.RoomBookingReminders,
		p.Parking,
		p.AttendanceReminders,
		p.AdminAlerts,
		p.SystemNotifications,
		p.ReminderLeadMinutes,
	)
	if err != nil {
		r.logger.Error("failed to save preferences",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return fmt.Errorf("upsert preferences: %w", err)
	}

	r.logger.Info("preferences saved", zap.String("user_id", userID))
	return nil
}
