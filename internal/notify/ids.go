package notify

import "github.com/google/uuid"

// newID returns prefix_<uuidv7>. Version 7 UUIDs carry a millisecond
// timestamp, a per-process monotonic sequence and random bits, so ids stay
// unique across goroutines and sort by creation time.
func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

func newNotificationID() string { return newID("notif") }

func newReminderID() string { return newID("rem") }
