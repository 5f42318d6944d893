package types

import "time"

// ReminderTimeLayout is the storage format of scheduled fire times (no timezone,
// interpreted as UTC everywhere).
const ReminderTimeLayout = "2006-01-02 15:04:05"

type Reminder struct {
	ID          string `json:"id" validate:"required"`
	UserID      string `json:"userId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	// ReminderTime is kept as the stored string so malformed values survive a
	// round trip and can be skipped with a diagnostic instead of failing a load
	ReminderTime string `json:"reminderTime" validate:"required"`
	// RecipientEmail overrides the owners account email when set
	RecipientEmail string `json:"recipientEmail,omitempty"`
	IsCompleted    bool   `json:"isCompleted"`
}

// DueAt parses the scheduled fire time.
func (r *Reminder) DueAt() (time.Time, error) {
	return time.Parse(ReminderTimeLayout, r.ReminderTime)
}

// ReminderUpdate is a partial update; nil fields are left unchanged.
type ReminderUpdate struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	ReminderTime   *string `json:"reminderTime,omitempty"`
	RecipientEmail *string `json:"recipientEmail,omitempty"`
	IsCompleted    *bool   `json:"isCompleted,omitempty"`
}
