package models

import "time"

// Care reminder types. Custom covers anything user-defined.
const (
	ReminderWatering    = "watering"
	ReminderFertilizing = "fertilizing"
	ReminderPruning     = "pruning"
	ReminderCustom      = "custom"
)

// ValidReminderType reports whether t is one of the known reminder types.
func ValidReminderType(t string) bool {
	switch t {
	case ReminderWatering, ReminderFertilizing, ReminderPruning, ReminderCustom:
		return true
	}
	return false
}

// CareReminder is one scheduled occurrence of a care task for a plant.
//
// Lifecycle: pending until completed or skipped, which are mutually
// exclusive terminal states. A recurring reminder (IntervalDays > 0)
// spawns exactly one new pending instance on either terminal
// transition, dated IntervalDays after the old scheduled date.
type CareReminder struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PlantID       uint      `gorm:"index;not null" json:"plant_id"`
	Type          string    `gorm:"not null" json:"type"`
	Notes         string    `json:"notes,omitempty"`
	ScheduledDate time.Time `gorm:"index;not null" json:"scheduled_date"`
	Recurring     bool      `json:"recurring"`
	IntervalDays  int       `json:"interval_days"`

	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Skipped     bool       `gorm:"default:false" json:"skipped"`
	SkipReason  string     `json:"skip_reason,omitempty"`

	NotificationSent bool      `gorm:"default:false" json:"notification_sent"`
	CreatedAt        time.Time `json:"created_at"`
}

// Pending reports whether the reminder has not yet reached a terminal state.
func (r *CareReminder) Pending() bool {
	return !r.Completed && !r.Skipped
}

// Normalize enforces the recurring-iff-positive-interval invariant.
func (r *CareReminder) Normalize() {
	if r.IntervalDays < 0 {
		r.IntervalDays = 0
	}
	r.Recurring = r.IntervalDays > 0
}

// NextOccurrence builds the successor instance of a recurring reminder.
// The caller must only invoke it after a terminal transition.
func (r *CareReminder) NextOccurrence() CareReminder {
	return CareReminder{
		PlantID:       r.PlantID,
		Type:          r.Type,
		Notes:         r.Notes,
		ScheduledDate: r.ScheduledDate.AddDate(0, 0, r.IntervalDays),
		Recurring:     true,
		IntervalDays:  r.IntervalDays,
	}
}
