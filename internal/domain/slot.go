package domain

import (
	"regexp"
	"strings"
	"time"
)

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotBlocked     SlotStatus = "blocked"
	SlotUnavailable SlotStatus = "unavailable"
)

const DefaultSlotDurationMinutes = 60

// CanonicalTimeSlots is the fixed set of daily bookable times. A teacher's
// day is seeded with exactly one slot per entry, in this order.
var CanonicalTimeSlots = []string{
	"9:00 AM",
	"10:00 AM",
	"11:00 AM",
	"12:00 PM",
	"1:00 PM",
	"2:00 PM",
	"3:00 PM",
	"4:00 PM",
	"5:00 PM",
}

var timeLabelRe = regexp.MustCompile(`(?i)^(1[0-2]|[1-9]):([0-5][0-9]) ?(AM|PM)$`)

// NormalizeTimeLabel validates a time string against the H:MM AM|PM format
// and returns it in canonical form ("2:00 PM"). ok is false on malformed input.
func NormalizeTimeLabel(s string) (string, bool) {
	m := timeLabelRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return m[1] + ":" + m[2] + " " + strings.ToUpper(m[3]), true
}

// SlotTimeIndex returns the position of a canonical time label within the
// daily ordering, or -1 when the label is not a canonical slot time.
func SlotTimeIndex(label string) int {
	for i, t := range CanonicalTimeSlots {
		if t == label {
			return i
		}
	}
	return -1
}

// NormalizeDate strips time-of-day so slot dates always compare by calendar day.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Slot struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacher_id" gorm:"uniqueIndex:idx_slot_teacher_date_time"`
	Date      time.Time `json:"date" gorm:"uniqueIndex:idx_slot_teacher_date_time"`
	TimeSlot  string    `json:"time_slot" gorm:"uniqueIndex:idx_slot_teacher_date_time"`

	DurationMinutes int        `json:"duration_minutes"`
	Status          SlotStatus `json:"status"`
	BlockReason     string     `json:"block_reason,omitempty"`
	Notes           string     `json:"notes,omitempty" gorm:"type:text"`

	// Back-references filled while the slot is booked.
	AppointmentID *int64 `json:"appointment_id,omitempty"`
	StudentID     *int64 `json:"student_id,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookable reports whether a booking may reserve this slot.
func (s *Slot) Bookable() bool {
	return s.Active && s.Status == SlotAvailable
}
