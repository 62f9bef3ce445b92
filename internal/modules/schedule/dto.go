package schedule

import "campusbook/internal/domain"

const (
	ActionBlock           = "block"
	ActionUnblock         = "unblock"
	ActionMarkUnavailable = "mark_unavailable"
)

type UpdateSlotRequest struct {
	Action string  `json:"action"`
	Reason string  `json:"reason"`
	Notes  *string `json:"notes"`
}

type DayStats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Booked      int `json:"booked"`
	Blocked     int `json:"blocked"`
	Unavailable int `json:"unavailable"`
	Remaining   int `json:"remaining_bookable"`
}

type DaySchedule struct {
	TeacherID int64         `json:"teacher_id"`
	Date      string        `json:"date"`
	Slots     []domain.Slot `json:"slots"`
	Stats     DayStats      `json:"stats"`
}
