package appointment

import "time"

type EventKind string

const (
	EventBooked    EventKind = "booked"
	EventConfirmed EventKind = "confirmed"
	EventRejected  EventKind = "rejected"
	EventCancelled EventKind = "cancelled"
	EventCompleted EventKind = "completed"
)

// Event is handed to the notification dispatcher after a transition commits.
// Delivery is the dispatcher's problem; a dispatch failure never affects the
// already-durable transition.
type Event struct {
	ID            string    `json:"id"`
	Kind          EventKind `json:"kind"`
	AppointmentID int64     `json:"appointment_id"`
	StudentID     int64     `json:"student_id"`
	TeacherID     int64     `json:"teacher_id"`
	Date          time.Time `json:"date"`
	TimeSlot      string    `json:"time_slot"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
