package notification

import (
	"encoding/json"
	"time"
)

type Type string

const (
	TypeAppointmentBooked    Type = "appointment_booked"
	TypeAppointmentConfirmed Type = "appointment_confirmed"
	TypeAppointmentRejected  Type = "appointment_rejected"
	TypeAppointmentCancelled Type = "appointment_cancelled"
	TypeAppointmentCompleted Type = "appointment_completed"
)

type Notification struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id" gorm:"index"`
	Type      Type            `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message" gorm:"type:text"`
	Data      json.RawMessage `json:"data,omitempty" gorm:"type:jsonb"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
