package domain

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentRejected  AppointmentStatus = "rejected"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Terminal statuses accept no further status-changing transition. Rating may
// still attach to a completed appointment.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentRejected, AppointmentCancelled, AppointmentCompleted:
		return true
	}
	return false
}

type AppointmentPurpose string

const (
	PurposeConsultation      AppointmentPurpose = "consultation"
	PurposeProjectDiscussion AppointmentPurpose = "project_discussion"
	PurposeCareerGuidance    AppointmentPurpose = "career_guidance"
	PurposeExamPreparation   AppointmentPurpose = "exam_preparation"
	PurposeOther             AppointmentPurpose = "other"
)

func ValidPurpose(p AppointmentPurpose) bool {
	switch p {
	case PurposeConsultation, PurposeProjectDiscussion, PurposeCareerGuidance,
		PurposeExamPreparation, PurposeOther:
		return true
	}
	return false
}

type Appointment struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id" gorm:"index"`
	TeacherID int64     `json:"teacher_id" gorm:"index"`
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"time_slot"`

	DurationMinutes int                `json:"duration_minutes"`
	Purpose         AppointmentPurpose `json:"purpose"`
	Subject         string             `json:"subject"`
	Message         string             `json:"message,omitempty" gorm:"type:text"`

	Status          AppointmentStatus `json:"status" gorm:"index"`
	TeacherResponse string            `json:"teacher_response,omitempty" gorm:"type:text"`
	RespondedAt     *time.Time        `json:"responded_at,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty" gorm:"type:text"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	StudentRating   *int   `json:"student_rating,omitempty"`
	StudentFeedback string `json:"student_feedback,omitempty" gorm:"type:text"`
	TeacherFeedback string `json:"teacher_feedback,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student *User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Teacher *User `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

// Party reports whether the user is the student or teacher side of the appointment.
func (a *Appointment) Party(userID int64) bool {
	return a.StudentID == userID || a.TeacherID == userID
}
