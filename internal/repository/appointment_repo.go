package repository

import (
	"context"
	"time"

	"campusbook/internal/domain"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var a domain.Appointment
	tx := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		First(&a, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &a, nil
}

// AppointmentFilters narrows Query results. Zero values are ignored.
type AppointmentFilters struct {
	StudentID int64
	TeacherID int64
	Status    domain.AppointmentStatus
	DateFrom  time.Time
	DateTo    time.Time
	Limit     int
	Offset    int
}

func (r *AppointmentRepository) Query(ctx context.Context, f AppointmentFilters) ([]domain.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Appointment{})
	if f.StudentID != 0 {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.TeacherID != 0 {
		q = q.Where("teacher_id = ?", f.TeacherID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("date >= ?", domain.NormalizeDate(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		q = q.Where("date <= ?", domain.NormalizeDate(f.DateTo))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var list []domain.Appointment
	err := q.
		Preload("Student").
		Preload("Teacher").
		Order("created_at DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ApplyTransition updates an appointment's status plus any transition fields,
// guarded by the expected current status. Returns false when the guard did
// not match, i.e. the appointment already moved on.
func (r *AppointmentRepository) ApplyTransition(ctx context.Context, id int64, from, to domain.AppointmentStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Rate attaches the student's rating and feedback to a completed appointment.
func (r *AppointmentRepository) Rate(ctx context.Context, id int64, rating int, feedback string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("id = ? AND status = ?", id, domain.AppointmentCompleted).
		Updates(map[string]any{
			"student_rating":   rating,
			"student_feedback": feedback,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
