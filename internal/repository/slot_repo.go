package repository

import (
	"context"
	"sort"
	"time"

	"campusbook/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// EnsureSeeded materializes the canonical slot set for (teacher, date) when
// the day has no active slots. Soft-deleted rows still occupy the unique
// index on (teacher_id, date, time_slot), so they are resurrected to
// available rather than re-inserted; the insert batch only fills times that
// never existed. A losing concurrent seeder hits the conflict and its batch
// is a no-op for already-present rows.
func (r *SlotRepository) EnsureSeeded(ctx context.Context, teacherID int64, date time.Time) error {
	date = domain.NormalizeDate(date)

	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("teacher_id = ? AND date = ? AND active = ?", teacherID, date, true).
		Count(&cnt)
	if tx.Error != nil {
		return tx.Error
	}
	if cnt > 0 {
		return nil
	}

	// Deactivated slots are never booked, so reviving them to available is safe.
	err := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("teacher_id = ? AND date = ? AND active = ?", teacherID, date, false).
		Updates(map[string]any{
			"active":         true,
			"status":         domain.SlotAvailable,
			"appointment_id": nil,
			"student_id":     nil,
			"block_reason":   "",
		}).Error
	if err != nil {
		return err
	}

	slots := make([]domain.Slot, 0, len(domain.CanonicalTimeSlots))
	for _, t := range domain.CanonicalTimeSlots {
		slots = append(slots, domain.Slot{
			TeacherID:       teacherID,
			Date:            date,
			TimeSlot:        t,
			DurationMinutes: domain.DefaultSlotDurationMinutes,
			Status:          domain.SlotAvailable,
			Active:          true,
		})
	}

	// Duplicate rows from a racing seeder are silently skipped.
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "teacher_id"}, {Name: "date"}, {Name: "time_slot"}},
			DoNothing: true,
		}).
		Create(&slots).Error
	if err != nil {
		// A unique violation still means "already seeded, proceed".
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	var s domain.Slot
	tx := r.db.WithContext(ctx).First(&s, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &s, nil
}

func (r *SlotRepository) Find(ctx context.Context, teacherID int64, date time.Time, timeSlot string) (*domain.Slot, error) {
	var s domain.Slot
	tx := r.db.WithContext(ctx).
		Where("teacher_id = ? AND date = ? AND time_slot = ? AND active = ?",
			teacherID, domain.NormalizeDate(date), timeSlot, true).
		First(&s)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &s, nil
}

// ListByDay returns a teacher's active slots for a date ordered by canonical
// time. Pass an empty status to list all statuses.
func (r *SlotRepository) ListByDay(ctx context.Context, teacherID int64, date time.Time, status domain.SlotStatus) ([]domain.Slot, error) {
	q := r.db.WithContext(ctx).
		Where("teacher_id = ? AND date = ? AND active = ?", teacherID, domain.NormalizeDate(date), true)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var slots []domain.Slot
	if err := q.Find(&slots).Error; err != nil {
		return nil, err
	}

	// Time labels do not sort chronologically as strings ("1:00 PM" < "9:00 AM").
	sort.Slice(slots, func(i, j int) bool {
		return domain.SlotTimeIndex(slots[i].TimeSlot) < domain.SlotTimeIndex(slots[j].TimeSlot)
	})
	return slots, nil
}

// Reserve atomically moves an available slot to booked and attaches the
// appointment. Returns false when the slot was not available, which is how a
// losing concurrent booking observes the race.
func (r *SlotRepository) Reserve(ctx context.Context, slotID, appointmentID, studentID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("id = ? AND status = ? AND active = ?", slotID, domain.SlotAvailable, true).
		Updates(map[string]any{
			"status":         domain.SlotBooked,
			"appointment_id": appointmentID,
			"student_id":     studentID,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ReleaseByAppointment re-opens the slot held by an appointment. Returns
// false when no booked slot references the appointment.
func (r *SlotRepository) ReleaseByAppointment(ctx context.Context, appointmentID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("appointment_id = ? AND status = ?", appointmentID, domain.SlotBooked).
		Updates(map[string]any{
			"status":         domain.SlotAvailable,
			"appointment_id": nil,
			"student_id":     nil,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UpdateStatusGuarded applies a schedule-management status change only when
// the slot still has the expected current status. Booked slots never match
// here: they are released exclusively through ReleaseByAppointment.
func (r *SlotRepository) UpdateStatusGuarded(ctx context.Context, slotID int64, from, to domain.SlotStatus, reason string) (bool, error) {
	if to != domain.SlotBlocked {
		reason = ""
	}
	tx := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("id = ? AND status = ? AND status <> ? AND active = ?", slotID, from, domain.SlotBooked, true).
		Updates(map[string]any{
			"status":       to,
			"block_reason": reason,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *SlotRepository) UpdateNotes(ctx context.Context, slotID int64, notes string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("id = ?", slotID).
		Update("notes", notes).Error
}

// Deactivate soft-deletes a slot. Booked slots cannot be deactivated.
func (r *SlotRepository) Deactivate(ctx context.Context, slotID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Where("id = ? AND status <> ? AND active = ?", slotID, domain.SlotBooked, true).
		Update("active", false)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

type StatusCount struct {
	Status domain.SlotStatus `gorm:"column:status"`
	Count  int               `gorm:"column:cnt"`
}

func (r *SlotRepository) CountByStatus(ctx context.Context, teacherID int64, date time.Time) (map[domain.SlotStatus]int, error) {
	var rows []StatusCount
	tx := r.db.WithContext(ctx).
		Model(&domain.Slot{}).
		Select("status, COUNT(1) AS cnt").
		Where("teacher_id = ? AND date = ? AND active = ?", teacherID, domain.NormalizeDate(date), true).
		Group("status").
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make(map[domain.SlotStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
