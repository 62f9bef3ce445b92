package schedule

import (
	"context"
	"time"

	"campusbook/internal/domain"
)

// SlotRepository is the slot store surface used by schedule management.
// Reservation/release are deliberately absent: only the scheduling engine
// moves slots in and out of booked.
type SlotRepository interface {
	EnsureSeeded(ctx context.Context, teacherID int64, date time.Time) error
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	ListByDay(ctx context.Context, teacherID int64, date time.Time, status domain.SlotStatus) ([]domain.Slot, error)
	UpdateStatusGuarded(ctx context.Context, slotID int64, from, to domain.SlotStatus, reason string) (bool, error)
	UpdateNotes(ctx context.Context, slotID int64, notes string) error
	Deactivate(ctx context.Context, slotID int64) (bool, error)
	CountByStatus(ctx context.Context, teacherID int64, date time.Time) (map[domain.SlotStatus]int, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
