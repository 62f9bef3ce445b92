package appointment

import (
	"context"
	"time"

	"campusbook/internal/domain"
	"campusbook/internal/repository"
)

// SlotStore is the slice of the slot repository the engine needs.
type SlotStore interface {
	EnsureSeeded(ctx context.Context, teacherID int64, date time.Time) error
	Find(ctx context.Context, teacherID int64, date time.Time, timeSlot string) (*domain.Slot, error)
	Reserve(ctx context.Context, slotID, appointmentID, studentID int64) (bool, error)
	ReleaseByAppointment(ctx context.Context, appointmentID int64) (bool, error)
}

// AppointmentStore persists appointment records and their guarded transitions.
type AppointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Query(ctx context.Context, f repository.AppointmentFilters) ([]domain.Appointment, int64, error)
	ApplyTransition(ctx context.Context, id int64, from, to domain.AppointmentStatus, fields map[string]any) (bool, error)
	Rate(ctx context.Context, id int64, rating int, feedback string) (bool, error)
}

// UserDirectory resolves identities for authorization and teacher lookups.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Dispatcher receives lifecycle events after a transition commits.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

// Stores bundles the two stores inside one transaction.
type Stores struct {
	Slots        SlotStore
	Appointments AppointmentStore
}

// TxRunner runs fn with both stores bound to a single transaction, so slot
// reservation/release and the appointment status change commit together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, st Stores) error) error
}

type gormTxRunner struct {
	m repository.TxManager
}

func NewTxRunner(m repository.TxManager) TxRunner {
	return &gormTxRunner{m: m}
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, st Stores) error) error {
	return r.m.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		return fn(ctx, Stores{Slots: repos.Slots, Appointments: repos.Appointments})
	})
}
