package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories bundles the repositories bound to one database transaction.
// Slot reservation/release and the owning appointment's status change must
// commit or roll back together, so the scheduling service always touches
// both stores through this bundle.
type TxRepositories struct {
	Slots        *SlotRepository
	Appointments *AppointmentRepository
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := TxRepositories{
			Slots:        NewSlotRepository(tx),
			Appointments: NewAppointmentRepository(tx),
		}
		return fn(ctx, repos)
	})
}
