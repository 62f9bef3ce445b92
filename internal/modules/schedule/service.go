package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusbook/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	slots SlotRepository
	users UserDirectory
}

func NewService(slots SlotRepository, users UserDirectory) *Service {
	return &Service{slots: slots, users: users}
}

// DaySchedule returns a teacher's slot set for one date, seeding the
// canonical slots on first access. Status narrows the listing; stats always
// cover the whole day.
func (s *Service) DaySchedule(ctx context.Context, teacherID int64, dateStr string, status domain.SlotStatus) (*DaySchedule, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if status != "" && !validSlotStatus(status) {
		return nil, fmt.Errorf("%w: unknown slot status %q", ErrValidation, status)
	}

	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	if err := s.slots.EnsureSeeded(ctx, teacherID, date); err != nil {
		return nil, err
	}

	slots, err := s.slots.ListByDay(ctx, teacherID, date, status)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(ctx, teacherID, dateStr)
	if err != nil {
		return nil, err
	}

	return &DaySchedule{
		TeacherID: teacherID,
		Date:      date.Format("2006-01-02"),
		Slots:     slots,
		Stats:     *stats,
	}, nil
}

// Stats recomputes per-status slot counts from the store. Remaining bookable
// is total minus booked and blocked; it is never persisted.
func (s *Service) Stats(ctx context.Context, teacherID int64, dateStr string) (*DayStats, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	counts, err := s.slots.CountByStatus(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return &DayStats{
		Total:       total,
		Available:   counts[domain.SlotAvailable],
		Booked:      counts[domain.SlotBooked],
		Blocked:     counts[domain.SlotBlocked],
		Unavailable: counts[domain.SlotUnavailable],
		Remaining:   total - counts[domain.SlotBooked] - counts[domain.SlotBlocked],
	}, nil
}

// UpdateSlot applies a teacher's block/unblock/mark-unavailable action and
// optional notes edit to one of their own slots. Booked slots are off limits
// here; only the owning appointment's lifecycle releases them.
func (s *Service) UpdateSlot(ctx context.Context, actorID int64, role domain.UserRole, slotID int64, req UpdateSlotRequest) (*domain.Slot, error) {
	slot, err := s.loadOwned(ctx, actorID, role, slotID)
	if err != nil {
		return nil, err
	}

	if req.Action != "" {
		if slot.Status == domain.SlotBooked {
			return nil, ErrSlotLocked
		}

		target, reason, err := resolveAction(req)
		if err != nil {
			return nil, err
		}

		if target != slot.Status {
			applied, err := s.slots.UpdateStatusGuarded(ctx, slotID, slot.Status, target, reason)
			if err != nil {
				return nil, err
			}
			if !applied {
				// Guard mismatch: either a booking grabbed the slot or a
				// concurrent schedule edit got there first.
				cur, err := s.slots.GetByID(ctx, slotID)
				if err == nil && cur.Status == domain.SlotBooked {
					return nil, ErrSlotLocked
				}
				return nil, ErrConflict
			}
		}
	}

	if req.Notes != nil {
		if err := s.slots.UpdateNotes(ctx, slotID, *req.Notes); err != nil {
			return nil, err
		}
	}

	return s.slots.GetByID(ctx, slotID)
}

// DeleteSlot soft-deletes a slot from the teacher's published schedule.
func (s *Service) DeleteSlot(ctx context.Context, actorID int64, role domain.UserRole, slotID int64) error {
	slot, err := s.loadOwned(ctx, actorID, role, slotID)
	if err != nil {
		return err
	}
	if slot.Status == domain.SlotBooked {
		return ErrSlotLocked
	}

	applied, err := s.slots.Deactivate(ctx, slotID)
	if err != nil {
		return err
	}
	if !applied {
		return ErrSlotLocked
	}
	return nil
}

func (s *Service) loadOwned(ctx context.Context, actorID int64, role domain.UserRole, slotID int64) (*domain.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !slot.Active {
		return nil, ErrNotFound
	}
	if role != domain.RoleTeacher || slot.TeacherID != actorID {
		return nil, ErrForbidden
	}
	return slot, nil
}

func (s *Service) ensureTeacher(ctx context.Context, teacherID int64) error {
	u, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if u.Role != domain.RoleTeacher || !u.Active {
		return ErrNotFound
	}
	return nil
}

func resolveAction(req UpdateSlotRequest) (domain.SlotStatus, string, error) {
	switch req.Action {
	case ActionBlock:
		return domain.SlotBlocked, req.Reason, nil
	case ActionUnblock:
		return domain.SlotAvailable, "", nil
	case ActionMarkUnavailable:
		return domain.SlotUnavailable, "", nil
	default:
		return "", "", fmt.Errorf("%w: unknown action %q", ErrValidation, req.Action)
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return domain.NormalizeDate(d), nil
}

func validSlotStatus(s domain.SlotStatus) bool {
	switch s {
	case domain.SlotAvailable, domain.SlotBooked, domain.SlotBlocked, domain.SlotUnavailable:
		return true
	}
	return false
}
