package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campusbook/internal/domain"
	"campusbook/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated caller, as established by the auth middleware.
// The engine trusts this identity; it performs no credential checks itself.
type Actor struct {
	ID   int64
	Role domain.UserRole
}

// Service is the scheduling engine. It coordinates the slot store and the
// appointment store so that slot state and appointment state stay mutually
// consistent: booking reserves a slot in the same transaction that creates
// the appointment, and reject/cancel release the slot in the same transaction
// that flips the status.
type Service struct {
	tx         TxRunner
	appts      AppointmentStore
	slots      SlotStore
	users      UserDirectory
	dispatcher Dispatcher
}

func NewService(tx TxRunner, appts AppointmentStore, slots SlotStore, users UserDirectory, dispatcher Dispatcher) *Service {
	return &Service{
		tx:         tx,
		appts:      appts,
		slots:      slots,
		users:      users,
		dispatcher: dispatcher,
	}
}

// Book creates a pending appointment and reserves its slot atomically. Two
// students racing for the same slot get exactly one success; the loser
// observes ErrSlotUnavailable from the conditional reserve.
func (s *Service) Book(ctx context.Context, actor Actor, req BookRequest) (*domain.Appointment, error) {
	if actor.Role != domain.RoleStudent {
		return nil, ErrForbidden
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if date.Before(domain.NormalizeDate(time.Now())) {
		return nil, fmt.Errorf("%w: date is in the past", ErrValidation)
	}

	timeSlot, ok := domain.NormalizeTimeLabel(req.Time)
	if !ok {
		return nil, fmt.Errorf("%w: time must match H:MM AM|PM", ErrValidation)
	}

	purpose := domain.AppointmentPurpose(req.Purpose)
	if !domain.ValidPurpose(purpose) {
		return nil, fmt.Errorf("%w: unknown purpose %q", ErrValidation, req.Purpose)
	}

	teacher, err := s.users.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if teacher.Role != domain.RoleTeacher || !teacher.Active {
		return nil, ErrNotFound
	}

	var appt *domain.Appointment
	err = s.tx.WithTx(ctx, func(ctx context.Context, st Stores) error {
		if err := st.Slots.EnsureSeeded(ctx, teacher.ID, date); err != nil {
			return err
		}

		slot, err := st.Slots.Find(ctx, teacher.ID, date, timeSlot)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !slot.Bookable() {
			return fmt.Errorf("%w: slot is %s", ErrSlotUnavailable, slot.Status)
		}

		appt = &domain.Appointment{
			StudentID:       actor.ID,
			TeacherID:       teacher.ID,
			Date:            date,
			TimeSlot:        timeSlot,
			DurationMinutes: slot.DurationMinutes,
			Purpose:         purpose,
			Subject:         req.Subject,
			Message:         req.Message,
			Status:          domain.AppointmentPending,
		}
		if err := st.Appointments.Create(ctx, appt); err != nil {
			return err
		}

		reserved, err := st.Slots.Reserve(ctx, slot.ID, appt.ID, actor.ID)
		if err != nil {
			return err
		}
		if !reserved {
			// Lost the race between Find and Reserve.
			return fmt.Errorf("%w: slot was just taken", ErrSlotUnavailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(EventBooked, appt, "")
	return appt, nil
}

// Approve confirms a pending appointment. The slot stays booked.
func (s *Service) Approve(ctx context.Context, actor Actor, id int64, response string) (*domain.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleTeacher || appt.TeacherID != actor.ID {
		return nil, ErrForbidden
	}
	if appt.Status != domain.AppointmentPending {
		return nil, transitionError(appt.Status, domain.AppointmentConfirmed)
	}

	now := time.Now()
	fields := map[string]any{
		"confirmed_at": now,
		"responded_at": now,
	}
	if response != "" {
		fields["teacher_response"] = response
	}

	applied, err := s.appts.ApplyTransition(ctx, id, domain.AppointmentPending, domain.AppointmentConfirmed, fields)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, s.staleTransition(ctx, id, domain.AppointmentConfirmed)
	}

	appt, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatch(EventConfirmed, appt, "")
	return appt, nil
}

// Reject declines a pending appointment and re-opens its slot in the same
// transaction. A failed slot release fails the whole transition.
func (s *Service) Reject(ctx context.Context, actor Actor, id int64, reason string) (*domain.Appointment, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleTeacher || appt.TeacherID != actor.ID {
		return nil, ErrForbidden
	}
	if appt.Status != domain.AppointmentPending {
		return nil, transitionError(appt.Status, domain.AppointmentRejected)
	}

	err = s.releaseTransition(ctx, id, domain.AppointmentPending, domain.AppointmentRejected, map[string]any{
		"rejected_at":      time.Now(),
		"responded_at":     time.Now(),
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, err
	}

	appt, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatch(EventRejected, appt, reason)
	return appt, nil
}

// Cancel withdraws a pending or confirmed appointment. Either party may
// cancel, as may an admin.
func (s *Service) Cancel(ctx context.Context, actor Actor, id int64, reason string) (*domain.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && !appt.Party(actor.ID) {
		return nil, ErrForbidden
	}
	if appt.Status != domain.AppointmentPending && appt.Status != domain.AppointmentConfirmed {
		return nil, transitionError(appt.Status, domain.AppointmentCancelled)
	}

	fields := map[string]any{"cancelled_at": time.Now()}
	if reason != "" {
		fields["rejection_reason"] = reason
	}

	if err := s.releaseTransition(ctx, id, appt.Status, domain.AppointmentCancelled, fields); err != nil {
		return nil, err
	}

	appt, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatch(EventCancelled, appt, reason)
	return appt, nil
}

// Complete marks a confirmed appointment as held. The slot is in the past by
// then and stays booked for the record.
func (s *Service) Complete(ctx context.Context, actor Actor, id int64, feedback string) (*domain.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleTeacher || appt.TeacherID != actor.ID {
		return nil, ErrForbidden
	}
	if appt.Status != domain.AppointmentConfirmed {
		return nil, transitionError(appt.Status, domain.AppointmentCompleted)
	}

	fields := map[string]any{"completed_at": time.Now()}
	if feedback != "" {
		fields["teacher_feedback"] = feedback
	}

	applied, err := s.appts.ApplyTransition(ctx, id, domain.AppointmentConfirmed, domain.AppointmentCompleted, fields)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, s.staleTransition(ctx, id, domain.AppointmentCompleted)
	}

	appt, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatch(EventCompleted, appt, "")
	return appt, nil
}

// Rate attaches the student's rating to a completed appointment. Rating is
// the only mutation a terminal status accepts.
func (s *Service) Rate(ctx context.Context, actor Actor, id int64, rating int, feedback string) (*domain.Appointment, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleStudent || appt.StudentID != actor.ID {
		return nil, ErrForbidden
	}
	if appt.Status != domain.AppointmentCompleted {
		return nil, transitionError(appt.Status, domain.AppointmentCompleted)
	}

	applied, err := s.appts.Rate(ctx, id, rating, feedback)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, s.staleTransition(ctx, id, domain.AppointmentCompleted)
	}

	return s.load(ctx, id)
}

// Get returns an appointment only if the caller is allowed to see it.
func (s *Service) Get(ctx context.Context, actor Actor, id int64) (*domain.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(actor, appt) {
		return nil, ErrNotFound
	}
	return appt, nil
}

// List returns role-scoped appointments: students and teachers only ever see
// their own side, admins see everything and may filter by either party.
func (s *Service) List(ctx context.Context, actor Actor, q ListQuery) ([]domain.Appointment, int64, error) {
	f := repository.AppointmentFilters{
		Status: domain.AppointmentStatus(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Status != "" && !validStatus(domain.AppointmentStatus(q.Status)) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}
	if q.DateFrom != "" {
		d, err := parseDate(q.DateFrom)
		if err != nil {
			return nil, 0, err
		}
		f.DateFrom = d
	}
	if q.DateTo != "" {
		d, err := parseDate(q.DateTo)
		if err != nil {
			return nil, 0, err
		}
		f.DateTo = d
	}

	switch actor.Role {
	case domain.RoleStudent:
		f.StudentID = actor.ID
	case domain.RoleTeacher:
		f.TeacherID = actor.ID
	case domain.RoleAdmin:
		f.StudentID = q.StudentID
		f.TeacherID = q.TeacherID
	default:
		return nil, 0, ErrForbidden
	}

	return s.appts.Query(ctx, f)
}

// releaseTransition flips appointment status and re-opens the slot as one
// transaction. The engine never leaves a booked slot pointing at a rejected
// or cancelled appointment.
func (s *Service) releaseTransition(ctx context.Context, id int64, from, to domain.AppointmentStatus, fields map[string]any) error {
	return s.tx.WithTx(ctx, func(ctx context.Context, st Stores) error {
		applied, err := st.Appointments.ApplyTransition(ctx, id, from, to, fields)
		if err != nil {
			return err
		}
		if !applied {
			cur, err := st.Appointments.GetByID(ctx, id)
			if err != nil {
				return err
			}
			return transitionError(cur.Status, to)
		}

		released, err := st.Slots.ReleaseByAppointment(ctx, id)
		if err != nil {
			return err
		}
		if !released {
			// The pending/confirmed invariant guarantees a booked slot; if it
			// is missing the stores have diverged and the transition must not
			// commit half-applied.
			return fmt.Errorf("no booked slot found for appointment %d", id)
		}
		return nil
	})
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appt, nil
}

// staleTransition builds the InvalidTransition error for a guard that did not
// match, naming whatever status the appointment reached in the meantime.
func (s *Service) staleTransition(ctx context.Context, id int64, requested domain.AppointmentStatus) error {
	cur, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return transitionError("unknown", requested)
	}
	return transitionError(cur.Status, requested)
}

func (s *Service) visible(actor Actor, appt *domain.Appointment) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleStudent:
		return appt.StudentID == actor.ID
	case domain.RoleTeacher:
		return appt.TeacherID == actor.ID
	}
	return false
}

func (s *Service) dispatch(kind EventKind, appt *domain.Appointment, reason string) {
	if s.dispatcher == nil {
		return
	}
	ev := Event{
		ID:            uuid.NewString(),
		Kind:          kind,
		AppointmentID: appt.ID,
		StudentID:     appt.StudentID,
		TeacherID:     appt.TeacherID,
		Date:          appt.Date,
		TimeSlot:      appt.TimeSlot,
		Reason:        reason,
		Timestamp:     time.Now(),
	}
	// Transition is already durable; the dispatcher owns delivery from here.
	s.dispatcher.Dispatch(context.Background(), ev)
	log.Printf("appointment_event kind=%s appointment_id=%d student_id=%d teacher_id=%d", kind, appt.ID, appt.StudentID, appt.TeacherID)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return domain.NormalizeDate(d), nil
}

func validStatus(s domain.AppointmentStatus) bool {
	switch s {
	case domain.AppointmentPending, domain.AppointmentConfirmed, domain.AppointmentRejected,
		domain.AppointmentCancelled, domain.AppointmentCompleted:
		return true
	}
	return false
}
