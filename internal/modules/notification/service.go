package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"campusbook/internal/domain"
	"campusbook/internal/modules/appointment"
	"campusbook/internal/modules/chat"
	"campusbook/internal/pkg/mailer"
)

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service is the notification dispatcher. It fans a committed appointment
// event out to a persisted notification row, a websocket push, and a
// best-effort email. Every failure is logged and swallowed: delivery never
// feeds back into the transition that produced the event.
type Service struct {
	repo   *Repository
	users  UserDirectory
	hub    *chat.Hub
	mailer *mailer.Mailer
}

func NewService(repo *Repository, users UserDirectory, hub *chat.Hub, m *mailer.Mailer) *Service {
	return &Service{repo: repo, users: users, hub: hub, mailer: m}
}

// Dispatch implements appointment.Dispatcher.
func (s *Service) Dispatch(ctx context.Context, ev appointment.Event) {
	for _, recipientID := range recipients(ev) {
		n := s.build(ev, recipientID)
		if err := s.repo.Create(ctx, n); err != nil {
			log.Printf("notification_persist_failed event_id=%s user_id=%d error=%v", ev.ID, recipientID, err)
			continue
		}

		if s.hub != nil {
			s.hub.SendToUser(recipientID, chat.EventNotification, n)
		}
		s.email(ctx, recipientID, n)
	}
}

// recipients picks who hears about each lifecycle event: the teacher learns
// about new bookings, the student about the teacher's verdicts, and both
// sides about a cancellation.
func recipients(ev appointment.Event) []int64 {
	switch ev.Kind {
	case appointment.EventBooked:
		return []int64{ev.TeacherID}
	case appointment.EventCancelled:
		return []int64{ev.StudentID, ev.TeacherID}
	default:
		return []int64{ev.StudentID}
	}
}

func (s *Service) build(ev appointment.Event, recipientID int64) *Notification {
	when := fmt.Sprintf("%s at %s", ev.Date.Format("2006-01-02"), ev.TimeSlot)

	var (
		typ   Type
		title string
		msg   string
	)
	switch ev.Kind {
	case appointment.EventBooked:
		typ = TypeAppointmentBooked
		title = "New appointment request"
		msg = "A student requested an appointment for " + when
	case appointment.EventConfirmed:
		typ = TypeAppointmentConfirmed
		title = "Appointment confirmed"
		msg = "Your appointment for " + when + " was confirmed"
	case appointment.EventRejected:
		typ = TypeAppointmentRejected
		title = "Appointment declined"
		msg = "Your appointment request for " + when + " was declined"
		if ev.Reason != "" {
			msg += ". Reason: " + ev.Reason
		}
	case appointment.EventCancelled:
		typ = TypeAppointmentCancelled
		title = "Appointment cancelled"
		msg = "The appointment for " + when + " was cancelled"
		if ev.Reason != "" {
			msg += ". Reason: " + ev.Reason
		}
	case appointment.EventCompleted:
		typ = TypeAppointmentCompleted
		title = "Appointment completed"
		msg = "Your appointment for " + when + " was marked completed. You can rate it now."
	}

	data, _ := json.Marshal(map[string]any{
		"event_id":       ev.ID,
		"appointment_id": ev.AppointmentID,
		"student_id":     ev.StudentID,
		"teacher_id":     ev.TeacherID,
	})

	return &Notification{
		UserID:  recipientID,
		Type:    typ,
		Title:   title,
		Message: msg,
		Data:    data,
	}
}

func (s *Service) email(ctx context.Context, recipientID int64, n *Notification) {
	if !s.mailer.Enabled() {
		return
	}

	user, err := s.users.GetByID(ctx, recipientID)
	if err != nil || user.Email == "" {
		return
	}

	body := mailer.Template(n.Title, "<p>"+n.Message+"</p>")
	if err := s.mailer.Send([]string{user.Email}, n.Title, body); err != nil {
		log.Printf("notification_email_failed user_id=%d error=%v", recipientID, err)
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Notification, int64, error) {
	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}
