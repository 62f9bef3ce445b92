package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusbook/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	Conversation(ctx context.Context, userA, userB int64, limit, offset int) ([]domain.Message, error)
	MarkConversationRead(ctx context.Context, recipientID, senderID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Service struct {
	messages MessageRepository
	users    UserDirectory
	hub      *Hub
}

func NewService(messages MessageRepository, users UserDirectory, hub *Hub) *Service {
	return &Service{messages: messages, users: users, hub: hub}
}

func (s *Service) Send(ctx context.Context, senderID int64, req SendMessageRequest) (*domain.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrValidation)
	}
	if req.RecipientID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}

	recipient, err := s.users.GetByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !recipient.Active {
		return nil, ErrNotFound
	}

	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Body:        body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(recipient.ID, EventNewMessage, msg)
	}
	return msg, nil
}

// Conversation returns the thread with another user and marks their side read.
func (s *Service) Conversation(ctx context.Context, userID, otherID int64, limit, offset int) ([]domain.Message, error) {
	msgs, err := s.messages.Conversation(ctx, userID, otherID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkConversationRead(ctx, userID, otherID); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.messages.CountUnread(ctx, userID)
}
