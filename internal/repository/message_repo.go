package repository

import (
	"context"
	"time"

	"campusbook/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Conversation returns messages between two users, newest first.
func (r *MessageRepository) Conversation(ctx context.Context, userA, userB int64, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkConversationRead marks everything the sender wrote to the recipient as read.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, recipientID, senderID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", recipientID, senderID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&cnt)
	return cnt, tx.Error
}
