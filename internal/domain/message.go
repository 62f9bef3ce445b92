package domain

import "time"

type Message struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id" gorm:"index:idx_messages_conversation"`
	RecipientID int64      `json:"recipient_id" gorm:"index:idx_messages_conversation"`
	Body        string     `json:"body" gorm:"type:text"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Sender    *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient *User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}
