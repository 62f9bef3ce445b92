package chat

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Body        string `json:"body" binding:"required,max=4000"`
}
