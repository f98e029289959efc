package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SenderRole is the side of a conversation a message comes from.
type SenderRole string

const (
	SenderCompany   SenderRole = "company"
	SenderCandidate SenderRole = "candidate"
)

// Conversation is the private thread of exactly one application.
type Conversation struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Message struct {
	ID              uuid.UUID  `json:"id"`
	ConversationID  uuid.UUID  `json:"conversation_id"`
	SenderRole      SenderRole `json:"sender_role"`
	Body            string     `json:"body"`
	AttachmentURL   *string    `json:"attachment_url,omitempty"`
	SentAt          time.Time  `json:"sent_at"`
	ReadByCompany   bool       `json:"read_by_company"`
	ReadByCandidate bool       `json:"read_by_candidate"`
}

type SendMessageInput struct {
	Body          string  `json:"body" validate:"required,not_blank,max=5000"`
	AttachmentURL *string `json:"attachment_url" validate:"omitempty,url,max=1000"`
}

type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*Conversation, error)
	AddMessage(ctx context.Context, m *Message) error
	// ListMessages orders by sent_at, then id.
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
	MarkRead(ctx context.Context, conversationID uuid.UUID, side SenderRole) (int64, error)
	CountUnread(ctx context.Context, conversationID uuid.UUID, side SenderRole) (int64, error)
}

type ConversationUsecase interface {
	SendMessage(ctx context.Context, actor Actor, applicationID uuid.UUID, in SendMessageInput) (*Message, error)
	ListMessages(ctx context.Context, actor Actor, applicationID uuid.UUID) ([]Message, error)
	MarkRead(ctx context.Context, actor Actor, applicationID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, actor Actor, applicationID uuid.UUID) (int64, error)
}
