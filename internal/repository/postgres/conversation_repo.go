package postgres

import (
	"context"
	"fmt"
	"time"

	"pcd-jobs-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type conversationRepo struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) domain.ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO conversations (id, application_id, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.ApplicationID, c.CreatedAt,
	)
	return mapError(err, "Conversation already exists for this application")
}

func (r *conversationRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.Conversation, error) {
	var c domain.Conversation
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, application_id, created_at FROM conversations WHERE application_id = $1`,
		applicationID,
	).Scan(&c.ID, &c.ApplicationID, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "")
	}
	return &c, nil
}

func (r *conversationRepo) AddMessage(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_role, body, attachment_url, sent_at,
			read_by_company, read_by_candidate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := conn(ctx, r.db).Exec(ctx, query,
		m.ID, m.ConversationID, m.SenderRole, m.Body, m.AttachmentURL, m.SentAt,
		m.ReadByCompany, m.ReadByCandidate,
	)
	return mapError(err, "Message already exists")
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_role, body, attachment_url, sent_at, read_by_company, read_by_candidate
		FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at ASC, id ASC`

	rows, err := conn(ctx, r.db).Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderRole, &m.Body, &m.AttachmentURL, &m.SentAt,
			&m.ReadByCompany, &m.ReadByCandidate,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// readColumn maps a side of the conversation to its read flag column.
func readColumn(side domain.SenderRole) (string, error) {
	switch side {
	case domain.SenderCompany:
		return "read_by_company", nil
	case domain.SenderCandidate:
		return "read_by_candidate", nil
	}
	return "", fmt.Errorf("unknown conversation side %q", side)
}

func (r *conversationRepo) MarkRead(ctx context.Context, conversationID uuid.UUID, side domain.SenderRole) (int64, error) {
	col, err := readColumn(side)
	if err != nil {
		return 0, err
	}
	result, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE messages SET `+col+` = TRUE WHERE conversation_id = $1 AND NOT `+col,
		conversationID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *conversationRepo) CountUnread(ctx context.Context, conversationID uuid.UUID, side domain.SenderRole) (int64, error) {
	col, err := readColumn(side)
	if err != nil {
		return 0, err
	}
	var count int64
	err = conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1 AND NOT `+col,
		conversationID,
	).Scan(&count)
	return count, err
}
