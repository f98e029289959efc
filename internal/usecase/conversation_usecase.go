package usecase

import (
	"context"
	"strings"
	"time"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type conversationUsecase struct {
	applicationRepo  domain.ApplicationRepository
	postingRepo      domain.PostingRepository
	conversationRepo domain.ConversationRepository
	validate         *validator.Validate
	now              func() time.Time
}

// NewConversationUsecase creates the per-application message thread usecase
func NewConversationUsecase(
	appRepo domain.ApplicationRepository,
	postingRepo domain.PostingRepository,
	conversationRepo domain.ConversationRepository,
	validate *validator.Validate,
) domain.ConversationUsecase {
	return &conversationUsecase{
		applicationRepo:  appRepo,
		postingRepo:      postingRepo,
		conversationRepo: conversationRepo,
		validate:         validate,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// participant resolves the conversation of an application and the side the
// actor speaks for. Only the applicant and the posting's company take part.
func (u *conversationUsecase) participant(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) (*domain.Conversation, domain.SenderRole, error) {
	app, err := u.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, "", storeError(err, "Application not found")
	}

	var side domain.SenderRole
	switch {
	case actor.Is(domain.RoleCandidate) && app.CandidateID == actor.ID:
		side = domain.SenderCandidate
	case actor.Is(domain.RoleCompany):
		posting, err := u.postingRepo.GetByID(ctx, app.PostingID)
		if err != nil {
			return nil, "", storeError(err, "Posting not found")
		}
		if posting.CompanyID != actor.ID {
			return nil, "", apperror.Forbidden("You are not part of this conversation")
		}
		side = domain.SenderCompany
	default:
		return nil, "", apperror.Forbidden("You are not part of this conversation")
	}

	conv, err := u.conversationRepo.GetByApplicationID(ctx, app.ID)
	if err != nil {
		return nil, "", storeError(err, "Conversation not found")
	}
	return conv, side, nil
}

// SendMessage appends a message. It counts as read by the sender only.
func (u *conversationUsecase) SendMessage(ctx context.Context, actor domain.Actor, applicationID uuid.UUID, in domain.SendMessageInput) (*domain.Message, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}

	conv, side, err := u.participant(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:              uuid.New(),
		ConversationID:  conv.ID,
		SenderRole:      side,
		Body:            in.Body,
		AttachmentURL:   in.AttachmentURL,
		SentAt:          u.now(),
		ReadByCompany:   side == domain.SenderCompany,
		ReadByCandidate: side == domain.SenderCandidate,
	}
	if err := u.conversationRepo.AddMessage(ctx, msg); err != nil {
		return nil, storeError(err, "Conversation not found")
	}
	return msg, nil
}

// ListMessages returns the thread in send order
func (u *conversationUsecase) ListMessages(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) ([]domain.Message, error) {
	conv, _, err := u.participant(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	messages, err := u.conversationRepo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return messages, nil
}

// MarkRead marks every message read for the caller's side
func (u *conversationUsecase) MarkRead(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) (int64, error) {
	conv, side, err := u.participant(ctx, actor, applicationID)
	if err != nil {
		return 0, err
	}
	n, err := u.conversationRepo.MarkRead(ctx, conv.ID, side)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (u *conversationUsecase) UnreadCount(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) (int64, error) {
	conv, side, err := u.participant(ctx, actor, applicationID)
	if err != nil {
		return 0, err
	}
	n, err := u.conversationRepo.CountUnread(ctx, conv.ID, side)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}
