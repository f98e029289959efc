package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

// Application status constants
const (
	ApplicationStatusPending            ApplicationStatus = "pending"
	ApplicationStatusViewed             ApplicationStatus = "viewed"
	ApplicationStatusInReview           ApplicationStatus = "in_review"
	ApplicationStatusShortlisted        ApplicationStatus = "shortlisted"
	ApplicationStatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationStatusApproved           ApplicationStatus = "approved"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn          ApplicationStatus = "withdrawn"
)

// IsTerminal reports whether no further status change is allowed.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// CompanySettable reports whether the company may move an application to s.
func (s ApplicationStatus) CompanySettable() bool {
	switch s {
	case ApplicationStatusViewed, ApplicationStatusInReview, ApplicationStatusShortlisted,
		ApplicationStatusInterviewScheduled, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is a candidate's request to be considered for a posting.
// (PostingID, CandidateID) is unique.
type Application struct {
	ID            uuid.UUID         `json:"id"`
	PostingID     uuid.UUID         `json:"posting_id"`
	CandidateID   uuid.UUID         `json:"candidate_id"`
	Message       string            `json:"message"`
	Status        ApplicationStatus `json:"status"`
	CompanyRating *int              `json:"company_rating,omitempty"`
	CompanyNotes  string            `json:"company_notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Joined data for list responses
	PostingTitle *string `json:"posting_title,omitempty"`
}

// ApplyInput is the candidate's application payload.
type ApplyInput struct {
	Message string `json:"message" validate:"max=5000"`
}

// ReviewInput carries the company-side changes to an application; nil
// fields are left untouched.
type ReviewInput struct {
	Status *ApplicationStatus `json:"status" validate:"omitempty,oneof=viewed in_review shortlisted interview_scheduled approved rejected"`
	Rating *int               `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Notes  *string            `json:"notes" validate:"omitempty,max=5000"`
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	// Create inserts the application; a duplicate (posting, candidate) pair
	// fails with a conflict error raised by the unique constraint.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	// GetForUpdate locks the application row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Application, error)
	GetByPostingID(ctx context.Context, postingID uuid.UUID) ([]Application, error)
	GetByCandidateID(ctx context.Context, candidateID uuid.UUID) ([]Application, error)
	Update(ctx context.Context, app *Application) error
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	Apply(ctx context.Context, candidate Actor, postingID uuid.UUID, in ApplyInput) (*Application, error)
	ListMyApplications(ctx context.Context, candidate Actor) ([]Application, error)
	WithdrawApplication(ctx context.Context, candidate Actor, applicationID uuid.UUID) (*Application, error)
	CompatiblePostings(ctx context.Context, candidate Actor, page, pageSize int) ([]Posting, int64, error)

	ListPostingApplications(ctx context.Context, company Actor, postingID uuid.UUID) ([]Application, error)
	ReviewApplication(ctx context.Context, company Actor, applicationID uuid.UUID, in ReviewInput) (*Application, error)
}
