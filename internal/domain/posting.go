package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PostingStatus is the lifecycle state of a job posting.
type PostingStatus string

const (
	PostingStatusDraft             PostingStatus = "draft"
	PostingStatusPendingReview     PostingStatus = "pending_review"
	PostingStatusApproved          PostingStatus = "approved"
	PostingStatusRejected          PostingStatus = "rejected"
	PostingStatusAdjustmentsNeeded PostingStatus = "adjustments_needed"
	PostingStatusOpen              PostingStatus = "open"
	PostingStatusPaused            PostingStatus = "paused"
	PostingStatusClosed            PostingStatus = "closed"
)

// AllPostingStatuses lists every status in lifecycle order.
var AllPostingStatuses = []PostingStatus{
	PostingStatusDraft,
	PostingStatusPendingReview,
	PostingStatusApproved,
	PostingStatusRejected,
	PostingStatusAdjustmentsNeeded,
	PostingStatusOpen,
	PostingStatusPaused,
	PostingStatusClosed,
}

const (
	PostingKindEmployment = "employment"
	PostingKindTraining   = "training"
)

const (
	WorkModeOnSite = "on_site"
	WorkModeRemote = "remote"
	WorkModeHybrid = "hybrid"
)

type Posting struct {
	ID          uuid.UUID     `json:"id"`
	CompanyID   uuid.UUID     `json:"company_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Kind        string        `json:"kind"`
	WorkMode    string        `json:"work_mode"`
	Location    string        `json:"location"`
	SalaryMin   *float64      `json:"salary_min,omitempty"`
	SalaryMax   *float64      `json:"salary_max,omitempty"`
	ShowSalary  bool          `json:"show_salary"`
	ResourceIDs []int64       `json:"resource_ids"`
	Status      PostingStatus `json:"status"`
	ViewCount   int64         `json:"view_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

// PublicView hides the salary range when the company chose not to show it.
func (p Posting) PublicView() Posting {
	if !p.ShowSalary {
		p.SalaryMin = nil
		p.SalaryMax = nil
	}
	return p
}

// PostingInput carries the company-editable fields of a posting.
type PostingInput struct {
	Title       string   `json:"title" validate:"required,not_blank,no_emoji,max=200"`
	Description string   `json:"description" validate:"required,not_blank,max=10000"`
	Kind        string   `json:"kind" validate:"required,oneof=employment training"`
	WorkMode    string   `json:"work_mode" validate:"required,oneof=on_site remote hybrid"`
	Location    string   `json:"location" validate:"max=255"`
	SalaryMin   *float64 `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax   *float64 `json:"salary_max" validate:"omitempty,gte=0"`
	ShowSalary  bool     `json:"show_salary"`
	ResourceIDs []int64  `json:"resource_ids" validate:"unique_ids"`
}

// SalaryRangeValid holds when min <= max or either bound is absent.
func (in PostingInput) SalaryRangeValid() bool {
	if in.SalaryMin == nil || in.SalaryMax == nil {
		return true
	}
	return *in.SalaryMin <= *in.SalaryMax
}

// Apply copies the input fields onto p.
func (in PostingInput) Apply(p *Posting) {
	p.Title = in.Title
	p.Description = in.Description
	p.Kind = in.Kind
	p.WorkMode = in.WorkMode
	p.Location = in.Location
	p.SalaryMin = in.SalaryMin
	p.SalaryMax = in.SalaryMax
	p.ShowSalary = in.ShowSalary
	p.ResourceIDs = UniqueIDs(in.ResourceIDs)
}

type PostingRepository interface {
	Create(ctx context.Context, p *Posting) error
	GetByID(ctx context.Context, id uuid.UUID) (*Posting, error)
	// GetForUpdate locks the posting row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Posting, error)
	// GetForShare takes a shared lock, blocking status changes until the
	// surrounding transaction ends.
	GetForShare(ctx context.Context, id uuid.UUID) (*Posting, error)
	Update(ctx context.Context, p *Posting) error
	UpdateStatus(ctx context.Context, p *Posting) error
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FetchByCompanyID(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]Posting, int64, error)
	// FetchByStatus orders oldest first so review queues are FIFO.
	FetchByStatus(ctx context.Context, status PostingStatus, limit, offset int) ([]Posting, int64, error)
	// FetchCompatible returns open postings whose latest approved evaluation
	// shares at least one category with categoryIDs.
	FetchCompatible(ctx context.Context, categoryIDs []int64, limit, offset int) ([]Posting, int64, error)
}

type PostingUsecase interface {
	CreatePosting(ctx context.Context, company Actor, in PostingInput) (*Posting, error)
	UpdatePosting(ctx context.Context, company Actor, id uuid.UUID, in PostingInput) (*Posting, error)
	SubmitForReview(ctx context.Context, company Actor, id uuid.UUID) (*Posting, error)
	Publish(ctx context.Context, company Actor, id uuid.UUID) (*Posting, error)
	Pause(ctx context.Context, company Actor, id uuid.UUID) (*Posting, error)
	Close(ctx context.Context, company Actor, id uuid.UUID) (*Posting, error)
	DeletePosting(ctx context.Context, company Actor, id uuid.UUID) error

	GetPosting(ctx context.Context, actor Actor, id uuid.UUID) (*Posting, error)
	ViewPosting(ctx context.Context, id uuid.UUID) (*Posting, error)
	ListOpen(ctx context.Context, page, pageSize int) ([]Posting, int64, error)
	ListMyPostings(ctx context.Context, company Actor, page, pageSize int) ([]Posting, int64, error)
}
