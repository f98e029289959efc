package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type EvaluationStatus string

const (
	EvaluationStatusPending           EvaluationStatus = "pending"
	EvaluationStatusApproved          EvaluationStatus = "approved"
	EvaluationStatusRejected          EvaluationStatus = "rejected"
	EvaluationStatusAdjustmentsNeeded EvaluationStatus = "adjustments_needed"
)

// MedicalEvaluation is one doctor review of a posting. Sequence is assigned
// by the store in creation order; the evaluation with the greatest Sequence
// for a posting is the authoritative ("latest") one.
type MedicalEvaluation struct {
	ID                     uuid.UUID        `json:"id"`
	PostingID              uuid.UUID        `json:"posting_id"`
	Sequence               int64            `json:"sequence"`
	DoctorID               *uuid.UUID       `json:"doctor_id,omitempty"`
	EligibleCategoryIDs    []int64          `json:"eligible_category_ids"`
	Notes                  string           `json:"notes"`
	RecommendedAdjustments string           `json:"recommended_adjustments"`
	Status                 EvaluationStatus `json:"status"`
	DecidedAt              *time.Time       `json:"decided_at,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
}

var ErrDecisionTimestamp = errors.New("decided_at must be set exactly when status is not pending")

// Validate checks that DecidedAt is set iff the evaluation is decided.
func (e MedicalEvaluation) Validate() error {
	decided := e.Status != EvaluationStatusPending
	if decided != (e.DecidedAt != nil) {
		return ErrDecisionTimestamp
	}
	return nil
}

func (e MedicalEvaluation) IsPending() bool {
	return e.Status == EvaluationStatusPending
}

// NewPendingEvaluation opens a review cycle for a posting.
func NewPendingEvaluation(postingID uuid.UUID, now time.Time) *MedicalEvaluation {
	return &MedicalEvaluation{
		ID:                  uuid.New(),
		PostingID:           postingID,
		EligibleCategoryIDs: []int64{},
		Status:              EvaluationStatusPending,
		CreatedAt:           now,
	}
}

// LatestEvaluation picks the evaluation with the greatest Sequence. It is
// the in-memory form of the ordering the repositories use in SQL.
func LatestEvaluation(evals []MedicalEvaluation) (*MedicalEvaluation, bool) {
	if len(evals) == 0 {
		return nil, false
	}
	latest := evals[0]
	for _, e := range evals[1:] {
		if e.Sequence > latest.Sequence {
			latest = e
		}
	}
	return &latest, true
}

// DecisionInput is what a doctor submits when reviewing a posting.
type DecisionInput struct {
	CategoryIDs []int64          `json:"category_ids" validate:"unique_ids"`
	Notes       string           `json:"notes" validate:"max=5000"`
	Adjustments string           `json:"adjustments" validate:"max=5000"`
	Outcome     EvaluationStatus `json:"outcome" validate:"required,oneof=approved rejected adjustments_needed"`
}

// DoctorStats summarises a doctor's decisions over a look-back window.
type DoctorStats struct {
	Since             time.Time `json:"since"`
	Total             int64     `json:"total"`
	Approved          int64     `json:"approved"`
	Rejected          int64     `json:"rejected"`
	AdjustmentsNeeded int64     `json:"adjustments_needed"`
	ApprovalRate      float64   `json:"approval_rate"`
	// Mean hours between posting creation and the decision; nil without decisions.
	AvgHoursToDecision *float64 `json:"avg_hours_to_decision,omitempty"`
	PendingQueue       int64    `json:"pending_queue"`
}

type EvaluationRepository interface {
	Create(ctx context.Context, e *MedicalEvaluation) error
	// Latest returns the evaluation with the greatest sequence, or ErrNotFound.
	Latest(ctx context.Context, postingID uuid.UUID) (*MedicalEvaluation, error)
	// LatestForUpdate is Latest with a row lock held until the transaction ends.
	LatestForUpdate(ctx context.Context, postingID uuid.UUID) (*MedicalEvaluation, error)
	// LatestApproved returns the approved evaluation with the greatest sequence, or ErrNotFound.
	LatestApproved(ctx context.Context, postingID uuid.UUID) (*MedicalEvaluation, error)
	SaveDecision(ctx context.Context, e *MedicalEvaluation) error
	ListByPosting(ctx context.Context, postingID uuid.UUID) ([]MedicalEvaluation, error)
	DoctorStats(ctx context.Context, doctorID uuid.UUID, since time.Time) (*DoctorStats, error)
}

type ReviewUsecase interface {
	DoctorDecide(ctx context.Context, doctor Actor, postingID uuid.UUID, in DecisionInput) (*Posting, error)
	ListPendingReview(ctx context.Context, actor Actor, page, pageSize int) ([]Posting, int64, error)
	ListEvaluations(ctx context.Context, actor Actor, postingID uuid.UUID) ([]MedicalEvaluation, error)
	DoctorStats(ctx context.Context, doctor Actor) (*DoctorStats, error)
}
