package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/apperror"
	"pcd-jobs-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultStatsWindow = 30 * 24 * time.Hour

type reviewUsecase struct {
	tx          domain.Transactor
	postingRepo domain.PostingRepository
	evalRepo    domain.EvaluationRepository
	categories  domain.CategoryUsecase
	notifier    domain.Notifier
	validate    *validator.Validate
	statsWindow time.Duration
	now         func() time.Time
}

// NewReviewUsecase creates the doctor side of the posting workflow.
// statsWindow is the look-back period of DoctorStats; zero means 30 days.
func NewReviewUsecase(
	tx domain.Transactor,
	postingRepo domain.PostingRepository,
	evalRepo domain.EvaluationRepository,
	categories domain.CategoryUsecase,
	notifier domain.Notifier,
	validate *validator.Validate,
	statsWindow time.Duration,
) domain.ReviewUsecase {
	if statsWindow <= 0 {
		statsWindow = defaultStatsWindow
	}
	return &reviewUsecase{
		tx:          tx,
		postingRepo: postingRepo,
		evalRepo:    evalRepo,
		categories:  categories,
		notifier:    notifier,
		validate:    validate,
		statsWindow: statsWindow,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DoctorDecide records the doctor's decision on the latest evaluation and
// moves the posting to the matching status, in one transaction. Both rows
// are locked, so of two concurrent decisions the second finds the
// evaluation already decided.
func (u *reviewUsecase) DoctorDecide(ctx context.Context, doctor domain.Actor, postingID uuid.UUID, in domain.DecisionInput) (*domain.Posting, error) {
	if err := requireRole(doctor, domain.RoleDoctor, "Only doctors can review postings"); err != nil {
		return nil, err
	}
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	action, ok := domain.DecisionAction(in.Outcome)
	if !ok {
		return nil, apperror.BadRequest("Outcome must be approved, rejected or adjustments_needed")
	}

	var (
		p    *domain.Posting
		eval *domain.MedicalEvaluation
		from domain.PostingStatus
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if p, err = u.postingRepo.GetForUpdate(ctx, postingID); err != nil {
			return storeError(err, "Posting not found")
		}
		next, err := domain.NextPostingStatus(p.Status, action)
		if err != nil {
			return err
		}

		eval, err = u.evalRepo.LatestForUpdate(ctx, p.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return integrityFault(ctx, fmt.Errorf("posting %s in review has no evaluation", p.ID), "posting_id", p.ID)
		}
		if err != nil {
			return apperror.Internal(err)
		}
		if !eval.IsPending() {
			return apperror.InvalidState("Evaluation has already been decided", string(eval.Status))
		}

		if _, err := u.categories.ResolveCategories(ctx, in.CategoryIDs); err != nil {
			return err
		}
		ids := domain.UniqueIDs(in.CategoryIDs)
		if in.Outcome == domain.EvaluationStatusApproved && len(ids) == 0 {
			return apperror.BadRequest("An approval must name at least one eligible disability category")
		}

		decidedAt := u.now()
		doctorID := doctor.ID
		eval.DoctorID = &doctorID
		eval.EligibleCategoryIDs = ids
		eval.Notes = in.Notes
		eval.RecommendedAdjustments = in.Adjustments
		eval.Status = in.Outcome
		eval.DecidedAt = &decidedAt
		if err := eval.Validate(); err != nil {
			return integrityFault(ctx, err, "evaluation_id", eval.ID)
		}
		if err := u.evalRepo.SaveDecision(ctx, eval); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperror.InvalidState("Evaluation has already been decided", string(domain.EvaluationStatusPending))
			}
			return apperror.Internal(err)
		}

		from = p.Status
		p.Status = next
		return storeError(u.postingRepo.UpdateStatus(ctx, p), "Posting not found")
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, p, doctor, from)
	notify(ctx, u.notifier, domain.Event{
		Type:         domain.EventEvaluationDecided,
		PostingID:    p.ID,
		PostingTitle: p.Title,
		CompanyID:    p.CompanyID,
		ActorID:      doctor.ID,
		Outcome:      string(eval.Status),
		OccurredAt:   *eval.DecidedAt,
	})
	return p, nil
}

// ListPendingReview returns the review queue, oldest first
func (u *reviewUsecase) ListPendingReview(ctx context.Context, actor domain.Actor, page, pageSize int) ([]domain.Posting, int64, error) {
	if !actor.Is(domain.RoleDoctor) && !actor.Is(domain.RoleAdmin) {
		return nil, 0, apperror.Forbidden("Only doctors can see the review queue")
	}
	limit, offset := pageBounds(page, pageSize)
	postings, total, err := u.postingRepo.FetchByStatus(ctx, domain.PostingStatusPendingReview, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return postings, total, nil
}

// ListEvaluations returns a posting's review history, newest first
func (u *reviewUsecase) ListEvaluations(ctx context.Context, actor domain.Actor, postingID uuid.UUID) ([]domain.MedicalEvaluation, error) {
	p, err := u.postingRepo.GetByID(ctx, postingID)
	if err != nil {
		return nil, storeError(err, "Posting not found")
	}

	owner := actor.Is(domain.RoleCompany) && p.CompanyID == actor.ID
	if !owner && !actor.Is(domain.RoleDoctor) && !actor.Is(domain.RoleAdmin) {
		return nil, apperror.Forbidden("You are not allowed to see this posting's evaluations")
	}

	evaluations, err := u.evalRepo.ListByPosting(ctx, p.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return evaluations, nil
}

// DoctorStats summarises the doctor's decisions over the configured window
func (u *reviewUsecase) DoctorStats(ctx context.Context, doctor domain.Actor) (*domain.DoctorStats, error) {
	if err := requireRole(doctor, domain.RoleDoctor, "Only doctors have review statistics"); err != nil {
		return nil, err
	}

	since := u.now().Add(-u.statsWindow)
	stats, err := u.evalRepo.DoctorStats(ctx, doctor.ID, since)
	if err != nil {
		logger.Log.ErrorContext(ctx, "Failed to load doctor stats", "doctor_id", doctor.ID, "error", err)
		return nil, apperror.Internal(err)
	}
	return stats, nil
}
