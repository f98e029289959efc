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

type applicationUsecase struct {
	tx               domain.Transactor
	applicationRepo  domain.ApplicationRepository
	postingRepo      domain.PostingRepository
	evalRepo         domain.EvaluationRepository
	conversationRepo domain.ConversationRepository
	notifier         domain.Notifier
	validate         *validator.Validate
	now              func() time.Time
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	tx domain.Transactor,
	appRepo domain.ApplicationRepository,
	postingRepo domain.PostingRepository,
	evalRepo domain.EvaluationRepository,
	conversationRepo domain.ConversationRepository,
	notifier domain.Notifier,
	validate *validator.Validate,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		tx:               tx,
		applicationRepo:  appRepo,
		postingRepo:      postingRepo,
		evalRepo:         evalRepo,
		conversationRepo: conversationRepo,
		notifier:         notifier,
		validate:         validate,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Apply records a candidate's application to an open posting they are
// eligible for, together with its conversation
func (uc *applicationUsecase) Apply(ctx context.Context, candidate domain.Actor, postingID uuid.UUID, in domain.ApplyInput) (*domain.Application, error) {
	// 1. Only candidates apply
	if err := requireRole(candidate, domain.RoleCandidate, "Only candidates can apply to postings"); err != nil {
		return nil, err
	}
	if err := validateInput(uc.validate, in); err != nil {
		return nil, err
	}

	// 2-5 run in one transaction. The shared lock on the posting holds back
	// a concurrent pause or close until the application is committed.
	var (
		posting *domain.Posting
		app     *domain.Application
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// 2. Posting must be open
		var err error
		if posting, err = uc.postingRepo.GetForShare(ctx, postingID); err != nil {
			return storeError(err, "Posting not found")
		}
		if posting.Status != domain.PostingStatusOpen {
			return apperror.InvalidState("This posting is not accepting applications", string(posting.Status))
		}

		// 3. Latest approved evaluation
		eval, err := uc.evalRepo.LatestApproved(ctx, posting.ID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Log.ErrorContext(ctx, "Data integrity fault", "posting_id", posting.ID,
				"error", "open posting has no approved evaluation")
			return apperror.InvalidState("This posting has no approved medical evaluation", string(posting.Status))
		}
		if err != nil {
			return apperror.Internal(err)
		}

		// 4. Eligibility intersection
		if len(domain.Intersect(candidate.CategoryIDs, eval.EligibleCategoryIDs)) == 0 {
			return apperror.Ineligible("Your profile does not match any disability category approved for this posting")
		}

		// 5. Application and conversation; the unique constraint reports duplicates
		app = &domain.Application{
			ID:          uuid.New(),
			PostingID:   posting.ID,
			CandidateID: candidate.ID,
			Message:     in.Message,
			Status:      domain.ApplicationStatusPending,
		}
		if err := uc.applicationRepo.Create(ctx, app); err != nil {
			return storeError(err, "Posting not found")
		}
		conv := &domain.Conversation{ID: uuid.New(), ApplicationID: app.ID}
		return storeError(uc.conversationRepo.Create(ctx, conv), "Application not found")
	})
	if err != nil {
		return nil, err
	}
	title := posting.Title
	app.PostingTitle = &title

	logger.Log.InfoContext(ctx, "Application created",
		"application_id", app.ID, "posting_id", posting.ID, "candidate_id", candidate.ID)
	appID := app.ID
	notify(ctx, uc.notifier, domain.Event{
		Type:          domain.EventApplicationCreated,
		PostingID:     posting.ID,
		PostingTitle:  posting.Title,
		CompanyID:     posting.CompanyID,
		ActorID:       candidate.ID,
		ApplicationID: &appID,
		OccurredAt:    uc.now(),
	})
	return app, nil
}

// ListMyApplications returns all applications of the current candidate
func (uc *applicationUsecase) ListMyApplications(ctx context.Context, candidate domain.Actor) ([]domain.Application, error) {
	if err := requireRole(candidate, domain.RoleCandidate, "Only candidates have applications"); err != nil {
		return nil, err
	}
	apps, err := uc.applicationRepo.GetByCandidateID(ctx, candidate.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// WithdrawApplication lets the applicant retract a non-final application
func (uc *applicationUsecase) WithdrawApplication(ctx context.Context, candidate domain.Actor, applicationID uuid.UUID) (*domain.Application, error) {
	if err := requireRole(candidate, domain.RoleCandidate, "Only candidates can withdraw applications"); err != nil {
		return nil, err
	}

	var app *domain.Application
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if app, err = uc.applicationRepo.GetForUpdate(ctx, applicationID); err != nil {
			return storeError(err, "Application not found")
		}
		if app.CandidateID != candidate.ID {
			return apperror.Forbidden("You can only withdraw your own applications")
		}
		if app.Status.IsTerminal() {
			return apperror.InvalidState("This application can no longer be withdrawn", string(app.Status))
		}

		app.Status = domain.ApplicationStatusWithdrawn
		return storeError(uc.applicationRepo.Update(ctx, app), "Application not found")
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// CompatiblePostings lists open postings the candidate is eligible for
func (uc *applicationUsecase) CompatiblePostings(ctx context.Context, candidate domain.Actor, page, pageSize int) ([]domain.Posting, int64, error) {
	if err := requireRole(candidate, domain.RoleCandidate, "Only candidates have compatible postings"); err != nil {
		return nil, 0, err
	}
	limit, offset := pageBounds(page, pageSize)
	postings, total, err := uc.postingRepo.FetchCompatible(ctx, domain.UniqueIDs(candidate.CategoryIDs), limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	for i := range postings {
		postings[i] = postings[i].PublicView()
	}
	return postings, total, nil
}

// ListPostingApplications returns all applications for a posting (owner or admin)
func (uc *applicationUsecase) ListPostingApplications(ctx context.Context, company domain.Actor, postingID uuid.UUID) ([]domain.Application, error) {
	if err := uc.validatePostingOwnership(ctx, company, postingID); err != nil {
		return nil, err
	}
	apps, err := uc.applicationRepo.GetByPostingID(ctx, postingID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// ReviewApplication lets the owning company move an application forward,
// rate it and keep notes
func (uc *applicationUsecase) ReviewApplication(ctx context.Context, company domain.Actor, applicationID uuid.UUID, in domain.ReviewInput) (*domain.Application, error) {
	if err := requireRole(company, domain.RoleCompany, "Only companies can review applications"); err != nil {
		return nil, err
	}
	if err := validateInput(uc.validate, in); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.CompanySettable() {
		return nil, apperror.BadRequest(fmt.Sprintf("Status %q cannot be set by a company", *in.Status))
	}

	var app *domain.Application
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if app, err = uc.applicationRepo.GetForUpdate(ctx, applicationID); err != nil {
			return storeError(err, "Application not found")
		}
		if err := uc.validatePostingOwnership(ctx, company, app.PostingID); err != nil {
			return err
		}

		if in.Status != nil && *in.Status != app.Status {
			if app.Status.IsTerminal() {
				return apperror.InvalidState("This application is already final", string(app.Status))
			}
			app.Status = *in.Status
		}
		if in.Rating != nil {
			rating := *in.Rating
			app.CompanyRating = &rating
		}
		if in.Notes != nil {
			app.CompanyNotes = *in.Notes
		}
		return storeError(uc.applicationRepo.Update(ctx, app), "Application not found")
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// validatePostingOwnership checks that the company owns the posting; admins pass
func (uc *applicationUsecase) validatePostingOwnership(ctx context.Context, actor domain.Actor, postingID uuid.UUID) error {
	if !actor.Is(domain.RoleCompany) && !actor.Is(domain.RoleAdmin) {
		return apperror.Forbidden("Only companies can manage applications")
	}
	posting, err := uc.postingRepo.GetByID(ctx, postingID)
	if err != nil {
		return storeError(err, "Posting not found")
	}
	if actor.Is(domain.RoleCompany) && posting.CompanyID != actor.ID {
		return apperror.Forbidden("You do not have access to this posting's applications")
	}
	return nil
}
