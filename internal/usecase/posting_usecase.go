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

type postingUsecase struct {
	tx          domain.Transactor
	postingRepo domain.PostingRepository
	evalRepo    domain.EvaluationRepository
	categories  domain.CategoryUsecase
	notifier    domain.Notifier
	validate    *validator.Validate
	now         func() time.Time
}

// NewPostingUsecase creates the company side of the posting workflow
func NewPostingUsecase(
	tx domain.Transactor,
	postingRepo domain.PostingRepository,
	evalRepo domain.EvaluationRepository,
	categories domain.CategoryUsecase,
	notifier domain.Notifier,
	validate *validator.Validate,
) domain.PostingUsecase {
	return &postingUsecase{
		tx:          tx,
		postingRepo: postingRepo,
		evalRepo:    evalRepo,
		categories:  categories,
		notifier:    notifier,
		validate:    validate,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func requireRole(actor domain.Actor, role domain.Role, msg string) error {
	if !actor.Is(role) {
		return apperror.Forbidden(msg)
	}
	return nil
}

// checkInput runs tag validation, the salary range rule and resource lookup
func (u *postingUsecase) checkInput(ctx context.Context, in domain.PostingInput) error {
	if err := validateInput(u.validate, in); err != nil {
		return err
	}
	if !in.SalaryRangeValid() {
		return apperror.BadRequest("Minimum salary cannot be greater than maximum salary")
	}
	if _, err := u.categories.ResolveResources(ctx, in.ResourceIDs); err != nil {
		return err
	}
	return nil
}

// lockOwned loads the posting for update and checks the company owns it.
// Must run inside a transaction.
func (u *postingUsecase) lockOwned(ctx context.Context, company domain.Actor, id uuid.UUID) (*domain.Posting, error) {
	p, err := u.postingRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, storeError(err, "Posting not found")
	}
	if p.CompanyID != company.ID {
		return nil, apperror.Forbidden("You can only manage your own postings")
	}
	return p, nil
}

func logTransition(ctx context.Context, p *domain.Posting, actor domain.Actor, from domain.PostingStatus) {
	logger.Log.InfoContext(ctx, "Posting status changed",
		"posting_id", p.ID, "actor_id", actor.ID, "from", from, "to", p.Status)
}

// CreatePosting stores a draft posting together with its pending evaluation
func (u *postingUsecase) CreatePosting(ctx context.Context, company domain.Actor, in domain.PostingInput) (*domain.Posting, error) {
	if err := requireRole(company, domain.RoleCompany, "Only companies can create postings"); err != nil {
		return nil, err
	}
	if err := u.checkInput(ctx, in); err != nil {
		return nil, err
	}

	p := &domain.Posting{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Status:    domain.PostingStatusDraft,
	}
	in.Apply(p)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.postingRepo.Create(ctx, p); err != nil {
			return storeError(err, "Company not found")
		}
		eval := domain.NewPendingEvaluation(p.ID, u.now())
		if err := u.evalRepo.Create(ctx, eval); err != nil {
			return storeError(err, "Posting not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.InfoContext(ctx, "Posting created", "posting_id", p.ID, "company_id", company.ID)
	return p, nil
}

// UpdatePosting saves new field values and returns the posting to draft
func (u *postingUsecase) UpdatePosting(ctx context.Context, company domain.Actor, id uuid.UUID, in domain.PostingInput) (*domain.Posting, error) {
	if err := requireRole(company, domain.RoleCompany, "Only companies can edit postings"); err != nil {
		return nil, err
	}
	if err := u.checkInput(ctx, in); err != nil {
		return nil, err
	}

	var (
		p    *domain.Posting
		from domain.PostingStatus
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if p, err = u.lockOwned(ctx, company, id); err != nil {
			return err
		}
		next, err := domain.NextPostingStatus(p.Status, domain.ActionEdit)
		if err != nil {
			return err
		}
		from = p.Status
		in.Apply(p)
		p.Status = next
		return storeError(u.postingRepo.Update(ctx, p), "Posting not found")
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, p, company, from)
	return p, nil
}

// SubmitForReview sends a draft to the medical review queue. A posting whose
// previous review cycle is already decided gets a fresh pending evaluation.
func (u *postingUsecase) SubmitForReview(ctx context.Context, company domain.Actor, id uuid.UUID) (*domain.Posting, error) {
	if err := requireRole(company, domain.RoleCompany, "Only companies can submit postings"); err != nil {
		return nil, err
	}

	var (
		p    *domain.Posting
		from domain.PostingStatus
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if p, err = u.lockOwned(ctx, company, id); err != nil {
			return err
		}
		next, err := domain.NextPostingStatus(p.Status, domain.ActionSubmitForReview)
		if err != nil {
			return err
		}

		latest, err := u.evalRepo.LatestForUpdate(ctx, p.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return integrityFault(ctx, fmt.Errorf("posting %s has no evaluation", p.ID), "posting_id", p.ID)
		}
		if err != nil {
			return apperror.Internal(err)
		}
		if !latest.IsPending() {
			if err := u.evalRepo.Create(ctx, domain.NewPendingEvaluation(p.ID, u.now())); err != nil {
				return storeError(err, "Posting not found")
			}
		}

		from = p.Status
		p.Status = next
		return storeError(u.postingRepo.UpdateStatus(ctx, p), "Posting not found")
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, p, company, from)
	notify(ctx, u.notifier, domain.Event{
		Type:         domain.EventPostingSubmitted,
		PostingID:    p.ID,
		PostingTitle: p.Title,
		CompanyID:    p.CompanyID,
		ActorID:      company.ID,
		OccurredAt:   u.now(),
	})
	return p, nil
}

// Publish opens an approved posting to candidates and stamps published_at
func (u *postingUsecase) Publish(ctx context.Context, company domain.Actor, id uuid.UUID) (*domain.Posting, error) {
	return u.transition(ctx, company, id, domain.ActionPublish, func(ctx context.Context, p *domain.Posting) error {
		latest, err := u.evalRepo.Latest(ctx, p.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return apperror.Internal(err)
		}
		if latest == nil || latest.Status != domain.EvaluationStatusApproved || latest.DecidedAt == nil {
			return integrityFault(ctx, fmt.Errorf("approved posting %s has no decided approval", p.ID), "posting_id", p.ID)
		}
		if p.PublishedAt == nil {
			now := u.now()
			p.PublishedAt = &now
		}
		return nil
	})
}

func (u *postingUsecase) Pause(ctx context.Context, company domain.Actor, id uuid.UUID) (*domain.Posting, error) {
	return u.transition(ctx, company, id, domain.ActionPause, nil)
}

func (u *postingUsecase) Close(ctx context.Context, company domain.Actor, id uuid.UUID) (*domain.Posting, error) {
	return u.transition(ctx, company, id, domain.ActionClose, nil)
}

// transition applies a company-driven status change. before runs inside
// the transaction after the state check and may veto or amend the posting.
func (u *postingUsecase) transition(
	ctx context.Context,
	company domain.Actor,
	id uuid.UUID,
	action domain.PostingAction,
	before func(ctx context.Context, p *domain.Posting) error,
) (*domain.Posting, error) {
	if err := requireRole(company, domain.RoleCompany, "Only companies can manage postings"); err != nil {
		return nil, err
	}

	var (
		p    *domain.Posting
		from domain.PostingStatus
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if p, err = u.lockOwned(ctx, company, id); err != nil {
			return err
		}
		next, err := domain.NextPostingStatus(p.Status, action)
		if err != nil {
			return err
		}
		if before != nil {
			if err := before(ctx, p); err != nil {
				return err
			}
		}
		from = p.Status
		p.Status = next
		return storeError(u.postingRepo.UpdateStatus(ctx, p), "Posting not found")
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, p, company, from)
	return p, nil
}

// DeletePosting removes a posting with its evaluations, applications and conversations
func (u *postingUsecase) DeletePosting(ctx context.Context, company domain.Actor, id uuid.UUID) error {
	if err := requireRole(company, domain.RoleCompany, "Only companies can delete postings"); err != nil {
		return err
	}

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := u.lockOwned(ctx, company, id)
		if err != nil {
			return err
		}
		if _, err := domain.NextPostingStatus(p.Status, domain.ActionDelete); err != nil {
			return err
		}
		return storeError(u.postingRepo.Delete(ctx, p.ID), "Posting not found")
	})
	if err != nil {
		return err
	}

	logger.Log.InfoContext(ctx, "Posting deleted", "posting_id", id, "actor_id", company.ID)
	return nil
}

// GetPosting returns a posting as the actor may see it. Owners, doctors and
// admins see any status; everyone else only open postings.
func (u *postingUsecase) GetPosting(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Posting, error) {
	p, err := u.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Posting not found")
	}

	switch {
	case actor.Is(domain.RoleDoctor), actor.Is(domain.RoleAdmin):
		return p, nil
	case actor.Is(domain.RoleCompany) && p.CompanyID == actor.ID:
		return p, nil
	case p.Status == domain.PostingStatusOpen:
		view := p.PublicView()
		return &view, nil
	}
	return nil, apperror.NotFound("Posting not found")
}

// ViewPosting is the public detail page of an open posting; it counts the view
func (u *postingUsecase) ViewPosting(ctx context.Context, id uuid.UUID) (*domain.Posting, error) {
	p, err := u.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Posting not found")
	}
	if p.Status != domain.PostingStatusOpen {
		return nil, apperror.NotFound("Posting not found")
	}

	views, err := u.postingRepo.IncrementViews(ctx, p.ID)
	if err != nil {
		logger.Log.WarnContext(ctx, "Failed to count posting view", "posting_id", p.ID, "error", err)
	} else {
		p.ViewCount = views
	}

	view := p.PublicView()
	return &view, nil
}

func (u *postingUsecase) ListOpen(ctx context.Context, page, pageSize int) ([]domain.Posting, int64, error) {
	limit, offset := pageBounds(page, pageSize)
	postings, total, err := u.postingRepo.FetchByStatus(ctx, domain.PostingStatusOpen, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	for i := range postings {
		postings[i] = postings[i].PublicView()
	}
	return postings, total, nil
}

func (u *postingUsecase) ListMyPostings(ctx context.Context, company domain.Actor, page, pageSize int) ([]domain.Posting, int64, error) {
	if err := requireRole(company, domain.RoleCompany, "Only companies have postings"); err != nil {
		return nil, 0, err
	}
	limit, offset := pageBounds(page, pageSize)
	postings, total, err := u.postingRepo.FetchByCompanyID(ctx, company.ID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return postings, total, nil
}
