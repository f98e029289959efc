package usecase_test

import (
	"context"
	"errors"
	"testing"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/internal/usecase"
	"pcd-jobs-backend/pkg/apperror"
	"pcd-jobs-backend/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store         *memStore
	notifier      *MockNotifier
	postings      domain.PostingUsecase
	reviews       domain.ReviewUsecase
	applications  domain.ApplicationUsecase
	conversations domain.ConversationUsecase

	company  domain.Actor
	rival    domain.Actor
	doctor   domain.Actor
	admin    domain.Actor
	visually domain.Actor // candidate with categories 1 and 2
	hearing  domain.Actor // candidate with category 3
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	n := new(MockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).Return(nil)
	h := newHarnessWith(t, n)
	h.notifier = n
	return h
}

// newHarnessWith wires the usecases to n instead of a recording mock.
func newHarnessWith(t *testing.T, n domain.Notifier) *harness {
	t.Helper()
	s := newMemStore()
	v := validation.New()
	tx := memTx{s}
	postings := memPostings{s}
	evals := memEvaluations{s}
	apps := memApplications{s}
	convs := memConversations{s}
	categories := usecase.NewCategoryUsecase(memCategories{s})

	return &harness{
		store:         s,
		postings:      usecase.NewPostingUsecase(tx, postings, evals, categories, n, v),
		reviews:       usecase.NewReviewUsecase(tx, postings, evals, categories, n, v, 0),
		applications:  usecase.NewApplicationUsecase(tx, apps, postings, evals, convs, n, v),
		conversations: usecase.NewConversationUsecase(apps, postings, convs, v),

		company:  domain.Actor{ID: uuid.New(), Role: domain.RoleCompany},
		rival:    domain.Actor{ID: uuid.New(), Role: domain.RoleCompany},
		doctor:   domain.Actor{ID: uuid.New(), Role: domain.RoleDoctor},
		admin:    domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
		visually: domain.Actor{ID: uuid.New(), Role: domain.RoleCandidate, CategoryIDs: []int64{1, 2}},
		hearing:  domain.Actor{ID: uuid.New(), Role: domain.RoleCandidate, CategoryIDs: []int64{3}},
	}
}

func postingInput() domain.PostingInput {
	min, max := 3000.0, 4500.0
	return domain.PostingInput{
		Title:       "Analista de Dados",
		Description: "Análise de indicadores e construção de painéis.",
		Kind:        domain.PostingKindEmployment,
		WorkMode:    domain.WorkModeRemote,
		SalaryMin:   &min,
		SalaryMax:   &max,
		ResourceIDs: []int64{10, 11},
	}
}

func (h *harness) draft(t *testing.T) *domain.Posting {
	t.Helper()
	p, err := h.postings.CreatePosting(context.Background(), h.company, postingInput())
	require.NoError(t, err)
	return p
}

func (h *harness) approved(t *testing.T, categories ...int64) *domain.Posting {
	t.Helper()
	ctx := context.Background()
	p := h.draft(t)
	_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)
	p, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{
		Outcome:     domain.EvaluationStatusApproved,
		CategoryIDs: categories,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) open(t *testing.T, categories ...int64) *domain.Posting {
	t.Helper()
	p := h.approved(t, categories...)
	p, err := h.postings.Publish(context.Background(), h.company, p.ID)
	require.NoError(t, err)
	return p
}

func (h *harness) status(t *testing.T, id uuid.UUID) domain.PostingStatus {
	t.Helper()
	p, err := memPostings{h.store}.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

func assertInvalidState(t *testing.T, err error, state string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindInvalidState, appErr.Kind)
	assert.Equal(t, state, appErr.State)
}

func TestPostingWorkflow_RoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p := h.draft(t)
	assert.Equal(t, domain.PostingStatusDraft, p.Status)
	evals, err := h.reviews.ListEvaluations(ctx, h.company, p.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.True(t, evals[0].IsPending())

	p, err = h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusPendingReview, p.Status)

	queue, total, err := h.reviews.ListPendingReview(ctx, h.doctor, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, p.ID, queue[0].ID)

	p, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{
		Outcome:     domain.EvaluationStatusApproved,
		CategoryIDs: []int64{2},
		Notes:       "Ambiente adequado",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusApproved, p.Status)

	p, err = h.postings.Publish(ctx, h.company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusOpen, p.Status)
	require.NotNil(t, p.PublishedAt)

	evals, err = h.reviews.ListEvaluations(ctx, h.doctor, p.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, domain.EvaluationStatusApproved, evals[0].Status)
	assert.Equal(t, []int64{2}, evals[0].EligibleCategoryIDs)
	assert.Equal(t, h.doctor.ID, *evals[0].DoctorID)
	assert.NoError(t, evals[0].Validate())

	assert.Equal(t,
		[]domain.EventType{domain.EventPostingSubmitted, domain.EventEvaluationDecided},
		h.notifier.types())
}

func TestPublish_Twice(t *testing.T) {
	h := newHarness(t)
	p := h.open(t, 1)
	first := *p.PublishedAt

	_, err := h.postings.Publish(context.Background(), h.company, p.ID)
	assertInvalidState(t, err, string(domain.PostingStatusOpen))

	stored, err := memPostings{h.store}.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *stored.PublishedAt)
}

func TestPublish_AfterRejection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.draft(t)
	_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)
	_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusRejected})
	require.NoError(t, err)

	_, err = h.postings.Publish(ctx, h.company, p.ID)
	assertInvalidState(t, err, string(domain.PostingStatusRejected))
	assert.Equal(t, domain.PostingStatusRejected, h.status(t, p.ID))
}

func TestSubmitForReview_Authorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.draft(t)

	t.Run("Should reject a company that does not own the posting", func(t *testing.T) {
		_, err := h.postings.SubmitForReview(ctx, h.rival, p.ID)
		assertKind(t, err, apperror.KindAuthorization)
		assert.Equal(t, domain.PostingStatusDraft, h.status(t, p.ID))
	})

	t.Run("Should reject non-company roles", func(t *testing.T) {
		_, err := h.postings.SubmitForReview(ctx, h.doctor, p.ID)
		assertKind(t, err, apperror.KindAuthorization)
	})

	t.Run("Should report unknown postings as not found", func(t *testing.T) {
		_, err := h.postings.SubmitForReview(ctx, h.company, uuid.New())
		assertKind(t, err, apperror.KindNotFound)
	})

	assert.Empty(t, h.notifier.types())
}

func TestCreatePosting_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("Should reject an inverted salary range", func(t *testing.T) {
		in := postingInput()
		in.SalaryMin, in.SalaryMax = in.SalaryMax, in.SalaryMin
		_, err := h.postings.CreatePosting(ctx, h.company, in)
		assertKind(t, err, apperror.KindValidation)
	})

	t.Run("Should reject blank titles", func(t *testing.T) {
		in := postingInput()
		in.Title = "   "
		_, err := h.postings.CreatePosting(ctx, h.company, in)
		assertKind(t, err, apperror.KindValidation)
	})

	t.Run("Should reject unknown accessibility resources", func(t *testing.T) {
		in := postingInput()
		in.ResourceIDs = []int64{10, 99}
		_, err := h.postings.CreatePosting(ctx, h.company, in)
		assertKind(t, err, apperror.KindNotFound)
		assert.Contains(t, err.Error(), "99")
	})

	t.Run("Should reject candidates", func(t *testing.T) {
		_, err := h.postings.CreatePosting(ctx, h.visually, postingInput())
		assertKind(t, err, apperror.KindAuthorization)
	})

	assert.Empty(t, h.store.postings)
	assert.Empty(t, h.store.evals)
}

func TestDoctorDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject non-doctors", func(t *testing.T) {
		h := newHarness(t)
		p := h.draft(t)
		_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
		require.NoError(t, err)

		_, err = h.reviews.DoctorDecide(ctx, h.admin, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusApproved})
		assertKind(t, err, apperror.KindAuthorization)
		assert.Equal(t, domain.PostingStatusPendingReview, h.status(t, p.ID))
	})

	t.Run("Should reject a pending outcome", func(t *testing.T) {
		h := newHarness(t)
		p := h.draft(t)
		_, err := h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusPending})
		assertKind(t, err, apperror.KindValidation)
	})

	t.Run("Should reject postings that are not under review", func(t *testing.T) {
		h := newHarness(t)
		p := h.draft(t)
		_, err := h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusApproved})
		assertInvalidState(t, err, string(domain.PostingStatusDraft))
	})

	t.Run("Should reject a second decision on the same evaluation", func(t *testing.T) {
		h := newHarness(t)
		p := h.approved(t, 1)

		_, err := h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusRejected})
		assertInvalidState(t, err, string(domain.PostingStatusApproved))

		// Force the posting back into review with its evaluation already decided
		stored := h.store.postings[p.ID]
		stored.Status = domain.PostingStatusPendingReview
		h.store.postings[p.ID] = stored

		_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusRejected})
		assertInvalidState(t, err, string(domain.EvaluationStatusApproved))

		latest, err := memEvaluations{h.store}.Latest(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EvaluationStatusApproved, latest.Status)
	})

	t.Run("Should roll back when a category is unknown", func(t *testing.T) {
		h := newHarness(t)
		p := h.draft(t)
		_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
		require.NoError(t, err)

		_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{
			Outcome:     domain.EvaluationStatusApproved,
			CategoryIDs: []int64{1, 42},
		})
		assertKind(t, err, apperror.KindNotFound)
		assert.Equal(t, domain.PostingStatusPendingReview, h.status(t, p.ID))

		latest, err := memEvaluations{h.store}.Latest(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, latest.IsPending())
		assert.Nil(t, latest.DecidedAt)
	})

	t.Run("Should reject duplicate category ids", func(t *testing.T) {
		h := newHarness(t)
		p := h.draft(t)
		_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
		require.NoError(t, err)

		_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{
			Outcome:     domain.EvaluationStatusApproved,
			CategoryIDs: []int64{1, 1},
		})
		assertKind(t, err, apperror.KindValidation)
	})
}

func TestAdjustmentsCycle_OpensNewEvaluation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.draft(t)
	_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)

	p, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{
		Outcome:     domain.EvaluationStatusAdjustmentsNeeded,
		Adjustments: "Incluir intérprete de Libras nas entrevistas",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusAdjustmentsNeeded, p.Status)

	_, err = h.postings.SubmitForReview(ctx, h.company, p.ID)
	assertInvalidState(t, err, string(domain.PostingStatusAdjustmentsNeeded))

	p, err = h.postings.UpdatePosting(ctx, h.company, p.ID, postingInput())
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusDraft, p.Status)

	_, err = h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)

	evals, err := h.reviews.ListEvaluations(ctx, h.company, p.ID)
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.True(t, evals[0].IsPending(), "newest first")
	assert.Equal(t, domain.EvaluationStatusAdjustmentsNeeded, evals[1].Status)
	assert.Greater(t, evals[0].Sequence, evals[1].Sequence)

	p, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{
		Outcome:     domain.EvaluationStatusApproved,
		CategoryIDs: []int64{3},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusApproved, p.Status)
}

func TestUpdatePosting_NotEditableWhileOpen(t *testing.T) {
	h := newHarness(t)
	p := h.open(t, 1)

	_, err := h.postings.UpdatePosting(context.Background(), h.company, p.ID, postingInput())
	assertInvalidState(t, err, string(domain.PostingStatusOpen))
}

func TestPauseCloseDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.open(t, 1)

	err := h.postings.DeletePosting(ctx, h.company, p.ID)
	assertInvalidState(t, err, string(domain.PostingStatusOpen))

	p, err = h.postings.Pause(ctx, h.company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusPaused, p.Status)

	_, err = h.postings.Close(ctx, h.company, p.ID)
	assertInvalidState(t, err, string(domain.PostingStatusPaused))

	other := h.open(t, 2)
	_, err = h.postings.Close(ctx, h.company, other.ID)
	require.NoError(t, err)

	err = h.postings.DeletePosting(ctx, h.rival, other.ID)
	assertKind(t, err, apperror.KindAuthorization)

	require.NoError(t, h.postings.DeletePosting(ctx, h.company, other.ID))
	_, err = h.postings.GetPosting(ctx, h.company, other.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestGetPosting_Visibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.draft(t)

	_, err := h.postings.GetPosting(ctx, h.visually, p.ID)
	assertKind(t, err, apperror.KindNotFound)
	_, err = h.postings.GetPosting(ctx, h.rival, p.ID)
	assertKind(t, err, apperror.KindNotFound)

	got, err := h.postings.GetPosting(ctx, h.company, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.SalaryMin)

	_, err = h.postings.GetPosting(ctx, h.doctor, p.ID)
	require.NoError(t, err)

	_, err = h.postings.ViewPosting(ctx, p.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestViewPosting_CountsViewsAndHidesSalary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.open(t, 1)

	_, err := h.postings.ViewPosting(ctx, p.ID)
	require.NoError(t, err)
	got, err := h.postings.ViewPosting(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
	assert.Nil(t, got.SalaryMin)

	list, total, err := h.postings.ListOpen(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Nil(t, list[0].SalaryMax)
}

func TestApply_Eligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("Should accept a candidate sharing a category", func(t *testing.T) {
		h := newHarness(t)
		p := h.open(t, 2, 3)

		app, err := h.applications.Apply(ctx, h.visually, p.ID, domain.ApplyInput{Message: "Tenho interesse"})
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusPending, app.Status)
		require.NotNil(t, app.PostingTitle)
		assert.Equal(t, p.Title, *app.PostingTitle)

		_, err = memConversations{h.store}.GetByApplicationID(ctx, app.ID)
		require.NoError(t, err, "conversation must be created with the application")
		assert.Contains(t, h.notifier.types(), domain.EventApplicationCreated)
	})

	t.Run("Should reject a candidate without a shared category", func(t *testing.T) {
		h := newHarness(t)
		p := h.open(t, 1, 2)

		_, err := h.applications.Apply(ctx, h.hearing, p.ID, domain.ApplyInput{})
		assertKind(t, err, apperror.KindEligibility)
		assert.Empty(t, h.store.apps)
	})

	t.Run("Should reject postings that are not open", func(t *testing.T) {
		h := newHarness(t)
		p := h.approved(t, 1)

		_, err := h.applications.Apply(ctx, h.visually, p.ID, domain.ApplyInput{})
		assertInvalidState(t, err, string(domain.PostingStatusApproved))
	})

	t.Run("Should reject non-candidates", func(t *testing.T) {
		h := newHarness(t)
		p := h.open(t, 1)

		_, err := h.applications.Apply(ctx, h.company, p.ID, domain.ApplyInput{})
		assertKind(t, err, apperror.KindAuthorization)
	})

	t.Run("Should reject duplicate applications", func(t *testing.T) {
		h := newHarness(t)
		p := h.open(t, 1)

		_, err := h.applications.Apply(ctx, h.visually, p.ID, domain.ApplyInput{})
		require.NoError(t, err)
		_, err = h.applications.Apply(ctx, h.visually, p.ID, domain.ApplyInput{})
		assertKind(t, err, apperror.KindConflict)
		assert.Len(t, h.store.apps, 1)
		assert.Len(t, h.store.convs, 1)
	})
}

func TestCompatiblePostings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	match := h.open(t, 2)
	h.open(t, 3)
	h.approved(t, 1) // not open yet

	postings, total, err := h.applications.CompatiblePostings(ctx, h.visually, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, match.ID, postings[0].ID)

	_, _, err = h.applications.CompatiblePostings(ctx, h.company, 1, 10)
	assertKind(t, err, apperror.KindAuthorization)
}

func TestApplicationReviewAndWithdraw(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.open(t, 1)
	app, err := h.applications.Apply(ctx, h.visually, p.ID, domain.ApplyInput{})
	require.NoError(t, err)

	shortlisted := domain.ApplicationStatusShortlisted
	rating := 4
	updated, err := h.applications.ReviewApplication(ctx, h.company, app.ID, domain.ReviewInput{Status: &shortlisted, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, shortlisted, updated.Status)
	assert.Equal(t, 4, *updated.CompanyRating)

	_, err = h.applications.ReviewApplication(ctx, h.rival, app.ID, domain.ReviewInput{Status: &shortlisted})
	assertKind(t, err, apperror.KindAuthorization)

	withdrawn := domain.ApplicationStatusWithdrawn
	_, err = h.applications.ReviewApplication(ctx, h.company, app.ID, domain.ReviewInput{Status: &withdrawn})
	assertKind(t, err, apperror.KindValidation)

	tooHigh := 9
	_, err = h.applications.ReviewApplication(ctx, h.company, app.ID, domain.ReviewInput{Rating: &tooHigh})
	assertKind(t, err, apperror.KindValidation)

	_, err = h.applications.WithdrawApplication(ctx, h.hearing, app.ID)
	assertKind(t, err, apperror.KindAuthorization)

	out, err := h.applications.WithdrawApplication(ctx, h.visually, app.ID)
	require.NoError(t, err)
	assert.Equal(t, withdrawn, out.Status)

	_, err = h.applications.WithdrawApplication(ctx, h.visually, app.ID)
	assertInvalidState(t, err, string(withdrawn))

	_, err = h.applications.ReviewApplication(ctx, h.company, app.ID, domain.ReviewInput{Status: &shortlisted})
	assertInvalidState(t, err, string(withdrawn))

	listed, err := h.applications.ListPostingApplications(ctx, h.admin, p.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestConversation_ReadFlags(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.open(t, 1)
	app, err := h.applications.Apply(ctx, h.visually, p.ID, domain.ApplyInput{})
	require.NoError(t, err)

	msg, err := h.conversations.SendMessage(ctx, h.visually, app.ID, domain.SendMessageInput{Body: "  Olá, posso enviar o laudo?  "})
	require.NoError(t, err)
	assert.Equal(t, domain.SenderCandidate, msg.SenderRole)
	assert.Equal(t, "Olá, posso enviar o laudo?", msg.Body)
	assert.True(t, msg.ReadByCandidate)
	assert.False(t, msg.ReadByCompany)

	unread, err := h.conversations.UnreadCount(ctx, h.company, app.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	unread, err = h.conversations.UnreadCount(ctx, h.visually, app.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	marked, err := h.conversations.MarkRead(ctx, h.company, app.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
	unread, err = h.conversations.UnreadCount(ctx, h.company, app.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	reply, err := h.conversations.SendMessage(ctx, h.company, app.ID, domain.SendMessageInput{Body: "Pode sim."})
	require.NoError(t, err)
	assert.True(t, reply.ReadByCompany)
	assert.False(t, reply.ReadByCandidate)

	messages, err := h.conversations.ListMessages(ctx, h.visually, app.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, msg.ID, messages[0].ID)

	_, err = h.conversations.ListMessages(ctx, h.rival, app.ID)
	assertKind(t, err, apperror.KindAuthorization)
	_, err = h.conversations.SendMessage(ctx, h.hearing, app.ID, domain.SendMessageInput{Body: "oi"})
	assertKind(t, err, apperror.KindAuthorization)
	_, err = h.conversations.SendMessage(ctx, h.visually, app.ID, domain.SendMessageInput{Body: "   "})
	assertKind(t, err, apperror.KindValidation)
}

func TestNotificationFailureDoesNotUndoChange(t *testing.T) {
	h := newHarness(t)
	failing := new(MockNotifier)
	failing.On("Notify", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	s := h.store
	v := validation.New()
	categories := usecase.NewCategoryUsecase(memCategories{s})
	postings := usecase.NewPostingUsecase(memTx{s}, memPostings{s}, memEvaluations{s}, categories, failing, v)

	p := h.draft(t)
	got, err := postings.SubmitForReview(context.Background(), h.company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusPendingReview, got.Status)
	assert.Equal(t, domain.PostingStatusPendingReview, h.status(t, p.ID))
	failing.AssertNumberOfCalls(t, "Notify", 1)
}

func TestDoctorDecide_ApprovalNeedsCategories(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.draft(t)
	_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)

	_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusApproved})
	assertKind(t, err, apperror.KindValidation)
	assert.Equal(t, domain.PostingStatusPendingReview, h.status(t, p.ID))
	latest, err := memEvaluations{h.store}.Latest(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, latest.IsPending())

	// Rejections and adjustment requests carry no categories.
	_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusAdjustmentsNeeded})
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusAdjustmentsNeeded, h.status(t, p.ID))
}

func TestDoctorStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.approved(t, 1)

	p := h.draft(t)
	_, err := h.postings.SubmitForReview(ctx, h.company, p.ID)
	require.NoError(t, err)
	_, err = h.reviews.DoctorDecide(ctx, h.doctor, p.ID, domain.DecisionInput{Outcome: domain.EvaluationStatusRejected})
	require.NoError(t, err)

	stats, err := h.reviews.DoctorStats(ctx, h.doctor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.InDelta(t, 50.0, stats.ApprovalRate, 0.001)

	_, err = h.reviews.DoctorStats(ctx, h.company)
	assertKind(t, err, apperror.KindAuthorization)
}
