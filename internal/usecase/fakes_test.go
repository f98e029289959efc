package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore backs every fake repository. memTx snapshots it so a failed
// transaction leaves no trace, like the real store. Row locks taken through
// the ForUpdate/ForShare methods are held until the transaction ends.
type memStore struct {
	mu         sync.Mutex
	rowsMu     sync.Mutex
	rows       map[uuid.UUID]*sync.RWMutex
	postings   map[uuid.UUID]domain.Posting
	evals      []domain.MedicalEvaluation
	seq        int64
	apps       map[uuid.UUID]domain.Application
	convs      map[uuid.UUID]domain.Conversation
	messages   []domain.Message
	categories []domain.DisabilityCategory
	resources  []domain.AccessibilityResource
}

func newMemStore() *memStore {
	return &memStore{
		rows:     map[uuid.UUID]*sync.RWMutex{},
		postings: map[uuid.UUID]domain.Posting{},
		apps:     map[uuid.UUID]domain.Application{},
		convs:    map[uuid.UUID]domain.Conversation{},
		categories: []domain.DisabilityCategory{
			{ID: 1, Name: "Física"},
			{ID: 2, Name: "Visual"},
			{ID: 3, Name: "Auditiva"},
		},
		resources: []domain.AccessibilityResource{
			{ID: 10, Name: "Rampa"},
			{ID: 11, Name: "Intérprete de Libras"},
		},
	}
}

type memSnapshot struct {
	postings map[uuid.UUID]domain.Posting
	evals    []domain.MedicalEvaluation
	seq      int64
	apps     map[uuid.UUID]domain.Application
	convs    map[uuid.UUID]domain.Conversation
	messages []domain.Message
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		postings: make(map[uuid.UUID]domain.Posting, len(s.postings)),
		evals:    append([]domain.MedicalEvaluation(nil), s.evals...),
		seq:      s.seq,
		apps:     make(map[uuid.UUID]domain.Application, len(s.apps)),
		convs:    make(map[uuid.UUID]domain.Conversation, len(s.convs)),
		messages: append([]domain.Message(nil), s.messages...),
	}
	for k, v := range s.postings {
		snap.postings[k] = v
	}
	for k, v := range s.apps {
		snap.apps[k] = v
	}
	for k, v := range s.convs {
		snap.convs[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings = snap.postings
	s.evals = snap.evals
	s.seq = snap.seq
	s.apps = snap.apps
	s.convs = snap.convs
	s.messages = snap.messages
}

type memTx struct{ s *memStore }

type memTxState struct {
	snap   memSnapshot
	locked bool
	held   map[uuid.UUID]bool
	unlock []func()
}

type memTxKey struct{}

func (t memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &memTxState{snap: t.s.snapshot(), held: map[uuid.UUID]bool{}}
	defer func() {
		for _, unlock := range st.unlock {
			unlock()
		}
	}()
	if err := fn(context.WithValue(ctx, memTxKey{}, st)); err != nil {
		t.s.restore(st.snap)
		return err
	}
	return nil
}

// lockRow blocks until the row lock is granted. Outside a transaction it is
// a no-op. Every workflow transaction locks before it writes, so the
// rollback snapshot is retaken once the first lock is held.
func (s *memStore) lockRow(ctx context.Context, id uuid.UUID, exclusive bool) {
	st, ok := ctx.Value(memTxKey{}).(*memTxState)
	if !ok || st.held[id] {
		return
	}
	s.rowsMu.Lock()
	l, ok := s.rows[id]
	if !ok {
		l = &sync.RWMutex{}
		s.rows[id] = l
	}
	s.rowsMu.Unlock()

	if exclusive {
		l.Lock()
		st.unlock = append(st.unlock, l.Unlock)
	} else {
		l.RLock()
		st.unlock = append(st.unlock, l.RUnlock)
	}
	st.held[id] = true
	if !st.locked {
		st.locked = true
		st.snap = s.snapshot()
	}
}

// postings

type memPostings struct{ s *memStore }

func (r memPostings) Create(_ context.Context, p *domain.Posting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.postings[p.ID] = *p
	return nil
}

func (r memPostings) GetByID(_ context.Context, id uuid.UUID) (*domain.Posting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.postings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memPostings) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Posting, error) {
	r.s.lockRow(ctx, id, true)
	return r.GetByID(ctx, id)
}

func (r memPostings) GetForShare(ctx context.Context, id uuid.UUID) (*domain.Posting, error) {
	r.s.lockRow(ctx, id, false)
	return r.GetByID(ctx, id)
}

func (r memPostings) Update(_ context.Context, p *domain.Posting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.postings[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.postings[p.ID] = *p
	return nil
}

func (r memPostings) UpdateStatus(ctx context.Context, p *domain.Posting) error {
	return r.Update(ctx, p)
}

func (r memPostings) IncrementViews(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.postings[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.ViewCount++
	r.s.postings[id] = p
	return p.ViewCount, nil
}

func (r memPostings) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.postings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.postings, id)
	kept := r.s.evals[:0]
	for _, e := range r.s.evals {
		if e.PostingID != id {
			kept = append(kept, e)
		}
	}
	r.s.evals = kept
	for appID, a := range r.s.apps {
		if a.PostingID == id {
			delete(r.s.apps, appID)
		}
	}
	return nil
}

func (r memPostings) filter(keep func(domain.Posting) bool, limit, offset int) ([]domain.Posting, int64) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Posting
	for _, p := range r.s.postings {
		if keep(p) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Posting{}, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (r memPostings) FetchByCompanyID(_ context.Context, companyID uuid.UUID, limit, offset int) ([]domain.Posting, int64, error) {
	items, total := r.filter(func(p domain.Posting) bool { return p.CompanyID == companyID }, limit, offset)
	return items, total, nil
}

func (r memPostings) FetchByStatus(_ context.Context, status domain.PostingStatus, limit, offset int) ([]domain.Posting, int64, error) {
	items, total := r.filter(func(p domain.Posting) bool { return p.Status == status }, limit, offset)
	return items, total, nil
}

func (r memPostings) FetchCompatible(ctx context.Context, categoryIDs []int64, limit, offset int) ([]domain.Posting, int64, error) {
	evals := memEvaluations(r)
	items, total := r.filter(func(p domain.Posting) bool {
		if p.Status != domain.PostingStatusOpen {
			return false
		}
		e, ok := evals.latestWhere(p.ID, func(e domain.MedicalEvaluation) bool {
			return e.Status == domain.EvaluationStatusApproved
		})
		return ok && len(domain.Intersect(categoryIDs, e.EligibleCategoryIDs)) > 0
	}, limit, offset)
	return items, total, nil
}

// evaluations

type memEvaluations struct{ s *memStore }

func (r memEvaluations) Create(_ context.Context, e *domain.MedicalEvaluation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.postings[e.PostingID]; !ok {
		return domain.ErrNotFound
	}
	r.s.seq++
	e.Sequence = r.s.seq
	r.s.evals = append(r.s.evals, *e)
	return nil
}

// latestWhere must be called without the lock held
func (r memEvaluations) latestWhere(postingID uuid.UUID, keep func(domain.MedicalEvaluation) bool) (*domain.MedicalEvaluation, bool) {
	var matching []domain.MedicalEvaluation
	for _, e := range r.s.evals {
		if e.PostingID == postingID && keep(e) {
			matching = append(matching, e)
		}
	}
	return domain.LatestEvaluation(matching)
}

func (r memEvaluations) Latest(_ context.Context, postingID uuid.UUID) (*domain.MedicalEvaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.latestWhere(postingID, func(domain.MedicalEvaluation) bool { return true })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r memEvaluations) LatestForUpdate(ctx context.Context, postingID uuid.UUID) (*domain.MedicalEvaluation, error) {
	e, err := r.Latest(ctx, postingID)
	if err != nil {
		return nil, err
	}
	r.s.lockRow(ctx, e.ID, true)
	return r.Latest(ctx, postingID)
}

func (r memEvaluations) LatestApproved(_ context.Context, postingID uuid.UUID) (*domain.MedicalEvaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.latestWhere(postingID, func(e domain.MedicalEvaluation) bool {
		return e.Status == domain.EvaluationStatusApproved
	})
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r memEvaluations) SaveDecision(_ context.Context, e *domain.MedicalEvaluation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, cur := range r.s.evals {
		if cur.ID == e.ID && cur.IsPending() {
			r.s.evals[i] = *e
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r memEvaluations) ListByPosting(_ context.Context, postingID uuid.UUID) ([]domain.MedicalEvaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.MedicalEvaluation
	for _, e := range r.s.evals {
		if e.PostingID == postingID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out, nil
}

func (r memEvaluations) DoctorStats(_ context.Context, doctorID uuid.UUID, since time.Time) (*domain.DoctorStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &domain.DoctorStats{Since: since}
	for _, e := range r.s.evals {
		if e.DoctorID == nil || *e.DoctorID != doctorID || e.DecidedAt == nil || e.DecidedAt.Before(since) {
			continue
		}
		stats.Total++
		switch e.Status {
		case domain.EvaluationStatusApproved:
			stats.Approved++
		case domain.EvaluationStatusRejected:
			stats.Rejected++
		case domain.EvaluationStatusAdjustmentsNeeded:
			stats.AdjustmentsNeeded++
		}
	}
	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.Approved) * 100 / float64(stats.Total)
	}
	return stats, nil
}

// applications

type memApplications struct{ s *memStore }

func (r memApplications) Create(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.postings[app.PostingID]; !ok {
		return domain.ErrNotFound
	}
	for _, a := range r.s.apps {
		if a.PostingID == app.PostingID && a.CandidateID == app.CandidateID {
			return apperror.Conflict("You have already applied to this posting")
		}
	}
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now
	r.s.apps[app.ID] = *app
	return nil
}

func (r memApplications) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r memApplications) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	r.s.lockRow(ctx, id, true)
	return r.GetByID(ctx, id)
}

func (r memApplications) list(keep func(domain.Application) bool) []domain.Application {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Application{}
	for _, a := range r.s.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r memApplications) GetByPostingID(_ context.Context, postingID uuid.UUID) ([]domain.Application, error) {
	return r.list(func(a domain.Application) bool { return a.PostingID == postingID }), nil
}

func (r memApplications) GetByCandidateID(_ context.Context, candidateID uuid.UUID) ([]domain.Application, error) {
	return r.list(func(a domain.Application) bool { return a.CandidateID == candidateID }), nil
}

func (r memApplications) Update(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.apps[app.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.apps[app.ID] = *app
	return nil
}

// conversations

type memConversations struct{ s *memStore }

func (r memConversations) Create(_ context.Context, c *domain.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.apps[c.ApplicationID]; !ok {
		return domain.ErrNotFound
	}
	c.CreatedAt = time.Now().UTC()
	r.s.convs[c.ID] = *c
	return nil
}

func (r memConversations) GetByApplicationID(_ context.Context, applicationID uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.convs {
		if c.ApplicationID == applicationID {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memConversations) AddMessage(_ context.Context, m *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.convs[m.ConversationID]; !ok {
		return domain.ErrNotFound
	}
	r.s.messages = append(r.s.messages, *m)
	return nil
}

func (r memConversations) ListMessages(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func unread(m domain.Message, side domain.SenderRole) bool {
	if side == domain.SenderCompany {
		return !m.ReadByCompany
	}
	return !m.ReadByCandidate
}

func (r memConversations) MarkRead(_ context.Context, conversationID uuid.UUID, side domain.SenderRole) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i, m := range r.s.messages {
		if m.ConversationID != conversationID || !unread(m, side) {
			continue
		}
		if side == domain.SenderCompany {
			r.s.messages[i].ReadByCompany = true
		} else {
			r.s.messages[i].ReadByCandidate = true
		}
		n++
	}
	return n, nil
}

func (r memConversations) CountUnread(_ context.Context, conversationID uuid.UUID, side domain.SenderRole) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID && unread(m, side) {
			n++
		}
	}
	return n, nil
}

// categories

type memCategories struct{ s *memStore }

func (r memCategories) ListCategories(context.Context) ([]domain.DisabilityCategory, error) {
	return r.s.categories, nil
}

func (r memCategories) ListResources(context.Context) ([]domain.AccessibilityResource, error) {
	return r.s.resources, nil
}

func (r memCategories) GetCategoriesByIDs(_ context.Context, ids []int64) ([]domain.DisabilityCategory, error) {
	var out []domain.DisabilityCategory
	for _, c := range r.s.categories {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r memCategories) GetResourcesByIDs(_ context.Context, ids []int64) ([]domain.AccessibilityResource, error) {
	var out []domain.AccessibilityResource
	for _, res := range r.s.resources {
		for _, id := range ids {
			if res.ID == id {
				out = append(out, res)
			}
		}
	}
	return out, nil
}

// MockNotifier records delivered events.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockNotifier) types() []domain.EventType {
	var out []domain.EventType
	for _, call := range m.Calls {
		out = append(out, call.Arguments.Get(1).(domain.Event).Type)
	}
	return out
}
