package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

// fakeStore is an in-memory stand-in for the postgres repositories. It backs
// both approvalRepo and creativeRepo so workflow tests can run the real
// state machine end to end without a database.
type fakeStore struct {
	mu           sync.Mutex
	requests     map[uuid.UUID]domain.ApprovalRequest
	participants map[uuid.UUID]domain.Participant
	revisions    map[string]domain.ElementRevision
	creatives    map[uuid.UUID]domain.Creative
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:     make(map[uuid.UUID]domain.ApprovalRequest),
		participants: make(map[uuid.UUID]domain.Participant),
		revisions:    make(map[string]domain.ElementRevision),
		creatives:    make(map[uuid.UUID]domain.Creative),
	}
}

// fakeTx serializes whole transactions behind one mutex, mimicking the
// SELECT ... FOR UPDATE row lock. Concurrent SubmitDecision calls therefore
// interleave the same way they would against the real database.
type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// --- approvalRepo ---

func (f *fakeStore) CreateRequest(_ context.Context, req domain.ApprovalRequest) (domain.ApprovalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeStore) GetRequest(_ context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("approval_request %s: %w", id, domain.ErrNotFound)
	}
	return &req, nil
}

func (f *fakeStore) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	return f.GetRequest(ctx, id)
}

func (f *fakeStore) GetActiveRequestByCreative(_ context.Context, creativeID uuid.UUID) (*domain.ApprovalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if req.CreativeID == creativeID && !req.Status.IsTerminal() {
			r := req
			return &r, nil
		}
	}
	return nil, fmt.Errorf("active request for creative %s: %w", creativeID, domain.ErrNotFound)
}

func (f *fakeStore) UpdateRequest(_ context.Context, req domain.ApprovalRequest) (*domain.ApprovalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[req.ID]; !ok {
		return nil, fmt.Errorf("approval_request %s: %w", req.ID, domain.ErrNotFound)
	}
	f.requests[req.ID] = req
	return &req, nil
}

func (f *fakeStore) CreateParticipants(_ context.Context, participants []domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range participants {
		f.participants[p.ID] = p
	}
	return nil
}

func (f *fakeStore) GetParticipant(_ context.Context, id uuid.UUID) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeStore) ListParticipants(_ context.Context, requestID uuid.UUID) ([]domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Participant
	for _, p := range f.participants {
		if p.RequestID == requestID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateParticipantStatus(_ context.Context, id uuid.UUID, status domain.ParticipantStatus, decidedAt time.Time) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, domain.ErrNotFound)
	}
	if p.Status != domain.ParticipantStatusPending {
		return nil, fmt.Errorf("participant %s: %w", id, domain.ErrAlreadyDecided)
	}
	p.Status = status
	p.DecidedAt = &decidedAt
	f.participants[id] = p
	return &p, nil
}

func (f *fakeStore) ResetTierParticipants(_ context.Context, requestID uuid.UUID, tier domain.Tier) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, p := range f.participants {
		if p.RequestID == requestID && p.Tier == tier {
			p.Status = domain.ParticipantStatusPending
			p.DecidedAt = nil
			f.participants[id] = p
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UpsertRevision(_ context.Context, rev domain.ElementRevision) (domain.ElementRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := rev.RequestID.String() + "|" + rev.ParticipantID.String() + "|" + rev.FieldPath
	f.revisions[key] = rev
	return rev, nil
}

func (f *fakeStore) ListRevisions(_ context.Context, requestID uuid.UUID) ([]domain.ElementRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ElementRevision
	for _, rev := range f.revisions {
		if rev.RequestID == requestID {
			out = append(out, rev)
		}
	}
	return out, nil
}

// --- creativeRepo ---

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Creative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creatives[id]
	if !ok {
		return nil, fmt.Errorf("creative %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id uuid.UUID, status domain.CreativeStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creatives[id]
	if !ok {
		return fmt.Errorf("creative %s: %w", id, domain.ErrNotFound)
	}
	c.Status = status
	f.creatives[id] = c
	return nil
}

func (f *fakeStore) addCreative(c domain.Creative) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creatives[c.ID] = c
}

// --- side-effect collectors ---

type activitySink struct {
	mu   sync.Mutex
	acts []domain.Activity
}

func (a *activitySink) Record(_ context.Context, act domain.Activity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acts = append(a.acts, act)
}

func (a *activitySink) byType(typ domain.ActivityType) []domain.Activity {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Activity
	for _, act := range a.acts {
		if act.Type == typ {
			out = append(out, act)
		}
	}
	return out
}

type eventSink struct {
	mu     sync.Mutex
	events []domain.TransitionEvent
}

func (e *eventSink) Dispatch(_ context.Context, ev domain.TransitionEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventSink) byType(typ domain.TransitionEventType) []domain.TransitionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []domain.TransitionEvent
	for _, ev := range e.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
