package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/auth"
	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	mu      sync.Mutex
	enabled bool
	failTo  string
	sent    []sentMail
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo != "" && to == m.failTo {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *fakeMailer) byTo(to string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

type fakeMinter struct {
	fail bool
}

func (f *fakeMinter) Mint(link auth.ShareLink) (string, error) {
	if f.fail {
		return "", errors.New("mint failed")
	}
	return fmt.Sprintf("tok-%s", link.Email), nil
}

type fakeActivity struct {
	mu   sync.Mutex
	acts []domain.Activity
}

func (f *fakeActivity) Record(_ context.Context, act domain.Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acts = append(f.acts, act)
}

func (f *fakeActivity) count(typ domain.ActivityType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.acts {
		if a.Type == typ {
			n++
		}
	}
	return n
}

type published struct {
	RequestID uuid.UUID
	Event     string
	Payload   any
}

type fakeHub struct {
	mu     sync.Mutex
	events []published
}

func (h *fakeHub) Publish(requestID uuid.UUID, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, published{RequestID: requestID, Event: event, Payload: payload})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeMailer, *fakeActivity) {
	t.Helper()
	mailer := &fakeMailer{enabled: true}
	acts := &fakeActivity{}
	d := NewDispatcher(
		slog.Default(),
		mailer,
		&fakeMinter{},
		acts,
		config.ApprovalConfig{BaseURL: "https://app.example.com/"},
	)
	return d, mailer, acts
}

func sampleEvent(typ domain.TransitionEventType) domain.TransitionEvent {
	reqID := uuid.New()
	return domain.TransitionEvent{
		Type: typ,
		Request: domain.ApprovalRequest{
			ID:          reqID,
			Status:      domain.RequestStatusInReview,
			CurrentTier: domain.TierAccountExec,
			InitiatedBy: "owner@example.com",
		},
		Creative:   domain.Creative{Name: "Summer Sale 300x250"},
		ActorEmail: "alice@example.com",
		ActorName:  "Alice",
		Recipients: []domain.Participant{
			{ID: uuid.New(), RequestID: reqID, Email: "bob@example.com", Name: "Bob", Tier: domain.TierAccountExec},
			{ID: uuid.New(), RequestID: reqID, Email: "carol@example.com", Name: "Carol", Tier: domain.TierAccountExec},
		},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDispatch_TierAdvancedEmailsRecipients(t *testing.T) {
	d, mailer, acts := newTestDispatcher(t)

	ev := sampleEvent(domain.EventTierAdvanced)
	d.Dispatch(context.Background(), ev)

	if len(mailer.sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(mailer.sent))
	}
	mail := mailer.byTo("bob@example.com")
	if len(mail) != 1 {
		t.Fatalf("mails to bob = %d, want 1", len(mail))
	}
	if !strings.Contains(mail[0].Subject, "Summer Sale 300x250") {
		t.Errorf("subject %q does not name the creative", mail[0].Subject)
	}
	wantLink := fmt.Sprintf("https://app.example.com/review/%s?token=tok-bob@example.com", ev.Request.ID)
	if !strings.Contains(mail[0].HTML, wantLink) {
		t.Errorf("body %q missing share link %q", mail[0].HTML, wantLink)
	}
	if got := acts.count(domain.ActivityEmailSent); got != 2 {
		t.Errorf("EMAIL_SENT activities = %d, want 2", got)
	}
}

func TestDispatch_HaltedEmailsInitiator(t *testing.T) {
	d, mailer, acts := newTestDispatcher(t)

	d.Dispatch(context.Background(), sampleEvent(domain.EventRequestHalted))

	if len(mailer.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(mailer.sent))
	}
	if mailer.sent[0].To != "owner@example.com" {
		t.Errorf("to = %q, want owner", mailer.sent[0].To)
	}
	if !strings.Contains(mailer.sent[0].Subject, "Changes requested") {
		t.Errorf("subject = %q", mailer.sent[0].Subject)
	}
	if got := acts.count(domain.ActivityEmailSent); got != 1 {
		t.Errorf("EMAIL_SENT activities = %d, want 1", got)
	}
}

func TestDispatch_ApprovalCompleteEmailsInitiator(t *testing.T) {
	d, mailer, _ := newTestDispatcher(t)

	d.Dispatch(context.Background(), sampleEvent(domain.EventApprovalComplete))

	if len(mailer.sent) != 1 || mailer.sent[0].To != "owner@example.com" {
		t.Fatalf("sent = %+v, want one mail to owner", mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].Subject, "Approved") {
		t.Errorf("subject = %q", mailer.sent[0].Subject)
	}
}

func TestDispatch_SendFailureSkipsActivity(t *testing.T) {
	d, mailer, acts := newTestDispatcher(t)
	mailer.failTo = "bob@example.com"

	d.Dispatch(context.Background(), sampleEvent(domain.EventRequestInitiated))

	// Carol's mail still goes out, only her send is recorded.
	if len(mailer.sent) != 1 || mailer.sent[0].To != "carol@example.com" {
		t.Fatalf("sent = %+v, want only carol", mailer.sent)
	}
	if got := acts.count(domain.ActivityEmailSent); got != 1 {
		t.Errorf("EMAIL_SENT activities = %d, want 1", got)
	}
}

func TestDispatch_MintFailureSkipsRecipient(t *testing.T) {
	mailer := &fakeMailer{enabled: true}
	acts := &fakeActivity{}
	d := NewDispatcher(
		slog.Default(),
		mailer,
		&fakeMinter{fail: true},
		acts,
		config.ApprovalConfig{BaseURL: "https://app.example.com"},
	)

	d.Dispatch(context.Background(), sampleEvent(domain.EventRequestInitiated))

	if len(mailer.sent) != 0 {
		t.Errorf("sent = %d, want 0 when minting fails", len(mailer.sent))
	}
	if got := acts.count(domain.ActivityEmailSent); got != 0 {
		t.Errorf("EMAIL_SENT activities = %d, want 0", got)
	}
}

func TestDispatch_DisabledMailerStillPublishes(t *testing.T) {
	d, mailer, _ := newTestDispatcher(t)
	mailer.enabled = false
	hub := &fakeHub{}
	d.SetPublisher(hub)

	ev := sampleEvent(domain.EventTierAdvanced)
	d.Dispatch(context.Background(), ev)

	if len(mailer.sent) != 0 {
		t.Errorf("sent = %d, want 0 with email disabled", len(mailer.sent))
	}
	if len(hub.events) != 1 {
		t.Fatalf("published = %d, want 1", len(hub.events))
	}
	if hub.events[0].RequestID != ev.Request.ID || hub.events[0].Event != string(domain.EventTierAdvanced) {
		t.Errorf("published = %+v", hub.events[0])
	}
}

func TestDispatch_ResubmittedUsesReReviewSubject(t *testing.T) {
	d, mailer, _ := newTestDispatcher(t)

	d.Dispatch(context.Background(), sampleEvent(domain.EventRequestResubmitted))

	if len(mailer.sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].Subject, "Re-review requested") {
		t.Errorf("subject = %q", mailer.sent[0].Subject)
	}
}
