// Package notify turns committed workflow transitions into outbound side
// effects: reviewer emails with share links, and realtime pushes when the
// hub is enabled. Delivery is best-effort; a failed email is logged and
// never touches workflow state.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/auth"
	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type emailSender interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, html string) error
}

type linkMinter interface {
	Mint(link auth.ShareLink) (string, error)
}

type activityRecorder interface {
	Record(ctx context.Context, act domain.Activity)
}

// publisher pushes events to connected browsers. Optional: the workflow is
// complete without it.
type publisher interface {
	Publish(requestID uuid.UUID, event string, payload any)
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher consumes transition events and fans them out to email and the
// realtime channel.
type Dispatcher struct {
	log      *slog.Logger
	email    emailSender
	links    linkMinter
	activity activityRecorder
	pub      publisher
	cfg      config.ApprovalConfig
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(
	logger *slog.Logger,
	email emailSender,
	links linkMinter,
	activity activityRecorder,
	cfg config.ApprovalConfig,
) *Dispatcher {
	return &Dispatcher{
		log:      logger.With("service", "notify"),
		email:    email,
		links:    links,
		activity: activity,
		cfg:      cfg,
	}
}

// SetPublisher injects the optional realtime publisher.
func (d *Dispatcher) SetPublisher(p publisher) {
	d.pub = p
}

// Dispatch fans one event out. It never returns an error: delivery problems
// are logged as warnings and the event is otherwise dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.TransitionEvent) {
	d.publish(ev)

	switch ev.Type {
	case domain.EventRequestInitiated, domain.EventTierAdvanced, domain.EventRequestResubmitted:
		d.emailReviewers(ctx, ev)
	case domain.EventRequestHalted:
		d.emailInitiator(ctx, ev)
	case domain.EventApprovalComplete:
		d.emailInitiator(ctx, ev)
	default:
		d.log.WarnContext(ctx, "unknown transition event", slog.String("type", string(ev.Type)))
	}
}

func (d *Dispatcher) publish(ev domain.TransitionEvent) {
	if d.pub == nil {
		return
	}
	d.pub.Publish(ev.Request.ID, string(ev.Type), map[string]any{
		"request_id":   ev.Request.ID.String(),
		"status":       ev.Request.Status.String(),
		"current_tier": int(ev.Request.CurrentTier),
		"actor":        ev.ActorEmail,
	})
}

// emailReviewers sends each recipient a personal share link into the review.
func (d *Dispatcher) emailReviewers(ctx context.Context, ev domain.TransitionEvent) {
	if !d.email.Enabled() {
		return
	}

	subject := reviewSubject(ev)
	for _, p := range ev.Recipients {
		token, err := d.links.Mint(auth.ShareLink{
			RequestID:     ev.Request.ID,
			ParticipantID: p.ID,
			Email:         p.Email,
		})
		if err != nil {
			d.log.WarnContext(ctx, "mint share link failed",
				slog.String("request_id", ev.Request.ID.String()),
				slog.String("participant", p.Email),
				slog.String("error", err.Error()),
			)
			continue
		}

		link := fmt.Sprintf("%s/review/%s?token=%s", strings.TrimRight(d.cfg.BaseURL, "/"), ev.Request.ID, token)
		html := reviewBody(ev, p, link)

		if err := d.email.Send(ctx, p.Email, subject, html); err != nil {
			d.log.WarnContext(ctx, "notification email failed",
				slog.String("request_id", ev.Request.ID.String()),
				slog.String("to", p.Email),
				slog.String("error", err.Error()),
			)
			continue
		}

		d.activity.Record(ctx, domain.Activity{
			RequestID: ev.Request.ID,
			Type:      domain.ActivityEmailSent,
			UserEmail: p.Email,
			UserName:  p.Name,
			Metadata: map[string]any{
				"event": string(ev.Type),
				"tier":  int(p.Tier),
			},
		})
	}
}

// emailInitiator tells the owner the request halted or completed.
func (d *Dispatcher) emailInitiator(ctx context.Context, ev domain.TransitionEvent) {
	if !d.email.Enabled() || ev.Request.InitiatedBy == "" {
		return
	}

	var subject, html string
	switch ev.Type {
	case domain.EventApprovalComplete:
		subject = fmt.Sprintf("Approved: %s", ev.Creative.Name)
		html = fmt.Sprintf("<p>%s cleared all review tiers and is fully approved.</p>", ev.Creative.Name)
	default:
		subject = fmt.Sprintf("Changes requested: %s", ev.Creative.Name)
		html = fmt.Sprintf("<p>%s was halted in review by %s. Open the request to see the feedback and resubmit.</p>",
			ev.Creative.Name, ev.ActorName)
	}

	if err := d.email.Send(ctx, ev.Request.InitiatedBy, subject, html); err != nil {
		d.log.WarnContext(ctx, "notification email failed",
			slog.String("request_id", ev.Request.ID.String()),
			slog.String("to", ev.Request.InitiatedBy),
			slog.String("error", err.Error()),
		)
		return
	}

	d.activity.Record(ctx, domain.Activity{
		RequestID: ev.Request.ID,
		Type:      domain.ActivityEmailSent,
		UserEmail: ev.Request.InitiatedBy,
		Metadata:  map[string]any{"event": string(ev.Type)},
	})
}

func reviewSubject(ev domain.TransitionEvent) string {
	switch ev.Type {
	case domain.EventRequestResubmitted:
		return fmt.Sprintf("Re-review requested: %s", ev.Creative.Name)
	default:
		return fmt.Sprintf("Review requested: %s", ev.Creative.Name)
	}
}

func reviewBody(ev domain.TransitionEvent, p domain.Participant, link string) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>%s is waiting for your review as %s.</p><p><a href=%q>Open the review</a></p>",
		p.Name, ev.Creative.Name, p.Tier.Name(), link,
	)
}
