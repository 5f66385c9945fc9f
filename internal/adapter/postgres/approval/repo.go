// Package approval implements the ApprovalRequest and Participant
// repositories using PostgreSQL. Decision processing relies on
// GetRequestForUpdate inside a transaction to serialize concurrent decisions
// for the same request.
package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

const (
	requestColumns = "id, creative_id, current_tier, status, initiated_by, initiated_at, expires_at, decided_at, updated_at"

	participantColumns = "id, request_id, tier, email, name, status, decided_at, created_at"

	revisionColumns = "id, request_id, participant_id, field_path, field_label, original_value, revised_value, created_at"
)

// Repo provides approval request persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new approval repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Request operations
// ---------------------------------------------------------------------------

// CreateRequest inserts a new approval request and returns the persisted row.
func (r *Repo) CreateRequest(ctx context.Context, req domain.ApprovalRequest) (domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("approval_requests").
		Columns("id", "creative_id", "current_tier", "status", "initiated_by", "initiated_at", "expires_at", "updated_at").
		Values(req.ID, req.CreativeID, int(req.CurrentTier), req.Status.String(), req.InitiatedBy, req.InitiatedAt, req.ExpiresAt, req.UpdatedAt).
		Suffix("RETURNING " + requestColumns).
		ToSql()
	if err != nil {
		return domain.ApprovalRequest{}, fmt.Errorf("build insert approval_request: %w", err)
	}

	row, err := scanRequest(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return domain.ApprovalRequest{}, postgres.MapError(err, "approval_request", req.ID)
	}

	return row, nil
}

// GetRequest returns an approval request by primary key.
func (r *Repo) GetRequest(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	return r.getRequest(ctx, id, false)
}

// GetRequestForUpdate returns an approval request locked with
// SELECT ... FOR UPDATE. Must be called inside a transaction (RunInTx);
// outside one the row lock is released immediately and provides nothing.
func (r *Repo) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	return r.getRequest(ctx, id, true)
}

func (r *Repo) getRequest(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Select(requestColumns).
		From("approval_requests").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select approval_request: %w", err)
	}

	req, err := scanRequest(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "approval_request", id)
	}

	return &req, nil
}

// GetActiveRequestByCreative returns the newest non-terminal approval request
// for a creative, or domain.ErrNotFound.
func (r *Repo) GetActiveRequestByCreative(ctx context.Context, creativeID uuid.UUID) (*domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(requestColumns).
		From("approval_requests").
		Where(squirrel.Eq{"creative_id": creativeID}).
		Where(squirrel.NotEq{"status": domain.RequestStatusApproved.String()}).
		OrderBy("initiated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select active approval_request: %w", err)
	}

	req, err := scanRequest(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "approval_request", creativeID)
	}

	return &req, nil
}

// UpdateRequest persists the mutable fields of a request (status, tier,
// decided_at) and bumps updated_at. Returns the updated row.
func (r *Repo) UpdateRequest(ctx context.Context, req domain.ApprovalRequest) (*domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("approval_requests").
		Set("current_tier", int(req.CurrentTier)).
		Set("status", req.Status.String()).
		Set("decided_at", req.DecidedAt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": req.ID}).
		Suffix("RETURNING " + requestColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update approval_request: %w", err)
	}

	updated, err := scanRequest(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "approval_request", req.ID)
	}

	return &updated, nil
}

// ---------------------------------------------------------------------------
// Participant operations
// ---------------------------------------------------------------------------

// CreateParticipants inserts the full participant roster of a request.
// Called once at initiation time, inside the same transaction as CreateRequest.
func (r *Repo) CreateParticipants(ctx context.Context, participants []domain.Participant) error {
	if len(participants) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Insert("approval_participants").
		Columns("id", "request_id", "tier", "email", "name", "status", "created_at")
	for _, p := range participants {
		b = b.Values(p.ID, p.RequestID, int(p.Tier), p.Email, p.Name, p.Status.String(), p.CreatedAt)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build insert approval_participants: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "approval_participant", participants[0].RequestID)
	}

	return nil
}

// GetParticipant returns a participant by primary key.
func (r *Repo) GetParticipant(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(participantColumns).
		From("approval_participants").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select approval_participant: %w", err)
	}

	p, err := scanParticipant(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "approval_participant", id)
	}

	return &p, nil
}

// ListParticipants returns all participants of a request ordered by tier,
// then insertion order.
func (r *Repo) ListParticipants(ctx context.Context, requestID uuid.UUID) ([]domain.Participant, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(participantColumns).
		From("approval_participants").
		Where(squirrel.Eq{"request_id": requestID}).
		OrderBy("tier ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list approval_participants: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list approval_participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval_participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list approval_participants: %w", err)
	}

	return participants, nil
}

// UpdateParticipantStatus records a terminal decision on a participant row.
// The WHERE clause guards against racing past a terminal status: if the row
// was already decided, zero rows match and domain.ErrAlreadyDecided is
// returned.
func (r *Repo) UpdateParticipantStatus(ctx context.Context, id uuid.UUID, status domain.ParticipantStatus, decidedAt time.Time) (*domain.Participant, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("approval_participants").
		Set("status", status.String()).
		Set("decided_at", decidedAt).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.ParticipantStatusPending.String(),
		}).
		Suffix("RETURNING " + participantColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update approval_participant: %w", err)
	}

	p, err := scanParticipant(q.QueryRow(ctx, sql, args...))
	if err != nil {
		// Distinguish "row missing" from "row already decided".
		mapped := postgres.MapError(err, "approval_participant", id)
		if existing, getErr := r.GetParticipant(ctx, id); getErr == nil && existing.Status.IsTerminal() {
			return nil, fmt.Errorf("approval_participant %s: %w", id, domain.ErrAlreadyDecided)
		}
		return nil, mapped
	}

	return &p, nil
}

// ResetTierParticipants puts every participant of one tier back to pending.
// Used by resubmit after a rejection halted the tier.
func (r *Repo) ResetTierParticipants(ctx context.Context, requestID uuid.UUID, tier domain.Tier) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("approval_participants").
		Set("status", domain.ParticipantStatusPending.String()).
		Set("decided_at", nil).
		Where(squirrel.Eq{
			"request_id": requestID,
			"tier":       int(tier),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build reset approval_participants: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "approval_participant", requestID)
	}

	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Revision operations
// ---------------------------------------------------------------------------

// UpsertRevision stores a suggested edit for one creative field. A later
// suggestion for the same (request, participant, field_path) replaces the
// pending one.
func (r *Repo) UpsertRevision(ctx context.Context, rev domain.ElementRevision) (domain.ElementRevision, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("element_revisions").
		Columns("id", "request_id", "participant_id", "field_path", "field_label", "original_value", "revised_value", "created_at").
		Values(rev.ID, rev.RequestID, rev.ParticipantID, rev.FieldPath, rev.FieldLabel, rev.OriginalValue, rev.RevisedValue, rev.CreatedAt).
		Suffix(`ON CONFLICT (request_id, participant_id, field_path) DO UPDATE
			SET field_label = EXCLUDED.field_label,
			    original_value = EXCLUDED.original_value,
			    revised_value = EXCLUDED.revised_value,
			    created_at = EXCLUDED.created_at`).
		Suffix("RETURNING " + revisionColumns).
		ToSql()
	if err != nil {
		return domain.ElementRevision{}, fmt.Errorf("build upsert element_revision: %w", err)
	}

	row, err := scanRevision(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return domain.ElementRevision{}, postgres.MapError(err, "element_revision", rev.ID)
	}

	return row, nil
}

// ListRevisions returns all suggested edits for a request, newest first.
func (r *Repo) ListRevisions(ctx context.Context, requestID uuid.UUID) ([]domain.ElementRevision, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(revisionColumns).
		From("element_revisions").
		Where(squirrel.Eq{"request_id": requestID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list element_revisions: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list element_revisions: %w", err)
	}
	defer rows.Close()

	var revisions []domain.ElementRevision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan element_revision: %w", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list element_revisions: %w", err)
	}

	return revisions, nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanRequest(row pgx.Row) (domain.ApprovalRequest, error) {
	var (
		req    domain.ApprovalRequest
		tier   int
		status string
	)
	err := row.Scan(&req.ID, &req.CreativeID, &tier, &status, &req.InitiatedBy,
		&req.InitiatedAt, &req.ExpiresAt, &req.DecidedAt, &req.UpdatedAt)
	if err != nil {
		return domain.ApprovalRequest{}, err
	}
	req.CurrentTier = domain.Tier(tier)
	req.Status = domain.RequestStatus(status)
	return req, nil
}

func scanParticipant(row pgx.Row) (domain.Participant, error) {
	var (
		p      domain.Participant
		tier   int
		status string
	)
	err := row.Scan(&p.ID, &p.RequestID, &tier, &p.Email, &p.Name, &status,
		&p.DecidedAt, &p.CreatedAt)
	if err != nil {
		return domain.Participant{}, err
	}
	p.Tier = domain.Tier(tier)
	p.Status = domain.ParticipantStatus(status)
	return p, nil
}

func scanRevision(row pgx.Row) (domain.ElementRevision, error) {
	var rev domain.ElementRevision
	err := row.Scan(&rev.ID, &rev.RequestID, &rev.ParticipantID, &rev.FieldPath,
		&rev.FieldLabel, &rev.OriginalValue, &rev.RevisedValue, &rev.CreatedAt)
	if err != nil {
		return domain.ElementRevision{}, err
	}
	return rev, nil
}
