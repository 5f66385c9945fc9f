// Package activity implements the approval activity trail repository using
// PostgreSQL. The table is append-only: there are no update or delete
// operations.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

// Repo provides activity log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Append inserts one activity record.
func (r *Repo) Append(ctx context.Context, act domain.Activity) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	metadata := []byte("{}")
	if act.Metadata != nil {
		var err error
		metadata, err = json.Marshal(act.Metadata)
		if err != nil {
			return fmt.Errorf("activity marshal metadata: %w", err)
		}
	}

	sql, args, err := postgres.Builder().
		Insert("approval_activity").
		Columns("id", "request_id", "event_type", "user_email", "user_name", "metadata", "created_at").
		Values(act.ID, act.RequestID, act.Type.String(), act.UserEmail, act.UserName, metadata, act.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "activity", act.ID)
	}

	return nil
}

// ListByRequest returns activity records for a request, newest first,
// limited to `limit` records (0 means no limit).
func (r *Repo) ListByRequest(ctx context.Context, requestID uuid.UUID, limit int) ([]domain.Activity, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Select("id, request_id, event_type, user_email, user_name, metadata, created_at").
		From("approval_activity").
		Where(squirrel.Eq{"request_id": requestID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list activity: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			act      domain.Activity
			typ      string
			metadata []byte
		)
		if err := rows.Scan(&act.ID, &act.RequestID, &typ, &act.UserEmail, &act.UserName, &metadata, &act.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		act.Type = domain.ActivityType(typ)

		if len(metadata) > 0 {
			meta := make(map[string]any)
			if err := json.Unmarshal(metadata, &meta); err != nil {
				return nil, fmt.Errorf("activity %s unmarshal metadata: %w", act.ID, err)
			}
			if len(meta) > 0 {
				act.Metadata = meta
			}
		}

		activities = append(activities, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return activities, nil
}
