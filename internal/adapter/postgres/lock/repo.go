// Package lock implements element lock persistence using PostgreSQL.
// Acquire and Extend are single atomic statements so that two concurrent
// reviewers cannot both win the same element; expiry is evaluated in SQL
// against locked_at + ttl_seconds, never by a background sweep.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

const lockColumns = "id, request_id, element_path, holder_email, holder_name, locked_at, ttl_seconds"

// acquireSQL takes the lock if the slot is free, expired, or already held by
// the same holder (idempotent re-acquire). Re-acquire refreshes the lease.
const acquireSQL = `
INSERT INTO element_locks (id, request_id, element_path, holder_email, holder_name, locked_at, ttl_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (request_id, element_path) DO UPDATE
SET holder_email = EXCLUDED.holder_email,
    holder_name  = EXCLUDED.holder_name,
    locked_at    = EXCLUDED.locked_at,
    ttl_seconds  = EXCLUDED.ttl_seconds
WHERE element_locks.holder_email = EXCLUDED.holder_email
   OR element_locks.locked_at + make_interval(secs => element_locks.ttl_seconds) <= EXCLUDED.locked_at
RETURNING ` + lockColumns

// extendSQL refreshes the lease only while it is still live and held by the
// same party. Zero rows affected means the caller lost the lock.
const extendSQL = `
UPDATE element_locks
SET locked_at = $1, ttl_seconds = $2
WHERE request_id = $3
  AND element_path = $4
  AND holder_email = $5
  AND locked_at + make_interval(secs => ttl_seconds) > $1`

const releaseSQL = `
DELETE FROM element_locks
WHERE request_id = $1 AND element_path = $2 AND holder_email = $3`

const getSQL = `
SELECT ` + lockColumns + `
FROM element_locks
WHERE request_id = $1 AND element_path = $2`

const listSQL = `
SELECT ` + lockColumns + `
FROM element_locks
WHERE request_id = $1
ORDER BY element_path ASC`

const purgeExpiredSQL = `
DELETE FROM element_locks
WHERE locked_at + make_interval(secs => ttl_seconds) <= now()`

// Repo provides element lock persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new element lock repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Acquire attempts to take the lock at the given instant. It returns the
// winning lock row on success, or (nil, nil) if a live lock is held by a
// different party; the caller reads the current holder with Get.
func (r *Repo) Acquire(ctx context.Context, l domain.ElementLock, now time.Time) (*domain.ElementLock, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, acquireSQL,
		l.ID, l.RequestID, l.ElementPath, l.HolderEmail, l.HolderName, now, int(l.TTL.Seconds()))

	won, err := scanLock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, postgres.MapError(err, "element_lock", l.RequestID)
	}

	return &won, nil
}

// Extend refreshes the lease. Returns false if the lock expired or changed
// holder since acquisition.
func (r *Repo) Extend(ctx context.Context, requestID uuid.UUID, elementPath, holderEmail string, ttl time.Duration, now time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, extendSQL, now, int(ttl.Seconds()), requestID, elementPath, holderEmail)
	if err != nil {
		return false, postgres.MapError(err, "element_lock", requestID)
	}

	return tag.RowsAffected() > 0, nil
}

// Release drops the lock if held by the given party. Returns false when the
// lock is absent or held by someone else.
func (r *Repo) Release(ctx context.Context, requestID uuid.UUID, elementPath, holderEmail string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, releaseSQL, requestID, elementPath, holderEmail)
	if err != nil {
		return false, postgres.MapError(err, "element_lock", requestID)
	}

	return tag.RowsAffected() > 0, nil
}

// Get returns the lock row for an element, expired or not.
// Returns domain.ErrNotFound when no row exists.
func (r *Repo) Get(ctx context.Context, requestID uuid.UUID, elementPath string) (*domain.ElementLock, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	l, err := scanLock(q.QueryRow(ctx, getSQL, requestID, elementPath))
	if err != nil {
		return nil, postgres.MapError(err, "element_lock", requestID)
	}

	return &l, nil
}

// ListByRequest returns all lock rows of a request, including expired ones;
// the lock manager filters lazily.
func (r *Repo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.ElementLock, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSQL, requestID)
	if err != nil {
		return nil, fmt.Errorf("list element_locks: %w", err)
	}
	defer rows.Close()

	var locks []domain.ElementLock
	for rows.Next() {
		l, err := scanLock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan element_lock: %w", err)
		}
		locks = append(locks, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list element_locks: %w", err)
	}

	return locks, nil
}

// PurgeExpired deletes rows whose lease has lapsed. Housekeeping only: expiry
// is checked on every access.
func (r *Repo) PurgeExpired(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, purgeExpiredSQL)
	if err != nil {
		return 0, fmt.Errorf("purge expired element_locks: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func scanLock(row pgx.Row) (domain.ElementLock, error) {
	var (
		l          domain.ElementLock
		ttlSeconds int
	)
	err := row.Scan(&l.ID, &l.RequestID, &l.ElementPath, &l.HolderEmail, &l.HolderName, &l.LockedAt, &ttlSeconds)
	if err != nil {
		return domain.ElementLock{}, err
	}
	l.TTL = time.Duration(ttlSeconds) * time.Second
	return l, nil
}
