package lockmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// AcquireInput holds the parameters for taking an element lock.
type AcquireInput struct {
	RequestID   uuid.UUID
	ElementPath string
	// TTL requests a lease length; zero uses the configured default and
	// anything above the configured maximum is clamped down.
	TTL time.Duration
}

// Validate checks all fields and collects all errors.
func (i AcquireInput) Validate() error {
	var errs []domain.FieldError
	if i.RequestID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "request_id", Message: "required"})
	}
	if strings.TrimSpace(i.ElementPath) == "" {
		errs = append(errs, domain.FieldError{Field: "element_path", Message: "required"})
	}
	if i.TTL < 0 {
		errs = append(errs, domain.FieldError{Field: "ttl", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Result reports the outcome of an acquire attempt. A conflict is data, not
// an error: Acquired is false and Lock carries the current holder so the UI
// can show who has the element.
type Result struct {
	Acquired bool
	Lock     *domain.ElementLock
}

// Acquire takes (or refreshes) the lock on one element. Re-acquiring an
// element already held by the same viewer renews the lease.
func (s *Service) Acquire(ctx context.Context, input AcquireInput) (*Result, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.requests.GetRequest(ctx, input.RequestID); err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	elementPath := strings.TrimSpace(input.ElementPath)
	ttl := s.clampTTL(input.TTL)

	// A lost acquire is reported with the current holder. When the holder
	// releases between the acquire and the holder read, the lock is free
	// again, so retry the acquire instead of surfacing a not-found error.
	for attempt := 0; ; attempt++ {
		now := time.Now().UTC()
		lock := domain.ElementLock{
			ID:          uuid.New(),
			RequestID:   input.RequestID,
			ElementPath: elementPath,
			HolderEmail: viewer.Email,
			HolderName:  viewer.Name,
			LockedAt:    now,
			TTL:         ttl,
		}

		won, err := s.locks.Acquire(ctx, lock, now)
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if won != nil {
			return &Result{Acquired: true, Lock: won}, nil
		}

		holder, err := s.locks.Get(ctx, input.RequestID, elementPath)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) && attempt == 0 {
				continue
			}
			return nil, fmt.Errorf("read lock holder: %w", err)
		}

		s.log.DebugContext(ctx, "lock conflict",
			slog.String("request_id", input.RequestID.String()),
			slog.String("element_path", elementPath),
			slog.String("holder", holder.HolderEmail),
		)

		return &Result{Acquired: false, Lock: holder}, nil
	}
}

// Extend renews the viewer's lease on an element. Returns false when the
// lease already lapsed or the element changed hands.
func (s *Service) Extend(ctx context.Context, requestID uuid.UUID, elementPath string, ttl time.Duration) (bool, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return false, domain.ErrUnauthorized
	}
	if requestID == uuid.Nil || strings.TrimSpace(elementPath) == "" {
		return false, domain.NewValidationError("element_path", "request_id and element_path are required")
	}

	ok, err := s.locks.Extend(ctx, requestID, strings.TrimSpace(elementPath), viewer.Email, s.clampTTL(ttl), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("extend lock: %w", err)
	}
	return ok, nil
}

// Release drops the viewer's lock on an element. Releasing an element the
// viewer does not hold returns false.
func (s *Service) Release(ctx context.Context, requestID uuid.UUID, elementPath string) (bool, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return false, domain.ErrUnauthorized
	}
	if requestID == uuid.Nil || strings.TrimSpace(elementPath) == "" {
		return false, domain.NewValidationError("element_path", "request_id and element_path are required")
	}

	ok, err := s.locks.Release(ctx, requestID, strings.TrimSpace(elementPath), viewer.Email)
	if err != nil {
		return false, fmt.Errorf("release lock: %w", err)
	}
	return ok, nil
}

// List returns the live locks of a request. Expired rows are filtered out
// here; they stay on disk until the next takeover or purge.
func (s *Service) List(ctx context.Context, requestID uuid.UUID) ([]domain.ElementLock, error) {
	if requestID == uuid.Nil {
		return nil, domain.NewValidationError("request_id", "required")
	}

	all, err := s.locks.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}

	now := time.Now().UTC()
	live := all[:0]
	for _, l := range all {
		if !l.ExpiredAt(now) {
			live = append(live, l)
		}
	}
	return live, nil
}

// PurgeExpired removes lapsed lock rows. Run from the cleanup command;
// correctness never depends on it.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.locks.PurgeExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired locks: %w", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "purged expired locks", slog.Int("count", n))
	}
	return n, nil
}
