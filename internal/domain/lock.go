package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLockTTL is used when a caller does not specify a lease duration.
const DefaultLockTTL = 120 * time.Second

// ElementLock is a short-lived advisory lease on one creative field, taken
// while a reviewer edits it. It prevents accidental concurrent edits in the
// UI only; it is not a transactional guarantee and a determined client can
// bypass it. Expiry is lazy: holders are evaluated against LockedAt+TTL on
// the next acquire/extend/read, no background sweep runs.
type ElementLock struct {
	ID          uuid.UUID
	RequestID   uuid.UUID
	ElementPath string
	HolderEmail string
	HolderName  string
	LockedAt    time.Time
	TTL         time.Duration
}

// ExpiresAt returns the instant the lease lapses unless extended.
func (l ElementLock) ExpiresAt() time.Time {
	return l.LockedAt.Add(l.TTL)
}

// ExpiredAt reports whether the lease has lapsed at the given instant.
func (l ElementLock) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt())
}

// HeldBy reports whether the lease belongs to the given holder email.
func (l ElementLock) HeldBy(email string) bool {
	return l.HolderEmail == email
}
