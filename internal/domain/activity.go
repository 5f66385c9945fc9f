package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is one record in the append-only audit trail of an approval
// request. Activities are never updated or deleted.
type Activity struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	Type      ActivityType
	UserEmail string
	UserName  string
	Metadata  map[string]any // event-specific details, stored as JSONB
	CreatedAt time.Time
}
