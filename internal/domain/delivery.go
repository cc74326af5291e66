package domain

import (
	"time"

	"github.com/google/uuid"
)

// EngagementKind tags a live engagement event.
type EngagementKind string

const (
	EngagementRead  EngagementKind = "read"
	EngagementClick EngagementKind = "click"
)

// RecipientDelivery is one row per (broadcast, recipient) pair. The rows are
// created by the external delivery workers; this service only flips the read
// flag and maintains the per-recipient click counters.
type RecipientDelivery struct {
	BroadcastID  uuid.UUID
	RecipientKey string
	Read         bool
	ReadAt       *time.Time
	ButtonClicks RecipientButtonClicks
	CreatedAt    time.Time
}

// MarkRead flips the read flag false->true and reports whether this call was
// the transition. A repeated read is a no-op, not an error.
func (d *RecipientDelivery) MarkRead() bool {
	if d.Read {
		return false
	}
	now := time.Now().UTC()
	d.Read = true
	d.ReadAt = &now
	return true
}
