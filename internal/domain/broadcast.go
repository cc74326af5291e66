package domain

import (
	"time"

	"github.com/google/uuid"
)

// Partition is the logical grouping a broadcast record lives in. A record
// starts in the draft partition and moves to the sent partition exactly once,
// receiving a new identity on the way. There is no reverse transition.
type Partition string

const (
	PartitionDraft Partition = "draft"
	PartitionSent  Partition = "sent"
)

type SendingStatus string

const (
	StatusSending SendingStatus = "sending"
	StatusSent    SendingStatus = "sent"
	StatusFailed  SendingStatus = "failed"
)

// Broadcast is one notification campaign. Delivery workers own the
// succeeded/failed/unknown/total counters; this service owns the partition
// transition, the reads counter and the button click collection.
type Broadcast struct {
	ID               uuid.UUID
	Partition        Partition
	Title            string
	ChannelID        *string
	AllUsers         bool
	TeamIDs          []string
	GroupIDs         []string
	Succeeded        int
	Failed           int
	Unknown          int
	Throttled        int // legacy counter, merged into Unknown for display
	Reads            int
	TotalCount       int
	ErrorMessage     *string
	WarningMessage   *string
	ButtonClicks     ButtonClicks
	CreatedAt        time.Time
	SendingStartedAt *time.Time
	SentAt           *time.Time
}

func NewDraftBroadcast(title string, allUsers bool, teamIDs, groupIDs []string) (*Broadcast, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}

	return &Broadcast{
		ID:        uuid.Must(uuid.NewV7()),
		Partition: PartitionDraft,
		Title:     title,
		AllUsers:  allUsers,
		TeamIDs:   teamIDs,
		GroupIDs:  groupIDs,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ToSent returns the sent-partition copy of a draft under a fresh identity.
// The draft itself is untouched; the caller removes it in the same transaction.
func (b *Broadcast) ToSent() *Broadcast {
	now := time.Now().UTC()
	sent := *b
	sent.ID = uuid.Must(uuid.NewV7())
	sent.Partition = PartitionSent
	sent.SendingStartedAt = &now
	return &sent
}

// Status derives the caller-visible sending state. A broadcast is "sending"
// until the workers stamp SentAt or every expected recipient outcome has been
// accounted for; an error message from the workers wins over both.
func (b *Broadcast) Status() SendingStatus {
	if b.ErrorMessage != nil && *b.ErrorMessage != "" {
		return StatusFailed
	}
	if b.SentAt != nil {
		return StatusSent
	}
	if b.TotalCount > 0 && b.Succeeded+b.Failed+b.Unknown >= b.TotalCount {
		return StatusSent
	}
	return StatusSending
}

// ReconcileUnknownCount merges the legacy throttled counter into the unknown
// counter for display. Records written before the counter split carry their
// not-delivered outcomes in throttled; the merge is additive and only applies
// when throttled is strictly positive. A non-positive result is reported as
// absent rather than zero.
func ReconcileUnknownCount(unknown, throttled int) *int {
	total := unknown
	if throttled > 0 {
		total += throttled
	}
	if total <= 0 {
		return nil
	}
	return &total
}
