package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/beratbay/broadcast-engage/internal/domain"
)

type BroadcastRepository interface {
	// MoveDraftToSent relocates a draft into the sent partition under a fresh
	// identity within one transaction. Returns domain.ErrDraftNotFound when no
	// draft with the given id exists.
	MoveDraftToSent(ctx context.Context, draftID uuid.UUID) (uuid.UUID, error)
	GetSent(ctx context.Context, id uuid.UUID) (*domain.Broadcast, error)
	ListSent(ctx context.Context) ([]*domain.Broadcast, error)
	ListSentByChannel(ctx context.Context, channelID string) ([]*domain.Broadcast, error)
	GetButtonClicks(ctx context.Context, id uuid.UUID) (domain.ButtonClicks, error)
	SaveButtonClicks(ctx context.Context, id uuid.UUID, clicks domain.ButtonClicks) error
	// IncrementReads bumps the reads counter by one with a storage-side atomic
	// increment, not a read-modify-write.
	IncrementReads(ctx context.Context, id uuid.UUID) error
}

type DeliveryRepository interface {
	// EnsureTable idempotently creates the per-recipient delivery table.
	EnsureTable(ctx context.Context) error
	Get(ctx context.Context, broadcastID uuid.UUID, recipientKey string) (*domain.RecipientDelivery, error)
	// MarkRead flips the read flag with a conditional update and reports
	// whether this call performed the false->true transition. A missing row
	// reports false without an error.
	MarkRead(ctx context.Context, broadcastID uuid.UUID, recipientKey string) (bool, error)
	SaveButtonClicks(ctx context.Context, broadcastID uuid.UUID, recipientKey string, clicks domain.RecipientButtonClicks) error
}

type SettingsStore interface {
	CompanionAppID(ctx context.Context) (string, error)
	SetCompanionAppID(ctx context.Context, appID string) error
}
