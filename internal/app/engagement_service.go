package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/domain"
	"github.com/beratbay/broadcast-engage/internal/port"
	"github.com/beratbay/broadcast-engage/pkg/tracing"
)

// EngagementService applies read and click events to the broadcast rollup and
// the per-recipient record. Events arrive from unauthenticated tracking
// endpoints, so the outward-facing entry points swallow every failure: a
// broken counter must never degrade the recipient's redirect.
//
// The button click collections are maintained with a plain read-modify-write
// over the encoded column. Concurrent clicks on the same button can lose
// increments under last-writer-wins persistence; the reads counter, which has
// an idempotency contract, uses a storage-side atomic increment instead.
type EngagementService struct {
	broadcasts  port.BroadcastRepository
	deliveries  port.DeliveryRepository
	broadcaster port.EngagementBroadcaster
	logger      *zap.Logger
}

func NewEngagementService(
	broadcasts port.BroadcastRepository,
	deliveries port.DeliveryRepository,
	broadcaster port.EngagementBroadcaster,
	logger *zap.Logger,
) *EngagementService {
	return &EngagementService{
		broadcasts:  broadcasts,
		deliveries:  deliveries,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RecordRead marks the recipient's delivery row read and, only when this call
// performed the false->true transition, increments the broadcast reads counter
// by exactly one. Partial application (recipient updated, counter not) is
// accepted rather than rolled back.
func (s *EngagementService) RecordRead(ctx context.Context, broadcastID uuid.UUID, recipientKey string) {
	ctx, span := tracing.Tracer().Start(ctx, "engagement.record_read")
	defer span.End()
	span.SetAttributes(tracing.EngagementAttrs(broadcastID.String(), recipientKey, "")...)

	transitioned, err := s.deliveries.MarkRead(ctx, broadcastID, recipientKey)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("record read failed",
			zap.String("broadcast_id", broadcastID.String()),
			zap.String("recipient", recipientKey),
			zap.Error(err),
		)
		return
	}
	if !transitioned {
		return
	}

	if err := s.broadcasts.IncrementReads(ctx, broadcastID); err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("increment reads failed",
			zap.String("broadcast_id", broadcastID.String()),
			zap.Error(err),
		)
		return
	}

	s.broadcaster.BroadcastEngagement(broadcastID.String(), recipientKey, string(domain.EngagementRead), "")
}

// RecordClick is the single entry point behind the tracking redirect. The
// recipient-level write happens before the broadcast-level one; both are best
// effort and any failure is logged, never surfaced.
func (s *EngagementService) RecordClick(ctx context.Context, broadcastID uuid.UUID, recipientKey, button string) {
	ctx, span := tracing.Tracer().Start(ctx, "engagement.record_click")
	defer span.End()
	span.SetAttributes(tracing.EngagementAttrs(broadcastID.String(), recipientKey, button)...)

	if err := s.RecordRecipientClick(ctx, broadcastID, recipientKey, button); err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("record recipient click failed",
			zap.String("broadcast_id", broadcastID.String()),
			zap.String("recipient", recipientKey),
			zap.String("button", button),
			zap.Error(err),
		)
	}

	if err := s.RecordButtonClick(ctx, broadcastID, button); err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("record button click failed",
			zap.String("broadcast_id", broadcastID.String()),
			zap.String("button", button),
			zap.Error(err),
		)
		return
	}

	s.broadcaster.BroadcastEngagement(broadcastID.String(), recipientKey, string(domain.EngagementClick), button)
}

// RecordButtonClick increments the named counter in the broadcast-level
// collection, appending a fresh entry on first click.
func (s *EngagementService) RecordButtonClick(ctx context.Context, broadcastID uuid.UUID, button string) error {
	if button == "" {
		return domain.ErrMissingButton
	}

	clicks, err := s.broadcasts.GetButtonClicks(ctx, broadcastID)
	if err != nil {
		return err
	}

	clicks = clicks.Increment(button)
	return s.broadcasts.SaveButtonClicks(ctx, broadcastID, clicks)
}

// RecordRecipientClick increments the recipient-level counter and stamps the
// click time. A missing delivery row means the workers have not materialized
// it yet; that is nothing to update, not a failure.
func (s *EngagementService) RecordRecipientClick(ctx context.Context, broadcastID uuid.UUID, recipientKey, button string) error {
	if button == "" {
		return domain.ErrMissingButton
	}

	delivery, err := s.deliveries.Get(ctx, broadcastID, recipientKey)
	if errors.Is(err, domain.ErrRecipientNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	delivery.ButtonClicks = delivery.ButtonClicks.Increment(button, time.Now().UTC())
	return s.deliveries.SaveButtonClicks(ctx, broadcastID, recipientKey, delivery.ButtonClicks)
}
