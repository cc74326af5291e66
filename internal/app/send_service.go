package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/domain"
	"github.com/beratbay/broadcast-engage/internal/port"
	"github.com/beratbay/broadcast-engage/pkg/tracing"
)

// SendService turns a draft broadcast into a sent one and starts the
// asynchronous fan-out. Delivery itself happens in external workers; this
// service only publishes the two work items that drive them.
type SendService struct {
	broadcasts   port.BroadcastRepository
	deliveries   port.DeliveryRepository
	queue        port.QueuePublisher
	provisioning *ProvisioningService
	forceDelay   time.Duration
	logger       *zap.Logger
}

func NewSendService(
	broadcasts port.BroadcastRepository,
	deliveries port.DeliveryRepository,
	queue port.QueuePublisher,
	provisioning *ProvisioningService,
	forceDelay time.Duration,
	logger *zap.Logger,
) *SendService {
	return &SendService{
		broadcasts:   broadcasts,
		deliveries:   deliveries,
		queue:        queue,
		provisioning: provisioning,
		forceDelay:   forceDelay,
		logger:       logger,
	}
}

// CreateSentBroadcast relocates the draft into the sent partition under a new
// identity, ensures the recipient delivery table exists, then publishes one
// prepare-to-send work item and one delayed force-complete work item.
//
// The delayed message is the completion safety net: workers mark a broadcast
// complete once every expected recipient outcome arrives, and the deadline
// message terminates the "in progress" state even when some outcomes never do.
// Duplicate calls publish duplicate work items; deduplication belongs to the
// downstream workers.
func (s *SendService) CreateSentBroadcast(ctx context.Context, draftID uuid.UUID) (uuid.UUID, error) {
	ctx, span := tracing.Tracer().Start(ctx, "broadcast.create_sent")
	defer span.End()

	span.SetAttributes(attribute.String("broadcast.draft_id", draftID.String()))

	s.provisioning.EnsureCompanionAppID(ctx)

	sentID, err := s.broadcasts.MoveDraftToSent(ctx, draftID)
	if err != nil {
		tracing.RecordError(span, err)
		return uuid.Nil, err
	}

	span.SetAttributes(tracing.BroadcastAttrs(sentID.String(), string(domain.PartitionSent))...)

	if err := s.deliveries.EnsureTable(ctx); err != nil {
		tracing.RecordError(span, err)
		return uuid.Nil, err
	}

	if err := s.queue.PublishPrepareToSend(ctx, sentID.String()); err != nil {
		tracing.RecordError(span, err)
		return uuid.Nil, err
	}

	if err := s.queue.PublishForceComplete(ctx, sentID.String(), s.forceDelay); err != nil {
		tracing.RecordError(span, err)
		return uuid.Nil, err
	}

	s.logger.Info("broadcast dispatched",
		zap.String("draft_id", draftID.String()),
		zap.String("id", sentID.String()),
		zap.Duration("force_complete_delay", s.forceDelay),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)

	return sentID, nil
}
