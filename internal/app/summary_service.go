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

// BroadcastSummary is the list projection of a sent broadcast. Unknown carries
// the reconciled value and stays nil when there is nothing to show.
type BroadcastSummary struct {
	ID         uuid.UUID
	Title      string
	Status     domain.SendingStatus
	Succeeded  int
	Failed     int
	Unknown    *int
	Reads      int
	TotalCount int
	CreatedAt  time.Time
	SentAt     *time.Time
}

// BroadcastDetail adds resolved audience names, click counters and the
// download-eligibility flag for the requesting user.
type BroadcastDetail struct {
	BroadcastSummary
	AllUsers     bool
	TeamNames    []string
	GroupNames   []string
	ButtonClicks domain.ButtonClicks
	ErrorMessage *string
	WarningMsg   *string
	CanDownload  bool
}

// SummaryService serves the read-only projections over the sent partition.
// Name resolution and the export check go through external collaborators and
// degrade gracefully when those are unavailable.
type SummaryService struct {
	broadcasts port.BroadcastRepository
	groups     port.GroupDirectory
	teams      port.TeamDirectory
	exports    port.ExportStore
	logger     *zap.Logger
}

func NewSummaryService(
	broadcasts port.BroadcastRepository,
	groups port.GroupDirectory,
	teams port.TeamDirectory,
	exports port.ExportStore,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		broadcasts: broadcasts,
		groups:     groups,
		teams:      teams,
		exports:    exports,
		logger:     logger,
	}
}

func (s *SummaryService) ListSummaries(ctx context.Context) ([]BroadcastSummary, error) {
	broadcasts, err := s.broadcasts.ListSent(ctx)
	if err != nil {
		return nil, err
	}
	return toSummaries(broadcasts), nil
}

func (s *SummaryService) ListSummariesByChannel(ctx context.Context, channelID string) ([]BroadcastSummary, error) {
	broadcasts, err := s.broadcasts.ListSentByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return toSummaries(broadcasts), nil
}

func (s *SummaryService) GetDetail(ctx context.Context, id uuid.UUID, userID string) (*BroadcastDetail, error) {
	ctx, span := tracing.Tracer().Start(ctx, "broadcast.get_detail")
	defer span.End()
	span.SetAttributes(attribute.String("broadcast.id", id.String()))

	b, err := s.broadcasts.GetSent(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	detail := &BroadcastDetail{
		BroadcastSummary: toSummary(b),
		AllUsers:         b.AllUsers,
		ButtonClicks:     b.ButtonClicks,
		ErrorMessage:     b.ErrorMessage,
		WarningMsg:       b.WarningMessage,
	}

	if len(b.TeamIDs) > 0 {
		names, err := s.teams.TeamNames(ctx, b.TeamIDs)
		if err != nil {
			s.logger.Warn("team name resolution failed",
				zap.String("broadcast_id", id.String()),
				zap.Error(err),
			)
			detail.TeamNames = b.TeamIDs
		} else {
			detail.TeamNames = names
		}
	}

	for _, groupID := range b.GroupIDs {
		name, err := s.groups.GroupName(ctx, groupID)
		if err != nil {
			s.logger.Warn("group name resolution failed",
				zap.String("group_id", groupID),
				zap.Error(err),
			)
			name = groupID
		}
		detail.GroupNames = append(detail.GroupNames, name)
	}

	if userID != "" {
		canDownload, err := s.exports.HasExport(ctx, userID, id.String())
		if err != nil {
			s.logger.Warn("export check failed",
				zap.String("broadcast_id", id.String()),
				zap.Error(err),
			)
		} else {
			detail.CanDownload = canDownload
		}
	}

	return detail, nil
}

func toSummaries(broadcasts []*domain.Broadcast) []BroadcastSummary {
	summaries := make([]BroadcastSummary, len(broadcasts))
	for i, b := range broadcasts {
		summaries[i] = toSummary(b)
	}
	return summaries
}

func toSummary(b *domain.Broadcast) BroadcastSummary {
	return BroadcastSummary{
		ID:         b.ID,
		Title:      b.Title,
		Status:     b.Status(),
		Succeeded:  b.Succeeded,
		Failed:     b.Failed,
		Unknown:    domain.ReconcileUnknownCount(b.Unknown, b.Throttled),
		Reads:      b.Reads,
		TotalCount: b.TotalCount,
		CreatedAt:  b.CreatedAt,
		SentAt:     b.SentAt,
	}
}
