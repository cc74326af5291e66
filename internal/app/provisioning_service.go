package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/port"
	"github.com/beratbay/broadcast-engage/pkg/tracing"
)

// ProvisioningService resolves and caches the companion app id exactly once.
// It runs as an advisory prerequisite of the send transition: whatever goes
// wrong here is logged and the send proceeds.
type ProvisioningService struct {
	enabled    bool
	externalID string
	settings   port.SettingsStore
	catalog    port.AppCatalog
	logger     *zap.Logger
}

func NewProvisioningService(
	enabled bool,
	externalID string,
	settings port.SettingsStore,
	catalog port.AppCatalog,
	logger *zap.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		enabled:    enabled,
		externalID: externalID,
		settings:   settings,
		catalog:    catalog,
		logger:     logger,
	}
}

func (s *ProvisioningService) EnsureCompanionAppID(ctx context.Context) {
	if !s.enabled {
		return
	}

	ctx, span := tracing.Tracer().Start(ctx, "provisioning.ensure_companion_app")
	defer span.End()

	cached, err := s.settings.CompanionAppID(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("companion app settings read failed", zap.Error(err))
		return
	}
	if cached != "" {
		return
	}

	appID, err := s.catalog.ResolveAppID(ctx, s.externalID)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("companion app catalog lookup failed",
			zap.String("external_id", s.externalID),
			zap.Error(err),
		)
		return
	}
	if appID == "" {
		s.logger.Info("companion app not present in catalog",
			zap.String("external_id", s.externalID),
		)
		return
	}

	if err := s.settings.SetCompanionAppID(ctx, appID); err != nil {
		tracing.RecordError(span, err)
		s.logger.Warn("companion app settings write failed", zap.Error(err))
		return
	}

	s.logger.Info("companion app id provisioned", zap.String("app_id", appID))
}
