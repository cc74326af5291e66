package port

import "context"

type GroupDirectory interface {
	GroupName(ctx context.Context, groupID string) (string, error)
}

type TeamDirectory interface {
	TeamNames(ctx context.Context, teamIDs []string) ([]string, error)
}

// AppCatalog resolves a configured external reference id to a catalog app id.
// An empty id with a nil error means the catalog has no matching app.
type AppCatalog interface {
	ResolveAppID(ctx context.Context, externalID string) (string, error)
}

type ExportStore interface {
	HasExport(ctx context.Context, userID, broadcastID string) (bool, error)
}

// EngagementBroadcaster pushes engagement events to live listeners. Delivery
// is best effort; implementations must never block the caller.
type EngagementBroadcaster interface {
	BroadcastEngagement(broadcastID, recipientKey, kind, button string)
}
