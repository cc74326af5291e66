package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/domain"
)

func newTestEngagementService() (*EngagementService, *mockBroadcastRepo, *mockDeliveryRepo, *mockEngagementBroadcaster) {
	broadcasts := newMockBroadcastRepo()
	deliveries := newMockDeliveryRepo()
	broadcaster := &mockEngagementBroadcaster{}
	svc := NewEngagementService(broadcasts, deliveries, broadcaster, zap.NewNop())
	return svc, broadcasts, deliveries, broadcaster
}

func seedSent(t *testing.T, repo *mockBroadcastRepo) uuid.UUID {
	t.Helper()
	b, err := domain.NewDraftBroadcast("Launch", true, nil, nil)
	require.NoError(t, err)
	sent := b.ToSent()
	repo.sent[sent.ID] = sent
	return sent.ID
}

func seedDelivery(repo *mockDeliveryRepo, broadcastID uuid.UUID, recipientKey string) {
	repo.rows[deliveryKey(broadcastID, recipientKey)] = &domain.RecipientDelivery{
		BroadcastID:  broadcastID,
		RecipientKey: recipientKey,
	}
}

func TestEngagementService_RecordRead_Idempotent(t *testing.T) {
	svc, broadcasts, deliveries, broadcaster := newTestEngagementService()
	id := seedSent(t, broadcasts)
	seedDelivery(deliveries, id, "r1")

	svc.RecordRead(context.Background(), id, "r1")
	svc.RecordRead(context.Background(), id, "r1")

	assert.Equal(t, 1, broadcasts.sent[id].Reads)
	assert.Equal(t, 1, broadcasts.readsCalls)

	row := deliveries.rows[deliveryKey(id, "r1")]
	assert.True(t, row.Read)
	assert.NotNil(t, row.ReadAt)

	require.Len(t, broadcaster.events, 1)
	assert.Equal(t, string(domain.EngagementRead), broadcaster.events[0].kind)
}

func TestEngagementService_RecordRead_MissingRow(t *testing.T) {
	svc, broadcasts, _, _ := newTestEngagementService()
	id := seedSent(t, broadcasts)

	svc.RecordRead(context.Background(), id, "ghost")

	assert.Equal(t, 0, broadcasts.sent[id].Reads)
	assert.Equal(t, 0, broadcasts.readsCalls)
}

func TestEngagementService_RecordRead_SwallowsErrors(t *testing.T) {
	svc, broadcasts, deliveries, _ := newTestEngagementService()
	id := seedSent(t, broadcasts)
	seedDelivery(deliveries, id, "r1")
	broadcasts.readsErr = assert.AnError

	// must not panic or surface anything; partial application is accepted
	svc.RecordRead(context.Background(), id, "r1")

	assert.True(t, deliveries.rows[deliveryKey(id, "r1")].Read)
	assert.Equal(t, 0, broadcasts.sent[id].Reads)
}

func TestEngagementService_RecordButtonClick_Accumulates(t *testing.T) {
	svc, broadcasts, _, _ := newTestEngagementService()
	id := seedSent(t, broadcasts)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordButtonClick(context.Background(), id, "Learn More"))
	}

	clicks := broadcasts.sent[id].ButtonClicks
	require.Len(t, clicks, 1)
	assert.Equal(t, 3, clicks.Count("Learn More"))
}

func TestEngagementService_RecordButtonClick_MissingButton(t *testing.T) {
	svc, broadcasts, _, _ := newTestEngagementService()
	id := seedSent(t, broadcasts)

	err := svc.RecordButtonClick(context.Background(), id, "")
	assert.ErrorIs(t, err, domain.ErrMissingButton)
}

func TestEngagementService_RecordRecipientClick_NoRowIsNoop(t *testing.T) {
	svc, broadcasts, deliveries, _ := newTestEngagementService()
	id := seedSent(t, broadcasts)

	err := svc.RecordRecipientClick(context.Background(), id, "absent", "Learn More")

	require.NoError(t, err)
	assert.Empty(t, deliveries.rows)
}

func TestEngagementService_RecordRecipientClick_StampsTimestamp(t *testing.T) {
	svc, broadcasts, deliveries, _ := newTestEngagementService()
	id := seedSent(t, broadcasts)
	seedDelivery(deliveries, id, "r1")

	require.NoError(t, svc.RecordRecipientClick(context.Background(), id, "r1", "Learn More"))
	require.NoError(t, svc.RecordRecipientClick(context.Background(), id, "r1", "Learn More"))

	clicks := deliveries.rows[deliveryKey(id, "r1")].ButtonClicks
	require.Len(t, clicks, 1)
	assert.Equal(t, 2, clicks[0].Count)
	assert.False(t, clicks[0].LastClickedAt.IsZero())
}

func TestEngagementService_RecordClick_RecipientThenBroadcast(t *testing.T) {
	svc, broadcasts, deliveries, broadcaster := newTestEngagementService()
	id := seedSent(t, broadcasts)
	seedDelivery(deliveries, id, "r1")

	svc.RecordClick(context.Background(), id, "r1", "Learn More")

	assert.Equal(t, 1, broadcasts.sent[id].ButtonClicks.Count("Learn More"))
	assert.Len(t, deliveries.rows[deliveryKey(id, "r1")].ButtonClicks, 1)

	require.Len(t, broadcaster.events, 1)
	assert.Equal(t, string(domain.EngagementClick), broadcaster.events[0].kind)
	assert.Equal(t, "Learn More", broadcaster.events[0].button)
}

func TestEngagementService_RecordClick_UnknownBroadcastSwallowed(t *testing.T) {
	svc, _, _, broadcaster := newTestEngagementService()

	// never panics or errors even when nothing exists
	svc.RecordClick(context.Background(), uuid.Must(uuid.NewV7()), "r1", "Learn More")

	assert.Empty(t, broadcaster.events)
}
