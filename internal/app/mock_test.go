package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beratbay/broadcast-engage/internal/domain"
)

type mockBroadcastRepo struct {
	mu         sync.Mutex
	drafts     map[uuid.UUID]*domain.Broadcast
	sent       map[uuid.UUID]*domain.Broadcast
	moveErr    error
	getErr     error
	listErr    error
	clicksErr  error
	saveErr    error
	readsErr   error
	readsCalls int
}

func newMockBroadcastRepo() *mockBroadcastRepo {
	return &mockBroadcastRepo{
		drafts: make(map[uuid.UUID]*domain.Broadcast),
		sent:   make(map[uuid.UUID]*domain.Broadcast),
	}
}

func (m *mockBroadcastRepo) MoveDraftToSent(_ context.Context, draftID uuid.UUID) (uuid.UUID, error) {
	if m.moveErr != nil {
		return uuid.Nil, m.moveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	draft, ok := m.drafts[draftID]
	if !ok {
		return uuid.Nil, domain.ErrDraftNotFound
	}
	sent := draft.ToSent()
	delete(m.drafts, draftID)
	m.sent[sent.ID] = sent
	return sent.ID, nil
}

func (m *mockBroadcastRepo) GetSent(_ context.Context, id uuid.UUID) (*domain.Broadcast, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.sent[id]
	if !ok {
		return nil, domain.ErrBroadcastNotFound
	}
	return b, nil
}

func (m *mockBroadcastRepo) ListSent(_ context.Context) ([]*domain.Broadcast, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Broadcast, 0, len(m.sent))
	for _, b := range m.sent {
		result = append(result, b)
	}
	return result, nil
}

func (m *mockBroadcastRepo) ListSentByChannel(_ context.Context, channelID string) ([]*domain.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Broadcast
	for _, b := range m.sent {
		if b.ChannelID != nil && *b.ChannelID == channelID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockBroadcastRepo) GetButtonClicks(_ context.Context, id uuid.UUID) (domain.ButtonClicks, error) {
	if m.clicksErr != nil {
		return nil, m.clicksErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.sent[id]
	if !ok {
		return nil, domain.ErrBroadcastNotFound
	}
	return b.ButtonClicks, nil
}

func (m *mockBroadcastRepo) SaveButtonClicks(_ context.Context, id uuid.UUID, clicks domain.ButtonClicks) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.sent[id]
	if !ok {
		return domain.ErrBroadcastNotFound
	}
	b.ButtonClicks = clicks
	return nil
}

func (m *mockBroadcastRepo) IncrementReads(_ context.Context, id uuid.UUID) error {
	if m.readsErr != nil {
		return m.readsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readsCalls++
	if b, ok := m.sent[id]; ok {
		b.Reads++
	}
	return nil
}

type mockDeliveryRepo struct {
	mu          sync.Mutex
	rows        map[string]*domain.RecipientDelivery
	ensureErr   error
	ensureCalls int
	markErr     error
	saveErr     error
}

func newMockDeliveryRepo() *mockDeliveryRepo {
	return &mockDeliveryRepo{rows: make(map[string]*domain.RecipientDelivery)}
}

func deliveryKey(broadcastID uuid.UUID, recipientKey string) string {
	return broadcastID.String() + "/" + recipientKey
}

func (m *mockDeliveryRepo) EnsureTable(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockDeliveryRepo) Get(_ context.Context, broadcastID uuid.UUID, recipientKey string) (*domain.RecipientDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey(broadcastID, recipientKey)]
	if !ok {
		return nil, domain.ErrRecipientNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *mockDeliveryRepo) MarkRead(_ context.Context, broadcastID uuid.UUID, recipientKey string) (bool, error) {
	if m.markErr != nil {
		return false, m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey(broadcastID, recipientKey)]
	if !ok {
		return false, nil
	}
	return row.MarkRead(), nil
}

func (m *mockDeliveryRepo) SaveButtonClicks(_ context.Context, broadcastID uuid.UUID, recipientKey string, clicks domain.RecipientButtonClicks) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey(broadcastID, recipientKey)]
	if !ok {
		return domain.ErrRecipientNotFound
	}
	row.ButtonClicks = clicks
	return nil
}

type publishedMessage struct {
	broadcastID string
	delay       time.Duration
}

type mockQueuePublisher struct {
	mu         sync.Mutex
	prepared   []publishedMessage
	forced     []publishedMessage
	prepareErr error
	forceErr   error
}

func newMockQueuePublisher() *mockQueuePublisher {
	return &mockQueuePublisher{}
}

func (m *mockQueuePublisher) PublishPrepareToSend(_ context.Context, broadcastID string) error {
	if m.prepareErr != nil {
		return m.prepareErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepared = append(m.prepared, publishedMessage{broadcastID: broadcastID})
	return nil
}

func (m *mockQueuePublisher) PublishForceComplete(_ context.Context, broadcastID string, delay time.Duration) error {
	if m.forceErr != nil {
		return m.forceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced = append(m.forced, publishedMessage{broadcastID: broadcastID, delay: delay})
	return nil
}

func (m *mockQueuePublisher) Close() error { return nil }

type mockSettingsStore struct {
	appID  string
	getErr error
	setErr error
	sets   int
}

func (m *mockSettingsStore) CompanionAppID(_ context.Context) (string, error) {
	return m.appID, m.getErr
}

func (m *mockSettingsStore) SetCompanionAppID(_ context.Context, appID string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.appID = appID
	m.sets++
	return nil
}

type mockAppCatalog struct {
	appID      string
	resolveErr error
	calls      int
}

func (m *mockAppCatalog) ResolveAppID(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.appID, m.resolveErr
}

type mockGroupDirectory struct {
	names map[string]string
	err   error
}

func (m *mockGroupDirectory) GroupName(_ context.Context, groupID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.names[groupID], nil
}

type mockTeamDirectory struct {
	names []string
	err   error
}

func (m *mockTeamDirectory) TeamNames(_ context.Context, _ []string) ([]string, error) {
	return m.names, m.err
}

type mockExportStore struct {
	present bool
	err     error
}

func (m *mockExportStore) HasExport(_ context.Context, _, _ string) (bool, error) {
	return m.present, m.err
}

type engagementEvent struct {
	broadcastID  string
	recipientKey string
	kind         string
	button       string
}

type mockEngagementBroadcaster struct {
	mu     sync.Mutex
	events []engagementEvent
}

func (m *mockEngagementBroadcaster) BroadcastEngagement(broadcastID, recipientKey, kind, button string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, engagementEvent{broadcastID, recipientKey, kind, button})
}
