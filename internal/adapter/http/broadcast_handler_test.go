package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/app"
	"github.com/beratbay/broadcast-engage/internal/domain"
)

type stubQueue struct {
	mu       sync.Mutex
	prepared []string
	forced   []time.Duration
}

func (s *stubQueue) PublishPrepareToSend(_ context.Context, broadcastID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepared = append(s.prepared, broadcastID)
	return nil
}

func (s *stubQueue) PublishForceComplete(_ context.Context, _ string, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = append(s.forced, delay)
	return nil
}

func (s *stubQueue) Close() error { return nil }

type stubSettings struct {
	appID string
}

func (s *stubSettings) CompanionAppID(_ context.Context) (string, error) { return s.appID, nil }

func (s *stubSettings) SetCompanionAppID(_ context.Context, id string) error {
	s.appID = id
	return nil
}

type stubCatalog struct{}

func (stubCatalog) ResolveAppID(_ context.Context, _ string) (string, error) { return "", nil }

type stubGroups struct{ names map[string]string }

func (s stubGroups) GroupName(_ context.Context, id string) (string, error) {
	if name, ok := s.names[id]; ok {
		return name, nil
	}
	return "", domain.ErrCollaboratorDown
}

type stubTeams struct{ names map[string]string }

func (s stubTeams) TeamNames(_ context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := s.names[id]; ok {
			out = append(out, name)
		} else {
			out = append(out, id)
		}
	}
	return out, nil
}

type stubExports struct{ present bool }

func (s stubExports) HasExport(_ context.Context, _, _ string) (bool, error) {
	return s.present, nil
}

type broadcastFixture struct {
	router     *gin.Engine
	broadcasts *stubBroadcastRepo
	queue      *stubQueue
}

func newBroadcastRouter(t *testing.T) *broadcastFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	broadcasts := newStubBroadcastRepo()
	deliveries := newStubDeliveryRepo()
	queue := &stubQueue{}
	logger := zap.NewNop()

	provisioning := app.NewProvisioningService(false, "", &stubSettings{}, stubCatalog{}, logger)
	sender := app.NewSendService(broadcasts, deliveries, queue, provisioning, time.Hour, logger)
	summaries := app.NewSummaryService(
		broadcasts,
		stubGroups{names: map[string]string{"g1": "Platform"}},
		stubTeams{names: map[string]string{"t1": "SRE"}},
		stubExports{present: true},
		logger,
	)
	handler := NewBroadcastHandler(sender, summaries)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", "u1") })
	r.POST("/api/v1/sent-broadcasts", handler.CreateSent)
	r.GET("/api/v1/sent-broadcasts", handler.List)
	r.GET("/api/v1/sent-broadcasts/:id", handler.GetByID)

	return &broadcastFixture{router: r, broadcasts: broadcasts, queue: queue}
}

func (f *broadcastFixture) seedSent(t *testing.T, title string, channelID *string) uuid.UUID {
	t.Helper()
	draft, err := domain.NewDraftBroadcast(title, false, []string{"t1"}, []string{"g1"})
	require.NoError(t, err)
	b := draft.ToSent()
	b.ChannelID = channelID
	b.Succeeded = 4
	b.Unknown = 2
	b.Throttled = 1
	b.TotalCount = 7
	f.broadcasts.sent[b.ID] = b
	return b.ID
}

func TestCreateSent_PublishesWorkItems(t *testing.T) {
	f := newBroadcastRouter(t)
	draft, err := domain.NewDraftBroadcast("Release notes", true, nil, nil)
	require.NoError(t, err)
	f.broadcasts.drafts[draft.ID] = draft

	body := `{"draft_id":"` + draft.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sent-broadcasts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateSentBroadcastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	sentID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, draft.ID, sentID, "sent broadcast must get a fresh identity")

	require.Len(t, f.queue.prepared, 1)
	assert.Equal(t, sentID.String(), f.queue.prepared[0])
	require.Len(t, f.queue.forced, 1)
	assert.Equal(t, time.Hour, f.queue.forced[0])
}

func TestCreateSent_MissingBody(t *testing.T) {
	f := newBroadcastRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sent-broadcasts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSent_InvalidDraftID(t *testing.T) {
	f := newBroadcastRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sent-broadcasts",
		strings.NewReader(`{"draft_id":"not-a-uuid"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSent_DraftNotFound(t *testing.T) {
	f := newBroadcastRouter(t)

	body := `{"draft_id":"` + uuid.Must(uuid.NewV7()).String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sent-broadcasts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.queue.prepared)
}

func TestList_ReconcilesUnknown(t *testing.T) {
	f := newBroadcastRouter(t)
	f.seedSent(t, "Quarterly update", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sent-broadcasts", nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []BroadcastSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)

	assert.Equal(t, "Quarterly update", resp[0].Title)
	require.NotNil(t, resp[0].Unknown)
	assert.Equal(t, 3, *resp[0].Unknown, "throttled outcomes fold into unknown")
}

func TestList_FiltersByChannel(t *testing.T) {
	f := newBroadcastRouter(t)
	channel := "town-square"
	want := f.seedSent(t, "Channel only", &channel)
	f.seedSent(t, "No channel", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sent-broadcasts?channel=town-square", nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []BroadcastSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, want.String(), resp[0].ID)
}

func TestGetByID_ResolvesNames(t *testing.T) {
	f := newBroadcastRouter(t)
	id := f.seedSent(t, "Detail view", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sent-broadcasts/"+id.String(), nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp BroadcastDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"SRE"}, resp.TeamNames)
	assert.Equal(t, []string{"Platform"}, resp.GroupNames)
	assert.True(t, resp.CanDownload)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newBroadcastRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/sent-broadcasts/"+uuid.Must(uuid.NewV7()).String(), nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByID_InvalidID(t *testing.T) {
	f := newBroadcastRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sent-broadcasts/nope", nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
