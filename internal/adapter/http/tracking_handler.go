package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beratbay/broadcast-engage/internal/app"
)

// TrackingHandler serves the anonymous engagement endpoints. Both are invoked
// from fire-and-forget contexts (a read receipt beacon, a redirect link in the
// message body), so the handlers succeed unconditionally: whatever happens to
// the bookkeeping, the recipient gets their 204 or their redirect.
type TrackingHandler struct {
	engagement *app.EngagementService
}

func NewTrackingHandler(engagement *app.EngagementService) *TrackingHandler {
	return &TrackingHandler{engagement: engagement}
}

func (h *TrackingHandler) TrackRead(c *gin.Context) {
	if id, err := uuid.Parse(c.Param("id")); err == nil {
		h.engagement.RecordRead(c.Request.Context(), id, c.Param("recipient"))
	}
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) TrackClick(c *gin.Context) {
	if id, err := uuid.Parse(c.Param("id")); err == nil {
		h.engagement.RecordClick(c.Request.Context(), id, c.Param("recipient"), c.Query("button"))
	}
	c.Redirect(http.StatusFound, redirectTarget(c.Query("redirect")))
}

// redirectTarget decodes the caller-supplied URL, tolerating both plain and
// percent-encoded forms. An empty or undecodable value falls back to "/": the
// endpoint's contract is that it always ends in a redirect.
func redirectTarget(raw string) string {
	if raw == "" {
		return "/"
	}
	if decoded, err := url.QueryUnescape(raw); err == nil && decoded != "" {
		return decoded
	}
	return raw
}
