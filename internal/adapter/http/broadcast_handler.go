package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beratbay/broadcast-engage/internal/adapter/http/middleware"
	"github.com/beratbay/broadcast-engage/internal/app"
	"github.com/beratbay/broadcast-engage/internal/domain"
)

type BroadcastHandler struct {
	sender    *app.SendService
	summaries *app.SummaryService
}

func NewBroadcastHandler(sender *app.SendService, summaries *app.SummaryService) *BroadcastHandler {
	return &BroadcastHandler{sender: sender, summaries: summaries}
}

func (h *BroadcastHandler) CreateSent(c *gin.Context) {
	var req CreateSentBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrMissingDraftID.Error()})
		return
	}

	draftID, err := uuid.Parse(req.DraftID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidID.Error()})
		return
	}

	sentID, err := h.sender.CreateSentBroadcast(c.Request.Context(), draftID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateSentBroadcastResponse{ID: sentID.String()})
}

func (h *BroadcastHandler) List(c *gin.Context) {
	var (
		summaries []app.BroadcastSummary
		err       error
	)

	if channelID := c.Query("channel"); channelID != "" {
		summaries, err = h.summaries.ListSummariesByChannel(c.Request.Context(), channelID)
	} else {
		summaries, err = h.summaries.ListSummaries(c.Request.Context())
	}
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSummaryListResponse(summaries))
}

func (h *BroadcastHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidID.Error()})
		return
	}

	detail, err := h.summaries.GetDetail(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewDetailResponse(detail))
}

func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDraftNotFound),
		errors.Is(err, domain.ErrBroadcastNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMissingDraftID),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrMissingButton):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
