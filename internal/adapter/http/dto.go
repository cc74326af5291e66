package http

import (
	"time"

	"github.com/beratbay/broadcast-engage/internal/app"
	"github.com/beratbay/broadcast-engage/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateSentBroadcastRequest struct {
	DraftID string `json:"draft_id" binding:"required"`
}

type CreateSentBroadcastResponse struct {
	ID string `json:"id"`
}

type ButtonClickResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type BroadcastSummaryResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Unknown    *int       `json:"unknown,omitempty"`
	Reads      int        `json:"reads"`
	TotalCount int        `json:"total_count"`
	CreatedAt  time.Time  `json:"created_at"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

type BroadcastDetailResponse struct {
	BroadcastSummaryResponse
	AllUsers       bool                  `json:"all_users"`
	TeamNames      []string              `json:"team_names,omitempty"`
	GroupNames     []string              `json:"group_names,omitempty"`
	ButtonClicks   []ButtonClickResponse `json:"button_clicks,omitempty"`
	ErrorMessage   *string               `json:"error_message,omitempty"`
	WarningMessage *string               `json:"warning_message,omitempty"`
	CanDownload    bool                  `json:"can_download"`
}

func NewSummaryResponse(s app.BroadcastSummary) BroadcastSummaryResponse {
	return BroadcastSummaryResponse{
		ID:         s.ID.String(),
		Title:      s.Title,
		Status:     string(s.Status),
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Unknown:    s.Unknown,
		Reads:      s.Reads,
		TotalCount: s.TotalCount,
		CreatedAt:  s.CreatedAt,
		SentAt:     s.SentAt,
	}
}

func NewSummaryListResponse(summaries []app.BroadcastSummary) []BroadcastSummaryResponse {
	result := make([]BroadcastSummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = NewSummaryResponse(s)
	}
	return result
}

func NewDetailResponse(d *app.BroadcastDetail) BroadcastDetailResponse {
	return BroadcastDetailResponse{
		BroadcastSummaryResponse: NewSummaryResponse(d.BroadcastSummary),
		AllUsers:                 d.AllUsers,
		TeamNames:                d.TeamNames,
		GroupNames:               d.GroupNames,
		ButtonClicks:             newButtonClicks(d.ButtonClicks),
		ErrorMessage:             d.ErrorMessage,
		WarningMessage:           d.WarningMsg,
		CanDownload:              d.CanDownload,
	}
}

func newButtonClicks(clicks domain.ButtonClicks) []ButtonClickResponse {
	if len(clicks) == 0 {
		return nil
	}
	result := make([]ButtonClickResponse, len(clicks))
	for i, c := range clicks {
		result[i] = ButtonClickResponse{Name: c.Name, Count: c.Count}
	}
	return result
}
