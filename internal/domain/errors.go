package domain

import "errors"

var (
	ErrDraftNotFound     = errors.New("draft broadcast not found")
	ErrBroadcastNotFound = errors.New("broadcast not found")
	ErrRecipientNotFound = errors.New("recipient delivery record not found")
	ErrEmptyTitle        = errors.New("title is required")
	ErrMissingDraftID    = errors.New("draft id is required")
	ErrMissingButton     = errors.New("button name is required")
	ErrInvalidID         = errors.New("invalid broadcast id")
	ErrCollaboratorDown  = errors.New("external collaborator unavailable")
)
