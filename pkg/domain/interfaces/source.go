package interfaces

import (
	"context"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// MessageCache is the ingestion collaborator's store of raw message records.
// The core only reads from it; records are windowed by a days-back bound and
// returned newest-first (callers re-sort as needed).
type MessageCache interface {
	FetchWindow(ctx context.Context, userID types.UserID, daysBack int) ([]*model.RawMessage, error)
}

// CalendarSource supplies externally ingested calendar events for the same
// window. A nil source simply contributes no meeting events.
type CalendarSource interface {
	FetchWindow(ctx context.Context, userID types.UserID, daysBack int) ([]model.CalendarEvent, error)
}
