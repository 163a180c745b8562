package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/repository/memory"
)

// The message cache and calendar source are written by the ingestion
// service, so only the seeded memory backend is testable here.

func TestMemoryMessageCache(t *testing.T) {
	ctx := context.Background()
	userID := types.UserID("user-cache")
	now := time.Now().UTC()

	repo := memory.New()
	repo.SeedMessages(userID,
		&model.RawMessage{ID: "recent", InternalTimestamp: now.Add(-time.Hour)},
		&model.RawMessage{ID: "older", InternalTimestamp: now.Add(-48 * time.Hour)},
		&model.RawMessage{ID: "ancient", InternalTimestamp: now.AddDate(0, 0, -30)},
	)
	repo.SeedMessages("someone-else",
		&model.RawMessage{ID: "foreign", InternalTimestamp: now},
	)

	t.Run("window bound excludes old records", func(t *testing.T) {
		msgs, err := repo.MessageCache().FetchWindow(ctx, userID, 7)
		if err != nil {
			t.Fatalf("failed to fetch window: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages in window, got %d", len(msgs))
		}
	})

	t.Run("newest first", func(t *testing.T) {
		msgs, err := repo.MessageCache().FetchWindow(ctx, userID, 0)
		if err != nil {
			t.Fatalf("failed to fetch window: %v", err)
		}
		if len(msgs) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(msgs))
		}
		if msgs[0].ID != "recent" || msgs[2].ID != "ancient" {
			t.Errorf("unexpected order: %s ... %s", msgs[0].ID, msgs[2].ID)
		}
	})
}

func TestMemoryCalendarSource(t *testing.T) {
	ctx := context.Background()
	userID := types.UserID("user-cal")
	now := time.Now().UTC()

	repo := memory.New()
	repo.SeedCalendarEvents(userID,
		model.CalendarEvent{ID: "standup", Title: "Daily standup", Start: now.Add(-time.Hour), End: now.Add(-30 * time.Minute)},
		model.CalendarEvent{ID: "retro", Title: "Sprint retro", Start: now.AddDate(0, 0, -20), End: now.AddDate(0, 0, -20).Add(time.Hour)},
	)

	events, err := repo.Calendar().FetchWindow(ctx, userID, 7)
	if err != nil {
		t.Fatalf("failed to fetch calendar window: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event in window, got %d", len(events))
	}
	if events[0].ID != "standup" {
		t.Errorf("unexpected event: %s", events[0].ID)
	}
}
