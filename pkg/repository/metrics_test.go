package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/repository/memory"
)

func sampleSnapshot(userID types.UserID, date string, createdAt time.Time) *model.MetricsSnapshot {
	s := &model.MetricsSnapshot{
		UserID:          userID,
		Date:            date,
		ThreadDecayRate: 0.5,
		ContextSwitches: 7,
		TimeByContext:   map[string]float64{"internal": 120, "external": 45},
		CreatedAt:       createdAt,
	}
	s.LoadByHour[9] = 3
	s.LoadByHour[14] = 1.5
	return s
}

func runMetricsRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("PutSnapshot and GetSnapshot round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := types.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano()))
		now := time.Now().UTC().Truncate(time.Second)

		if err := repo.Metrics().PutSnapshot(ctx, sampleSnapshot(userID, "2026-08-31", now)); err != nil {
			t.Fatalf("failed to put snapshot: %v", err)
		}

		got, err := repo.Metrics().GetSnapshot(ctx, userID, "2026-08-31")
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}
		if got.ThreadDecayRate != 0.5 {
			t.Errorf("ThreadDecayRate mismatch: got %v", got.ThreadDecayRate)
		}
		if got.ContextSwitches != 7 {
			t.Errorf("ContextSwitches mismatch: got %d", got.ContextSwitches)
		}
		if got.LoadByHour[9] != 3 {
			t.Errorf("LoadByHour[9] mismatch: got %v", got.LoadByHour[9])
		}
		if got.TimeByContext["internal"] != 120 {
			t.Errorf("TimeByContext mismatch: got %v", got.TimeByContext)
		}
	})

	t.Run("GetSnapshot unknown date returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := types.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano()))

		_, err := repo.Metrics().GetSnapshot(ctx, userID, "1970-01-01")
		if !isNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutSnapshot overwrites the same user and date", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := types.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano()))
		now := time.Now().UTC().Truncate(time.Second)

		if err := repo.Metrics().PutSnapshot(ctx, sampleSnapshot(userID, "2026-08-31", now)); err != nil {
			t.Fatalf("failed to put snapshot: %v", err)
		}
		updated := sampleSnapshot(userID, "2026-08-31", now.Add(time.Hour))
		updated.ContextSwitches = 12
		if err := repo.Metrics().PutSnapshot(ctx, updated); err != nil {
			t.Fatalf("failed to overwrite snapshot: %v", err)
		}

		got, err := repo.Metrics().GetSnapshot(ctx, userID, "2026-08-31")
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}
		if got.ContextSwitches != 12 {
			t.Errorf("expected overwritten snapshot, got %d switches", got.ContextSwitches)
		}
	})

	t.Run("GetLatestSnapshot returns nil when absent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := types.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano()))

		got, err := repo.Metrics().GetLatestSnapshot(ctx, userID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil snapshot, got %+v", got)
		}
	})

	t.Run("GetLatestSnapshot picks the most recent creation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := types.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano()))
		now := time.Now().UTC().Truncate(time.Second)

		if err := repo.Metrics().PutSnapshot(ctx, sampleSnapshot(userID, "2026-08-30", now.Add(-24*time.Hour))); err != nil {
			t.Fatalf("failed to put older snapshot: %v", err)
		}
		if err := repo.Metrics().PutSnapshot(ctx, sampleSnapshot(userID, "2026-08-31", now)); err != nil {
			t.Fatalf("failed to put newer snapshot: %v", err)
		}

		got, err := repo.Metrics().GetLatestSnapshot(ctx, userID)
		if err != nil {
			t.Fatalf("failed to get latest snapshot: %v", err)
		}
		if got == nil {
			t.Fatal("expected a snapshot")
		}
		if got.Date != "2026-08-31" {
			t.Errorf("expected latest snapshot, got date %s", got.Date)
		}
	})
}

func TestMemoryMetricsRepository(t *testing.T) {
	runMetricsRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreMetricsRepository(t *testing.T) {
	runMetricsRepositoryTest(t, newFirestoreRepository)
}
