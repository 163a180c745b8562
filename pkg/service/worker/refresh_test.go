package worker_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/repository/memory"
	"github.com/inboxpulse/inboxpulse/pkg/service/worker"
	"github.com/inboxpulse/inboxpulse/pkg/usecase"
)

func seedMessage(repo *memory.Memory, userID types.UserID, id string, at time.Time) {
	payload := fmt.Sprintf(
		"Message-ID: <%s>\r\nSubject: status\r\nFrom: peer@example.com\r\nTo: me@example.com\r\n\r\n", id)
	repo.SeedMessages(userID, &model.RawMessage{
		ID:                types.MessageID(id),
		InternalTimestamp: at,
		RawHeaderPayload:  []byte(payload),
	})
}

func TestWorkerRunsInitialRefresh(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	seedMessage(repo, "user-1", "a@example.com", now.Add(-time.Hour))
	seedMessage(repo, "user-2", "b@example.com", now.Add(-time.Hour))

	uc := usecase.New(repo)
	w := worker.NewAnalyticsRefreshWorker(uc, []worker.Target{
		{UserID: "user-1", UserEmail: "me@example.com"},
		{UserID: "user-2", UserEmail: "me@example.com"},
	}, time.Hour)

	gt.NoError(t, w.Start(ctx)).Required()
	defer w.Stop()

	// The initial pass runs in the background; poll for its results.
	deadline := time.After(5 * time.Second)
	for {
		threads1, err := repo.Thread().List(ctx, "user-1")
		gt.NoError(t, err).Required()
		threads2, err := repo.Thread().List(ctx, "user-2")
		gt.NoError(t, err).Required()
		if len(threads1) == 1 && len(threads2) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("worker did not process both users: %d, %d", len(threads1), len(threads2))
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerSkipsFreshUsers(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	// A snapshot inside the cooldown keeps the pipeline idle for this user.
	gt.NoError(t, repo.Metrics().PutSnapshot(ctx, &model.MetricsSnapshot{
		UserID:    "user-1",
		Date:      now.Format(model.MetricsDateFormat),
		CreatedAt: now.Add(-5 * time.Minute),
	})).Required()
	seedMessage(repo, "user-1", "a@example.com", now.Add(-time.Hour))

	uc := usecase.New(repo)
	w := worker.NewAnalyticsRefreshWorker(uc, []worker.Target{
		{UserID: "user-1", UserEmail: "me@example.com"},
	}, time.Hour)

	gt.NoError(t, w.Start(ctx)).Required()
	time.Sleep(200 * time.Millisecond)
	w.Stop()

	threads, err := repo.Thread().List(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Array(t, threads).Length(0)
}

func TestWorkerStop(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	w := worker.NewAnalyticsRefreshWorker(uc, nil, time.Hour)

	gt.NoError(t, w.Start(context.Background())).Required()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop in time")
	}
}
