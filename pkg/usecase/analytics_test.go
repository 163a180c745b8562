package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/repository/memory"
	"github.com/inboxpulse/inboxpulse/pkg/usecase"
)

const (
	testUserID    = types.UserID("user-1")
	testUserEmail = "me@example.com"
)

func rawMessage(id string, at time.Time, from, to, subject, inReplyTo string) *model.RawMessage {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Message-ID: <%s>\r\n", id)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Date: %s\r\n", at.Format(time.RFC1123Z))
	if inReplyTo != "" {
		fmt.Fprintf(&sb, "In-Reply-To: <%s>\r\n", inReplyTo)
	}
	sb.WriteString("\r\n")

	return &model.RawMessage{
		ID:                types.MessageID(id),
		InternalTimestamp: at,
		RawHeaderPayload:  []byte(sb.String()),
	}
}

func processOpts() usecase.ProcessOptions {
	return usecase.ProcessOptions{
		UserID:    testUserID,
		UserEmail: testUserEmail,
		DaysBack:  30,
	}
}

func TestProcessEmptyWindow(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)

	result := uc.Analytics.Process(context.Background(), processOpts())

	gt.Bool(t, result.Success).True()
	gt.Number(t, result.ThreadsProcessed).Equal(0)
	gt.Number(t, result.ContactsProcessed).Equal(0)
	gt.Number(t, result.TimelineEvents).Equal(0)
	gt.Array(t, result.Notes).Length(1)
	gt.Array(t, result.Errors).Length(0)
}

func TestProcessPipeline(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	repo.SeedMessages(testUserID,
		rawMessage("a@example.com", now.Add(-3*time.Hour), "Alice Smith <alice@example.com>", testUserEmail, "Budget Review", ""),
		rawMessage("b@example.com", now.Add(-2*time.Hour), testUserEmail, "alice@example.com", "Re: Budget Review", "a@example.com"),
		rawMessage("c@example.com", now.Add(-time.Hour), "bob@example.com", testUserEmail, "Lunch plans", ""),
	)
	repo.SeedCalendarEvents(testUserID,
		model.CalendarEvent{ID: "m1", Title: "Planning", Start: now.Add(-5 * time.Hour), End: now.Add(-4 * time.Hour)},
	)

	uc := usecase.New(repo)
	result := uc.Analytics.Process(ctx, processOpts())

	gt.Bool(t, result.Success).True()
	gt.Array(t, result.Errors).Length(0)
	gt.Number(t, result.ThreadsProcessed).Equal(2)
	gt.Number(t, result.TimelineEvents).Equal(4)
	gt.Value(t, result.Mode).Equal(types.RunModeIncremental)
	gt.Value(t, result.RunID).NotEqual("")

	t.Run("threads persisted", func(t *testing.T) {
		threads, err := repo.Thread().List(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Array(t, threads).Length(2)
	})

	t.Run("contacts persisted with display names", func(t *testing.T) {
		alice, err := repo.Contact().Get(ctx, testUserID, "alice@example.com")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.DisplayName).Equal("Alice Smith")
		// Sender once, recipient once.
		gt.Number(t, alice.InteractionCount).Equal(2)
	})

	t.Run("timeline persisted", func(t *testing.T) {
		events, err := repo.Timeline().List(ctx, testUserID, time.Time{})
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(4)
	})

	t.Run("snapshot upserted for today", func(t *testing.T) {
		snapshot, err := repo.Metrics().GetSnapshot(ctx, testUserID, now.Format(model.MetricsDateFormat))
		gt.NoError(t, err).Required()
		// One of two threads ended by the user.
		gt.Value(t, snapshot.ThreadDecayRate).Equal(0.5)
	})
}

func TestProcessSkipsMalformedMessages(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	repo.SeedMessages(testUserID,
		rawMessage("good@example.com", now.Add(-time.Hour), "alice@example.com", testUserEmail, "hello", ""),
		&model.RawMessage{ID: "broken", InternalTimestamp: now.Add(-30 * time.Minute)},
	)

	uc := usecase.New(repo)
	result := uc.Analytics.Process(ctx, processOpts())

	gt.Bool(t, result.Success).True()
	gt.Array(t, result.Errors).Length(1)
	gt.Number(t, result.ThreadsProcessed).Equal(1)
}

func TestProcessInvalidOptions(t *testing.T) {
	uc := usecase.New(memory.New())

	result := uc.Analytics.Process(context.Background(), usecase.ProcessOptions{UserEmail: testUserEmail})

	gt.Bool(t, result.Success).False()
	gt.Number(t, result.ThreadsProcessed).Equal(0)
	gt.Array(t, result.Errors).Length(1)
}

func TestThreadDecayRateAllUserEnded(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("q%d@example.com", i)
		reply := fmt.Sprintf("r%d@example.com", i)
		other := fmt.Sprintf("peer%d@example.com", i)
		repo.SeedMessages(testUserID,
			rawMessage(id, now.Add(-4*time.Hour), other, testUserEmail, fmt.Sprintf("topic %d", i), ""),
			rawMessage(reply, now.Add(-3*time.Hour), testUserEmail, other, fmt.Sprintf("Re: topic %d", i), id),
		)
	}

	uc := usecase.New(repo)
	result := uc.Analytics.Process(ctx, processOpts())

	gt.Bool(t, result.Success).True()
	gt.Number(t, result.ThreadsProcessed).Equal(10)

	snapshot, err := repo.Metrics().GetLatestSnapshot(ctx, testUserID)
	gt.NoError(t, err).Required()
	gt.Value(t, snapshot).NotNil()
	gt.Value(t, snapshot.ThreadDecayRate).Equal(1.0)
}

func TestIncrementalRunAccumulatesContacts(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	repo.SeedMessages(testUserID,
		rawMessage("first@example.com", now.Add(-2*time.Hour), "alice@example.com", testUserEmail, "first", ""),
	)
	uc := usecase.New(repo)
	gt.Bool(t, uc.Analytics.Process(ctx, processOpts()).Success).True()

	repo.SeedMessages(testUserID,
		rawMessage("second@example.com", now.Add(-time.Hour), "alice@example.com", testUserEmail, "second", ""),
	)
	gt.Bool(t, uc.Analytics.Process(ctx, processOpts()).Success).True()

	alice, err := repo.Contact().Get(ctx, testUserID, "alice@example.com")
	gt.NoError(t, err).Required()
	// One sighting per run: the second run re-fetches both messages but only
	// the newly cached one counts.
	gt.Number(t, alice.InteractionCount).Equal(2)

	events, err := repo.Timeline().List(ctx, testUserID, time.Time{})
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(2)
}

func TestIncrementalRerunLeavesTimelineUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	// Midday clock keeps both events inside the snapshot's calendar day.
	now := time.Now().UTC().Truncate(24 * time.Hour).Add(12 * time.Hour)

	repo.SeedMessages(testUserID,
		rawMessage("one@example.com", now.Add(-3*time.Hour), "alice@example.com", testUserEmail, "status", ""),
		rawMessage("two@example.com", now.Add(-2*time.Hour), testUserEmail, "alice@example.com", "Re: status", "one@example.com"),
	)
	uc := usecase.New(repo, usecase.WithClock(func() time.Time { return now }))
	gt.Bool(t, uc.Analytics.Process(ctx, processOpts()).Success).True()

	first, err := repo.Timeline().List(ctx, testUserID, time.Time{})
	gt.NoError(t, err).Required()
	gt.Array(t, first).Length(2)

	// A rerun over the same window must not append anything.
	gt.Bool(t, uc.Analytics.Process(ctx, processOpts()).Success).True()

	second, err := repo.Timeline().List(ctx, testUserID, time.Time{})
	gt.NoError(t, err).Required()
	gt.Array(t, second).Length(2)

	snapshot, err := repo.Metrics().GetLatestSnapshot(ctx, testUserID)
	gt.NoError(t, err).Required()
	gt.Value(t, snapshot).NotNil()
	total := 0.0
	for _, v := range snapshot.LoadByHour {
		total += v
	}
	gt.Number(t, total).Equal(2)

	// A forced rebuild recomputes derived data but never rewrites the
	// append-only timeline.
	rebuild := processOpts()
	rebuild.ForceFullRebuild = true
	gt.Bool(t, uc.Analytics.Process(ctx, rebuild).Success).True()

	third, err := repo.Timeline().List(ctx, testUserID, time.Time{})
	gt.NoError(t, err).Required()
	gt.Array(t, third).Length(2)
}

func TestProcessIfStale(t *testing.T) {
	ctx := context.Background()

	t.Run("no snapshot forces a full rebuild", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		result := uc.Analytics.ProcessIfStale(ctx, processOpts())

		gt.Bool(t, result.Success).True()
		gt.Value(t, result.Mode).Equal(types.RunModeFull)
	})

	t.Run("recent snapshot skips", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		gt.NoError(t, repo.Metrics().PutSnapshot(ctx, &model.MetricsSnapshot{
			UserID:    testUserID,
			Date:      time.Now().Format(model.MetricsDateFormat),
			CreatedAt: time.Now().Add(-30 * time.Minute),
		})).Required()

		result := uc.Analytics.ProcessIfStale(ctx, processOpts())

		gt.Bool(t, result.Success).True()
		gt.Value(t, result.Mode).Equal(types.RunModeSkip)
		gt.Number(t, result.ThreadsProcessed).Equal(0)
		gt.Array(t, result.Notes).Has("too recent")
	})

	t.Run("stale snapshot runs incrementally", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		gt.NoError(t, repo.Metrics().PutSnapshot(ctx, &model.MetricsSnapshot{
			UserID:    testUserID,
			Date:      time.Now().Add(-24 * time.Hour).Format(model.MetricsDateFormat),
			CreatedAt: time.Now().Add(-2 * time.Hour),
		})).Required()

		result := uc.Analytics.ProcessIfStale(ctx, processOpts())

		gt.Bool(t, result.Success).True()
		gt.Value(t, result.Mode).Equal(types.RunModeIncremental)
	})
}

func TestDecideRunMode(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		title     string
		createdAt time.Time
		seed      bool
		want      types.RunMode
	}{
		{title: "no snapshot", seed: false, want: types.RunModeFull},
		{title: "fresh snapshot", seed: true, createdAt: time.Now().Add(-5 * time.Minute), want: types.RunModeSkip},
		{title: "old snapshot", seed: true, createdAt: time.Now().Add(-90 * time.Minute), want: types.RunModeIncremental},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			repo := memory.New()
			uc := usecase.New(repo)
			if tc.seed {
				gt.NoError(t, repo.Metrics().PutSnapshot(ctx, &model.MetricsSnapshot{
					UserID:    testUserID,
					Date:      tc.createdAt.Format(model.MetricsDateFormat),
					CreatedAt: tc.createdAt,
				})).Required()
			}

			mode, err := uc.Analytics.DecideRunMode(ctx, testUserID)
			gt.NoError(t, err).Required()
			gt.Value(t, mode).Equal(tc.want)
		})
	}
}
