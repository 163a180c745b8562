package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/service/contacts"
	"github.com/inboxpulse/inboxpulse/pkg/service/mailparse"
	"github.com/inboxpulse/inboxpulse/pkg/service/threader"
	"github.com/inboxpulse/inboxpulse/pkg/service/timeline"
	"github.com/inboxpulse/inboxpulse/pkg/utils/logging"
)

const defaultDaysBack = 30

// AnalyticsUseCase runs the analytics pipeline for one user: parse cached
// messages, normalize contacts, reconstruct threads, extend the timeline,
// and snapshot daily metrics.
type AnalyticsUseCase struct {
	repo         interfaces.Repository
	workingHours *threader.WorkingHours
	rules        []timeline.ContextRule
	subjectGuard bool
	now          func() time.Time
}

func newAnalyticsUseCase(repo interfaces.Repository) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		repo:         repo,
		subjectGuard: true,
		now:          time.Now,
	}
}

type ProcessOptions struct {
	UserID    types.UserID
	UserEmail string
	// DaysBack bounds the message cache window. Zero means the default of 30.
	DaysBack         int
	ForceFullRebuild bool
}

func (o *ProcessOptions) validate() error {
	if o.UserID == "" {
		return ErrMissingUserID
	}
	if o.UserEmail == "" {
		return ErrMissingUserEmail
	}
	return nil
}

// Process runs one full pipeline pass. Failures never escape: a fatal error
// aborts the remaining stages and is recorded on the returned result with
// Success=false. Side effects persisted before the failure are not rolled
// back.
func (u *AnalyticsUseCase) Process(ctx context.Context, opts ProcessOptions) *model.Result {
	started := u.now()

	result := &model.Result{
		UserID: opts.UserID,
		RunID:  uuid.NewString(),
		Mode:   types.RunModeIncremental,
	}
	if opts.ForceFullRebuild {
		result.Mode = types.RunModeFull
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.ThreadsProcessed = 0
			result.ContactsProcessed = 0
			result.TimelineEvents = 0
			result.AddError(fmt.Sprintf("pipeline panic: %v", r))
			logging.From(ctx).Error("analytics pipeline panicked",
				"user_id", opts.UserID, "run_id", result.RunID, "panic", r)
		}
		result.ElapsedMillis = u.now().Sub(started).Milliseconds()
	}()

	if err := u.run(ctx, opts, result); err != nil {
		result.Success = false
		result.ThreadsProcessed = 0
		result.ContactsProcessed = 0
		result.TimelineEvents = 0
		result.AddError(err.Error())
		logging.From(ctx).Error("analytics pipeline failed",
			"user_id", opts.UserID, "run_id", result.RunID, "error", err)
	}

	return result
}

func (u *AnalyticsUseCase) run(ctx context.Context, opts ProcessOptions, result *model.Result) error {
	if err := opts.validate(); err != nil {
		return err
	}

	logger := logging.From(ctx)
	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = defaultDaysBack
	}

	registry := contacts.New(u.repo.Contact(), contacts.WithClock(u.now))
	builder := timeline.New(u.repo.Timeline(), opts.UserID, opts.UserEmail,
		timeline.WithRules(u.rules))

	// The timeline is append-only, so the builder always hydrates its
	// source index; a full rebuild must not duplicate persisted events
	// either. Only the contact registry starts from scratch on a rebuild.
	if err := builder.Load(ctx); err != nil {
		return err
	}
	if !opts.ForceFullRebuild {
		if err := registry.Load(ctx, opts.UserID); err != nil {
			return err
		}
	}

	raws, err := u.repo.MessageCache().FetchWindow(ctx, opts.UserID, daysBack)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch cached messages", goerr.V("user_id", opts.UserID))
	}
	if len(raws) == 0 {
		result.Success = true
		result.AddNote(fmt.Sprintf("no cached messages within %d days", daysBack))
		return nil
	}

	msgs := make([]*model.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := mailparse.Extract(raw)
		if err != nil {
			result.AddError(fmt.Sprintf("skipped message %s: %v", raw.ID, err))
			continue
		}
		msgs = append(msgs, msg)

		// The fetch window overlaps previous runs. Only messages not yet on
		// the timeline count as new sightings; the builder applies the same
		// rule when appending events. A full rebuild recounts the whole
		// window against its fresh registry.
		if !opts.ForceFullRebuild && builder.HasSource(string(msg.ID)) {
			continue
		}
		registry.AddAddress(msg.From, msg.FromName)
		for _, addr := range msg.To {
			registry.AddAddress(addr, "")
		}
		for _, addr := range msg.Cc {
			registry.AddAddress(addr, "")
		}
	}

	threaderOpts := []threader.Option{threader.WithNow(u.now())}
	if u.workingHours != nil {
		threaderOpts = append(threaderOpts, threader.WithWorkingHours(*u.workingHours))
	}
	if !u.subjectGuard {
		threaderOpts = append(threaderOpts, threader.WithoutSubjectGuard())
	}
	threads := threader.New(opts.UserEmail, threaderOpts...).Reconstruct(msgs)

	added := builder.AddEmailEvents(msgs)

	calendarEvents, err := u.repo.Calendar().FetchWindow(ctx, opts.UserID, daysBack)
	if err != nil {
		// Calendar data enriches the timeline but is not required for it.
		result.AddError(fmt.Sprintf("calendar fetch failed: %v", err))
	} else {
		added += builder.AddCalendarEvents(calendarEvents)
	}

	if err := u.repo.Thread().PutAll(ctx, opts.UserID, threads); err != nil {
		return goerr.Wrap(err, "failed to persist threads", goerr.V("user_id", opts.UserID))
	}
	if err := registry.SaveAll(ctx, opts.UserID); err != nil {
		return err
	}
	if err := builder.Save(ctx); err != nil {
		return err
	}

	snapshot := u.computeSnapshot(opts.UserID, threads, builder)
	if err := u.repo.Metrics().PutSnapshot(ctx, snapshot); err != nil {
		return goerr.Wrap(err, "failed to persist metrics snapshot",
			goerr.V("user_id", opts.UserID), goerr.V("date", snapshot.Date))
	}

	result.Success = true
	result.ThreadsProcessed = len(threads)
	result.ContactsProcessed = registry.Count()
	result.TimelineEvents = added

	logger.Info("analytics pipeline completed",
		"user_id", opts.UserID,
		"run_id", result.RunID,
		"mode", result.Mode,
		"threads", result.ThreadsProcessed,
		"contacts", result.ContactsProcessed,
		"timeline_events", result.TimelineEvents,
		"skipped", len(result.Errors),
	)

	return nil
}

// computeSnapshot derives today's metrics from the reconstructed threads and
// the loaded timeline.
func (u *AnalyticsUseCase) computeSnapshot(userID types.UserID, threads []*model.Thread, builder *timeline.Builder) *model.MetricsSnapshot {
	now := u.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	decayRate := 0.0
	if len(threads) > 0 {
		ended := 0
		for _, th := range threads {
			if th.UserSentLast {
				ended++
			}
		}
		decayRate = float64(ended) / float64(len(threads))
	}

	return &model.MetricsSnapshot{
		UserID:          userID,
		Date:            now.Format(model.MetricsDateFormat),
		ThreadDecayRate: decayRate,
		ContextSwitches: builder.ContextSwitches(dayStart, dayStart.AddDate(0, 0, 1)),
		LoadByHour:      builder.CognitiveLoadByHour(now),
		TimeByContext:   builder.TimeByContext(),
		CreatedAt:       now,
	}
}
