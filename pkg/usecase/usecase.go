package usecase

import (
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/service/threader"
	"github.com/inboxpulse/inboxpulse/pkg/service/timeline"
)

type UseCases struct {
	repo      interfaces.Repository
	Analytics *AnalyticsUseCase
}

type Option func(*UseCases)

// WithWorkingHours overrides the default 9-17 weekday calendar used for
// response-time flagging.
func WithWorkingHours(hours threader.WorkingHours) Option {
	return func(uc *UseCases) {
		uc.Analytics.workingHours = &hours
	}
}

// WithContextRules installs custom context classification rules for the
// timeline.
func WithContextRules(rules []timeline.ContextRule) Option {
	return func(uc *UseCases) {
		uc.Analytics.rules = rules
	}
}

// WithoutSubjectGuard disables the shared-participant requirement on
// subject-based thread matching.
func WithoutSubjectGuard() Option {
	return func(uc *UseCases) {
		uc.Analytics.subjectGuard = false
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.Analytics.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		Analytics: newAnalyticsUseCase(repo),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
