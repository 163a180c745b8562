package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/inboxpulse/inboxpulse/pkg/service/threader"
	"github.com/inboxpulse/inboxpulse/pkg/service/timeline"
	"github.com/inboxpulse/inboxpulse/pkg/usecase"
)

// Analytics holds CLI flags and the optional TOML file that tune the
// pipeline: working-hours calendar, context classification rules, and the
// subject-matching mode.
type Analytics struct {
	configPath        string
	daysBack          int
	permissiveSubject bool

	file analyticsFile
}

type analyticsFile struct {
	WorkingHours workingHoursConfig  `toml:"working_hours"`
	ContextRules []contextRuleConfig `toml:"context_rules"`
}

type workingHoursConfig struct {
	Start    int    `toml:"start"`
	End      int    `toml:"end"`
	Timezone string `toml:"timezone"`
}

type contextRuleConfig struct {
	Match   string `toml:"match"`
	Context string `toml:"context"`
}

func (x *Analytics) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "analytics-config",
			Usage:       "Path to analytics configuration file (TOML)",
			Category:    "Analytics",
			Sources:     cli.EnvVars("INBOXPULSE_ANALYTICS_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.IntFlag{
			Name:        "days-back",
			Usage:       "How many days of cached messages to process",
			Category:    "Analytics",
			Value:       30,
			Sources:     cli.EnvVars("INBOXPULSE_DAYS_BACK"),
			Destination: &x.daysBack,
		},
		&cli.BoolFlag{
			Name:        "permissive-subject-match",
			Usage:       "Merge threads on subject alone, without requiring a shared participant",
			Category:    "Analytics",
			Sources:     cli.EnvVars("INBOXPULSE_PERMISSIVE_SUBJECT_MATCH"),
			Destination: &x.permissiveSubject,
		},
	}
}

// DaysBack returns the configured message window bound
func (x *Analytics) DaysBack() int {
	return x.daysBack
}

// Configure loads and validates the TOML file (when given) and returns the
// pipeline options it encodes.
func (x *Analytics) Configure() ([]usecase.Option, error) {
	var opts []usecase.Option

	if x.permissiveSubject {
		opts = append(opts, usecase.WithoutSubjectGuard())
	}

	if x.configPath == "" {
		return opts, nil
	}

	raw, err := os.ReadFile(x.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "analytics config",
				goerr.V(ConfigPathKey, x.configPath))
		}
		return nil, goerr.Wrap(err, "failed to read analytics config",
			goerr.V(ConfigPathKey, x.configPath))
	}

	if err := toml.Unmarshal(raw, &x.file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse analytics config",
			goerr.V(ConfigPathKey, x.configPath), goerr.V("parse_error", err.Error()))
	}

	if err := x.validate(); err != nil {
		return nil, err
	}

	if wh := x.file.WorkingHours; wh.Start != 0 || wh.End != 0 {
		loc := time.UTC
		if wh.Timezone != "" {
			loc, err = time.LoadLocation(wh.Timezone)
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidWorkingHours, "unknown timezone",
					goerr.V("timezone", wh.Timezone))
			}
		}
		opts = append(opts, usecase.WithWorkingHours(threader.WorkingHours{
			StartHour: wh.Start,
			EndHour:   wh.End,
			Location:  loc,
		}))
	}

	if len(x.file.ContextRules) > 0 {
		rules := make([]timeline.ContextRule, len(x.file.ContextRules))
		for i, r := range x.file.ContextRules {
			rules[i] = timeline.ContextRule{Match: r.Match, Context: r.Context}
		}
		opts = append(opts, usecase.WithContextRules(rules))
	}

	return opts, nil
}

func (x *Analytics) validate() error {
	wh := x.file.WorkingHours
	if wh.Start != 0 || wh.End != 0 {
		if wh.Start < 0 || wh.End > 24 || wh.Start >= wh.End {
			return goerr.Wrap(ErrInvalidWorkingHours, "working hours must satisfy 0 <= start < end <= 24",
				goerr.V("start", wh.Start), goerr.V("end", wh.End))
		}
	}

	for i, r := range x.file.ContextRules {
		if r.Match == "" || r.Context == "" {
			return goerr.Wrap(ErrInvalidContextRule, "match and context are required",
				goerr.V(RuleIndexKey, i))
		}
	}

	return nil
}
