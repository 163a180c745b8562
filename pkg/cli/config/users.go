package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// User pairs a user ID with the mailbox address owned by that user.
type User struct {
	ID    types.UserID
	Email string
}

// Users holds the --user flags, each in "userID=email" form.
type Users struct {
	specs []string
}

func (x *Users) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "user",
			Usage:       "User to process, as 'userID=email'. Repeatable.",
			Category:    "Analytics",
			Sources:     cli.EnvVars("INBOXPULSE_USERS"),
			Destination: &x.specs,
		},
	}
}

// Configure parses the collected specs. At least one user is required.
func (x *Users) Configure() ([]User, error) {
	if len(x.specs) == 0 {
		return nil, goerr.Wrap(ErrInvalidUserSpec, "at least one --user is required")
	}

	users := make([]User, 0, len(x.specs))
	for _, spec := range x.specs {
		id, email, ok := strings.Cut(spec, "=")
		id = strings.TrimSpace(id)
		email = strings.TrimSpace(email)
		if !ok || id == "" || email == "" || !strings.Contains(email, "@") {
			return nil, goerr.Wrap(ErrInvalidUserSpec, "expected 'userID=email'",
				goerr.V(UserSpecKey, spec))
		}
		users = append(users, User{ID: types.UserID(id), Email: email})
	}

	return users, nil
}
