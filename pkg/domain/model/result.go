package model

import (
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// Result is the structured outcome of one pipeline pass for a single user.
// It is the only failure surface the orchestrator exposes: fatal errors are
// captured here, never propagated as panics or unhandled errors.
type Result struct {
	UserID            types.UserID
	RunID             string
	Mode              types.RunMode
	Success           bool
	ThreadsProcessed  int
	ContactsProcessed int
	TimelineEvents    int
	// Errors collects non-fatal per-record failures and, on Success=false,
	// the fatal error that aborted the pipeline.
	Errors []string
	// Notes carries informational messages such as "no messages found".
	Notes         []string
	ElapsedMillis int64
}

// AddError records a non-fatal error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddNote records an informational note.
func (r *Result) AddNote(msg string) {
	r.Notes = append(r.Notes, msg)
}
