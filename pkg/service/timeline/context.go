package timeline

import (
	"strings"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
)

const (
	ContextInternal = "internal"
	ContextExternal = "external"
	ContextMeeting  = "meeting"
)

// ContextRule maps a substring match to a context label. Email events match
// against the counterpart's address, calendar events against the title.
type ContextRule struct {
	Match   string
	Context string
}

// Classifier assigns a context label to each timeline event. Without custom
// rules, email events split into internal/external by the counterpart's
// domain relative to the user's own.
type Classifier struct {
	userDomain string
	rules      []ContextRule
}

func NewClassifier(userEmail string, rules []ContextRule) *Classifier {
	domain := ""
	if i := strings.LastIndex(userEmail, "@"); i >= 0 {
		domain = strings.ToLower(userEmail[i+1:])
	}
	return &Classifier{userDomain: domain, rules: rules}
}

// ClassifyMessage labels an email event by its counterpart: the sender for
// received mail, the first recipient for sent mail.
func (c *Classifier) ClassifyMessage(msg *model.Message, sentByUser bool) string {
	counterpart := msg.From
	if sentByUser && len(msg.To) > 0 {
		counterpart = msg.To[0]
	}
	counterpart = strings.ToLower(strings.TrimSpace(counterpart))

	for _, r := range c.rules {
		if strings.Contains(counterpart, strings.ToLower(r.Match)) {
			return r.Context
		}
	}

	if c.userDomain != "" && strings.HasSuffix(counterpart, "@"+c.userDomain) {
		return ContextInternal
	}
	return ContextExternal
}

// ClassifyCalendar labels a calendar event, preferring the label carried on
// the event itself.
func (c *Classifier) ClassifyCalendar(ev *model.CalendarEvent) string {
	if ev.Context != "" {
		return ev.Context
	}
	title := strings.ToLower(ev.Title)
	for _, r := range c.rules {
		if strings.Contains(title, strings.ToLower(r.Match)) {
			return r.Context
		}
	}
	return ContextMeeting
}
