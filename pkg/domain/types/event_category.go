package types

import "fmt"

// EventCategory classifies a timeline event. A transition between
// differently-categorized consecutive events counts as a context switch.
type EventCategory string

const (
	EventCategoryEmailSent     EventCategory = "email_sent"
	EventCategoryEmailReceived EventCategory = "email_received"
	EventCategoryMeeting       EventCategory = "meeting"
)

// AllEventCategories returns all valid event categories
func AllEventCategories() []EventCategory {
	return []EventCategory{
		EventCategoryEmailSent,
		EventCategoryEmailReceived,
		EventCategoryMeeting,
	}
}

// IsValid checks if the event category is valid
func (c EventCategory) IsValid() bool {
	switch c {
	case EventCategoryEmailSent,
		EventCategoryEmailReceived,
		EventCategoryMeeting:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event category
func (c EventCategory) String() string {
	return string(c)
}

// ParseEventCategory parses a string into an EventCategory
func ParseEventCategory(s string) (EventCategory, error) {
	category := EventCategory(s)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid event category: %s", s)
	}
	return category, nil
}
