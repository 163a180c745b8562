package threader

import "time"

// WorkingHours describes the weekday window used for the working-hours
// response-time variant. The calendar is fixed per configuration; messages
// are not normalized to per-sender timezones.
type WorkingHours struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// DefaultWorkingHours is Monday-Friday 09:00-17:00 in the given location.
func DefaultWorkingHours(loc *time.Location) WorkingHours {
	if loc == nil {
		loc = time.Local
	}
	return WorkingHours{StartHour: 9, EndHour: 17, Location: loc}
}

// Contains reports whether t falls inside the working window.
func (w WorkingHours) Contains(t time.Time) bool {
	lt := t.In(w.location())
	switch lt.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := lt.Hour()
	return h >= w.StartHour && h < w.EndHour
}

// HoursBetween counts the working hours between start and end by stepping
// hour-by-hour, giving a fairer cross-user turnaround than wall-clock
// latency.
func (w WorkingHours) HoursBetween(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}

	var hours float64
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		step := time.Hour
		if remaining := end.Sub(t); remaining < step {
			step = remaining
		}
		if w.Contains(t) {
			hours += step.Hours()
		}
	}
	return hours
}

func (w WorkingHours) location() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}
