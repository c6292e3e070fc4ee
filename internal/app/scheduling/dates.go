package scheduling

import (
	"regexp"
	"strings"
	"time"
)

// DateHint is what we could read out of free-form user text: maybe a target
// day, and whether the user mentioned any time of day at all.
type DateHint struct {
	Date    time.Time
	HasDate bool
	HasTime bool
}

var amPmPattern = regexp.MustCompile(`\d+\s*(am|pm)`)

var weekdayNames = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// ParseDateHint scans text for relative date keywords: "tomorrow",
// "next week", or a weekday name. Matching is case-insensitive substring,
// first match wins. Weekday names resolve to the next occurrence, never
// today. The reference instant supplies "today" at midnight UTC.
func ParseDateHint(text string, now time.Time) DateHint {
	lower := strings.ToLower(text)
	today := now.UTC().Truncate(24 * time.Hour)

	var hint DateHint

	switch {
	case strings.Contains(lower, "tomorrow"):
		hint.Date = today.AddDate(0, 0, 1)
		hint.HasDate = true
	case strings.Contains(lower, "next week"):
		hint.Date = today.AddDate(0, 0, 7)
		hint.HasDate = true
	default:
		for i, name := range weekdayNames {
			if !strings.Contains(lower, name) {
				continue
			}
			daysAhead := (i - int(today.Weekday()) + 7) % 7
			if daysAhead == 0 {
				daysAhead = 7
			}
			hint.Date = today.AddDate(0, 0, daysAhead)
			hint.HasDate = true
			break
		}
	}

	if strings.Contains(lower, "morning") || strings.Contains(lower, "am") || amPmPattern.MatchString(lower) {
		hint.HasTime = true
	} else if strings.Contains(lower, "afternoon") || strings.Contains(lower, "evening") || strings.Contains(lower, "pm") {
		hint.HasTime = true
	}

	return hint
}

// Window is the inclusive day range to check for availability.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow covers today at 00:00 UTC through the end of the seventh
// day. When the user's text carries a date hint the window narrows to that
// single day.
func DefaultWindow(text string, now time.Time) Window {
	start := now.UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 7).Add(24*time.Hour - time.Second)

	if hint := ParseDateHint(text, now); hint.HasDate {
		start = hint.Date
		end = hint.Date.Add(24*time.Hour - time.Second)
	}

	return Window{Start: start, End: end}
}
