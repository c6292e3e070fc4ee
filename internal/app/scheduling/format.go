package scheduling

import (
	"strings"
	"time"
)

const noSlotsMessage = "I don't see any available slots in that time range. Would you like me to check a different date or time?"

// FormatSlots renders slot starts the way the assistant presents them:
// grouped by calendar date, bulleted 12-hour times, dates in encounter
// order.
func FormatSlots(slots []time.Time) string {
	if len(slots) == 0 {
		return noSlotsMessage
	}

	var order []string
	byDate := make(map[string][]string)
	for _, s := range slots {
		s = s.UTC()
		dateKey := s.Format("Monday, January 2")
		if _, seen := byDate[dateKey]; !seen {
			order = append(order, dateKey)
		}
		byDate[dateKey] = append(byDate[dateKey], formatClock(s))
	}

	var b strings.Builder
	b.WriteString("I found these available 30-minute slots:\n\n")
	for _, date := range order {
		b.WriteString("**" + date + ":**\n")
		for _, t := range byDate[date] {
			b.WriteString("  • " + t + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Which time works best for you? Just let me know the date and time you prefer.")
	return b.String()
}

// formatClock renders 12-hour time without a leading zero, e.g. "9:00 AM".
func formatClock(t time.Time) string {
	return t.Format("3:04 PM")
}
