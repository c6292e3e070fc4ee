package scheduling_test

import (
	"testing"
	"time"

	"github.com/lacura/lacura-api/internal/app/scheduling"
)

// Monday, 2024-11-04 at noon.
var reference = time.Date(2024, time.November, 4, 12, 0, 0, 0, time.UTC)

func TestParseDateHintTomorrow(t *testing.T) {
	hint := scheduling.ParseDateHint("Can we do tomorrow afternoon?", reference)

	if !hint.HasDate {
		t.Fatal("expected a date hint")
	}
	if want := time.Date(2024, time.November, 5, 0, 0, 0, 0, time.UTC); !hint.Date.Equal(want) {
		t.Errorf("expected %v, got %v", want, hint.Date)
	}
	if !hint.HasTime {
		t.Error("\"afternoon\" should register as a time hint")
	}
}

func TestParseDateHintWeekdayNextOccurrence(t *testing.T) {
	// Asking for Monday on a Monday means next Monday, not today.
	hint := scheduling.ParseDateHint("monday works for me", reference)

	if !hint.HasDate {
		t.Fatal("expected a date hint")
	}
	if want := time.Date(2024, time.November, 11, 0, 0, 0, 0, time.UTC); !hint.Date.Equal(want) {
		t.Errorf("expected next Monday %v, got %v", want, hint.Date)
	}
}

func TestParseDateHintNextWeek(t *testing.T) {
	hint := scheduling.ParseDateHint("Sometime next week?", reference)

	if !hint.HasDate {
		t.Fatal("expected a date hint")
	}
	if want := time.Date(2024, time.November, 11, 0, 0, 0, 0, time.UTC); !hint.Date.Equal(want) {
		t.Errorf("expected %v, got %v", want, hint.Date)
	}
}

func TestParseDateHintNone(t *testing.T) {
	hint := scheduling.ParseDateHint("I'd like to book an appointment", reference)

	if hint.HasDate {
		t.Errorf("expected no date hint, got %v", hint.Date)
	}
}

func TestDefaultWindowSevenDays(t *testing.T) {
	w := scheduling.DefaultWindow("show me some times", reference)

	if want := time.Date(2024, time.November, 4, 0, 0, 0, 0, time.UTC); !w.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, w.Start)
	}
	if want := time.Date(2024, time.November, 11, 23, 59, 59, 0, time.UTC); !w.End.Equal(want) {
		t.Errorf("expected end %v, got %v", want, w.End)
	}
}

func TestDefaultWindowNarrowsOnDateHint(t *testing.T) {
	w := scheduling.DefaultWindow("how about tomorrow", reference)

	if want := time.Date(2024, time.November, 5, 0, 0, 0, 0, time.UTC); !w.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, w.Start)
	}
	if want := time.Date(2024, time.November, 5, 23, 59, 59, 0, time.UTC); !w.End.Equal(want) {
		t.Errorf("expected end %v, got %v", want, w.End)
	}
}
