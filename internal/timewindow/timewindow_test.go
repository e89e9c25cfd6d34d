package timewindow

import (
	"testing"
	"time"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := New("America/New_York", "06:00", "Friday", "17:00", "Friday")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return calc
}

func mustParse(t *testing.T, value string, loc *time.Location) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", value, err)
	}
	return parsed
}

func TestTodayKey(t *testing.T) {
	calc := newTestCalculator(t)

	// 2024-03-12 03:30 UTC is still 2024-03-11 in New York
	now := time.Date(2024, 3, 12, 3, 30, 0, 0, time.UTC)
	if got := calc.TodayKey(now); got != "2024-03-11" {
		t.Errorf("TodayKey() = %v, want 2024-03-11", got)
	}

	// Later the same UTC day it rolls over
	now = time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)
	if got := calc.TodayKey(now); got != "2024-03-12" {
		t.Errorf("TodayKey() = %v, want 2024-03-12", got)
	}
}

func TestNextDailyTrigger(t *testing.T) {
	calc := newTestCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name     string
		now      string
		expected string
	}{
		{
			name:     "before trigger fires today",
			now:      "2024-03-11 05:00",
			expected: "2024-03-11 06:00",
		},
		{
			name:     "after trigger fires tomorrow",
			now:      "2024-03-11 06:30",
			expected: "2024-03-12 06:00",
		},
		{
			name:     "exactly at trigger fires tomorrow",
			now:      "2024-03-11 06:00",
			expected: "2024-03-12 06:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustParse(t, tt.now, loc)
			expected := mustParse(t, tt.expected, loc)
			got := calc.NextDailyTrigger(now)
			if !got.Equal(expected) {
				t.Errorf("NextDailyTrigger() = %v, want %v", got, expected)
			}
			if !got.After(now) {
				t.Error("NextDailyTrigger() must be strictly after now")
			}
		})
	}
}

func TestNextWeeklyTrigger(t *testing.T) {
	calc := newTestCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name     string
		now      string
		expected string
	}{
		{
			// 2024-03-11 is a Monday
			name:     "mid-week scans forward to Friday",
			now:      "2024-03-11 12:00",
			expected: "2024-03-15 17:00",
		},
		{
			// 2024-03-15 is a Friday
			name:     "Friday before the trigger fires same day",
			now:      "2024-03-15 10:00",
			expected: "2024-03-15 17:00",
		},
		{
			name:     "Friday after the trigger fires next week",
			now:      "2024-03-15 18:00",
			expected: "2024-03-22 17:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustParse(t, tt.now, loc)
			expected := mustParse(t, tt.expected, loc)
			got := calc.NextWeeklyTrigger(now)
			if !got.Equal(expected) {
				t.Errorf("NextWeeklyTrigger() = %v, want %v", got, expected)
			}
		})
	}
}

func TestWeekWindow(t *testing.T) {
	calc := newTestCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name          string
		now           string
		expectedStart string
		expectedEnd   string
	}{
		{
			// Monday 2024-03-11: most recent Friday is 03-08
			name:          "Monday looks back to last Friday",
			now:           "2024-03-11 12:00",
			expectedStart: "2024-03-02",
			expectedEnd:   "2024-03-08",
		},
		{
			// Friday counts as its own week end
			name:          "Friday ends its own window",
			now:           "2024-03-15 12:00",
			expectedStart: "2024-03-09",
			expectedEnd:   "2024-03-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustParse(t, tt.now, loc)
			start, end := calc.WeekWindow(now)
			if start != tt.expectedStart || end != tt.expectedEnd {
				t.Errorf("WeekWindow() = [%v, %v], want [%v, %v]", start, end, tt.expectedStart, tt.expectedEnd)
			}
		})
	}
}

func TestStartOfNextDay(t *testing.T) {
	calc := newTestCalculator(t)
	loc := calc.Location()

	now := mustParse(t, "2024-03-11 15:30", loc)
	got := calc.StartOfNextDay(now)
	expected := mustParse(t, "2024-03-12 00:00", loc)
	if !got.Equal(expected) {
		t.Errorf("StartOfNextDay() = %v, want %v", got, expected)
	}
}

func TestDayIndex(t *testing.T) {
	idx, err := DayIndex("1970-01-01")
	if err != nil {
		t.Fatalf("DayIndex() failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("DayIndex(epoch) = %d, want 0", idx)
	}

	a, _ := DayIndex("2024-03-11")
	b, _ := DayIndex("2024-03-12")
	if b != a+1 {
		t.Errorf("consecutive days should have consecutive indices: %d then %d", a, b)
	}

	if _, err := DayIndex("not-a-date"); err == nil {
		t.Error("DayIndex() should fail on malformed input")
	}
}

func TestDateKeysBetween(t *testing.T) {
	keys, err := DateKeysBetween("2024-03-09", "2024-03-15")
	if err != nil {
		t.Fatalf("DateKeysBetween() failed: %v", err)
	}
	if len(keys) != 7 {
		t.Fatalf("expected 7 keys in a week window, got %d", len(keys))
	}
	if keys[0] != "2024-03-09" || keys[6] != "2024-03-15" {
		t.Errorf("unexpected bounds: %v ... %v", keys[0], keys[6])
	}

	keys, err = DateKeysBetween("2024-03-15", "2024-03-09")
	if err != nil {
		t.Fatalf("DateKeysBetween() failed: %v", err)
	}
	if keys != nil {
		t.Errorf("inverted range should yield nil, got %v", keys)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Weekday
		wantErr  bool
	}{
		{"Friday", time.Friday, false},
		{"friday", time.Friday, false},
		{"FRI", time.Friday, false},
		{"Mon", time.Monday, false},
		{"Noday", time.Sunday, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeekday(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseWeekday(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWeekday(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
