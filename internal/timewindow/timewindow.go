package timewindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKeyFormat is the canonical calendar-date key used across the engine.
// Every per-day row (daily events, ledger caps, attendance) is keyed by a
// date string in the configured zone, never in the host zone.
const DateKeyFormat = "2006-01-02"

// Calculator computes timezone-correct calendar dates and the next
// occurrence of the two recurring triggers (daily spawn, weekly evaluation).
// All results are deterministic given the input instant; the calculator
// itself holds no mutable state.
type Calculator struct {
	loc          *time.Location
	dailyHour    int
	dailyMinute  int
	weeklyDay    time.Weekday
	weeklyHour   int
	weeklyMinute int
	weekEndDay   time.Weekday
}

// New builds a Calculator from an IANA zone name, a daily "HH:MM" trigger,
// a weekly weekday-name + "HH:MM" trigger, and the weekday the trailing
// score window ends on.
func New(zone, dailyTime, weeklyDay, weeklyTime, weekEndDay string) (*Calculator, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", zone, err)
	}

	dh, dm, err := parseClock(dailyTime)
	if err != nil {
		return nil, fmt.Errorf("invalid daily trigger time: %w", err)
	}

	wd, err := ParseWeekday(weeklyDay)
	if err != nil {
		return nil, fmt.Errorf("invalid weekly trigger day: %w", err)
	}

	wh, wm, err := parseClock(weeklyTime)
	if err != nil {
		return nil, fmt.Errorf("invalid weekly trigger time: %w", err)
	}

	we, err := ParseWeekday(weekEndDay)
	if err != nil {
		return nil, fmt.Errorf("invalid week-end day: %w", err)
	}

	return &Calculator{
		loc:          loc,
		dailyHour:    dh,
		dailyMinute:  dm,
		weeklyDay:    wd,
		weeklyHour:   wh,
		weeklyMinute: wm,
		weekEndDay:   we,
	}, nil
}

// Location returns the calculator's fixed timezone
func (c *Calculator) Location() *time.Location {
	return c.loc
}

// TodayKey returns the calendar date of now in the fixed timezone
func (c *Calculator) TodayKey(now time.Time) string {
	return now.In(c.loc).Format(DateKeyFormat)
}

// NextDailyTrigger returns the next instant at the configured daily
// wall-clock time, strictly after now: today if the time has not passed
// yet, otherwise tomorrow.
func (c *Calculator) NextDailyTrigger(now time.Time) time.Time {
	local := now.In(c.loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), c.dailyHour, c.dailyMinute, 0, 0, c.loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// NextWeeklyTrigger returns the next instant matching the configured
// weekday and wall-clock time, strictly after now. The forward scan is
// bounded to 8 days so it always terminates.
func (c *Calculator) NextWeeklyTrigger(now time.Time) time.Time {
	local := now.In(c.loc)
	var candidate time.Time
	for i := 0; i <= 8; i++ {
		day := local.AddDate(0, 0, i)
		candidate = time.Date(day.Year(), day.Month(), day.Day(), c.weeklyHour, c.weeklyMinute, 0, 0, c.loc)
		if candidate.Weekday() == c.weeklyDay && candidate.After(now) {
			return candidate
		}
	}
	return candidate
}

// WeekWindow returns the trailing 7-day window [start, end], both inclusive
// date keys in the fixed timezone, with end on the most recent occurrence
// of the configured week-end weekday (today counts).
func (c *Calculator) WeekWindow(now time.Time) (start, end string) {
	local := now.In(c.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	for day.Weekday() != c.weekEndDay {
		day = day.AddDate(0, 0, -1)
	}
	end = day.Format(DateKeyFormat)
	start = day.AddDate(0, 0, -6).Format(DateKeyFormat)
	return start, end
}

// StartOfNextDay returns midnight at the start of tomorrow in the fixed
// timezone. Used as the claim window bound for daily events.
func (c *Calculator) StartOfNextDay(now time.Time) time.Time {
	local := now.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc).AddDate(0, 0, 1)
}

// DayIndex returns the number of whole days between the Unix epoch and the
// given date key. The index is computed in UTC so the same key always maps
// to the same index regardless of the configured zone.
func DayIndex(dateKey string) (int, error) {
	t, err := time.Parse(DateKeyFormat, dateKey)
	if err != nil {
		return 0, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}
	return int(t.Unix() / 86400), nil
}

// DateKeysBetween returns every date key from start to end inclusive.
// Returns nil when start is after end.
func DateKeysBetween(start, end string) ([]string, error) {
	from, err := time.Parse(DateKeyFormat, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start key %q: %w", start, err)
	}
	to, err := time.Parse(DateKeyFormat, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end key %q: %w", end, err)
	}

	var keys []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(DateKeyFormat))
	}
	return keys, nil
}

// ParseWeekday converts a weekday name (full or three-letter, any case)
// to a time.Weekday
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := d.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}

// parseClock parses an "HH:MM" wall-clock string
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
