package roster

import (
	"fmt"
	"time"
)

// =============================================================================
// DATES - ISO calendar dates, always UTC midnight
// =============================================================================

// DateLayout is the ISO 8601 calendar date layout used on every boundary.
const DateLayout = "2006-01-02"

// NewDate returns midnight UTC of the given calendar day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf validates day against the month's length and returns the date.
func DateOf(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, &DateError{Value: fmt.Sprintf("%04d-%02d", year, int(month)), Reason: "month out of range"}
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, &DayOfMonthError{Year: year, Month: month, Day: day}
	}
	return NewDate(year, month, day), nil
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &DateError{Value: s, Reason: "want YYYY-MM-DD"}
	}
	return t, nil
}

// FormatDate renders a date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

// MonthKey returns the "YYYY-MM" bucket of a date.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// =============================================================================
// WEEK ID - The Sunday that begins a calendar week
// =============================================================================

// WeekID identifies a calendar week by the ISO date of its Sunday.
type WeekID string

// WeekOf returns the id of the week containing t: the Sunday on or before t.
// WeekOf is idempotent on Sundays.
func WeekOf(t time.Time) WeekID {
	day := NewDate(t.Year(), t.Month(), t.Day())
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	return WeekID(FormatDate(sunday))
}

// Start parses the week id back to its Sunday. A malformed id, or one
// that does not fall on a Sunday, is an ErrInvalidDate.
func (w WeekID) Start() (time.Time, error) {
	t, err := ParseDate(string(w))
	if err != nil {
		return time.Time{}, err
	}
	if t.Weekday() != time.Sunday {
		return time.Time{}, &DateError{Value: string(w), Reason: "week id must be a Sunday"}
	}
	return t, nil
}

// Days returns the seven dates of the week, Sunday first.
func (w WeekID) Days() ([]time.Time, error) {
	start, err := w.Start()
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days, nil
}

func (w WeekID) String() string { return string(w) }
