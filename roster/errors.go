/*
errors.go - Centralized error types for the roster model

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every engine error is an input-validation failure: it is raised
  synchronously and aborts the single operation that produced it.

ERROR CATEGORIES:
  1. Time errors - "HH:MM[:SS]" boundaries that do not parse
  2. Date errors - day-of-month out of range, malformed ISO dates / week ids
  3. Store errors - persistence lookups

USAGE:
  Callers match on sentinels or unwrap the structured error:

    if errors.Is(err, roster.ErrInvalidTimeFormat) {
        var tfe *roster.TimeFormatError
        errors.As(err, &tfe)
        log.Printf("bad boundary %q", tfe.Raw)
    }

SEE ALSO:
  - time.go: Raises TimeFormatError
  - week.go: Raises DateError, DayOfMonthError
*/
package roster

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned when a shift boundary is not a valid
	// 24-hour "HH:MM" or "HH:MM:SS" string.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidDayOfMonth is returned when a day number does not exist in
	// the given month/year (e.g. February 30).
	ErrInvalidDayOfMonth = errors.New("invalid day of month")

	// ErrInvalidDate is returned when a date or week id cannot be parsed or
	// is internally inconsistent (a week id that is not a Sunday).
	ErrInvalidDate = errors.New("invalid date")

	// ErrImportNotFound is returned when a referenced import run doesn't exist.
	ErrImportNotFound = errors.New("import run not found")

	// ErrDuplicateImport is returned when an import run id is recorded twice.
	ErrDuplicateImport = errors.New("import run already recorded")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeFormatError reports the raw boundary string that failed to parse.
type TimeFormatError struct {
	Raw string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time format: %q (want HH:MM or HH:MM:SS)", e.Raw)
}

func (e *TimeFormatError) Unwrap() error {
	return ErrInvalidTimeFormat
}

// DayOfMonthError reports a day number outside the month's range.
type DayOfMonthError struct {
	Year  int
	Month time.Month
	Day   int
}

func (e *DayOfMonthError) Error() string {
	return fmt.Sprintf("invalid day of month: %d for %04d-%02d (month has %d days)",
		e.Day, e.Year, int(e.Month), DaysInMonth(e.Year, e.Month))
}

func (e *DayOfMonthError) Unwrap() error {
	return ErrInvalidDayOfMonth
}

// DateError reports a date or week id that could not be used.
type DateError struct {
	Value  string
	Reason string
}

func (e *DateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid date: %q", e.Value)
	}
	return fmt.Sprintf("invalid date: %q: %s", e.Value, e.Reason)
}

func (e *DateError) Unwrap() error {
	return ErrInvalidDate
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidDayOfMonth) ||
		errors.Is(err, ErrInvalidDate)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrImportNotFound)
}
