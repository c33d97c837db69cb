package reconcile

import (
	"strings"
	"time"

	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// RAW ENTRIES - Extraction output before normalization
// =============================================================================

// RawEntry is one extracted day/time row. A zero Day or an empty boundary
// means the extractor did not produce that field.
type RawEntry struct {
	Day   int
	Start string
	End   string
}

func (e RawEntry) incomplete() bool {
	return e.Day == 0 || strings.TrimSpace(e.Start) == "" || strings.TrimSpace(e.End) == ""
}

// Collision records a later entry overwriting an earlier one in the same
// slot. The replacement is what ends up in the schedule.
type Collision struct {
	Date        time.Time
	Slot        roster.Slot
	Previous    roster.Assignment
	Replacement roster.Assignment
}

// BuildResult is a normalized external schedule plus what was dropped or
// overwritten on the way.
type BuildResult struct {
	Schedule   roster.Schedule
	Collisions []Collision
	Skipped    int
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder turns raw extracted entries for one employee and month into a
// Schedule.
type Builder struct {
	Policy WorkWeek
}

func NewBuilder() *Builder {
	return &Builder{Policy: DefaultWorkWeek()}
}

// Build normalizes every complete entry: the date is resolved against
// month/year, the boundaries are parsed and ordered, and the slot is
// classified from the start hour. Incomplete entries are skipped.
// Out-of-range days and malformed boundaries abort the build.
func (b *Builder) Build(entries []RawEntry, month time.Month, year int, employeeID string) (BuildResult, error) {
	result := BuildResult{Schedule: roster.Schedule{}}

	for _, e := range entries {
		if e.incomplete() {
			result.Skipped++
			continue
		}

		date, err := roster.DateOf(year, month, e.Day)
		if err != nil {
			return BuildResult{}, err
		}

		start, err := roster.ParseTimeOfDay(strings.TrimSpace(e.Start))
		if err != nil {
			return BuildResult{}, err
		}
		end, err := roster.ParseTimeOfDay(strings.TrimSpace(e.End))
		if err != nil {
			return BuildResult{}, err
		}
		start, end = roster.OrderPair(start, end)

		slot := b.Policy.Classify(start)
		a := roster.Assignment{EmployeeID: employeeID, Start: start, End: end}

		if prev, ok := result.Schedule.Get(date, slot); ok {
			result.Collisions = append(result.Collisions, Collision{
				Date:        date,
				Slot:        slot,
				Previous:    prev,
				Replacement: a,
			})
		}
		result.Schedule.Set(date, slot, a)
	}

	return result, nil
}

// Build is Builder.Build with the default work week, returning only the
// schedule.
func Build(entries []RawEntry, month time.Month, year int, employeeID string) (roster.Schedule, error) {
	result, err := NewBuilder().Build(entries, month, year, employeeID)
	if err != nil {
		return nil, err
	}
	return result.Schedule, nil
}
