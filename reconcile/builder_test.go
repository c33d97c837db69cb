package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-reconciler/reconcile"
	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// January 2024: the 7th is a Sunday.
var (
	sun = roster.NewDate(2024, time.January, 7)
	mon = roster.NewDate(2024, time.January, 8)
	tue = roster.NewDate(2024, time.January, 9)
	wed = roster.NewDate(2024, time.January, 10)
	thu = roster.NewDate(2024, time.January, 11)
	fri = roster.NewDate(2024, time.January, 12)
	sat = roster.NewDate(2024, time.January, 13)
)

func at(employee, start, end string) roster.Assignment {
	return roster.Assignment{
		EmployeeID: employee,
		Start:      roster.MustParseTimeOfDay(start),
		End:        roster.MustParseTimeOfDay(end),
	}
}

func schedule(entries ...roster.Shift) roster.Schedule {
	return roster.FromShifts(entries)
}

func morning(date time.Time, a roster.Assignment) roster.Shift {
	return roster.Shift{Date: date, Slot: roster.SlotMorning, Assignment: a}
}

func evening(date time.Time, a roster.Assignment) roster.Shift {
	return roster.Shift{Date: date, Slot: roster.SlotEvening, Assignment: a}
}

// =============================================================================
// BUILDER TESTS
// =============================================================================

func TestBuild_NormalizesEntries(t *testing.T) {
	// GIVEN: Extracted rows for employee A in January 2024
	// WHEN: Building the external schedule
	// THEN: Each row lands at its date and classified slot

	entries := []reconcile.RawEntry{
		{Day: 8, Start: "07:00", End: "16:00"},
		{Day: 9, Start: "13:00", End: "22:00"},
	}

	s, err := reconcile.Build(entries, time.January, 2024, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get(mon, roster.SlotMorning)
	require.True(t, ok)
	assert.Equal(t, at("A", "07:00:00", "16:00:00"), got)

	got, ok = s.Get(tue, roster.SlotEvening)
	require.True(t, ok)
	assert.Equal(t, at("A", "13:00:00", "22:00:00"), got)
}

func TestBuild_SwapsReversedBoundaries(t *testing.T) {
	// GIVEN: OCR read the end column before the start column
	// THEN: The pair is swapped and classified by the real start

	s, err := reconcile.Build([]reconcile.RawEntry{
		{Day: 9, Start: "22:00", End: "13:00"},
	}, time.January, 2024, "A")
	require.NoError(t, err)

	got, ok := s.Get(tue, roster.SlotEvening)
	require.True(t, ok)
	assert.Equal(t, roster.NewTimeOfDay(13, 0), got.Start)
	assert.Equal(t, roster.NewTimeOfDay(22, 0), got.End)
}

func TestBuild_SkipsIncompleteEntries(t *testing.T) {
	// GIVEN: Garbled extraction output with missing fields
	// WHEN: Building
	// THEN: Incomplete rows are silently skipped, complete ones kept

	result, err := reconcile.NewBuilder().Build([]reconcile.RawEntry{
		{Day: 0, Start: "07:00", End: "16:00"},
		{Day: 8, Start: "", End: "16:00"},
		{Day: 8, Start: "07:00", End: "   "},
		{Day: 10, Start: "07:00", End: "16:00"},
	}, time.January, 2024, "A")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 1, result.Schedule.Len())
	_, ok := result.Schedule.Get(wed, roster.SlotMorning)
	assert.True(t, ok)
}

func TestBuild_InvalidDayOfMonth(t *testing.T) {
	_, err := reconcile.Build([]reconcile.RawEntry{
		{Day: 8, Start: "07:00", End: "16:00"},
		{Day: 30, Start: "07:00", End: "16:00"},
	}, time.February, 2024, "A")

	assert.ErrorIs(t, err, roster.ErrInvalidDayOfMonth)
	var dme *roster.DayOfMonthError
	require.ErrorAs(t, err, &dme)
	assert.Equal(t, 30, dme.Day)
	assert.Equal(t, time.February, dme.Month)
}

func TestBuild_InvalidTimeFormat(t *testing.T) {
	s, err := reconcile.Build([]reconcile.RawEntry{
		{Day: 8, Start: "7am", End: "16:00"},
	}, time.January, 2024, "A")

	assert.ErrorIs(t, err, roster.ErrInvalidTimeFormat)
	assert.Nil(t, s, "no partial schedule on failure")
}

func TestBuild_CollisionLastWriteWins(t *testing.T) {
	// GIVEN: Two rows on the same day that both start before noon
	// WHEN: Building
	// THEN: The later row wins and the overwrite is reported

	result, err := reconcile.NewBuilder().Build([]reconcile.RawEntry{
		{Day: 8, Start: "07:00", End: "11:00"},
		{Day: 8, Start: "08:00", End: "16:00"},
	}, time.January, 2024, "A")
	require.NoError(t, err)

	got, ok := result.Schedule.Get(mon, roster.SlotMorning)
	require.True(t, ok)
	assert.Equal(t, roster.NewTimeOfDay(8, 0), got.Start)

	require.Len(t, result.Collisions, 1)
	c := result.Collisions[0]
	assert.Equal(t, mon, c.Date)
	assert.Equal(t, roster.SlotMorning, c.Slot)
	assert.Equal(t, roster.NewTimeOfDay(7, 0), c.Previous.Start)
	assert.Equal(t, roster.NewTimeOfDay(8, 0), c.Replacement.Start)
}

func TestBuild_CustomCutOff(t *testing.T) {
	b := &reconcile.Builder{Policy: reconcile.WorkWeek{MorningCutOffHour: 10}}
	result, err := b.Build([]reconcile.RawEntry{
		{Day: 8, Start: "10:30", End: "18:00"},
	}, time.January, 2024, "A")
	require.NoError(t, err)

	_, ok := result.Schedule.Get(mon, roster.SlotEvening)
	assert.True(t, ok)
}

func TestBuild_KeepsClosedDaysForComparerToIgnore(t *testing.T) {
	// Saturday rows are normalized like any other; excluding them is the
	// comparer's job.
	s, err := reconcile.Build([]reconcile.RawEntry{
		{Day: 13, Start: "07:00", End: "16:00"},
	}, time.January, 2024, "A")
	require.NoError(t, err)

	_, ok := s.Get(sat, roster.SlotMorning)
	assert.True(t, ok)
}
