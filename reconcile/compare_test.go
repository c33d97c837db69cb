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
// SCENARIOS
// =============================================================================

func TestCompare_ChangedStart(t *testing.T) {
	// GIVEN: Authoritative Monday morning 07:00-16:00, external 08:00-16:00
	// WHEN: Comparing
	// THEN: One changed record keyed by date and slot

	auth := schedule(morning(mon, at("A", "07:00", "16:00")))
	ext := schedule(morning(mon, at("A", "08:00", "16:00")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	d := diffs[0]
	assert.Equal(t, "2024-01-08-morning", d.ID)
	assert.Equal(t, reconcile.DiffChanged, d.Type)
	assert.Equal(t, mon, d.Date)
	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, roster.SlotMorning, d.Slot)
	require.NotNil(t, d.Authoritative)
	require.NotNil(t, d.External)
	assert.Equal(t, "07:00:00", d.Authoritative.Start.String())
	assert.Equal(t, "08:00:00", d.External.Start.String())
}

func TestCompare_AddedEvening(t *testing.T) {
	auth := roster.Schedule{}
	ext := schedule(evening(tue, at("B", "13:00", "22:00")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	assert.Equal(t, reconcile.DiffAdded, diffs[0].Type)
	assert.Equal(t, "2024-01-09-evening", diffs[0].ID)
	assert.Nil(t, diffs[0].Authoritative)
	require.NotNil(t, diffs[0].External)
	assert.Equal(t, "B", diffs[0].External.EmployeeID)
}

func TestCompare_RemovedEvening(t *testing.T) {
	auth := schedule(evening(wed, at("A", "13:00", "22:00")))
	ext := roster.Schedule{}

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	assert.Equal(t, reconcile.DiffRemoved, diffs[0].Type)
	assert.Equal(t, "2024-01-10-evening", diffs[0].ID)
	require.NotNil(t, diffs[0].Authoritative)
	assert.Nil(t, diffs[0].External)
}

func TestCompare_ClosedSlotsNeverDiffer(t *testing.T) {
	// GIVEN: Stray Saturday and Friday-evening data on either side
	// WHEN: Comparing
	// THEN: No records for closed slots, whatever their content

	auth := schedule(
		evening(fri, at("A", "13:00", "22:00")),
		morning(sat, at("A", "07:00", "16:00")),
	)
	ext := schedule(
		morning(sat, at("A", "09:00", "12:00")),
		evening(sat, at("B", "13:00", "22:00")),
	)

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestCompare_FridayMorningIsCompared(t *testing.T) {
	auth := roster.Schedule{}
	ext := schedule(morning(fri, at("A", "07:00", "13:00")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "2024-01-12-morning", diffs[0].ID)
}

func TestCompare_SecondsIgnored(t *testing.T) {
	auth := schedule(morning(mon, at("A", "07:00:00", "16:00:00")))
	ext := schedule(morning(mon, at("A", "07:00:59", "16:00:30")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestCompare_EndChanged(t *testing.T) {
	auth := schedule(evening(thu, at("A", "13:00", "22:00")))
	ext := schedule(evening(thu, at("A", "13:00", "21:30")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, reconcile.DiffChanged, diffs[0].Type)
}

func TestCompare_EmployeeIdentity(t *testing.T) {
	// GIVEN: Same times, different employees
	auth := schedule(morning(mon, at("A", "07:00", "16:00")))
	ext := schedule(morning(mon, at("B", "07:00", "16:00")))

	// WHEN: Default comparer
	// THEN: Only times matter
	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	// WHEN: Employee matching enabled
	// THEN: Reported as changed
	c := reconcile.NewComparer()
	c.MatchEmployee = true
	diffs, err = c.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, reconcile.DiffChanged, diffs[0].Type)
}

func TestCompare_UnassignedMarkerIsPresent(t *testing.T) {
	// An explicit "none" slot is data, not absence
	auth := schedule(morning(mon, at(roster.Unassigned, "07:00", "16:00")))
	ext := roster.Schedule{}

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, reconcile.DiffRemoved, diffs[0].Type)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func mixedPair() (roster.Schedule, roster.Schedule) {
	nextSun := sun.AddDate(0, 0, 7)
	auth := schedule(
		morning(sun, at("A", "07:00", "16:00")),
		morning(mon, at("A", "07:00", "16:00")),
		evening(wed, at("A", "13:00", "22:00")),
		evening(fri, at("A", "13:00", "22:00")),
		morning(nextSun, at("A", "07:00", "16:00")),
	)
	ext := schedule(
		morning(sun, at("A", "07:00", "16:00")),
		morning(mon, at("A", "08:00", "16:00")),
		evening(tue, at("A", "13:00", "22:00")),
		morning(sat, at("A", "07:00", "16:00")),
		evening(nextSun, at("A", "14:00", "22:00")),
	)
	return auth, ext
}

func TestCompare_SelfIsEmpty(t *testing.T) {
	auth, ext := mixedPair()
	for _, s := range []roster.Schedule{auth, ext, {}} {
		diffs, err := reconcile.Compare(s, s)
		require.NoError(t, err)
		assert.Empty(t, diffs)
	}
}

func TestCompare_Ordering(t *testing.T) {
	auth, ext := mixedPair()

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)

	ids := make([]string, len(diffs))
	for i, d := range diffs {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{
		"2024-01-08-morning",
		"2024-01-09-evening",
		"2024-01-10-evening",
		"2024-01-14-morning",
		"2024-01-14-evening",
	}, ids)

	for i := 1; i < len(diffs); i++ {
		assert.False(t, diffs[i].Date.Before(diffs[i-1].Date))
	}
}

func TestCompare_Deterministic(t *testing.T) {
	auth, ext := mixedPair()

	first, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := reconcile.Compare(auth, ext)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompare_Symmetric(t *testing.T) {
	auth, ext := mixedPair()

	forward, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	backward, err := reconcile.Compare(ext, auth)
	require.NoError(t, err)
	require.Len(t, backward, len(forward))

	mirror := map[reconcile.DiffType]reconcile.DiffType{
		reconcile.DiffAdded:   reconcile.DiffRemoved,
		reconcile.DiffRemoved: reconcile.DiffAdded,
		reconcile.DiffChanged: reconcile.DiffChanged,
	}
	for i, f := range forward {
		b := backward[i]
		assert.Equal(t, f.ID, b.ID)
		assert.Equal(t, mirror[f.Type], b.Type, f.ID)
		assert.Equal(t, f.Authoritative, b.External, f.ID)
		assert.Equal(t, f.External, b.Authoritative, f.ID)
	}
}

func TestCompare_InvalidWeekAbortsWholeComparison(t *testing.T) {
	auth := schedule(morning(mon, at("A", "07:00", "16:00")))
	ext := roster.Schedule{
		"2024-01-09": roster.Week{time.Tuesday: {roster.SlotMorning: at("A", "07:00", "16:00")}},
	}

	diffs, err := reconcile.Compare(auth, ext)
	assert.ErrorIs(t, err, roster.ErrInvalidDate)
	assert.Nil(t, diffs)
}

func TestCompare_BuiltExternalAgainstAuthoritative(t *testing.T) {
	// GIVEN: An extraction for A that misses one shift, moves another and adds a third
	auth := schedule(
		morning(mon, at("A", "07:00", "16:00")),
		evening(wed, at("A", "13:00", "22:00")),
	)
	ext, err := reconcile.Build([]reconcile.RawEntry{
		{Day: 8, Start: "16:00", End: "08:00"},
		{Day: 9, Start: "13:00", End: "22:00"},
		{Day: 13, Start: "07:00", End: "16:00"},
	}, time.January, 2024, "A")
	require.NoError(t, err)

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 3)

	assert.Equal(t, reconcile.DiffChanged, diffs[0].Type)
	assert.Equal(t, reconcile.DiffAdded, diffs[1].Type)
	assert.Equal(t, reconcile.DiffRemoved, diffs[2].Type)
}

func TestScope_EmployeeAndMonth(t *testing.T) {
	feb := roster.NewDate(2024, time.February, 5)
	auth := schedule(
		morning(mon, at("A", "07:00", "16:00")),
		evening(mon, at("B", "13:00", "22:00")),
		morning(feb, at("A", "07:00", "16:00")),
	)

	scoped, err := reconcile.Scope(auth, "A", 2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, schedule(morning(mon, at("A", "07:00", "16:00"))), scoped)
	assert.Equal(t, 3, auth.Len(), "input untouched")

	// Without scoping, B's evening would be reported as removed
	ext := schedule(morning(mon, at("A", "07:00", "16:00")))
	diffs, err := reconcile.Compare(scoped, ext)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestCompareScoped_SlotHeldByAnotherEmployee(t *testing.T) {
	// GIVEN: B holds Tuesday evening; A's extraction also claims it
	// WHEN: Comparing A's January against the full schedule
	// THEN: The slot is changed with B as the authoritative side, not added

	auth := schedule(
		morning(mon, at("A", "07:00", "16:00")),
		evening(tue, at("B", "13:00", "22:00")),
	)
	ext := schedule(
		morning(mon, at("A", "07:00", "16:00")),
		evening(tue, at("A", "14:00", "22:00")),
		evening(wed, at("A", "13:00", "22:00")),
	)

	diffs, err := reconcile.NewComparer().CompareScoped(auth, ext, "A", 2024, time.January)
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	assert.Equal(t, "2024-01-09-evening", diffs[0].ID)
	assert.Equal(t, reconcile.DiffChanged, diffs[0].Type)
	require.NotNil(t, diffs[0].Authoritative)
	assert.Equal(t, "B", diffs[0].Authoritative.EmployeeID)
	assert.Equal(t, "A", diffs[0].External.EmployeeID)

	assert.Equal(t, reconcile.DiffAdded, diffs[1].Type, "empty slot stays added")
	assert.Nil(t, diffs[1].Authoritative)

	// Same times under another employee still surface
	ext = schedule(morning(mon, at("A", "07:00", "16:00")), evening(tue, at("A", "13:00", "22:00")))
	diffs, err = reconcile.NewComparer().CompareScoped(auth, ext, "A", 2024, time.January)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, reconcile.DiffChanged, diffs[0].Type)
}
