package reconcile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-reconciler/reconcile"
	"github.com/warp/shift-reconciler/roster"
)

func TestApply_AddedWritesSlot(t *testing.T) {
	// GIVEN: External has a Tuesday evening the authoritative schedule lacks
	// WHEN: Importing that difference
	// THEN: The slot is written into a copy; the base is untouched

	auth := schedule(morning(mon, at("A", "07:00", "16:00")))
	ext := schedule(evening(tue, at("B", "13:00", "22:00")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	result := reconcile.Apply(auth, diffs, reconcile.Select("2024-01-09-evening"))
	assert.Equal(t, 1, result.AppliedCount)

	got, ok := result.Updated.Get(tue, roster.SlotEvening)
	require.True(t, ok)
	assert.Equal(t, at("B", "13:00", "22:00"), got)

	_, ok = auth.Get(tue, roster.SlotEvening)
	assert.False(t, ok, "base must not be mutated")

	// The removed Monday morning was not selected and is still there
	_, ok = result.Updated.Get(mon, roster.SlotMorning)
	assert.True(t, ok)
}

func TestApply_RemovedIsNeverApplied(t *testing.T) {
	// GIVEN: Authoritative Wednesday evening absent from the external source
	// WHEN: The removed record is selected
	// THEN: The slot survives and is not counted

	auth := schedule(evening(wed, at("A", "13:00", "22:00")))
	diffs, err := reconcile.Compare(auth, roster.Schedule{})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	require.Equal(t, reconcile.DiffRemoved, diffs[0].Type)

	result := reconcile.Apply(auth, diffs, reconcile.Select(diffs[0].ID))
	assert.Equal(t, 0, result.AppliedCount)

	got, ok := result.Updated.Get(wed, roster.SlotEvening)
	require.True(t, ok)
	assert.Equal(t, at("A", "13:00", "22:00"), got)
}

func TestApply_ChangedOverwrites(t *testing.T) {
	auth := schedule(morning(mon, at("A", "07:00", "16:00")))
	ext := schedule(morning(mon, at("A", "08:00", "16:00")))

	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)

	result := reconcile.Apply(auth, diffs, reconcile.Select("2024-01-08-morning"))
	assert.Equal(t, 1, result.AppliedCount)

	got, _ := result.Updated.Get(mon, roster.SlotMorning)
	assert.Equal(t, roster.NewTimeOfDay(8, 0), got.Start)

	orig, _ := auth.Get(mon, roster.SlotMorning)
	assert.Equal(t, roster.NewTimeOfDay(7, 0), orig.Start)
}

func TestApply_UnselectedAndUnknownIDsIgnored(t *testing.T) {
	auth, ext := mixedPair()
	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)

	result := reconcile.Apply(auth, diffs, reconcile.Select("no-such-id"))
	assert.Equal(t, 0, result.AppliedCount)
	if d := cmp.Diff(auth, result.Updated); d != "" {
		t.Errorf("schedule changed (-base +updated):\n%s", d)
	}
}

func TestApply_AppliedCountExcludesRemoved(t *testing.T) {
	auth, ext := mixedPair()
	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)

	all := make([]string, len(diffs))
	applicable := 0
	for i, d := range diffs {
		all[i] = d.ID
		if d.Type.Applicable() {
			applicable++
		}
	}

	result := reconcile.Apply(auth, diffs, reconcile.Select(all...))
	assert.Equal(t, applicable, result.AppliedCount)
	assert.Equal(t, 3, result.AppliedCount)
}

func TestApply_Idempotent(t *testing.T) {
	auth, ext := mixedPair()
	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)
	sel := reconcile.SelectAll(diffs)

	first := reconcile.Apply(auth, diffs, sel)
	second := reconcile.Apply(auth, diffs, sel)

	assert.Equal(t, first.AppliedCount, second.AppliedCount)
	if d := cmp.Diff(first.Updated, second.Updated); d != "" {
		t.Errorf("second apply differs (-first +second):\n%s", d)
	}
}

func TestApply_ThenCompareLeavesOnlyRemovals(t *testing.T) {
	// GIVEN: Every applicable difference imported
	// WHEN: Comparing the merged schedule with the same external source
	// THEN: Only informational removals remain, with the same ids as before

	auth, ext := mixedPair()
	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)

	merged := reconcile.Apply(auth, diffs, reconcile.SelectAll(diffs))

	after, err := reconcile.Compare(merged.Updated, ext)
	require.NoError(t, err)

	var removedBefore []string
	for _, d := range diffs {
		if d.Type == reconcile.DiffRemoved {
			removedBefore = append(removedBefore, d.ID)
		}
	}
	var removedAfter []string
	for _, d := range after {
		assert.Equal(t, reconcile.DiffRemoved, d.Type, d.ID)
		removedAfter = append(removedAfter, d.ID)
	}
	assert.Equal(t, removedBefore, removedAfter)
}

func TestSelectAll_SkipsRemoved(t *testing.T) {
	auth, ext := mixedPair()
	diffs, err := reconcile.Compare(auth, ext)
	require.NoError(t, err)

	sel := reconcile.SelectAll(diffs)
	assert.Len(t, sel, 3)
	assert.False(t, sel.Has("2024-01-10-evening"))
	assert.True(t, sel.Has("2024-01-09-evening"))
	assert.ElementsMatch(t, []string{"2024-01-08-morning", "2024-01-09-evening", "2024-01-14-evening"}, sel.IDs())
}
