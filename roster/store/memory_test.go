package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-reconciler/roster"
	"github.com/warp/shift-reconciler/roster/store"
)

func TestMemory_GetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	monday := roster.NewDate(2024, time.January, 8)

	seed := roster.Schedule{}
	seed.Set(monday, roster.SlotMorning, roster.Assignment{
		EmployeeID: "A",
		Start:      roster.NewTimeOfDay(7, 0),
		End:        roster.NewTimeOfDay(16, 0),
	})
	m := store.NewMemoryWith(seed)

	// Mutating the seed after construction does not leak in
	seed.Remove(monday, roster.SlotMorning)

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	// Mutating a snapshot does not leak in either
	got.Remove(monday, roster.SlotMorning)
	again, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Len())

	require.NoError(t, m.Put(ctx, roster.Schedule{}))
	empty, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestMemory_ImportLog(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	older := roster.ImportRun{ID: "run-1", EmployeeID: "A", Year: 2024, Month: time.January,
		Selected: []string{"2024-01-08-morning"}, Applied: 1, CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}
	newer := roster.ImportRun{ID: "run-2", EmployeeID: "A", Year: 2024, Month: time.February,
		Applied: 0, CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	require.NoError(t, m.RecordImport(ctx, older))
	require.NoError(t, m.RecordImport(ctx, newer))
	assert.ErrorIs(t, m.RecordImport(ctx, older), roster.ErrDuplicateImport)

	runs, err := m.ListImports(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)

	got, err := m.GetImport(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-08-morning"}, got.Selected)

	_, err = m.GetImport(ctx, "missing")
	assert.ErrorIs(t, err, roster.ErrImportNotFound)
	assert.True(t, roster.IsNotFound(err))
}

func TestMemory_CommitImport(t *testing.T) {
	// GIVEN: A stored schedule and a recorded run
	// WHEN: Committing a merge whose run id is already taken
	// THEN: Neither the schedule nor the log changes

	ctx := context.Background()
	monday := roster.NewDate(2024, time.January, 8)
	m := store.NewMemory()

	merged := roster.Schedule{}
	merged.Set(monday, roster.SlotMorning, roster.Assignment{
		EmployeeID: "A",
		Start:      roster.NewTimeOfDay(7, 0),
		End:        roster.NewTimeOfDay(16, 0),
	})
	run := roster.ImportRun{ID: "run-1", EmployeeID: "A", Year: 2024, Month: time.January, Applied: 1}
	require.NoError(t, m.CommitImport(ctx, merged, run))

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	assert.ErrorIs(t, m.CommitImport(ctx, roster.Schedule{}, run), roster.ErrDuplicateImport)
	got, err = m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len(), "failed commit must not replace the schedule")

	// A nil schedule only records the run
	require.NoError(t, m.CommitImport(ctx, nil, roster.ImportRun{ID: "run-2"}))
	got, err = m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	runs, err := m.ListImports(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
