// Package store provides in-memory roster store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	schedule roster.Schedule
	imports  map[string]roster.ImportRun
}

func NewMemory() *Memory {
	return &Memory{
		schedule: roster.Schedule{},
		imports:  make(map[string]roster.ImportRun),
	}
}

// NewMemoryWith seeds the store with a copy of s.
func NewMemoryWith(s roster.Schedule) *Memory {
	m := NewMemory()
	m.schedule = s.Clone()
	return m
}

// Get returns a snapshot; callers may mutate it freely.
func (m *Memory) Get(_ context.Context) (roster.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schedule.Clone(), nil
}

// Put replaces the stored schedule with a copy of s.
func (m *Memory) Put(_ context.Context, s roster.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule = s.Clone()
	return nil
}

// =============================================================================
// IMPORT LOG
// =============================================================================

func (m *Memory) RecordImport(_ context.Context, run roster.ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.recordLocked(run)
}

func (m *Memory) CommitImport(_ context.Context, updated roster.Schedule, run roster.ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.recordLocked(run); err != nil {
		return err
	}
	if updated != nil {
		m.schedule = updated.Clone()
	}
	return nil
}

func (m *Memory) recordLocked(run roster.ImportRun) error {
	if _, exists := m.imports[run.ID]; exists {
		return roster.ErrDuplicateImport
	}
	run.Selected = append([]string(nil), run.Selected...)
	m.imports[run.ID] = run
	return nil
}

func (m *Memory) GetImport(_ context.Context, id string) (roster.ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.imports[id]
	if !ok {
		return roster.ImportRun{}, roster.ErrImportNotFound
	}
	return run, nil
}

// ListImports returns runs newest first.
func (m *Memory) ListImports(_ context.Context) ([]roster.ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]roster.ImportRun, 0, len(m.imports))
	for _, run := range m.imports {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

var (
	_ roster.ScheduleStore = (*Memory)(nil)
	_ roster.ImportLog     = (*Memory)(nil)
)
