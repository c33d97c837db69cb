/*
store.go - Persistence interfaces for the authoritative schedule

PURPOSE:
  Defines the interface between the host application and the database.
  The reconciliation engine never calls these: the host reads a snapshot
  before comparing and writes the merged copy afterwards.

KEY INTERFACES:
  ScheduleStore: Get/Put of the whole authoritative schedule
  ImportLog:     Append-only record of merge-imports, committed together
                 with the merged schedule

SNAPSHOT CONTRACT:
  Get returns a schedule the caller owns; mutating it never changes the
  stored state. Put replaces the stored state wholesale.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - roster/store/memory.go: In-memory for testing

SEE ALSO:
  - reconcile/merge.go: Produces the schedule handed to Put
*/
package roster

import (
	"context"
	"time"
)

// =============================================================================
// SCHEDULE STORE
// =============================================================================

// ScheduleStore supplies and persists the authoritative schedule.
type ScheduleStore interface {
	// Get returns an independent snapshot of the stored schedule.
	Get(ctx context.Context) (Schedule, error)

	// Put replaces the stored schedule.
	Put(ctx context.Context, s Schedule) error
}

// =============================================================================
// IMPORT LOG - Tracks which differences were merged, by whom, when
// =============================================================================

// ImportRun records one merge-import of extracted shifts.
type ImportRun struct {
	ID         string
	EmployeeID string
	Year       int
	Month      time.Month
	Selected   []string // difference ids the caller asked for
	Applied    int
	CreatedAt  time.Time
}

// ImportLog stores import runs. Append-only.
type ImportLog interface {
	RecordImport(ctx context.Context, run ImportRun) error

	// CommitImport records run and, when updated is non-nil, replaces the
	// stored schedule with it. Both happen or neither does.
	CommitImport(ctx context.Context, updated Schedule, run ImportRun) error

	GetImport(ctx context.Context, id string) (ImportRun, error)
	ListImports(ctx context.Context) ([]ImportRun, error)
}
