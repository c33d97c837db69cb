/*
Package sqlite provides a SQLite-backed implementation of the roster storage interfaces.

PURPOSE:
  Persists the authoritative schedule and the import log. In production the
  same patterns apply to PostgreSQL with only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  roster.ScheduleStore: Whole-schedule snapshot Get/Put
  roster.ImportLog:     Append-only record of merge-imports

SNAPSHOT SEMANTICS:
  Put replaces every stored shift inside one transaction, so a reader never
  observes a half-written merge. Get rebuilds the nested week/day/slot map
  from flat rows.

KEY TABLES:
  shifts:      One row per occupied (week, weekday, slot)
  import_runs: One row per merge-import; selected ids stored as JSON

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single pooled connection, which
  also keeps ":memory:" databases shared across calls.

USAGE:
  store, err := sqlite.New("./shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - roster/store.go: Interface definitions
  - roster/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/shift-reconciler/roster"
)

// Store implements the roster storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Authoritative schedule, flattened
	CREATE TABLE IF NOT EXISTS shifts (
		week_id TEXT NOT NULL,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		slot TEXT NOT NULL CHECK (slot IN ('morning', 'evening')),
		employee_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		PRIMARY KEY (week_id, weekday, slot)
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_employee
		ON shifts(employee_id);

	-- Import log (append-only)
	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		selected_json TEXT NOT NULL,
		applied INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_import_runs_created
		ON import_runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHEDULE STORE (roster.ScheduleStore interface)
// =============================================================================

// Get loads the whole authoritative schedule.
func (s *Store) Get(ctx context.Context) (roster.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT week_id, weekday, slot, employee_id, start_time, end_time
		FROM shifts
		ORDER BY week_id, weekday, slot
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	schedule := roster.Schedule{}
	for rows.Next() {
		var (
			weekID, slot, employeeID string
			weekday                  int
			startRaw, endRaw         string
		)
		if err := rows.Scan(&weekID, &weekday, &slot, &employeeID, &startRaw, &endRaw); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}

		start, err := roster.ParseTimeOfDay(startRaw)
		if err != nil {
			return nil, fmt.Errorf("shift %s/%d/%s: %w", weekID, weekday, slot, err)
		}
		end, err := roster.ParseTimeOfDay(endRaw)
		if err != nil {
			return nil, fmt.Errorf("shift %s/%d/%s: %w", weekID, weekday, slot, err)
		}

		id := roster.WeekID(weekID)
		week, ok := schedule[id]
		if !ok {
			week = roster.Week{}
			schedule[id] = week
		}
		day, ok := week[time.Weekday(weekday)]
		if !ok {
			day = roster.DayShifts{}
			week[time.Weekday(weekday)] = day
		}
		day[roster.Slot(slot)] = roster.Assignment{EmployeeID: employeeID, Start: start, End: end}
	}

	return schedule, rows.Err()
}

// Put replaces the stored schedule atomically.
func (s *Store) Put(ctx context.Context, schedule roster.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := putShifts(ctx, sqlTx, schedule); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func putShifts(ctx context.Context, sqlTx *sql.Tx, schedule roster.Schedule) error {
	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM shifts"); err != nil {
		return fmt.Errorf("failed to clear shifts: %w", err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO shifts (week_id, weekday, slot, employee_id, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	// Iterate the raw map so out-of-range weekdays surface as CHECK failures
	// instead of being silently dropped.
	for weekID, week := range schedule {
		for weekday, day := range week {
			for slot, a := range day {
				if _, err := stmt.ExecContext(ctx,
					string(weekID), int(weekday), string(slot),
					a.EmployeeID, a.Start.String(), a.End.String(),
				); err != nil {
					return fmt.Errorf("failed to insert shift %s/%d/%s: %w", weekID, weekday, slot, err)
				}
			}
		}
	}
	return nil
}

// =============================================================================
// IMPORT LOG (roster.ImportLog interface)
// =============================================================================

// createdAtLayout is fixed width so text order in SQL is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RecordImport appends an import run.
func (s *Store) RecordImport(ctx context.Context, run roster.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertImport(ctx, s.db, run)
}

// CommitImport writes the merged schedule, when non-nil, and the run in one
// transaction. Either both land or neither does.
func (s *Store) CommitImport(ctx context.Context, updated roster.Schedule, run roster.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if updated != nil {
		if err := putShifts(ctx, sqlTx, updated); err != nil {
			return err
		}
	}
	if err := insertImport(ctx, sqlTx, run); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func insertImport(ctx context.Context, db execer, run roster.ImportRun) error {
	selected := run.Selected
	if selected == nil {
		selected = []string{}
	}
	selectedJSON, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO import_runs (id, employee_id, year, month, selected_json, applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.EmployeeID, run.Year, int(run.Month),
		string(selectedJSON), run.Applied,
		run.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return roster.ErrDuplicateImport
		}
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// GetImport returns one import run by id.
func (s *Store) GetImport(ctx context.Context, id string) (roster.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, year, month, selected_json, applied, created_at
		FROM import_runs WHERE id = ?
	`, id)

	run, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.ImportRun{}, roster.ErrImportNotFound
	}
	return run, err
}

// ListImports returns import runs newest first.
func (s *Store) ListImports(ctx context.Context) ([]roster.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, year, month, selected_json, applied, created_at
		FROM import_runs
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	runs := []roster.ImportRun{}
	for rows.Next() {
		run, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImport(row scanner) (roster.ImportRun, error) {
	var (
		run          roster.ImportRun
		month        int
		selectedJSON string
		createdAt    string
	)
	if err := row.Scan(&run.ID, &run.EmployeeID, &run.Year, &month, &selectedJSON, &run.Applied, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan import run: %w", err)
	}

	run.Month = time.Month(month)
	if err := json.Unmarshal([]byte(selectedJSON), &run.Selected); err != nil {
		return run, fmt.Errorf("import run %s: bad selection: %w", run.ID, err)
	}
	createdAtTime, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return run, fmt.Errorf("import run %s: bad created_at: %w", run.ID, err)
	}
	run.CreatedAt = createdAtTime
	return run, nil
}

// Helper functions

func isPrimaryKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

var (
	_ roster.ScheduleStore = (*Store)(nil)
	_ roster.ImportLog     = (*Store)(nil)
)
