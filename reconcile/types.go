// Package reconcile compares an authoritative shift schedule with one
// extracted from an external report, and merges chosen differences back.
// It uses the roster model and holds no state of its own: every function is
// a pure transformation of its arguments.
package reconcile

import (
	"fmt"
	"time"

	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// DIFFERENCE - One classified discrepancy at a slot
// =============================================================================

type DiffType string

const (
	// DiffAdded: the external source has a shift the authoritative one lacks.
	DiffAdded DiffType = "added"
	// DiffRemoved: the authoritative shift is missing from the external source.
	DiffRemoved DiffType = "removed"
	// DiffChanged: both sides have the slot but the boundaries differ.
	DiffChanged DiffType = "changed"
)

// Applicable reports whether a difference of this type may be merged.
// Removals are informational only.
func (t DiffType) Applicable() bool {
	return t == DiffAdded || t == DiffChanged
}

// Difference is created fresh on every comparison and never mutated.
type Difference struct {
	ID            string
	Type          DiffType
	Date          time.Time
	Slot          roster.Slot
	Authoritative *roster.Assignment
	External      *roster.Assignment
}

// Weekday is the day of week of the difference's date.
func (d Difference) Weekday() time.Weekday { return d.Date.Weekday() }

// DifferenceID derives the stable id of a (date, slot) position, e.g.
// "2024-01-08-morning". It contains no whitespace.
func DifferenceID(date time.Time, slot roster.Slot) string {
	return fmt.Sprintf("%s-%s", roster.FormatDate(date), slot)
}
