package reconcile

import (
	"sort"

	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// MERGE - Apply selected differences onto a copy of the authoritative schedule
// =============================================================================

// Selection is the set of difference ids a caller chose to import.
type Selection map[string]struct{}

// Select builds a Selection from ids.
func Select(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// SelectAll selects every applicable difference.
func SelectAll(diffs []Difference) Selection {
	s := make(Selection, len(diffs))
	for _, d := range diffs {
		if d.Type.Applicable() {
			s[d.ID] = struct{}{}
		}
	}
	return s
}

func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the selected ids, sorted.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type MergeResult struct {
	Updated      roster.Schedule
	AppliedCount int
}

// Apply writes the external assignment of every selected added or changed
// difference into a copy of base. Removed differences are never applied,
// even when selected: deleting an authoritative shift requires an explicit
// separate action. base is not modified.
func Apply(base roster.Schedule, diffs []Difference, selected Selection) MergeResult {
	updated := base.Clone()
	applied := 0

	for _, d := range diffs {
		if !selected.Has(d.ID) || !d.Type.Applicable() || d.External == nil {
			continue
		}
		updated.Set(d.Date, d.Slot, *d.External)
		applied++
	}

	return MergeResult{Updated: updated, AppliedCount: applied}
}
