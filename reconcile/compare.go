package reconcile

import (
	"sort"
	"time"

	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// COMPARER - Slot-by-slot diff of two schedules
// =============================================================================

// Comparer diffs an authoritative schedule against an external one.
type Comparer struct {
	Policy WorkWeek

	// MatchEmployee also reports a slot as changed when both sides hold it
	// with different employees. Off by default: the external side is
	// normally pre-filtered to one employee, so only the times matter.
	MatchEmployee bool
}

func NewComparer() *Comparer {
	return &Comparer{Policy: DefaultWorkWeek()}
}

// Compare expands both schedules to per-day granularity over the union of
// their weeks and classifies every working slot:
//
//	authoritative only -> removed
//	external only      -> added
//	both, times differ -> changed (minute resolution)
//
// The result is ordered by date, morning before evening. A malformed week
// id in either schedule aborts with ErrInvalidDate and no partial list.
func (c *Comparer) Compare(authoritative, external roster.Schedule) ([]Difference, error) {
	weeks := unionWeeks(authoritative, external)

	var diffs []Difference
	for _, id := range weeks {
		days, err := id.Days()
		if err != nil {
			return nil, err
		}

		for _, date := range days {
			for _, slot := range roster.Slots {
				if !c.Policy.Allows(date.Weekday(), slot) {
					continue
				}

				auth, inAuth := authoritative.Get(date, slot)
				ext, inExt := external.Get(date, slot)

				var diffType DiffType
				switch {
				case inAuth && !inExt:
					diffType = DiffRemoved
				case !inAuth && inExt:
					diffType = DiffAdded
				case inAuth && inExt:
					if c.same(auth, ext) {
						continue
					}
					diffType = DiffChanged
				default:
					continue
				}

				d := Difference{
					ID:   DifferenceID(date, slot),
					Type: diffType,
					Date: date,
					Slot: slot,
				}
				if inAuth {
					a := auth
					d.Authoritative = &a
				}
				if inExt {
					e := ext
					d.External = &e
				}
				diffs = append(diffs, d)
			}
		}
	}

	sort.SliceStable(diffs, func(i, j int) bool {
		return diffs[i].Date.Before(diffs[j].Date)
	})
	return diffs, nil
}

func (c *Comparer) same(a, b roster.Assignment) bool {
	if !a.SameTimes(b) {
		return false
	}
	if c.MatchEmployee && a.EmployeeID != b.EmployeeID {
		return false
	}
	return true
}

// Compare diffs two schedules with the default work week.
func Compare(authoritative, external roster.Schedule) ([]Difference, error) {
	return NewComparer().Compare(authoritative, external)
}

func unionWeeks(schedules ...roster.Schedule) []roster.WeekID {
	seen := make(map[roster.WeekID]bool)
	var weeks []roster.WeekID
	for _, s := range schedules {
		for id := range s {
			if !seen[id] {
				seen[id] = true
				weeks = append(weeks, id)
			}
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i] < weeks[j] })
	return weeks
}

// CompareScoped diffs an extraction for one employee and month against the
// full authoritative schedule. The authoritative side is restricted with
// Scope first, so other employees' shifts never show up as removed. A slot
// the extraction fills but another employee already holds is reported as
// changed with that holder as the authoritative side, never as added.
func (c *Comparer) CompareScoped(authoritative, external roster.Schedule, employeeID string, year int, month time.Month) ([]Difference, error) {
	scoped, err := Scope(authoritative, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	diffs, err := c.Compare(scoped, external)
	if err != nil {
		return nil, err
	}

	for i, d := range diffs {
		if d.Type != DiffAdded {
			continue
		}
		if held, ok := authoritative.Get(d.Date, d.Slot); ok {
			diffs[i].Type = DiffChanged
			diffs[i].Authoritative = &held
		}
	}
	return diffs, nil
}

// Scope restricts an authoritative schedule to the employee and month an
// extraction covers, so shifts outside it never show up as removed.
func Scope(authoritative roster.Schedule, employeeID string, year int, month time.Month) (roster.Schedule, error) {
	scoped, err := authoritative.ForEmployee(employeeID)
	if err != nil {
		return nil, err
	}
	return scoped.InMonth(year, month)
}
