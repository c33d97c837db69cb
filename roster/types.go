/*
Package roster provides the shift schedule model shared by the reconciliation engine.

PURPOSE:
  This package contains the data types every other package speaks: wall-clock
  shift boundaries, week identifiers, shift slots, assignments and the nested
  Schedule map. It holds no reconciliation logic; see package reconcile.

KEY CONCEPTS IN THIS FILE (types.go):
  - Slot: morning or evening, the addressable half of a working day
  - Assignment: who works a slot and between which boundaries
  - Schedule: WeekID -> weekday -> slot -> assignment
  - Shift: a flattened (date, slot, assignment) view of one Schedule entry

DESIGN PRINCIPLES:
  1. Weekdays are the time.Weekday index; locale day names are rendered
     only at presentation time
  2. A missing slot and an explicit "none" assignment are different things
  3. Schedules are values: Clone before handing one to code that writes

USAGE:
  s := roster.Schedule{}
  s.Set(roster.NewDate(2024, time.January, 8), roster.SlotMorning, roster.Assignment{
      EmployeeID: "A",
      Start:      roster.NewTimeOfDay(7, 0),
      End:        roster.NewTimeOfDay(16, 0),
  })

SEE ALSO:
  - time.go: TimeOfDay parsing and slot classification
  - week.go: WeekID and ISO date helpers
  - store.go: ScheduleStore persistence interface
*/
package roster

import (
	"sort"
	"time"
)

// =============================================================================
// SLOT - Half of a working day
// =============================================================================

type Slot string

const (
	SlotMorning Slot = "morning"
	SlotEvening Slot = "evening"
)

// Slots lists every slot in discovery order: morning before evening.
var Slots = []Slot{SlotMorning, SlotEvening}

func (s Slot) Valid() bool { return s == SlotMorning || s == SlotEvening }

// Order is the slot's position within a day.
func (s Slot) Order() int {
	if s == SlotMorning {
		return 0
	}
	return 1
}

// ParseSlot accepts "morning" or "evening".
func ParseSlot(s string) (Slot, bool) {
	slot := Slot(s)
	return slot, slot.Valid()
}

// =============================================================================
// ASSIGNMENT - Who works a slot
// =============================================================================

// Unassigned marks a slot explicitly left without an employee. It is
// distinct from the slot being absent from the data.
const Unassigned = "none"

type Assignment struct {
	EmployeeID string    `json:"employee_id"`
	Start      TimeOfDay `json:"start"`
	End        TimeOfDay `json:"end"`
}

// IsUnassigned reports whether the slot carries the explicit "none" marker.
func (a Assignment) IsUnassigned() bool { return a.EmployeeID == Unassigned }

// SameTimes compares boundaries at minute resolution.
func (a Assignment) SameTimes(b Assignment) bool {
	return a.Start.SameMinute(b.Start) && a.End.SameMinute(b.End)
}

// =============================================================================
// SCHEDULE - WeekID -> weekday -> slot -> assignment
// =============================================================================

type Schedule map[WeekID]Week

type Week map[time.Weekday]DayShifts

type DayShifts map[Slot]Assignment

// Shift is one flattened schedule entry.
type Shift struct {
	Date       time.Time
	Slot       Slot
	Assignment Assignment
}

// Get returns the assignment at date/slot.
func (s Schedule) Get(date time.Time, slot Slot) (Assignment, bool) {
	week, ok := s[WeekOf(date)]
	if !ok {
		return Assignment{}, false
	}
	a, ok := week[date.Weekday()][slot]
	return a, ok
}

// Set writes the assignment at date/slot, replacing any previous one.
func (s Schedule) Set(date time.Time, slot Slot, a Assignment) {
	id := WeekOf(date)
	week, ok := s[id]
	if !ok {
		week = Week{}
		s[id] = week
	}
	day, ok := week[date.Weekday()]
	if !ok {
		day = DayShifts{}
		week[date.Weekday()] = day
	}
	day[slot] = a
}

// Remove deletes the assignment at date/slot, pruning empty days and weeks.
// Returns false if nothing was there.
func (s Schedule) Remove(date time.Time, slot Slot) bool {
	id := WeekOf(date)
	week, ok := s[id]
	if !ok {
		return false
	}
	day, ok := week[date.Weekday()]
	if !ok {
		return false
	}
	if _, ok := day[slot]; !ok {
		return false
	}
	delete(day, slot)
	if len(day) == 0 {
		delete(week, date.Weekday())
	}
	if len(week) == 0 {
		delete(s, id)
	}
	return true
}

// Clone returns a fully independent copy.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for id, week := range s {
		weekCopy := make(Week, len(week))
		for wd, day := range week {
			dayCopy := make(DayShifts, len(day))
			for slot, a := range day {
				dayCopy[slot] = a
			}
			weekCopy[wd] = dayCopy
		}
		out[id] = weekCopy
	}
	return out
}

// Len counts assignments.
func (s Schedule) Len() int {
	n := 0
	for _, week := range s {
		for _, day := range week {
			n += len(day)
		}
	}
	return n
}

// Shifts flattens the schedule, ordered by date then slot. Weekday keys
// outside Sunday..Saturday are ignored. Fails on a malformed week id.
func (s Schedule) Shifts() ([]Shift, error) {
	var shifts []Shift
	for id, week := range s {
		start, err := id.Start()
		if err != nil {
			return nil, err
		}
		for wd, day := range week {
			if wd < time.Sunday || wd > time.Saturday {
				continue
			}
			date := start.AddDate(0, 0, int(wd))
			for slot, a := range day {
				shifts = append(shifts, Shift{Date: date, Slot: slot, Assignment: a})
			}
		}
	}
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].Date.Equal(shifts[j].Date) {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		return shifts[i].Slot.Order() < shifts[j].Slot.Order()
	})
	return shifts, nil
}

// FromShifts builds a schedule from flattened entries; later entries win.
func FromShifts(shifts []Shift) Schedule {
	s := Schedule{}
	for _, sh := range shifts {
		s.Set(sh.Date, sh.Slot, sh.Assignment)
	}
	return s
}

// Filter returns a new schedule holding only the shifts keep accepts.
func (s Schedule) Filter(keep func(Shift) bool) (Schedule, error) {
	shifts, err := s.Shifts()
	if err != nil {
		return nil, err
	}
	out := Schedule{}
	for _, sh := range shifts {
		if keep(sh) {
			out.Set(sh.Date, sh.Slot, sh.Assignment)
		}
	}
	return out, nil
}

// ForEmployee keeps the shifts assigned to employeeID.
func (s Schedule) ForEmployee(employeeID string) (Schedule, error) {
	return s.Filter(func(sh Shift) bool { return sh.Assignment.EmployeeID == employeeID })
}

// InMonth keeps the shifts dated within month of year.
func (s Schedule) InMonth(year int, month time.Month) (Schedule, error) {
	return s.Filter(func(sh Shift) bool {
		return sh.Date.Year() == year && sh.Date.Month() == month
	})
}
