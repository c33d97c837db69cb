package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// MONTHLY AGGREGATE - Read-only reporting projection
// =============================================================================

// ShiftDetail is one shift contributing to a monthly summary.
type ShiftDetail struct {
	Date       time.Time
	Slot       roster.Slot
	Assignment roster.Assignment
	Hours      decimal.Decimal
}

// MonthlySummary counts an employee's shifts in one "YYYY-MM" month.
type MonthlySummary struct {
	Month      string
	Morning    int
	Evening    int
	TotalHours decimal.Decimal
	Shifts     []ShiftDetail // ordered by date, morning first
}

var minutesPerHour = decimal.NewFromInt(60)

// ShiftHours is end - start in hours at minute precision. An invalid
// boundary or a reversed pair counts as zero rather than failing.
func ShiftHours(a roster.Assignment) decimal.Decimal {
	return hoursOf(shiftMinutes(a))
}

func shiftMinutes(a roster.Assignment) int {
	if !a.Start.Valid() || !a.End.Valid() {
		return 0
	}
	return max(a.Start.MinutesUntil(a.End), 0)
}

func hoursOf(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
}

// Aggregate projects the schedule into per-month summaries for employeeID,
// keyed by "YYYY-MM". The schedule is not modified.
func Aggregate(schedule roster.Schedule, employeeID string) (map[string]*MonthlySummary, error) {
	shifts, err := schedule.Shifts()
	if err != nil {
		return nil, err
	}

	months := make(map[string]*MonthlySummary)
	minutes := make(map[string]int)
	for _, sh := range shifts {
		if sh.Assignment.EmployeeID != employeeID {
			continue
		}

		key := roster.MonthKey(sh.Date)
		summary, ok := months[key]
		if !ok {
			summary = &MonthlySummary{Month: key, TotalHours: decimal.Zero}
			months[key] = summary
		}

		switch sh.Slot {
		case roster.SlotMorning:
			summary.Morning++
		case roster.SlotEvening:
			summary.Evening++
		}

		m := shiftMinutes(sh.Assignment)
		minutes[key] += m
		summary.Shifts = append(summary.Shifts, ShiftDetail{
			Date:       sh.Date,
			Slot:       sh.Slot,
			Assignment: sh.Assignment,
			Hours:      hoursOf(m),
		})
	}

	// Totals divide once so they stay exact whatever Div's precision.
	for key, summary := range months {
		summary.TotalHours = hoursOf(minutes[key])
	}
	return months, nil
}

// SortedMonths returns the summary keys in calendar order.
func SortedMonths(months map[string]*MonthlySummary) []string {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
