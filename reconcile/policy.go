package reconcile

import (
	"time"

	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// WORK WEEK - Which slots exist on which days
// =============================================================================

// WorkWeek describes the working pattern both schedules follow. Closed
// slots are skipped during comparison even when stray data is present.
type WorkWeek struct {
	// MorningCutOffHour: shifts starting before this hour are morning.
	MorningCutOffHour int

	// Closed lists the slots that never hold a shift, per weekday.
	Closed map[time.Weekday][]roster.Slot
}

// DefaultWorkWeek: Saturday is a non-working day and Friday is a half-day
// with no evening slot.
func DefaultWorkWeek() WorkWeek {
	return WorkWeek{
		MorningCutOffHour: roster.DefaultMorningCutOff,
		Closed: map[time.Weekday][]roster.Slot{
			time.Friday:   {roster.SlotEvening},
			time.Saturday: {roster.SlotMorning, roster.SlotEvening},
		},
	}
}

// Allows reports whether slot is a working slot on weekday.
func (w WorkWeek) Allows(weekday time.Weekday, slot roster.Slot) bool {
	for _, closed := range w.Closed[weekday] {
		if closed == slot {
			return false
		}
	}
	return true
}

// Classify buckets a start time using the configured cut-off.
func (w WorkWeek) Classify(start roster.TimeOfDay) roster.Slot {
	cutOff := w.MorningCutOffHour
	if cutOff == 0 {
		cutOff = roster.DefaultMorningCutOff
	}
	return roster.ClassifyWithCutOff(start, cutOff)
}
