package roster

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// =============================================================================
// TIME OF DAY - Wall-clock shift boundary
// =============================================================================

// TimeOfDay is a wall-clock time with second resolution and no date.
// Only hour and minute take part in equality checks for diffing; seconds
// are descriptive.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// 07:00, 7:00, 07:00:30
var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// NewTimeOfDay builds a TimeOfDay at hour:minute:00.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" in 24-hour form.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(raw)
	if m == nil {
		return TimeOfDay{}, &TimeFormatError{Raw: raw}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}

	t := TimeOfDay{Hour: hour, Minute: minute, Second: second}
	if !t.Valid() {
		return TimeOfDay{}, &TimeFormatError{Raw: raw}
	}
	return t, nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustParseTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Valid reports whether every component is within its 24-hour range.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 &&
		t.Minute >= 0 && t.Minute <= 59 &&
		t.Second >= 0 && t.Second <= 59
}

// Comparison
func (t TimeOfDay) seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }
func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }
func (t TimeOfDay) Before(other TimeOfDay) bool { return t.seconds() < other.seconds() }
func (t TimeOfDay) After(other TimeOfDay) bool { return t.seconds() > other.seconds() }
func (t TimeOfDay) Equal(other TimeOfDay) bool { return t.seconds() == other.seconds() }
func (t TimeOfDay) SameMinute(other TimeOfDay) bool { return t.minutes() == other.minutes() }

// MinutesUntil returns end - t in whole minutes; seconds are ignored.
func (t TimeOfDay) MinutesUntil(end TimeOfDay) int {
	return end.minutes() - t.minutes()
}

// String returns TimeOfDay in "HH:MM:SS" format.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ShortString returns TimeOfDay in "HH:MM" format.
func (t TimeOfDay) ShortString() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &TimeFormatError{Raw: string(data)}
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// OrderPair returns the two boundaries with start <= end. Sources that
// report end-before-start (OCR column swaps) are recovered by swapping.
// Overnight shifts are not supported; an equal pair is a zero-length slot.
func OrderPair(a, b TimeOfDay) (start, end TimeOfDay) {
	if b.Before(a) {
		return b, a
	}
	return a, b
}

// DefaultMorningCutOff is the hour at which shifts stop counting as morning.
const DefaultMorningCutOff = 12

// Classify buckets a shift by its start hour: morning before noon, evening
// otherwise. This is a heuristic; two entries on one day that classify to
// the same slot collide.
func Classify(start TimeOfDay) Slot {
	return ClassifyWithCutOff(start, DefaultMorningCutOff)
}

// ClassifyWithCutOff is Classify with a configurable morning cut-off hour.
func ClassifyWithCutOff(start TimeOfDay, cutOffHour int) Slot {
	if start.Hour < cutOffHour {
		return SlotMorning
	}
	return SlotEvening
}
