// Package schedule converts diff-style dayparting specifications into
// platform-native schedule representations: minute ranges (Google, Meta)
// or per-day half-hour bitstrings (TikTok).
package schedule

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	minutesPerDay  = 1440
	slotsPerDay    = 48
	daysPerWeek    = 7
	slotOn         = '1'
	slotOff        = '0'
)

// Spec is a diff-style dayparting change: hours and days to add or
// remove relative to the entity's current schedule. Days are 0-6 with
// 0 = Sunday; hours are 0-23.
type Spec struct {
	HoursToAdd    []int `json:"hours_to_add,omitempty"`
	HoursToRemove []int `json:"hours_to_remove,omitempty"`
	DaysToAdd     []int `json:"days_to_add,omitempty"`
	DaysToRemove  []int `json:"days_to_remove,omitempty"`
}

// Validate rejects out-of-range hours and days.
func (s Spec) Validate() error {
	for _, h := range s.HoursToAdd {
		if h < 0 || h > 23 {
			return errors.Errorf("hour out of range: %d", h)
		}
	}
	for _, h := range s.HoursToRemove {
		if h < 0 || h > 23 {
			return errors.Errorf("hour out of range: %d", h)
		}
	}
	for _, d := range s.DaysToAdd {
		if d < 0 || d > 6 {
			return errors.Errorf("day out of range: %d", d)
		}
	}
	for _, d := range s.DaysToRemove {
		if d < 0 || d > 6 {
			return errors.Errorf("day out of range: %d", d)
		}
	}
	return nil
}

// Empty reports whether the spec requests no additions at all, which
// means "remove all dayparting" rather than an error.
func (s Spec) Empty() bool {
	return len(s.HoursToAdd) == 0 && len(s.DaysToAdd) == 0
}

// MinuteRange is one native schedule entry for minute-range platforms.
type MinuteRange struct {
	StartMinute int   `json:"start_minute"`
	EndMinute   int   `json:"end_minute"`
	Days        []int `json:"days"`
}

// activeDays resolves the day set: days_to_add minus days_to_remove,
// defaulting to all seven days when days_to_add is empty.
func (s Spec) activeDays() []int {
	base := s.DaysToAdd
	if len(base) == 0 {
		base = []int{0, 1, 2, 3, 4, 5, 6}
	}
	removed := make(map[int]bool, len(s.DaysToRemove))
	for _, d := range s.DaysToRemove {
		removed[d] = true
	}
	seen := make(map[int]bool, len(base))
	days := make([]int, 0, len(base))
	for _, d := range base {
		if !removed[d] && !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// activeHours resolves hours_to_add minus hours_to_remove, deduplicated
// and sorted ascending.
func (s Spec) activeHours() []int {
	removed := make(map[int]bool, len(s.HoursToRemove))
	for _, h := range s.HoursToRemove {
		removed[h] = true
	}
	seen := make(map[int]bool, len(s.HoursToAdd))
	hours := make([]int, 0, len(s.HoursToAdd))
	for _, h := range s.HoursToAdd {
		if !removed[h] && !seen[h] {
			seen[h] = true
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)
	return hours
}

// MinuteRanges builds the minimal set of minute-range entries for the
// spec. Consecutive active hours collapse into a single range. An empty
// result means all dayparting should be removed.
func MinuteRanges(s Spec) []MinuteRange {
	if s.Empty() {
		return nil
	}

	days := s.activeDays()
	if len(days) == 0 {
		return nil
	}

	hours := s.activeHours()
	if len(hours) == 0 {
		if len(s.HoursToAdd) > 0 {
			// every requested hour was also removed
			return nil
		}
		// days without hours: run the full day on the active days
		return []MinuteRange{{StartMinute: 0, EndMinute: minutesPerDay, Days: days}}
	}

	var ranges []MinuteRange
	runStart := hours[0]
	prev := hours[0]
	for _, h := range hours[1:] {
		if h == prev+1 {
			prev = h
			continue
		}
		ranges = append(ranges, MinuteRange{StartMinute: runStart * 60, EndMinute: (prev + 1) * 60, Days: days})
		runStart = h
		prev = h
	}
	ranges = append(ranges, MinuteRange{StartMinute: runStart * 60, EndMinute: (prev + 1) * 60, Days: days})
	return ranges
}

// DayBitstrings builds one 48-character string per weekday (index 0 =
// Sunday), one character per 30-minute slot. Inactive days are all-off;
// active hours set both half-hour slots on active days. A spec with no
// additions yields all-off strings for every day (full removal).
func DayBitstrings(s Spec) [daysPerWeek]string {
	var out [daysPerWeek]string
	off := make([]byte, slotsPerDay)
	for i := range off {
		off[i] = slotOff
	}
	for i := range out {
		out[i] = string(off)
	}

	if s.Empty() {
		return out
	}

	active := make(map[int]bool)
	for _, d := range s.activeDays() {
		active[d] = true
	}

	hours := s.activeHours()
	daySlots := make([]byte, slotsPerDay)
	if len(hours) == 0 && len(s.HoursToAdd) == 0 {
		// days without hours: whole day on
		for i := range daySlots {
			daySlots[i] = slotOn
		}
	} else {
		copy(daySlots, off)
		for _, h := range hours {
			daySlots[h*2] = slotOn
			daySlots[h*2+1] = slotOn
		}
	}

	for d := 0; d < daysPerWeek; d++ {
		if active[d] {
			out[d] = string(daySlots)
		}
	}
	return out
}
