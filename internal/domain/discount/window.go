package discount

import (
	"strconv"
	"strings"
	"time"
)

// InWindow reports whether at falls inside the optional date range and the
// optional recurring time-of-day slot. Absent bounds always pass.
func InWindow(at time.Time, from, until *time.Time, slot *TimeSlot) bool {
	return withinDates(at, from, until) && withinSlot(at, slot)
}

func withinDates(at time.Time, from, until *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if until != nil && at.After(*until) {
		return false
	}
	return true
}

// withinSlot matches at against a recurring HH:mm window using the local
// wall clock of at. Start is inclusive, End exclusive. End < Start denotes an
// overnight window that wraps past midnight; Start == End means the slot is
// active all day. Unparsable slots are treated as always active.
func withinSlot(at time.Time, slot *TimeSlot) bool {
	if slot == nil || slot.Start == "" || slot.End == "" {
		return true
	}

	start, okS := parseMinutes(slot.Start)
	end, okE := parseMinutes(slot.End)
	if !okS || !okE {
		return true
	}

	m := at.Hour()*60 + at.Minute()

	switch {
	case end > start:
		return m >= start && m < end
	case end < start:
		return m >= start || m < end
	default:
		return true
	}
}

// parseMinutes converts "HH:mm" into minutes since midnight.
func parseMinutes(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
