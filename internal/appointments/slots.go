package appointments

import (
	"sort"
	"time"

	"github.com/medisched/medisched/internal/doctors"
)

const slotInterval = 30 * time.Minute

// defaultSlots is the booking window used when a doctor has no usable
// stored schedule: half-hour slots 09:00-11:30 and 14:00-17:00.
func defaultSlots() []string {
	slots := make([]string, 0, 11)
	slots = append(slots, generate("09:00", "11:30", false)...)
	slots = append(slots, generate("14:00", "17:00", false)...)
	return slots
}

// SlotsForDate computes the raw bookable slots for a doctor on a date,
// before subtracting existing bookings.
//
// With a stored schedule, the weekday entry drives the result: unavailable
// days yield an empty list, available days yield half-hour slots from start
// to end inclusive of the end boundary. A missing weekday entry, malformed
// schedule JSON or unparsable times fall back to the default window.
func SlotsForDate(scheduleRaw string, date time.Time) []string {
	week, ok := doctors.ParseWeekSchedule(scheduleRaw)
	if !ok {
		return defaultSlots()
	}

	day, ok := week[weekdayKey(date)]
	if !ok {
		return defaultSlots()
	}
	if !day.IsAvailable {
		return []string{}
	}

	slots := generate(day.Start, day.End, true)
	if slots == nil {
		return defaultSlots()
	}
	return slots
}

// SubtractBooked removes already-booked times from a slot list, matching by
// exact HH:MM equality. The result is ascending; empty is valid.
func SubtractBooked(slots, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	free := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	sort.Strings(free)
	return free
}

func weekdayKey(date time.Time) string {
	switch date.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	}
	return "sunday"
}

// generate walks from start to end at the slot interval. inclusiveEnd keeps
// the boundary tick itself. Returns nil when either time does not parse.
func generate(start, end string, inclusiveEnd bool) []string {
	from, err := time.Parse("15:04", start)
	if err != nil {
		return nil
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		return nil
	}
	if to.Before(from) {
		return nil
	}

	var slots []string
	for t := from; t.Before(to) || (inclusiveEnd && t.Equal(to)); t = t.Add(slotInterval) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots
}
