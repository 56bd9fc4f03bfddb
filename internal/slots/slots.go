// Package slots computes bookable test-drive time slots.
//
// Slots are 30-minute boundaries inside business hours [09:00, 19:00) on the
// local wall clock. No timezone conversion is performed; the backend stores
// the same local, minute-precision value the user picked.
package slots

import "time"

const (
	// BusinessStartHour is the first bookable hour of the day.
	BusinessStartHour = 9
	// BusinessEndHour is the exclusive end of bookable hours.
	BusinessEndHour = 19
	// SlotMinutes is the slot granularity.
	SlotMinutes = 30
)

// wireLayout is the minute-precision form used on the wire and in
// datetime-local inputs.
const wireLayout = "2006-01-02T15:04"

// RoundUpToNext aligns now to the next slot boundary. Seconds and
// sub-seconds are dropped first; if the minutes are not already a multiple
// of SlotMinutes the time advances to the next multiple. If the aligned time
// is not strictly after now (truncation can land exactly on now), it advances
// one more full slot.
func RoundUpToNext(now time.Time) time.Time {
	rounded := now.Truncate(time.Minute)
	if rem := rounded.Minute() % SlotMinutes; rem != 0 {
		rounded = rounded.Add(time.Duration(SlotMinutes-rem) * time.Minute)
	}
	if !rounded.After(now) {
		rounded = rounded.Add(SlotMinutes * time.Minute)
	}
	return rounded
}

// ClampToBusinessHours moves t inside business hours. Times before 09:00 snap
// to 09:00 the same day; times at or after 19:00 roll to 09:00 the next day.
func ClampToBusinessHours(t time.Time) time.Time {
	switch h := t.Hour(); {
	case h < BusinessStartHour:
		return dayStart(t)
	case h >= BusinessEndHour:
		return dayStart(t.AddDate(0, 0, 1))
	default:
		return t
	}
}

// Initial returns the default and minimum selectable booking time: the next
// slot boundary strictly after now, clamped into business hours.
func Initial(now time.Time) time.Time {
	return ClampToBusinessHours(RoundUpToNext(now))
}

// ForDay enumerates every slot boundary of date's calendar day, from 09:00
// inclusive up to but excluding 19:00.
func ForDay(date time.Time) []time.Time {
	var out []time.Time
	for t := dayStart(date); t.Hour() < BusinessEndHour; t = t.Add(SlotMinutes * time.Minute) {
		out = append(out, t)
	}
	return out
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), BusinessStartHour, 0, 0, 0, t.Location())
}

// FormatLocal renders t in the minute-precision wire form (YYYY-MM-DDTHH:MM).
func FormatLocal(t time.Time) string {
	return t.Format(wireLayout)
}

// ParseLocal parses the minute-precision wire form in the local location.
func ParseLocal(s string) (time.Time, error) {
	return time.ParseInLocation(wireLayout, s, time.Local)
}
