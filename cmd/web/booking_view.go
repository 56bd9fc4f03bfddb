package main

import (
	"time"

	"motorline.org/motorline-web/internal/marketplace"
	"motorline.org/motorline-web/internal/slots"
)

// slotOption is one quick-pick button on the booking form.
type slotOption struct {
	Wire  string // minute-precision wire value
	Label string // "10:30"
}

// bookingView backs the test-drive booking page.
type bookingView struct {
	Car      marketplace.Car
	Selected string // wire value prefilled in the datetime input
	Min      string // earliest selectable value
	Today    []slotOption
	Tomorrow []slotOption
	Errors   map[string]string
	Success  bool
	Booked   *marketplace.TestDrive
}

const quickPickCount = 6

// newBookingView prefills the form with the next bookable slot and a handful
// of quick picks for today and tomorrow. Slots already in the past are left
// out rather than shown disabled.
func newBookingView(car marketplace.Car, now time.Time) bookingView {
	initial := slots.Initial(now)
	v := bookingView{
		Car:      car,
		Selected: slots.FormatLocal(initial),
		Min:      slots.FormatLocal(initial),
		Errors:   map[string]string{},
	}
	for _, t := range slots.ForDay(now) {
		if t.Before(initial) {
			continue
		}
		v.Today = append(v.Today, slotOption{Wire: slots.FormatLocal(t), Label: t.Format("15:04")})
		if len(v.Today) == quickPickCount {
			break
		}
	}
	for _, t := range slots.ForDay(now.AddDate(0, 0, 1)) {
		v.Tomorrow = append(v.Tomorrow, slotOption{Wire: slots.FormatLocal(t), Label: t.Format("15:04")})
		if len(v.Tomorrow) == quickPickCount {
			break
		}
	}
	return v
}

// validateSlot checks a submitted booking time: parseable, slot-aligned,
// inside business hours, and not in the past.
func validateSlot(raw string, now time.Time) (time.Time, string) {
	t, err := slots.ParseLocal(raw)
	if err != nil {
		return time.Time{}, "Pick a valid date and time."
	}
	if t.Minute()%slots.SlotMinutes != 0 {
		return time.Time{}, "Test drives start on the half hour."
	}
	if h := t.Hour(); h < slots.BusinessStartHour || h >= slots.BusinessEndHour {
		return time.Time{}, "Test drives run between 09:00 and 19:00."
	}
	if t.Before(slots.Initial(now)) {
		return time.Time{}, "That slot has already passed."
	}
	return t, ""
}
