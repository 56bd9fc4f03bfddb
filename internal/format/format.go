// Package format renders prices and schedule times for templates.
package format

import (
	"strings"

	"motorline.org/motorline-web/internal/marketplace"
	"motorline.org/motorline-web/internal/slots"
)

// Price formats a decimal rupee amount with Indian digit grouping.
// Example: Price("1250000.00") => "₹ 12,50,000.00".
func Price(d marketplace.Decimal) string {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return ""
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}
	grouped := groupIndian(whole)
	if neg {
		return "-₹ " + grouped + frac
	}
	return "₹ " + grouped + frac
}

// groupIndian inserts separators lakh/crore style: the last three digits form
// one group, every group before that has two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	out := digits[len(digits)-3:]
	for len(head) > 2 {
		out = head[len(head)-2:] + "," + out
		head = head[:len(head)-2]
	}
	return head + "," + out
}

// Schedule renders a booking's minute-precision wire time in a readable form.
// Unparseable values pass through unchanged.
func Schedule(wire string) string {
	t, err := slots.ParseLocal(wire)
	if err != nil {
		return wire
	}
	return t.Format("Mon, 2 Jan 2006 15:04")
}

// SlotLabel renders a quick-pick button label (HH:MM).
func SlotLabel(wire string) string {
	t, err := slots.ParseLocal(wire)
	if err != nil {
		return wire
	}
	return t.Format("15:04")
}
