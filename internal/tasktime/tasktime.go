// Package tasktime parses and formats the time-of-day strings carried by tasks.
//
// The canonical representation is the 12-hour form "H:MM AM" / "H:MM PM".
// 24-hour "HH:MM" input is accepted at the boundary and converted with
// Normalize; nothing else in the codebase stores 24-hour strings.
package tasktime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned by Normalize for input in neither accepted format
var ErrInvalidTime = errors.New("invalid time: expected H:MM AM|PM or HH:MM")

// Clock parses a canonical 12-hour string into 24-hour components.
// 12 AM is hour 0; PM adds 12 except for 12 PM.
func Clock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), " ")
	if len(parts) != 2 {
		return 0, 0, false
	}
	period := strings.ToUpper(parts[1])
	if period != "AM" && period != "PM" {
		return 0, 0, false
	}

	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 {
		return 0, 0, false
	}
	hour, ok = parseDigits(hm[0], 2)
	if !ok || hour < 1 || hour > 12 {
		return 0, 0, false
	}
	minute, ok = parseDigits(hm[1], 2)
	if !ok || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	switch {
	case period == "AM" && hour == 12:
		hour = 0
	case period == "PM" && hour != 12:
		hour += 12
	}
	return hour, minute, true
}

// NextOccurrence returns the next instant strictly after now at which the
// 12-hour time s occurs: today at that hour and minute with zero seconds, or
// the same wall time one calendar day later if today's instant is not after now.
func NextOccurrence(s string, now time.Time) (time.Time, bool) {
	hour, minute, ok := Clock(s)
	if !ok {
		return time.Time{}, false
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, true
}

// Hour returns the 24-hour hour of a canonical time string
func Hour(s string) (int, bool) {
	hour, _, ok := Clock(s)
	return hour, ok
}

// Format renders 24-hour components in the canonical 12-hour form
func Format(hour, minute int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, period)
}

// Normalize converts boundary input to the canonical 12-hour form.
// Canonical input is re-rendered (so "09:05 pm" becomes "9:05 PM");
// 24-hour "HH:MM" input is converted.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if hour, minute, ok := Clock(s); ok {
		return Format(hour, minute), nil
	}
	if hour, minute, ok := clock24(s); ok {
		return Format(hour, minute), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// Valid reports whether s is accepted by Normalize
func Valid(s string) bool {
	_, err := Normalize(s)
	return err == nil
}

func clock24(s string) (hour, minute int, ok bool) {
	hm := strings.Split(s, ":")
	if len(hm) != 2 || len(hm[1]) != 2 {
		return 0, 0, false
	}
	hour, ok = parseDigits(hm[0], 2)
	if !ok || hour > 23 {
		return 0, 0, false
	}
	minute, ok = parseDigits(hm[1], 2)
	if !ok || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// parseDigits accepts 1..maxLen ASCII digits and nothing else (no sign, no spaces)
func parseDigits(s string, maxLen int) (int, bool) {
	if s == "" || len(s) > maxLen {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
