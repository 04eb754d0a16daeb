// Package timewindow implements the nightly processing gate: a pure
// time-of-day window check with midnight wraparound and a force-open
// override for interactive testing.
package timewindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day with minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:MM" string.
func ParseClock(value string) (Clock, error) {
	trimmed := strings.TrimSpace(value)
	hourPart, minutePart, ok := strings.Cut(trimmed, ":")
	if !ok {
		return Clock{}, fmt.Errorf("invalid clock value %q (want HH:MM)", value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid hour in clock value %q", value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in clock value %q", value)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

// Window is the configured processing window. ForceOpen bypasses the
// schedule entirely.
type Window struct {
	Start     Clock
	End       Clock
	ForceOpen bool
}

// Parse builds a Window from "HH:MM" bounds.
func Parse(start, end string, forceOpen bool) (Window, error) {
	startClock, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	endClock, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: startClock, End: endClock, ForceOpen: forceOpen}, nil
}

// IsOpen reports whether now falls inside the window. Bounds are inclusive.
// When the start lies after the end the window wraps past midnight.
func (w Window) IsOpen(now time.Time) bool {
	if w.ForceOpen {
		return true
	}
	current := now.Hour()*60 + now.Minute()
	start := w.Start.minutes()
	end := w.End.minutes()
	if start <= end {
		return current >= start && current <= end
	}
	return current >= start || current <= end
}
