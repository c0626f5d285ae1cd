// Package timeparsing parses the cutoff expression given to --active-since.
//
// Parsing is layered: compact duration first (-2y, -18m), then absolute
// timestamps (RFC3339, date-only), then natural language ("two years ago",
// "last january").
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// compactDurationRe matches compact duration patterns: [+-]?(\d+)([hdwmy])
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// ParseCutoff parses a cutoff expression relative to now, trying each layer
// in order. Durations without a sign are taken as "that long ago", since a
// cutoff in the future would make every user inactive.
func ParseCutoff(s string, now time.Time) (time.Time, error) {
	if IsCompactDuration(s) {
		return parseCompactDuration(s, now)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := parseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a duration, date, or natural-language expression", s)
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

// parseCompactDuration parses compact duration syntax ([+-]?(\d+)[hdwmy])
// and applies it to now. An unsigned duration counts backward.
func parseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	sign := matches[1]
	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	unit := matches[3]

	// Default direction is the past: "2y" means two years ago.
	if sign != "+" {
		amount = -amount
	}

	switch unit {
	case "h":
		return now.Add(time.Duration(amount) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, amount), nil
	case "w":
		return now.AddDate(0, 0, amount*7), nil
	case "m":
		return now.AddDate(0, amount, 0), nil
	case "y":
		return now.AddDate(amount, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown duration unit: %q", unit)
}
