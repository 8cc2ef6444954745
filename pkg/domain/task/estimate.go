package task

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// estimatePart matches one "<number> <unit>" group, e.g. "30 minutes" or "1.5h".
var estimatePart = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]+)`)

// Duration constants for estimates.
const (
	HoursPerDay = 8 // Assume 8-hour work day
	DaysPerWeek = 5 // Assume 5-day work week
)

// Estimate is a parsed time estimate. Backends phrase estimates freely
// ("30 minutes", "2 hours", "1h 30m"), so parsing accepts long and short
// unit names and compound values.
type Estimate struct {
	raw      string
	duration time.Duration
}

// ParseEstimate parses a free-form estimate string.
func ParseEstimate(s string) (Estimate, error) {
	clean := strings.TrimSpace(strings.ToLower(s))
	if clean == "" {
		return Estimate{}, nil
	}

	matches := estimatePart.FindAllStringSubmatchIndex(clean, -1)
	if matches == nil {
		return Estimate{}, fmt.Errorf("invalid estimate format: %q", s)
	}

	var total time.Duration
	prev := 0
	for _, m := range matches {
		if !isFiller(clean[prev:m[0]]) {
			return Estimate{}, fmt.Errorf("invalid estimate format: %q", s)
		}
		value, err := strconv.ParseFloat(clean[m[2]:m[3]], 64)
		if err != nil {
			return Estimate{}, fmt.Errorf("invalid estimate value: %q", clean[m[2]:m[3]])
		}
		unit, ok := unitDuration(clean[m[4]:m[5]])
		if !ok {
			return Estimate{}, fmt.Errorf("invalid estimate unit: %q", clean[m[4]:m[5]])
		}
		total += time.Duration(value * float64(unit))
		prev = m[1]
	}
	if !isFiller(clean[prev:]) {
		return Estimate{}, fmt.Errorf("invalid estimate format: %q", s)
	}

	return Estimate{raw: strings.TrimSpace(s), duration: total}, nil
}

func isFiller(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "," || s == "and" || s == "~"
}

func unitDuration(unit string) (time.Duration, bool) {
	switch unit {
	case "m", "min", "mins", "minute", "minutes":
		return time.Minute, true
	case "h", "hr", "hrs", "hour", "hours":
		return time.Hour, true
	case "d", "day", "days":
		return HoursPerDay * time.Hour, true
	case "w", "wk", "week", "weeks":
		return DaysPerWeek * HoursPerDay * time.Hour, true
	default:
		return 0, false
	}
}

// String returns the original string representation of the estimate.
func (e Estimate) String() string {
	return e.raw
}

// Duration returns the duration of the estimate.
func (e Estimate) Duration() time.Duration {
	return e.duration
}

// IsZero returns true if the estimate is empty.
func (e Estimate) IsZero() bool {
	return e.duration == 0
}

// Add adds two estimates together.
func (e Estimate) Add(other Estimate) Estimate {
	total := e.duration + other.duration
	return Estimate{raw: FormatDuration(total), duration: total}
}

// FormatDuration renders d as hours and minutes, e.g. "2h30m" or "45m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// TotalEstimate sums the parseable estimates of subtasks. The second
// return value counts estimates that could not be parsed and were skipped.
func TotalEstimate(subtasks []Subtask) (Estimate, int) {
	var total Estimate
	skipped := 0
	for _, s := range subtasks {
		e, err := ParseEstimate(s.TimeEstimate)
		if err != nil || e.IsZero() {
			skipped++
			continue
		}
		total = total.Add(e)
	}
	return total, skipped
}
