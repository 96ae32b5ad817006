package parse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"

	// MaxRangeDays bounds date ranges accepted at the API boundary.
	MaxRangeDays = 400
)

var (
	ErrEmptyDate    = errors.New("empty date")
	ErrInvalidRange = errors.New("invalid date range")
)

// Date parses "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" and returns the calendar day
// as a UTC midnight. Time of day is discarded.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}

	layout := dateLayout
	if len(s) > len(dateLayout) {
		layout = dateTimeLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return Day(t), nil
}

// Day truncates t to the UTC midnight of its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// Weight coerces a guest count to a non-negative integer. ok is false when the
// value had to be clamped to 0 (negative or non-numeric input).
func Weight(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	// 小数也接受，截断到整数
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// DateRange parses a [from, to) pair of query parameters.
func DateRange(from, to string) (time.Time, time.Time, error) {
	start, err := Date(from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from: %v", ErrInvalidRange, err)
	}
	end, err := Date(to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to: %v", ErrInvalidRange, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to %s is not after from %s", ErrInvalidRange, to, from)
	}
	if DaysBetween(start, end) > MaxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: more than %d days", ErrInvalidRange, MaxRangeDays)
	}
	return start, end, nil
}
