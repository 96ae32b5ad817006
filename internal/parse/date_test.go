package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "Plain date",
			raw:      "2025-06-01",
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Date with time of day",
			raw:      "2025-06-01 14:30:00",
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Surrounding spaces",
			raw:      "  2025-01-10 ",
			expected: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Impossible day",
			raw:       "2025-02-30",
			expectErr: true,
		},
		{
			name:      "Empty",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "Garbage",
			raw:       "next tuesday",
			expectErr: true,
		},
		{
			name:      "Zero date from legacy rows",
			raw:       "0000-00-00 00:00:00",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Date(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}

func TestDay(t *testing.T) {
	utcMidnight := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		name  string
		input time.Time
	}{
		{name: "UTC midnight", input: utcMidnight},
		{name: "UTC afternoon", input: utcMidnight.Add(15 * time.Hour)},
		{name: "Same instant west of UTC", input: utcMidnight.In(time.FixedZone("EDT", -4*3600))},
		{name: "Same instant east of UTC", input: utcMidnight.In(time.FixedZone("CEST", 2*3600))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Day(tc.input)
			assert.True(t, got.Equal(utcMidnight), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestWeight(t *testing.T) {
	testCases := []struct {
		raw      string
		expected int
		ok       bool
	}{
		{"4", 4, true},
		{" 2 ", 2, true},
		{"0", 0, true},
		{"3.7", 3, true},
		{"-2", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			n, ok := Weight(tc.raw)
			assert.Equal(t, tc.expected, n)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestDateRange(t *testing.T) {
	from, to, err := DateRange("2025-01-10", "2025-01-13")
	require.NoError(t, err)
	assert.Equal(t, 3, DaysBetween(from, to))

	_, _, err = DateRange("2025-01-13", "2025-01-13")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = DateRange("2025-01-13", "2025-01-10")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = DateRange("2025-02-30", "2025-03-02")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = DateRange("2025-01-01", "2027-01-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
