package occupancy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stay(id, resourceID, from, to string, weight int) Interval {
	return Interval{ID: id, ResourceID: resourceID, Start: day(from), End: day(to), Weight: weight}
}

func TestDailyOccupancy_DayBoundary(t *testing.T) {
	intervals := []Interval{stay("1", "r", "2025-06-01", "2025-06-03", 3)}

	assert.Equal(t, 3, DailyOccupancy(intervals, "r", day("2025-06-01")))
	assert.Equal(t, 3, DailyOccupancy(intervals, "r", day("2025-06-02")))
	assert.Equal(t, 0, DailyOccupancy(intervals, "r", day("2025-06-03")))
	assert.Equal(t, 0, DailyOccupancy(intervals, "other", day("2025-06-01")))
}

func TestRangeReport_AtCapacity(t *testing.T) {
	intervals := []Interval{
		stay("r1", "room", "2025-01-10", "2025-01-12", 2),
		stay("r2", "room", "2025-01-11", "2025-01-13", 2),
	}

	reports, err := RangeReport(intervals, "room", 4, day("2025-01-10"), day("2025-01-14"))
	require.NoError(t, err)
	require.Len(t, reports, 4)

	expected := []DayReport{
		{Date: day("2025-01-10"), Used: 2, Capacity: 4, Free: 2},
		{Date: day("2025-01-11"), Used: 4, Capacity: 4, Free: 0},
		{Date: day("2025-01-12"), Used: 2, Capacity: 4, Free: 2},
		{Date: day("2025-01-13"), Used: 0, Capacity: 4, Free: 4},
	}
	assert.Equal(t, expected, reports)

	assert.Equal(t, StatusPartial, reports[0].Status())
	assert.Equal(t, StatusFull, reports[1].Status())
	assert.Equal(t, StatusFree, reports[3].Status())
}

func TestRangeReport_OverCapacity(t *testing.T) {
	intervals := []Interval{
		stay("r1", "room", "2025-01-10", "2025-01-12", 2),
		stay("r2", "room", "2025-01-11", "2025-01-13", 2),
		stay("r3", "room", "2025-01-11", "2025-01-12", 1),
	}

	reports, err := RangeReport(intervals, "room", 4, day("2025-01-11"), day("2025-01-12"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 5, reports[0].Used)
	assert.Equal(t, 0, reports[0].Free)
	assert.True(t, reports[0].IsOverCapacity)
	assert.Equal(t, StatusFull, reports[0].Status())

	v := ValidateAssignment(4, intervals[2], intervals)
	assert.False(t, v.Allowed)
	require.NotNil(t, v.ConflictDate)
	assert.Equal(t, day("2025-01-11"), *v.ConflictDate)
	assert.Equal(t, 5, v.MaxOccupancyObserved)
	assert.Equal(t, ReasonCapacityExceeded, v.Reason())
}

func TestRangeReport_InvalidRange(t *testing.T) {
	_, err := RangeReport(nil, "room", 4, day("2025-01-12"), day("2025-01-12"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = RangeReport(nil, "room", 4, day("2025-01-12"), day("2025-01-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = RangeReport(nil, "room", -1, day("2025-01-10"), day("2025-01-12"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRangeReport_ZeroCapacity(t *testing.T) {
	reports, err := RangeReport([]Interval{stay("1", "closed", "2025-03-01", "2025-03-02", 1)}, "closed", 0, day("2025-03-01"), day("2025-03-03"))
	require.NoError(t, err)

	assert.True(t, reports[0].IsOverCapacity)
	assert.Equal(t, StatusFull, reports[0].Status())
	assert.False(t, reports[1].IsOverCapacity)
	assert.Equal(t, StatusFull, reports[1].Status(), "a room without capacity is never shown as free")
}

func TestValidateAssignment(t *testing.T) {
	existing := []Interval{
		stay("a", "room", "2025-03-01", "2025-03-04", 2),
		stay("b", "room", "2025-03-05", "2025-03-08", 3),
	}

	testCases := []struct {
		name      string
		candidate Interval
		allowed   bool
		max       int
		conflict  string
	}{
		{
			name:      "Fits into the gap",
			candidate: stay("new", "room", "2025-03-04", "2025-03-05", 4),
			allowed:   true,
			max:       4,
		},
		{
			name:      "Conflict only in the middle of the range",
			candidate: stay("new", "room", "2025-03-03", "2025-03-07", 2),
			allowed:   false,
			max:       5,
			conflict:  "2025-03-05",
		},
		{
			name:      "Exactly at capacity is allowed",
			candidate: stay("new", "room", "2025-03-01", "2025-03-03", 2),
			allowed:   true,
			max:       4,
		},
		{
			name:      "Moving an assignment ignores its old position",
			candidate: stay("b", "room", "2025-03-02", "2025-03-03", 2),
			allowed:   true,
			max:       4,
		},
		{
			name:      "First offending day is reported",
			candidate: stay("new", "room", "2025-02-27", "2025-03-10", 3),
			allowed:   false,
			max:       5,
			conflict:  "2025-03-01",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := ValidateAssignment(4, tc.candidate, existing)
			assert.Equal(t, tc.allowed, v.Allowed)
			assert.Equal(t, tc.max, v.MaxOccupancyObserved)
			if tc.conflict == "" {
				assert.Nil(t, v.ConflictDate)
			} else {
				require.NotNil(t, v.ConflictDate)
				assert.Equal(t, day(tc.conflict), *v.ConflictDate)
			}
		})
	}
}

func TestValidateAssignment_NoDoubleBooking(t *testing.T) {
	const capacity = 5
	var committed []Interval
	candidates := []Interval{
		stay("1", "room", "2025-04-01", "2025-04-06", 3),
		stay("2", "room", "2025-04-03", "2025-04-05", 2),
		stay("3", "room", "2025-04-02", "2025-04-04", 1),
		stay("4", "room", "2025-04-05", "2025-04-09", 2),
		stay("5", "room", "2025-04-04", "2025-04-08", 1),
		stay("6", "room", "2025-04-07", "2025-04-10", 3),
	}

	for _, c := range candidates {
		if ValidateAssignment(capacity, c, committed).Allowed {
			committed = append(committed, c)
		}
	}

	for d := day("2025-03-30"); d.Before(day("2025-04-12")); d = d.AddDate(0, 0, 1) {
		assert.LessOrEqual(t, DailyOccupancy(committed, "room", d), capacity, "day %s", d.Format(time.DateOnly))
	}
	assert.Less(t, len(committed), len(candidates))
}

func TestDayReport_MarshalJSON(t *testing.T) {
	r := DayReport{Date: day("2025-01-11"), Used: 4, Capacity: 4, Free: 0}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-01-11","used":4,"capacity":4,"free":0,"isOverCapacity":false}`, string(data))

	conflict := day("2025-01-11")
	data, err = json.Marshal(Validation{Allowed: false, MaxOccupancyObserved: 5, ConflictDate: &conflict})
	require.NoError(t, err)
	assert.JSONEq(t, `{"allowed":false,"maxOccupancy":5,"conflictDate":"2025-01-11"}`, string(data))
}

func TestPipeline_Idempotent(t *testing.T) {
	rows := []RawRow{
		{ID: "1", ResourceID: "room", Start: "2025-01-10", End: "2025-01-12", Weight: "2"},
		{ID: "2", ResourceID: "room", Start: "2025-01-11 12:00:00", End: "2025-01-13", Weight: "2"},
		{ID: "3", ResourceID: "room", Start: "2025-01-11", End: "2025-01-15", Weight: "1"},
		{ID: "4", ResourceID: "room", Start: "2025-01-31", End: "2025-01-15", Weight: "1"},
	}

	run := func() []byte {
		batch, err := Normalize(rows)
		require.NoError(t, err)
		lanes := AssignLanes(batch.Intervals, RoomStackOptions())
		report, err := RangeReport(batch.Intervals, "room", 4, day("2025-01-09"), day("2025-01-16"))
		require.NoError(t, err)
		out, err := json.Marshal(map[string]any{"batch": batch, "lanes": lanes, "report": report})
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, run(), run())
}
