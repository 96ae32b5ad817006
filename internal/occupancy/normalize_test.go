package occupancy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNormalize(t *testing.T) {
	rows := []RawRow{
		{ID: "1", ResourceID: "10", Start: "2025-02-01", End: "2025-02-03", Weight: "2"},
		{ID: "2", ResourceID: "10", Start: "2025-02-30", End: "2025-03-02", Weight: "1"},
		{ID: "3", ResourceID: "10", Start: "2025-02-05 14:00:00", End: "2025-02-05 10:00:00", Weight: "1"},
		{ID: "4", ResourceID: "11", Start: "2025-02-01 15:30:00", End: "2025-02-04 09:00:00", Weight: "-3"},
		{ID: "5", ResourceID: "11", Start: "2025-02-01", End: "2025-02-02", Weight: "2", Cancelled: true},
		{ID: "", ResourceID: "11", Start: "2025-02-01", End: "2025-02-02", Weight: "2"},
		{ID: "7", ResourceID: "11", Start: "2025-02-04", End: "2025-02-02", Weight: "x"},
	}

	batch, err := Normalize(rows)
	require.NoError(t, err)

	require.Len(t, batch.Intervals, 2)
	assert.Equal(t, Interval{ID: "1", ResourceID: "10", Start: day("2025-02-01"), End: day("2025-02-03"), Weight: 2}, batch.Intervals[0])
	assert.Equal(t, Interval{ID: "4", ResourceID: "11", Start: day("2025-02-01"), End: day("2025-02-04"), Weight: 0}, batch.Intervals[1])

	reasons := map[string]Reason{}
	for _, r := range batch.Rejected {
		reasons[r.ID] = r.Reason
	}
	assert.Equal(t, map[string]Reason{
		"2": ReasonBadDate,
		"3": ReasonNonPositiveRange,
		"":  ReasonMissingField,
		"7": ReasonNonPositiveRange,
	}, reasons)
	assert.Equal(t, 4, batch.Skipped())

	require.Len(t, batch.Clamped, 1)
	assert.Equal(t, "4", batch.Clamped[0].ID)
	assert.Equal(t, ReasonNegativeWeight, batch.Clamped[0].Reason)

	assert.Equal(t, 1, batch.Cancelled)
}

func TestNormalize_BadDateDoesNotAbortBatch(t *testing.T) {
	batch, err := Normalize([]RawRow{
		{ID: "a", ResourceID: "r", Start: "2025-02-30", End: "2025-03-01", Weight: "1"},
		{ID: "b", ResourceID: "r", Start: "2025-03-01", End: "2025-03-02", Weight: "1"},
	})
	require.NoError(t, err)

	require.Len(t, batch.Rejected, 1)
	assert.Equal(t, RejectedRow{ID: "a", Reason: ReasonBadDate, Detail: batch.Rejected[0].Detail}, batch.Rejected[0])
	require.Len(t, batch.Intervals, 1)
	assert.Equal(t, "b", batch.Intervals[0].ID)
}

func TestNormalize_MalformedBatch(t *testing.T) {
	_, err := Normalize([]RawRow{
		{Start: "2025-03-01", End: "2025-03-02"},
		{ID: " ", ResourceID: "r"},
	})
	assert.ErrorIs(t, err, ErrMalformedBatch)

	batch, err := Normalize(nil)
	assert.NoError(t, err)
	assert.Empty(t, batch.Intervals)
}

func TestRawRow_UnmarshalJSON(t *testing.T) {
	var rows []RawRow
	err := json.Unmarshal([]byte(`[
		{"id":"1","resourceId":"10","start":"2025-01-10","end":"2025-01-12","weight":2},
		{"id":"2","resourceId":"10","start":"2025-01-10","end":"2025-01-12","weight":"3","storno":true},
		{"id":"3","resourceId":"10","start":"2025-01-10","end":"2025-01-12","weight":null}
	]`), &rows)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[0].Weight)
	assert.Equal(t, "10", rows[0].ResourceID)
	assert.Equal(t, "3", rows[1].Weight)
	assert.True(t, rows[1].Cancelled)
	assert.Equal(t, "", rows[2].Weight)
}

func TestInterval_Occupies(t *testing.T) {
	iv := Interval{ID: "1", ResourceID: "r", Start: day("2025-06-01"), End: day("2025-06-03"), Weight: 1}

	assert.False(t, iv.Occupies(day("2025-05-31")))
	assert.True(t, iv.Occupies(day("2025-06-01")))
	assert.True(t, iv.Occupies(day("2025-06-02").Add(20*time.Hour)))
	assert.False(t, iv.Occupies(day("2025-06-03")))
	assert.Equal(t, 2, iv.Nights())
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Start: day("2025-06-01"), End: day("2025-06-03")}
	b := Interval{Start: day("2025-06-03"), End: day("2025-06-05")}
	c := Interval{Start: day("2025-06-02"), End: day("2025-06-04")}

	assert.False(t, a.Overlaps(b), "touching intervals do not overlap")
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}

func TestCompareIDs(t *testing.T) {
	assert.Equal(t, -1, compareIDs("9", "10"))
	assert.Equal(t, 1, compareIDs("b", "a"))
	assert.Equal(t, -1, compareIDs("7", "a"))
	assert.Equal(t, 0, compareIDs("42", "42"))
}
