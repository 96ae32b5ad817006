package occupancy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeQuota(t *testing.T) {
	quotas := []Quota{
		{ID: "q1", Name: "Alpenverein", From: day("2025-07-01"), To: day("2025-07-05"), Places: Places{Dorm: 10, Bed: 2}},
		{ID: "q2", Name: "Schule", From: day("2025-07-03"), To: day("2025-07-04"), Places: Places{Dorm: 5, Double: 1}},
		{ID: "q3", Name: "Bergführer", From: day("2025-07-03"), To: day("2025-07-08"), Places: Places{Special: 3}},
	}

	reports, err := RangeReport(nil, "room", 6, day("2025-06-30"), day("2025-07-09"))
	require.NoError(t, err)

	merged := MergeQuota(reports, quotas)
	require.Len(t, merged, len(reports))
	for _, r := range reports {
		assert.Nil(t, r.Quota, "input reports are not modified")
	}

	testCases := []struct {
		index    int
		places   Places
		from, to string
		multiDay bool
	}{
		{index: 0, places: Places{}},
		{index: 1, places: Places{Dorm: 10, Bed: 2}, from: "2025-07-01", to: "2025-07-05", multiDay: true},
		{index: 3, places: Places{Dorm: 15, Bed: 2, Double: 1, Special: 3}, from: "2025-07-01", to: "2025-07-08", multiDay: true},
		{index: 5, places: Places{Special: 3}, from: "2025-07-03", to: "2025-07-08", multiDay: true},
		{index: 8, places: Places{}},
	}

	for _, tc := range testCases {
		q := merged[tc.index].Quota
		require.NotNil(t, q)
		assert.Equal(t, tc.places, q.Places, "day %d", tc.index)
		assert.Equal(t, tc.multiDay, q.MultiDay, "day %d", tc.index)
		if tc.from == "" {
			assert.True(t, q.From.IsZero())
			assert.True(t, q.To.IsZero())
		} else {
			assert.Equal(t, day(tc.from), q.From)
			assert.Equal(t, day(tc.to), q.To)
		}
	}

	// q1 + q2 + q3 on 2025-07-03
	assert.Equal(t, quotas[0].Places.Add(quotas[1].Places).Add(quotas[2].Places), merged[3].Quota.Places)
	assert.Equal(t, []string{"Alpenverein", "Schule", "Bergführer"}, merged[3].Quota.Names)
}

func TestQuotaFor_SingleDayQuota(t *testing.T) {
	q := QuotaFor(day("2025-08-01"), []Quota{
		{ID: "1", From: day("2025-08-01"), To: day("2025-08-02"), Places: Places{Bed: 4}},
	})

	assert.False(t, q.MultiDay)
	assert.Equal(t, 4, q.Places.Total())
	assert.Equal(t, 4, q.Places.Get(CategoryBed))
}

func TestQuotaDay_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(QuotaDay{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"places":{"lager":0,"betten":0,"dz":0,"sonder":0},"dateFrom":null,"dateTo":null,"multiDay":false}`, string(data))

	data, err = json.Marshal(QuotaDay{Places: Places{Dorm: 1}, From: day("2025-08-01"), To: day("2025-08-03"), MultiDay: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"places":{"lager":1,"betten":0,"dz":0,"sonder":0},"dateFrom":"2025-08-01","dateTo":"2025-08-03","multiDay":true}`, string(data))
}
