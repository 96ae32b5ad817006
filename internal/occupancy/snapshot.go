package occupancy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"hutplan-backend/internal/parse"
)

// ErrUnknownResource is returned when a resource id is not in the snapshot.
var ErrUnknownResource = errors.New("unknown resource")

// Snapshot is an immutable view of intervals, rooms and quotas taken from one
// read of the storage layer. A new snapshot is built whenever the data changes.
type Snapshot struct {
	intervals []Interval
	resources []Resource
	byID      map[string]Resource
	quotas    []Quota
}

// NewSnapshot copies its inputs; later changes to the slices do not affect it.
func NewSnapshot(intervals []Interval, resources []Resource, quotas []Quota) Snapshot {
	s := Snapshot{
		intervals: append([]Interval(nil), intervals...),
		resources: append([]Resource(nil), resources...),
		quotas:    append([]Quota(nil), quotas...),
		byID:      make(map[string]Resource, len(resources)),
	}
	sort.SliceStable(s.resources, func(i, j int) bool {
		if s.resources[i].DisplayOrder != s.resources[j].DisplayOrder {
			return s.resources[i].DisplayOrder < s.resources[j].DisplayOrder
		}
		return compareIDs(s.resources[i].ID, s.resources[j].ID) < 0
	})
	for _, r := range s.resources {
		s.byID[r.ID] = r
	}
	return s
}

// Intervals returns a copy of the snapshot's intervals.
func (s Snapshot) Intervals() []Interval {
	return append([]Interval(nil), s.intervals...)
}

// Resources returns the rooms ordered by display order.
func (s Snapshot) Resources() []Resource {
	return append([]Resource(nil), s.resources...)
}

// Quotas returns a copy of the snapshot's quotas.
func (s Snapshot) Quotas() []Quota {
	return append([]Quota(nil), s.quotas...)
}

// Resource looks up a room by id.
func (s Snapshot) Resource(id string) (Resource, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// On returns the intervals assigned to resourceID.
func (s Snapshot) On(resourceID string) []Interval {
	var out []Interval
	for _, iv := range s.intervals {
		if iv.ResourceID == resourceID {
			out = append(out, iv)
		}
	}
	return out
}

// DailyOccupancy is the used count of resourceID on day.
func (s Snapshot) DailyOccupancy(resourceID string, day time.Time) int {
	return DailyOccupancy(s.intervals, resourceID, day)
}

// RangeReport reports a room over [from, to) using its capacity from the snapshot.
func (s Snapshot) RangeReport(resourceID string, from, to time.Time) ([]DayReport, error) {
	r, ok := s.byID[resourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resourceID)
	}
	return RangeReport(s.intervals, resourceID, r.Capacity, from, to)
}

// CategoryReport sums capacity and usage over every room of category and merges
// the snapshot's quotas into each day.
func (s Snapshot) CategoryReport(category Category, from, to time.Time) ([]DayReport, error) {
	from, to = parse.Day(from), parse.Day(to)
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s - %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	capacity := 0
	rooms := make(map[string]bool)
	for _, r := range s.resources {
		if r.Category == category {
			capacity += r.Capacity
			rooms[r.ID] = true
		}
	}

	var reports []DayReport
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		used := 0
		for _, iv := range s.intervals {
			if rooms[iv.ResourceID] && iv.Occupies(day) {
				used += iv.Weight
			}
		}
		reports = append(reports, newDayReport(day, used, capacity))
	}
	return MergeQuota(reports, s.quotas), nil
}

// HistogramDay is one bar of the availability histogram.
type HistogramDay struct {
	Date     time.Time  `json:"date"`
	Used     Places     `json:"used"`
	Capacity Places     `json:"capacity"`
	Free     Places     `json:"free"`
	Over     []Category `json:"overCapacity,omitempty"`
	Quota    QuotaDay   `json:"quota"`
}

// MarshalJSON writes Date as YYYY-MM-DD.
func (h HistogramDay) MarshalJSON() ([]byte, error) {
	type histogramDay HistogramDay
	return json.Marshal(struct {
		histogramDay
		Date string `json:"date"`
	}{histogramDay(h), h.Date.Format(time.DateOnly)})
}

// Histogram builds per-category used/free counts for every day of [from, to)
// together with the quota active that day.
func (s Snapshot) Histogram(from, to time.Time) ([]HistogramDay, error) {
	perCategory := make(map[Category][]DayReport, len(Categories))
	for _, c := range Categories {
		reports, err := s.CategoryReport(c, from, to)
		if err != nil {
			return nil, err
		}
		perCategory[c] = reports
	}

	days := perCategory[Categories[0]]
	out := make([]HistogramDay, len(days))
	for i := range days {
		h := HistogramDay{Date: days[i].Date, Quota: *days[i].Quota}
		for _, c := range Categories {
			r := perCategory[c][i]
			setPlace(&h.Used, c, r.Used)
			setPlace(&h.Capacity, c, r.Capacity)
			setPlace(&h.Free, c, r.Free)
			if r.IsOverCapacity {
				h.Over = append(h.Over, c)
			}
		}
		out[i] = h
	}
	return out, nil
}

func setPlace(p *Places, c Category, n int) {
	switch c {
	case CategoryDorm:
		p.Dorm = n
	case CategoryBed:
		p.Bed = n
	case CategoryDouble:
		p.Double = n
	case CategorySpecial:
		p.Special = n
	}
}

// Validate checks candidate against the room's capacity and current intervals.
func (s Snapshot) Validate(resourceID string, candidate Interval) (Validation, error) {
	r, ok := s.byID[resourceID]
	if !ok {
		return Validation{}, fmt.Errorf("%w: %s", ErrUnknownResource, resourceID)
	}
	return ValidateAssignment(r.Capacity, candidate, s.On(resourceID)), nil
}

// Lanes stacks every resource group of the snapshot.
func (s Snapshot) Lanes(opts StackOptions) map[string]LaneLayout {
	return AssignLanes(s.intervals, opts)
}

// Window returns a snapshot restricted to intervals overlapping [from, to).
func (s Snapshot) Window(from, to time.Time) Snapshot {
	return NewSnapshot(Window(s.intervals, from, to), s.resources, s.quotas)
}
