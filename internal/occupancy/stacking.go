package occupancy

import (
	"sort"
	"time"
)

// Layout constants in day units.
const (
	// MasterTolerance lets reservation bars on the overview overlap by a quarter day before a new lane opens.
	MasterTolerance = 0.25
	// RoomTolerance is the narrower band used on room rows.
	RoomTolerance = 0.10
	// LanePadding keeps bars that only touch visually from sharing a lane edge.
	LanePadding = 0.05
	// BarInset is the gap drawn on each side of a bar.
	BarInset = 0.10
)

// StackOptions tunes the lane packer. All values are fractions of one day.
type StackOptions struct {
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	Padding   float64 `json:"padding" yaml:"padding"`
	Inset     float64 `json:"inset" yaml:"inset"`
}

// MasterStackOptions are the defaults for the all-reservations overview.
func MasterStackOptions() StackOptions {
	return StackOptions{Tolerance: MasterTolerance, Padding: LanePadding, Inset: BarInset}
}

// RoomStackOptions are the defaults for room rows.
func RoomStackOptions() StackOptions {
	return StackOptions{Tolerance: RoomTolerance, Padding: LanePadding, Inset: BarInset}
}

// LaneLayout is the lane assignment of one resource group.
type LaneLayout struct {
	ResourceID string         `json:"resourceId"`
	Lanes      map[string]int `json:"lanes"`
	MaxLane    int            `json:"maxLane"`
}

// LaneCount is the number of lanes in use.
func (l LaneLayout) LaneCount() int {
	return l.MaxLane + 1
}

// Height returns the row height needed to draw every lane.
func (l LaneLayout) Height(base, bar, gap float64) float64 {
	return base + float64(l.LaneCount())*(bar+gap)
}

// AssignLanes groups intervals by resource and stacks each group independently.
func AssignLanes(intervals []Interval, opts StackOptions) map[string]LaneLayout {
	groups := make(map[string][]Interval)
	for _, iv := range intervals {
		groups[iv.ResourceID] = append(groups[iv.ResourceID], iv)
	}

	layouts := make(map[string]LaneLayout, len(groups))
	for resourceID, group := range groups {
		layout := StackGroup(group, opts)
		layout.ResourceID = resourceID
		layouts[resourceID] = layout
	}
	return layouts
}

// StackGroup assigns each interval of a single group to the lowest lane whose
// end marker does not reach past the interval's start plus tolerance. This is
// first-fit greedy in (start, id) order and deliberately not a minimum-lane
// solver: re-renders of the same data must produce the same lanes.
func StackGroup(group []Interval, opts StackOptions) LaneLayout {
	layout := LaneLayout{Lanes: make(map[string]int, len(group)), MaxLane: -1}
	if len(group) == 0 {
		return layout
	}
	layout.ResourceID = group[0].ResourceID

	sorted := make([]Interval, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return compareIDs(sorted[i].ID, sorted[j].ID) < 0
	})

	origin := sorted[0].Start
	var laneEnds []float64
	for _, iv := range sorted {
		start, end := iv.Span(origin, opts.Inset)

		lane := -1
		for i, marker := range laneEnds {
			if marker <= start+opts.Tolerance {
				lane = i
				break
			}
		}
		if lane < 0 {
			laneEnds = append(laneEnds, 0)
			lane = len(laneEnds) - 1
		}
		laneEnds[lane] = end + opts.Padding

		layout.Lanes[iv.ID] = lane
		if lane > layout.MaxLane {
			layout.MaxLane = lane
		}
	}
	return layout
}

// Placement is an interval together with its lane, in drawing order.
type Placement struct {
	Interval
	Lane int `json:"lane"`
}

// Placements lists the group's intervals in (start, id) order with their lanes.
// Intervals missing from the layout are skipped.
func (l LaneLayout) Placements(group []Interval) []Placement {
	out := make([]Placement, 0, len(group))
	for _, iv := range group {
		lane, ok := l.Lanes[iv.ID]
		if !ok {
			continue
		}
		out = append(out, Placement{Interval: iv, Lane: lane})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return compareIDs(out[i].ID, out[j].ID) < 0
	})
	return out
}

// Window clips intervals to those overlapping [from, to).
func Window(intervals []Interval, from, to time.Time) []Interval {
	out := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Start.Before(to) && from.Before(iv.End) {
			out = append(out, iv)
		}
	}
	return out
}
