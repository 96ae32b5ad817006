package occupancy

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hutplan-backend/internal/parse"
)

// ErrInvalidRange is returned for report ranges that are empty or inverted.
var ErrInvalidRange = errors.New("invalid report range")

// Display status of a day.
const (
	StatusFree    = "free"
	StatusPartial = "partial"
	StatusFull    = "full"
)

// DayReport is the occupancy of one resource (or category) on one day.
type DayReport struct {
	Date           time.Time `json:"date"`
	Used           int       `json:"used"`
	Capacity       int       `json:"capacity"`
	Free           int       `json:"free"`
	IsOverCapacity bool      `json:"isOverCapacity"`
	Quota          *QuotaDay `json:"quota,omitempty"`
}

// MarshalJSON writes Date as YYYY-MM-DD.
func (r DayReport) MarshalJSON() ([]byte, error) {
	type dayReport DayReport
	return json.Marshal(struct {
		dayReport
		Date string `json:"date"`
	}{dayReport(r), r.Date.Format(time.DateOnly)})
}

// Status classifies the day for room-plan badges.
func (r DayReport) Status() string {
	switch {
	case r.Free == r.Capacity && r.Capacity > 0:
		return StatusFree
	case r.Free <= 0:
		return StatusFull
	}
	return StatusPartial
}

func newDayReport(day time.Time, used, capacity int) DayReport {
	free := capacity - used
	if free < 0 {
		free = 0
	}
	return DayReport{
		Date:           day,
		Used:           used,
		Capacity:       capacity,
		Free:           free,
		IsOverCapacity: used > capacity,
	}
}

// DailyOccupancy sums the weight of every interval on resourceID that occupies day.
func DailyOccupancy(intervals []Interval, resourceID string, day time.Time) int {
	used := 0
	for _, iv := range intervals {
		if iv.ResourceID == resourceID && iv.Occupies(day) {
			used += iv.Weight
		}
	}
	return used
}

// RangeReport returns one record per day in [from, to).
func RangeReport(intervals []Interval, resourceID string, capacity int, from, to time.Time) ([]DayReport, error) {
	from, to = parse.Day(from), parse.Day(to)
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s - %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidRange, capacity)
	}

	own := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.ResourceID == resourceID {
			own = append(own, iv)
		}
	}

	days := parse.DaysBetween(from, to)
	reports := make([]DayReport, 0, days)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		reports = append(reports, newDayReport(day, DailyOccupancy(own, resourceID, day), capacity))
	}
	return reports, nil
}

// Validation is the answer to "may this interval be placed on the resource".
type Validation struct {
	Allowed              bool       `json:"allowed"`
	MaxOccupancyObserved int        `json:"maxOccupancy"`
	ConflictDate         *time.Time `json:"conflictDate,omitempty"`
}

// MarshalJSON writes ConflictDate as YYYY-MM-DD.
func (v Validation) MarshalJSON() ([]byte, error) {
	type validation Validation
	var conflict *string
	if v.ConflictDate != nil {
		s := v.ConflictDate.Format(time.DateOnly)
		conflict = &s
	}
	return json.Marshal(struct {
		validation
		ConflictDate *string `json:"conflictDate,omitempty"`
	}{validation(v), conflict})
}

// Reason returns ReasonCapacityExceeded for rejected validations.
func (v Validation) Reason() Reason {
	if v.Allowed {
		return ""
	}
	return ReasonCapacityExceeded
}

// ValidateAssignment checks every day of candidate against capacity given the
// intervals already on the resource. Existing intervals carrying the
// candidate's id are ignored so that moving an assignment does not count it twice.
func ValidateAssignment(capacity int, candidate Interval, existing []Interval) Validation {
	others := make([]Interval, 0, len(existing))
	for _, iv := range existing {
		if iv.ID == candidate.ID {
			continue
		}
		others = append(others, iv)
	}

	result := Validation{Allowed: true}
	for day := candidate.Start; day.Before(candidate.End); day = day.AddDate(0, 0, 1) {
		used := candidate.Weight
		for _, iv := range others {
			if iv.Occupies(day) {
				used += iv.Weight
			}
		}
		if used > capacity {
			conflict := day
			return Validation{Allowed: false, MaxOccupancyObserved: used, ConflictDate: &conflict}
		}
		if used > result.MaxOccupancyObserved {
			result.MaxOccupancyObserved = used
		}
	}
	return result
}
