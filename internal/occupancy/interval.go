// Package occupancy packs date-ranged reservations into display lanes and
// aggregates their per-day occupancy against room capacity and quotas.
//
// Every function in this package is a pure function of its arguments. Callers
// pass an immutable Snapshot (or plain slices) on each call; nothing here keeps
// state between calls.
package occupancy

import (
	"strconv"
	"time"

	"hutplan-backend/internal/parse"
)

// MasterResourceID is the pseudo-resource holding reservation-level intervals
// for the all-reservations overview.
const MasterResourceID = "master"

// Interval is a half-open date range [Start, End) bound to a resource.
type Interval struct {
	ID         string         `json:"id"`
	ResourceID string         `json:"resourceId"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Weight     int            `json:"weight"`
	Label      string         `json:"label,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Occupies reports whether the interval occupies calendar day d. The arrival
// day is occupied, the departure day is free.
func (iv Interval) Occupies(d time.Time) bool {
	day := parse.Day(d)
	return !day.Before(iv.Start) && day.Before(iv.End)
}

// Nights is the number of occupied days.
func (iv Interval) Nights() int {
	return parse.DaysBetween(iv.Start, iv.End)
}

// Overlaps reports whether both intervals occupy at least one common day.
// Intervals touching at a boundary (a.End == b.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Span returns the symbolic layout position of the interval in day units
// relative to origin. Both endpoints sit at noon of their day and are pulled
// inwards by inset.
func (iv Interval) Span(origin time.Time, inset float64) (float64, float64) {
	start := float64(parse.DaysBetween(origin, iv.Start)) + 0.5
	end := float64(parse.DaysBetween(origin, iv.End)) + 0.5
	return start + inset, end - inset
}

// Category is a bed category of the hut.
type Category string

const (
	CategoryDorm    Category = "dorm"
	CategoryBed     Category = "bed"
	CategoryDouble  Category = "double"
	CategorySpecial Category = "special"
)

// Categories lists all categories in report order.
var Categories = []Category{CategoryDorm, CategoryBed, CategoryDouble, CategorySpecial}

// Resource is a capacity-bounded room.
type Resource struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Category     Category `json:"category,omitempty"`
	Capacity     int      `json:"capacity"`
	DisplayOrder int      `json:"displayOrder"`
}

// Places holds a count per category.
type Places struct {
	Dorm    int `json:"lager"`
	Bed     int `json:"betten"`
	Double  int `json:"dz"`
	Special int `json:"sonder"`
}

// Add returns the per-category sum of p and o.
func (p Places) Add(o Places) Places {
	return Places{
		Dorm:    p.Dorm + o.Dorm,
		Bed:     p.Bed + o.Bed,
		Double:  p.Double + o.Double,
		Special: p.Special + o.Special,
	}
}

// Total sums all categories.
func (p Places) Total() int {
	return p.Dorm + p.Bed + p.Double + p.Special
}

// Get returns the count for a category.
func (p Places) Get(c Category) int {
	switch c {
	case CategoryDorm:
		return p.Dorm
	case CategoryBed:
		return p.Bed
	case CategoryDouble:
		return p.Double
	case CategorySpecial:
		return p.Special
	}
	return 0
}

// Quota is a date-ranged allowance [From, To) applied additively per category.
type Quota struct {
	ID     string    `json:"id"`
	Name   string    `json:"name,omitempty"`
	From   time.Time `json:"dateFrom"`
	To     time.Time `json:"dateTo"`
	Places Places    `json:"places"`
}

// Active reports whether the quota applies on day d.
func (q Quota) Active(d time.Time) bool {
	day := parse.Day(d)
	return !day.Before(q.From) && day.Before(q.To)
}

// compareIDs orders identifiers numerically when both are integers and
// lexically otherwise.
func compareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
