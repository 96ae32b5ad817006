package store

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"hutplan-backend/internal/model"
	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/parse"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("room capacity exceeded")
)

// Level selects which rows a snapshot is built from.
type Level string

const (
	// LevelMaster uses reservations, all on the master pseudo-resource.
	LevelMaster Level = "master"
	// LevelRoom uses room assignments.
	LevelRoom Level = "room"
)

// AssignmentRequest creates (ID == 0) or moves an assignment.
type AssignmentRequest struct {
	ID            int64
	ReservationID int64
	RoomID        int64
	Arrival       time.Time
	Departure     time.Time
	Guests        int
	Note          string
}

// AssignmentResult is returned by AssignRoom whether or not the write happened.
type AssignmentResult struct {
	Validation occupancy.Validation
	Assignment model.RoomAssignment
	Room       model.Room
}

const rowTimeLayout = "2006-01-02 15:04:05"

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ResourceFromRoom converts a room row.
func ResourceFromRoom(r model.Room) occupancy.Resource {
	return occupancy.Resource{
		ID:           formatID(r.ID),
		Name:         r.Name,
		Category:     occupancy.Category(r.Category),
		Capacity:     r.Capacity,
		DisplayOrder: r.DisplayOrder,
	}
}

// RowFromReservation converts a reservation into a master-level raw row.
func RowFromReservation(r model.Reservation) occupancy.RawRow {
	row := occupancy.RawRow{
		ID:         formatID(r.ID),
		ResourceID: occupancy.MasterResourceID,
		Start:      r.Arrival.UTC().Format(rowTimeLayout),
		End:        r.Departure.UTC().Format(rowTimeLayout),
		Weight:     strconv.Itoa(r.Guests()),
		Cancelled:  r.Storno,
		Label:      r.GuestName,
	}
	if len(r.Metadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(r.Metadata, &meta); err == nil {
			row.Metadata = meta
		}
	}
	return row
}

// RowFromAssignment converts a room assignment into a room-level raw row.
func RowFromAssignment(a model.RoomAssignment) occupancy.RawRow {
	label := a.Note
	if a.Reservation.GuestName != "" {
		label = a.Reservation.GuestName
	}
	return occupancy.RawRow{
		ID:         formatID(a.ID),
		ResourceID: formatID(a.RoomID),
		Start:      a.Arrival.UTC().Format(rowTimeLayout),
		End:        a.Departure.UTC().Format(rowTimeLayout),
		Weight:     strconv.Itoa(a.Guests),
		Cancelled:  a.Storno,
		Label:      label,
		Metadata:   map[string]any{"reservationId": a.ReservationID},
	}
}

// QuotaFromModel converts a quota row. Quotas with an empty range are dropped.
func QuotaFromModel(q model.Quota) (occupancy.Quota, bool) {
	from, to := parse.Day(q.DateFrom), parse.Day(q.DateTo)
	if !to.After(from) {
		return occupancy.Quota{}, false
	}
	return occupancy.Quota{
		ID:   formatID(q.ID),
		Name: q.Title,
		From: from,
		To:   to,
		Places: occupancy.Places{
			Dorm:    q.Dorm,
			Bed:     q.Bed,
			Double:  q.Double,
			Special: q.Special,
		},
	}, true
}
