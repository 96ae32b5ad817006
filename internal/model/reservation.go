package model

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation is a booking as entered at the front desk, before or
// independently of its distribution over rooms.
type Reservation struct {
	ID        int64     `gorm:"primaryKey"`
	GuestName string    `gorm:"size:256;not null"`
	Arrival   time.Time `gorm:"not null;index"`
	Departure time.Time `gorm:"not null;index"`
	// Requested places per category.
	Dorm     int            `gorm:"not null;default:0"`
	Bed      int            `gorm:"not null;default:0"`
	Double   int            `gorm:"not null;default:0"`
	Special  int            `gorm:"not null;default:0"`
	Storno   bool           `gorm:"not null;default:false;index"`
	Metadata datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Assignments []RoomAssignment `gorm:"foreignKey:ReservationID"`
}

// Guests is the total number of requested places.
func (r Reservation) Guests() int {
	return r.Dorm + r.Bed + r.Double + r.Special
}

// RoomAssignment places part of a reservation into a room for [Arrival, Departure).
type RoomAssignment struct {
	ID            int64     `gorm:"primaryKey"`
	ReservationID int64     `gorm:"index;not null"`
	RoomID        int64     `gorm:"index;not null"`
	Arrival       time.Time `gorm:"not null;index"`
	Departure     time.Time `gorm:"not null;index"`
	Guests        int       `gorm:"not null"`
	Storno        bool      `gorm:"not null;default:false"`
	Note          string    `gorm:"size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Room        Room        `gorm:"constraint:OnDelete:CASCADE"`
	Reservation Reservation `gorm:"constraint:OnDelete:CASCADE"`
}
