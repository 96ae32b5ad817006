package model

import "time"

// Room is a bookable room or dormitory of the hut.
type Room struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;size:128;not null"`
	Category     string `gorm:"size:16;not null;index"` // dorm | bed | double | special
	Capacity     int    `gorm:"not null;check:capacity >= 0"`
	DisplayOrder int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Assignments []RoomAssignment `gorm:"foreignKey:RoomID"`
}
