package model

import "time"

// Quota is a date-ranged allowance of places per category.
type Quota struct {
	ID        int64     `gorm:"primaryKey"`
	Title     string    `gorm:"size:128;not null"`
	DateFrom  time.Time `gorm:"not null;index"`
	DateTo    time.Time `gorm:"not null;index"`
	Dorm      int       `gorm:"not null;default:0"`
	Bed       int       `gorm:"not null;default:0"`
	Double    int       `gorm:"not null;default:0"`
	Special   int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Quota) TableName() string {
	return "quotas"
}
