package models

import "time"

// BaseModel is gorm.Model without soft deletion; deleted rows are removed
// for real so cascades leave nothing behind.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
