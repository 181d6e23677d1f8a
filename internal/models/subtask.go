package models

import "time"

type Subtask struct {
	BaseModel

	ActivityID  uint    `gorm:"not null;index"`
	Title       string  `gorm:"not null"`
	Description *string `gorm:"type:text"`
	Status      string  `gorm:"not null"`
	// Display order within the activity: max existing order + 1 at creation,
	// never renumbered on delete.
	DisplayOrder int `gorm:"not null;column:display_order"`
	CompletedAt  *time.Time

	// Relationships
	Activity Activity `gorm:"foreignKey:ActivityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
