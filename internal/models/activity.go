package models

import "time"

type Activity struct {
	BaseModel

	Title         string  `gorm:"not null;index"`
	Description   *string `gorm:"type:text"`
	InjectedBy    *string
	Status        string  `gorm:"not null;index"` // "New", "In Progress", "Done", free-form
	AssignedTo    *string `gorm:"index"`          // denormalized display name, not a foreign key
	AssignedEmail *string
	DueDate       *time.Time
	OwnerID       uint `gorm:"not null;index"`

	// Relationships
	Owner      User             `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Subtasks   []Subtask        `gorm:"foreignKey:ActivityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Files      []ActivityFile   `gorm:"foreignKey:ActivityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SharedWith []ActivityAccess `gorm:"foreignKey:ActivityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`

	// History and Invitation rows are removed explicitly on delete, not by cascade.
	History []ActivityHistory `gorm:"foreignKey:ActivityID"`
}
