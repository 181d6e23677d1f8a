package models

import "time"

type User struct {
	BaseModel

	Username     string `gorm:"uniqueIndex;not null"`
	Email        *string
	FullName     *string
	Role         string `gorm:"not null;index"` // "Admin" or "Collaborator"
	PasswordHash string `gorm:"not null"`
	LastLogin    *time.Time

	// Relationships
	OwnedActivities  []Activity       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SharedActivities []ActivityAccess `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Webhooks         []Webhook        `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
