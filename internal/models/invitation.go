package models

import "time"

// Invitation grants a named external party future access to one activity.
// A token resolves only while now < ExpiresAt; expired tokens are ignored,
// never purged.
type Invitation struct {
	BaseModel

	ActivityID   uint   `gorm:"not null;index"`
	InvitedEmail string `gorm:"not null"`
	Token        string `gorm:"uniqueIndex;not null"`
	CreatedBy    string // issuer username
	ExpiresAt    time.Time
	AcceptedBy   *string
	AcceptedAt   *time.Time

	// Relationships; rows are removed explicitly when the activity is deleted.
	Activity Activity `gorm:"foreignKey:ActivityID"`
}
