package models

// ActivityHistory is an append-only record of one field-level change.
// Rows are never updated; they are removed only when the owning activity is
// deleted.
type ActivityHistory struct {
	BaseModel

	ActivityID   uint    `gorm:"not null;index"`
	ChangedBy    string  `gorm:"not null"` // actor username
	ChangedField string  `gorm:"not null"` // "status", "assigned_to", "description", "due_date"
	OldValue     *string `gorm:"type:text"`
	NewValue     *string `gorm:"type:text"`

	// Relationships
	Activity Activity `gorm:"foreignKey:ActivityID"`
}
