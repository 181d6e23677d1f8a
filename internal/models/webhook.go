package models

type Webhook struct {
	BaseModel

	OwnerID uint   `gorm:"not null;index"`
	URL     string `gorm:"not null"`
	Event   string `gorm:"not null"` // specific event name or "*"
	Active  bool   `gorm:"default:true"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
