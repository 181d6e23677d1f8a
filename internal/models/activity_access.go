package models

type ActivityAccess struct {
	BaseModel

	ActivityID uint    `gorm:"not null;uniqueIndex:idx_activity_user"`
	UserID     uint    `gorm:"not null;uniqueIndex:idx_activity_user"`
	GrantedBy  *string // username of the grantor

	// Relationships
	Activity Activity `gorm:"foreignKey:ActivityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User     User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
