package models

type ActivityFile struct {
	BaseModel

	ActivityID uint   `gorm:"not null;index"`
	Filename   string `gorm:"not null"`
	FilePath   string `gorm:"not null"` // relative to the uploads directory
	FileSize   int64
	FileType   string // MIME type
	UploadedBy string // uploader username

	// Relationships
	Activity Activity `gorm:"foreignKey:ActivityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
