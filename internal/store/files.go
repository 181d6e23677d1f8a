package store

import (
	"errors"

	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

type FileInfo struct {
	Filename   string
	FilePath   string
	FileSize   int64
	FileType   string
	UploadedBy string
}

func CreateActivityFile(gdb *gorm.DB, activityID uint, p Principal, info FileInfo) (*models.ActivityFile, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	file := models.ActivityFile{
		ActivityID: activityID,
		Filename:   info.Filename,
		FilePath:   info.FilePath,
		FileSize:   info.FileSize,
		FileType:   info.FileType,
		UploadedBy: info.UploadedBy,
	}

	if err := gdb.Create(&file).Error; err != nil {
		return nil, err
	}

	return &file, nil
}

func ListActivityFiles(gdb *gorm.DB, activityID uint, p Principal) ([]models.ActivityFile, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var files []models.ActivityFile

	err := gdb.Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&files).Error

	if err != nil {
		return nil, err
	}

	return files, nil
}

func GetActivityFile(gdb *gorm.DB, fileID, activityID uint, p Principal) (*models.ActivityFile, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var file models.ActivityFile

	err := gdb.Where("id = ? AND activity_id = ?", fileID, activityID).
		First(&file).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &file, nil
}

func DeleteActivityFile(gdb *gorm.DB, fileID, activityID uint, p Principal) (*models.ActivityFile, error) {
	file, err := GetActivityFile(gdb, fileID, activityID, p)

	if err != nil {
		return nil, err
	}

	if err := gdb.Delete(file).Error; err != nil {
		return nil, err
	}

	return file, nil
}
