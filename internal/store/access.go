package store

import (
	"errors"

	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

// CanAccess reports whether the principal may read or write the activity.
// Rule, in order: the activity must exist; Admins may access anything; the
// owner may access their own; otherwise an ActivityAccess row must exist.
// Re-evaluated on every call, no caching.
func CanAccess(gdb *gorm.DB, activityID uint, p Principal) (bool, error) {
	var activity models.Activity

	if err := gdb.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if p.IsAdmin() {
		return true, nil
	}

	if activity.OwnerID == p.ID {
		return true, nil
	}

	var count int64

	err := gdb.Model(&models.ActivityAccess{}).
		Where("activity_id = ? AND user_id = ?", activityID, p.ID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// requireAccess folds a denied or failed check into ErrNotFound so callers
// surface inaccessible and missing activities identically.
func requireAccess(gdb *gorm.DB, activityID uint, p Principal) error {
	ok, err := CanAccess(gdb, activityID, p)

	if err != nil {
		return err
	}

	if !ok {
		return ErrNotFound
	}

	return nil
}
