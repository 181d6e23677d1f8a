package store

import (
	"errors"
	"time"

	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
	"gorm.io/gorm"
)

type CreateSubtaskInput struct {
	Title       string
	Description *string
}

type SubtaskUpdate struct {
	Status      types.Optional[string] `json:"status"`
	Description types.Optional[string] `json:"description"`
}

// CreateSubtask appends a subtask with display order max(existing)+1 (the
// first one gets 0). Orders are never reused or renumbered.
func CreateSubtask(gdb *gorm.DB, activityID uint, p Principal, input CreateSubtaskInput) (*models.Subtask, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var last models.Subtask

	nextOrder := 0

	err := gdb.Where("activity_id = ?", activityID).
		Order("display_order DESC").
		First(&last).Error

	if err == nil {
		nextOrder = last.DisplayOrder + 1
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	subtask := models.Subtask{
		ActivityID:   activityID,
		Title:        input.Title,
		Description:  input.Description,
		Status:       types.StatusNew,
		DisplayOrder: nextOrder,
	}

	if err := gdb.Create(&subtask).Error; err != nil {
		return nil, err
	}

	return &subtask, nil
}

func ListSubtasks(gdb *gorm.DB, activityID uint, p Principal) ([]models.Subtask, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var subtasks []models.Subtask

	err := gdb.Where("activity_id = ?", activityID).
		Order("display_order ASC").
		Find(&subtasks).Error

	if err != nil {
		return nil, err
	}

	return subtasks, nil
}

// UpdateSubtask applies status/description changes. Entering "Done" stamps
// completed_at; leaving it clears the stamp. Subtask changes are not
// recorded in the activity history.
func UpdateSubtask(gdb *gorm.DB, subtaskID, activityID uint, p Principal, update SubtaskUpdate) (*models.Subtask, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var subtask models.Subtask

	err := gdb.Where("id = ? AND activity_id = ?", subtaskID, activityID).
		First(&subtask).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}

	if update.Status.Set && update.Status.Valid && update.Status.Value != subtask.Status {
		updates["status"] = update.Status.Value

		if update.Status.Value == types.StatusDone {
			if subtask.CompletedAt == nil {
				now := time.Now().UTC()
				updates["completed_at"] = &now
			}
		} else {
			updates["completed_at"] = (*time.Time)(nil)
		}
	}

	if update.Description.Set {
		newValue := update.Description.Ptr()
		if !strPtrEqual(newValue, subtask.Description) {
			updates["description"] = newValue
		}
	}

	if len(updates) == 0 {
		return &subtask, nil
	}

	if err := gdb.Model(&subtask).Updates(updates).Error; err != nil {
		return nil, err
	}

	err = gdb.Where("id = ? AND activity_id = ?", subtaskID, activityID).
		First(&subtask).Error

	if err != nil {
		return nil, err
	}

	return &subtask, nil
}

// DeleteSubtask removes the row; sibling orders are left untouched.
func DeleteSubtask(gdb *gorm.DB, subtaskID, activityID uint, p Principal) error {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return err
	}

	var subtask models.Subtask

	err := gdb.Where("id = ? AND activity_id = ?", subtaskID, activityID).
		First(&subtask).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return gdb.Delete(&subtask).Error
}
