package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type CreateActivityInput struct {
	Title       string
	Description *string
	InjectedBy  *string
	DueDate     *time.Time
}

// ActivityUpdate carries the patchable fields. Each is tri-state: absent
// fields are left alone, explicit nulls clear nullable columns.
type ActivityUpdate struct {
	Status      types.Optional[string]    `json:"status"`
	AssignedTo  types.Optional[string]    `json:"assigned_to"`
	Description types.Optional[string]    `json:"description"`
	DueDate     types.Optional[time.Time] `json:"due_date"`
}

func CreateActivity(gdb *gorm.DB, ownerID uint, input CreateActivityInput) (*models.Activity, error) {
	activity := models.Activity{
		Title:       input.Title,
		Description: input.Description,
		InjectedBy:  input.InjectedBy,
		Status:      types.StatusNew,
		DueDate:     normalizeTime(input.DueDate),
		OwnerID:     ownerID,
	}

	if err := gdb.Create(&activity).Error; err != nil {
		return nil, err
	}

	return &activity, nil
}

func GetActivity(gdb *gorm.DB, activityID uint, p Principal) (*models.Activity, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var activity models.Activity

	if err := gdb.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &activity, nil
}

// scopeQuery restricts a query to the activities the principal may see:
// everything for Admins, owned or shared rows for everyone else.
func scopeQuery(gdb *gorm.DB, p Principal) *gorm.DB {
	query := gdb.Model(&models.Activity{})

	if !p.IsAdmin() {
		shared := gdb.Model(&models.ActivityAccess{}).
			Select("activity_id").
			Where("user_id = ?", p.ID)
		query = query.Where("activities.owner_id = ? OR activities.id IN (?)", p.ID, shared)
	}

	return query
}

// ListActivities pages through the principal's scope, newest first. The
// total is counted before pagination. page below 1 becomes 1; perPage below
// 1 becomes DefaultPerPage and is capped at MaxPerPage.
func ListActivities(gdb *gorm.DB, p Principal, status, assignedTo string, page, perPage int) ([]models.Activity, int64, int, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := scopeQuery(gdb, p)

	if status != "" {
		query = query.Where("activities.status = ?", status)
	}
	if assignedTo != "" {
		query = query.Where("activities.assigned_to = ?", assignedTo)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, 0, err
	}

	var activities []models.Activity

	err := query.Order("activities.created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&activities).Error

	if err != nil {
		return nil, 0, 0, 0, err
	}

	return activities, total, page, perPage, nil
}

// UpdateActivity applies the changed fields, appending one history row per
// field, all in one transaction. It reports whether anything changed so the
// caller can fire notifications. An untouched activity keeps its updated_at.
func UpdateActivity(gdb *gorm.DB, activityID uint, p Principal, update ActivityUpdate) (*models.Activity, bool, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, false, err
	}

	var activity models.Activity

	if err := gdb.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	var history []models.ActivityHistory
	updates := map[string]interface{}{}

	record := func(field string, oldValue, newValue *string) {
		history = append(history, models.ActivityHistory{
			ActivityID:   activityID,
			ChangedBy:    p.Username,
			ChangedField: field,
			OldValue:     oldValue,
			NewValue:     newValue,
		})
	}

	if update.Status.Set && update.Status.Valid && update.Status.Value != activity.Status {
		record("status", strPtr(activity.Status), strPtr(update.Status.Value))
		updates["status"] = update.Status.Value
	}

	if update.AssignedTo.Set {
		newValue := update.AssignedTo.Ptr()
		if !strPtrEqual(newValue, activity.AssignedTo) {
			record("assigned_to", activity.AssignedTo, newValue)
			updates["assigned_to"] = newValue
		}
	}

	if update.Description.Set {
		newValue := update.Description.Ptr()
		if !strPtrEqual(newValue, activity.Description) {
			record("description", activity.Description, newValue)
			updates["description"] = newValue
		}
	}

	if update.DueDate.Set {
		newValue := normalizeTime(update.DueDate.Ptr())
		if !timePtrEqual(newValue, activity.DueDate) {
			record("due_date", formatTimePtr(activity.DueDate), formatTimePtr(newValue))
			updates["due_date"] = newValue
		}
	}

	if len(updates) == 0 {
		return &activity, false, nil
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		for i := range history {
			if err := tx.Create(&history[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&activity).Updates(updates).Error
	})

	if err != nil {
		return nil, false, err
	}

	if err := gdb.First(&activity, activityID).Error; err != nil {
		return nil, false, err
	}

	return &activity, true, nil
}

// DeleteActivity removes the activity with all its dependents. History and
// invitation rows do not cascade and are deleted explicitly first.
func DeleteActivity(gdb *gorm.DB, activityID uint) error {
	var activity models.Activity

	if err := gdb.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activityID).Delete(&models.ActivityHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", activityID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Select("Subtasks", "Files", "SharedWith").Delete(&activity).Error
	})
}

func GetActivityHistory(gdb *gorm.DB, activityID uint, p Principal) ([]models.ActivityHistory, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	var entries []models.ActivityHistory

	err := gdb.Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ActivitiesForExport returns the full scope without pagination, for CSV.
func ActivitiesForExport(gdb *gorm.DB, p Principal, status string) ([]models.Activity, error) {
	query := scopeQuery(gdb, p)

	if status != "" {
		query = query.Where("activities.status = ?", status)
	}

	var activities []models.Activity

	if err := query.Order("activities.created_at DESC").Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

// DueActivities lists the principal's activities with a due date inside the
// window that are not Done, soonest first.
func DueActivities(gdb *gorm.DB, p Principal, window time.Duration) ([]models.Activity, error) {
	now := time.Now().UTC()

	var activities []models.Activity

	err := scopeQuery(gdb, p).
		Where("activities.due_date IS NOT NULL").
		Where("activities.due_date >= ? AND activities.due_date <= ?", now, now.Add(window)).
		Where("activities.status != ?", types.StatusDone).
		Order("activities.due_date ASC").
		Find(&activities).Error

	if err != nil {
		return nil, err
	}

	return activities, nil
}

// DueActivitiesWithin is the unscoped variant used by the reminder loop.
func DueActivitiesWithin(gdb *gorm.DB, window time.Duration) ([]models.Activity, error) {
	now := time.Now().UTC()

	var activities []models.Activity

	err := gdb.Where("due_date IS NOT NULL").
		Where("due_date >= ? AND due_date <= ?", now, now.Add(window)).
		Where("status != ?", types.StatusDone).
		Order("due_date ASC").
		Find(&activities).Error

	if err != nil {
		return nil, err
	}

	return activities, nil
}

type WeeklySummary struct {
	Period      string             `json:"period"`
	New         int64              `json:"new"`
	InProgress  int64              `json:"in_progress"`
	Done        int64              `json:"done"`
	Total       int64              `json:"total"`
	Percentages map[string]float64 `json:"percentages"`
}

// WeeklyDashboard counts activities created in the last 7 days by status.
func WeeklyDashboard(gdb *gorm.DB, p Principal) (*WeeklySummary, error) {
	since := time.Now().UTC().AddDate(0, 0, -7)

	countStatus := func(status string) (int64, error) {
		var count int64
		err := scopeQuery(gdb, p).
			Where("activities.status = ? AND activities.created_at >= ?", status, since).
			Count(&count).Error
		return count, err
	}

	newCount, err := countStatus(types.StatusNew)
	if err != nil {
		return nil, err
	}

	inProgress, err := countStatus(types.StatusInProgress)
	if err != nil {
		return nil, err
	}

	done, err := countStatus(types.StatusDone)
	if err != nil {
		return nil, err
	}

	total := newCount + inProgress + done

	percentage := func(count int64) float64 {
		if total == 0 {
			return 0
		}
		return float64(int(float64(count)/float64(total)*1000+0.5)) / 10
	}

	return &WeeklySummary{
		Period:     fmt.Sprintf("Last 7 days (since %s)", since.Format("2006-01-02")),
		New:        newCount,
		InProgress: inProgress,
		Done:       done,
		Total:      total,
		Percentages: map[string]float64{
			"new":         percentage(newCount),
			"in_progress": percentage(inProgress),
			"done":        percentage(done),
		},
	}, nil
}

func strPtr(s string) *string {
	return &s
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// normalizeTime stores timestamps as UTC so comparisons and history values
// are stable across drivers.
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return strPtr(t.UTC().Format(time.RFC3339))
}
