package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/services"
	"github.com/trackline-dev/trackline/internal/store"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
)

type CreateActivityRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	InjectedBy  *string    `json:"injected_by"`
	DueDate     *time.Time `json:"due_date"`
}

func CreateActivity(ctx *gin.Context) {
	var req CreateActivityRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activity, err := store.CreateActivity(db.DB, currentUser.ID, store.CreateActivityInput{
		Title:       req.Title,
		Description: req.Description,
		InjectedBy:  req.InjectedBy,
		DueDate:     req.DueDate,
	})

	if err != nil {
		log.Printf("Failed to create activity: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create activity"})
		return
	}

	ctx.JSON(http.StatusCreated, activityResponse(*activity))
}

func ListActivities(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("per_page", "10"))

	activities, total, page, perPage, err := store.ListActivities(
		db.DB,
		principalOf(currentUser),
		ctx.Query("status"),
		ctx.Query("assigned_to"),
		page,
		perPage,
	)

	if err != nil {
		log.Printf("Failed to list activities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	items := make([]types.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, activityResponse(activity))
	}

	ctx.JSON(http.StatusOK, types.PaginatedActivities{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Items:   items,
	})
}

func UpdateActivity(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var update store.ActivityUpdate

	if err := ctx.BindJSON(&update); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	activity, changed, err := store.UpdateActivity(db.DB, activityID, principalOf(currentUser), update)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to update activity %d: %v", activityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update activity"})
		return
	}

	if changed {
		notifier.Notify(activity.OwnerID, types.EventActivityUpdated, services.ActivityData{
			ID:         activity.ID,
			Title:      activity.Title,
			Status:     activity.Status,
			AssignedTo: activity.AssignedTo,
		})
	}

	ctx.JSON(http.StatusOK, activityResponse(*activity))
}

// DeleteActivity is Admin-gated by the router.
func DeleteActivity(ctx *gin.Context) {
	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := store.DeleteActivity(db.DB, activityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to delete activity %d: %v", activityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete activity"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func GetActivityHistory(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := store.GetActivityHistory(db.DB, activityID, principalOf(currentUser))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to load history for activity %d: %v", activityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}

	response := make([]types.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, historyResponse(entry))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetDueActivities(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))

	if err != nil || hours < 1 {
		hours = 24
	}

	activities, err := store.DueActivities(db.DB, principalOf(currentUser), time.Duration(hours)*time.Hour)

	if err != nil {
		log.Printf("Failed to list due activities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	response := make([]types.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		response = append(response, activityResponse(activity))
	}

	ctx.JSON(http.StatusOK, response)
}

// SendDueReminders emails assignees of activities due within the window.
// Attempts whose assignee does not look like an email are reported, not
// failed.
func SendDueReminders(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))

	if err != nil || hours < 1 {
		hours = 24
	}

	activities, err := store.DueActivities(db.DB, principalOf(currentUser), time.Duration(hours)*time.Hour)

	if err != nil {
		log.Printf("Failed to list due activities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	type attempt struct {
		ActivityID uint    `json:"activity_id"`
		To         *string `json:"to"`
		Sent       bool    `json:"sent"`
		Reason     string  `json:"reason,omitempty"`
	}

	results := make([]attempt, 0, len(activities))

	for _, activity := range activities {
		target := activity.AssignedEmail
		if target == nil {
			target = activity.AssignedTo
		}

		if target == nil || !isEmailLike(*target) {
			results = append(results, attempt{ActivityID: activity.ID, To: target, Reason: "no-email"})
			continue
		}

		dueStr := ""
		if activity.DueDate != nil {
			dueStr = activity.DueDate.UTC().Format(time.RFC3339)
		}

		sent := mailer.SendDeadlineReminder(*target, activity.Title, dueStr, currentUser.Username)
		results = append(results, attempt{ActivityID: activity.ID, To: target, Sent: sent})
	}

	ctx.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func isEmailLike(s string) bool {
	for _, r := range s {
		if r == '@' {
			return true
		}
	}
	return false
}

// GetWeeklyDashboard is Admin-gated by the router.
func GetWeeklyDashboard(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	summary, err := store.WeeklyDashboard(db.DB, principalOf(currentUser))

	if err != nil {
		log.Printf("Failed to build weekly dashboard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
