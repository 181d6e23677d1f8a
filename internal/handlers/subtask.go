package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/store"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
)

type CreateSubtaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

func CreateSubtask(ctx *gin.Context) {
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

	var req CreateSubtaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := store.CreateSubtask(db.DB, activityID, principalOf(currentUser), store.CreateSubtaskInput{
		Title:       req.Title,
		Description: req.Description,
	})

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to create subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subtask"})
		return
	}

	ctx.JSON(http.StatusCreated, subtaskResponse(*subtask))
}

func ListSubtasks(ctx *gin.Context) {
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

	subtasks, err := store.ListSubtasks(db.DB, activityID, principalOf(currentUser))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to list subtasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subtasks"})
		return
	}

	response := make([]types.SubtaskResponse, 0, len(subtasks))
	for _, subtask := range subtasks {
		response = append(response, subtaskResponse(subtask))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateSubtask(ctx *gin.Context) {
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

	subtaskID, err := utils.GetSubtaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var update store.SubtaskUpdate

	if err := ctx.BindJSON(&update); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := store.UpdateSubtask(db.DB, subtaskID, activityID, principalOf(currentUser), update)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		log.Printf("Failed to update subtask %d: %v", subtaskID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}

	ctx.JSON(http.StatusOK, subtaskResponse(*subtask))
}

func DeleteSubtask(ctx *gin.Context) {
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

	subtaskID, err := utils.GetSubtaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = store.DeleteSubtask(db.DB, subtaskID, activityID, principalOf(currentUser))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		log.Printf("Failed to delete subtask %d: %v", subtaskID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subtask"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
