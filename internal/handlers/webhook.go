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

type CreateWebhookRequest struct {
	URL   string `json:"url" binding:"required,url"`
	Event string `json:"event"`
}

func CreateWebhook(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateWebhookRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	webhook, err := store.CreateWebhook(db.DB, currentUser.ID, req.URL, req.Event)

	if err != nil {
		log.Printf("Failed to create webhook: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create webhook"})
		return
	}

	ctx.JSON(http.StatusCreated, webhookResponse(*webhook))
}

func ListWebhooks(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	webhooks, err := store.ListWebhooks(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to list webhooks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve webhooks"})
		return
	}

	response := make([]types.WebhookResponse, 0, len(webhooks))
	for _, webhook := range webhooks {
		response = append(response, webhookResponse(webhook))
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteWebhook(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	webhookID, err := utils.GetWebhookID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := store.DeleteWebhook(db.DB, webhookID, currentUser.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
			return
		}
		log.Printf("Failed to delete webhook %d: %v", webhookID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete webhook"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
