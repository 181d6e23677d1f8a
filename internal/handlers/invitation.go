package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/auth"
	"github.com/trackline-dev/trackline/internal/store"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
)

type CreateInvitationRequest struct {
	InvitedEmail string `json:"invited_email" binding:"required,email"`
}

type AcceptInvitationRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AssignActivityRequest struct {
	CollaboratorID uint `json:"collaborator_id" binding:"required"`
}

func CreateInvitation(ctx *gin.Context) {
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

	var req CreateInvitationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	invitation, err := store.CreateInvitation(db.DB, activityID, principalOf(currentUser), req.InvitedEmail)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to create invitation: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	activity, err := store.GetActivity(db.DB, activityID, principalOf(currentUser))

	activityTitle := "Untitled activity"
	if err == nil {
		activityTitle = activity.Title
	}

	// Best-effort; a failed email never blocks issuance.
	mailer.SendInvitation(req.InvitedEmail, activityTitle, invitation.Token, currentUser.Username)

	ctx.JSON(http.StatusCreated, invitationResponse(*invitation))
}

func ListInvitations(ctx *gin.Context) {
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

	invitations, err := store.ListInvitations(db.DB, activityID, currentUser.ID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to list invitations: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invitations"})
		return
	}

	response := make([]types.InvitationResponse, 0, len(invitations))
	for _, invitation := range invitations {
		response = append(response, invitationResponse(invitation))
	}

	ctx.JSON(http.StatusOK, response)
}

// GetInvitation resolves a token for the redemption page. Expired and
// unknown tokens are indistinguishable.
func GetInvitation(ctx *gin.Context) {
	token := ctx.Param("token")

	invitation, err := store.GetInvitationByToken(db.DB, token)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired invitation token"})
			return
		}
		log.Printf("Failed to resolve invitation token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"activity_id":   invitation.ActivityID,
		"invited_email": invitation.InvitedEmail,
		"expires_at":    invitation.ExpiresAt,
	})
}

func AcceptInvitation(ctx *gin.Context) {
	token := ctx.Param("token")

	var req AcceptInvitationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := store.AcceptInvitationLogin(db.DB, token, req.Username, req.Password)

	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired invitation token"})
		case errors.Is(err, store.ErrConflict):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username exists with a different password"})
		case errors.Is(err, store.ErrValidation):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to accept invitation: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	accessToken, err := auth.GenerateJWT(user.ID, user.Username)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	})
}

// AssignActivity is Admin-gated by the router.
func AssignActivity(ctx *gin.Context) {
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

	var req AssignActivityRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	activity, collaborator, invitation, err := store.AssignActivity(
		db.DB, activityID, currentUser.ID, req.CollaboratorID, principalOf(currentUser))

	if err != nil {
		switch {
		case errors.Is(err, store.ErrCollaboratorNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Collaborator not found"})
		case errors.Is(err, store.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
		default:
			log.Printf("Failed to assign activity %d: %v", activityID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign activity"})
		}
		return
	}

	// Both emails are best-effort.
	if collaborator.Email != nil && *collaborator.Email != "" {
		mailer.SendAssignment(*collaborator.Email, activity.Title, strOrEmpty(activity.Description), currentUser.Username)
		mailer.SendInvitation(*collaborator.Email, activity.Title, invitation.Token, currentUser.Username)
	}

	ctx.JSON(http.StatusOK, activityResponse(*activity))
}
