package handlers

import (
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
)

func activityResponse(activity models.Activity) types.ActivityResponse {
	return types.ActivityResponse{
		ID:            activity.ID,
		Title:         activity.Title,
		Description:   activity.Description,
		InjectedBy:    activity.InjectedBy,
		Status:        activity.Status,
		AssignedTo:    activity.AssignedTo,
		AssignedEmail: activity.AssignedEmail,
		DueDate:       activity.DueDate,
		Timestamp:     activity.CreatedAt,
		UpdatedAt:     activity.UpdatedAt,
		OwnerID:       activity.OwnerID,
	}
}

func subtaskResponse(subtask models.Subtask) types.SubtaskResponse {
	return types.SubtaskResponse{
		ID:          subtask.ID,
		ActivityID:  subtask.ActivityID,
		Title:       subtask.Title,
		Description: subtask.Description,
		Status:      subtask.Status,
		Order:       subtask.DisplayOrder,
		CompletedAt: subtask.CompletedAt,
		Timestamp:   subtask.CreatedAt,
	}
}

func historyResponse(entry models.ActivityHistory) types.HistoryResponse {
	return types.HistoryResponse{
		ID:           entry.ID,
		ActivityID:   entry.ActivityID,
		ChangedBy:    entry.ChangedBy,
		ChangedField: entry.ChangedField,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		Timestamp:    entry.CreatedAt,
	}
}

func fileResponse(file models.ActivityFile) types.FileResponse {
	return types.FileResponse{
		ID:         file.ID,
		ActivityID: file.ActivityID,
		Filename:   file.Filename,
		FilePath:   file.FilePath,
		FileSize:   file.FileSize,
		FileType:   file.FileType,
		UploadedBy: file.UploadedBy,
		Timestamp:  file.CreatedAt,
	}
}

func invitationResponse(invitation models.Invitation) types.InvitationResponse {
	return types.InvitationResponse{
		ID:           invitation.ID,
		ActivityID:   invitation.ActivityID,
		InvitedEmail: invitation.InvitedEmail,
		Token:        invitation.Token,
		CreatedBy:    invitation.CreatedBy,
		AcceptedBy:   invitation.AcceptedBy,
		CreatedAt:    invitation.CreatedAt,
		ExpiresAt:    invitation.ExpiresAt,
		AcceptedAt:   invitation.AcceptedAt,
	}
}

func webhookResponse(webhook models.Webhook) types.WebhookResponse {
	return types.WebhookResponse{
		ID:        webhook.ID,
		URL:       webhook.URL,
		Event:     webhook.Event,
		Active:    webhook.Active,
		CreatedAt: webhook.CreatedAt,
	}
}

func userResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
