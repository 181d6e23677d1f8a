package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InvitationTTL is the fixed validity window from issuance.
const InvitationTTL = 7 * 24 * time.Hour

var ErrCollaboratorNotFound = errors.New("collaborator not found")

// NewInviteToken returns a URL-safe token with 32 bytes of entropy.
func NewInviteToken() (string, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CreateInvitation issues a time-boxed token granting the invited email
// future access to the activity. The issuer needs access themselves.
func CreateInvitation(gdb *gorm.DB, activityID uint, p Principal, invitedEmail string) (*models.Invitation, error) {
	if err := requireAccess(gdb, activityID, p); err != nil {
		return nil, err
	}

	token, err := NewInviteToken()

	if err != nil {
		return nil, err
	}

	invitation := models.Invitation{
		ActivityID:   activityID,
		InvitedEmail: invitedEmail,
		Token:        token,
		CreatedBy:    p.Username,
		ExpiresAt:    time.Now().UTC().Add(InvitationTTL),
	}

	if err := gdb.Create(&invitation).Error; err != nil {
		return nil, err
	}

	return &invitation, nil
}

// GetInvitationByToken resolves a token only while it is unexpired. Expired
// tokens are treated as nonexistent, never purged.
func GetInvitationByToken(gdb *gorm.DB, token string) (*models.Invitation, error) {
	var invitation models.Invitation

	if err := gdb.Where("token = ?", token).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !invitation.ExpiresAt.After(time.Now().UTC()) {
		return nil, ErrNotFound
	}

	return &invitation, nil
}

// ListInvitations is owner-only; shared users cannot enumerate tokens.
func ListInvitations(gdb *gorm.DB, activityID, ownerID uint) ([]models.Invitation, error) {
	var activity models.Activity

	err := gdb.Where("id = ? AND owner_id = ?", activityID, ownerID).
		First(&activity).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var invitations []models.Invitation

	err = gdb.Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&invitations).Error

	if err != nil {
		return nil, err
	}

	return invitations, nil
}

// AcceptInvitationLogin redeems a valid token with a chosen username and
// password. An existing username must verify against its stored hash
// (otherwise ErrConflict, with no side effects); a new account is created
// as a Collaborator with the invitation's email. The resulting user is
// granted access, attributed to the original inviter, and the invitation is
// marked accepted.
func AcceptInvitationLogin(gdb *gorm.DB, token, username, password string) (*models.User, error) {
	invitation, err := GetInvitationByToken(gdb, token)

	if err != nil {
		return nil, err
	}

	var guest *models.User

	existing, err := GetUserByUsername(gdb, username)

	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			return nil, fmt.Errorf("%w: username exists with a different password", ErrConflict)
		}
		guest = existing
	case errors.Is(err, ErrNotFound):
		guest = nil
	default:
		return nil, err
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if guest == nil {
			created, err := CreateUser(tx, CreateUserInput{
				Username: username,
				Password: password,
				Email:    &invitation.InvitedEmail,
			})
			if err != nil {
				return err
			}
			guest = created
		}

		ok, err := CanAccess(tx, invitation.ActivityID, Principal{
			ID:       guest.ID,
			Username: guest.Username,
			Role:     guest.Role,
		})
		if err != nil {
			return err
		}

		if !ok {
			grant := models.ActivityAccess{
				ActivityID: invitation.ActivityID,
				UserID:     guest.ID,
				GrantedBy:  strPtr(invitation.CreatedBy),
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		return tx.Model(invitation).Updates(map[string]interface{}{
			"accepted_by": guest.Username,
			"accepted_at": &now,
		}).Error
	})

	if err != nil {
		return nil, err
	}

	return guest, nil
}

// AssignActivity points an owned activity at a Collaborator-role user:
// denormalized assignee fields are set from their profile, access is
// granted if missing, the change is recorded in history, and a fresh
// invitation is issued even when the collaborator already has an account
// (its purpose there is notification, not provisioning).
func AssignActivity(gdb *gorm.DB, activityID, ownerID, collaboratorID uint, p Principal) (*models.Activity, *models.User, *models.Invitation, error) {
	var activity models.Activity

	err := gdb.Where("id = ? AND owner_id = ?", activityID, ownerID).
		First(&activity).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}

	var collaborator models.User

	err = gdb.Where("id = ? AND role = ?", collaboratorID, types.RoleCollaborator).
		First(&collaborator).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrCollaboratorNotFound
		}
		return nil, nil, nil, err
	}

	assignedTo := collaborator.Username
	if collaborator.FullName != nil && *collaborator.FullName != "" {
		assignedTo = *collaborator.FullName
	}

	assignedEmail := collaborator.Username
	if collaborator.Email != nil && *collaborator.Email != "" {
		assignedEmail = *collaborator.Email
	}

	token, err := NewInviteToken()

	if err != nil {
		return nil, nil, nil, err
	}

	invitation := models.Invitation{
		ActivityID:   activityID,
		InvitedEmail: assignedEmail,
		Token:        token,
		CreatedBy:    p.Username,
		ExpiresAt:    time.Now().UTC().Add(InvitationTTL),
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		entry := models.ActivityHistory{
			ActivityID:   activityID,
			ChangedBy:    p.Username,
			ChangedField: "assigned_to",
			OldValue:     activity.AssignedTo,
			NewValue:     strPtr(assignedTo),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"assigned_to":    assignedTo,
			"assigned_email": assignedEmail,
		}
		if err := tx.Model(&activity).Updates(updates).Error; err != nil {
			return err
		}

		var grants int64
		err := tx.Model(&models.ActivityAccess{}).
			Where("activity_id = ? AND user_id = ?", activityID, collaborator.ID).
			Count(&grants).Error
		if err != nil {
			return err
		}

		if grants == 0 {
			grant := models.ActivityAccess{
				ActivityID: activityID,
				UserID:     collaborator.ID,
				GrantedBy:  strPtr(p.Username),
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}

		return tx.Create(&invitation).Error
	})

	if err != nil {
		return nil, nil, nil, err
	}

	if err := gdb.First(&activity, activityID).Error; err != nil {
		return nil, nil, nil, err
	}

	return &activity, &collaborator, &invitation, nil
}
