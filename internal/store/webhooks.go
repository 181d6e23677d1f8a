package store

import (
	"errors"

	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
	"gorm.io/gorm"
)

func CreateWebhook(gdb *gorm.DB, ownerID uint, url, event string) (*models.Webhook, error) {
	if event == "" {
		event = types.EventWildcard
	}

	webhook := models.Webhook{
		OwnerID: ownerID,
		URL:     url,
		Event:   event,
		Active:  true,
	}

	if err := gdb.Create(&webhook).Error; err != nil {
		return nil, err
	}

	return &webhook, nil
}

func ListWebhooks(gdb *gorm.DB, ownerID uint) ([]models.Webhook, error) {
	var webhooks []models.Webhook

	if err := gdb.Where("owner_id = ?", ownerID).Find(&webhooks).Error; err != nil {
		return nil, err
	}

	return webhooks, nil
}

func DeleteWebhook(gdb *gorm.DB, webhookID, ownerID uint) error {
	var webhook models.Webhook

	err := gdb.Where("id = ? AND owner_id = ?", webhookID, ownerID).
		First(&webhook).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return gdb.Delete(&webhook).Error
}

// WebhooksForEvent selects the owner's active subscriptions whose filter is
// an exact match or the wildcard.
func WebhooksForEvent(gdb *gorm.DB, ownerID uint, event string) ([]models.Webhook, error) {
	var webhooks []models.Webhook

	err := gdb.Where("owner_id = ? AND active = ?", ownerID, true).
		Where("event = ? OR event = ?", event, types.EventWildcard).
		Find(&webhooks).Error

	if err != nil {
		return nil, err
	}

	return webhooks, nil
}
