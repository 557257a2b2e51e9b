package services

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/pubsub"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// NewNotification persists one notification and pushes it to the recipient's
// private room.
func NewNotification(notification models.Notification) (models.Notification, error) {
	if err := database.C.Create(&notification).Error; err != nil {
		return notification, err
	}

	pubsub.H.Publish(pubsub.UserRoom(notification.AccountID), "new-notification", notification)

	return notification, nil
}

// NotifyEventGuests fans one message out to every guest of an event, one
// persisted notification plus one push each. Concurrency is capped so a large
// guest list does not burst into the database; a failed recipient is logged
// and skipped, never fatal.
func NotifyEventGuests(eventId uint, title, message, kind string, metadata map[string]any) {
	guests, err := ListEventGuests(eventId)
	if err != nil {
		log.Error().Err(err).Uint("event", eventId).Msg("An error occurred when listing fan-out targets...")
		return
	}

	limit := viper.GetInt("notifications.fanout_limit")
	if limit <= 0 {
		limit = 8
	}

	var group errgroup.Group
	group.SetLimit(limit)
	for _, guest := range guests {
		guest := guest
		group.Go(func() error {
			_, err := NewNotification(models.Notification{
				AccountID: guest.ID,
				EventID:   eventId,
				Title:     title,
				Message:   message,
				Kind:      kind,
				Metadata:  datatypes.JSONMap(metadata),
			})
			if err != nil {
				log.Warn().Err(err).Uint("account", guest.ID).Msg("An error occurred when notifying guest...")
			}
			return nil
		})
	}
	_ = group.Wait()

	log.Debug().Uint("event", eventId).Int("guests", len(guests)).Str("kind", kind).Msg("Notified event guests.")
}

// NewAnnouncement is the admin-facing event-wide broadcast: per-guest
// notifications plus a public room message.
func NewAnnouncement(event models.Event, title, message string) {
	NotifyEventGuests(event.ID, title, message, models.NotificationKindInfo, nil)

	pubsub.H.Publish(pubsub.EventRoom(event.ID), "announcement", map[string]any{
		"title":   title,
		"message": message,
	})
}

// ListUnreadNotifications returns the newest unread notifications, capped.
func ListUnreadNotifications(user models.Account) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := database.C.
		Where("account_id = ? AND read_at IS NULL", user.ID).
		Order("created_at DESC").Limit(20).
		Find(&notifications).Error; err != nil {
		return notifications, fmt.Errorf("unable to list notifications: %v", err)
	}
	return notifications, nil
}

func MarkNotificationRead(user models.Account, notificationId uint) error {
	var notification models.Notification
	if err := database.C.Where("id = ?", notificationId).First(&notification).Error; err != nil {
		return ErrNotificationNotFound
	}
	if notification.AccountID != user.ID {
		return ErrNotificationForbidden
	}

	now := time.Now()
	return database.C.Model(&notification).Update("read_at", now).Error
}

func MarkAllNotificationsRead(user models.Account) error {
	return database.C.Model(&models.Notification{}).
		Where("account_id = ? AND read_at IS NULL", user.ID).
		Update("read_at", time.Now()).Error
}
