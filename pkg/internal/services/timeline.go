package services

import (
	"errors"
	"fmt"

	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"gorm.io/gorm"
)

func GetTimelineItem(id uint) (models.TimelineItem, error) {
	var item models.TimelineItem
	if err := database.C.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, ErrTimelineItemNotFound
		}
		return item, fmt.Errorf("unable to get timeline item: %v", err)
	}
	return item, nil
}

func ListTimelineItems(eventId uint) ([]models.TimelineItem, error) {
	var items []models.TimelineItem
	if err := database.C.Where("event_id = ?", eventId).
		Order("start_time ASC").Find(&items).Error; err != nil {
		return items, fmt.Errorf("unable to list timeline items: %v", err)
	}
	return items, nil
}

func NewTimelineItem(item models.TimelineItem) (models.TimelineItem, error) {
	if _, err := GetEvent(item.EventID); err != nil {
		return item, err
	}
	if len(item.Kind) == 0 {
		item.Kind = models.TimelineItemKindActivity
	}

	err := database.C.Create(&item).Error
	return item, err
}

func EditTimelineItem(item models.TimelineItem) (models.TimelineItem, error) {
	err := database.C.Save(&item).Error
	return item, err
}

func DeleteTimelineItem(item models.TimelineItem) error {
	return database.C.Delete(&item).Error
}
