package database

import (
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Event{},
	&models.Poll{},
	&models.PollBallot{},
	&models.Notification{},
	&models.TimelineItem{},
	&models.TrackQueue{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
