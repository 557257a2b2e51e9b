package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationKindInfo     = "info"
	NotificationKindActivity = "activity"
	NotificationKindWinner   = "winner"
)

type Notification struct {
	BaseModel

	AccountID uint              `json:"account_id" gorm:"index"`
	EventID   uint              `json:"event_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Kind      string            `json:"kind"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	ReadAt    *time.Time        `json:"read_at"`
}
