package models

import "time"

const (
	TimelineItemKindActivity    = "activity"
	TimelineItemKindMeal        = "meal"
	TimelineItemKindPerformance = "performance"
	TimelineItemKindBreak       = "break"
	TimelineItemKindOther       = "other"
)

type TimelineItem struct {
	BaseModel

	EventID     uint       `json:"event_id" gorm:"index"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    string     `json:"location"`
	Kind        string     `json:"kind"`
	Important   bool       `json:"important"`
	AccountID   uint       `json:"account_id"`
}
