package models

import "time"

const (
	EventStatusPlanning  = "planning"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
)

type Event struct {
	BaseModel

	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	AccessCode  string    `json:"access_code" gorm:"uniqueIndex"`
	Status      string    `json:"status"`
	AccountID   uint      `json:"account_id"`
}
