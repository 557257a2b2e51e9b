package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PollTypeGeneral  = "general"
	PollTypeActivity = "activity"
	PollTypeMusic    = "music"
	PollTypeFood     = "food"
)

type Poll struct {
	BaseModel

	EventID  uint   `json:"event_id"`
	Question string `json:"question"`
	Type     string `json:"type"`

	// Option order is the ballot key and never changes after creation.
	Options datatypes.JSONSlice[PollOption] `json:"options"`

	// Parallel to Options for activity polls, empty otherwise.
	ActivityOptions datatypes.JSONSlice[PollActivityOption] `json:"activity_options"`

	AutoCloseAt *time.Time `json:"auto_close_at"`
	IsActive    bool       `json:"is_active"`
	ClosedAt    *time.Time `json:"closed_at"`
	AccountID   uint       `json:"account_id"`

	Voters []uint `json:"voters" gorm:"-"`
}

type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type PollActivityOption struct {
	TimelineItemID *uint               `json:"timeline_item_id"`
	Details        PollActivityDetails `json:"details"`
}

type PollActivityDetails struct {
	Time        string `json:"time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// PollBallot records one user's single, permanent vote on one poll.
type PollBallot struct {
	BaseModel

	PollID      uint `json:"poll_id" gorm:"uniqueIndex:idx_poll_voter"`
	AccountID   uint `json:"account_id" gorm:"uniqueIndex:idx_poll_voter"`
	OptionIndex int  `json:"option_index"`
}

// PollWinner is the outcome of winner selection on a closed activity poll.
type PollWinner struct {
	OptionIndex    int                  `json:"option_index"`
	Text           string               `json:"text"`
	Votes          int                  `json:"votes"`
	Details        *PollActivityDetails `json:"details,omitempty"`
	TimelineItemID *uint                `json:"timeline_item_id,omitempty"`
}
