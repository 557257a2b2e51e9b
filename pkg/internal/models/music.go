package models

import (
	"time"

	"gorm.io/datatypes"
)

// TrackQueue is the per-event music suggestion queue. Tracks carry only the
// metadata the suggesting guest supplied; playback control lives elsewhere.
type TrackQueue struct {
	BaseModel

	EventID  uint                             `json:"event_id" gorm:"uniqueIndex"`
	Tracks   datatypes.JSONSlice[QueuedTrack] `json:"tracks"`
	IsActive bool                             `json:"is_active"`
}

type QueuedTrack struct {
	TrackID  string    `json:"track_id"`
	Name     string    `json:"name"`
	Artists  string    `json:"artists"`
	ImageURL string    `json:"image_url,omitempty"`
	Votes    int       `json:"votes"`
	Voters   []uint    `json:"voters"`
	AddedBy  uint      `json:"added_by"`
	AddedAt  time.Time `json:"added_at"`
}
