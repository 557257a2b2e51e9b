package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/pubsub"
	"gorm.io/gorm"
)

// GetTrackQueue returns the event's suggestion queue, creating it on first
// use so every event lazily owns exactly one.
func GetTrackQueue(eventId uint) (models.TrackQueue, error) {
	var queue models.TrackQueue
	if err := database.C.Where("event_id = ?", eventId).First(&queue).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return queue, fmt.Errorf("unable to get track queue: %v", err)
		}

		if _, err := GetEvent(eventId); err != nil {
			return queue, err
		}

		queue = models.TrackQueue{EventID: eventId, IsActive: true}
		if err := database.C.Create(&queue).Error; err != nil {
			return queue, err
		}
	}
	return queue, nil
}

func sortQueueTracks(tracks []models.QueuedTrack) {
	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].Votes != tracks[j].Votes {
			return tracks[i].Votes > tracks[j].Votes
		}
		return tracks[i].AddedAt.Before(tracks[j].AddedAt)
	})
}

// SuggestTrack appends a track to the queue; the same track can only be
// queued once per event.
func SuggestTrack(eventId uint, track models.QueuedTrack, user models.Account) (models.TrackQueue, error) {
	queue, err := GetTrackQueue(eventId)
	if err != nil {
		return queue, err
	}

	// Re-read the queue under the row lock so a concurrent suggest or vote
	// cannot be overwritten by this append.
	err = database.C.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("event_id = ?", eventId).First(&queue).Error; err != nil {
			return err
		}

		exists := lo.ContainsBy([]models.QueuedTrack(queue.Tracks), func(item models.QueuedTrack) bool {
			return item.TrackID == track.TrackID
		})
		if exists {
			return ErrTrackAlreadyQueued
		}

		track.Votes = 0
		track.Voters = nil
		track.AddedBy = user.ID
		track.AddedAt = time.Now()

		tracks := append([]models.QueuedTrack(queue.Tracks), track)
		sortQueueTracks(tracks)
		queue.Tracks = tracks

		return tx.Model(&queue).Update("tracks", queue.Tracks).Error
	})
	if err != nil {
		return queue, err
	}

	pubsub.H.Publish(pubsub.EventRoom(eventId), "queue-updated", queue)

	return queue, nil
}

// VoteTrack registers one vote per user per track and re-ranks the queue.
func VoteTrack(eventId uint, trackId string, user models.Account) (models.TrackQueue, error) {
	var queue models.TrackQueue

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("event_id = ?", eventId).First(&queue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTrackNotFound
			}
			return err
		}

		tracks := []models.QueuedTrack(queue.Tracks)
		idx := lo.IndexOf(lo.Map(tracks, func(item models.QueuedTrack, _ int) string {
			return item.TrackID
		}), trackId)
		if idx < 0 {
			return ErrTrackNotFound
		}

		if lo.Contains(tracks[idx].Voters, user.ID) {
			return ErrTrackAlreadyVoted
		}

		tracks[idx].Votes += 1
		tracks[idx].Voters = append(tracks[idx].Voters, user.ID)
		sortQueueTracks(tracks)
		queue.Tracks = tracks

		return tx.Model(&queue).Update("tracks", queue.Tracks).Error
	})
	if err != nil {
		return queue, err
	}

	pubsub.H.Publish(pubsub.EventRoom(eventId), "queue-updated", queue)

	return queue, nil
}
