package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
)

// In-process timers give prompt auto-close; the recurring sweep is the
// durable path that survives restarts. Both funnel into ClosePoll, whose
// guarded transition keeps the side effects exactly-once.

var (
	pollTimersLock sync.Mutex
	pollTimers     = make(map[uint]*time.Timer)
)

func SchedulePollAutoClose(poll models.Poll) {
	if poll.AutoCloseAt == nil {
		return
	}

	due := time.Until(*poll.AutoCloseAt)
	if due < 0 {
		due = 0
	}

	pollTimersLock.Lock()
	defer pollTimersLock.Unlock()

	if previous, ok := pollTimers[poll.ID]; ok {
		previous.Stop()
	}

	id := poll.ID
	pollTimers[id] = time.AfterFunc(due, func() {
		pollTimersLock.Lock()
		delete(pollTimers, id)
		pollTimersLock.Unlock()

		if _, _, err := ClosePoll(id); err != nil {
			log.Error().Err(err).Uint("poll", id).Msg("An error occurred when auto-closing poll...")
		}
	})

	log.Debug().Uint("poll", id).Time("due", *poll.AutoCloseAt).Msg("Scheduled poll auto close.")
}

func CancelPollAutoClose(pollId uint) {
	pollTimersLock.Lock()
	defer pollTimersLock.Unlock()

	if timer, ok := pollTimers[pollId]; ok {
		timer.Stop()
		delete(pollTimers, pollId)
	}
}

// RestorePollSchedules re-arms timers for every active timed poll, called
// once at boot. Polls already past due are handled by the first sweep.
func RestorePollSchedules() {
	var polls []models.Poll
	if err := database.C.
		Where("is_active = ? AND auto_close_at IS NOT NULL", true).
		Find(&polls).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when restoring poll schedules...")
		return
	}

	for _, poll := range polls {
		SchedulePollAutoClose(poll)
	}

	if len(polls) > 0 {
		log.Info().Int("count", len(polls)).Msg("Restored poll auto close schedules.")
	}
}

// SweepOverduePolls closes every active poll past its due time.
func SweepOverduePolls() {
	var polls []models.Poll
	if err := database.C.
		Where("is_active = ? AND auto_close_at IS NOT NULL AND auto_close_at <= ?", true, time.Now()).
		Find(&polls).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when sweeping overdue polls...")
		return
	}

	for _, poll := range polls {
		if _, _, err := ClosePoll(poll.ID); err != nil {
			log.Error().Err(err).Uint("poll", poll.ID).Msg("An error occurred when closing overdue poll...")
		}
	}
}
