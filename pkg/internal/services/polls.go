package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/pubsub"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate serializes concurrent vote transactions on one poll. Postgres
// takes a row lock; sqlite has no FOR UPDATE but its single-writer model
// already serializes the write path.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// NewPoll validates and persists a poll, arms its auto-close timer, and fans
// out the announcement side effects. Polls always start active.
func NewPoll(poll models.Poll, durationMinutes *int) (models.Poll, error) {
	event, err := GetEvent(poll.EventID)
	if err != nil {
		return poll, err
	}

	if len(strings.TrimSpace(poll.Question)) == 0 || len(poll.Options) < 2 {
		return poll, ErrPollInvalid
	}
	if len(poll.Type) == 0 {
		poll.Type = models.PollTypeGeneral
	}
	if poll.Type == models.PollTypeActivity && len(poll.ActivityOptions) != len(poll.Options) {
		return poll, ErrPollInvalid
	}

	poll.Options = lo.Map([]models.PollOption(poll.Options), func(option models.PollOption, _ int) models.PollOption {
		option.Votes = 0
		return option
	})
	poll.IsActive = true
	poll.ClosedAt = nil

	if durationMinutes != nil {
		closeAt := time.Now().Add(time.Duration(*durationMinutes) * time.Minute)
		poll.AutoCloseAt = &closeAt
	}

	if err := database.C.Create(&poll).Error; err != nil {
		return poll, err
	}

	SchedulePollAutoClose(poll)

	pubsub.H.Publish(pubsub.EventRoom(event.ID), "new-poll", map[string]any{
		"id":       poll.ID,
		"question": poll.Question,
		"type":     poll.Type,
	})

	if poll.Type == models.PollTypeActivity {
		go NotifyEventGuests(event.ID, "New Activity Vote", fmt.Sprintf("Vote now: %s", poll.Question),
			models.NotificationKindActivity, map[string]any{"poll_id": poll.ID})
	}

	return poll, nil
}

func GetPoll(id uint) (models.Poll, error) {
	var poll models.Poll
	if err := database.C.Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, ErrPollNotFound
		}
		return poll, fmt.Errorf("unable to get poll: %v", err)
	}

	if err := hydratePollVoters(&poll); err != nil {
		return poll, err
	}

	return poll, nil
}

func hydratePollVoters(poll *models.Poll) error {
	var ballots []models.PollBallot
	if err := database.C.Where("poll_id = ?", poll.ID).Find(&ballots).Error; err != nil {
		return fmt.Errorf("unable to load poll ballots: %v", err)
	}
	poll.Voters = lo.Map(ballots, func(ballot models.PollBallot, _ int) uint {
		return ballot.AccountID
	})
	return nil
}

// ListEventPolls returns every poll of an event, open and closed, newest first.
func ListEventPolls(eventId uint) ([]models.Poll, error) {
	var polls []models.Poll
	if err := database.C.Where("event_id = ?", eventId).
		Order("created_at DESC").Find(&polls).Error; err != nil {
		return polls, fmt.Errorf("unable to list polls: %v", err)
	}

	for idx := range polls {
		if err := hydratePollVoters(&polls[idx]); err != nil {
			return polls, err
		}
	}

	return polls, nil
}

// VotePoll appends one ballot and bumps the matching tally in one transaction.
// Every precondition is re-checked under the poll row lock, so no error path
// leaves partial state behind; the unique (poll, voter) index backstops the
// duplicate check against races. Tallies are broadcast only after commit.
func VotePoll(pollId uint, optionIndex int, user models.Account) ([]models.PollOption, error) {
	var poll models.Poll

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", pollId).First(&poll).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPollNotFound
			}
			return err
		}

		if !poll.IsActive {
			return ErrPollInactive
		}
		if optionIndex < 0 || optionIndex >= len(poll.Options) {
			return ErrPollInvalidOption
		}

		var count int64
		if err := tx.Model(&models.PollBallot{}).
			Where("poll_id = ? AND account_id = ?", poll.ID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPollAlreadyVoted
		}

		ballot := models.PollBallot{
			PollID:      poll.ID,
			AccountID:   user.ID,
			OptionIndex: optionIndex,
		}
		if err := tx.Create(&ballot).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPollAlreadyVoted
			}
			return err
		}

		options := []models.PollOption(poll.Options)
		options[optionIndex].Votes += 1
		poll.Options = options

		return tx.Model(&poll).Update("options", poll.Options).Error
	})
	if err != nil {
		return nil, err
	}

	pubsub.H.Publish(pubsub.EventRoom(poll.EventID), "poll-updated", map[string]any{
		"id":      poll.ID,
		"options": poll.Options,
	})

	return poll.Options, nil
}

// ClosePoll transitions a poll to closed at most once. The guarded update is
// the serialization point between admin closes, timer fires and the sweep:
// whoever flips is_active runs the winner side effects, everyone else gets the
// already-closed record back untouched.
func ClosePoll(pollId uint) (models.Poll, *models.PollWinner, error) {
	now := time.Now()
	res := database.C.Model(&models.Poll{}).
		Where("id = ? AND is_active = ?", pollId, true).
		Updates(map[string]any{"is_active": false, "closed_at": now})
	if res.Error != nil {
		return models.Poll{}, nil, fmt.Errorf("unable to close poll: %v", res.Error)
	}

	poll, err := GetPoll(pollId)
	if err != nil {
		return poll, nil, err
	}

	if res.RowsAffected == 0 {
		// Already closed; do not re-run winner selection.
		return poll, nil, nil
	}

	CancelPollAutoClose(poll.ID)

	pubsub.H.Publish(pubsub.EventRoom(poll.EventID), "poll-closed", map[string]any{
		"id": poll.ID,
	})

	var winner *models.PollWinner
	if poll.Type == models.PollTypeActivity {
		winner = PickPollWinner(poll)
		if winner != nil {
			pubsub.H.Publish(pubsub.EventRoom(poll.EventID), "activity-selected", map[string]any{
				"poll_id":  poll.ID,
				"activity": winner,
			})

			go NotifyEventGuests(poll.EventID, "Activity Selected",
				fmt.Sprintf("The crowd picked: %s", winner.Text),
				models.NotificationKindWinner, map[string]any{
					"poll_id": poll.ID,
					"winner":  winner,
				})
		}
	}

	log.Info().Uint("poll", poll.ID).Str("type", poll.Type).Msg("Poll has been closed.")

	return poll, winner, nil
}

// PickPollWinner returns the option with the most votes. A tie is resolved by
// a uniformly random pick among the tied options; repeated closes over the
// same tally can therefore name different winners, which matches the product
// behavior on record. Do not swap this for first-index-wins.
func PickPollWinner(poll models.Poll) *models.PollWinner {
	if len(poll.Options) == 0 {
		return nil
	}

	maxVotes := lo.MaxBy([]models.PollOption(poll.Options), func(a models.PollOption, b models.PollOption) bool {
		return a.Votes > b.Votes
	}).Votes

	var tied []int
	for idx, option := range poll.Options {
		if option.Votes == maxVotes {
			tied = append(tied, idx)
		}
	}

	picked := tied[rand.Intn(len(tied))]
	winner := &models.PollWinner{
		OptionIndex: picked,
		Text:        poll.Options[picked].Text,
		Votes:       poll.Options[picked].Votes,
	}

	if picked < len(poll.ActivityOptions) {
		details := poll.ActivityOptions[picked].Details
		winner.Details = &details
		winner.TimelineItemID = poll.ActivityOptions[picked].TimelineItemID
	}

	return winner
}
