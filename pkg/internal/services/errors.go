package services

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEventNotFound = errors.New("event not found")

	ErrPollNotFound      = errors.New("poll not found")
	ErrPollInvalid       = errors.New("poll requires a question and at least two options")
	ErrPollInactive      = errors.New("poll is no longer active")
	ErrPollInvalidOption = errors.New("poll does not have an option like that")
	ErrPollAlreadyVoted  = errors.New("you have already voted on this poll")

	ErrNotificationNotFound  = errors.New("notification not found")
	ErrNotificationForbidden = errors.New("notification belongs to someone else")

	ErrTimelineItemNotFound = errors.New("timeline item not found")

	ErrTrackAlreadyQueued = errors.New("track is already in the queue")
	ErrTrackNotFound      = errors.New("track not found in the queue")
	ErrTrackAlreadyVoted  = errors.New("you have already voted for this track")
)
