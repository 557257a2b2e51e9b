package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
)

func ptr[T any](v T) *T {
	return &v
}

func TestPollVoteLifecycle(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)
	userA := makeTestGuest(t, event, "Alice")
	userB := makeTestGuest(t, event, "Bob")

	poll, err := NewPoll(models.Poll{
		EventID:  event.ID,
		Question: "What should we do next?",
		Options: []models.PollOption{
			{Text: "Pool"},
			{Text: "Bowling"},
		},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}

	if !poll.IsActive {
		t.Error("new poll should start active")
	}
	if poll.Type != models.PollTypeGeneral {
		t.Errorf("poll type should default to general, got %q", poll.Type)
	}
	for idx, option := range poll.Options {
		if option.Votes != 0 {
			t.Errorf("option %d should start at zero votes, got %d", idx, option.Votes)
		}
	}

	options, err := VotePoll(poll.ID, 0, userA)
	if err != nil {
		t.Fatalf("vote as user A: %v", err)
	}
	if options[0].Votes != 1 {
		t.Errorf("expected option 0 to have 1 vote, got %d", options[0].Votes)
	}

	if _, err := VotePoll(poll.ID, 1, userA); !errors.Is(err, ErrPollAlreadyVoted) {
		t.Errorf("second ballot from the same user should fail with ErrPollAlreadyVoted, got %v", err)
	}

	got, err := GetPoll(poll.ID)
	if err != nil {
		t.Fatalf("get poll: %v", err)
	}
	if got.Options[0].Votes != 1 || got.Options[1].Votes != 0 {
		t.Errorf("rejected ballot must not change tallies, got %+v", got.Options)
	}
	if len(got.Voters) != 1 || got.Voters[0] != userA.ID {
		t.Errorf("voters should hold just user A, got %v", got.Voters)
	}

	if _, err := VotePoll(poll.ID, 1, userB); err != nil {
		t.Fatalf("vote as user B: %v", err)
	}

	got, _ = GetPoll(poll.ID)
	total := 0
	for _, option := range got.Options {
		total += option.Votes
	}
	if total != len(got.Voters) {
		t.Errorf("sum of votes (%d) must equal voter count (%d)", total, len(got.Voters))
	}

	closed, winner, err := ClosePoll(poll.ID)
	if err != nil {
		t.Fatalf("close poll: %v", err)
	}
	if closed.IsActive {
		t.Error("closed poll should be inactive")
	}
	if closed.ClosedAt == nil {
		t.Error("closed poll should carry a closed_at timestamp")
	}
	if winner != nil {
		t.Error("general polls must not run winner selection")
	}

	if _, err := VotePoll(poll.ID, 0, makeTestGuest(t, event, "Carol")); !errors.Is(err, ErrPollInactive) {
		t.Errorf("voting on a closed poll should fail with ErrPollInactive, got %v", err)
	}

	got, _ = GetPoll(poll.ID)
	if got.Options[0].Votes != 1 || got.Options[1].Votes != 1 {
		t.Errorf("tallies must not move after close, got %+v", got.Options)
	}
}

func TestClosePollIdempotent(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)
	makeTestGuest(t, event, "Alice")

	poll, err := NewPoll(models.Poll{
		EventID:  event.ID,
		Question: "Pick the next activity",
		Type:     models.PollTypeActivity,
		Options: []models.PollOption{
			{Text: "Laser Tag"},
			{Text: "Karaoke"},
		},
		ActivityOptions: []models.PollActivityOption{
			{Details: models.PollActivityDetails{Location: "Arena"}},
			{Details: models.PollActivityDetails{Location: "Stage"}},
		},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}

	first, winner, err := ClosePoll(poll.ID)
	if err != nil {
		t.Fatalf("close poll: %v", err)
	}
	if winner == nil {
		t.Fatal("activity poll close should select a winner")
	}

	countWinnerNotices := func() int64 {
		var count int64
		database.C.Model(&models.Notification{}).
			Where("kind = ?", models.NotificationKindWinner).Count(&count)
		return count
	}
	eventually(t, 2*time.Second, func() bool {
		return countWinnerNotices() == 1
	}, "expected exactly one winner notification after first close")

	second, winner, err := ClosePoll(poll.ID)
	if err != nil {
		t.Fatalf("close poll again: %v", err)
	}
	if winner != nil {
		t.Error("closing an already-closed poll must not re-run winner selection")
	}
	if !second.ClosedAt.Equal(*first.ClosedAt) {
		t.Error("closed_at must not move on repeated closes")
	}

	time.Sleep(100 * time.Millisecond)
	if got := countWinnerNotices(); got != 1 {
		t.Errorf("repeated close must not emit a second notification batch, got %d", got)
	}
}

func TestNewPollValidation(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)

	cases := []struct {
		name string
		poll models.Poll
		want error
	}{
		{
			name: "missing event",
			poll: models.Poll{
				EventID:  event.ID + 999,
				Question: "Anyone there?",
				Options:  []models.PollOption{{Text: "Yes"}, {Text: "No"}},
			},
			want: ErrEventNotFound,
		},
		{
			name: "empty question",
			poll: models.Poll{
				EventID:  event.ID,
				Question: "   ",
				Options:  []models.PollOption{{Text: "Yes"}, {Text: "No"}},
			},
			want: ErrPollInvalid,
		},
		{
			name: "single option",
			poll: models.Poll{
				EventID:  event.ID,
				Question: "Only one choice?",
				Options:  []models.PollOption{{Text: "Yes"}},
			},
			want: ErrPollInvalid,
		},
		{
			name: "activity options length mismatch",
			poll: models.Poll{
				EventID:  event.ID,
				Question: "Next activity?",
				Type:     models.PollTypeActivity,
				Options:  []models.PollOption{{Text: "A"}, {Text: "B"}},
				ActivityOptions: []models.PollActivityOption{
					{Details: models.PollActivityDetails{Location: "Hall"}},
				},
			},
			want: ErrPollInvalid,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tt.poll.AccountID = admin.ID
			if _, err := NewPoll(tt.poll, nil); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVotePollErrors(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)
	guest := makeTestGuest(t, event, "Alice")

	if _, err := VotePoll(12345, 0, guest); !errors.Is(err, ErrPollNotFound) {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}

	poll, err := NewPoll(models.Poll{
		EventID:   event.ID,
		Question:  "Pizza or tacos?",
		Options:   []models.PollOption{{Text: "Pizza"}, {Text: "Tacos"}},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}

	for _, idx := range []int{-1, 2, 99} {
		if _, err := VotePoll(poll.ID, idx, guest); !errors.Is(err, ErrPollInvalidOption) {
			t.Errorf("index %d: expected ErrPollInvalidOption, got %v", idx, err)
		}
	}

	got, _ := GetPoll(poll.ID)
	if len(got.Voters) != 0 {
		t.Errorf("failed votes must not record voters, got %v", got.Voters)
	}
}

func TestVotePollConcurrentBallots(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)

	poll, err := NewPoll(models.Poll{
		EventID:  event.ID,
		Question: "Pick a team",
		Options: []models.PollOption{
			{Text: "Red"},
			{Text: "Blue"},
			{Text: "Green"},
		},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}

	const voters = 16
	guests := make([]models.Account, voters)
	for i := range guests {
		guests[i] = makeTestGuest(t, event, fmt.Sprintf("Guest %d", i))
	}

	// Fire every ballot at once; each must land exactly once regardless of
	// interleaving.
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i, guest := range guests {
		wg.Add(1)
		go func(idx int, who models.Account) {
			defer wg.Done()
			if _, err := VotePoll(poll.ID, idx%3, who); err != nil {
				errs <- err
			}
		}(i, guest)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent ballot failed: %v", err)
	}

	got, err := GetPoll(poll.ID)
	if err != nil {
		t.Fatalf("get poll: %v", err)
	}

	total := 0
	for _, option := range got.Options {
		total += option.Votes
	}
	if total != voters {
		t.Errorf("expected %d tallied votes, got %d", voters, total)
	}
	if len(got.Voters) != voters {
		t.Errorf("expected %d recorded voters, got %d", voters, len(got.Voters))
	}
}

func TestPollAutoCloseFiresImmediately(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)
	makeTestGuest(t, event, "Alice")
	makeTestGuest(t, event, "Bob")

	poll, err := NewPoll(models.Poll{
		EventID:  event.ID,
		Question: "Tie at zero, timer picks",
		Type:     models.PollTypeActivity,
		Options: []models.PollOption{
			{Text: "Dodgeball"},
			{Text: "Trivia"},
		},
		ActivityOptions: []models.PollActivityOption{
			{Details: models.PollActivityDetails{Time: "19:00"}},
			{Details: models.PollActivityDetails{Time: "20:00"}},
		},
		AccountID: admin.ID,
	}, ptr(0))
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	if poll.AutoCloseAt == nil {
		t.Fatal("a poll with a duration must carry auto_close_at")
	}

	eventually(t, 3*time.Second, func() bool {
		got, err := GetPoll(poll.ID)
		return err == nil && !got.IsActive
	}, "timer should close the poll")

	eventually(t, 3*time.Second, func() bool {
		var count int64
		database.C.Model(&models.Notification{}).
			Where("kind = ?", models.NotificationKindWinner).Count(&count)
		return count == 2
	}, "each guest should receive exactly one winner notification")
}

func TestSweepClosesOverduePolls(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)

	poll, err := NewPoll(models.Poll{
		EventID:   event.ID,
		Question:  "Left behind by a restart",
		Options:   []models.PollOption{{Text: "A"}, {Text: "B"}},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}

	// Simulate a process that scheduled the timer and died before it fired.
	past := time.Now().Add(-time.Minute)
	if err := database.C.Model(&models.Poll{}).
		Where("id = ?", poll.ID).Update("auto_close_at", past).Error; err != nil {
		t.Fatalf("backdate poll: %v", err)
	}

	SweepOverduePolls()

	got, err := GetPoll(poll.ID)
	if err != nil {
		t.Fatalf("get poll: %v", err)
	}
	if got.IsActive {
		t.Error("sweep should close overdue polls")
	}

	// A second sweep has nothing left to do.
	SweepOverduePolls()
	again, _ := GetPoll(poll.ID)
	if !again.ClosedAt.Equal(*got.ClosedAt) {
		t.Error("repeated sweeps must not touch already-closed polls")
	}
}

func TestListEventPollsNewestFirst(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)
	event := makeTestEvent(t, admin)

	older, err := NewPoll(models.Poll{
		EventID:   event.ID,
		Question:  "First question",
		Options:   []models.PollOption{{Text: "A"}, {Text: "B"}},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create first poll: %v", err)
	}
	newer, err := NewPoll(models.Poll{
		EventID:   event.ID,
		Question:  "Second question",
		Options:   []models.PollOption{{Text: "A"}, {Text: "B"}},
		AccountID: admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create second poll: %v", err)
	}

	database.C.Model(&models.Poll{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour))
	database.C.Model(&models.Poll{}).Where("id = ?", newer.ID).
		Update("created_at", time.Now())

	polls, err := ListEventPolls(event.ID)
	if err != nil {
		t.Fatalf("list polls: %v", err)
	}
	if len(polls) != 2 {
		t.Fatalf("expected 2 polls, got %d", len(polls))
	}
	if polls[0].ID != newer.ID {
		t.Errorf("expected newest poll first, got poll %d", polls[0].ID)
	}
}

func TestPickPollWinnerTieBreakIsUniform(t *testing.T) {
	poll := models.Poll{
		Options: []models.PollOption{
			{Text: "A", Votes: 3},
			{Text: "B", Votes: 3},
			{Text: "C", Votes: 3},
			{Text: "D", Votes: 1},
		},
	}

	const trials = 3000
	counts := make(map[int]int)
	for i := 0; i < trials; i++ {
		winner := PickPollWinner(poll)
		if winner == nil {
			t.Fatal("winner should never be nil for a non-empty poll")
		}
		if winner.OptionIndex == 3 {
			t.Fatal("an option below max votes must never win")
		}
		counts[winner.OptionIndex]++
	}

	if len(counts) != 3 {
		t.Fatalf("all tied options should win sometimes, got %v", counts)
	}
	for idx, count := range counts {
		// Each of the three tied options expects ~1000 wins; allow wide slack.
		if count < 700 || count > 1300 {
			t.Errorf("option %d won %d of %d trials, outside rough uniformity", idx, count, trials)
		}
	}
}

func TestPickPollWinnerCarriesActivityDetails(t *testing.T) {
	item := uint(42)
	poll := models.Poll{
		Options: []models.PollOption{
			{Text: "Karaoke", Votes: 5},
			{Text: "Trivia", Votes: 2},
		},
		ActivityOptions: []models.PollActivityOption{
			{TimelineItemID: &item, Details: models.PollActivityDetails{Time: "21:00", Location: "Stage"}},
			{Details: models.PollActivityDetails{Location: "Lounge"}},
		},
	}

	winner := PickPollWinner(poll)
	if winner == nil {
		t.Fatal("expected a winner")
	}
	if winner.Text != "Karaoke" || winner.Votes != 5 {
		t.Errorf("expected the max-vote option to win, got %+v", winner)
	}
	if winner.Details == nil || winner.Details.Location != "Stage" {
		t.Errorf("winner should carry the matching activity details, got %+v", winner.Details)
	}
	if winner.TimelineItemID == nil || *winner.TimelineItemID != item {
		t.Error("winner should carry the timeline item reference")
	}
}
