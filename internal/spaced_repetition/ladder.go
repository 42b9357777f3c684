package spaced_repetition

import (
	"time"

	"github.com/example/vocapp/internal/apperr"
)

const day = 24 * time.Hour

// Ladder is a fixed set of boxes. Box n (1-based) waits intervals[n-1] days
// until the next review and drops demotions[n-1] boxes on a wrong answer.
// A Ladder is immutable once built; copy it freely.
type Ladder struct {
	intervals []int
	demotions []int
}

// Review is the scheduler's verdict for one outcome.
type Review struct {
	Level        int
	LastReviewed time.Time
	NextDue      time.Time
}

// DefaultLadder returns the ten-box ladder the app ships with.
func DefaultLadder() Ladder {
	return Ladder{
		intervals: []int{1, 2, 3, 5, 8, 12, 18, 28, 42, 56},
		demotions: []int{0, 1, 1, 1, 2, 2, 3, 3, 4, 5},
	}
}

// NewLadder builds a ladder from an interval table (days) and a demotion
// table (boxes lost), both indexed by box-1.
func NewLadder(intervals, demotions []int) (Ladder, error) {
	if len(intervals) == 0 {
		return Ladder{}, apperr.Validation("ladder needs at least one box")
	}
	if len(intervals) != len(demotions) {
		return Ladder{}, apperr.Validation("ladder has %d intervals but %d demotions", len(intervals), len(demotions))
	}
	for i, days := range intervals {
		if days <= 0 {
			return Ladder{}, apperr.Validation("interval for box %d must be positive, got %d", i+1, days)
		}
		if demotions[i] < 0 {
			return Ladder{}, apperr.Validation("demotion for box %d must not be negative, got %d", i+1, demotions[i])
		}
	}
	return Ladder{
		intervals: append([]int(nil), intervals...),
		demotions: append([]int(nil), demotions...),
	}, nil
}

// Levels returns the top box number.
func (l Ladder) Levels() int {
	return len(l.intervals)
}

// Interval is the wait after landing in box level.
func (l Ladder) Interval(level int) (time.Duration, error) {
	if err := l.check(level); err != nil {
		return 0, err
	}
	return time.Duration(l.intervals[level-1]) * day, nil
}

// Initial places a freshly added word in box 1.
func (l Ladder) Initial(now time.Time) Review {
	return Review{
		Level:        1,
		LastReviewed: now,
		NextDue:      now.Add(time.Duration(l.intervals[0]) * day),
	}
}

// Advance moves a word from box level after a correct or wrong answer.
// A correct answer climbs one box, stopping at the top. A wrong answer drops
// by the demotion of the current box, never below box 1. The next due date is
// taken from the box the word lands in.
func (l Ladder) Advance(level int, correct bool, now time.Time) (Review, error) {
	if err := l.check(level); err != nil {
		return Review{}, err
	}

	var next int
	if correct {
		next = min(level+1, l.Levels())
	} else {
		next = max(1, level-l.demotions[level-1])
	}

	return Review{
		Level:        next,
		LastReviewed: now,
		NextDue:      now.Add(time.Duration(l.intervals[next-1]) * day),
	}, nil
}

func (l Ladder) check(level int) error {
	if level < 1 || level > l.Levels() {
		return apperr.Validation("box level %d out of range [1, %d]", level, l.Levels())
	}
	return nil
}
