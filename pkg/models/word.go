package models

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/example/vocapp/internal/apperr"
)

// Word is one entry in a learner's list together with its review schedule.
type Word struct {
	ID             int64      `json:"id" db:"id"`
	LearnerID      int64      `json:"learner_id" db:"learner_id"`
	Word           string     `json:"word" db:"word"`
	Definition     Definition `json:"definition" db:"definition"`
	BoxLevel       int        `json:"box_level" db:"box_level"`
	LastReviewedAt time.Time  `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextDueAt      time.Time  `json:"next_due_at" db:"next_due_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// IsDue reports whether the word may be reviewed at now.
func (w Word) IsDue(now time.Time) bool {
	return w.NextDueAt.Before(now)
}

// NormalizeWord trims s and title-cases it. Only single words are accepted.
func NormalizeWord(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("Query must be a single word")
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", apperr.Validation("Query must be a single word")
	}
	return cases.Title(language.English).String(s), nil
}
