package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/spaced_repetition"
	"github.com/example/vocapp/pkg/models"
)

const wordColumns = "id, learner_id, word, definition, box_level, last_reviewed_at, next_due_at, created_at"

// WordRepository handles database operations for learners' words.
// Box level and review timestamps are only ever written from a
// spaced_repetition.Review, so next_due_at always follows the ladder.
//
// Two outcomes applied concurrently to the same word are last-write-wins.
type WordRepository struct {
	db     *sqlx.DB
	ladder spaced_repetition.Ladder
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB, ladder spaced_repetition.Ladder) *WordRepository {
	return &WordRepository{db: db, ladder: ladder}
}

// Add stores a freshly looked-up word in box 1, due one interval from now.
func (r *WordRepository) Add(ctx context.Context, learnerID int64, word string, definition models.Definition, now time.Time) (*models.Word, error) {
	normalized, err := models.NormalizeWord(word)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	review := r.ladder.Initial(now)

	w := &models.Word{
		LearnerID:      learnerID,
		Word:           normalized,
		Definition:     definition,
		BoxLevel:       review.Level,
		LastReviewedAt: review.LastReviewed,
		NextDueAt:      review.NextDue,
		CreatedAt:      now,
	}

	query := r.db.Rebind(`
		INSERT INTO words (learner_id, word, definition, box_level, last_reviewed_at, next_due_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err = r.db.QueryRowxContext(ctx, query,
		w.LearnerID,
		w.Word,
		w.Definition,
		w.BoxLevel,
		w.LastReviewedAt,
		w.NextDueAt,
		w.CreatedAt,
	).Scan(&w.ID)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("'%s' is already in your list!", normalized)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create word")
	}
	return w, nil
}

// Get returns one word of a learner.
func (r *WordRepository) Get(ctx context.Context, learnerID int64, word string) (*models.Word, error) {
	normalized, err := models.NormalizeWord(word)
	if err != nil {
		return nil, err
	}
	return getWord(ctx, r.db, learnerID, normalized)
}

// ListDue returns the learner's words whose next_due_at is before now.
func (r *WordRepository) ListDue(ctx context.Context, learnerID int64, now time.Time) ([]models.Word, error) {
	words := []models.Word{}
	query := r.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE learner_id = ? AND next_due_at < ? ORDER BY next_due_at ASC, last_reviewed_at ASC, word ASC`)
	if err := r.db.SelectContext(ctx, &words, query, learnerID, now.UTC()); err != nil {
		return nil, errors.Wrap(err, "failed to get due words")
	}
	return words, nil
}

// ListAll returns every word of the learner, soonest due and longest
// unreviewed first.
func (r *WordRepository) ListAll(ctx context.Context, learnerID int64) ([]models.Word, error) {
	words := []models.Word{}
	query := r.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE learner_id = ? ORDER BY next_due_at ASC, last_reviewed_at ASC`)
	if err := r.db.SelectContext(ctx, &words, query, learnerID); err != nil {
		return nil, errors.Wrap(err, "failed to get words")
	}
	return words, nil
}

// HasDue reports whether at least one of the learner's words is due.
func (r *WordRepository) HasDue(ctx context.Context, learnerID int64, now time.Time) (bool, error) {
	var exists bool
	query := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM words WHERE learner_id = ? AND next_due_at < ?)`)
	if err := r.db.GetContext(ctx, &exists, query, learnerID, now.UTC()); err != nil {
		return false, errors.Wrap(err, "failed to check due words")
	}
	return exists, nil
}

// CountDue returns how many of the learner's words are due.
func (r *WordRepository) CountDue(ctx context.Context, learnerID int64, now time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM words WHERE learner_id = ? AND next_due_at < ?`)
	if err := r.db.GetContext(ctx, &count, query, learnerID, now.UTC()); err != nil {
		return 0, errors.Wrap(err, "failed to count due words")
	}
	return count, nil
}

// ApplyOutcome runs the ladder on the stored box of word and persists the
// result in a single transaction.
func (r *WordRepository) ApplyOutcome(ctx context.Context, learnerID int64, word string, correct bool, now time.Time) (*models.Word, error) {
	normalized, err := models.NormalizeWord(word)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	w, err := getWord(ctx, tx, learnerID, normalized)
	if err != nil {
		return nil, err
	}

	review, err := r.ladder.Advance(w.BoxLevel, correct, now.UTC())
	if err != nil {
		return nil, errors.Wrapf(err, "stored box of %q", w.Word)
	}

	query := tx.Rebind(`
		UPDATE words SET box_level = ?, last_reviewed_at = ?, next_due_at = ?
		WHERE id = ?
	`)
	if _, err := tx.ExecContext(ctx, query, review.Level, review.LastReviewed, review.NextDue, w.ID); err != nil {
		return nil, errors.Wrap(err, "failed to update word")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit outcome")
	}

	w.BoxLevel = review.Level
	w.LastReviewedAt = review.LastReviewed
	w.NextDueAt = review.NextDue
	return w, nil
}

// Remove deletes a word from the learner's list.
func (r *WordRepository) Remove(ctx context.Context, learnerID int64, word string) error {
	normalized, err := models.NormalizeWord(word)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`DELETE FROM words WHERE learner_id = ? AND word = ?`)
	result, err := r.db.ExecContext(ctx, query, learnerID, normalized)
	if err != nil {
		return errors.Wrap(err, "failed to delete word")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return apperr.NotFound("Word not found")
	}
	return nil
}

func getWord(ctx context.Context, q sqlx.ExtContext, learnerID int64, word string) (*models.Word, error) {
	var w models.Word
	query := q.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE learner_id = ? AND word = ?`)
	err := sqlx.GetContext(ctx, q, &w, query, learnerID, word)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("'%s' is not in your list", word)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word")
	}
	return &w, nil
}
