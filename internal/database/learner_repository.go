package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/pkg/models"
)

const learnerColumns = "id, username, password_hash, wants_updates, telegram_chat_id, created_at"

// LearnerRepository handles database operations for learner accounts
type LearnerRepository struct {
	db *sqlx.DB
}

// NewLearnerRepository creates a new repository instance
func NewLearnerRepository(db *sqlx.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// Create inserts a new learner. Usernames are unique.
func (r *LearnerRepository) Create(ctx context.Context, username, passwordHash string, wantsUpdates bool, now time.Time) (*models.Learner, error) {
	l := &models.Learner{
		Username:     username,
		PasswordHash: passwordHash,
		WantsUpdates: wantsUpdates,
		CreatedAt:    now.UTC(),
	}

	query := r.db.Rebind(`
		INSERT INTO learners (username, password_hash, wants_updates, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, l.Username, l.PasswordHash, l.WantsUpdates, l.CreatedAt).Scan(&l.ID)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("Username already taken")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create learner")
	}
	return l, nil
}

// GetByID returns a learner by ID
func (r *LearnerRepository) GetByID(ctx context.Context, id int64) (*models.Learner, error) {
	return r.getWithCondition(ctx, "id = ?", id)
}

// GetByUsername returns a learner by username
func (r *LearnerRepository) GetByUsername(ctx context.Context, username string) (*models.Learner, error) {
	return r.getWithCondition(ctx, "username = ?", username)
}

// SetWantsUpdates stores the reminder opt-in.
func (r *LearnerRepository) SetWantsUpdates(ctx context.Context, id int64, wantsUpdates bool) error {
	return r.update(ctx, "wants_updates = ?", id, wantsUpdates)
}

// ToggleWantsUpdates flips the reminder opt-in and returns the new value.
func (r *LearnerRepository) ToggleWantsUpdates(ctx context.Context, id int64) (bool, error) {
	var value bool
	query := r.db.Rebind(`UPDATE learners SET wants_updates = NOT wants_updates WHERE id = ? RETURNING wants_updates`)
	err := r.db.GetContext(ctx, &value, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperr.NotFound("User not found")
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to toggle update preference")
	}
	return value, nil
}

// SetTelegramChatID links a Telegram chat for reminders. A nil chatID unlinks it.
func (r *LearnerRepository) SetTelegramChatID(ctx context.Context, id int64, chatID *int64) error {
	return r.update(ctx, "telegram_chat_id = ?", id, chatID)
}

// ListForNotification returns learners who opted in to reminders.
func (r *LearnerRepository) ListForNotification(ctx context.Context) ([]models.Learner, error) {
	learners := []models.Learner{}
	query := r.db.Rebind(`SELECT ` + learnerColumns + ` FROM learners WHERE wants_updates = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &learners, query, true); err != nil {
		return nil, errors.Wrap(err, "failed to get learners for notification")
	}
	return learners, nil
}

func (r *LearnerRepository) getWithCondition(ctx context.Context, condition string, arg interface{}) (*models.Learner, error) {
	var l models.Learner
	query := r.db.Rebind(`SELECT ` + learnerColumns + ` FROM learners WHERE ` + condition)
	err := r.db.GetContext(ctx, &l, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get learner")
	}
	return &l, nil
}

func (r *LearnerRepository) update(ctx context.Context, set string, id int64, value interface{}) error {
	query := r.db.Rebind(`UPDATE learners SET ` + set + ` WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return errors.Wrap(err, "failed to update learner")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
