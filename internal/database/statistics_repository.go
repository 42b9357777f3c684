package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/vocapp/pkg/models"
)

// StatisticsRepository computes read-only summaries of word lists
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// ForLearner counts the learner's words per box and how many are due at now.
func (r *StatisticsRepository) ForLearner(ctx context.Context, learnerID int64, now time.Time) (*models.Statistics, error) {
	stats := &models.Statistics{
		LearnerID: learnerID,
		ByLevel:   make(map[int]int),
	}

	var rows []struct {
		BoxLevel int `db:"box_level"`
		Count    int `db:"count"`
	}
	query := r.db.Rebind(`SELECT box_level, COUNT(*) AS count FROM words WHERE learner_id = ? GROUP BY box_level`)
	if err := r.db.SelectContext(ctx, &rows, query, learnerID); err != nil {
		return nil, errors.Wrap(err, "failed to get level counts")
	}
	for _, row := range rows {
		stats.ByLevel[row.BoxLevel] = row.Count
		stats.Total += row.Count
	}

	query = r.db.Rebind(`SELECT COUNT(*) FROM words WHERE learner_id = ? AND next_due_at < ?`)
	if err := r.db.GetContext(ctx, &stats.Due, query, learnerID, now.UTC()); err != nil {
		return nil, errors.Wrap(err, "failed to count due words")
	}
	return stats, nil
}
