package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/config"
	"github.com/example/vocapp/internal/database"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/internal/lookup"
	"github.com/example/vocapp/internal/notify"
)

// app holds what every command shares: config, logger, database and
// repositories.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	db       *sqlx.DB
	clock    clock.Clock
	words    *database.WordRepository
	learners *database.LearnerRepository
	stats    *database.StatisticsRepository
}

func openApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Sync()
		return nil, err
	}
	log.Debug("database ready", "driver", cfg.Database.Driver)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		clock:    clock.System{},
		words:    database.NewWordRepository(db, cfg.Ladder),
		learners: database.NewLearnerRepository(db),
		stats:    database.NewStatisticsRepository(db),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
	a.log.Sync()
}

func (a *app) definer() lookup.Definer {
	return lookup.NewDictionaryClient(a.cfg.Lookup.BaseURL, a.cfg.Lookup.Timeout, lookup.WithMaxSenses(a.cfg.Lookup.MaxSenses))
}

// notifier picks every configured channel, falling back to the log.
func (a *app) notifier() notify.Notifier {
	var channels notify.Multi
	if a.cfg.SMTP.Host != "" {
		channels = append(channels, notify.NewEmail(a.cfg.SMTP))
	}
	if a.cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(a.cfg.Telegram.BotToken, a.log)
		if err != nil {
			a.log.Warn("telegram reminders disabled", "error", err)
		} else {
			channels = append(channels, tg)
		}
	}
	if len(channels) == 0 {
		return notify.NewLog(a.log)
	}
	return channels
}
