package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/vocapp/internal/auth"
	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/internal/lookup"
	"github.com/example/vocapp/pkg/models"
)

// WordStore is the word store as the HTTP layer uses it.
type WordStore interface {
	Add(ctx context.Context, learnerID int64, word string, definition models.Definition, now time.Time) (*models.Word, error)
	ListDue(ctx context.Context, learnerID int64, now time.Time) ([]models.Word, error)
	ListAll(ctx context.Context, learnerID int64) ([]models.Word, error)
	HasDue(ctx context.Context, learnerID int64, now time.Time) (bool, error)
	ApplyOutcome(ctx context.Context, learnerID int64, word string, correct bool, now time.Time) (*models.Word, error)
	Remove(ctx context.Context, learnerID int64, word string) error
}

type LearnerStore interface {
	Create(ctx context.Context, username, passwordHash string, wantsUpdates bool, now time.Time) (*models.Learner, error)
	GetByID(ctx context.Context, id int64) (*models.Learner, error)
	GetByUsername(ctx context.Context, username string) (*models.Learner, error)
	ToggleWantsUpdates(ctx context.Context, id int64) (bool, error)
	SetTelegramChatID(ctx context.Context, id int64, chatID *int64) error
}

type StatsReader interface {
	ForLearner(ctx context.Context, learnerID int64, now time.Time) (*models.Statistics, error)
}

type Deps struct {
	Words        WordStore
	Learners     LearnerStore
	Stats        StatsReader
	Definer      lookup.Definer
	Auth         *auth.Manager
	Clock        clock.Clock
	Log          *logger.Logger
	LookupRate   float64 // per learner per second
	LookupBurst  int
	SecureCookie bool
}

// NewRouter builds the HTTP API.
func NewRouter(deps Deps) http.Handler {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("component", "api")
	limiter := NewRateLimiter(deps.LookupRate, deps.LookupBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(deps.Log))
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth())
	r.Post("/register", handleRegister(deps))
	r.Post("/login", handleLogin(deps))
	r.Post("/logout", handleLogout(deps))

	r.Group(func(r chi.Router) {
		r.Use(requireLearner(deps.Auth))

		r.With(limiter.Middleware).Post("/lookup", handleLookup(deps))
		r.Get("/check", handleCheck(deps))
		r.Get("/words/due", handleDueWords(deps))
		r.Post("/update", handleUpdate(deps))
		r.Get("/words", handleListWords(deps))
		r.Post("/delete", handleDelete(deps))
		r.Get("/stats", handleStats(deps))
		r.Get("/emailpreference", handleEmailPreference(deps))
		r.Post("/changepreference", handleChangePreference(deps))
		r.Post("/telegram", handleLinkTelegram(deps))
	})

	return r
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
