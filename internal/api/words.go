package api

import (
	"net/http"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/pkg/models"
)

type wordRequest struct {
	Word string `json:"word"`
}

type updateRequest struct {
	Word      string `json:"word"`
	IsCorrect *bool  `json:"is_correct"`
}

type lookupResponse struct {
	Word       string            `json:"word"`
	Definition models.Definition `json:"definition"`
	Message    string            `json:"message"`
}

type listedWord struct {
	Word         string `json:"word"`
	BoxNumber    int    `json:"box_number"`
	LastReviewed string `json:"last_reviewed"`
	NextReview   string `json:"next_review"`
}

func handleLookup(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		word, err := models.NormalizeWord(req.Word)
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}

		def, err := deps.Definer.Define(r.Context(), word)
		if err != nil {
			if apperr.Is(err, apperr.KindUpstreamUnavailable) {
				deps.Log.Warn("dictionary unavailable", "word", word, "error", err)
			}
			if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindUpstreamUnavailable) {
				httpError(w, http.StatusNotFound, apperr.KindNotFound.String(), "No results found for '%s'", word)
				return
			}
			respondError(w, r, deps.Log, err)
			return
		}

		added, err := deps.Words.Add(r.Context(), learnerID(r.Context()), word, def, deps.Clock.Now())
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusCreated, lookupResponse{
			Word:       added.Word,
			Definition: added.Definition,
			Message:    "'" + added.Word + "' added to your list!",
		})
	}
}

func handleCheck(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		due, err := deps.Words.HasDue(r.Context(), learnerID(r.Context()), deps.Clock.Now())
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"revision_time": due})
	}
}

func handleDueWords(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		words, err := deps.Words.ListDue(r.Context(), learnerID(r.Context()), deps.Clock.Now())
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]models.Word{"words": words})
	}
}

func handleUpdate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.IsCorrect == nil {
			respondError(w, r, deps.Log, apperr.Validation("is_correct is required"))
			return
		}

		word, err := deps.Words.ApplyOutcome(r.Context(), learnerID(r.Context()), req.Word, *req.IsCorrect, deps.Clock.Now())
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, word)
	}
}

func handleListWords(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		words, err := deps.Words.ListAll(r.Context(), learnerID(r.Context()))
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}

		now := deps.Clock.Now()
		listed := make([]listedWord, 0, len(words))
		for _, word := range words {
			listed = append(listed, listedWord{
				Word:         word.Word,
				BoxNumber:    word.BoxLevel,
				LastReviewed: DaysHoursMins(now, word.LastReviewedAt, true),
				NextReview:   DaysHoursMins(word.NextDueAt, now, false),
			})
		}
		writeJSON(w, http.StatusOK, map[string][]listedWord{"words": listed})
	}
}

func handleDelete(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wordRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		err := deps.Words.Remove(r.Context(), learnerID(r.Context()), req.Word)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]any{"delete_successful": true, "error": nil})
		case apperr.Is(err, apperr.KindNotFound), apperr.Is(err, apperr.KindInputValidation):
			writeJSON(w, statusFor(apperr.KindOf(err)), map[string]any{"delete_successful": false, "error": apperr.Message(err)})
		default:
			respondError(w, r, deps.Log, err)
		}
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Stats.ForLearner(r.Context(), learnerID(r.Context()), deps.Clock.Now())
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
