package api

import (
	"net/http"
)

type telegramRequest struct {
	ChatID *int64 `json:"chat_id"`
}

func handleEmailPreference(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner, err := deps.Learners.GetByID(r.Context(), learnerID(r.Context()))
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"preference": learner.WantsUpdates, "error": nil})
	}
}

func handleChangePreference(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pref, err := deps.Learners.ToggleWantsUpdates(r.Context(), learnerID(r.Context()))
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"change_successful": true, "preference": pref, "error": nil})
	}
}

// handleLinkTelegram stores the chat reminders are sent to. A null chat_id
// unlinks it.
func handleLinkTelegram(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req telegramRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := deps.Learners.SetTelegramChatID(r.Context(), learnerID(r.Context()), req.ChatID); err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"linked": req.ChatID != nil})
	}
}
