package api

import (
	"net/http"
	"strings"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/auth"
)

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	WantsUpdates    bool   `json:"wants_updates"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func handleRegister(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Username = strings.TrimSpace(req.Username)

		if req.Password != req.ConfirmPassword {
			respondError(w, r, deps.Log, apperr.Validation("Passwords don't match"))
			return
		}
		if err := auth.ValidateEmail(req.Username); err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		if err := auth.ValidatePassword(req.Password); err != nil {
			respondError(w, r, deps.Log, err)
			return
		}

		hash, err := deps.Auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}
		learner, err := deps.Learners.Create(r.Context(), req.Username, hash, req.WantsUpdates, deps.Clock.Now())
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}

		deps.Log.Info("learner registered", "learner_id", learner.ID)
		writeJSON(w, http.StatusCreated, learner)
	}
}

func handleLogin(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		learner, err := deps.Learners.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			respondError(w, r, deps.Log, err)
			return
		}
		if learner == nil || !deps.Auth.CheckPassword(learner.PasswordHash, req.Password) {
			respondError(w, r, deps.Log, apperr.Unauthorized("Invalid username and/or password"))
			return
		}

		token, err := deps.Auth.IssueToken(learner.ID)
		if err != nil {
			respondError(w, r, deps.Log, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "Bearer " + token,
			Path:     "/",
			Expires:  deps.Clock.Now().Add(deps.Auth.TTL()),
			HttpOnly: true,
			Secure:   deps.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

func handleLogout(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   deps.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
	}
}
