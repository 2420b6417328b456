package api

import (
	"net/http"

	"equipbook/internal/auth"

	"github.com/rs/zerolog"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r) {
		zerolog.Ctx(r.Context()).Warn().Str("client", clientKey(r)).Msg("login rate limited")
		writeError(w, http.StatusTooManyRequests, codeRateLimited)
		return
	}

	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest)
		return
	}
	if body.Password == "" {
		writeError(w, http.StatusBadRequest, codeMissingPassword)
		return
	}
	if !auth.CheckPassword(body.Password, s.cfg.Auth.Password) {
		zerolog.Ctx(r.Context()).Info().Str("client", clientKey(r)).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, codeUnauthorized)
		return
	}

	ttl := s.cfg.Auth.SessionTTL
	token, err := auth.Issue(s.secret, s.now().Unix(), ttl)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("issue session")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	http.SetCookie(w, auth.SessionCookie(s.cfg.Auth.CookieName, token, ttl, s.cfg.App.IsProduction()))
	writeOK(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie(s.cfg.Auth.CookieName, s.cfg.App.IsProduction()))
	writeOK(w)
}
