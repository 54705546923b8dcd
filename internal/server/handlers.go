package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/MrEthical07/authshield"
)

const maxBodyBytes = 1 << 20

type strengthRequest struct {
	Password string `json:"password"`
}

type strengthResponse struct {
	Score    int      `json:"score"`
	Level    string   `json:"level"`
	Color    string   `json:"color"`
	Percent  float64  `json:"percent"`
	Feedback []string `json:"feedback"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleStrength(w http.ResponseWriter, r *http.Request) {
	var req strengthRequest
	if !decode(w, r, &req) {
		return
	}
	st := s.engine.CheckPasswordStrength(req.Password)
	lvl := st.Level()
	writeJSON(w, http.StatusOK, strengthResponse{
		Score:    st.Score,
		Level:    lvl.String(),
		Color:    lvl.Color(),
		Percent:  st.Percent(),
		Feedback: st.Feedback,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds authshield.LoginCredentials
	if !decode(w, r, &creds) {
		return
	}
	resp, err := s.engine.Login(r.Context(), creds)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds authshield.SignupCredentials
	if !decode(w, r, &creds) {
		return
	}
	resp, err := s.engine.Signup(r.Context(), creds)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Logout(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := s.engine.RefreshToken(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.CurrentUser(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.engine.SendPasswordReset(r.Context(), req.Email); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.engine.VerifyEmail(r.Context(), req.Token); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps Engine errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var rl *authshield.RateLimitError
	switch {
	case errors.As(err, &rl):
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfterSeconds()))
		writeError(w, http.StatusTooManyRequests, rl.Error())
	case errors.Is(err, authshield.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, authshield.ErrInvalidCredentials.Error())
	case errors.Is(err, authshield.ErrRefreshTokenMissing):
		writeError(w, http.StatusUnauthorized, authshield.ErrRefreshTokenMissing.Error())
	case errors.Is(err, authshield.ErrAccountExists):
		writeError(w, http.StatusConflict, authshield.ErrAccountExists.Error())
	case errors.Is(err, authshield.ErrSignupInvalid),
		errors.Is(err, authshield.ErrPasswordPolicy),
		errors.Is(err, authshield.ErrInvalidEmail),
		errors.Is(err, authshield.ErrEmailVerificationInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, authshield.ErrLimiterUnavailable),
		errors.Is(err, authshield.ErrUserProviderUnavailable),
		errors.Is(err, authshield.ErrTokenStoreUnavailable),
		errors.Is(err, authshield.ErrEngineNotReady):
		s.logger.Error("backend unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
