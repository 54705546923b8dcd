package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MrEthical07/authshield"
)

const maxKeyBodyBytes = 1 << 20

// ErrBodyTooLarge is returned by JSONEmailKey for bodies over 1 MiB.
var ErrBodyTooLarge = errors.New("request body too large")

// BlockChecker is the subset of *authshield.Engine the throttle needs.
type BlockChecker interface {
	LoginBlocked(ctx context.Context, email string) (bool, time.Duration, error)
}

// KeyFunc extracts the login identifier from a request. An empty key lets
// the request through unchecked.
type KeyFunc func(*http.Request) (string, error)

// LoginThrottle rejects requests whose identifier is currently blocked with
// 429 and a Retry-After header. Limiter failures answer 503. It never
// records attempts; the Engine does that on failed logins.
func LoginThrottle(checker BlockChecker, keyFn KeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = JSONEmailKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil {
				writeError(w, http.StatusServiceUnavailable, authshield.ErrEngineNotReady.Error())
				return
			}

			key, err := keyFn(r)
			if errors.Is(err, ErrBodyTooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, err.Error())
				return
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			blocked, remaining, err := checker.LoginBlocked(r.Context(), key)
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, authshield.ErrLimiterUnavailable.Error())
				return
			}
			if blocked {
				WriteRateLimited(w, &authshield.RateLimitError{Remaining: remaining})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteRateLimited renders err as a 429 response.
func WriteRateLimited(w http.ResponseWriter, err *authshield.RateLimitError) {
	w.Header().Set("Retry-After", strconv.Itoa(err.RetryAfterSeconds()))
	writeError(w, http.StatusTooManyRequests, err.Error())
}

// JSONEmailKey reads the "email" field of a JSON body and restores the body
// for the next handler.
func JSONEmailKey(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxKeyBodyBytes+1))
	_ = r.Body.Close()
	if err != nil {
		return "", err
	}
	if len(raw) > maxKeyBodyBytes {
		return "", ErrBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", errors.New("malformed json body")
	}
	return body.Email, nil
}

// FormEmailKey reads the "email" form value.
func FormEmailKey(r *http.Request) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.FormValue("email"), nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
