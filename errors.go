package authshield

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authshield/internal/limiters"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrLoginRateLimited is wrapped by every *RateLimitError.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrLimiterUnavailable is returned when the attempt limiter backend cannot
	// answer. Login fails closed on it.
	ErrLimiterUnavailable = errors.New("login limiter backend unavailable")
	// ErrAccountExists is returned by Signup for an email that is already registered.
	ErrAccountExists = errors.New("an account with this email already exists")
	// ErrSignupInvalid is returned when signup input fails validation.
	ErrSignupInvalid = errors.New("invalid signup request")
	// ErrPasswordPolicy is returned when a signup password scores below
	// PasswordConfig.MinStrengthScore.
	ErrPasswordPolicy = errors.New("password does not meet strength policy")
	// ErrRefreshTokenMissing is returned by RefreshToken when nothing is stored.
	ErrRefreshTokenMissing = errors.New("no refresh token available")
	// ErrTokenStoreUnavailable wraps token store backend failures.
	ErrTokenStoreUnavailable = errors.New("token store unavailable")
	// ErrEmailVerificationInvalid is returned for an unknown verification token.
	ErrEmailVerificationInvalid = errors.New("email verification token invalid")
	// ErrInvalidEmail is returned by SendPasswordReset for a malformed address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUserProviderUnavailable wraps UserProvider failures other than
	// ErrUserNotFound during login. No attempt is recorded for them.
	ErrUserProviderUnavailable = errors.New("user provider unavailable")
	// ErrUserNotFound is returned by UserProvider implementations.
	ErrUserNotFound = errors.New("user not found")
	// ErrEngineNotReady is returned when a nil or partially built Engine is used.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// RateLimitError reports a blocked login. Remaining is how long until the
// identifier's record leaves the window.
type RateLimitError struct {
	Remaining time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts, try again in %d minutes", limiters.RemainingMinutes(e.Remaining))
}

func (e *RateLimitError) Unwrap() error {
	return ErrLoginRateLimited
}

// RetryAfterSeconds rounds Remaining up to whole seconds for HTTP Retry-After.
func (e *RateLimitError) RetryAfterSeconds() int {
	if e == nil || e.Remaining <= 0 {
		return 0
	}
	secs := int(e.Remaining / time.Second)
	if e.Remaining%time.Second != 0 {
		secs++
	}
	return secs
}
