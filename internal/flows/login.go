package flows

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LoginUserRecord is the flow-local view of an account.
type LoginUserRecord struct {
	UserID       string
	Email        string
	PasswordHash string
}

type LoginResult struct {
	User         LoginUserRecord
	AccessToken  string
	RefreshToken string
}

// LoginMetrics carries metric IDs used by the login flow.
type LoginMetrics struct {
	LoginSuccess       int
	LoginFailure       int
	LoginRateLimited   int
	LimiterUnavailable int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess     string
	LoginFailure     string
	LoginRateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
// When UserNotFound is nil every lookup error counts as an unknown account.
type LoginErrors struct {
	EngineNotReady      error
	InvalidCredentials  error
	LimiterUnavailable  error
	UserNotFound        error
	ProviderUnavailable error
}

// LoginDeps captures login dependencies. Identifiers reaching the flow are
// already normalized.
type LoginDeps struct {
	ResetOnSuccess   bool
	SimulatedLatency time.Duration

	Now   func() time.Time
	Sleep func(context.Context, time.Duration) error

	IsBlocked     func(context.Context, string) (bool, error)
	RemainingTime func(context.Context, string) (time.Duration, error)
	RecordAttempt func(context.Context, string) error
	ResetAttempts func(context.Context, string) error
	RateLimited   func(time.Duration) error

	GetUserByEmail func(context.Context, string) (LoginUserRecord, error)
	VerifyPassword func(string, string) (bool, error)
	// DummyHash is verified against for unknown accounts so both failure
	// paths cost one hash verification.
	DummyHash   string
	IssueTokens func(context.Context, LoginUserRecord, bool) (string, string, error)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin checks the attempt limiter, verifies credentials and issues
// tokens. Only a failed credential check records an attempt; a blocked
// identifier is rejected before the user directory is consulted.
func RunLogin(ctx context.Context, email, password string, rememberMe bool, deps LoginDeps) (*LoginResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = SleepContext
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.IsBlocked == nil ||
		deps.RemainingTime == nil ||
		deps.RecordAttempt == nil ||
		deps.RateLimited == nil ||
		deps.GetUserByEmail == nil ||
		deps.VerifyPassword == nil ||
		deps.IssueTokens == nil {
		return nil, deps.Errors.EngineNotReady
	}

	blocked, err := deps.IsBlocked(ctx, email)
	if err != nil {
		deps.MetricInc(deps.Metrics.LimiterUnavailable)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", email, deps.Errors.LimiterUnavailable, func() map[string]string {
			return map[string]string{"reason": "limiter_unavailable"}
		})
		return nil, fmt.Errorf("%w: %v", deps.Errors.LimiterUnavailable, err)
	}
	if blocked {
		remaining, err := deps.RemainingTime(ctx, email)
		if err != nil {
			deps.Warn("authshield: remaining time lookup failed", "identifier", email, "error", err)
		}
		rateErr := deps.RateLimited(remaining)
		deps.MetricInc(deps.Metrics.LoginRateLimited)
		deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, "", email, rateErr, func() map[string]string {
			return map[string]string{"remaining": remaining.Round(time.Second).String()}
		})
		return nil, rateErr
	}

	if deps.SimulatedLatency > 0 {
		if err := deps.Sleep(ctx, deps.SimulatedLatency); err != nil {
			return nil, err
		}
	}

	fail := func(userID, reason string) (*LoginResult, error) {
		if err := deps.RecordAttempt(ctx, email); err != nil {
			deps.Warn("authshield: recording failed login attempt failed", "identifier", email, "error", err)
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, userID, email, deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	if password == "" {
		return fail("", "empty_password")
	}

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if deps.Errors.UserNotFound != nil && !errors.Is(err, deps.Errors.UserNotFound) {
			deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", email, deps.Errors.ProviderUnavailable, func() map[string]string {
				return map[string]string{"reason": "provider_unavailable"}
			})
			return nil, fmt.Errorf("%w: %v", deps.Errors.ProviderUnavailable, err)
		}
		if deps.DummyHash != "" {
			_, _ = deps.VerifyPassword(password, deps.DummyHash)
		}
		return fail("", "user_not_found")
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return fail(user.UserID, "password_mismatch")
	}
	password = ""

	if deps.ResetOnSuccess && deps.ResetAttempts != nil {
		if err := deps.ResetAttempts(ctx, email); err != nil {
			deps.Warn("authshield: attempt reset after login failed", "identifier", email, "error", err)
		}
	}

	access, refresh, err := deps.IssueTokens(ctx, user, rememberMe)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.UserID, email, nil, func() map[string]string {
		if rememberMe {
			return map[string]string{"remember_me": "true"}
		}
		return nil
	})

	user.PasswordHash = ""
	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// SleepContext waits for d or until ctx is done, returning ctx.Err() in
// the latter case.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
