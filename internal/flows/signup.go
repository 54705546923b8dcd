package flows

import (
	"context"
	"errors"
	"time"
)

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SignupUserRecord is the flow-local view of a new account.
type SignupUserRecord struct {
	UserID       string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

type SignupResult struct {
	User              SignupUserRecord
	AccessToken       string
	RefreshToken      string
	VerificationToken string
}

type SignupMetrics struct {
	SignupSuccess   int
	SignupDuplicate int
	SignupRejected  int
}

type SignupEvents struct {
	SignupSuccess string
	SignupFailure string
}

type SignupErrors struct {
	EngineNotReady error
	SignupInvalid  error
	PasswordPolicy error
	AccountExists  error
}

// SignupDeps captures signup dependencies. Validate runs first and sees the
// raw input; everything after it sees sanitized names.
type SignupDeps struct {
	MinStrengthScore int
	SimulatedLatency time.Duration

	Now   func() time.Time
	Sleep func(context.Context, time.Duration) error

	Validate      func() error
	Sanitize      func(string) string
	StrengthScore func(string) int
	HashPassword  func(string) (string, error)
	NewUserID     func() string

	EmailExists       func(context.Context, string) (bool, error)
	CreateUser        func(context.Context, SignupUserRecord) (SignupUserRecord, error)
	IssueVerification func(context.Context, string) (string, error)
	IssueTokens       func(context.Context, SignupUserRecord) (string, string, error)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics SignupMetrics
	Events  SignupEvents
	Errors  SignupErrors
}

// RunSignup validates and registers a new account, then issues session-tier
// tokens. The account starts unverified.
func RunSignup(ctx context.Context, in SignupInput, deps SignupDeps) (*SignupResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = SleepContext
	}
	if deps.Sanitize == nil {
		deps.Sanitize = func(s string) string { return s }
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
	if deps.HashPassword == nil ||
		deps.NewUserID == nil ||
		deps.EmailExists == nil ||
		deps.CreateUser == nil ||
		deps.IssueTokens == nil {
		return nil, deps.Errors.EngineNotReady
	}

	reject := func(reason string, err error) (*SignupResult, error) {
		deps.MetricInc(deps.Metrics.SignupRejected)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", in.Email, err, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return nil, err
	}

	if deps.Validate != nil {
		if err := deps.Validate(); err != nil {
			return reject("invalid_input", err)
		}
	}

	in.FirstName = deps.Sanitize(in.FirstName)
	in.LastName = deps.Sanitize(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return reject("invalid_input", deps.Errors.SignupInvalid)
	}

	if deps.MinStrengthScore > 0 && deps.StrengthScore != nil {
		if deps.StrengthScore(in.Password) < deps.MinStrengthScore {
			return reject("weak_password", deps.Errors.PasswordPolicy)
		}
	}

	if deps.SimulatedLatency > 0 {
		if err := deps.Sleep(ctx, deps.SimulatedLatency); err != nil {
			return nil, err
		}
	}

	duplicate := func() (*SignupResult, error) {
		deps.MetricInc(deps.Metrics.SignupDuplicate)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", in.Email, deps.Errors.AccountExists, func() map[string]string {
			return map[string]string{"reason": "duplicate"}
		})
		return nil, deps.Errors.AccountExists
	}

	exists, err := deps.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return duplicate()
	}

	hash, err := deps.HashPassword(in.Password)
	if err != nil {
		return reject("hash_failed", errors.Join(deps.Errors.SignupInvalid, err))
	}
	in.Password = ""

	created, err := deps.CreateUser(ctx, SignupUserRecord{
		UserID:       deps.NewUserID(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		CreatedAt:    deps.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, deps.Errors.AccountExists) {
			return duplicate()
		}
		return nil, err
	}

	result := &SignupResult{User: created}
	if deps.IssueVerification != nil {
		token, err := deps.IssueVerification(ctx, created.Email)
		if err != nil {
			deps.Warn("authshield: verification token issue failed", "identifier", created.Email, "error", err)
		}
		result.VerificationToken = token
	}

	result.AccessToken, result.RefreshToken, err = deps.IssueTokens(ctx, created)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.SignupSuccess)
	deps.EmitAudit(ctx, deps.Events.SignupSuccess, true, created.UserID, created.Email, nil, nil)

	result.User.PasswordHash = ""
	return result, nil
}
