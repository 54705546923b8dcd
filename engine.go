package authshield

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/authshield/internal"
	"github.com/MrEthical07/authshield/internal/audit"
	"github.com/MrEthical07/authshield/internal/flows"
	"github.com/MrEthical07/authshield/internal/stores"
	"github.com/MrEthical07/authshield/password"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine is the authentication service. Build it with New().Build(); it is
// safe for concurrent use and must be closed to stop background goroutines.
type Engine struct {
	config  Config
	logger  *zap.Logger
	now     func() time.Time
	limiter attemptStore
	tokens  TokenStore
	users   UserProvider
	hasher  *password.Hasher
	// dummyHash is verified for unknown accounts during login.
	dummyHash string
	validate  *validator.Validate
	audit     *audit.Dispatcher
	metrics   *Metrics

	verifications verificationStore

	stopJanitor chan struct{}
	janitorWG   sync.WaitGroup
	closeOnce   sync.Once
}

// Close stops the limiter janitor and flushes the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		close(e.stopJanitor)
		e.janitorWG.Wait()
		e.audit.Close()
		_ = e.logger.Sync()
	})
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and the login
// latency histogram. It is empty when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return emptySnapshot()
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, identifier string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:  e.now().UTC(),
		EventType:  eventType,
		UserID:     userID,
		Identifier: identifier,
		IP:         clientIPFromContext(ctx),
		Success:    success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) warn(msg string, keysAndValues ...any) {
	e.logger.Sugar().Warnw(msg, keysAndValues...)
}

func (e *Engine) metricFn() func(int) {
	return func(id int) { e.metricInc(MetricID(id)) }
}

// Login authenticates credentials. A blocked identifier gets a
// *RateLimitError before any credential check; a failed check records one
// attempt and returns ErrInvalidCredentials.
func (e *Engine) Login(ctx context.Context, creds LoginCredentials) (*AuthResponse, error) {
	if e == nil || e.limiter == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer func() {
		e.metrics.Observe(MetricLoginLatency, time.Since(start))
	}()

	email := normalizeEmail(creds.Email)
	var found UserRecord

	result, err := flows.RunLogin(ctx, email, creds.Password, creds.RememberMe, flows.LoginDeps{
		ResetOnSuccess:   e.config.Limiter.ResetOnSuccess,
		SimulatedLatency: e.config.SimulatedLatency,
		Now:              e.now,
		IsBlocked:        e.limiter.IsBlocked,
		RemainingTime:    e.limiter.RemainingTime,
		RecordAttempt:    e.limiter.RecordAttempt,
		ResetAttempts:    e.limiter.Reset,
		RateLimited: func(remaining time.Duration) error {
			return &RateLimitError{Remaining: remaining}
		},
		GetUserByEmail: func(ctx context.Context, email string) (flows.LoginUserRecord, error) {
			rec, err := e.users.GetUserByEmail(ctx, email)
			if err != nil {
				return flows.LoginUserRecord{}, err
			}
			found = rec
			return flows.LoginUserRecord{UserID: rec.ID, Email: rec.Email, PasswordHash: rec.PasswordHash}, nil
		},
		VerifyPassword: e.hasher.Verify,
		DummyHash:      e.dummyHash,
		IssueTokens: func(ctx context.Context, user flows.LoginUserRecord, rememberMe bool) (string, string, error) {
			return e.issueTokens(ctx, user.Email, rememberMe)
		},
		MetricInc: e.metricFn(),
		EmitAudit: e.emitAudit,
		Warn:      e.warn,
		Metrics: flows.LoginMetrics{
			LoginSuccess:       int(MetricLoginSuccess),
			LoginFailure:       int(MetricLoginFailure),
			LoginRateLimited:   int(MetricLoginRateLimited),
			LimiterUnavailable: int(MetricLimiterUnavailable),
		},
		Events: flows.LoginEvents{
			LoginSuccess:     AuditLoginSuccess,
			LoginFailure:     AuditLoginFailure,
			LoginRateLimited: AuditLoginRateLimited,
		},
		Errors: flows.LoginErrors{
			EngineNotReady:      ErrEngineNotReady,
			InvalidCredentials:  ErrInvalidCredentials,
			LimiterUnavailable:  ErrLimiterUnavailable,
			UserNotFound:        ErrUserNotFound,
			ProviderUnavailable: ErrUserProviderUnavailable,
		},
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         found.User,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

// Signup registers a new, unverified account and signs it in on the
// session tier.
func (e *Engine) Signup(ctx context.Context, creds SignupCredentials) (*AuthResponse, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}
	creds.Email = normalizeEmail(creds.Email)

	result, err := flows.RunSignup(ctx, flows.SignupInput{
		FirstName: creds.FirstName,
		LastName:  creds.LastName,
		Email:     creds.Email,
		Password:  creds.Password,
	}, flows.SignupDeps{
		MinStrengthScore: e.config.Password.MinStrengthScore,
		SimulatedLatency: e.config.SimulatedLatency,
		Now:              e.now,
		Validate: func() error {
			if err := e.validate.Struct(creds); err != nil {
				return fmt.Errorf("%w: %v", ErrSignupInvalid, err)
			}
			return nil
		},
		Sanitize:      SanitizeInput,
		StrengthScore: func(pw string) int { return password.CheckStrength(pw).Score },
		HashPassword:  e.hasher.Hash,
		NewUserID:     uuid.NewString,
		EmailExists: func(ctx context.Context, email string) (bool, error) {
			_, err := e.users.GetUserByEmail(ctx, email)
			switch {
			case err == nil:
				return true, nil
			case errors.Is(err, ErrUserNotFound):
				return false, nil
			default:
				return false, err
			}
		},
		CreateUser: func(ctx context.Context, rec flows.SignupUserRecord) (flows.SignupUserRecord, error) {
			created, err := e.users.CreateUser(ctx, UserRecord{
				User: User{
					ID:        rec.UserID,
					Email:     rec.Email,
					FirstName: rec.FirstName,
					LastName:  rec.LastName,
					CreatedAt: rec.CreatedAt,
				},
				PasswordHash: rec.PasswordHash,
			})
			if err != nil {
				return flows.SignupUserRecord{}, err
			}
			rec.UserID = created.ID
			rec.CreatedAt = created.CreatedAt
			return rec, nil
		},
		IssueVerification: e.issueVerification,
		IssueTokens: func(ctx context.Context, rec flows.SignupUserRecord) (string, string, error) {
			return e.issueTokens(ctx, rec.Email, false)
		},
		MetricInc: e.metricFn(),
		EmitAudit: e.emitAudit,
		Warn:      e.warn,
		Metrics: flows.SignupMetrics{
			SignupSuccess:   int(MetricSignupSuccess),
			SignupDuplicate: int(MetricSignupDuplicate),
			SignupRejected:  int(MetricSignupRejected),
		},
		Events: flows.SignupEvents{
			SignupSuccess: AuditSignupSuccess,
			SignupFailure: AuditSignupFailure,
		},
		Errors: flows.SignupErrors{
			EngineNotReady: ErrEngineNotReady,
			SignupInvalid:  ErrSignupInvalid,
			PasswordPolicy: ErrPasswordPolicy,
			AccountExists:  ErrAccountExists,
		},
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("account created",
		zap.String("user_id", result.User.UserID),
		zap.String("email", result.User.Email),
	)

	return &AuthResponse{
		User: User{
			ID:        result.User.UserID,
			Email:     result.User.Email,
			FirstName: result.User.FirstName,
			LastName:  result.User.LastName,
			CreatedAt: result.User.CreatedAt,
		},
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

func (e *Engine) issueTokens(ctx context.Context, email string, persistent bool) (string, string, error) {
	access, err := internal.NewAccessToken()
	if err != nil {
		return "", "", err
	}
	refresh, err := internal.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	err = e.tokens.SetTokens(ctx, clientKeyFromContext(ctx), TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
		Email:        email,
		Persistent:   persistent,
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (e *Engine) issueVerification(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	ttl := e.config.Tokens.VerificationTTL
	err := e.verifications.Save(ctx, token, stores.VerificationRecord{
		Email:     email,
		ExpiresAt: e.now().Add(ttl),
	}, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}

	e.logger.Debug("verification token issued", zap.String("email", email))
	return token, nil
}

// PendingVerificationToken returns the outstanding verification token for
// email, if any. It stands in for the email a real deployment would send.
func (e *Engine) PendingVerificationToken(ctx context.Context, email string) (string, bool, error) {
	if e == nil || e.verifications == nil {
		return "", false, ErrEngineNotReady
	}
	token, ok, err := e.verifications.Pending(ctx, normalizeEmail(email), e.now())
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	return token, ok, nil
}

// CheckPasswordStrength scores pw. It never fails.
func (e *Engine) CheckPasswordStrength(pw string) password.Strength {
	e.metricInc(MetricStrengthCheck)
	return password.CheckStrength(pw)
}

// LoginBlocked reports whether email is currently blocked and, if so, for
// how much longer.
func (e *Engine) LoginBlocked(ctx context.Context, email string) (bool, time.Duration, error) {
	if e == nil || e.limiter == nil {
		return false, 0, ErrEngineNotReady
	}
	email = normalizeEmail(email)

	blocked, err := e.limiter.IsBlocked(ctx, email)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if !blocked {
		return false, 0, nil
	}
	remaining, err := e.limiter.RemainingTime(ctx, email)
	if err != nil {
		return true, 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return true, remaining, nil
}

// ResetLoginAttempts forgets every recorded failure for email.
func (e *Engine) ResetLoginAttempts(ctx context.Context, email string) error {
	if e == nil || e.limiter == nil {
		return ErrEngineNotReady
	}
	if err := e.limiter.Reset(ctx, normalizeEmail(email)); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}
