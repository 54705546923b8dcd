package authshield

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authshield/internal"
	"github.com/MrEthical07/authshield/internal/flows"
	"go.uber.org/zap"
)

// Logout clears the calling client's stored tokens.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	client := clientKeyFromContext(ctx)

	set, _, err := e.tokens.Tokens(ctx, client)
	if err != nil {
		e.warn("authshield: token lookup on logout failed", "error", err)
	}
	if err := e.tokens.Clear(ctx, client); err != nil {
		e.warn("authshield: token clear on logout failed", "error", err)
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, AuditLogout, true, "", set.Email, nil, nil)
	return nil
}

// RefreshToken mints a new access token from the stored refresh token. The
// refresh token and the storage tier are kept.
func (e *Engine) RefreshToken(ctx context.Context) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}
	client := clientKeyFromContext(ctx)

	set, ok, err := e.tokens.Tokens(ctx, client)
	if err != nil {
		return "", err
	}
	if !ok || set.RefreshToken == "" {
		e.metricInc(MetricTokenRefreshMissing)
		e.emitAudit(ctx, AuditTokenRefresh, false, "", "", ErrRefreshTokenMissing, nil)
		return "", ErrRefreshTokenMissing
	}

	if err := flows.SleepContext(ctx, e.config.SimulatedLatency/2); err != nil {
		return "", err
	}

	access, err := internal.NewAccessToken()
	if err != nil {
		return "", err
	}
	set.AccessToken = access
	if err := e.tokens.SetTokens(ctx, client, set); err != nil {
		return "", err
	}

	e.metricInc(MetricTokenRefresh)
	e.emitAudit(ctx, AuditTokenRefresh, true, "", set.Email, nil, nil)
	return access, nil
}

// CurrentUser returns the user owning the calling client's access token, or
// nil when nothing is stored or the account no longer exists.
func (e *Engine) CurrentUser(ctx context.Context) (*User, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	set, ok, err := e.tokens.Tokens(ctx, clientKeyFromContext(ctx))
	if err != nil {
		return nil, err
	}
	if !ok || set.AccessToken == "" {
		return nil, nil
	}

	rec, err := e.users.GetUserByEmail(ctx, set.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	user := rec.User
	return &user, nil
}

// SendPasswordReset records a reset request. The result is the same whether
// or not the account exists.
func (e *Engine) SendPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if err := e.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	if err := flows.SleepContext(ctx, e.config.SimulatedLatency); err != nil {
		return err
	}

	userID := ""
	rec, err := e.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		userID = rec.ID
	case !errors.Is(err, ErrUserNotFound):
		e.warn("authshield: user lookup for password reset failed", "error", err)
	}

	e.logger.Info("password reset requested",
		zap.String("email", email),
		zap.Bool("known_account", userID != ""),
	)
	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, AuditPasswordResetRequest, true, userID, email, nil, nil)
	return nil
}

// VerifyEmail consumes a verification token and marks its account verified.
// Tokens are single use.
func (e *Engine) VerifyEmail(ctx context.Context, token string) error {
	if e == nil || e.users == nil || e.verifications == nil {
		return ErrEngineNotReady
	}

	// A cancelled wait must leave the token redeemable.
	if err := flows.SleepContext(ctx, e.config.SimulatedLatency); err != nil {
		return err
	}

	email, err := e.consumeVerification(ctx, token)
	if err != nil {
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, AuditEmailVerification, false, "", "", err, nil)
		return err
	}

	rec, err := e.users.GetUserByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricEmailVerificationFailure)
		if errors.Is(err, ErrUserNotFound) {
			return ErrEmailVerificationInvalid
		}
		return err
	}
	rec.IsEmailVerified = true
	if err := e.users.UpdateUser(ctx, rec); err != nil {
		return err
	}

	e.metricInc(MetricEmailVerificationSuccess)
	e.emitAudit(ctx, AuditEmailVerification, true, rec.ID, rec.Email, nil, nil)
	return nil
}
