package authshield

import (
	"io"

	"github.com/MrEthical07/authshield/internal/audit"
	"go.uber.org/zap"
)

// Audit event types emitted by the Engine.
const (
	AuditLoginSuccess         = "login_success"
	AuditLoginFailure         = "login_failure"
	AuditLoginRateLimited     = "login_rate_limited"
	AuditSignupSuccess        = "signup_success"
	AuditSignupFailure        = "signup_failure"
	AuditLogout               = "logout"
	AuditTokenRefresh         = "token_refresh"
	AuditPasswordResetRequest = "password_reset_request"
	AuditEmailVerification    = "email_verification"
)

type (
	AuditEvent     = audit.Event
	AuditSink      = audit.Sink
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
	ZapSink        = audit.ZapSink
)

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewZapSink logs audit events through logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return audit.NewZapSink(logger)
}
