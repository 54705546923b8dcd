package internaldefs

import (
	"github.com/MrEthical07/authshield"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authshield.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   authshield.MetricID
	Name string
	Help string
}

// AuditDroppedName is exported alongside the engine counters by every exporter.
const (
	AuditDroppedName = "authshield_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: authshield.MetricLoginSuccess, Name: "authshield_login_success_total", Help: "Successful logins."},
	{ID: authshield.MetricLoginFailure, Name: "authshield_login_failure_total", Help: "Logins rejected for invalid credentials."},
	{ID: authshield.MetricLoginRateLimited, Name: "authshield_login_rate_limited_total", Help: "Logins rejected because the identifier was blocked."},
	{ID: authshield.MetricLimiterUnavailable, Name: "authshield_limiter_unavailable_total", Help: "Logins rejected because the attempt limiter backend failed."},
	{ID: authshield.MetricSignupSuccess, Name: "authshield_signup_success_total", Help: "Accounts created."},
	{ID: authshield.MetricSignupDuplicate, Name: "authshield_signup_duplicate_total", Help: "Signups rejected as duplicate."},
	{ID: authshield.MetricSignupRejected, Name: "authshield_signup_rejected_total", Help: "Signups rejected by validation or password policy."},
	{ID: authshield.MetricLogout, Name: "authshield_logout_total", Help: "Logouts."},
	{ID: authshield.MetricTokenRefresh, Name: "authshield_token_refresh_total", Help: "Access tokens refreshed."},
	{ID: authshield.MetricTokenRefreshMissing, Name: "authshield_token_refresh_missing_total", Help: "Refreshes without a stored refresh token."},
	{ID: authshield.MetricPasswordResetRequest, Name: "authshield_password_reset_request_total", Help: "Password reset requests."},
	{ID: authshield.MetricEmailVerificationSuccess, Name: "authshield_email_verification_success_total", Help: "Successful email verifications."},
	{ID: authshield.MetricEmailVerificationFailure, Name: "authshield_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: authshield.MetricStrengthCheck, Name: "authshield_strength_check_total", Help: "Password strength evaluations."},
	{ID: authshield.MetricLimiterPruned, Name: "authshield_limiter_pruned_total", Help: "Expired attempt records removed by the janitor."},
}

var HistogramDefs = []HistogramDef{
	{ID: authshield.MetricLoginLatency, Name: "authshield_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramUpperBounds are the bucket bounds in seconds, excluding +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
