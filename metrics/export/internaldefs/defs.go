package internaldefs

import (
	"github.com/padronhq/padron"
)

// CounterDef ties a metric slot to its exported name and help text.
type CounterDef struct {
	ID   padron.MetricID
	Name string
	Help string
}

// HistogramDef ties a histogram slot to its exported name and help text.
type HistogramDef struct {
	ID   padron.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in render order.
var CounterDefs = []CounterDef{
	{ID: padron.MetricLoginSuccess, Name: "padron_login_success_total", Help: "Successful login attempts."},
	{ID: padron.MetricLoginFailure, Name: "padron_login_failure_total", Help: "Failed login attempts."},
	{ID: padron.MetricLoginRateLimited, Name: "padron_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: padron.MetricAuthnSuccess, Name: "padron_authn_success_total", Help: "Successfully authenticated requests."},
	{ID: padron.MetricAuthnMalformed, Name: "padron_authn_malformed_total", Help: "Credentials rejected by signature or structure checks."},
	{ID: padron.MetricAuthnAccountNotFound, Name: "padron_authn_account_not_found_total", Help: "Credentials whose subject had no account, or whose lookup failed."},
	{ID: padron.MetricAuthnInactive, Name: "padron_authn_inactive_total", Help: "Credentials presented for deactivated accounts."},
	{ID: padron.MetricAuthnEpochMismatch, Name: "padron_authn_epoch_mismatch_total", Help: "Credentials revoked by a revocation epoch advance."},
	{ID: padron.MetricAuthnExpired, Name: "padron_authn_expired_total", Help: "Credentials past their lifetime."},
	{ID: padron.MetricMaintenanceBlocked, Name: "padron_maintenance_blocked_total", Help: "Requests terminated by the maintenance gate."},
	{ID: padron.MetricMaintenanceBypassed, Name: "padron_maintenance_bypassed_total", Help: "Exempt-role requests authenticated during maintenance."},
	{ID: padron.MetricEpochBumped, Name: "padron_epoch_bumped_total", Help: "Revocation epoch advances."},
	{ID: padron.MetricPasswordChangeSuccess, Name: "padron_password_change_success_total", Help: "Successful password changes."},
	{ID: padron.MetricPasswordChangeInvalidOld, Name: "padron_password_change_invalid_old_total", Help: "Password change attempts with an invalid current password."},
}

// HistogramDefs lists every histogram in render order.
var HistogramDefs = []HistogramDef{
	{ID: padron.MetricAuthenticateLatency, Name: "padron_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, as rendered.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// instrument names.
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

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
