package flows

import (
	"context"
	"time"

	"github.com/padronhq/padron/token"
)

// FailureKind classifies authentication failures for root-level mapping.
// Everything except FailureMaintenance is soft: the request continues
// unauthenticated and downstream authorization decides.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureMalformed
	FailureAccountNotFound
	FailureInactive
	FailureMaintenance
	FailureEpochMismatch
	FailureExpired
)

// AccountSnapshot is the point-in-time account view the authenticator works
// against. RoleExempt is resolved by the caller from the role enumeration so
// this package never compares role labels.
type AccountSnapshot struct {
	Subject      string
	Name         string
	Role         uint8
	RoleExempt   bool
	Active       bool
	Epoch        uint32
	PasswordHash string
}

// AuthenticateDeps captures every external read of the per-request state
// machine. All reads are bounded; a lookup error is classified as a soft
// failure, never propagated as a hang or a hard error.
type AuthenticateDeps struct {
	Parse         func(tokenStr string) (*token.Claims, error)
	FindAccount   func(ctx context.Context, subject string) (AccountSnapshot, bool, error)
	MaintenanceOn func(ctx context.Context) bool
	Now           func() time.Time
}

// AuthenticateResult carries either the authenticated claims+account or a
// classified failure. MaintenanceBypassed records the gate's own decision:
// the flag was on and the role exemption let the request through.
type AuthenticateResult struct {
	Failure             FailureKind
	Err                 error
	Claims              *token.Claims
	Account             AccountSnapshot
	MaintenanceBypassed bool
}

// RunAuthenticate executes the credential checks in their fixed order:
// decode, account lookup, maintenance gate, epoch equality, strict expiry.
// The maintenance gate runs before epoch/expiry so that a blocked request is
// rejected identically whether its credential is fresh or stale.
func RunAuthenticate(ctx context.Context, tokenStr string, deps AuthenticateDeps) AuthenticateResult {
	claims, err := deps.Parse(tokenStr)
	if err != nil {
		return AuthenticateResult{Failure: FailureMalformed, Err: err}
	}

	account, found, err := deps.FindAccount(ctx, claims.Subject)
	if err != nil || !found {
		// Lookup timeouts and missing accounts collapse into the same soft
		// failure: the request proceeds unauthenticated.
		return AuthenticateResult{Failure: FailureAccountNotFound, Err: err}
	}
	if !account.Active {
		return AuthenticateResult{Failure: FailureInactive}
	}

	maintenanceOn := deps.MaintenanceOn(ctx)
	if maintenanceOn && !account.RoleExempt {
		return AuthenticateResult{Failure: FailureMaintenance}
	}

	if claims.Epoch != account.Epoch {
		return AuthenticateResult{Failure: FailureEpochMismatch}
	}

	// Strict boundary: a credential is valid only while now < exp, so a
	// verification at exactly exp fails.
	if !deps.Now().Before(claims.ExpiresAt.Time) {
		return AuthenticateResult{Failure: FailureExpired}
	}

	return AuthenticateResult{
		Claims:              claims,
		Account:             account,
		MaintenanceBypassed: maintenanceOn,
	}
}
