package padron

import "errors"

var (
	// ErrCredentialMalformed reports a bearer credential that failed signature
	// or structural checks. Non-fatal: the request proceeds unauthenticated.
	ErrCredentialMalformed = errors.New("malformed credential")
	// ErrCredentialExpired reports a structurally valid credential past its
	// lifetime. Non-fatal, same treatment as malformed.
	ErrCredentialExpired = errors.New("credential expired")
	// ErrEpochMismatch reports a credential issued against a revocation epoch
	// that is no longer the account's current one.
	ErrEpochMismatch = errors.New("credential revoked by epoch advance")
	// ErrAccountNotFound reports a subject with no matching account record.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountInactive reports an account that has been deactivated.
	ErrAccountInactive = errors.New("account inactive")
	// ErrMaintenanceActive is the only fatal authentication outcome: the
	// maintenance flag is set and the account's role is not exempt. The
	// request terminates with a service-unavailable response.
	ErrMaintenanceActive = errors.New("maintenance mode active")
	// ErrInvalidCredentials reports a failed username/password check at login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited reports that the login attempt budget is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRoleInvalid reports a role label outside the closed enumeration.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrEpochNotAdvanced reports a revocation bump that did not increment
	// the stored epoch.
	ErrEpochNotAdvanced = errors.New("revocation epoch not advanced")
	// ErrPasswordReuse rejects a password change to the current password.
	ErrPasswordReuse = errors.New("new password must differ from current password")
	// ErrEngineNotReady reports use of an engine that was not built.
	ErrEngineNotReady = errors.New("engine not initialized")
)
