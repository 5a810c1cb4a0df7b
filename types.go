package padron

import (
	"context"
	"time"
)

// Role is the closed enumeration of staff roles. The zero value is invalid so
// that an unset role never passes authorization by accident.
type Role uint8

const (
	RoleUnknown Role = iota
	// RoleOperator can consult the member registry and assemblies.
	RoleOperator
	// RoleAdmin additionally manages socios, assemblies and staff accounts.
	RoleAdmin
	// RoleSuperAdmin is the operator-of-last-resort role. It is the only role
	// exempt from the maintenance gate.
	RoleSuperAdmin
)

// ExemptFromMaintenance reports whether the role keeps working while the
// maintenance flag is set. Modeled as an explicit predicate on the enum so a
// relabeled role cannot silently lose the exemption.
func (r Role) ExemptFromMaintenance() bool {
	return r == RoleSuperAdmin
}

func (r Role) String() string {
	switch r {
	case RoleOperator:
		return "operator"
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "super_admin"
	default:
		return "unknown"
	}
}

// ParseRole maps a stored role label to the enumeration.
func ParseRole(label string) (Role, error) {
	switch label {
	case "operator":
		return RoleOperator, nil
	case "admin":
		return RoleAdmin, nil
	case "super_admin":
		return RoleSuperAdmin, nil
	default:
		return RoleUnknown, ErrRoleInvalid
	}
}

// Account is an immutable point-in-time snapshot of a staff account, read
// once per request. The authentication path never writes any of its fields;
// the revocation epoch is mutated only by account management operations.
type Account struct {
	Subject         string
	Name            string
	Role            Role
	Active          bool
	RevocationEpoch uint32
	PasswordHash    string
}

// Principal is the request-scoped authenticated identity. It lives in the
// request context for the lifetime of one request and is never persisted.
type Principal struct {
	Subject string
	Name    string
	Role    Role
}

// LoginResult is returned by [Engine.Login]: the serialized credential, its
// expiry, and the profile fields the client displays.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Profile   Principal
}

// AccountProvider resolves a subject to the current account snapshot. The
// engine treats it as a bounded, read-only lookup; implementations against
// remote stores must apply their own short timeout.
type AccountProvider interface {
	FindBySubject(ctx context.Context, subject string) (Account, error)
}

// AccountManager covers the account-management writes that sit next to, but
// outside, the per-request authentication path.
type AccountManager interface {
	AccountProvider
	UpdatePasswordHash(ctx context.Context, subject, newHash string) error
	// BumpRevocationEpoch increments the account's epoch by exactly one,
	// invalidating every outstanding credential for the subject.
	BumpRevocationEpoch(ctx context.Context, subject string) error
	SetActive(ctx context.Context, subject string, active bool) error
}
