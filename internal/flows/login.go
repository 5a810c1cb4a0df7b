package flows

import (
	"context"
	"time"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureInvalidCredentials
	LoginFailureInactive
	LoginFailureInternal
)

// LoginDeps captures the collaborators of the issuance flow. Rate functions
// may be nil when throttling is disabled.
type LoginDeps struct {
	CheckRate      func(ctx context.Context, username, ip string) error
	RecordFailure  func(ctx context.Context, username, ip string) error
	ResetRate      func(ctx context.Context, username, ip string) error
	FindAccount    func(ctx context.Context, subject string) (AccountSnapshot, bool, error)
	VerifyPassword func(hash, password string) (bool, error)
	Issue          func(subject string, epoch uint32, now time.Time) (string, error)
	Lifetime       time.Duration
	Now            func() time.Time
}

// LoginResult carries the issued credential or a classified failure.
type LoginResult struct {
	Failure   LoginFailureKind
	Err       error
	Token     string
	ExpiresAt time.Time
	Account   AccountSnapshot
}

// RunLogin verifies the password and issues a credential embedding the
// account's current revocation epoch. Failed attempts are recorded against
// the throttle before the caller learns whether the account exists, so the
// rate budget cannot be used to enumerate subjects.
func RunLogin(ctx context.Context, username, password, ip string, deps LoginDeps) LoginResult {
	if deps.CheckRate != nil {
		if err := deps.CheckRate(ctx, username, ip); err != nil {
			return LoginResult{Failure: LoginFailureRateLimited, Err: err}
		}
	}

	account, found, err := deps.FindAccount(ctx, username)
	if err != nil {
		return LoginResult{Failure: LoginFailureInternal, Err: err}
	}
	if !found {
		recordLoginFailure(ctx, username, ip, deps)
		return LoginResult{Failure: LoginFailureInvalidCredentials}
	}
	if !account.Active {
		recordLoginFailure(ctx, username, ip, deps)
		return LoginResult{Failure: LoginFailureInactive}
	}

	ok, err := deps.VerifyPassword(account.PasswordHash, password)
	if err != nil {
		return LoginResult{Failure: LoginFailureInternal, Err: err}
	}
	if !ok {
		recordLoginFailure(ctx, username, ip, deps)
		return LoginResult{Failure: LoginFailureInvalidCredentials}
	}

	if deps.ResetRate != nil {
		_ = deps.ResetRate(ctx, username, ip)
	}

	now := deps.Now()
	tok, err := deps.Issue(account.Subject, account.Epoch, now)
	if err != nil {
		return LoginResult{Failure: LoginFailureInternal, Err: err}
	}

	return LoginResult{
		Token:     tok,
		ExpiresAt: now.Add(deps.Lifetime),
		Account:   account,
	}
}

func recordLoginFailure(ctx context.Context, username, ip string, deps LoginDeps) {
	if deps.RecordFailure != nil {
		_ = deps.RecordFailure(ctx, username, ip)
	}
}
