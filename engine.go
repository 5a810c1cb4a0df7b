package padron

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/padronhq/padron/internal/flows"
	"github.com/padronhq/padron/internal/rate"
	"github.com/padronhq/padron/maintenance"
	"github.com/padronhq/padron/password"
	"github.com/padronhq/padron/token"
)

// Engine is the authentication core: credential issuance at login, per-request
// credential verification, and the account-management writes that invalidate
// outstanding credentials. Construct it with [New] and [Builder.Build]; all
// methods are safe for concurrent use.
type Engine struct {
	config       Config
	tokenManager *token.Manager
	accounts     AccountProvider
	accountMgr   AccountManager
	flag         *maintenance.Source
	rateLimiter  *rate.Limiter
	hasher       *password.Hasher
	audit        *auditDispatcher
	metrics      *Metrics
	now          func() time.Time
	closed       atomic.Bool
}

// Authenticate verifies a serialized bearer credential against the current
// account state and returns the request principal. Checks run in a fixed
// order: signature and structure, account lookup, active flag, maintenance
// gate, revocation epoch equality, strict expiry.
//
// Every failure except [ErrMaintenanceActive] is soft: the caller treats the
// request as unauthenticated and lets per-resource authorization decide.
// ErrMaintenanceActive is fatal and must terminate the request.
func (e *Engine) Authenticate(ctx context.Context, tokenStr string) (*Principal, error) {
	if e == nil || e.closed.Load() {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	ip := clientIPFromContext(ctx)

	result := flows.RunAuthenticate(ctx, tokenStr, flows.AuthenticateDeps{
		Parse:         e.tokenManager.Parse,
		FindAccount:   e.findSnapshot,
		MaintenanceOn: e.flag.Active,
		Now:           e.now,
	})

	e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))

	if result.Failure != flows.FailureNone {
		err := e.classifyAuthnFailure(result)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: e.now(),
			EventType: "authenticate",
			Subject:   subjectOf(result),
			IP:        ip,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, err
	}

	if result.MaintenanceBypassed {
		e.metrics.Inc(MetricMaintenanceBypassed)
	}
	e.metrics.Inc(MetricAuthnSuccess)

	return &Principal{
		Subject: result.Account.Subject,
		Name:    result.Account.Name,
		Role:    Role(result.Account.Role),
	}, nil
}

// Login verifies the username/password pair and issues a credential carrying
// the account's current revocation epoch. The client IP, when attached via
// [WithClientIP], participates in throttling and audit records.
func (e *Engine) Login(ctx context.Context, username, pass string) (*LoginResult, error) {
	if e == nil || e.closed.Load() {
		return nil, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)

	deps := flows.LoginDeps{
		FindAccount:    e.findSnapshot,
		VerifyPassword: e.verifyHash,
		Issue:          e.tokenManager.Issue,
		Lifetime:       e.config.Token.Lifetime,
		Now:            e.now,
	}
	if e.rateLimiter != nil {
		deps.CheckRate = func(ctx context.Context, username, ip string) error {
			err := e.rateLimiter.Check(ctx, username, ip)
			if err != nil && !errors.Is(err, rate.ErrRateLimited) {
				// Redis outage must not lock every account out.
				return nil
			}
			return err
		}
		deps.RecordFailure = e.rateLimiter.RecordFailure
		deps.ResetRate = e.rateLimiter.Reset
	}

	result := flows.RunLogin(ctx, username, pass, ip, deps)

	if result.Failure != flows.LoginFailureNone {
		err := e.classifyLoginFailure(result)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: e.now(),
			EventType: "login",
			Subject:   username,
			IP:        ip,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "login",
		Subject:   result.Account.Subject,
		IP:        ip,
		Success:   true,
	})

	return &LoginResult{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Profile: Principal{
			Subject: result.Account.Subject,
			Name:    result.Account.Name,
			Role:    Role(result.Account.Role),
		},
	}, nil
}

// ChangePassword verifies the current password, rejects reuse, stores the new
// hash and advances the revocation epoch so every outstanding credential for
// the subject dies with the old password.
func (e *Engine) ChangePassword(ctx context.Context, subject, oldPass, newPass string) error {
	if e == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	if e.accountMgr == nil {
		return errors.New("account manager not configured")
	}

	account, err := e.accountMgr.FindBySubject(ctx, subject)
	if err != nil {
		return err
	}

	ok, err := e.hasher.Verify(oldPass, account.PasswordHash)
	if err != nil || !ok {
		e.metrics.Inc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: e.now(),
			EventType: "password_change",
			Subject:   subject,
			IP:        clientIPFromContext(ctx),
			Success:   false,
			Error:     ErrInvalidCredentials.Error(),
		})
		return ErrInvalidCredentials
	}

	if same, err := e.hasher.Verify(newPass, account.PasswordHash); err == nil && same {
		return ErrPasswordReuse
	}

	newHash, err := e.hasher.Hash(newPass)
	if err != nil {
		return err
	}
	if err := e.accountMgr.UpdatePasswordHash(ctx, subject, newHash); err != nil {
		return err
	}
	if err := e.bumpEpoch(ctx, subject, account.RevocationEpoch); err != nil {
		return err
	}

	if e.rateLimiter != nil {
		_ = e.rateLimiter.Reset(ctx, subject, clientIPFromContext(ctx))
	}

	e.metrics.Inc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "password_change",
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})

	return nil
}

// ForceLogout advances the subject's revocation epoch, invalidating every
// credential issued before this call. The account itself stays usable: the
// next login embeds the new epoch.
func (e *Engine) ForceLogout(ctx context.Context, subject string) error {
	if e == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	if e.accountMgr == nil {
		return errors.New("account manager not configured")
	}

	account, err := e.accountMgr.FindBySubject(ctx, subject)
	if err != nil {
		return err
	}
	if err := e.bumpEpoch(ctx, subject, account.RevocationEpoch); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "force_logout",
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})

	return nil
}

// DeactivateAccount marks the account inactive and advances its epoch. Both
// writes matter: the inactive flag rejects fresh lookups, the epoch bump kills
// credentials already in flight.
func (e *Engine) DeactivateAccount(ctx context.Context, subject string) error {
	if e == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	if e.accountMgr == nil {
		return errors.New("account manager not configured")
	}

	account, err := e.accountMgr.FindBySubject(ctx, subject)
	if err != nil {
		return err
	}
	if err := e.accountMgr.SetActive(ctx, subject, false); err != nil {
		return err
	}
	if err := e.bumpEpoch(ctx, subject, account.RevocationEpoch); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "account_deactivated",
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})

	return nil
}

// ReactivateAccount clears the inactive flag. The epoch is left alone: old
// credentials stay dead, and the account holder logs in again normally.
func (e *Engine) ReactivateAccount(ctx context.Context, subject string) error {
	if e == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	if e.accountMgr == nil {
		return errors.New("account manager not configured")
	}
	return e.accountMgr.SetActive(ctx, subject, true)
}

// HashPassword derives a storable hash for account provisioning.
func (e *Engine) HashPassword(pass string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.hasher.Hash(pass)
}

// MaintenanceActive reports the cached maintenance flag.
func (e *Engine) MaintenanceActive(ctx context.Context) bool {
	if e == nil {
		return false
	}
	return e.flag.Active(ctx)
}

// MaintenanceMessage returns the fixed body of the maintenance rejection.
func (e *Engine) MaintenanceMessage() string {
	if e == nil {
		return ""
	}
	return e.config.Maintenance.Message
}

// PublicPaths returns the configured authentication-exempt paths.
func (e *Engine) PublicPaths() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.config.PublicPaths...)
}

// MetricsSnapshot returns a deep copy of all counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports events lost to a full audit buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes the audit dispatcher and marks the engine unusable.
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.audit.Close()
}

// findSnapshot bounds the account lookup with the configured timeout and
// normalizes "not found" into the (snapshot, found, err) shape the flows
// expect.
func (e *Engine) findSnapshot(ctx context.Context, subject string) (flows.AccountSnapshot, bool, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, e.config.Security.LookupTimeout)
	defer cancel()

	account, err := e.accounts.FindBySubject(lookupCtx, subject)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return flows.AccountSnapshot{}, false, nil
		}
		return flows.AccountSnapshot{}, false, err
	}

	return flows.AccountSnapshot{
		Subject:      account.Subject,
		Name:         account.Name,
		Role:         uint8(account.Role),
		RoleExempt:   account.Role.ExemptFromMaintenance(),
		Active:       account.Active,
		Epoch:        account.RevocationEpoch,
		PasswordHash: account.PasswordHash,
	}, true, nil
}

func (e *Engine) verifyHash(hash, pass string) (bool, error) {
	return e.hasher.Verify(pass, hash)
}

// bumpEpoch increments the revocation epoch and verifies the store really
// advanced it by one; a write that silently no-ops would leave revoked
// credentials alive.
func (e *Engine) bumpEpoch(ctx context.Context, subject string, before uint32) error {
	if err := e.accountMgr.BumpRevocationEpoch(ctx, subject); err != nil {
		return err
	}

	after, err := e.accountMgr.FindBySubject(ctx, subject)
	if err != nil {
		return err
	}
	if after.RevocationEpoch != before+1 {
		return ErrEpochNotAdvanced
	}

	e.metrics.Inc(MetricEpochBumped)

	return nil
}

func (e *Engine) classifyAuthnFailure(result flows.AuthenticateResult) error {
	switch result.Failure {
	case flows.FailureMalformed:
		e.metrics.Inc(MetricAuthnMalformed)
		return ErrCredentialMalformed
	case flows.FailureAccountNotFound:
		e.metrics.Inc(MetricAuthnAccountNotFound)
		return ErrAccountNotFound
	case flows.FailureInactive:
		e.metrics.Inc(MetricAuthnInactive)
		return ErrAccountInactive
	case flows.FailureMaintenance:
		e.metrics.Inc(MetricMaintenanceBlocked)
		return ErrMaintenanceActive
	case flows.FailureEpochMismatch:
		e.metrics.Inc(MetricAuthnEpochMismatch)
		return ErrEpochMismatch
	case flows.FailureExpired:
		e.metrics.Inc(MetricAuthnExpired)
		return ErrCredentialExpired
	default:
		return ErrCredentialMalformed
	}
}

func (e *Engine) classifyLoginFailure(result flows.LoginResult) error {
	switch result.Failure {
	case flows.LoginFailureRateLimited:
		e.metrics.Inc(MetricLoginRateLimited)
		return ErrLoginRateLimited
	case flows.LoginFailureInactive:
		e.metrics.Inc(MetricLoginFailure)
		return ErrAccountInactive
	case flows.LoginFailureInvalidCredentials:
		e.metrics.Inc(MetricLoginFailure)
		return ErrInvalidCredentials
	default:
		e.metrics.Inc(MetricLoginFailure)
		if result.Err != nil {
			return result.Err
		}
		return ErrInvalidCredentials
	}
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	e.audit.Emit(ctx, event)
}

func subjectOf(result flows.AuthenticateResult) string {
	if result.Claims != nil {
		return result.Claims.Subject
	}
	if result.Account.Subject != "" {
		return result.Account.Subject
	}
	return ""
}
