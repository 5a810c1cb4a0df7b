package test

import (
	"context"
	"net/http"
	"testing"

	"github.com/padronhq/padron"
	"github.com/padronhq/padron/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = padron.New

	var _ *padron.Engine
	var _ padron.Config
	var _ padron.Account
	var _ padron.Principal
	var _ padron.LoginResult
	var _ padron.AccountProvider
	var _ padron.AccountManager
	var _ padron.AuditSink
	var _ padron.Role

	var _ error = padron.ErrCredentialMalformed
	var _ error = padron.ErrCredentialExpired
	var _ error = padron.ErrEpochMismatch
	var _ error = padron.ErrAccountNotFound
	var _ error = padron.ErrAccountInactive
	var _ error = padron.ErrMaintenanceActive
	var _ error = padron.ErrInvalidCredentials
	var _ error = padron.ErrLoginRateLimited

	var _ func(*padron.Engine) func(http.Handler) http.Handler = middleware.Authenticate
	var _ func(http.Handler) http.Handler = middleware.Require
	var _ func(padron.Role) func(http.Handler) http.Handler = middleware.RequireRole

	var _ func(*padron.Engine, context.Context, string, string) (*padron.LoginResult, error) = (*padron.Engine).Login
	var _ func(*padron.Engine, context.Context, string) (*padron.Principal, error) = (*padron.Engine).Authenticate
	var _ func(*padron.Engine, context.Context, string) error = (*padron.Engine).ForceLogout
}
