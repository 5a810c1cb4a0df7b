// Package middleware adapts the padron engine to net/http.
//
// # Handlers
//
//   - [Authenticate] — per-request credential verification with fail-open
//     semantics and the maintenance gate.
//   - [Require] — rejects unauthenticated requests with 401.
//   - [RequireRole] — rejects requests below a minimum role with 403.
//   - [ClientIP] — resolves the caller address for throttling and audit.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself: all decisions are delegated to
// Engine.Authenticate, and the only outcome it acts on directly is the
// maintenance rejection.
package middleware
