// Package padron is the authentication core of the member-registry backend:
// staff login with credential issuance, per-request credential verification,
// revocation-epoch invalidation, and the maintenance gate.
//
// Credentials are signed bearer tokens carrying the subject and the account's
// revocation epoch at issuance. Verification re-reads the account on every
// request, so an epoch bump or a deactivation takes effect on the very next
// request without any session store.
//
// Authentication failures are soft by design: a malformed, expired or revoked
// credential leaves the request unauthenticated and lets per-resource
// authorization reject it. The single fatal outcome is the maintenance gate,
// which terminates non-exempt requests with a service-unavailable response.
//
// Typical wiring:
//
//	engine, err := padron.New().
//		WithConfig(cfg).
//		WithAccountManager(store.Staff()).
//		WithFlagSource(store.Config()).
//		WithRedis(redisClient).
//		Build()
package padron
