package padron

import "context"

type principalContextKey struct{}
type clientIPContextKey struct{}

// WithPrincipal attaches an authenticated principal to ctx. The middleware
// calls this once per successfully authenticated request; the value is
// discarded with the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any. A false
// result means the request reached the handler unauthenticated and must be
// rejected by per-resource authorization, not trusted.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok
}

// WithClientIP attaches the caller's IP address to ctx. The engine uses it
// for login throttling and audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
