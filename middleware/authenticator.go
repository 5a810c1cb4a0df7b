package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/padronhq/padron"
)

// Authenticate returns middleware running the per-request credential checks.
//
// Requests to public paths skip authentication entirely. Requests without a
// bearer credential, or with a credential that fails any soft check, continue
// unauthenticated: no principal is attached and per-resource authorization is
// expected to reject them. The one fatal outcome is the maintenance gate,
// answered with 503 and the configured message.
func Authenticate(engine *padron.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			if isPublicPath(r.URL.Path, engine.PublicPaths()) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, padron.ErrMaintenanceActive) {
					writeJSONError(w, http.StatusServiceUnavailable, engine.MaintenanceMessage())
					return
				}
				// Soft failure: drop the credential, keep the request.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(padron.WithPrincipal(r.Context(), principal)))
		})
	}
}

// ClientIP returns middleware that resolves the caller address and attaches it
// to the request context for login throttling and audit records. The
// rightmost X-Forwarded-For hop wins when trustProxy is set; otherwise the
// TCP peer address is used as-is.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r, trustProxy)
			next.ServeHTTP(w, r.WithContext(padron.WithClientIP(r.Context(), ip)))
		})
	}
}

// isPublicPath matches path against the exemption list: entries ending in "/"
// match by prefix, everything else matches exactly.
func isPublicPath(path string, public []string) bool {
	for _, entry := range public {
		if strings.HasSuffix(entry, "/") {
			if strings.HasPrefix(path, entry) {
				return true
			}
			continue
		}
		if path == entry {
			return true
		}
	}
	return false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			parts := strings.Split(fwd, ",")
			return strings.TrimSpace(parts[len(parts)-1])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
