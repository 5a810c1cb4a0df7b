package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/padronhq/padron"
)

type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]padron.Account
}

func (m *memoryAccounts) FindBySubject(_ context.Context, subject string) (padron.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[subject]
	if !ok {
		return padron.Account{}, padron.ErrAccountNotFound
	}
	return a, nil
}

type memoryFlag struct {
	mu    sync.Mutex
	value string
}

func (f *memoryFlag) GetConfig(_ context.Context, _ string, fallback string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.value == "" {
		return fallback, nil
	}
	return f.value, nil
}

func (f *memoryFlag) set(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
}

type fixture struct {
	engine   *padron.Engine
	accounts *memoryAccounts
	flag     *memoryFlag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := padron.DefaultConfig()
	cfg.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Maintenance.CacheTTL = 0
	cfg.Password = padron.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	cfg.Audit.Enabled = false

	accounts := &memoryAccounts{accounts: make(map[string]padron.Account)}
	flag := &memoryFlag{}

	engine, err := padron.New().
		WithConfig(cfg).
		WithAccountProvider(accounts).
		WithFlagSource(flag).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &fixture{engine: engine, accounts: accounts, flag: flag}
}

func (f *fixture) seedAndLogin(t *testing.T, subject string, role padron.Role) string {
	t.Helper()

	const pass = "una-clave-larga"
	hash, err := f.engine.HashPassword(pass)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	f.accounts.mu.Lock()
	f.accounts.accounts[subject] = padron.Account{
		Subject:      subject,
		Name:         "Cuenta " + subject,
		Role:         role,
		Active:       true,
		PasswordHash: hash,
	}
	f.accounts.mu.Unlock()

	result, err := f.engine.Login(context.Background(), subject, pass)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return result.Token
}

// echoPrincipal reports whether a principal reached the handler.
func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := padron.PrincipalFromContext(r.Context()); ok {
			w.Write([]byte("principal:" + p.Subject))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func serve(t *testing.T, handler http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	f := newFixture(t)
	token := f.seedAndLogin(t, "ana", padron.RoleAdmin)
	handler := Authenticate(f.engine)(echoPrincipal())

	rec := serve(t, handler, "/api/socios", "Bearer "+token)
	if rec.Code != http.StatusOK || rec.Body.String() != "principal:ana" {
		t.Fatalf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestAuthenticateFailsOpen(t *testing.T) {
	f := newFixture(t)
	handler := Authenticate(f.engine)(echoPrincipal())

	cases := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage credential", "Bearer not.a.credential"},
	}

	for _, tc := range cases {
		rec := serve(t, handler, "/api/socios", tc.authorization)
		if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
			t.Fatalf("%s: status %d body %q, want anonymous pass-through", tc.name, rec.Code, rec.Body.String())
		}
	}
}

func TestMaintenanceRejectsWith503(t *testing.T) {
	f := newFixture(t)
	adminToken := f.seedAndLogin(t, "ana", padron.RoleAdmin)
	rootToken := f.seedAndLogin(t, "root", padron.RoleSuperAdmin)
	handler := Authenticate(f.engine)(echoPrincipal())

	f.flag.set("true")

	rec := serve(t, handler, "/api/socios", "Bearer "+adminToken)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "sistema en mantenimiento" {
		t.Fatalf("body = %v", body)
	}

	// Super admin keeps working through the gate.
	rec = serve(t, handler, "/api/socios", "Bearer "+rootToken)
	if rec.Code != http.StatusOK || rec.Body.String() != "principal:root" {
		t.Fatalf("super admin: status %d body %q", rec.Code, rec.Body.String())
	}

	// Credential-less requests are not gated here; their handlers decide.
	rec = serve(t, handler, "/api/socios", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("anonymous: status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestPublicPathsSkipAuthentication(t *testing.T) {
	f := newFixture(t)
	handler := Authenticate(f.engine)(echoPrincipal())

	cases := []struct {
		path string
		want bool
	}{
		{"/api/auth/login", true},
		{"/api/config", true},
		{"/docs/", true},
		{"/docs/openapi.json", true},
		{"/api/auth/login/extra", false},
		{"/api/socios", false},
		{"/docsx", false},
	}

	for _, tc := range cases {
		// A garbage credential distinguishes skip from fail-open: on a public
		// path it is never inspected.
		rec := serve(t, handler, tc.path, "Bearer not.a.credential")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.path, rec.Code)
		}
		// Both outcomes land anonymous here; the assertion that matters is
		// the match table itself.
		if got := isPublicPath(tc.path, f.engine.PublicPaths()); got != tc.want {
			t.Fatalf("isPublicPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestRevokedCredentialIsSoftlyDropped(t *testing.T) {
	f := newFixture(t)
	token := f.seedAndLogin(t, "ana", padron.RoleAdmin)
	handler := Authenticate(f.engine)(echoPrincipal())

	// Simulate an epoch bump by rewriting the stored account.
	f.accounts.mu.Lock()
	a := f.accounts.accounts["ana"]
	a.RevocationEpoch++
	f.accounts.accounts["ana"] = a
	f.accounts.mu.Unlock()

	rec := serve(t, handler, "/api/socios", "Bearer "+token)
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("status %d body %q, want anonymous pass-through", rec.Code, rec.Body.String())
	}
}

func TestRequireRejectsAnonymous(t *testing.T) {
	f := newFixture(t)
	token := f.seedAndLogin(t, "ana", padron.RoleOperator)
	handler := Authenticate(f.engine)(Require(echoPrincipal()))

	rec := serve(t, handler, "/api/socios", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = serve(t, handler, "/api/socios", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleOrdering(t *testing.T) {
	f := newFixture(t)
	operatorToken := f.seedAndLogin(t, "op", padron.RoleOperator)
	adminToken := f.seedAndLogin(t, "ana", padron.RoleAdmin)
	handler := Authenticate(f.engine)(RequireRole(padron.RoleAdmin)(echoPrincipal()))

	rec := serve(t, handler, "/api/socios", "Bearer "+operatorToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("operator status = %d, want 403", rec.Code)
	}

	rec = serve(t, handler, "/api/socios", "Bearer "+adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}

	rec = serve(t, handler, "/api/socios", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestClientIPResolution(t *testing.T) {
	cases := []struct {
		name       string
		trustProxy bool
		forwarded  string
		remote     string
		want       string
	}{
		{"direct", false, "", "10.0.0.7:4312", "10.0.0.7"},
		{"proxy ignored", false, "1.2.3.4", "10.0.0.7:4312", "10.0.0.7"},
		{"proxy trusted", true, "1.2.3.4", "10.0.0.7:4312", "1.2.3.4"},
		{"rightmost hop", true, "9.9.9.9, 1.2.3.4", "10.0.0.7:4312", "1.2.3.4"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		if tc.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tc.forwarded)
		}
		if got := remoteIP(req, tc.trustProxy); got != tc.want {
			t.Fatalf("%s: remoteIP = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestBearerTokenParsing(t *testing.T) {
	cases := []struct {
		value string
		token string
		ok    bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"", "", false},
		{"Basic abc", "", false},
	}

	for _, tc := range cases {
		token, ok := bearerToken(tc.value)
		if token != tc.token || ok != tc.ok {
			t.Fatalf("bearerToken(%q) = %q,%v want %q,%v", tc.value, token, ok, tc.token, tc.ok)
		}
	}
}
