package padron

import (
	"errors"
	"strings"
	"time"
)

// Config is the engine configuration. Construct it with [DefaultConfig] and
// override fields before [Builder.Build]; the engine clones it and treats it
// as immutable afterwards.
type Config struct {
	Token       TokenConfig
	Maintenance MaintenanceConfig
	Security    SecurityConfig
	Password    PasswordConfig
	Audit       AuditConfig
	Metrics     MetricsConfig

	// PublicPaths are request paths exempt from authentication. Entries
	// ending in "/" match by prefix, everything else matches exactly. The
	// set is configuration so operators can extend it without touching the
	// authenticator.
	PublicPaths []string
}

// TokenConfig configures the credential codec.
type TokenConfig struct {
	Lifetime      time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// MaintenanceConfig configures the maintenance gate.
type MaintenanceConfig struct {
	// Key is the configuration name read from the flag source.
	Key string
	// CacheTTL bounds flag staleness: a flag change propagates to the
	// authenticator within this window.
	CacheTTL time.Duration
	// ReadTimeout caps a single flag-source read. A timed-out read is
	// treated as "flag unchanged" rather than blocking the request.
	ReadTimeout time.Duration
	// Message is the fixed human-readable body of the 503 rejection.
	Message string
}

// SecurityConfig tunes login throttling and lookup bounds.
type SecurityConfig struct {
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
	// LookupTimeout caps the per-request account lookup.
	LookupTimeout time.Duration
}

// PasswordConfig carries argon2id parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: hs256 credentials with a
// 12 hour lifetime, a 5 second maintenance staleness bound, and login
// throttling enabled. Signing key material must still be supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Lifetime:      12 * time.Hour,
			SigningMethod: "hs256",
			Issuer:        "padron",
		},
		Maintenance: MaintenanceConfig{
			Key:         "MODO_MANTENIMIENTO",
			CacheTTL:    5 * time.Second,
			ReadTimeout: 500 * time.Millisecond,
			Message:     "sistema en mantenimiento",
		},
		Security: SecurityConfig{
			EnableIPThrottle:      true,
			MaxLoginAttempts:      10,
			LoginCooldownDuration: 15 * time.Minute,
			LookupTimeout:         2 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		PublicPaths: []string{
			"/api/auth/login",
			"/api/system/reset",
			"/api/padron/reset",
			"/api/config",
			"/docs/",
		},
	}
}

// Validate checks internal consistency before Build wires dependencies.
func (c *Config) Validate() error {
	if c.Token.Lifetime <= 0 {
		return errors.New("Token.Lifetime must be positive")
	}
	switch c.Token.SigningMethod {
	case "hs256", "ed25519":
	default:
		return errors.New("Token.SigningMethod must be hs256 or ed25519")
	}
	if c.Maintenance.Key == "" {
		return errors.New("Maintenance.Key must be set")
	}
	if c.Maintenance.CacheTTL < 0 || c.Maintenance.CacheTTL > time.Minute {
		return errors.New("Maintenance.CacheTTL out of range")
	}
	if c.Maintenance.ReadTimeout <= 0 {
		return errors.New("Maintenance.ReadTimeout must be positive")
	}
	if c.Maintenance.Message == "" {
		return errors.New("Maintenance.Message must be set")
	}
	if c.Security.MaxLoginAttempts < 0 {
		return errors.New("Security.MaxLoginAttempts must not be negative")
	}
	if c.Security.LookupTimeout <= 0 {
		return errors.New("Security.LookupTimeout must be positive")
	}
	for _, p := range c.PublicPaths {
		if !strings.HasPrefix(p, "/") {
			return errors.New("PublicPaths entries must start with /")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	out.PublicPaths = append([]string(nil), cfg.PublicPaths...)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
