package padron

import (
	"errors"
	"time"

	"github.com/padronhq/padron/internal/rate"
	"github.com/padronhq/padron/maintenance"
	"github.com/padronhq/padron/password"
	"github.com/padronhq/padron/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A builder is single-use: Build succeeds at
// most once.
type Builder struct {
	config Config
	redis  *redis.Client

	accounts   AccountProvider
	accountMgr AccountManager
	flagSource maintenance.ConfigReader
	auditSink  AuditSink
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		now:    time.Now,
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAccountProvider sets the account lookup collaborator. Required.
func (b *Builder) WithAccountProvider(p AccountProvider) *Builder {
	b.accounts = p
	return b
}

// WithAccountManager sets the optional account-management collaborator. When
// present it is also used as the account provider, and the engine exposes
// password change, forced logout and deactivation operations.
func (b *Builder) WithAccountManager(m AccountManager) *Builder {
	b.accountMgr = m
	return b
}

// WithFlagSource sets the configuration read path for the maintenance flag.
// Required.
func (b *Builder) WithFlagSource(r maintenance.ConfigReader) *Builder {
	b.flagSource = r
	return b
}

// WithRedis enables login throttling backed by the given client. Without a
// client the engine runs with throttling disabled.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the engine clock. Issuance and verification share this
// clock; tests use it to pin the expiry boundary.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	if now != nil {
		b.now = now
	}
	return b
}

// Build validates the configuration, wires every collaborator, and returns
// the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	accounts := b.accounts
	if b.accountMgr != nil && accounts == nil {
		accounts = b.accountMgr
	}
	if accounts == nil {
		return nil, errors.New("account provider required")
	}
	if b.flagSource == nil {
		return nil, errors.New("maintenance flag source required")
	}

	tm, err := token.NewManager(token.Config{
		Lifetime:      cfg.Token.Lifetime,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		tokenManager: tm,
		accounts:     accounts,
		accountMgr:   b.accountMgr,
		hasher:       hasher,
		now:          b.now,
	}

	engine.flag = maintenance.New(b.flagSource, maintenance.Options{
		Key:         cfg.Maintenance.Key,
		CacheTTL:    cfg.Maintenance.CacheTTL,
		ReadTimeout: cfg.Maintenance.ReadTimeout,
		Now:         b.now,
	})

	if b.redis != nil && cfg.Security.MaxLoginAttempts > 0 {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: cfg.Security.EnableIPThrottle,
			MaxAttempts:      cfg.Security.MaxLoginAttempts,
			Cooldown:         cfg.Security.LoginCooldownDuration,
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
