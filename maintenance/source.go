package maintenance

import (
	"context"
	"sync"
	"time"
)

// DefaultKey is the configuration name of the maintenance flag.
const DefaultKey = "MODO_MANTENIMIENTO"

// ConfigReader is the external read path for configuration values. The
// fallback is returned when the key is absent.
type ConfigReader interface {
	GetConfig(ctx context.Context, key, fallback string) (string, error)
}

// Options tunes a Source. A zero Key or ReadTimeout selects the defaults
// (DefaultKey, 500ms). CacheTTL zero disables caching entirely: every call
// reads through, so flag changes are visible immediately.
type Options struct {
	Key         string
	CacheTTL    time.Duration
	ReadTimeout time.Duration
	Now         func() time.Time
}

// Source answers "is maintenance mode on" with bounded staleness. A flag
// change propagates to callers within CacheTTL. Safe for concurrent use.
type Source struct {
	reader      ConfigReader
	key         string
	cacheTTL    time.Duration
	readTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	active    bool
	fetchedAt time.Time
	primed    bool
}

// New creates a Source over the given reader.
func New(reader ConfigReader, opts Options) *Source {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.CacheTTL < 0 {
		opts.CacheTTL = 0
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 500 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Source{
		reader:      reader,
		key:         opts.Key,
		cacheTTL:    opts.CacheTTL,
		readTimeout: opts.ReadTimeout,
		now:         opts.Now,
	}
}

// Active reports whether the maintenance flag is currently set. The flag is
// true only when the stored value is exactly "true"; absent or unparseable
// values are false. Read failures keep the last known value so a flaky
// configuration store cannot lock every request out.
func (s *Source) Active(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.primed && now.Sub(s.fetchedAt) < s.cacheTTL {
		return s.active
	}

	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	value, err := s.reader.GetConfig(readCtx, s.key, "false")
	if err != nil {
		// Stale beats blocked: retain the previous answer and retry on the
		// next request past the window.
		s.fetchedAt = now
		return s.active
	}

	s.active = value == "true"
	s.fetchedAt = now
	s.primed = true

	return s.active
}

// Key returns the configuration name this source watches.
func (s *Source) Key() string {
	return s.key
}
