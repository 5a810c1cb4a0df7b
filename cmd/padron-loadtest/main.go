// Command padron-loadtest measures engine throughput: a login phase that
// issues credentials and an authenticate phase that validates them under
// concurrency. It runs self-contained against in-memory accounts and
// miniredis unless a real redis address is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/padronhq/padron"
	"github.com/redis/go-redis/v9"
)

type memoryAccounts struct {
	mu       sync.RWMutex
	accounts map[string]padron.Account
}

func (m *memoryAccounts) FindBySubject(_ context.Context, subject string) (padron.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[subject]
	if !ok {
		return padron.Account{}, padron.ErrAccountNotFound
	}
	return a, nil
}

type staticFlag struct{}

func (staticFlag) GetConfig(_ context.Context, _ string, fallback string) (string, error) {
	return fallback, nil
}

func main() {
	var (
		accounts    = flag.Int("accounts", 1000, "number of staff accounts to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations in the authenticate phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := padron.DefaultConfig()
	cfg.Token.PrivateKey = []byte("loadtest-secret-0123456789abcdef")
	cfg.Maintenance.CacheTTL = 5 * time.Second
	cfg.Password = padron.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	cfg.Security.MaxLoginAttempts = 1 << 30
	cfg.Audit.Enabled = false

	provider := &memoryAccounts{accounts: make(map[string]padron.Account, *accounts)}
	engine, err := padron.New().
		WithConfig(cfg).
		WithAccountProvider(provider).
		WithFlagSource(staticFlag{}).
		WithRedis(client).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	const pass = "loadtest-password"
	hash, err := engine.HashPassword(pass)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	subjects := make([]string, *accounts)
	for i := 0; i < *accounts; i++ {
		subject := fmt.Sprintf("staff-%d", i)
		subjects[i] = subject
		provider.accounts[subject] = padron.Account{
			Subject:      subject,
			Role:         padron.RoleOperator,
			Active:       true,
			PasswordHash: hash,
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	tokens, loginStats := runLoginPhase(ctx, engine, subjects, pass, *concurrency)
	authStats := runAuthenticatePhase(ctx, engine, tokens, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("authenticate", authStats)
}

func runLoginPhase(ctx context.Context, engine *padron.Engine, subjects []string, pass string, concurrency int) ([]string, phaseStats) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, len(subjects))
		tokens    = make([]string, len(subjects))
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(subjects) {
					return
				}
				t0 := time.Now()
				result, err := engine.Login(ctx, subjects[i], pass)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				} else {
					tokens[i] = result.Token
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return tokens, computeStats(time.Since(start), latencies, failures)
}

func runAuthenticatePhase(ctx context.Context, engine *padron.Engine, tokens []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, ops)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				token := tokens[r.Intn(len(tokens))]
				t0 := time.Now()
				_, err := engine.Authenticate(ctx, token)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%-13s ops=%d failures=%d total=%s ops/s=%.0f p50=%s p95=%s p99=%s\n",
		name, s.ops, s.failures, s.total.Round(time.Millisecond), s.opsPerS,
		s.p50.Round(time.Microsecond), s.p95.Round(time.Microsecond), s.p99.Round(time.Microsecond))
}
