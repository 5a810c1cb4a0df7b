// Command padrond is the member-registry backend daemon: it wires the store,
// the authentication engine and the HTTP API, and serves until interrupted.
//
// Configuration comes from the environment (a .env file is loaded when
// present):
//
//	PADRON_ADDR          listen address (default :8080)
//	PADRON_DB_PATH       SQLite path (default ./data/padron.db)
//	PADRON_TOKEN_SECRET  hs256 signing secret (required)
//	PADRON_TOKEN_TTL     credential lifetime (default 12h)
//	PADRON_REDIS_ADDR    redis address for login throttling (optional)
//	PADRON_TRUST_PROXY   honor X-Forwarded-For (default false)
//	PADRON_CORS_ORIGINS  comma-separated allowed origins (default *)
//	PADRON_ROOT_USER     bootstrap super admin subject (optional)
//	PADRON_ROOT_PASS     bootstrap super admin password
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/padronhq/padron"
	"github.com/padronhq/padron/httpapi"
	"github.com/padronhq/padron/metrics/export/prometheus"
	"github.com/padronhq/padron/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[main] .env not loaded: %v", err)
	}

	secret := os.Getenv("PADRON_TOKEN_SECRET")
	if secret == "" {
		log.Fatal("[main] PADRON_TOKEN_SECRET is required")
	}

	st, err := store.Open(envOr("PADRON_DB_PATH", "./data/padron.db"))
	if err != nil {
		log.Fatalf("[main] store: %v", err)
	}
	defer st.Close()
	log.Println("[main] store opened, migrations applied")

	cfg := padron.DefaultConfig()
	cfg.Token.PrivateKey = []byte(secret)
	if ttl := os.Getenv("PADRON_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("[main] invalid PADRON_TOKEN_TTL: %v", err)
		}
		cfg.Token.Lifetime = d
	}
	cfg.Audit.Enabled = true

	builder := padron.New().
		WithConfig(cfg).
		WithAccountManager(st.Staff()).
		WithFlagSource(st.Config()).
		WithAuditSink(padron.NewJSONWriterSink(os.Stdout))

	if addr := os.Getenv("PADRON_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		builder = builder.WithRedis(client)
		log.Printf("[main] login throttling backed by redis at %s", addr)
	} else {
		log.Println("[main] no redis configured, login throttling disabled")
	}

	engine, err := builder.Build()
	if err != nil {
		log.Fatalf("[main] engine: %v", err)
	}
	defer engine.Close()

	if err := bootstrapRoot(engine, st); err != nil {
		log.Fatalf("[main] bootstrap: %v", err)
	}

	api := httpapi.New(engine, st)
	trustProxy := os.Getenv("PADRON_TRUST_PROXY") == "true"

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Routes(trustProxy))
	mux.Handle("GET /metrics", prometheus.NewExporter(engine).Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   splitList(envOr("PADRON_CORS_ORIGINS", "*")),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         envOr("PADRON_ADDR", ":8080"),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("[main] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

// bootstrapRoot creates the initial super admin when the staff table is empty
// and PADRON_ROOT_USER is set, so a fresh deployment is reachable.
func bootstrapRoot(engine *padron.Engine, st *store.Store) error {
	user := os.Getenv("PADRON_ROOT_USER")
	if user == "" {
		return nil
	}
	pass := os.Getenv("PADRON_ROOT_PASS")
	if pass == "" {
		return errors.New("PADRON_ROOT_PASS is required with PADRON_ROOT_USER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	existing, err := st.Staff().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := engine.HashPassword(pass)
	if err != nil {
		return err
	}
	if err := st.Staff().Create(ctx, padron.Account{
		Subject:      user,
		Name:         user,
		Role:         padron.RoleSuperAdmin,
		Active:       true,
		PasswordHash: hash,
	}); err != nil {
		return err
	}

	log.Printf("[main] bootstrapped super admin %q", user)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
