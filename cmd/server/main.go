package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	web "curriculum/internal/adapters/http"
	"curriculum/internal/adapters/http/middleware"
	"curriculum/internal/adapters/http/perf"
	"curriculum/internal/app"
	"curriculum/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if !cfg.Production() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Performance instrumentation: one collector for queries and requests
	collector := perf.NewCollector(perf.DefaultRingSize)

	a, err := app.Open(app.Options{
		DBPath:       cfg.DBPath,
		CatalogPath:  cfg.CatalogPath,
		UnlockMode:   cfg.UnlockMode,
		RejectCycles: cfg.RejectCycles,
		SlowQuery:    cfg.SlowQuery,
		Collector:    collector,
	})
	if err != nil {
		log.Fatalf("failed to initialise curriculum: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := web.NewMux(ctx, &web.Services{
		Catalog:            a.Catalog,
		Ledger:             a.Ledger,
		Engine:             a.Engine,
		Store:              a.Store,
		Activity:           a.Activity,
		ProgramTitle:       a.Program.Title,
		ProgramDescription: a.Program.Description,
	}, web.Options{
		Collector: collector,
		CSRF: middleware.CSRFOptions{
			AuthKey: csrfKey(cfg),
			Secure:  cfg.Production(),
		},
		RateLimit:   cfg.RateLimit,
		SlowRequest: cfg.SlowRequest,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err.Error())
		}
	}()

	log.Printf("Curriculum %s starting on %s (env=%s, mode=%s, courses=%d)",
		version, cfg.Addr, cfg.Env, cfg.UnlockMode, len(a.Program.Courses))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

// csrfKey returns the configured key, or a random one outside production.
// Config loading already refuses production without a key.
func csrfKey(cfg config.Config) []byte {
	if len(cfg.CSRFKey) > 0 {
		return cfg.CSRFKey
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (form tokens won't survive restart). Set CURRICULUM_CSRF_KEY for production.")
	return key
}
