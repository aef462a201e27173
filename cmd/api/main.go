package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/catalog"
	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	loadEnvFiles()
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		source catalog.Source
		repo   catalog.Repository
	)
	switch cfg.Source {
	case "postgres":
		dbPool := mustOpenDB(ctx, cfg.DatabaseDSN)
		defer dbPool.Close()
		bookRepository := store.NewBookPG(dbPool)
		source, repo = bookRepository, bookRepository
	case "file":
		source = store.NewBookFile(cfg.BooksFile)
	default:
		log.Fatalf("unknown BOOKS_SOURCE %q (want file or postgres)", cfg.Source)
	}

	var covers catalog.CoverFinder
	if cfg.CoverLookup {
		covers = openlibrary.NewClient("bookshelf/1.0", 1, 2)
	}

	svc, err := catalog.LoadService(ctx, source, repo, covers)
	if err != nil {
		log.Fatalf("cannot seed catalog: %v", err)
	}
	log.Printf("catalog seeded: source=%s books=%d", cfg.Source, len(svc.List(ctx, catalog.Query{})))

	router := http.NewServeMux()
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("GET /metrics", promhttp.Handler())
	catalog.NewHTTPHandler(svc).Register(router)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := httpx.Chain(httpx.MetricsMiddleware(router),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware,
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on %s", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}
