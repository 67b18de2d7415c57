package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/offerguard/internal/application"
	appsub "github.com/bryanwahyu/offerguard/internal/application/submission"
	"github.com/bryanwahyu/offerguard/internal/config"
	"github.com/bryanwahyu/offerguard/internal/domain/attempts"
	"github.com/bryanwahyu/offerguard/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/offerguard/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/offerguard/internal/infra/db/postgres"
	"github.com/bryanwahyu/offerguard/internal/infra/httpserver"
	"github.com/bryanwahyu/offerguard/internal/infra/scoring"
	minioStore "github.com/bryanwahyu/offerguard/internal/infra/storage"
	"github.com/bryanwahyu/offerguard/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}

	svc := &appsub.Service{
		Scorer:   scoring.New(cfg.Scoring.BaseURL, cfg.Scoring.UserAgent, cfg.Scoring.Timeout),
		Attempts: attempts.Discard{},
		Clock:    application.SystemClock{},
	}

	// attempt log
	if cfg.Database.Driver != "" {
		db, repo, err := openAttemptLog(ctx, cfg)
		if err != nil {
			log.Fatalf("%s connect error: %v", cfg.Database.Driver, err)
		}
		defer db.Close()
		svc.Attempts = repo
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Archive = store
		checkers["storage"] = store
	}

	if cfg.AI.Enabled {
		svc.Explainer = openai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	}

	log.Printf("scoring=%s attempt_log=%q archive=%t ai=%t",
		cfg.Scoring.BaseURL, cfg.Database.Driver, cfg.Minio.Enabled, cfg.AI.Enabled)

	proxies, err := middleware.ParseProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		TrustedProxies:    proxies,
		MaxUploadBytes:    cfg.Upload.MaxBytes,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		RateLimitRequests: cfg.Server.RateLimit.Requests,
		RateLimitWindow:   cfg.Server.RateLimit.Window,
		ScoringBaseURL:    cfg.Scoring.BaseURL,
		HealthCheckers:    checkers,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// a submission waits on the scoring service
		WriteTimeout: cfg.Scoring.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openAttemptLog(ctx context.Context, cfg *config.Config) (*sql.DB, attempts.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := pgp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, pgp.NewAttemptRepository(db), nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, mysqlp.NewAttemptRepository(db), nil
	}
}
