// main wires configuration, storage, services, and the HTTP server, and owns
// the process lifecycle. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"securevault/internal/analytics"
	analyticshandler "securevault/internal/analytics/handler"
	"securevault/internal/audit"
	certhandler "securevault/internal/certificate/handler"
	certmetrics "securevault/internal/certificate/metrics"
	certservice "securevault/internal/certificate/service"
	certstore "securevault/internal/certificate/store/certificate"
	httpapi "securevault/internal/http"
	"securevault/internal/platform/config"
	"securevault/internal/platform/httpserver"
	"securevault/internal/platform/logger"
	platformredis "securevault/internal/platform/redis"
	verifyhandler "securevault/internal/verification/handler"
	verifymetrics "securevault/internal/verification/metrics"
	verifyservice "securevault/internal/verification/service"
	vlog "securevault/internal/verification/store/log"
)

const auditInboxSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	certificates, verifications, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	auditInbox := make(chan audit.Event, auditInboxSize)
	auditStore := audit.NewInMemoryStore()
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)
	publisher := audit.NewPublisher(auditInbox, log)

	issuance := certservice.New(certificates, cfg.VerifyBaseURL,
		certservice.WithLogger(log),
		certservice.WithMetrics(certmetrics.New()),
		certservice.WithAuditPublisher(publisher),
	)
	verifier := verifyservice.New(certificates, verifications,
		verifyservice.WithLogger(log),
		verifyservice.WithMetrics(verifymetrics.New()),
	)
	reporting := analytics.New(certificates)

	router := httpapi.NewRouter(log,
		certhandler.New(issuance, log),
		verifyhandler.New(verifier, log),
		analyticshandler.New(reporting, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting securevault", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("audit worker: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("securevault stopped")
	return nil
}

// buildStores selects the storage backends from configuration. Postgres backs
// the certificate store and verification log when DATABASE_URL is set; redis,
// when configured, replaces the verification log with a bounded shared
// history. Everything falls back to in-memory.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (certservice.CertificateStore, verifyservice.Log, func(), error) {
	var (
		certificates  certservice.CertificateStore
		verifications verifyservice.Log
		closers       []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		if err := db.PingContext(ctx); err != nil {
			cleanup()
			return nil, nil, func() {}, fmt.Errorf("ping database: %w", err)
		}

		pgCerts := certstore.NewPostgres(db)
		if err := pgCerts.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, func() {}, fmt.Errorf("migrate certificates: %w", err)
		}
		pgLog := vlog.NewPostgres(db)
		if err := pgLog.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, func() {}, fmt.Errorf("migrate verification log: %w", err)
		}
		certificates = pgCerts
		verifications = pgLog
		log.Info("using postgres storage")
	} else {
		certificates = certstore.NewInMemory()
		verifications = vlog.NewInMemoryCapped(cfg.HistoryLimit)
		log.Info("using in-memory storage")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		cleanup()
		return nil, nil, func() {}, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		closers = append(closers, func() { redisClient.Close() })
		verifications = vlog.NewRedis(redisClient.Client, cfg.HistoryLimit)
		log.Info("using redis verification history", "limit", cfg.HistoryLimit)
	}

	return certificates, verifications, cleanup, nil
}
