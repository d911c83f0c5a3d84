// Command adkite runs the ad platform decision execution engine.
//
// Usage:
//
//	adkite setup                 (interactive config wizard)
//	adkite --config config.yaml
//	adkite --db postgres://... --sandbox
//
// DATABASE_URL from the environment overrides the configured database
// connection string.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adkite/adkite/config"
	"github.com/adkite/adkite/internal"
	"github.com/adkite/adkite/internal/clients"
	"github.com/adkite/adkite/internal/services/execution"
	"github.com/adkite/adkite/internal/setup"
	"github.com/adkite/adkite/internal/storage/auditlog"
	"github.com/adkite/adkite/internal/storage/connections"
	"github.com/adkite/adkite/internal/storage/decisions"
	"github.com/adkite/adkite/internal/web"
	"github.com/adkite/adkite/pkg/retrier"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunWizard(); err != nil {
			log.Fatal(err)
		}
		return
	}

	_ = godotenv.Load()

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := buildLogger(conf.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := connectPostgres(ctx, conf.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	store := decisions.NewPgStoreFromPool(pool)
	directory := connections.NewPgDirectoryFromPool(pool)

	var audit *auditlog.WALStore
	if conf.WALDir != "" {
		audit, err = auditlog.NewWALStore(conf.WALDir)
		if err != nil {
			logger.Fatal("failed to open audit log", zap.Error(err))
		}
		defer audit.Close()
	}

	var factory *internal.AdapterFactory
	if conf.Sandbox {
		logger.Info("running with in-memory sandbox platform sessions")
		factory = internal.NewSandboxAdapterFactory(clients.NewSandboxState(logger))
	} else {
		logger.Warn("live platform sessions are not wired in this build; platform operations will fail until session factories are configured")
		factory = internal.NewAdapterFactory(nil, nil, nil)
	}

	dispatcher := execution.NewDispatcher(directory, directory, factory, logger)

	var auditLog internal.AuditLog
	var auditReader web.AuditReader
	if audit != nil {
		auditLog = audit
		auditReader = audit
	}
	engine := internal.NewEngine(store, dispatcher, auditLog, logger)

	server := web.NewServer(conf.ListenAddr, store, engine, auditReader, logger)

	logger.Info("starting decision execution engine", zap.String("listen", conf.ListenAddr))
	if err := server.Start(ctx); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func connectPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	r := retrier.New(
		retrier.WithInitialInterval(time.Second),
		retrier.WithMaxInterval(10*time.Second),
		retrier.WithMaxRetries(5),
	)
	err := r.Do(ctx, func(ctx context.Context) error {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			logger.Warn("postgres not reachable yet, retrying", zap.Error(err))
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
