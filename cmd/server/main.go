// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "dinehalal/internal/http"
	"dinehalal/internal/platform/config"
	"dinehalal/internal/platform/httpserver"
	"dinehalal/internal/platform/logger"
	platformpostgres "dinehalal/internal/platform/postgres"
	platformredis "dinehalal/internal/platform/redis"
	"dinehalal/internal/registry"
	"dinehalal/internal/registry/ingest"
	"dinehalal/internal/verification"
	verificationhandler "dinehalal/internal/verification/handler"
	verificationmetrics "dinehalal/internal/verification/metrics"
	"dinehalal/internal/votes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	db, err := platformpostgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	var snapshots registry.SnapshotStore
	if cfg.Registry.Snapshot && db != nil {
		store := registry.NewPostgresSnapshotStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error("snapshot schema setup failed", "error", err)
			os.Exit(1)
		}
		snapshots = store
	}

	regStore := registry.NewStore(
		registry.FileSource{Path: cfg.Registry.DocumentPath},
		ingest.NewExtractor(log),
		snapshots,
		log,
	)

	var voteStore votes.Store = votes.NewMemoryStore()
	var verifiedIDs verification.VerifiedIDStore = verification.NewMemoryVerifiedIDs()
	if redisClient != nil {
		voteStore = votes.NewRedisStore(redisClient.Client)
		verifiedIDs = verification.NewRedisVerifiedIDs(redisClient.Client)
	}
	ledger := votes.NewLedger(voteStore, cfg.Votes, log)

	var publisher verification.StatusPublisher
	kafkaPublisher, err := verification.NewKafkaPublisher(cfg.Kafka)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if kafkaPublisher != nil {
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	engine := verification.NewEngine(
		regStore,
		ledger,
		publisher,
		verifiedIDs,
		verificationmetrics.New(),
		log,
		cfg.Registry.LoadTimeout,
	)

	// Warm the registry before traffic arrives; requests during the load are
	// served from community data.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Registry.LoadTimeout)
		defer cancel()
		if err := regStore.Load(loadCtx); err != nil {
			log.Warn("initial registry load failed", "error", err)
			return
		}
		log.Info("registry loaded", "establishments", regStore.Len())
	}()

	checks := map[string]httpapi.HealthChecker{}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	if db != nil {
		checks["postgres"] = dbCheck{db: db}
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Verification: verificationhandler.New(engine, log),
		Registry:     regStore,
		Checks:       checks,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting dinehalal", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

type dbCheck struct {
	db *sql.DB
}

func (c dbCheck) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
