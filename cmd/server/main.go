package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labfhir/internal/audit"
	eventstore "labfhir/internal/audit/store/event"
	artifactstore "labfhir/internal/bundle/store/artifact"
	"labfhir/internal/docstore"
	"labfhir/internal/jwttoken"
	ledgersvc "labfhir/internal/ledger/service"
	versionstore "labfhir/internal/ledger/store/version"
	"labfhir/internal/pipeline"
	"labfhir/internal/pipeline/lock"
	"labfhir/internal/platform/apikey"
	"labfhir/internal/platform/config"
	"labfhir/internal/platform/httpserver"
	"labfhir/internal/platform/logger"
	"labfhir/internal/platform/metrics"
	"labfhir/internal/platform/postgres"
	redisplatform "labfhir/internal/platform/redis"
	reportstore "labfhir/internal/report/store/report"
	subjectsvc "labfhir/internal/subject/service"
	subjectstore "labfhir/internal/subject/store/subject"
	httptransport "labfhir/internal/transport/http"
)

const (
	startupTimeout  = 30 * time.Second
	auditInboxSize  = 256
	auditPartitions = 3
	auditReplicas   = 1
)

// main wires configuration into stores, the pipeline, and the HTTP server.
// Unset infrastructure sections select in-process fallbacks, so a bare
// `go run ./cmd/server` serves the full API on memory stores.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	healthChecks := map[string]httptransport.HealthCheck{}

	// Stores: Postgres when a DSN is configured, otherwise memory.
	var (
		reports   reportstore.Store
		subjects  subjectstore.Store
		versions  versionstore.Store
		artifacts artifactstore.Store
		events    audit.Store
		txRunner  pipeline.TxRunner
	)
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(startupCtx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(startupCtx, db); err != nil {
			return err
		}
		reports = reportstore.NewPostgres(db)
		subjects = subjectstore.NewPostgres(db)
		versions = versionstore.NewPostgres(db)
		artifacts = artifactstore.NewPostgres(db)
		events = eventstore.NewPostgresStore(db)
		txRunner = newPostgresTx(db)
		healthChecks["postgres"] = db.PingContext
		log.Info("connected to postgres")
	} else {
		reports = reportstore.NewMemory()
		subjects = subjectstore.NewMemory()
		versions = versionstore.NewMemory()
		artifacts = artifactstore.NewMemory()
		events = eventstore.NewMemoryStore()
		txRunner = pipeline.MemoryTxRunner{}
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	// Report locks: Redis when configured, otherwise in-process.
	var locker lock.ReportLocker
	redisClient, err := redisplatform.New(startupCtx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedis(redisClient.Client,
			lock.WithTTL(cfg.Redis.LockTTL),
			lock.WithLogger(log),
		)
		healthChecks["redis"] = redisClient.Health
		log.Info("connected to redis", "lock_ttl", cfg.Redis.LockTTL.String())
	} else {
		locker = lock.NewMemory()
	}

	// Original documents: filesystem when a root is configured.
	var documents docstore.Store
	if cfg.Storage.DocumentRoot != "" {
		documents, err = docstore.NewFS(cfg.Storage.DocumentRoot)
		if err != nil {
			return err
		}
		log.Info("storing documents on disk", "root", cfg.Storage.DocumentRoot)
	} else {
		documents = docstore.NewMemory()
		log.Warn("no document root configured, documents are held in memory")
	}

	// Audit trail: always persisted; mirrored to Kafka when brokers are set.
	publisherOpts := []audit.PublisherOption{audit.WithLogger(log)}
	var inbox chan audit.Event
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			audit.WithKafkaLogger(log))
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(startupCtx, auditPartitions, auditReplicas); err != nil {
			return err
		}

		inbox = make(chan audit.Event, auditInboxSize)
		publisherOpts = append(publisherOpts, audit.WithForward(inbox))

		workerCtx, stopWorker := context.WithCancel(context.Background())
		defer stopWorker()
		worker := audit.NewWorker(sink, inbox, audit.WithWorkerLogger(log))
		go func() {
			_ = worker.Run(workerCtx)
		}()
		log.Info("mirroring audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	publisher := audit.NewPublisher(events, publisherOpts...)

	// Domain services.
	subjectService, err := subjectsvc.New(subjects, subjectsvc.WithLogger(log))
	if err != nil {
		return err
	}
	ledgerService, err := ledgersvc.New(versions, ledgersvc.WithLogger(log))
	if err != nil {
		return err
	}

	m := metrics.New()
	pipelineService, err := pipeline.New(pipeline.Deps{
		Reports:   reports,
		Subjects:  subjectService,
		Ledger:    ledgerService,
		Artifacts: artifacts,
		Documents: documents,
		Locker:    locker,
		Tx:        txRunner,
	},
		pipeline.WithLogger(log),
		pipeline.WithAudit(publisher),
		pipeline.WithMetrics(m),
		pipeline.WithVerifyParallelism(cfg.Pipeline.VerifyParallelism),
	)
	if err != nil {
		return err
	}

	// Transport.
	transportOpts := []httptransport.Option{
		httptransport.WithLogger(log),
		httptransport.WithMetrics(m),
		httptransport.WithRequestTimeout(cfg.HTTP.RequestTimeout),
		httptransport.WithHealthChecks(healthChecks),
	}
	if cfg.Auth.JWTSigningKey != "" {
		tokens := jwttoken.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
		transportOpts = append(transportOpts,
			httptransport.WithJWTValidator(jwttoken.NewServiceAdapter(tokens)))
	} else {
		log.Warn("no JWT signing key configured, API endpoints are unauthenticated")
	}
	if len(cfg.Auth.APIKeyHashes) > 0 {
		transportOpts = append(transportOpts,
			httptransport.WithAPIKeyVerifier(apikey.NewVerifier(cfg.Auth.APIKeyHashes)))
	} else {
		log.Warn("no admin API key hashes configured, admin endpoints are open")
	}

	handler := httptransport.New(httptransport.Deps{
		Pipeline: pipelineService,
		Subjects: subjectService,
		Ledger:   ledgerService,
	}, transportOpts...)

	srv := httpserver.New(cfg.HTTP.Addr, handler.Router())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("labfhir server started", "addr", cfg.HTTP.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
