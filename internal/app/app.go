// Package app wires the reservation core to its HTTP transport.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"

	"github.com/cinetix/reservation-core/internal/alert"
	"github.com/cinetix/reservation-core/internal/catalog"
	"github.com/cinetix/reservation-core/internal/domain"
	"github.com/cinetix/reservation-core/internal/engine"
	"github.com/cinetix/reservation-core/internal/store"
	appvalidator "github.com/cinetix/reservation-core/internal/validator"
	"github.com/cinetix/reservation-core/internal/vcs"
)

var (
	version = vcs.Version()
)

// Reserver is the engine operation the transport depends on.
type Reserver interface {
	Reserve(ctx context.Context, sessionID string, seats []domain.SeatID) (*domain.ReservationRecord, error)
}

// ReconcileRunner triggers an on-demand reconciliation.
type ReconcileRunner interface {
	Run(ctx context.Context) (*engine.Report, error)
}

type Application struct {
	config    Config
	logger    *slog.Logger
	validator *validator.Validate

	catalog    domain.CatalogRepository
	sessions   domain.SessionResolver
	snapshots  domain.SnapshotRepository
	ledger     domain.LedgerRepository
	engine     Reserver
	reconciler ReconcileRunner
}

type Config struct {
	Port              int
	Env               string
	DataDir           string
	RedisURL          string
	AmqpURL           string
	OtelCollectorUrl  string
	ReconcileInterval time.Duration
	CatalogCacheTTL   time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.DataDir, "data-dir", envString("DATA_DIR", "./data"),
		"Directory holding the catalog files, seat snapshots and reservation ledger")
	flag.StringVar(&cfg.RedisURL, "redis-url", envString("REDIS_URL", ""),
		"Redis URL for the catalog cache (empty disables caching)")
	flag.StringVar(&cfg.AmqpURL, "amqp-url", envString("AMQP_URL", ""),
		"AMQP URL for operator alerts (empty falls back to log-only alerts)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""),
		"OpenTelemetry collector URL (empty disables telemetry export)")
	flag.DurationVar(&cfg.ReconcileInterval, "reconcile-interval", envDuration("RECONCILE_INTERVAL", 0),
		"Periodic reconciliation interval (0 disables the periodic run)")
	flag.DurationVar(&cfg.CatalogCacheTTL, "catalog-cache-ttl", envDuration("CATALOG_CACHE_TTL", time.Hour),
		"TTL for cached catalog entries")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	app := &Application{
		config:    cfg,
		logger:    logger,
		validator: appvalidator.NewValidator(),
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		return err
	}
	defer shutdownTelemetry(context.Background())

	metrics, err := engine.NewMetrics()
	if err != nil {
		return err
	}

	fileCatalog := catalog.NewFileCatalog(
		filepath.Join(cfg.DataDir, "movies.json"),
		filepath.Join(cfg.DataDir, "schedules.json"),
	)

	if cfg.RedisURL != "" {
		redisClient, err := newRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		cached := catalog.NewCachedCatalog(fileCatalog, redisClient, cfg.CatalogCacheTTL, app.logger)
		app.catalog = cached
		app.sessions = cached
	} else {
		app.catalog = fileCatalog
		app.sessions = fileCatalog
	}

	snapshots, err := store.NewSnapshotStore(filepath.Join(cfg.DataDir, "sessions"))
	if err != nil {
		return err
	}
	app.snapshots = snapshots

	ledger := store.NewLedger(filepath.Join(cfg.DataDir, "reservations.jsonl"), app.logger)
	app.ledger = ledger

	reservationEngine := engine.New(app.sessions, snapshots, ledger, app.logger, metrics)
	app.engine = reservationEngine

	var notifier alert.Notifier = &alert.LogNotifier{Logger: app.logger}
	if cfg.AmqpURL != "" {
		notifier = &alert.AMQPNotifier{URL: cfg.AmqpURL, Logger: app.logger}
	}

	reconciler := engine.NewReconciler(snapshots, ledger, reservationEngine, notifier, app.logger, metrics)
	app.reconciler = reconciler

	// Reconcile before accepting any request, so the engine never builds on
	// state left behind by a crash.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := reconciler.Run(ctx)
	if err != nil {
		app.logger.Error("startup reconciliation failed", "error", err)
		return err
	}
	app.logger.Info("startup reconciliation finished",
		"sessions", len(report.Sessions), "repaired", report.Repaired, "inconsistent", report.Inconsistent)

	if cfg.ReconcileInterval > 0 {
		go reconciler.RunPeriodic(ctx, cfg.ReconcileInterval)
	}

	return app.run()
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("seat-reservation-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.requestLogger)

	r.Get("/health", app.GetHealth)

	r.Get("/movies", app.GetMovies)
	r.Get("/schedules", app.GetSchedules)

	r.Route("/schedules/{scheduleID}", func(r chi.Router) {
		r.Get("/", app.GetScheduleById)
		r.Get("/seats", app.GetSeatMap)
	})

	r.Post("/reservations", app.CreateReservation)
	r.Get("/reservations/{reservationID}", app.GetReservation)

	r.Post("/admin/reconcile", app.RunReconciliation)

	return r
}
