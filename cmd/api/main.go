package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-equation-solver/internal/config"
	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/server"
	"go-equation-solver/internal/session"
	"go-equation-solver/internal/solver"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if cfg.TelemetryEnabled {
		// Tracing
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			panic(err)
		}
		defer traceShutdown(ctx)

		// Log export
		logShutdown, err := observability.InitLogging(ctx, cfg.LogExportLevel)
		if err != nil {
			panic(err)
		}
		defer logShutdown(ctx)
	}

	// Metrics
	metricShutdown, err := initMetrics(ctx, cfg.TelemetryEnabled)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	recognizer := newRecognizer(cfg.Recognizer)

	store := session.NewStore(recognizer, cfg.Session.TTL, session.WithMaxSessions(cfg.Session.MaxSessions))
	evictCtx, stopEvict := context.WithCancel(ctx)
	evictDone := make(chan struct{})
	go func() {
		defer close(evictDone)
		store.Run(evictCtx, cfg.Session.EvictInterval)
	}()

	// Router
	router := server.NewRouter(server.Deps{
		Solver:       solver.NewHandler(recognizer),
		Sessions:     session.NewHandler(store, cfg.Session.MaxWait),
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("recognizer", recognizer.Engine()),
			zap.Bool("telemetry", cfg.TelemetryEnabled),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)

	stopEvict()
	<-evictDone
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("server shutdown", zap.Error(err))
	}
}
