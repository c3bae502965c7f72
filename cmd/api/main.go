package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/app"
	"github.com/user/site-crawler/internal/delivery/http/handler"
	"github.com/user/site-crawler/internal/delivery/http/router"
	"github.com/user/site-crawler/internal/usecase"
	"github.com/user/site-crawler/pkg/config"
	"github.com/user/site-crawler/pkg/logger"
	"github.com/user/site-crawler/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// --- Metrics ---
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Services ---
	services, err := app.NewServices(ctx, cfg, log)
	if err != nil {
		log.Fatal("could not initialize services", zap.Error(err))
	}
	defer services.Close()

	// --- Job workers ---
	pool := usecase.NewWorkerPool(services.Runner, cfg.JobWorkers, cfg.QueuePollInterval(), log)
	pool.Start(ctx)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(services.Manager, services.Artifacts, log)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	pool.Stop()

	log.Info("server exiting")
}
