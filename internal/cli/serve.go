package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maltedev/shopify-product-importer/internal/api"
	"github.com/maltedev/shopify-product-importer/internal/config"
	"github.com/maltedev/shopify-product-importer/internal/jobs"
	"github.com/maltedev/shopify-product-importer/internal/logger"
	"github.com/maltedev/shopify-product-importer/internal/queue"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the import HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	out, err := newSink(ctx, cfg)
	if err != nil {
		return err
	}

	imp, closeImporter, err := newImporter(cfg, log)
	if err != nil {
		return err
	}
	defer closeImporter()

	q := queue.NewInMemoryQueue()
	defer q.Close()

	manager := jobs.NewManager(store, q, imp, out, publisher, cfg.Scraper.BatchSize, log)
	go manager.StartWorker(ctx)

	handlers := api.NewHandlers(manager, cfg.Server.MaxUploadBytes, log)
	server := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewRouter(handlers, api.RouterOptions{
			CORSOrigins:    cfg.Server.CORSOrigins,
			RequestTimeout: cfg.Server.WriteTimeout,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.ReadTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting",
		"addr", server.Addr,
		"job_store", cfg.Storage.JobStore,
		"sink", cfg.Storage.SinkType)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
