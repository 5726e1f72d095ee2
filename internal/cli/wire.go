package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/shopify-product-importer/internal/browser"
	"github.com/maltedev/shopify-product-importer/internal/config"
	"github.com/maltedev/shopify-product-importer/internal/database"
	"github.com/maltedev/shopify-product-importer/internal/events"
	"github.com/maltedev/shopify-product-importer/internal/fetcher"
	"github.com/maltedev/shopify-product-importer/internal/importer"
	"github.com/maltedev/shopify-product-importer/internal/jobs"
	"github.com/maltedev/shopify-product-importer/internal/parser"
	"github.com/maltedev/shopify-product-importer/internal/sink"
)

type cleanup func()

func noCleanup() {}

func newRegistry(cfg *config.Config) (*parser.Registry, error) {
	defaults := parser.DefaultProfile(cfg.Scraper.BaseURL)
	if cfg.Scraper.ProfilesFile == "" {
		return parser.NewRegistry(defaults), nil
	}

	profiles, err := parser.LoadProfiles(cfg.Scraper.ProfilesFile, defaults)
	if err != nil {
		return nil, err
	}
	return parser.NewRegistry(defaults, profiles...), nil
}

func newFetcher(cfg *config.Config, logger *slog.Logger) (fetcher.Fetcher, cleanup, error) {
	if cfg.Scraper.FetchMode != config.FetchModeBrowser {
		return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:   cfg.Scraper.Timeout,
			UserAgent: cfg.Scraper.UserAgent,
		}), noCleanup, nil
	}

	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.ViewportWidth = cfg.Browser.ViewportWidth
	opts.ViewportHeight = cfg.Browser.ViewportHeight
	opts.AcceptLanguage = cfg.Browser.AcceptLanguage
	opts.Locale = cfg.Browser.Locale
	opts.ProxyServer = cfg.Browser.ProxyServer
	opts.MaxRetries = cfg.Browser.MaxRetries
	if cfg.Scraper.UserAgent != "" {
		opts.UserAgent = cfg.Scraper.UserAgent
	}

	b, err := browser.New(opts, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	return fetcher.NewBrowserFetcher(b), func() {
		if err := b.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}, nil
}

func newImporter(cfg *config.Config, logger *slog.Logger) (*importer.Importer, cleanup, error) {
	registry, err := newRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	f, closeFetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("importer configured",
		"fetch_mode", cfg.Scraper.FetchMode,
		"profiles", registry.Names())

	return importer.New(f, registry, logger), closeFetcher, nil
}

func newSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	switch cfg.Storage.SinkType {
	case config.SinkS3:
		return sink.NewS3Sink(ctx, sink.S3Options{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			KeyPrefix: cfg.Storage.S3Prefix,
			Endpoint:  cfg.Storage.S3Endpoint,
		})
	case config.SinkDir:
		return sink.NewDirSink(cfg.Storage.OutputDir), nil
	default:
		return sink.NopSink{}, nil
	}
}

func newStore(ctx context.Context, cfg *config.Config) (jobs.Store, cleanup, error) {
	if cfg.Storage.JobStore != config.JobStorePostgres {
		return jobs.NewMemoryStore(), noCleanup, nil
	}

	db, err := database.New(ctx, database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return database.NewImportRepository(db), db.Close, nil
}

func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (jobs.Publisher, cleanup, error) {
	if cfg.Redis.Addr == "" {
		return events.NopPublisher{}, noCleanup, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return events.NewPublisher(client, cfg.Redis.Stream, logger), func() { client.Close() }, nil
}
