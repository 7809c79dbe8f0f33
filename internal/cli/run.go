package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dlfarias/teamvault/internal/auth"
	"github.com/dlfarias/teamvault/internal/catalog"
	"github.com/dlfarias/teamvault/internal/config"
	"github.com/dlfarias/teamvault/internal/graph"
	"github.com/dlfarias/teamvault/internal/logging"
	"github.com/dlfarias/teamvault/internal/storage"
	syncpkg "github.com/dlfarias/teamvault/internal/sync"
	"github.com/dlfarias/teamvault/internal/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mirror all reachable teams into storage and the catalog",
	Long: `Discovers every joined team, walks its channels and site document
libraries, and transfers files whose change fingerprint differs from the
catalog. Prints a summary table when the run completes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context())
	},
	SilenceUsage: true,
}

func runSync(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(globalFlags.Config)
	if err != nil {
		return err
	}
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if globalFlags.Verbose || globalFlags.Debug {
		logger.SetLevel(logging.DEBUG)
	}

	token, err := auth.NewTokenSource(cfg.TokenFile).Token()
	if err != nil {
		return err
	}

	client := graph.NewClient(token, graph.Options{
		BaseURL:     cfg.BaseURL,
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.GetRetryBaseDelay(),
		HTTPClient:  &http.Client{Timeout: cfg.GetRequestTimeout()},
		Logger:      logger,
	})
	defer client.Close()

	cat, err := catalog.Open(ctx, cfg.CatalogDSN)
	if err != nil {
		return err
	}
	defer cat.Close()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats := syncpkg.NewRunStats()
	syncer := syncpkg.NewSyncer(client, store, cat,
		int64(cfg.DownloadConcurrency), stats, logger, globalFlags.DryRun)
	walker := syncpkg.NewWalker(client, syncer, logger)
	scraper := syncpkg.NewScraper(client, cat, walker, stats, logger, syncpkg.Options{
		KeyPrefix:           cfg.KeyPrefix,
		Semester:            cfg.Semester,
		ClassYear:           cfg.ClassYear,
		ForbiddenRetries:    cfg.ForbiddenRetries,
		ForbiddenRetryDelay: cfg.GetForbiddenRetryDelay(),
	})

	logger.Info("starting run",
		logging.F("storage", string(cfg.StorageBackend)),
		logging.F("concurrency", cfg.DownloadConcurrency),
		logging.F("dryRun", globalFlags.DryRun))

	runErr := scraper.Run(ctx)

	if !globalFlags.Quiet {
		stats.Report(os.Stdout)
	}

	if runErr != nil {
		if utils.IsCode(runErr, utils.ErrCodeCredentialExpired) {
			logger.Error("credential expired, run aborted; acquire a fresh token and rerun")
		}
		return runErr
	}

	logger.Info("run complete", logging.F("elapsed", stats.Elapsed().String()))
	return nil
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	case config.StorageLocal:
		return storage.NewLocalStore(cfg.LocalRoot)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
