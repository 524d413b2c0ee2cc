package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"docsearch/internal/config"
	"docsearch/internal/database"
	"docsearch/internal/database/migration"
	"docsearch/internal/extract"
	"docsearch/internal/logging"
	"docsearch/internal/repository"
	"docsearch/internal/repository/postgres"
	"docsearch/internal/service"
	"docsearch/internal/storage"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "PDF upload, text search and retrieval service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd(), newPurgeCmd())

	// Running the binary without a subcommand serves HTTP.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

// env is the process-wide state shared by every subcommand.
type env struct {
	cfg    *config.AppConfig
	logger *slog.Logger
	db     *sql.DB
}

func setup(ctx context.Context) (*env, error) {
	cfg := config.Load()
	logger := logging.New(os.Stdout, logging.Location(cfg.LogTimezone))
	slog.SetDefault(logger)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Error("db_connect_failed", "db_host", database.Host(cfg.Database.URL), "error", err.Error())
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migration.EnsureMigrated(ctx, db, logger, database.Host(cfg.Database.URL)); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, db: db}, nil
}

// blobStore returns the configured large-file backend wrapped in a Lazy so the
// HTTP listener never waits on it.
func (e *env) blobStore(opts ...storage.LazyOption) *storage.Lazy {
	backend := e.cfg.Blob.Backend
	return storage.NewLazy(func(ctx context.Context) (storage.BlobStore, error) {
		var (
			st  storage.BlobStore
			err error
		)
		switch backend {
		case "postgres":
			st = storage.NewChunkStore(e.db, e.cfg.Blob.ChunkSize)
		case "minio":
			st, err = storage.NewMinIO(ctx, e.cfg.MinIO, e.cfg.Blob.ChunkSize)
		default:
			err = fmt.Errorf("unknown blob backend %q", backend)
		}
		if err != nil {
			e.logger.Error("blob_store_init_failed", "backend", backend, "error", err.Error())
			return nil, err
		}
		e.logger.Info("blob_store_ready", "backend", backend)
		return st, nil
	}, opts...)
}

func (e *env) router(blobs storage.BlobStore) service.StorageRouter {
	return service.NewStorageRouter(
		extract.NewPDF(),
		postgres.NewDocumentPostgres(e.db),
		blobs,
		postgres.NewBlobIndexPostgres(e.db),
		service.RouterConfig{
			Threshold:  e.cfg.SizeThreshold,
			MatchMode:  repository.ParseMatchMode(e.cfg.DocumentMatchMode),
			BlobSearch: service.ParseBlobSearchMode(e.cfg.Blob.SearchMode),
		},
		e.logger,
	)
}
