package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ytcatalog-backend/internal/config"
	"ytcatalog-backend/internal/ingest"
	"ytcatalog-backend/internal/logger"
	"ytcatalog-backend/internal/repository"
	"ytcatalog-backend/internal/schema"
	"ytcatalog-backend/internal/storage"
)

type options struct {
	dataDir string
	source  string
	reset   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "loaddata",
		Short:         "Load the channel catalogue CSV exports into the database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, appLogger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = appLogger.Sync() }()

			if err := load(cmd.Context(), cfg, opts.reset, appLogger); err != nil {
				appLogger.Error("data load failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory containing the CSV subdirectory (overrides DATA_DIR_PATH)")
	root.PersistentFlags().StringVar(&opts.source, "source", "", "where to read CSVs from: dir or minio (overrides DATA_SOURCE)")
	root.Flags().BoolVar(&opts.reset, "reset", true, "drop and recreate every catalogue table before loading")

	root.AddCommand(newUploadCmd(opts))
	return root
}

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Copy the local CSV exports into the configured bucket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, appLogger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = appLogger.Sync() }()

			if err := upload(cmd.Context(), cfg, appLogger); err != nil {
				appLogger.Error("upload failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

// setup loads the configuration, applies flag overrides and builds the
// logger configured by it.
func setup(cmd *cobra.Command, opts *options) (*config.Config, *zap.Logger, error) {
	initialLogger, err := logger.NewLogger("production", "info")
	if err != nil {
		log.Println("failed to initialize logger:", err)
		return nil, nil, err
	}
	defer func() { _ = initialLogger.Sync() }()

	cfg, err := config.Load(initialLogger)
	if err != nil {
		initialLogger.Error("invalid configuration", zap.Error(err))
		return nil, nil, err
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.Data.DirPath = opts.dataDir
	}
	if cmd.Flags().Changed("source") {
		cfg.Data.Source = opts.source
	}
	if err := cfg.Validate(); err != nil {
		initialLogger.Error("invalid configuration", zap.Error(err))
		return nil, nil, err
	}

	appLogger, err := logger.NewLogger(cfg.Env, cfg.Log.Level)
	if err != nil {
		initialLogger.Error("failed to create application logger", zap.Error(err))
		return nil, nil, err
	}
	return cfg, appLogger, nil
}

func load(ctx context.Context, cfg *config.Config, reset bool, log *zap.Logger) error {
	db, err := repository.Connect(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	reg := schema.New()
	if err := reg.EnsureSchema(ctx, db, reset); err != nil {
		return err
	}
	log.Info("schema ready", zap.Bool("reset", reset))

	src, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}

	pipeline, err := ingest.New(db, src, reg, log)
	if err != nil {
		return err
	}
	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("run_id", report.RunID),
		zap.Int("rows", report.Total()),
		zap.Int("warnings", report.Warnings),
		zap.Duration("duration", report.Duration),
	}
	for entity, n := range report.Counts {
		fields = append(fields, zap.Int(entity, n))
	}
	log.Info("data loaded", fields...)
	return nil
}

func openSource(ctx context.Context, cfg *config.Config, log *zap.Logger) (ingest.Source, error) {
	if cfg.Data.Source == "minio" {
		return storage.NewMinio(ctx, cfg.Minio, log)
	}
	log.Info("reading CSV files from disk", zap.String("dir", cfg.Data.Dir()))
	return ingest.DirSource{Root: cfg.Data.Dir()}, nil
}

func upload(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := storage.NewMinio(ctx, cfg.Minio, log)
	if err != nil {
		return err
	}

	for _, stage := range ingest.DefaultStages() {
		if err := uploadFile(ctx, store, filepath.Join(cfg.Data.Dir(), stage.File), stage.File); err != nil {
			return err
		}
		log.Info("uploaded", zap.String("file", stage.File))
	}
	return nil
}

func uploadFile(ctx context.Context, store *storage.Minio, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := store.Upload(ctx, name, f, info.Size(), "text/csv"); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}
