package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ichinichi/internal/amqp"
	"ichinichi/internal/cli"
	"ichinichi/internal/config"
	applog "ichinichi/internal/log"
	"ichinichi/internal/sheets"
	gsheet "ichinichi/internal/sheets/google"
	sheetmem "ichinichi/internal/sheets/memory"
	"ichinichi/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting ichinichi-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend only sees items present at startup; use sqlite or postgres to share items with the server",
			applog.FieldComponent, applog.ComponentWorker)
	}

	store, err := cli.OpenStore(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open item store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Cleanup()

	writer, target, err := snapshotWriter(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(store.Store, writer, worker.ExportConfig{
		FullInterval: cfg.ExportInterval,
		Target:       target,
	})

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
	} else {
		logger.Info("AMQP disabled - exporting on the periodic schedule only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logger.Warn("Export worker did not stop cleanly", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exporter.Start(gctx)
	})
	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeItemEvents(gctx, exporter.HandleItemEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	slog.Info("Worker stopped gracefully")
}

// snapshotWriter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory writer otherwise.
func snapshotWriter(ctx context.Context, logger *slog.Logger, cfg *config.Config) (sheets.SnapshotWriter, string, error) {
	if !cfg.ExportEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return sheetmem.New(), "memory", nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		ItemsSheet:    cfg.GoogleSheetName,
		SummarySheet:  cfg.GoogleSummarySheetName,
	})
	if err != nil {
		return nil, "", err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, cfg.GoogleSpreadsheetID, nil
}
