package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"

	"github.com/dariusmp/inboxledger/internal/classifier"
	"github.com/dariusmp/inboxledger/internal/config"
	"github.com/dariusmp/inboxledger/internal/dump"
	"github.com/dariusmp/inboxledger/internal/export"
	"github.com/dariusmp/inboxledger/internal/extract"
	infra "github.com/dariusmp/inboxledger/internal/infra/bigquery"
	"github.com/dariusmp/inboxledger/internal/logger"
	"github.com/dariusmp/inboxledger/internal/mailbox"
	"github.com/dariusmp/inboxledger/internal/notionledger"
	"github.com/dariusmp/inboxledger/internal/orchestrator"
)

func main() {
	log := logger.New()

	query := flag.String("query", "", "Gmail search expression narrowing the listing")
	notionToken := flag.String("notion-token", "", "Notion API token (enables the Notion push with NOTION_DB_ID)")
	timeout := flag.Duration("timeout", 30*time.Minute, "Overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	transport, err := mailbox.NewGmail(ctx, *query, int64(cfg.Run.PageSize))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Gmail transport")
	}

	registry := extract.NewRegistry(log)
	for _, ex := range extract.DefaultExtractors() {
		registry.Register(ex)
	}

	cls, err := buildClassifier(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize classifier")
	}

	sink, cleanup, err := buildSink(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dump sink")
	}
	defer cleanup()

	var store *infra.Store
	if cfg.Export.BQProject != "" {
		client, err := bq.NewClient(ctx, cfg.Export.BQProject)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize BigQuery client")
		}
		defer client.Close()
		store = infra.NewStore(client, cfg.Export.BQDataset)
	}

	o := orchestrator.New(transport, registry, cls, sink, cfg.Run, log)
	records, stats, runErr := o.Run(ctx)

	runLog := logger.ForRun(log, stats.RunID)
	if store != nil {
		if err := store.StartExtractionRun(ctx, stats.RunID); err != nil {
			runLog.Warn().Err(err).Msg("Failed to record run start")
		}
	}

	// A fatal run error still leaves the records collected so far; export
	// them before exiting non-zero.
	if runErr != nil {
		if store != nil {
			store.MarkExtractionRunFailed(ctx, stats.RunID, runErr)
		}
		runLog.Error().Err(runErr).
			Int("records", len(records)).
			Msg("Extraction run failed, exporting partial progress")
	}

	written, excluded, err := export.NewCSVWriter(runLog).WriteFile(cfg.Export.CSVPath, records)
	if err != nil {
		runLog.Fatal().Err(err).Msg("CSV export failed")
	}
	runLog.Info().
		Str("path", cfg.Export.CSVPath).
		Int("written", written).
		Int("excluded", excluded).
		Msg("CSV export complete")

	if store != nil {
		if _, err := store.InsertRecords(ctx, stats.RunID, records); err != nil {
			runLog.Error().Err(err).Msg("BigQuery insert failed")
		} else if runErr == nil {
			if err := store.MarkExtractionRunSucceeded(ctx, stats.RunID,
				stats.Listed, stats.Extracted, stats.Dumped, stats.Records); err != nil {
				runLog.Error().Err(err).Msg("Failed to record run success")
			}
		}
	}

	if *notionToken != "" && cfg.Export.NotionDBID != "" {
		svc := notionledger.NewNotionClient(*notionToken)
		created, skipped, err := notionledger.PushRecords(ctx, svc, cfg.Export.NotionDBID, records)
		if err != nil {
			runLog.Error().Err(err).Msg("Notion push failed")
		} else {
			runLog.Info().Int("created", created).Int("skipped", skipped).Msg("Notion push complete")
		}
	}

	fmt.Printf("Run %s: %d listed, %d extracted, %d dumped, %d records (%d retries)\n",
		stats.RunID, stats.Listed, stats.Extracted, stats.Dumped, stats.Records, stats.Retries)
	if runErr != nil {
		os.Exit(1)
	}
}

func buildClassifier(ctx context.Context, cfg config.Config) (classifier.Classifier, error) {
	if cfg.Classifier.GeminiModel != "" {
		return classifier.NewGemini(ctx, cfg.Classifier.GeminiModel)
	}
	return classifier.Keyword{Threshold: cfg.Classifier.Threshold}, nil
}

func buildSink(ctx context.Context, cfg config.Config) (dump.Sink, func(), error) {
	if cfg.Dump.Bucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("buildSink: create storage client: %w", err)
		}
		return dump.NewGCS(client, cfg.Dump.Bucket, "dumped/"), func() { client.Close() }, nil
	}

	sink, err := dump.NewLocalDir(cfg.Dump.Dir)
	if err != nil {
		return nil, nil, err
	}
	return sink, func() {}, nil
}
