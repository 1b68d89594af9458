package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/fedev23/RAG-assistant/internal/config"
	"github.com/fedev23/RAG-assistant/internal/extract"
	"github.com/fedev23/RAG-assistant/internal/jobs"
	"github.com/fedev23/RAG-assistant/internal/jobs/inmemory"
	"github.com/fedev23/RAG-assistant/internal/ledger"
	"github.com/fedev23/RAG-assistant/internal/logger"
	"github.com/fedev23/RAG-assistant/internal/memory"
	"github.com/fedev23/RAG-assistant/internal/pipeline"
	"github.com/fedev23/RAG-assistant/internal/query"
	"github.com/fedev23/RAG-assistant/internal/telegram"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ledger: the single SQLite file carrying expenses, dedup log and offset.
	store, err := ledger.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ledger")
	}
	defer store.Close()

	// Vector memory, embedded locally with Ollama embeddings.
	embed := chromem.NewEmbeddingFuncOllama(cfg.EmbedModel, cfg.OllamaBaseURL)
	memStore, err := memory.NewChromemStore(cfg.MemoryPath, cfg.MemoryCollection, embed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open vector memory")
	}

	// Projection queue. In-memory is enough for a single bot instance; a
	// multi-instance deployment would swap in a broker here.
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(cfg.ProjectionQueueSize, cfg.ProjectionWorkers, jobStore)
	projector := memory.NewProjector(memStore)
	if err := queue.Start(ctx, projector.Handle); err != nil {
		log.Fatal().Err(err).Msg("failed to start projection workers")
	}

	// Model fallback is optional: without credentials the strict grammar is
	// the only extractor and everything else keeps working.
	var fallback extract.ModelExtractor
	if gemini, err := extract.NewGeminiExtractor(ctx, cfg.GeminiModel, cfg.ExtractTimeout, cfg.AmountLocale); err != nil {
		log.Warn().Err(err).Msg("model fallback disabled")
	} else {
		fallback = gemini
	}

	intake := pipeline.NewIntake(store, query.NewResolver(store), pipeline.Options{
		Fallback:             fallback,
		Publisher:            queue,
		Locale:               cfg.AmountLocale,
		DefaultCurrency:      cfg.DefaultCurrency,
		Location:             cfg.Location(),
		ProjectionMaxRetries: cfg.ProjectionMaxRetries,
		Logger:               logger.ForComponent(log, "pipeline"),
	})

	poller, err := telegram.NewPoller(cfg.BotToken, intake, store, logger.ForComponent(log, "telegram"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to telegram")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	log.Info().Msg("expense bot started")

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("poller stopped with error")
	}

	log.Info().Msg("draining projection queue...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	// Dead-lettered projections mean the ledger holds records the vector
	// memory is missing; surface them so the gap is visible in the logs.
	failed, err := jobStore.ListJobs(shutdownCtx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		log.Error().Err(err).Msg("failed to list dead-lettered projections")
	}
	for _, job := range failed {
		log.Warn().
			Str("job_id", job.JobID).
			Str("record_id", job.RecordID).
			Str("error", job.Error).
			Msg("projection dead-lettered, record missing from vector memory")
	}

	log.Info().Msg("expense bot exited")
}
