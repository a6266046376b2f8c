package main

import (
	"context"
	"database/sql"
	"flag"
	"os/signal"
	"syscall"

	"boothdesk/internal/config"
	"boothdesk/internal/dbx"
	ai "boothdesk/internal/generation"
	"boothdesk/internal/logger"
	"boothdesk/internal/orchestrator/generation"
	"boothdesk/internal/pubsub"
	"boothdesk/internal/repository"
	"boothdesk/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// Parse mode flag
	mode := flag.String("mode", "", "Orchestrator mode: generation")
	flag.Parse()

	// Initialize logger
	logger := logger.New()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize DB connection
	db, err := dbx.Open(ctx, cfg.DBConnectionString, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer db.Close()
	logger.Info().Msg("Database connection established")

	// Dispatch to the selected orchestrator
	var runErr error
	switch *mode {
	case "generation":
		runErr = runGeneration(ctx, cfg, db, logger)
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if runErr != nil {
		logger.Fatal().Msgf("%s orchestrator failed: %v", *mode, runErr)
	}

	logger.Info().Msgf("%s orchestrator stopped gracefully", *mode)
}

func runGeneration(ctx context.Context, cfg *config.Config, db *sql.DB, logger zerolog.Logger) error {
	if !cfg.PubSubEnabled() {
		logger.Fatal().Msg("GCP_PROJECT_ID is required for the generation orchestrator")
	}

	aiKey, err := service.ResolveAIKey(ctx, cfg)
	if err != nil {
		return err
	}
	client := ai.NewHTTPClient(cfg.AIGenerationURL, aiKey, cfg.AIRequestTimeout)

	sub, err := pubsub.NewSubscriber(ctx, cfg, cfg.GenerationMaxOutstanding)
	if err != nil {
		return err
	}
	defer sub.Close()

	processor := generation.NewProcessor(cfg, repository.NewContentRepo(db), client, logger)
	return generation.Run(ctx, logger, cfg, sub, processor)
}
