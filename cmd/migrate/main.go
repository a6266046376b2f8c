package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"boothdesk/internal/config"
	"boothdesk/internal/dbx"
	"boothdesk/internal/logger"
	"boothdesk/internal/migrations"

	"github.com/joho/godotenv"
)

func main() {
	command := flag.String("command", "up", "Migration command: up|down|status")
	flag.Parse()

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := dbx.Open(ctx, cfg.DBConnectionString, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer db.Close()

	switch *command {
	case "up":
		err = migrations.Up(ctx, db)
	case "down":
		err = migrations.Down(ctx, db)
	case "status":
		err = migrations.Status(ctx, db)
	default:
		logger.Fatal().Msgf("Invalid command: %s", *command)
	}
	if err != nil {
		logger.Fatal().Msgf("migrate %s failed: %v", *command, err)
	}
	logger.Info().Msgf("migrate %s done", *command)
}
