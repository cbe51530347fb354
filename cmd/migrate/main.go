package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/infrastructure/database/db_client"
	"github.com/mulengadev/lendstack/internal/infrastructure/database/repositories"
	"github.com/mulengadev/lendstack/internal/legacy"
	"github.com/mulengadev/lendstack/pkg/log"
)

// Backfill runner: replays the legacy free-text transaction table into the
// structured schema. Safe to run repeatedly; rows already migrated are
// skipped.
func main() {
	godotenv.Load()
	cfg := config.Load()

	log.Init("lendstack-migrate", log.WithConsoleLogger())
	logger := log.GetLogger()

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	backfiller := legacy.NewBackfiller(
		repositories.NewLegacyRepositoryImpl(db),
		repositories.NewTransactionRepositoryImpl(db),
		repositories.NewLoanRepositoryImpl(db),
	)

	report, err := backfiller.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Backfill failed")
	}

	logger.Info().
		Int("transactions", report.Transactions).
		Int("loans", report.Loans).
		Int("skipped", report.Skipped).
		Int("unparseable", report.Unparseable).
		Msg("Backfill finished")
}
