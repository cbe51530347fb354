package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/mulengadev/lendstack/internal/app"
	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/di"
	"github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/infrastructure/api/routers"
	"github.com/mulengadev/lendstack/internal/infrastructure/database/db_client"
	"github.com/mulengadev/lendstack/pkg/log"
)

const (
	appName = "lendstack"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	godotenv.Load()
	cfg := config.Load()

	log.Init(appName, log.WithConsoleLogger())
	logger := log.GetLogger()

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}

	container, err := di.NewContainer(db, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build the application container")
	}

	sweep := app.NewSweepProcess(container.SweepInteractor, cfg.Process)
	go sweep.Run(ctx)

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	service.Run(ctx, router)
}
