package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/cmd/settlement-api-service/cli"
	"github.com/crosscover-protocol/settlement-api-service/internal/api"
	"github.com/crosscover-protocol/settlement-api-service/internal/clients"
	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/healthcheck"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/metrics"
	"github.com/crosscover-protocol/settlement-api-service/internal/queue"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	relayclient "github.com/crosscover-protocol/settlement-api-service/internal/relay/client"
	"github.com/crosscover-protocol/settlement-api-service/internal/services"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx := context.Background()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up settlement db model")
	}

	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while connecting to settlement db")
	}

	queueClient, err := relayclient.NewQueueClient(cfg.Relay.Url, cfg.Relay.User, cfg.Relay.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("error while connecting to relay broker")
	}

	oracleClients := clients.New(cfg)
	channel := relay.NewChannel(cfg, dbClient, queueClient, oracleClients.FeeOracle)

	services := services.New(ctx, cfg, dbClient, channel)

	// Start the relay queue processing for the local chain
	queues := queue.New(cfg, queueClient, services, channel)

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of unprocessable messages.")
		replayed, replayErr := services.ReplayUnprocessableMessages(ctx)
		if replayErr != nil {
			log.Fatal().Err(replayErr).Msg("error while replaying unprocessable messages")
		}
		log.Info().Int("replayed", replayed).Msg("Reprocessing of unprocessable messages completed.")
		return
	}

	queues.StartReceivingMessages()

	if err := healthcheck.StartHealthCheckCron(ctx, queues, services, cfg.Server.HealthCheckInterval); err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up settlement api service")
	}
	if err = apiServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("error while starting settlement api service")
	}
}
