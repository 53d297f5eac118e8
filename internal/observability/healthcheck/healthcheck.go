package healthcheck

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/queue"
	"github.com/crosscover-protocol/settlement-api-service/internal/services"
)

var logger zerolog.Logger = log.Logger

const pingTimeout = 5 * time.Second

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// StartHealthCheckCron pings the database and the relay broker on a fixed
// schedule and terminates the process when either is unreachable; the
// supervisor restarts with fresh connections.
func StartHealthCheckCron(ctx context.Context, queues *queue.Queues, services *services.Services, cronTime int) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if cronTime == 0 {
		cronTime = 60
	}

	cronSpec := fmt.Sprintf("@every %ds", cronTime)

	_, err := c.AddFunc(cronSpec, func() {
		connectionHealthCheck(queues, services)
	})

	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func connectionHealthCheck(queues *queue.Queues, services *services.Services) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := services.DoHealthCheck(ctx); err != nil {
		logger.Error().Err(err).Msg("Database connection is not healthy.")
		terminateService()
	}

	if err := queues.IsConnectionHealthy(ctx); err != nil {
		logger.Error().Err(err).Msg("Relay broker connection is not healthy.")
		terminateService()
	}
}

func terminateService() {
	logger.Fatal().Msg("Terminating service due to health check failure.")
	os.Exit(1)
}
