package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/queue/handlers"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay/client"
	"github.com/crosscover-protocol/settlement-api-service/internal/services"
)

type MessageHandler func(ctx context.Context, messageBody, receipt string) error

// Queues consumes the local chain's relay queue. Remote chains are reached
// through the same broker via Channel.Send; this type owns only the
// receive side.
type Queues struct {
	queueClient       client.QueueClient
	localQueueName    string
	Handlers          *handlers.QueueHandler
	processingTimeout time.Duration
}

func New(
	cfg *config.Config, queueClient client.QueueClient,
	service *services.Services, channel *relay.Channel,
) *Queues {
	queueHandlers := handlers.NewQueueHandler(service, channel)
	localQueueName := cfg.Relay.QueueNameForChain(cfg.Protocol.LocalChainSelector)

	service.SetLocalRequeue(func(ctx context.Context, messageBody string) error {
		return queueClient.Publish(ctx, localQueueName, messageBody, nil)
	})

	return &Queues{
		queueClient:       queueClient,
		localQueueName:    localQueueName,
		Handlers:          queueHandlers,
		processingTimeout: time.Duration(cfg.Relay.ProcessingTimeout) * time.Second,
	}
}

// Start message processing from the local chain queue
func (q *Queues) StartReceivingMessages() {
	startQueueMessageProcessing(
		q.queueClient, q.localQueueName, q.Handlers.HandleMessage, log.Logger, q.processingTimeout,
	)
}

// Turn off all message processing
func (q *Queues) StopReceivingMessages() {
	if err := q.queueClient.Stop(); err != nil {
		log.Error().Err(err).Msg("error while stopping queue client")
	}
}

func (q *Queues) IsConnectionHealthy(ctx context.Context) error {
	return q.queueClient.Ping(ctx)
}

func startQueueMessageProcessing(
	queueClient client.QueueClient, queueName string, handler MessageHandler,
	logger zerolog.Logger, timeout time.Duration,
) {
	messagesChan, err := queueClient.ReceiveMessages(queueName)
	if err != nil {
		logger.Fatal().Err(err).Str("queueName", queueName).Msg("error setting up message channel from queue")
	}

	go func() {
		for message := range messagesChan {
			// For each message, create a new context with a deadline or timeout
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err := handler(ctx, message.Body, message.Receipt)
			if err != nil {
				logger.Error().Err(err).Str("queueName", queueName).Msg("error while processing message from queue")
				cancel()
				continue
			}

			delErr := queueClient.DeleteMessage(message.Receipt)
			if delErr != nil {
				logger.Error().Err(delErr).Str("queueName", queueName).Msg("error while deleting message from queue")
			}
			cancel()
		}
	}()
}
