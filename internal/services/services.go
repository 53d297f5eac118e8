package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/metrics"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// Services contains the business logic of every settlement module and is
// the only layer that talks to both the database and the relay channel.
type Services struct {
	DbClient db.DBClient
	cfg      *config.Config
	relay    relay.Sender
	// requeue republishes a raw message body onto the local chain queue,
	// used by the unprocessable-message replay. Wired by the queue layer.
	requeue func(ctx context.Context, messageBody string) error
	now     func() time.Time
}

func New(ctx context.Context, cfg *config.Config, dbClient db.DBClient, sender relay.Sender) *Services {
	return &Services{
		DbClient: dbClient,
		cfg:      cfg,
		relay:    sender,
		now:      time.Now,
	}
}

// SetLocalRequeue is called by the queue layer once its client exists.
func (s *Services) SetLocalRequeue(requeue func(ctx context.Context, messageBody string) error) {
	s.requeue = requeue
}

// DoHealthCheck checks the health of the services by ping the database.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	return s.DbClient.Ping(ctx)
}

func (s *Services) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt string) *types.Error {
	err := s.DbClient.SaveUnprocessableMessage(ctx, messageBody, receipt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving unprocessable message")
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "error while saving unprocessable message")
	}
	metrics.RecordUnprocessableMessage()
	return nil
}

// ReplayUnprocessableMessages republishes every stored message onto the
// local queue and removes the stored copy once requeued. Receiver
// idempotency makes replaying an already-applied message harmless.
func (s *Services) ReplayUnprocessableMessages(ctx context.Context) (int, *types.Error) {
	if s.requeue == nil {
		return 0, types.NewErrorWithMsg(
			http.StatusServiceUnavailable, types.InternalServiceError, "message replay is not available",
		)
	}

	messages, err := s.DbClient.FindUnprocessableMessages(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching unprocessable messages")
		return 0, types.NewInternalServiceError(err)
	}

	replayed := 0
	for _, msg := range messages {
		if err := s.requeue(ctx, msg.MessageBody); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to requeue unprocessable message")
			return replayed, types.NewInternalServiceError(err)
		}
		if err := s.DbClient.DeleteUnprocessableMessage(ctx, msg.Receipt); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to delete replayed unprocessable message")
			return replayed, types.NewInternalServiceError(err)
		}
		replayed++
	}
	return replayed, nil
}
