package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/services"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type QueueHandler struct {
	Services *services.Services
	Channel  *relay.Channel
}

func NewQueueHandler(services *services.Services, channel *relay.Channel) *QueueHandler {
	return &QueueHandler{
		Services: services,
		Channel:  channel,
	}
}

// HandleMessage is the single consumer entrypoint for the local chain
// queue. Outcomes map onto the broker like this: a nil return acknowledges
// the delivery; a non-nil return leaves it queued for redelivery. Malformed
// bodies and handler failures are parked as unprocessable messages and then
// acknowledged, so one poison message cannot wedge the queue.
func (h *QueueHandler) HandleMessage(ctx context.Context, messageBody, receipt string) error {
	env, err := relay.DecodeEnvelope(messageBody)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to decode relay envelope")
		if saveErr := h.Services.SaveUnprocessableMessages(ctx, messageBody, receipt); saveErr != nil {
			return saveErr
		}
		return nil
	}

	ctx = log.Ctx(ctx).With().
		Str("messageId", env.MessageID).
		Str("kind", env.Kind.ToString()).
		Logger().WithContext(ctx)

	if authErr := h.Channel.Authenticate(ctx, env); authErr != nil {
		if authErr.StatusCode == http.StatusForbidden {
			// Fail-closed and acknowledged: an unauthenticated message is
			// dropped, never parked for replay.
			log.Ctx(ctx).Warn().Err(authErr).
				Uint64("sourceChainSelector", env.SourceChainSelector).
				Msg("rejected relay message from unauthenticated origin")
			return nil
		}
		return authErr
	}

	if handleErr := h.dispatch(ctx, env); handleErr != nil {
		log.Ctx(ctx).Error().Err(handleErr).Msg("error while processing relay message")
		if saveErr := h.Services.SaveUnprocessableMessages(ctx, messageBody, receipt); saveErr != nil {
			return saveErr
		}
		return nil
	}

	return nil
}

func (h *QueueHandler) dispatch(ctx context.Context, env *relay.Envelope) *types.Error {
	switch env.Kind {
	case relay.PolicyIssueKind:
		return h.PolicyIssueHandler(ctx, env)
	case relay.PowerSyncKind:
		return h.PowerSyncHandler(ctx, env)
	case relay.PayoutKind:
		return h.PayoutHandler(ctx, env)
	default:
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "unknown relay message kind",
		)
	}
}
