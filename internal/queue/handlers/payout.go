package handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// PayoutHandler executes a relayed payout against the reserve. Duplicates
// are absorbed inside ProcessPayout. An underfunded reserve is not retried
// here; the failure parks the message as unprocessable and an operator
// replays it after topping the reserve up.
func (h *QueueHandler) PayoutHandler(ctx context.Context, env *relay.Envelope) *types.Error {
	var payload relay.PayoutPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal payout payload")
		return types.NewInternalServiceError(err)
	}

	return h.Services.ProcessPayout(ctx, &payload)
}
