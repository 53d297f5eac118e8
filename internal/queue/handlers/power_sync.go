package handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// PowerSyncHandler overwrites the mirrored voting power with the absolute
// value in the payload, which makes redelivery and reordering of syncs for
// the same account safe without any bookkeeping here.
func (h *QueueHandler) PowerSyncHandler(ctx context.Context, env *relay.Envelope) *types.Error {
	var payload relay.PowerSyncPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal power sync payload")
		return types.NewInternalServiceError(err)
	}

	return h.Services.SetPower(ctx, payload.Account, payload.Power)
}
