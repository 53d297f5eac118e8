package handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// PolicyIssueHandler registers a relayed policy. Redeliveries surface as a
// duplicate policy ref and are acknowledged without touching the registry.
func (h *QueueHandler) PolicyIssueHandler(ctx context.Context, env *relay.Envelope) *types.Error {
	var payload relay.PolicyIssuePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal policy issue payload")
		return types.NewInternalServiceError(err)
	}

	procErr := h.Services.ProcessPolicyIssue(ctx, &payload)
	if procErr != nil {
		if procErr.ErrorCode == types.DuplicatePolicyRef {
			log.Ctx(ctx).Info().Str("policyRef", payload.PolicyRef).
				Msg("policy already registered, acknowledging redelivery")
			return nil
		}
		return procErr
	}
	return nil
}
