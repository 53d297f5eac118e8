package services

import (
	"context"
	"encoding/hex"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type ProtocolParamsPublic struct {
	BpsToPool        uint64 `json:"bps_to_pool"`
	BpsToReserve     uint64 `json:"bps_to_reserve"`
	VotingPeriodSecs uint64 `json:"voting_period_secs"`
	QuorumBps        uint64 `json:"quorum_bps"`
}

// AllowlistChain toggles a chain selector on the source or dest allowlist.
// Disabling is an immediate fail-closed for future traffic; messages already
// queued are rejected at receive time by the same check.
func (s *Services) AllowlistChain(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, enabled bool,
) *types.Error {
	if chainSelector == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "chain selector is required")
	}
	if err := s.DbClient.SetChainAllowlist(ctx, direction, chainSelector, enabled); err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("chainSelector", chainSelector).
			Msg("error while updating chain allowlist")
		return types.NewInternalServiceError(err)
	}
	log.Ctx(ctx).Info().
		Str("direction", direction.ToString()).
		Uint64("chainSelector", chainSelector).
		Bool("enabled", enabled).
		Msg("chain allowlist updated")
	return nil
}

func (s *Services) AllowlistCounterparty(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64,
	counterparty string, enabled bool,
) *types.Error {
	if chainSelector == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "chain selector is required")
	}
	if _, err := hex.DecodeString(counterparty); err != nil || counterparty == "" {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "counterparty must be a hex encoded identity",
		)
	}
	if err := s.DbClient.SetCounterpartyAllowlist(ctx, direction, chainSelector, counterparty, enabled); err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("chainSelector", chainSelector).
			Msg("error while updating counterparty allowlist")
		return types.NewInternalServiceError(err)
	}
	log.Ctx(ctx).Info().
		Str("direction", direction.ToString()).
		Uint64("chainSelector", chainSelector).
		Str("counterparty", counterparty).
		Bool("enabled", enabled).
		Msg("counterparty allowlist updated")
	return nil
}

func (s *Services) SetGasLimit(ctx context.Context, chainSelector, gasLimit uint64) *types.Error {
	if chainSelector == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "chain selector is required")
	}
	if err := s.DbClient.SetGasLimit(ctx, chainSelector, gasLimit); err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("chainSelector", chainSelector).
			Msg("error while setting gas limit")
		return types.NewInternalServiceError(err)
	}
	return nil
}

func (s *Services) GetProtocolParams(ctx context.Context) (*ProtocolParamsPublic, *types.Error) {
	params, err := s.DbClient.GetProtocolParams(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching protocol params")
		return nil, types.NewInternalServiceError(err)
	}
	return &ProtocolParamsPublic{
		BpsToPool:        params.BpsToPool,
		BpsToReserve:     params.BpsToReserve,
		VotingPeriodSecs: params.VotingPeriodSecs,
		QuorumBps:        params.QuorumBps,
	}, nil
}
