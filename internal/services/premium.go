package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/metrics"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type CoverageTerms struct {
	PoolID         string `json:"pool_id"`
	CoverageAmount uint64 `json:"coverage_amount"`
	StartTs        int64  `json:"start_ts"`
	EndTs          int64  `json:"end_ts"`
}

type AllocationPublic struct {
	Premium   uint64 `json:"premium"`
	ToPool    uint64 `json:"to_pool"`
	ToReserve uint64 `json:"to_reserve"`
}

type CoveragePublic struct {
	PolicyRef string `json:"policy_ref"`
	MessageID string `json:"message_id"`
	ToPool    uint64 `json:"to_pool"`
	ToReserve uint64 `json:"to_reserve"`
}

// PreviewAllocation applies the currently stored split. The two legs always
// sum back to the premium; the reserve takes the rounding remainder.
func (s *Services) PreviewAllocation(ctx context.Context, premium uint64) (*AllocationPublic, *types.Error) {
	params, err := s.DbClient.GetProtocolParams(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching protocol params")
		return nil, types.NewInternalServiceError(err)
	}
	toPool, toReserve := model.SplitPremium(premium, params.BpsToPool)
	return &AllocationPublic{Premium: premium, ToPool: toPool, ToReserve: toReserve}, nil
}

// BuyCoverage validates the terms, relays the policy issuance to the
// registry chain and only then books the premium split. Ordering matters:
// a rejected or unaffordable send leaves the pool and reserve untouched.
func (s *Services) BuyCoverage(
	ctx context.Context, buyer string, destChainSelector uint64, encodedReceiver string,
	terms *CoverageTerms, premium, paidValue, feeBudget uint64,
) (*CoveragePublic, *types.Error) {
	if premium == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroAmount, "premium must be positive")
	}
	if terms.EndTs <= terms.StartTs {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidDuration, "coverage must end after it starts",
		)
	}
	duration := time.Duration(terms.EndTs-terms.StartTs) * time.Second
	if duration > s.cfg.Protocol.MaxCoverageDuration {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidDuration, "coverage duration exceeds the maximum",
		)
	}
	if paidValue < premium {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InsufficientPremium, "paid value does not cover the premium",
		)
	}

	params, err := s.DbClient.GetProtocolParams(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching protocol params")
		return nil, types.NewInternalServiceError(err)
	}
	toPool, toReserve := model.SplitPremium(premium, params.BpsToPool)

	policyRef := uuid.NewString()
	payload := relay.PolicyIssuePayload{
		PolicyRef:      policyRef,
		PoolID:         terms.PoolID,
		Buyer:          buyer,
		CoverageAmount: terms.CoverageAmount,
		StartTs:        terms.StartTs,
		EndTs:          terms.EndTs,
	}

	messageID, sendErr := s.relay.Send(
		ctx, destChainSelector, encodedReceiver, relay.PolicyIssueKind, payload, feeBudget,
	)
	if sendErr != nil {
		return nil, sendErr
	}

	if err := s.DbClient.CreditPremiumSplit(ctx, toPool, toReserve); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("policyRef", policyRef).
			Msg("error while booking premium split")
		return nil, types.NewInternalServiceError(err)
	}

	metrics.RecordPremiumAllocated(toPool, toReserve)
	log.Ctx(ctx).Info().
		Str("policyRef", policyRef).
		Str("buyer", buyer).
		Uint64("toPool", toPool).
		Uint64("toReserve", toReserve).
		Msg("premium allocated")

	return &CoveragePublic{
		PolicyRef: policyRef,
		MessageID: messageID,
		ToPool:    toPool,
		ToReserve: toReserve,
	}, nil
}

// SetSplit updates the premium split for future premiums only; amounts
// already routed stay where they landed.
func (s *Services) SetSplit(ctx context.Context, bpsToPool, bpsToReserve uint64) *types.Error {
	if bpsToPool+bpsToReserve != model.BpsDenominator {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidSplit, "premium split must sum to 10000 bps",
		)
	}
	if err := s.DbClient.UpdateSplit(ctx, bpsToPool, bpsToReserve); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while updating premium split")
		return types.NewInternalServiceError(err)
	}
	return nil
}
