package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/metrics"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type ReserveStatePublic struct {
	Balance         uint64 `json:"balance"`
	ExecutedPayouts uint64 `json:"executed_payouts"`
}

// ProcessPayout executes a relayed payout instruction. A redelivered
// instruction for an already-paid claim id is a no-op; an underfunded
// reserve is terminal for this delivery and surfaces as
// InsufficientReserve, there is no internal retry.
func (s *Services) ProcessPayout(ctx context.Context, payload *relay.PayoutPayload) *types.Error {
	if payload.Amount == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.InvalidAmount, "payout amount must be positive")
	}

	err := s.DbClient.ExecutePayout(ctx, payload.ClaimID, payload.Claimant, payload.Amount, s.now())
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			log.Ctx(ctx).Info().Uint64("claimId", payload.ClaimID).
				Msg("payout already executed, acknowledging redelivery")
			return nil
		}
		if db.IsInsufficientBalanceError(err) {
			return types.NewErrorWithMsg(
				http.StatusBadRequest, types.InsufficientReserve, "reserve balance cannot cover the payout",
			)
		}
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", payload.ClaimID).
			Msg("error while executing payout")
		return types.NewInternalServiceError(err)
	}

	metrics.RecordPayoutExecuted()
	log.Ctx(ctx).Info().
		Uint64("claimId", payload.ClaimID).
		Str("claimant", payload.Claimant).
		Uint64("amount", payload.Amount).
		Msg("payout executed")
	return nil
}

// CreditReserve is the owner top-up path, on top of the premium split.
func (s *Services) CreditReserve(ctx context.Context, amount uint64) *types.Error {
	if amount == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroAmount, "credit amount must be positive")
	}
	if err := s.DbClient.CreditReserve(ctx, amount); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while crediting reserve")
		return types.NewInternalServiceError(err)
	}
	return nil
}

func (s *Services) GetReserveState(ctx context.Context) (*ReserveStatePublic, *types.Error) {
	state, err := s.DbClient.GetReserveState(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching reserve state")
		return nil, types.NewInternalServiceError(err)
	}
	return &ReserveStatePublic{Balance: state.Balance, ExecutedPayouts: state.ExecutedPayouts}, nil
}
