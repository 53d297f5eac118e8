package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/metrics"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type ClaimPublic struct {
	ID               uint64 `json:"id"`
	PolicyID         string `json:"policy_id"`
	Claimant         string `json:"claimant"`
	Amount           uint64 `json:"amount"`
	YesVotes         uint64 `json:"yes_votes"`
	NoVotes          uint64 `json:"no_votes"`
	DstChainSelector uint64 `json:"dst_chain_selector"`
	DstReceiver      string `json:"dst_receiver"`
	OpenedAt         int64  `json:"opened_at"`
	Finalized        bool   `json:"finalized"`
	Approved         bool   `json:"approved"`
	PayoutDispatched bool   `json:"payout_dispatched"`
	PayoutMessageID  string `json:"payout_message_id,omitempty"`
}

func newClaimPublic(claim *model.ClaimDocument) *ClaimPublic {
	return &ClaimPublic{
		ID:               claim.ID,
		PolicyID:         claim.PolicyID,
		Claimant:         claim.Claimant,
		Amount:           claim.Amount,
		YesVotes:         claim.YesVotes,
		NoVotes:          claim.NoVotes,
		DstChainSelector: claim.DstChainSelector,
		DstReceiver:      claim.DstReceiver,
		OpenedAt:         claim.OpenedAt.Unix(),
		Finalized:        claim.Finalized,
		Approved:         claim.Approved,
		PayoutDispatched: claim.PayoutDispatched,
		PayoutMessageID:  claim.PayoutMessageID,
	}
}

// OpenClaim admits a claim without validating the policy: the registry
// lives on another chain and is not synchronously queryable. Bogus claims
// are expected to die at the vote.
func (s *Services) OpenClaim(
	ctx context.Context, policyID, claimant string, amount, dstChainSelector uint64, dstReceiver string,
) (*ClaimPublic, *types.Error) {
	if amount == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.InvalidAmount, "claim amount must be positive")
	}

	claim, err := s.DbClient.InsertClaim(
		ctx, policyID, claimant, amount, dstChainSelector, dstReceiver, s.now(),
	)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("claimant", claimant).Msg("error while opening claim")
		return nil, types.NewInternalServiceError(err)
	}

	log.Ctx(ctx).Info().
		Uint64("claimId", claim.ID).
		Str("policyId", policyID).
		Str("claimant", claimant).
		Msg("claim opened")
	return newClaimPublic(claim), nil
}

// Vote casts the voter's mirrored power at vote time. A zero-power vote is
// accepted and recorded with zero weight; it still blocks a second vote.
func (s *Services) Vote(ctx context.Context, claimID uint64, voter string, support bool) (*ClaimPublic, *types.Error) {
	weight, err := s.DbClient.GetVotingPower(ctx, voter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("voter", voter).Msg("error while fetching voter power")
		return nil, types.NewInternalServiceError(err)
	}

	err = s.DbClient.CastVote(ctx, claimID, voter, support, weight)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "claim not found")
		}
		if db.IsDuplicateKeyError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.AlreadyVoted, "account already voted on this claim",
			)
		}
		if db.IsInvalidStateError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.ClaimFinalized, "claim voting is closed",
			)
		}
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).Msg("error while casting vote")
		return nil, types.NewInternalServiceError(err)
	}

	claim, err := s.DbClient.GetClaimByID(ctx, claimID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).Msg("error while fetching claim after vote")
		return nil, types.NewInternalServiceError(err)
	}
	return newClaimPublic(claim), nil
}

// FinalizeClaim latches the outcome first, in its own transaction, and only
// then attempts the payout send. A send failure (most commonly an
// insufficient fee budget) therefore leaves the claim finalized but
// undispatched; RetryPayout picks it up later.
func (s *Services) FinalizeClaim(ctx context.Context, claimID, feeBudget uint64) (*ClaimPublic, *types.Error) {
	claim, err := s.DbClient.GetClaimByID(ctx, claimID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "claim not found")
		}
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).Msg("error while fetching claim")
		return nil, types.NewInternalServiceError(err)
	}
	if claim.Finalized {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.AlreadyFinalized, "claim is already finalized",
		)
	}

	params, err := s.DbClient.GetProtocolParams(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching protocol params")
		return nil, types.NewInternalServiceError(err)
	}
	votingEnds := claim.OpenedAt.Add(time.Duration(params.VotingPeriodSecs) * time.Second)
	if s.now().Before(votingEnds) {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.VotingStillOpen, "voting period has not elapsed",
		)
	}

	finalized, err := s.DbClient.FinalizeClaim(ctx, claimID, params.QuorumBps)
	if err != nil {
		if db.IsInvalidStateError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.AlreadyFinalized, "claim is already finalized",
			)
		}
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "claim not found")
		}
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).Msg("error while finalizing claim")
		return nil, types.NewInternalServiceError(err)
	}

	metrics.RecordClaimFinalized(finalized.Approved)
	log.Ctx(ctx).Info().
		Uint64("claimId", claimID).
		Bool("approved", finalized.Approved).
		Uint64("yesVotes", finalized.YesVotes).
		Uint64("noVotes", finalized.NoVotes).
		Msg("claim finalized")

	if !finalized.Approved {
		return newClaimPublic(finalized), nil
	}

	if sendErr := s.dispatchPayout(ctx, finalized, feeBudget); sendErr != nil {
		return newClaimPublic(finalized), sendErr
	}

	claim, err = s.DbClient.GetClaimByID(ctx, claimID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).
			Msg("error while fetching claim after payout dispatch")
		return nil, types.NewInternalServiceError(err)
	}
	return newClaimPublic(claim), nil
}

// RetryPayout re-sends the payout of an approved claim whose earlier send
// failed. The claim stays latched either way; only dispatch state moves.
func (s *Services) RetryPayout(ctx context.Context, claimID, feeBudget uint64) (*ClaimPublic, *types.Error) {
	claim, err := s.DbClient.GetClaimByID(ctx, claimID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "claim not found")
		}
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).Msg("error while fetching claim")
		return nil, types.NewInternalServiceError(err)
	}
	if !claim.Finalized || !claim.Approved {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.Forbidden, "claim has no approved payout to dispatch",
		)
	}
	if claim.PayoutDispatched {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.Forbidden, "payout is already dispatched",
		)
	}

	if sendErr := s.dispatchPayout(ctx, claim, feeBudget); sendErr != nil {
		return newClaimPublic(claim), sendErr
	}

	claim, err = s.DbClient.GetClaimByID(ctx, claimID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).
			Msg("error while fetching claim after payout dispatch")
		return nil, types.NewInternalServiceError(err)
	}
	return newClaimPublic(claim), nil
}

func (s *Services) dispatchPayout(ctx context.Context, claim *model.ClaimDocument, feeBudget uint64) *types.Error {
	payload := relay.PayoutPayload{
		ClaimID:  claim.ID,
		Claimant: claim.Claimant,
		Amount:   claim.Amount,
	}
	messageID, sendErr := s.relay.Send(
		ctx, claim.DstChainSelector, claim.DstReceiver, relay.PayoutKind, payload, feeBudget,
	)
	if sendErr != nil {
		log.Ctx(ctx).Warn().Err(sendErr).Uint64("claimId", claim.ID).
			Msg("payout message not sent, claim stays finalized and undispatched")
		return sendErr
	}

	if err := s.DbClient.MarkPayoutDispatched(ctx, claim.ID, messageID); err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claim.ID).
			Msg("error while marking payout dispatched")
		return types.NewInternalServiceError(err)
	}
	return nil
}

// SetParams updates the governance knobs. Claims already open finalize
// under whatever values hold at finalization time.
func (s *Services) SetParams(ctx context.Context, votingPeriodSecs, quorumBps uint64) *types.Error {
	if quorumBps > model.BpsDenominator {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidQuorum, "quorum bps cannot exceed 10000",
		)
	}
	if votingPeriodSecs == 0 {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidDuration, "voting period must be positive",
		)
	}
	if err := s.DbClient.UpdateGovernanceParams(ctx, votingPeriodSecs, quorumBps); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while updating governance params")
		return types.NewInternalServiceError(err)
	}
	return nil
}

func (s *Services) GetClaim(ctx context.Context, claimID uint64) (*ClaimPublic, *types.Error) {
	claim, err := s.DbClient.GetClaimByID(ctx, claimID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "claim not found")
		}
		log.Ctx(ctx).Error().Err(err).Uint64("claimId", claimID).Msg("error while fetching claim")
		return nil, types.NewInternalServiceError(err)
	}
	return newClaimPublic(claim), nil
}
