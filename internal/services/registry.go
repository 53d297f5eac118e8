package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type PolicyPublic struct {
	PolicyRef      string `json:"policy_ref"`
	PoolID         string `json:"pool_id"`
	Buyer          string `json:"buyer"`
	CoverageAmount uint64 `json:"coverage_amount"`
	StartTs        int64  `json:"start_ts"`
	EndTs          int64  `json:"end_ts"`
	Active         bool   `json:"active"`
}

// ProcessPolicyIssue stores the relayed policy terms. The unique policy_ref
// index is the idempotency boundary: a redelivered issuance surfaces as
// DuplicatePolicyRef and the caller acknowledges it as already applied.
func (s *Services) ProcessPolicyIssue(ctx context.Context, payload *relay.PolicyIssuePayload) *types.Error {
	if payload.PolicyRef == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "policy ref is required")
	}

	err := s.DbClient.InsertPolicy(ctx, &model.PolicyDocument{
		PolicyRef:      payload.PolicyRef,
		PoolID:         payload.PoolID,
		Buyer:          payload.Buyer,
		CoverageAmount: payload.CoverageAmount,
		StartTs:        payload.StartTs,
		EndTs:          payload.EndTs,
	})
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			return types.NewErrorWithMsg(
				http.StatusForbidden, types.DuplicatePolicyRef, "policy ref is already registered",
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("policyRef", payload.PolicyRef).
			Msg("error while inserting policy")
		return types.NewInternalServiceError(err)
	}

	log.Ctx(ctx).Info().
		Str("policyRef", payload.PolicyRef).
		Str("buyer", payload.Buyer).
		Msg("policy registered")
	return nil
}

func (s *Services) GetPolicyByRef(ctx context.Context, policyRef string) (*PolicyPublic, *types.Error) {
	policy, err := s.DbClient.GetPolicyByRef(ctx, policyRef)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "policy not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("policyRef", policyRef).Msg("error while fetching policy")
		return nil, types.NewInternalServiceError(err)
	}
	return &PolicyPublic{
		PolicyRef:      policy.PolicyRef,
		PoolID:         policy.PoolID,
		Buyer:          policy.Buyer,
		CoverageAmount: policy.CoverageAmount,
		StartTs:        policy.StartTs,
		EndTs:          policy.EndTs,
		Active:         policy.ActiveAt(s.now().Unix()),
	}, nil
}
