package handlers

import (
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type openClaimRequest struct {
	PolicyID         string `json:"policy_id"`
	Claimant         string `json:"claimant"`
	Amount           uint64 `json:"amount"`
	DstChainSelector uint64 `json:"dst_chain_selector"`
	DstReceiver      string `json:"dst_receiver"`
}

type voteRequest struct {
	Voter   string `json:"voter"`
	Support bool   `json:"support"`
}

type finalizeRequest struct {
	FeeBudget uint64 `json:"fee_budget"`
}

// OpenClaim @Summary Open a claim against a policy
// @Accept json
// @Produce json
// @Param request body openClaimRequest true "Claim"
// @Success 200 {object} PublicResponse[services.ClaimPublic] "Opened claim"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/claims [post]
func (h *Handler) OpenClaim(request *http.Request) (*Result, *types.Error) {
	var payload openClaimRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Claimant == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "claimant is required")
	}
	if payload.DstChainSelector == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "dst_chain_selector is required")
	}
	if payload.DstReceiver == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "dst_receiver is required")
	}

	claim, err := h.services.OpenClaim(
		request.Context(), payload.PolicyID, payload.Claimant, payload.Amount,
		payload.DstChainSelector, payload.DstReceiver,
	)
	if err != nil {
		return nil, err
	}
	return NewResult(claim), nil
}

// Vote @Summary Vote on an open claim
// @Description Casts the voter's mirrored power for or against the claim
// @Accept json
// @Produce json
// @Param id path int true "Claim id"
// @Param request body voteRequest true "Vote"
// @Success 200 {object} PublicResponse[services.ClaimPublic] "Claim with updated tallies"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/claims/{id}/votes [post]
func (h *Handler) Vote(request *http.Request) (*Result, *types.Error) {
	claimID, err := parseUint64PathParam(request, "id")
	if err != nil {
		return nil, err
	}

	var payload voteRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Voter == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "voter is required")
	}

	claim, svcErr := h.services.Vote(request.Context(), claimID, payload.Voter, payload.Support)
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult(claim), nil
}

// FinalizeClaim @Summary Finalize an open claim
// @Description Latches the voting outcome and, when approved, dispatches the payout message
// @Accept json
// @Produce json
// @Param id path int true "Claim id"
// @Param request body finalizeRequest true "Finalization"
// @Success 200 {object} PublicResponse[services.ClaimPublic] "Finalized claim"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/claims/{id}/finalize [post]
func (h *Handler) FinalizeClaim(request *http.Request) (*Result, *types.Error) {
	claimID, err := parseUint64PathParam(request, "id")
	if err != nil {
		return nil, err
	}

	var payload finalizeRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}

	claim, svcErr := h.services.FinalizeClaim(request.Context(), claimID, payload.FeeBudget)
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult(claim), nil
}

// GetClaim @Summary Get a claim
// @Produce json
// @Param id path int true "Claim id"
// @Success 200 {object} PublicResponse[services.ClaimPublic] "Claim"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/claims/{id} [get]
func (h *Handler) GetClaim(request *http.Request) (*Result, *types.Error) {
	claimID, err := parseUint64PathParam(request, "id")
	if err != nil {
		return nil, err
	}

	claim, svcErr := h.services.GetClaim(request.Context(), claimID)
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult(claim), nil
}
