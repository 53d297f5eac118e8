package handlers

import (
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/services"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type buyCoverageRequest struct {
	Buyer             string `json:"buyer"`
	DestChainSelector uint64 `json:"dest_chain_selector"`
	DestReceiver      string `json:"dest_receiver"`
	PoolID            string `json:"pool_id"`
	CoverageAmount    uint64 `json:"coverage_amount"`
	StartTs           int64  `json:"start_ts"`
	EndTs             int64  `json:"end_ts"`
	Premium           uint64 `json:"premium"`
	PaidValue         uint64 `json:"paid_value"`
	FeeBudget         uint64 `json:"fee_budget"`
}

// BuyCoverage @Summary Buy coverage
// @Description Splits the premium between pool and reserve and relays the policy issuance to the registry chain
// @Accept json
// @Produce json
// @Param request body buyCoverageRequest true "Coverage purchase"
// @Success 200 {object} PublicResponse[services.CoveragePublic] "Issued coverage"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/coverage [post]
func (h *Handler) BuyCoverage(request *http.Request) (*Result, *types.Error) {
	var payload buyCoverageRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Buyer == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "buyer is required")
	}
	if payload.DestChainSelector == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "dest_chain_selector is required")
	}
	if payload.DestReceiver == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "dest_receiver is required")
	}

	terms := &services.CoverageTerms{
		PoolID:         payload.PoolID,
		CoverageAmount: payload.CoverageAmount,
		StartTs:        payload.StartTs,
		EndTs:          payload.EndTs,
	}
	coverage, err := h.services.BuyCoverage(
		request.Context(), payload.Buyer, payload.DestChainSelector, payload.DestReceiver,
		terms, payload.Premium, payload.PaidValue, payload.FeeBudget,
	)
	if err != nil {
		return nil, err
	}
	return NewResult(coverage), nil
}

// PreviewAllocation @Summary Preview a premium split
// @Produce json
// @Param premium query int true "Premium amount"
// @Success 200 {object} PublicResponse[services.AllocationPublic] "Premium allocation"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/coverage/preview [get]
func (h *Handler) PreviewAllocation(request *http.Request) (*Result, *types.Error) {
	premium, err := parseUint64Query(request, "premium", true)
	if err != nil {
		return nil, err
	}

	allocation, svcErr := h.services.PreviewAllocation(request.Context(), premium)
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult(allocation), nil
}
