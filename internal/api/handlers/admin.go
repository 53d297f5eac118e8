package handlers

import (
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type allowlistRequest struct {
	ChainSelector uint64 `json:"chain_selector"`
	// Counterparty toggles a sender/receiver entry when set; an empty value
	// toggles the chain itself.
	Counterparty string `json:"counterparty,omitempty"`
	Enabled      bool   `json:"enabled"`
}

type splitRequest struct {
	BpsToPool    uint64 `json:"bps_to_pool"`
	BpsToReserve uint64 `json:"bps_to_reserve"`
}

type paramsRequest struct {
	VotingPeriodSecs uint64 `json:"voting_period_secs"`
	QuorumBps        uint64 `json:"quorum_bps"`
}

type gasLimitRequest struct {
	ChainSelector uint64 `json:"chain_selector"`
	GasLimit      uint64 `json:"gas_limit"`
}

type setPowerRequest struct {
	Account string `json:"account"`
	Power   uint64 `json:"power"`
}

type creditReserveRequest struct {
	Amount uint64 `json:"amount"`
}

type retryPayoutRequest struct {
	FeeBudget uint64 `json:"fee_budget"`
}

type replayResponse struct {
	Replayed int `json:"replayed"`
}

func (h *Handler) updateAllowlist(request *http.Request, direction model.AllowlistDirection) (*Result, *types.Error) {
	var payload allowlistRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}

	var svcErr *types.Error
	if payload.Counterparty == "" {
		svcErr = h.services.AllowlistChain(request.Context(), direction, payload.ChainSelector, payload.Enabled)
	} else {
		svcErr = h.services.AllowlistCounterparty(
			request.Context(), direction, payload.ChainSelector, payload.Counterparty, payload.Enabled,
		)
	}
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult("ok"), nil
}

// UpdateSourceAllowlist @Summary Update the inbound allowlist
// @Description Toggles a source chain or a remote sender on the receive-side allowlist
// @Accept json
// @Produce json
// @Param request body allowlistRequest true "Allowlist entry"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/allowlist/source [post]
func (h *Handler) UpdateSourceAllowlist(request *http.Request) (*Result, *types.Error) {
	return h.updateAllowlist(request, model.AllowlistSource)
}

// UpdateDestAllowlist @Summary Update the outbound allowlist
// @Description Toggles a destination chain or a remote receiver on the send-side allowlist
// @Accept json
// @Produce json
// @Param request body allowlistRequest true "Allowlist entry"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/allowlist/dest [post]
func (h *Handler) UpdateDestAllowlist(request *http.Request) (*Result, *types.Error) {
	return h.updateAllowlist(request, model.AllowlistDest)
}

// SetSplit @Summary Set the premium split
// @Accept json
// @Produce json
// @Param request body splitRequest true "Split in basis points"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/split [post]
func (h *Handler) SetSplit(request *http.Request) (*Result, *types.Error) {
	var payload splitRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if svcErr := h.services.SetSplit(request.Context(), payload.BpsToPool, payload.BpsToReserve); svcErr != nil {
		return nil, svcErr
	}
	return NewResult("ok"), nil
}

// SetParams @Summary Set the governance parameters
// @Accept json
// @Produce json
// @Param request body paramsRequest true "Voting period and quorum"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/params [post]
func (h *Handler) SetParams(request *http.Request) (*Result, *types.Error) {
	var payload paramsRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if svcErr := h.services.SetParams(request.Context(), payload.VotingPeriodSecs, payload.QuorumBps); svcErr != nil {
		return nil, svcErr
	}
	return NewResult("ok"), nil
}

// SetGasLimit @Summary Set the gas limit for a destination chain
// @Accept json
// @Produce json
// @Param request body gasLimitRequest true "Gas limit"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/gas-limit [post]
func (h *Handler) SetGasLimit(request *http.Request) (*Result, *types.Error) {
	var payload gasLimitRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if svcErr := h.services.SetGasLimit(request.Context(), payload.ChainSelector, payload.GasLimit); svcErr != nil {
		return nil, svcErr
	}
	return NewResult("ok"), nil
}

// SetVotingPower @Summary Set an account's voting power locally
// @Description Owner path for power updates, alongside the inbound power sync messages
// @Accept json
// @Produce json
// @Param request body setPowerRequest true "Absolute power"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/mirror/power [post]
func (h *Handler) SetVotingPower(request *http.Request) (*Result, *types.Error) {
	var payload setPowerRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Account == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "account is required")
	}
	if svcErr := h.services.SetPower(request.Context(), payload.Account, payload.Power); svcErr != nil {
		return nil, svcErr
	}
	return NewResult("ok"), nil
}

// CreditReserve @Summary Top up the reserve balance
// @Accept json
// @Produce json
// @Param request body creditReserveRequest true "Credit amount"
// @Success 200 {object} Result "Result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/admin/reserve/credit [post]
func (h *Handler) CreditReserve(request *http.Request) (*Result, *types.Error) {
	var payload creditReserveRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if svcErr := h.services.CreditReserve(request.Context(), payload.Amount); svcErr != nil {
		return nil, svcErr
	}
	return NewResult("ok"), nil
}

// RetryPayout @Summary Re-dispatch the payout of an approved claim
// @Accept json
// @Produce json
// @Param id path int true "Claim id"
// @Param request body retryPayoutRequest true "Fee budget"
// @Success 200 {object} PublicResponse[services.ClaimPublic] "Claim"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/admin/claims/{id}/retry-payout [post]
func (h *Handler) RetryPayout(request *http.Request) (*Result, *types.Error) {
	claimID, err := parseUint64PathParam(request, "id")
	if err != nil {
		return nil, err
	}

	var payload retryPayoutRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}

	claim, svcErr := h.services.RetryPayout(request.Context(), claimID, payload.FeeBudget)
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult(claim), nil
}

// ReplayMessages @Summary Replay stored unprocessable messages
// @Description Republishes parked inbound messages onto the local queue and deletes the stored copies
// @Produce json
// @Success 200 {object} PublicResponse[replayResponse] "Replay count"
// @Router /v1/admin/messages/replay [post]
func (h *Handler) ReplayMessages(request *http.Request) (*Result, *types.Error) {
	replayed, svcErr := h.services.ReplayUnprocessableMessages(request.Context())
	if svcErr != nil {
		return nil, svcErr
	}
	return NewResult(&replayResponse{Replayed: replayed}), nil
}

// GetProtocolParams @Summary Get the stored protocol parameters
// @Produce json
// @Success 200 {object} PublicResponse[services.ProtocolParamsPublic] "Protocol parameters"
// @Router /v1/params [get]
func (h *Handler) GetProtocolParams(request *http.Request) (*Result, *types.Error) {
	params, err := h.services.GetProtocolParams(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(params), nil
}
