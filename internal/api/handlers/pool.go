package handlers

import (
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type depositRequest struct {
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

type withdrawRequest struct {
	Owner  string `json:"owner"`
	Shares uint64 `json:"shares"`
}

type completeWithdrawRequest struct {
	Owner string `json:"owner"`
}

// Deposit @Summary Deposit assets into the liquidity pool
// @Description Mints pool shares at the current share price and mirrors the owner's voting power
// @Accept json
// @Produce json
// @Param request body depositRequest true "Deposit request"
// @Success 200 {object} PublicResponse[services.DepositPublic] "Minted shares"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/pool/deposit [post]
func (h *Handler) Deposit(request *http.Request) (*Result, *types.Error) {
	var payload depositRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Owner == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "owner is required")
	}

	deposit, err := h.services.Deposit(request.Context(), payload.Owner, payload.Amount)
	if err != nil {
		return nil, err
	}
	return NewResult(deposit), nil
}

// RequestWithdraw @Summary Request a withdrawal from the pool
// @Description Escrows the owner's shares and starts the cooldown period
// @Accept json
// @Produce json
// @Param request body withdrawRequest true "Withdraw request"
// @Success 200 {object} PublicResponse[services.WithdrawRequestPublic] "Pending withdrawal"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/pool/withdrawals [post]
func (h *Handler) RequestWithdraw(request *http.Request) (*Result, *types.Error) {
	var payload withdrawRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Owner == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "owner is required")
	}

	pending, err := h.services.RequestWithdraw(request.Context(), payload.Owner, payload.Shares)
	if err != nil {
		return nil, err
	}
	return NewResult(pending), nil
}

// CompleteWithdraw @Summary Complete a pending withdrawal
// @Description Burns the escrowed shares at the current share price once the cooldown has elapsed
// @Accept json
// @Produce json
// @Param request body completeWithdrawRequest true "Complete request"
// @Success 200 {object} PublicResponse[services.WithdrawalPublic] "Withdrawn assets"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/pool/withdrawals/complete [post]
func (h *Handler) CompleteWithdraw(request *http.Request) (*Result, *types.Error) {
	var payload completeWithdrawRequest
	if err := parseBody(request, &payload); err != nil {
		return nil, err
	}
	if payload.Owner == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "owner is required")
	}

	withdrawal, err := h.services.CompleteWithdraw(request.Context(), payload.Owner)
	if err != nil {
		return nil, err
	}
	return NewResult(withdrawal), nil
}

// GetPoolState @Summary Get pool totals
// @Produce json
// @Success 200 {object} PublicResponse[services.PoolStatePublic] "Pool totals"
// @Router /v1/pool [get]
func (h *Handler) GetPoolState(request *http.Request) (*Result, *types.Error) {
	state, err := h.services.GetPoolState(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(state), nil
}

// GetStake @Summary Get an owner's stake
// @Produce json
// @Param owner query string true "Stake owner"
// @Success 200 {object} PublicResponse[services.StakePublic] "Stake"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/pool/stake [get]
func (h *Handler) GetStake(request *http.Request) (*Result, *types.Error) {
	owner := request.URL.Query().Get("owner")
	if owner == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "owner is required")
	}

	stake, err := h.services.GetStake(request.Context(), owner)
	if err != nil {
		return nil, err
	}
	return NewResult(stake), nil
}

// GetWithdrawRequest @Summary Get an owner's pending withdrawal
// @Produce json
// @Param owner query string true "Stake owner"
// @Success 200 {object} PublicResponse[services.WithdrawRequestPublic] "Pending withdrawal"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/pool/withdrawals [get]
func (h *Handler) GetWithdrawRequest(request *http.Request) (*Result, *types.Error) {
	owner := request.URL.Query().Get("owner")
	if owner == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "owner is required")
	}

	pending, err := h.services.GetWithdrawRequest(request.Context(), owner)
	if err != nil {
		return nil, err
	}
	return NewResult(pending), nil
}
