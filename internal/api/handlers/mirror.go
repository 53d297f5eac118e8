package handlers

import (
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// GetVotingPower @Summary Get an account's mirrored voting power
// @Produce json
// @Param account query string true "Account"
// @Success 200 {object} PublicResponse[services.VotingPowerPublic] "Voting power"
// @Router /v1/mirror/power [get]
func (h *Handler) GetVotingPower(request *http.Request) (*Result, *types.Error) {
	account := request.URL.Query().Get("account")
	if account == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "account is required")
	}

	power, err := h.services.PowerOf(request.Context(), account)
	if err != nil {
		return nil, err
	}
	return NewResult(power), nil
}

// GetTotalVotingPower @Summary Get the mirrored total voting power
// @Produce json
// @Success 200 {object} PublicResponse[services.TotalPowerPublic] "Total power"
// @Router /v1/mirror/total [get]
func (h *Handler) GetTotalVotingPower(request *http.Request) (*Result, *types.Error) {
	total, err := h.services.TotalPower(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(total), nil
}
