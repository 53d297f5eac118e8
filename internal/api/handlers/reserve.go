package handlers

import (
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// GetReserveState @Summary Get the reserve balance and payout count
// @Produce json
// @Success 200 {object} PublicResponse[services.ReserveStatePublic] "Reserve state"
// @Router /v1/reserve [get]
func (h *Handler) GetReserveState(request *http.Request) (*Result, *types.Error) {
	state, err := h.services.GetReserveState(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(state), nil
}
