package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// GetPolicy @Summary Get a registered policy
// @Produce json
// @Param ref path string true "Policy reference"
// @Success 200 {object} PublicResponse[services.PolicyPublic] "Policy terms"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/policies/{ref} [get]
func (h *Handler) GetPolicy(request *http.Request) (*Result, *types.Error) {
	policyRef := chi.URLParam(request, "ref")
	if policyRef == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "policy ref is required")
	}

	policy, err := h.services.GetPolicyByRef(request.Context(), policyRef)
	if err != nil {
		return nil, err
	}
	return NewResult(policy), nil
}
