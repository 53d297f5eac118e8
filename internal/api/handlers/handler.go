package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/services"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type Handler struct {
	config   *config.Config
	services *services.Services
}

type PublicResponse[T any] struct {
	Data T `json:"data"`
}

type Result struct {
	Data   interface{}
	Status int
}

// NewResult returns a successful result, with default status code 200
func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

func New(
	ctx context.Context, cfg *config.Config, services *services.Services,
) (*Handler, error) {
	return &Handler{
		config:   cfg,
		services: services,
	}, nil
}

// parseBody decodes a JSON request body, rejecting unknown fields so a
// mistyped field name fails loudly instead of silently defaulting.
func parseBody(request *http.Request, dest interface{}) *types.Error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}
	return nil
}

func parseUint64Query(request *http.Request, name string, required bool) (uint64, *types.Error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, name+" is required")
		}
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, name+" must be a positive integer")
	}
	return value, nil
}

func parseUint64PathParam(request *http.Request, name string) (uint64, *types.Error) {
	raw := chi.URLParam(request, name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, name+" must be a positive integer")
	}
	return value, nil
}
