package feeoracle

import (
	"context"
	"fmt"
	"net/http"

	baseclient "github.com/crosscover-protocol/settlement-api-service/internal/clients/base"
	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type FeeOracleClient struct {
	config     *config.FeeOracleConfig
	httpClient *http.Client
}

func NewFeeOracleClient(cfg *config.FeeOracleConfig) *FeeOracleClient {
	return &FeeOracleClient{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// Necessary for the BaseClient interface
func (c *FeeOracleClient) GetBaseURL() string {
	return c.config.Host
}

func (c *FeeOracleClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *FeeOracleClient) GetHttpClient() *http.Client {
	return c.httpClient
}

type feeQuoteResponse struct {
	Fee uint64 `json:"fee"`
}

func (c *FeeOracleClient) QuoteFee(
	ctx context.Context, destChainSelector uint64, payloadBytes int, gasLimit uint64,
) (uint64, *types.Error) {
	if !c.config.Enabled() {
		return 0, types.NewErrorWithMsg(
			http.StatusServiceUnavailable, types.EstimationUnavailable, "fee oracle is not configured",
		)
	}

	opts := &baseclient.BaseClientOptions{
		Path: fmt.Sprintf("/v1/fees?dest=%d&bytes=%d&gas=%d", destChainSelector, payloadBytes, gasLimit),
	}

	quote, err := baseclient.SendRequest[any, feeQuoteResponse](ctx, c, http.MethodGet, opts, nil)
	if err != nil {
		// Any oracle failure is an estimation gap, never a flow stopper.
		return 0, types.NewErrorWithMsg(
			http.StatusServiceUnavailable, types.EstimationUnavailable, err.Err.Error(),
		)
	}
	return quote.Fee, nil
}
