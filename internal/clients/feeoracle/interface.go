package feeoracle

import (
	"context"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

// FeeOracleClientInterface prices relay delivery to a destination chain.
// Quotes are advisory; the channel applies the fallback constant when the
// oracle cannot be reached.
type FeeOracleClientInterface interface {
	QuoteFee(ctx context.Context, destChainSelector uint64, payloadBytes int, gasLimit uint64) (uint64, *types.Error)
}
