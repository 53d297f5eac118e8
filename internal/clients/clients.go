package clients

import (
	"github.com/crosscover-protocol/settlement-api-service/internal/clients/feeoracle"
	"github.com/crosscover-protocol/settlement-api-service/internal/config"
)

type Clients struct {
	FeeOracle feeoracle.FeeOracleClientInterface
}

func New(cfg *config.Config) *Clients {
	feeOracleClient := feeoracle.NewFeeOracleClient(&cfg.FeeOracle)

	return &Clients{
		FeeOracle: feeOracleClient,
	}
}
