package model

const ProtocolParamsDocID = "params"

const BpsDenominator = 10000

// ProtocolParamsDocument is the owner-mutable configuration consumed by the
// premium router and the claims governor. Seeded from config on setup,
// mutated only through setSplit / setParams.
type ProtocolParamsDocument struct {
	ID               string `bson:"_id"`
	BpsToPool        uint64 `bson:"bps_to_pool"`
	BpsToReserve     uint64 `bson:"bps_to_reserve"`
	VotingPeriodSecs uint64 `bson:"voting_period_secs"`
	QuorumBps        uint64 `bson:"quorum_bps"`
}

type AllowlistDirection string

const (
	AllowlistSource AllowlistDirection = "source"
	AllowlistDest   AllowlistDirection = "dest"
)

func (d AllowlistDirection) ToString() string {
	return string(d)
}

type ChainAllowlistDocument struct {
	Direction     AllowlistDirection `bson:"direction"`
	ChainSelector uint64             `bson:"chain_selector"`
	Enabled       bool               `bson:"enabled"`
}

// Counterparty is the hex encoding of the remote sender/receiver identity.
type CounterpartyAllowlistDocument struct {
	Direction     AllowlistDirection `bson:"direction"`
	ChainSelector uint64             `bson:"chain_selector"`
	Counterparty  string             `bson:"counterparty"`
	Enabled       bool               `bson:"enabled"`
}

type GasLimitDocument struct {
	ChainSelector uint64 `bson:"_id"`
	GasLimit      uint64 `bson:"gas_limit"`
}

// SplitPremium applies the configured basis-point split. The reserve leg
// takes the remainder so the two legs always sum back to premium.
func SplitPremium(premium, bpsToPool uint64) (toPool, toReserve uint64) {
	toPool = mulDiv(premium, bpsToPool, BpsDenominator)
	return toPool, premium - toPool
}
