package model

// TotalPowerDocID keys the running total inside the voting power collection.
// It is not a cached view: the mirror is authoritative on its own chain and
// the liquidity-side chain keeps it in sync by pushing absolute values.
const TotalPowerDocID = "__total__"

type VotingPowerDocument struct {
	Account string `bson:"_id"`
	Power   uint64 `bson:"power"`
}
