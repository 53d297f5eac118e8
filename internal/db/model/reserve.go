package model

import "time"

const ReserveStateDocID = "reserve"

type ReserveStateDocument struct {
	ID              string `bson:"_id"`
	Balance         uint64 `bson:"balance"`
	ExecutedPayouts uint64 `bson:"executed_payouts"`
}

// PayoutDocument records an executed disbursement. The unique claim_id index
// is what turns at-least-once payout delivery into exactly-once effect.
type PayoutDocument struct {
	ClaimID    uint64    `bson:"claim_id"`
	Claimant   string    `bson:"claimant"`
	Amount     uint64    `bson:"amount"`
	ExecutedAt time.Time `bson:"executed_at"`
}
