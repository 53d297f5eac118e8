package model

import (
	"math/bits"
	"time"
)

const ClaimCounterID = "claim_id"

type ClaimDocument struct {
	ID               uint64    `bson:"_id"`
	PolicyID         string    `bson:"policy_id"`
	Claimant         string    `bson:"claimant"`
	Amount           uint64    `bson:"amount"`
	YesVotes         uint64    `bson:"yes_votes"`
	NoVotes          uint64    `bson:"no_votes"`
	DstChainSelector uint64    `bson:"dst_chain_selector"`
	DstReceiver      string    `bson:"dst_receiver"`
	OpenedAt         time.Time `bson:"opened_at"`
	// Finalized is a one-way latch; Approved is immutable once it is set.
	Finalized bool `bson:"finalized"`
	Approved  bool `bson:"approved"`
	// PayoutDispatched stays false when finalization succeeded but the
	// payout message could not be sent; the payout is then retried
	// out-of-band against the already-latched claim.
	PayoutDispatched bool   `bson:"payout_dispatched"`
	PayoutMessageID  string `bson:"payout_message_id,omitempty"`
}

// VoteDocument exists to make double voting impossible, enforced by the
// unique (claim_id, voter) index.
type VoteDocument struct {
	ClaimID uint64 `bson:"claim_id"`
	Voter   string `bson:"voter"`
	Support bool   `bson:"support"`
	Weight  uint64 `bson:"weight"`
}

type CounterDocument struct {
	ID  string `bson:"_id"`
	Seq uint64 `bson:"seq"`
}

// QuorumMet evaluates totalCast*10000/totalPower >= quorumBps without the
// division, using 128-bit products so large power totals cannot wrap.
// An empty mirror can never reach quorum.
func QuorumMet(totalCast, totalPower, quorumBps uint64) bool {
	if totalPower == 0 {
		return false
	}
	castHi, castLo := bits.Mul64(totalCast, 10000)
	reqHi, reqLo := bits.Mul64(quorumBps, totalPower)
	if castHi != reqHi {
		return castHi > reqHi
	}
	return castLo >= reqLo
}
