package model

import (
	"math/bits"
	"time"
)

const PoolStateDocID = "pool"

// PoolStateDocument is the single share-accounting document for the vault.
// Premium credits and payout debits move TotalAssets without touching
// TotalShares; that spread is what gives LPs their yield and risk exposure.
type PoolStateDocument struct {
	ID          string `bson:"_id"`
	TotalShares uint64 `bson:"total_shares"`
	TotalAssets uint64 `bson:"total_assets"`
}

type StakeDocument struct {
	Owner string `bson:"_id"`
	// Shares is the spendable balance; shares under a pending withdraw
	// request are escrowed out of it.
	Shares          uint64 `bson:"shares"`
	EscrowedShares  uint64 `bson:"escrowed_shares"`
	DepositedAssets uint64 `bson:"deposited_assets"`
}

// At most one outstanding request per owner, keyed by owner.
type WithdrawRequestDocument struct {
	Owner       string    `bson:"_id"`
	Shares      uint64    `bson:"shares"`
	LockedUntil time.Time `bson:"locked_until"`
}

// SharesOnDeposit prices a deposit against the current share price,
// 1:1 when the vault is empty.
func SharesOnDeposit(totalShares, totalAssets, amount uint64) uint64 {
	if totalShares == 0 {
		return amount
	}
	return mulDiv(amount, totalShares, totalAssets)
}

// AssetsOnWithdraw values burned shares at the completion-time share price.
func AssetsOnWithdraw(totalShares, totalAssets, shares uint64) uint64 {
	if totalShares == 0 {
		return 0
	}
	return mulDiv(shares, totalAssets, totalShares)
}

// mulDiv computes a*b/den with a 128-bit intermediate so large vault totals
// cannot silently wrap. The quotient is bounded by max(a, b) for every call
// site here, so Div64 cannot overflow.
func mulDiv(a, b, den uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, den)
	return quo
}
