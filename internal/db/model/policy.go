package model

// PolicyDocument records the terms of an issued coverage policy. All fields
// are immutable once written; policy_ref carries a unique index and is the
// idempotency boundary against at-least-once delivery.
type PolicyDocument struct {
	PolicyRef      string `bson:"policy_ref"`
	PoolID         string `bson:"pool_id"`
	Buyer          string `bson:"buyer"`
	CoverageAmount uint64 `bson:"coverage_amount"`
	StartTs        int64  `bson:"start_ts"`
	EndTs          int64  `bson:"end_ts"`
}

func (p *PolicyDocument) ActiveAt(ts int64) bool {
	return ts >= p.StartTs && ts <= p.EndTs
}
