package relay

import (
	"encoding/json"
	"fmt"
)

type MessageKind string

const (
	PolicyIssueKind MessageKind = "POLICY_ISSUE"
	PowerSyncKind   MessageKind = "POWER_SYNC"
	PayoutKind      MessageKind = "PAYOUT"
)

func (k MessageKind) ToString() string {
	return string(k)
}

// Envelope is the authenticated wire format every relay message travels in.
// The payload is an opaque JSON document discriminated by Kind; routing and
// authentication use only the envelope fields.
type Envelope struct {
	MessageID           string          `json:"message_id"`
	Kind                MessageKind     `json:"kind"`
	SourceChainSelector uint64          `json:"source_chain_selector"`
	EncodedSender       string          `json:"encoded_sender"`
	Payload             json.RawMessage `json:"payload"`
}

func (e *Envelope) Encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func DecodeEnvelope(body string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case PolicyIssueKind, PowerSyncKind, PayoutKind:
	default:
		return nil, fmt.Errorf("unknown message kind: %q", env.Kind)
	}
	if env.MessageID == "" {
		return nil, fmt.Errorf("envelope is missing a message id")
	}
	return &env, nil
}

type PolicyIssuePayload struct {
	PolicyRef      string `json:"policy_ref"`
	PoolID         string `json:"pool_id"`
	Buyer          string `json:"buyer"`
	CoverageAmount uint64 `json:"coverage_amount"`
	StartTs        int64  `json:"start_ts"`
	EndTs          int64  `json:"end_ts"`
}

// PowerSyncPayload carries the account's absolute power, never a delta, so
// redelivery of a stale or duplicated sync converges instead of drifting.
type PowerSyncPayload struct {
	Account string `json:"account"`
	Power   uint64 `json:"power"`
}

type PayoutPayload struct {
	ClaimID  uint64 `json:"claim_id"`
	Claimant string `json:"claimant"`
	Amount   uint64 `json:"amount"`
}
