package model

import "time"

type RelayMessageDirection string

const (
	RelayMessageSent     RelayMessageDirection = "sent"
	RelayMessageReceived RelayMessageDirection = "received"
)

// RelayMessageDocument is the observability and idempotency-audit record
// emitted for every envelope crossing the channel, in either direction.
type RelayMessageDocument struct {
	MessageID     string                `bson:"message_id"`
	Direction     RelayMessageDirection `bson:"direction"`
	Kind          string                `bson:"kind"`
	ChainSelector uint64                `bson:"chain_selector"`
	Counterparty  string                `bson:"counterparty"`
	Payload       string                `bson:"payload"`
	Timestamp     time.Time             `bson:"timestamp"`
}

type UnprocessableMessageDocument struct {
	MessageBody string `bson:"message_body"`
	Receipt     string `bson:"receipt"`
}
