package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/inmem"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay/client"
	"github.com/crosscover-protocol/settlement-api-service/internal/services"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type noopQueueClient struct{}

func (noopQueueClient) Publish(ctx context.Context, queueName, messageBody string, headers map[string]interface{}) error {
	return nil
}
func (noopQueueClient) ReceiveMessages(queueName string) (<-chan client.QueueMessage, error) {
	return nil, nil
}
func (noopQueueClient) DeleteMessage(receipt string) error { return nil }
func (noopQueueClient) Ping(ctx context.Context) error     { return nil }
func (noopQueueClient) Stop() error                        { return nil }

type fixture struct {
	handler *QueueHandler
	store   *inmem.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Relay: config.RelayConfig{
			Url:               "localhost:5672",
			QueuePrefix:       "relay",
			ProcessingTimeout: 30,
		},
		Protocol: config.ProtocolConfig{
			LocalChainSelector:  1001,
			LocalSender:         "aa01",
			CooldownPeriod:      time.Hour,
			VotingPeriod:        time.Hour,
			QuorumBps:           5000,
			MaxCoverageDuration: 24 * time.Hour,
			BpsToPool:           7000,
			BpsToReserve:        3000,
			FallbackFee:         10,
		},
	}
	store := inmem.New(&cfg.Protocol)
	oracle := &staticFeeOracle{}
	channel := relay.NewChannel(cfg, store, noopQueueClient{}, oracle)
	svc := services.New(context.Background(), cfg, store, channel)
	return &fixture{
		handler: NewQueueHandler(svc, channel),
		store:   store,
	}
}

type staticFeeOracle struct{}

func (staticFeeOracle) QuoteFee(ctx context.Context, destChainSelector uint64, payloadBytes int, gasLimit uint64) (uint64, *types.Error) {
	return 1, nil
}

func (f *fixture) allowSource(t *testing.T, chainSelector uint64, sender string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.SetChainAllowlist(ctx, model.AllowlistSource, chainSelector, true))
	require.NoError(t, f.store.SetCounterpartyAllowlist(ctx, model.AllowlistSource, chainSelector, sender, true))
}

func encodeTestEnvelope(t *testing.T, kind relay.MessageKind, payload interface{}) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	env := &relay.Envelope{
		MessageID:           "m-1",
		Kind:                kind,
		SourceChainSelector: 4004,
		EncodedSender:       "dd04",
		Payload:             raw,
	}
	body, err := env.Encode()
	require.NoError(t, err)
	return body
}

func TestMalformedMessageIsParkedAndAcked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.handler.HandleMessage(ctx, "not an envelope", "receipt-1")
	require.NoError(t, err)

	parked, findErr := f.store.FindUnprocessableMessages(ctx)
	require.NoError(t, findErr)
	require.Len(t, parked, 1)
	assert.Equal(t, "not an envelope", parked[0].MessageBody)
}

func TestUnauthenticatedMessageIsDroppedNotParked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := encodeTestEnvelope(t, relay.PolicyIssueKind, relay.PolicyIssuePayload{PolicyRef: "ref-1"})

	err := f.handler.HandleMessage(ctx, body, "receipt-1")
	require.NoError(t, err)

	_, getErr := f.store.GetPolicyByRef(ctx, "ref-1")
	assert.Error(t, getErr)

	parked, findErr := f.store.FindUnprocessableMessages(ctx)
	require.NoError(t, findErr)
	assert.Empty(t, parked)
}

func TestPolicyIssueDeliveryAndRedelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.allowSource(t, 4004, "dd04")
	body := encodeTestEnvelope(t, relay.PolicyIssueKind, relay.PolicyIssuePayload{
		PolicyRef:      "ref-1",
		Buyer:          "buyer-1",
		CoverageAmount: 500,
	})

	require.NoError(t, f.handler.HandleMessage(ctx, body, "receipt-1"))

	policy, getErr := f.store.GetPolicyByRef(ctx, "ref-1")
	require.NoError(t, getErr)
	assert.Equal(t, "buyer-1", policy.Buyer)

	// Redelivery acks without duplicating or parking.
	require.NoError(t, f.handler.HandleMessage(ctx, body, "receipt-2"))
	parked, findErr := f.store.FindUnprocessableMessages(ctx)
	require.NoError(t, findErr)
	assert.Empty(t, parked)
}

func TestPowerSyncDeliverySetsAbsolutePower(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.allowSource(t, 4004, "dd04")
	body := encodeTestEnvelope(t, relay.PowerSyncKind, relay.PowerSyncPayload{Account: "alice", Power: 1200})

	require.NoError(t, f.handler.HandleMessage(ctx, body, "receipt-1"))
	require.NoError(t, f.handler.HandleMessage(ctx, body, "receipt-2"))

	power, err := f.store.GetVotingPower(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), power)

	total, err := f.store.GetTotalVotingPower(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), total)
}

func TestPayoutDeliveryAgainstShortReserveIsParked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.allowSource(t, 4004, "dd04")
	body := encodeTestEnvelope(t, relay.PayoutKind, relay.PayoutPayload{
		ClaimID: 7, Claimant: "claimant-1", Amount: 4000,
	})

	require.NoError(t, f.handler.HandleMessage(ctx, body, "receipt-1"))

	parked, findErr := f.store.FindUnprocessableMessages(ctx)
	require.NoError(t, findErr)
	require.Len(t, parked, 1)

	// After a top-up the same body processes cleanly.
	require.NoError(t, f.store.CreditReserve(ctx, 5000))
	require.NoError(t, f.handler.HandleMessage(ctx, body, "receipt-2"))

	reserve, getErr := f.store.GetReserveState(ctx)
	require.NoError(t, getErr)
	assert.Equal(t, uint64(1000), reserve.Balance)
	assert.Equal(t, uint64(1), reserve.ExecutedPayouts)
}
