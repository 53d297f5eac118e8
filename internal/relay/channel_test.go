package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/inmem"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay/client"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type publishedMessage struct {
	QueueName string
	Body      string
	Headers   map[string]interface{}
}

type fakeQueueClient struct {
	mu        sync.Mutex
	published []publishedMessage
}

func (f *fakeQueueClient) Publish(ctx context.Context, queueName, messageBody string, headers map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{QueueName: queueName, Body: messageBody, Headers: headers})
	return nil
}

func (f *fakeQueueClient) ReceiveMessages(queueName string) (<-chan client.QueueMessage, error) {
	return nil, nil
}

func (f *fakeQueueClient) DeleteMessage(receipt string) error { return nil }
func (f *fakeQueueClient) Ping(ctx context.Context) error     { return nil }
func (f *fakeQueueClient) Stop() error                        { return nil }

type fakeFeeOracle struct {
	fee uint64
	err *types.Error
}

func (f *fakeFeeOracle) QuoteFee(ctx context.Context, destChainSelector uint64, payloadBytes int, gasLimit uint64) (uint64, *types.Error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.fee, nil
}

func channelConfig() *config.Config {
	return &config.Config{
		Relay: config.RelayConfig{
			Url:               "localhost:5672",
			QueuePrefix:       "relay",
			ProcessingTimeout: 30,
		},
		Protocol: config.ProtocolConfig{
			LocalChainSelector: 1001,
			LocalSender:        "aa01",
			FallbackFee:        10,
		},
	}
}

func newTestChannel(t *testing.T) (*Channel, *inmem.Store, *fakeQueueClient, *fakeFeeOracle) {
	t.Helper()
	cfg := channelConfig()
	store := inmem.New(&cfg.Protocol)
	queueClient := &fakeQueueClient{}
	oracle := &fakeFeeOracle{fee: 5}
	return NewChannel(cfg, store, queueClient, oracle), store, queueClient, oracle
}

func allowDest(t *testing.T, store *inmem.Store, chainSelector uint64, receiver string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SetChainAllowlist(ctx, model.AllowlistDest, chainSelector, true))
	require.NoError(t, store.SetCounterpartyAllowlist(ctx, model.AllowlistDest, chainSelector, receiver, true))
}

func TestSendRejectsUnlistedChain(t *testing.T) {
	channel, _, queueClient, _ := newTestChannel(t)

	_, err := channel.Send(context.Background(), 3003, "cc03", PolicyIssueKind, PolicyIssuePayload{}, 100)
	require.NotNil(t, err)
	assert.Equal(t, types.ChainNotAllowlisted, err.ErrorCode)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
	assert.Empty(t, queueClient.published)
}

func TestSendRejectsUnlistedReceiver(t *testing.T) {
	channel, store, queueClient, _ := newTestChannel(t)
	require.NoError(t, store.SetChainAllowlist(context.Background(), model.AllowlistDest, 3003, true))

	_, err := channel.Send(context.Background(), 3003, "cc03", PolicyIssueKind, PolicyIssuePayload{}, 100)
	require.NotNil(t, err)
	assert.Equal(t, types.ReceiverNotAllowlisted, err.ErrorCode)
	assert.Empty(t, queueClient.published)
}

func TestSendRejectsShortFeeBudget(t *testing.T) {
	channel, store, queueClient, oracle := newTestChannel(t)
	allowDest(t, store, 3003, "cc03")
	oracle.fee = 50

	_, err := channel.Send(context.Background(), 3003, "cc03", PolicyIssueKind, PolicyIssuePayload{}, 49)
	require.NotNil(t, err)
	assert.Equal(t, types.InsufficientFee, err.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Empty(t, queueClient.published)
}

func TestSendAppliesFallbackFeeWhenOracleUnavailable(t *testing.T) {
	channel, store, queueClient, oracle := newTestChannel(t)
	allowDest(t, store, 3003, "cc03")
	oracle.err = types.NewErrorWithMsg(
		http.StatusServiceUnavailable, types.EstimationUnavailable, "fee oracle is unreachable",
	)

	// Budget below the fallback fee of 10 fails.
	_, err := channel.Send(context.Background(), 3003, "cc03", PolicyIssueKind, PolicyIssuePayload{}, 9)
	require.NotNil(t, err)
	assert.Equal(t, types.InsufficientFee, err.ErrorCode)

	// Budget at the fallback fee succeeds.
	_, err = channel.Send(context.Background(), 3003, "cc03", PolicyIssueKind, PolicyIssuePayload{}, 10)
	require.Nil(t, err)
	assert.Len(t, queueClient.published, 1)
}

func TestSendPublishesEnvelopeToDestQueue(t *testing.T) {
	channel, store, queueClient, _ := newTestChannel(t)
	allowDest(t, store, 3003, "cc03")
	require.NoError(t, store.SetGasLimit(context.Background(), 3003, 200000))

	payload := PolicyIssuePayload{PolicyRef: "ref-1", Buyer: "buyer-1", CoverageAmount: 500}
	messageID, err := channel.Send(context.Background(), 3003, "cc03", PolicyIssueKind, payload, 100)
	require.Nil(t, err)
	assert.NotEmpty(t, messageID)

	require.Len(t, queueClient.published, 1)
	published := queueClient.published[0]
	assert.Equal(t, "relay.chain.3003", published.QueueName)
	assert.Equal(t, "cc03", published.Headers["dest_receiver"])
	assert.Equal(t, int64(200000), published.Headers["gas_limit"])

	env, decodeErr := DecodeEnvelope(published.Body)
	require.NoError(t, decodeErr)
	assert.Equal(t, messageID, env.MessageID)
	assert.Equal(t, PolicyIssueKind, env.Kind)
	assert.Equal(t, uint64(1001), env.SourceChainSelector)
	assert.Equal(t, "aa01", env.EncodedSender)

	var decoded PolicyIssuePayload
	require.NoError(t, json.Unmarshal(env.Payload, &decoded))
	assert.Equal(t, payload, decoded)

	// An audit record for the sent message is persisted.
	messages := store.RelayMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, model.RelayMessageSent, messages[0].Direction)
	assert.Equal(t, messageID, messages[0].MessageID)
}

func TestAuthenticateRejectsUnlistedSource(t *testing.T) {
	channel, _, _, _ := newTestChannel(t)

	env := &Envelope{
		MessageID:           "m-1",
		Kind:                PayoutKind,
		SourceChainSelector: 4004,
		EncodedSender:       "dd04",
		Payload:             json.RawMessage(`{}`),
	}
	err := channel.Authenticate(context.Background(), env)
	require.NotNil(t, err)
	assert.Equal(t, types.SourceNotAllowlisted, err.ErrorCode)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
}

func TestAuthenticateRejectsUnlistedSender(t *testing.T) {
	channel, store, _, _ := newTestChannel(t)
	require.NoError(t, store.SetChainAllowlist(context.Background(), model.AllowlistSource, 4004, true))

	env := &Envelope{
		MessageID:           "m-1",
		Kind:                PayoutKind,
		SourceChainSelector: 4004,
		EncodedSender:       "dd04",
		Payload:             json.RawMessage(`{}`),
	}
	err := channel.Authenticate(context.Background(), env)
	require.NotNil(t, err)
	assert.Equal(t, types.SenderNotAllowlisted, err.ErrorCode)
}

func TestAuthenticateAcceptsAllowlistedOrigin(t *testing.T) {
	channel, store, _, _ := newTestChannel(t)
	ctx := context.Background()
	require.NoError(t, store.SetChainAllowlist(ctx, model.AllowlistSource, 4004, true))
	require.NoError(t, store.SetCounterpartyAllowlist(ctx, model.AllowlistSource, 4004, "dd04", true))

	env := &Envelope{
		MessageID:           "m-1",
		Kind:                PayoutKind,
		SourceChainSelector: 4004,
		EncodedSender:       "dd04",
		Payload:             json.RawMessage(`{}`),
	}
	require.Nil(t, channel.Authenticate(ctx, env))

	messages := store.RelayMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, model.RelayMessageReceived, messages[0].Direction)
	assert.WithinDuration(t, time.Now(), messages[0].Timestamp, time.Minute)
}

func TestDecodeEnvelopeRejectsMalformedInput(t *testing.T) {
	_, err := DecodeEnvelope("not json")
	assert.Error(t, err)

	_, err = DecodeEnvelope(`{"message_id":"m-1","kind":"UNKNOWN","payload":{}}`)
	assert.Error(t, err)

	_, err = DecodeEnvelope(`{"kind":"PAYOUT","payload":{}}`)
	assert.Error(t, err)
}
