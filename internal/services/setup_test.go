package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/inmem"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type sentMessage struct {
	DestChainSelector uint64
	EncodedReceiver   string
	Kind              relay.MessageKind
	Payload           interface{}
	FeeBudget         uint64
}

// fakeSender records outbound relay traffic and can be told to fail, which
// is how the send-failure paths are exercised without a broker.
type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	fee      uint64
	sendErr  *types.Error
	quoteErr *types.Error
	nextID   int
}

func (f *fakeSender) QuoteFee(
	ctx context.Context, destChainSelector uint64, encodedReceiver string, payload interface{},
) (uint64, *types.Error) {
	if f.quoteErr != nil {
		return 0, f.quoteErr
	}
	return f.fee, nil
}

func (f *fakeSender) Send(
	ctx context.Context, destChainSelector uint64, encodedReceiver string,
	kind relay.MessageKind, payload interface{}, feeBudget uint64,
) (string, *types.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	if feeBudget < f.fee {
		return "", types.NewErrorWithMsg(400, types.InsufficientFee, "fee budget is below the relay delivery cost")
	}
	f.sent = append(f.sent, sentMessage{
		DestChainSelector: destChainSelector,
		EncodedReceiver:   encodedReceiver,
		Kind:              kind,
		Payload:           payload,
		FeeBudget:         feeBudget,
	})
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeSender) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Protocol: config.ProtocolConfig{
			LocalChainSelector:     1001,
			LocalSender:            "aa01",
			CooldownPeriod:         7 * 24 * time.Hour,
			VotingPeriod:           3 * 24 * time.Hour,
			QuorumBps:              5000,
			MaxCoverageDuration:    365 * 24 * time.Hour,
			BpsToPool:              7000,
			BpsToReserve:           3000,
			FallbackFee:            10,
			PowerSyncChainSelector: 2002,
			PowerSyncReceiver:      "bb02",
		},
	}
}

type testEnv struct {
	services *Services
	store    *inmem.Store
	sender   *fakeSender
	clock    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	store := inmem.New(&cfg.Protocol)
	sender := &fakeSender{fee: 10}

	env := &testEnv{
		store:  store,
		sender: sender,
		clock:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.services = New(context.Background(), cfg, store, sender)
	env.services.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}
