package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

func TestDepositMintsSharesOneToOneInEmptyPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	deposit, err := env.services.Deposit(ctx, "alice", 100000)
	require.Nil(t, err)
	assert.Equal(t, uint64(100000), deposit.SharesMinted)

	state, err := env.services.GetPoolState(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(100000), state.TotalShares)
	assert.Equal(t, uint64(100000), state.TotalAssets)
}

func TestDepositRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Deposit(context.Background(), "alice", 0)
	require.NotNil(t, err)
	assert.Equal(t, types.ZeroAmount, err.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestDepositSyncsAbsoluteVotingPower(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 500)
	require.Nil(t, err)
	_, err = env.services.Deposit(ctx, "alice", 300)
	require.Nil(t, err)

	sent := env.sender.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, relay.PowerSyncKind, sent[1].Kind)
	assert.Equal(t, uint64(2002), sent[1].DestChainSelector)
	assert.Equal(t, "bb02", sent[1].EncodedReceiver)

	payload, ok := sent[1].Payload.(relay.PowerSyncPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", payload.Account)
	// Absolute balance after both deposits, not the delta.
	assert.Equal(t, uint64(800), payload.Power)
}

func TestDepositSurvivesPowerSyncFailure(t *testing.T) {
	env := newTestEnv(t)
	env.sender.sendErr = types.NewErrorWithMsg(
		http.StatusForbidden, types.ChainNotAllowlisted, "destination chain is not allowlisted",
	)

	deposit, err := env.services.Deposit(context.Background(), "alice", 1000)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), deposit.SharesMinted)
}

func TestSecondDepositPricedAtCurrentShareValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 100000)
	require.Nil(t, err)

	// Premium credit raises asset value without minting shares.
	require.NoError(t, env.store.CreditPoolAssets(ctx, 700))

	deposit, err := env.services.Deposit(ctx, "bob", 100700)
	require.Nil(t, err)
	// 100700 * 100000 / 100700 = 100000 shares
	assert.Equal(t, uint64(100000), deposit.SharesMinted)

	state, err := env.services.GetPoolState(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(200000), state.TotalShares)
	assert.Equal(t, uint64(201400), state.TotalAssets)
}

func TestRequestWithdrawEscrowsShares(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 1000)
	require.Nil(t, err)

	pending, err := env.services.RequestWithdraw(ctx, "alice", 400)
	require.Nil(t, err)
	assert.Equal(t, uint64(400), pending.Shares)
	assert.Equal(t, env.clock.Add(7*24*time.Hour).Unix(), pending.LockedUntil)

	stake, err := env.services.GetStake(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, uint64(600), stake.Shares)
	assert.Equal(t, uint64(400), stake.EscrowedShares)
}

func TestRequestWithdrawRejectsMoreThanHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 100)
	require.Nil(t, err)

	_, withdrawErr := env.services.RequestWithdraw(ctx, "alice", 500)
	require.NotNil(t, withdrawErr)
	assert.Equal(t, types.InsufficientShares, withdrawErr.ErrorCode)
}

func TestRequestWithdrawRejectsSecondPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 1000)
	require.Nil(t, err)

	_, err = env.services.RequestWithdraw(ctx, "alice", 100)
	require.Nil(t, err)

	_, secondErr := env.services.RequestWithdraw(ctx, "alice", 100)
	require.NotNil(t, secondErr)
	assert.Equal(t, types.WithdrawPending, secondErr.ErrorCode)
	assert.Equal(t, http.StatusForbidden, secondErr.StatusCode)
}

func TestCompleteWithdrawRejectedDuringCooldown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 1000)
	require.Nil(t, err)
	_, err = env.services.RequestWithdraw(ctx, "alice", 1000)
	require.Nil(t, err)

	env.advance(24 * time.Hour)
	_, completeErr := env.services.CompleteWithdraw(ctx, "alice")
	require.NotNil(t, completeErr)
	assert.Equal(t, types.StillLocked, completeErr.ErrorCode)
}

func TestCompleteWithdrawPaysAtCompletionTimePrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 100000)
	require.Nil(t, err)
	_, err = env.services.RequestWithdraw(ctx, "alice", 100000)
	require.Nil(t, err)

	// Premium lands during the cooldown; the leaver still earns it.
	require.NoError(t, env.store.CreditPoolAssets(ctx, 700))

	env.advance(7*24*time.Hour + time.Second)
	withdrawal, completeErr := env.services.CompleteWithdraw(ctx, "alice")
	require.Nil(t, completeErr)
	assert.Equal(t, uint64(100000), withdrawal.SharesBurned)
	assert.Equal(t, uint64(100700), withdrawal.AssetsOut)

	state, err := env.services.GetPoolState(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(0), state.TotalShares)
	assert.Equal(t, uint64(0), state.TotalAssets)
}

func TestCompleteWithdrawWithoutRequestIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.CompleteWithdraw(context.Background(), "alice")
	require.NotNil(t, err)
	assert.Equal(t, types.NotFound, err.ErrorCode)
}
