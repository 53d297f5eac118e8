package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

func TestProcessPayoutDebitsReserve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.services.CreditReserve(ctx, 10000))

	err := env.services.ProcessPayout(ctx, &relay.PayoutPayload{
		ClaimID: 3, Claimant: "claimant-1", Amount: 4000,
	})
	require.Nil(t, err)

	state, getErr := env.services.GetReserveState(ctx)
	require.Nil(t, getErr)
	assert.Equal(t, uint64(6000), state.Balance)
	assert.Equal(t, uint64(1), state.ExecutedPayouts)
}

func TestProcessPayoutRedeliveryIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.services.CreditReserve(ctx, 10000))
	payload := &relay.PayoutPayload{ClaimID: 3, Claimant: "claimant-1", Amount: 4000}

	require.Nil(t, env.services.ProcessPayout(ctx, payload))
	require.Nil(t, env.services.ProcessPayout(ctx, payload))

	state, getErr := env.services.GetReserveState(ctx)
	require.Nil(t, getErr)
	assert.Equal(t, uint64(6000), state.Balance)
	assert.Equal(t, uint64(1), state.ExecutedPayouts)
}

func TestProcessPayoutFailsOnShortReserve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.services.CreditReserve(ctx, 100))

	err := env.services.ProcessPayout(ctx, &relay.PayoutPayload{
		ClaimID: 3, Claimant: "claimant-1", Amount: 4000,
	})
	require.NotNil(t, err)
	assert.Equal(t, types.InsufficientReserve, err.ErrorCode)

	// The balance is untouched and the claim stays payable after a top-up.
	state, getErr := env.services.GetReserveState(ctx)
	require.Nil(t, getErr)
	assert.Equal(t, uint64(100), state.Balance)

	require.Nil(t, env.services.CreditReserve(ctx, 3900))
	require.Nil(t, env.services.ProcessPayout(ctx, &relay.PayoutPayload{
		ClaimID: 3, Claimant: "claimant-1", Amount: 4000,
	}))
}

func TestCreditReserveRejectsZero(t *testing.T) {
	env := newTestEnv(t)

	err := env.services.CreditReserve(context.Background(), 0)
	require.NotNil(t, err)
	assert.Equal(t, types.ZeroAmount, err.ErrorCode)
}

func TestProcessPolicyIssueIsIdempotentOnPolicyRef(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload := &relay.PolicyIssuePayload{
		PolicyRef:      "ref-1",
		PoolID:         "pool-main",
		Buyer:          "buyer-1",
		CoverageAmount: 50000,
		StartTs:        1000,
		EndTs:          2000,
	}
	require.Nil(t, env.services.ProcessPolicyIssue(ctx, payload))

	err := env.services.ProcessPolicyIssue(ctx, payload)
	require.NotNil(t, err)
	assert.Equal(t, types.DuplicatePolicyRef, err.ErrorCode)

	policy, getErr := env.services.GetPolicyByRef(ctx, "ref-1")
	require.Nil(t, getErr)
	assert.Equal(t, "buyer-1", policy.Buyer)
	assert.Equal(t, uint64(50000), policy.CoverageAmount)
}

func TestPolicyActivityWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload := &relay.PolicyIssuePayload{
		PolicyRef:      "ref-2",
		PoolID:         "pool-main",
		Buyer:          "buyer-1",
		CoverageAmount: 50000,
		StartTs:        env.clock.Unix(),
		EndTs:          env.clock.Unix() + 3600,
	}
	require.Nil(t, env.services.ProcessPolicyIssue(ctx, payload))

	policy, err := env.services.GetPolicyByRef(ctx, "ref-2")
	require.Nil(t, err)
	assert.True(t, policy.Active)

	env.advance(2 * time.Hour)
	policy, err = env.services.GetPolicyByRef(ctx, "ref-2")
	require.Nil(t, err)
	assert.False(t, policy.Active)
}

func TestSetPowerOverwritesAndTracksTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.services.SetPower(ctx, "alice", 1000))
	require.Nil(t, env.services.SetPower(ctx, "bob", 500))

	total, err := env.services.TotalPower(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(1500), total.TotalPower)

	// Absolute overwrite, applied twice, converges instead of doubling.
	require.Nil(t, env.services.SetPower(ctx, "alice", 200))
	require.Nil(t, env.services.SetPower(ctx, "alice", 200))

	power, err := env.services.PowerOf(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, uint64(200), power.Power)

	total, err = env.services.TotalPower(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(700), total.TotalPower)
}
