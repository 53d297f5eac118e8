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

func setPowers(t *testing.T, env *testEnv, powers map[string]uint64) {
	t.Helper()
	for account, power := range powers {
		require.Nil(t, env.services.SetPower(context.Background(), account, power))
	}
}

func openTestClaim(t *testing.T, env *testEnv) *ClaimPublic {
	t.Helper()
	claim, err := env.services.OpenClaim(
		context.Background(), "policy-1", "claimant-1", 5000, 3003, "cc03",
	)
	require.Nil(t, err)
	return claim
}

func TestOpenClaimAssignsSequentialIds(t *testing.T) {
	env := newTestEnv(t)

	first := openTestClaim(t, env)
	second := openTestClaim(t, env)
	assert.Equal(t, uint64(0), first.ID)
	assert.Equal(t, uint64(1), second.ID)
}

func TestOpenClaimRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.OpenClaim(context.Background(), "policy-1", "claimant-1", 0, 3003, "cc03")
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidAmount, err.ErrorCode)
}

func TestVoteUsesMirroredPowerAtVoteTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000, "bob": 500})
	claim := openTestClaim(t, env)

	updated, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), updated.YesVotes)

	updated, err = env.services.Vote(ctx, claim.ID, "bob", false)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), updated.YesVotes)
	assert.Equal(t, uint64(500), updated.NoVotes)
}

func TestVoteTwiceIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000})
	claim := openTestClaim(t, env)

	_, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)

	_, err = env.services.Vote(ctx, claim.ID, "alice", false)
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.ErrorCode)

	updated, getErr := env.services.GetClaim(ctx, claim.ID)
	require.Nil(t, getErr)
	assert.Equal(t, uint64(1000), updated.YesVotes)
	assert.Equal(t, uint64(0), updated.NoVotes)
}

func TestZeroPowerVoteIsRecorded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	claim := openTestClaim(t, env)

	updated, err := env.services.Vote(ctx, claim.ID, "nobody", true)
	require.Nil(t, err)
	assert.Equal(t, uint64(0), updated.YesVotes)

	// The zero-weight vote still blocks a second one.
	_, err = env.services.Vote(ctx, claim.ID, "nobody", true)
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.ErrorCode)
}

func TestFinalizeRejectedWhileVotingOpen(t *testing.T) {
	env := newTestEnv(t)
	claim := openTestClaim(t, env)

	env.advance(24 * time.Hour)
	_, err := env.services.FinalizeClaim(context.Background(), claim.ID, 50)
	require.NotNil(t, err)
	assert.Equal(t, types.VotingStillOpen, err.ErrorCode)
}

func TestFinalizeApprovesWithQuorumAndMajority(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000, "bob": 500})
	claim := openTestClaim(t, env)

	_, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)
	_, err = env.services.Vote(ctx, claim.ID, "bob", false)
	require.Nil(t, err)

	env.advance(3*24*time.Hour + time.Second)
	finalized, err := env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.Nil(t, err)
	assert.True(t, finalized.Finalized)
	assert.True(t, finalized.Approved)
	assert.True(t, finalized.PayoutDispatched)
	assert.NotEmpty(t, finalized.PayoutMessageID)

	sent := env.sender.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, relay.PayoutKind, sent[0].Kind)
	assert.Equal(t, uint64(3003), sent[0].DestChainSelector)
	payload, ok := sent[0].Payload.(relay.PayoutPayload)
	require.True(t, ok)
	assert.Equal(t, claim.ID, payload.ClaimID)
	assert.Equal(t, "claimant-1", payload.Claimant)
	assert.Equal(t, uint64(5000), payload.Amount)
}

func TestFinalizeRejectsWithoutQuorum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 400, "bob": 100, "carol": 1000})
	claim := openTestClaim(t, env)

	// 500 of 1500 total power cast, below the 5000 bps quorum.
	_, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)
	_, err = env.services.Vote(ctx, claim.ID, "bob", false)
	require.Nil(t, err)

	env.advance(3*24*time.Hour + time.Second)
	finalized, err := env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.Nil(t, err)
	assert.True(t, finalized.Finalized)
	assert.False(t, finalized.Approved)
	assert.Empty(t, env.sender.sentMessages())
}

func TestFinalizeRejectsWithEmptyMirror(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	claim := openTestClaim(t, env)

	env.advance(3*24*time.Hour + time.Second)
	finalized, err := env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.Nil(t, err)
	assert.False(t, finalized.Approved)
}

func TestFinalizeTwiceIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	claim := openTestClaim(t, env)

	env.advance(3*24*time.Hour + time.Second)
	_, err := env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.Nil(t, err)

	_, err = env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyFinalized, err.ErrorCode)
}

func TestVoteAfterFinalizationIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000})
	claim := openTestClaim(t, env)

	env.advance(3*24*time.Hour + time.Second)
	_, err := env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.Nil(t, err)

	_, err = env.services.Vote(ctx, claim.ID, "alice", true)
	require.NotNil(t, err)
	assert.Equal(t, types.ClaimFinalized, err.ErrorCode)
}

func TestFinalizeLeavesClaimLatchedWhenPayoutSendFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000})
	claim := openTestClaim(t, env)

	_, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)

	env.advance(3*24*time.Hour + time.Second)
	_, err = env.services.FinalizeClaim(ctx, claim.ID, 1)
	require.NotNil(t, err)
	assert.Equal(t, types.InsufficientFee, err.ErrorCode)

	latched, getErr := env.services.GetClaim(ctx, claim.ID)
	require.Nil(t, getErr)
	assert.True(t, latched.Finalized)
	assert.True(t, latched.Approved)
	assert.False(t, latched.PayoutDispatched)
}

func TestRetryPayoutDispatchesLatchedClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000})
	claim := openTestClaim(t, env)

	_, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)

	env.advance(3*24*time.Hour + time.Second)
	_, err = env.services.FinalizeClaim(ctx, claim.ID, 1)
	require.NotNil(t, err)

	retried, err := env.services.RetryPayout(ctx, claim.ID, 50)
	require.Nil(t, err)
	assert.True(t, retried.PayoutDispatched)

	sent := env.sender.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, relay.PayoutKind, sent[0].Kind)

	// A second retry has nothing to dispatch.
	_, err = env.services.RetryPayout(ctx, claim.ID, 50)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
}

func TestRetryPayoutRejectsUnapprovedClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	claim := openTestClaim(t, env)

	_, err := env.services.RetryPayout(ctx, claim.ID, 50)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
}

func TestSetParamsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.services.SetParams(ctx, 86400, 10001)
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidQuorum, err.ErrorCode)

	err = env.services.SetParams(ctx, 0, 5000)
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidDuration, err.ErrorCode)

	require.Nil(t, env.services.SetParams(ctx, 86400, 6000))
	params, getErr := env.services.GetProtocolParams(ctx)
	require.Nil(t, getErr)
	assert.Equal(t, uint64(86400), params.VotingPeriodSecs)
	assert.Equal(t, uint64(6000), params.QuorumBps)
}

func TestShortenedVotingPeriodAppliesToOpenClaims(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setPowers(t, env, map[string]uint64{"alice": 1000})
	claim := openTestClaim(t, env)

	_, err := env.services.Vote(ctx, claim.ID, "alice", true)
	require.Nil(t, err)

	require.Nil(t, env.services.SetParams(ctx, 3600, 5000))

	env.advance(2 * time.Hour)
	finalized, err := env.services.FinalizeClaim(ctx, claim.ID, 50)
	require.Nil(t, err)
	assert.True(t, finalized.Approved)
}
