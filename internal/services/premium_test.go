package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/inmem"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

func coverageTerms(start time.Time, duration time.Duration) *CoverageTerms {
	return &CoverageTerms{
		PoolID:         "pool-main",
		CoverageAmount: 50000,
		StartTs:        start.Unix(),
		EndTs:          start.Add(duration).Unix(),
	}
}

func TestPreviewAllocationSumsBackToPremium(t *testing.T) {
	env := newTestEnv(t)

	allocation, err := env.services.PreviewAllocation(context.Background(), 1000)
	require.Nil(t, err)
	assert.Equal(t, uint64(700), allocation.ToPool)
	assert.Equal(t, uint64(300), allocation.ToReserve)

	// Odd amounts: the reserve leg takes the rounding remainder.
	allocation, err = env.services.PreviewAllocation(context.Background(), 1001)
	require.Nil(t, err)
	assert.Equal(t, allocation.Premium, allocation.ToPool+allocation.ToReserve)
	assert.Equal(t, uint64(700), allocation.ToPool)
	assert.Equal(t, uint64(301), allocation.ToReserve)
}

func TestBuyCoverageSplitsPremiumAndRelaysPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Deposit(ctx, "alice", 100000)
	require.Nil(t, err)

	coverage, err := env.services.BuyCoverage(
		ctx, "buyer-1", 3003, "cc03", coverageTerms(env.clock, 30*24*time.Hour), 1000, 1000, 50,
	)
	require.Nil(t, err)
	assert.NotEmpty(t, coverage.PolicyRef)
	assert.Equal(t, uint64(700), coverage.ToPool)
	assert.Equal(t, uint64(300), coverage.ToReserve)

	state, err := env.services.GetPoolState(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(100000), state.TotalShares)
	assert.Equal(t, uint64(100700), state.TotalAssets)

	reserve, err := env.services.GetReserveState(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(300), reserve.Balance)

	sent := env.sender.sentMessages()
	// The deposit's power sync plus the policy issuance.
	require.Len(t, sent, 2)
	assert.Equal(t, relay.PolicyIssueKind, sent[1].Kind)
	payload, ok := sent[1].Payload.(relay.PolicyIssuePayload)
	require.True(t, ok)
	assert.Equal(t, coverage.PolicyRef, payload.PolicyRef)
	assert.Equal(t, "buyer-1", payload.Buyer)
}

func TestBuyCoverageRejectsInvalidDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	backwards := &CoverageTerms{PoolID: "p", StartTs: 2000, EndTs: 1000}
	_, err := env.services.BuyCoverage(ctx, "buyer-1", 3003, "cc03", backwards, 1000, 1000, 50)
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidDuration, err.ErrorCode)

	tooLong := coverageTerms(env.clock, 2*365*24*time.Hour)
	_, err = env.services.BuyCoverage(ctx, "buyer-1", 3003, "cc03", tooLong, 1000, 1000, 50)
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidDuration, err.ErrorCode)
}

func TestBuyCoverageRejectsUnderpayment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.BuyCoverage(
		context.Background(), "buyer-1", 3003, "cc03",
		coverageTerms(env.clock, 30*24*time.Hour), 1000, 999, 50,
	)
	require.NotNil(t, err)
	assert.Equal(t, types.InsufficientPremium, err.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestBuyCoverageLeavesBooksUntouchedWhenSendFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.sender.sendErr = types.NewErrorWithMsg(
		http.StatusBadRequest, types.InsufficientFee, "fee budget is below the relay delivery cost",
	)

	_, err := env.services.BuyCoverage(
		ctx, "buyer-1", 3003, "cc03", coverageTerms(env.clock, 30*24*time.Hour), 1000, 1000, 1,
	)
	require.NotNil(t, err)
	assert.Equal(t, types.InsufficientFee, err.ErrorCode)

	state, stateErr := env.services.GetPoolState(ctx)
	require.Nil(t, stateErr)
	assert.Equal(t, uint64(0), state.TotalAssets)

	reserve, reserveErr := env.services.GetReserveState(ctx)
	require.Nil(t, reserveErr)
	assert.Equal(t, uint64(0), reserve.Balance)
}

// splitFailingStore embeds the in-memory store and fails the premium split
// write, the way a dropped db connection mid-call would.
type splitFailingStore struct {
	*inmem.Store
}

func (s *splitFailingStore) CreditPremiumSplit(ctx context.Context, toPool, toReserve uint64) error {
	return errors.New("connection reset")
}

func TestBuyCoverageBooksSplitAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.services.DbClient = &splitFailingStore{Store: env.store}

	_, err := env.services.BuyCoverage(
		ctx, "buyer-1", 3003, "cc03", coverageTerms(env.clock, 30*24*time.Hour), 1000, 1000, 50,
	)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)

	// Neither leg of the split may land when the booking fails.
	state, stateErr := env.services.GetPoolState(ctx)
	require.Nil(t, stateErr)
	assert.Equal(t, uint64(0), state.TotalAssets)

	reserve, reserveErr := env.services.GetReserveState(ctx)
	require.Nil(t, reserveErr)
	assert.Equal(t, uint64(0), reserve.Balance)
}

func TestSetSplitValidatesSum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.services.SetSplit(ctx, 6000, 3000)
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidSplit, err.ErrorCode)

	require.Nil(t, env.services.SetSplit(ctx, 6000, 4000))

	allocation, previewErr := env.services.PreviewAllocation(ctx, 1000)
	require.Nil(t, previewErr)
	assert.Equal(t, uint64(600), allocation.ToPool)
	assert.Equal(t, uint64(400), allocation.ToReserve)
}
