package db

import (
	"context"
	"time"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
)

type DBClient interface {
	Ping(ctx context.Context) error

	// liquidity pool
	GetPoolState(ctx context.Context) (*model.PoolStateDocument, error)
	GetStake(ctx context.Context, owner string) (*model.StakeDocument, error)
	DepositStake(ctx context.Context, owner string, amount uint64) (sharesMinted uint64, err error)
	CreditPoolAssets(ctx context.Context, amount uint64) error
	CreditPremiumSplit(ctx context.Context, toPool, toReserve uint64) error
	CreateWithdrawRequest(ctx context.Context, owner string, shares uint64, lockedUntil time.Time) error
	GetWithdrawRequest(ctx context.Context, owner string) (*model.WithdrawRequestDocument, error)
	CompleteWithdrawRequest(ctx context.Context, owner string) (assetsOut, remainingShares uint64, err error)

	// policy registry
	InsertPolicy(ctx context.Context, policy *model.PolicyDocument) error
	GetPolicyByRef(ctx context.Context, policyRef string) (*model.PolicyDocument, error)

	// voting power mirror
	SetVotingPower(ctx context.Context, account string, power uint64) error
	GetVotingPower(ctx context.Context, account string) (uint64, error)
	GetTotalVotingPower(ctx context.Context) (uint64, error)

	// claims governor
	InsertClaim(
		ctx context.Context, policyID, claimant string, amount, dstChainSelector uint64,
		dstReceiver string, openedAt time.Time,
	) (*model.ClaimDocument, error)
	GetClaimByID(ctx context.Context, id uint64) (*model.ClaimDocument, error)
	CastVote(ctx context.Context, claimID uint64, voter string, support bool, weight uint64) error
	FinalizeClaim(ctx context.Context, claimID, quorumBps uint64) (*model.ClaimDocument, error)
	MarkPayoutDispatched(ctx context.Context, claimID uint64, messageID string) error

	// reserve vault
	GetReserveState(ctx context.Context) (*model.ReserveStateDocument, error)
	CreditReserve(ctx context.Context, amount uint64) error
	ExecutePayout(ctx context.Context, claimID uint64, claimant string, amount uint64, executedAt time.Time) error

	// relay bookkeeping
	SaveRelayMessage(ctx context.Context, msg *model.RelayMessageDocument) error
	SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error
	FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error)
	DeleteUnprocessableMessage(ctx context.Context, receipt string) error

	// admin state
	GetProtocolParams(ctx context.Context) (*model.ProtocolParamsDocument, error)
	UpdateSplit(ctx context.Context, bpsToPool, bpsToReserve uint64) error
	UpdateGovernanceParams(ctx context.Context, votingPeriodSecs, quorumBps uint64) error
	SetChainAllowlist(ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, enabled bool) error
	SetCounterpartyAllowlist(
		ctx context.Context, direction model.AllowlistDirection, chainSelector uint64,
		counterparty string, enabled bool,
	) error
	IsChainAllowlisted(ctx context.Context, direction model.AllowlistDirection, chainSelector uint64) (bool, error)
	IsCounterpartyAllowlisted(
		ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, counterparty string,
	) (bool, error)
	SetGasLimit(ctx context.Context, chainSelector, gasLimit uint64) error
	GetGasLimit(ctx context.Context, chainSelector uint64) (uint64, error)
}
