// Package inmem holds an in-memory DBClient used as the test injection
// point. It applies the same model-level arithmetic as the mongo client so
// accounting behavior under test is the behavior that ships.
package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
)

type allowlistKey struct {
	direction     model.AllowlistDirection
	chainSelector uint64
	counterparty  string
}

type voteKey struct {
	claimID uint64
	voter   string
}

type Store struct {
	mu sync.Mutex

	pool             model.PoolStateDocument
	stakes           map[string]*model.StakeDocument
	withdrawRequests map[string]*model.WithdrawRequestDocument
	policies         map[string]*model.PolicyDocument
	claims           map[uint64]*model.ClaimDocument
	votes            map[voteKey]*model.VoteDocument
	claimSeq         uint64
	power            map[string]uint64
	totalPower       uint64
	reserve          model.ReserveStateDocument
	payouts          map[uint64]*model.PayoutDocument
	params           model.ProtocolParamsDocument
	chains           map[allowlistKey]bool
	counterparties   map[allowlistKey]bool
	gasLimits        map[uint64]uint64
	relayMessages    []model.RelayMessageDocument
	unprocessable    []model.UnprocessableMessageDocument
}

var _ db.DBClient = (*Store)(nil)

func New(protocol *config.ProtocolConfig) *Store {
	return &Store{
		pool:             model.PoolStateDocument{ID: model.PoolStateDocID},
		stakes:           make(map[string]*model.StakeDocument),
		withdrawRequests: make(map[string]*model.WithdrawRequestDocument),
		policies:         make(map[string]*model.PolicyDocument),
		claims:           make(map[uint64]*model.ClaimDocument),
		votes:            make(map[voteKey]*model.VoteDocument),
		power:            make(map[string]uint64),
		reserve:          model.ReserveStateDocument{ID: model.ReserveStateDocID},
		payouts:          make(map[uint64]*model.PayoutDocument),
		params: model.ProtocolParamsDocument{
			ID:               model.ProtocolParamsDocID,
			BpsToPool:        protocol.BpsToPool,
			BpsToReserve:     protocol.BpsToReserve,
			VotingPeriodSecs: uint64(protocol.VotingPeriod.Seconds()),
			QuorumBps:        protocol.QuorumBps,
		},
		chains:         make(map[allowlistKey]bool),
		counterparties: make(map[allowlistKey]bool),
		gasLimits:      make(map[uint64]uint64),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) GetPoolState(ctx context.Context) (*model.PoolStateDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.pool
	return &state, nil
}

func (s *Store) GetStake(ctx context.Context, owner string) (*model.StakeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stake, ok := s.stakes[owner]
	if !ok {
		return nil, &db.NotFoundError{Key: owner, Message: "no stake found for owner"}
	}
	copied := *stake
	return &copied, nil
}

func (s *Store) DepositStake(ctx context.Context, owner string, amount uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares := model.SharesOnDeposit(s.pool.TotalShares, s.pool.TotalAssets, amount)
	stake, ok := s.stakes[owner]
	if !ok {
		stake = &model.StakeDocument{Owner: owner}
		s.stakes[owner] = stake
	}
	stake.Shares += shares
	stake.DepositedAssets += amount
	s.pool.TotalShares += shares
	s.pool.TotalAssets += amount
	return shares, nil
}

func (s *Store) CreditPoolAssets(ctx context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.TotalAssets += amount
	return nil
}

func (s *Store) CreditPremiumSplit(ctx context.Context, toPool, toReserve uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.TotalAssets += toPool
	s.reserve.Balance += toReserve
	return nil
}

func (s *Store) CreateWithdrawRequest(
	ctx context.Context, owner string, shares uint64, lockedUntil time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stake, ok := s.stakes[owner]
	if !ok {
		return &db.InsufficientBalanceError{Message: "no stake found for owner"}
	}
	if stake.Shares < shares {
		return &db.InsufficientBalanceError{Message: "stake holds fewer shares than requested"}
	}
	if _, pending := s.withdrawRequests[owner]; pending {
		return &db.DuplicateKeyError{Key: owner, Message: "a withdraw request is already pending"}
	}

	s.withdrawRequests[owner] = &model.WithdrawRequestDocument{
		Owner:       owner,
		Shares:      shares,
		LockedUntil: lockedUntil,
	}
	stake.Shares -= shares
	stake.EscrowedShares += shares
	return nil
}

func (s *Store) GetWithdrawRequest(ctx context.Context, owner string) (*model.WithdrawRequestDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.withdrawRequests[owner]
	if !ok {
		return nil, &db.NotFoundError{Key: owner, Message: "no pending withdraw request for owner"}
	}
	copied := *request
	return &copied, nil
}

func (s *Store) CompleteWithdrawRequest(ctx context.Context, owner string) (uint64, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.withdrawRequests[owner]
	if !ok {
		return 0, 0, &db.NotFoundError{Key: owner, Message: "no pending withdraw request for owner"}
	}

	assetsOut := model.AssetsOnWithdraw(s.pool.TotalShares, s.pool.TotalAssets, request.Shares)
	stake := s.stakes[owner]
	stake.EscrowedShares -= request.Shares
	s.pool.TotalShares -= request.Shares
	s.pool.TotalAssets -= assetsOut
	delete(s.withdrawRequests, owner)
	return assetsOut, stake.Shares, nil
}

func (s *Store) InsertPolicy(ctx context.Context, policy *model.PolicyDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.policies[policy.PolicyRef]; exists {
		return &db.DuplicateKeyError{Key: policy.PolicyRef, Message: "policy ref already recorded"}
	}
	copied := *policy
	s.policies[policy.PolicyRef] = &copied
	return nil
}

func (s *Store) GetPolicyByRef(ctx context.Context, policyRef string) (*model.PolicyDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[policyRef]
	if !ok {
		return nil, &db.NotFoundError{Key: policyRef, Message: "policy not found"}
	}
	copied := *policy
	return &copied, nil
}

func (s *Store) SetVotingPower(ctx context.Context, account string, power uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.power[account]
	s.power[account] = power
	s.totalPower = s.totalPower - prev + power
	return nil
}

func (s *Store) GetVotingPower(ctx context.Context, account string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.power[account], nil
}

func (s *Store) GetTotalVotingPower(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPower, nil
}

func (s *Store) InsertClaim(
	ctx context.Context, policyID, claimant string, amount, dstChainSelector uint64,
	dstReceiver string, openedAt time.Time,
) (*model.ClaimDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim := &model.ClaimDocument{
		ID:               s.claimSeq,
		PolicyID:         policyID,
		Claimant:         claimant,
		Amount:           amount,
		DstChainSelector: dstChainSelector,
		DstReceiver:      dstReceiver,
		OpenedAt:         openedAt,
	}
	s.claimSeq++
	s.claims[claim.ID] = claim
	copied := *claim
	return &copied, nil
}

func (s *Store) GetClaimByID(ctx context.Context, id uint64) (*model.ClaimDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[id]
	if !ok {
		return nil, &db.NotFoundError{Message: "claim not found"}
	}
	copied := *claim
	return &copied, nil
}

func (s *Store) CastVote(
	ctx context.Context, claimID uint64, voter string, support bool, weight uint64,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim, ok := s.claims[claimID]
	if !ok {
		return &db.NotFoundError{Message: "claim not found"}
	}
	key := voteKey{claimID: claimID, voter: voter}
	if _, voted := s.votes[key]; voted {
		return &db.DuplicateKeyError{Key: voter, Message: "account already voted on this claim"}
	}
	if claim.Finalized {
		return &db.InvalidStateError{Message: "claim already finalized"}
	}

	s.votes[key] = &model.VoteDocument{ClaimID: claimID, Voter: voter, Support: support, Weight: weight}
	if support {
		claim.YesVotes += weight
	} else {
		claim.NoVotes += weight
	}
	return nil
}

func (s *Store) FinalizeClaim(ctx context.Context, claimID, quorumBps uint64) (*model.ClaimDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim, ok := s.claims[claimID]
	if !ok {
		return nil, &db.NotFoundError{Message: "claim not found"}
	}
	if claim.Finalized {
		return nil, &db.InvalidStateError{Message: "claim already finalized"}
	}

	totalCast := claim.YesVotes + claim.NoVotes
	quorumMet := model.QuorumMet(totalCast, s.totalPower, quorumBps)
	claim.Finalized = true
	claim.Approved = quorumMet && claim.YesVotes > claim.NoVotes
	copied := *claim
	return &copied, nil
}

func (s *Store) MarkPayoutDispatched(ctx context.Context, claimID uint64, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok || !claim.Finalized {
		return nil
	}
	claim.PayoutDispatched = true
	claim.PayoutMessageID = messageID
	return nil
}

func (s *Store) GetReserveState(ctx context.Context) (*model.ReserveStateDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.reserve
	return &state, nil
}

func (s *Store) CreditReserve(ctx context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve.Balance += amount
	return nil
}

func (s *Store) ExecutePayout(
	ctx context.Context, claimID uint64, claimant string, amount uint64, executedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, executed := s.payouts[claimID]; executed {
		return &db.DuplicateKeyError{Message: "payout already executed for claim"}
	}
	if s.reserve.Balance < amount {
		return &db.InsufficientBalanceError{Message: "reserve balance is short of the payout amount"}
	}

	s.payouts[claimID] = &model.PayoutDocument{
		ClaimID:    claimID,
		Claimant:   claimant,
		Amount:     amount,
		ExecutedAt: executedAt,
	}
	s.reserve.Balance -= amount
	s.reserve.ExecutedPayouts++
	return nil
}

func (s *Store) SaveRelayMessage(ctx context.Context, msg *model.RelayMessageDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relayMessages = append(s.relayMessages, *msg)
	return nil
}

// RelayMessages returns a snapshot of the audit records, newest last.
func (s *Store) RelayMessages() []model.RelayMessageDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RelayMessageDocument, len(s.relayMessages))
	copy(out, s.relayMessages)
	return out
}

func (s *Store) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unprocessable = append(s.unprocessable, model.UnprocessableMessageDocument{
		MessageBody: messageBody,
		Receipt:     receipt,
	})
	return nil
}

func (s *Store) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UnprocessableMessageDocument, len(s.unprocessable))
	copy(out, s.unprocessable)
	return out, nil
}

func (s *Store) DeleteUnprocessableMessage(ctx context.Context, receipt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.unprocessable[:0]
	for _, msg := range s.unprocessable {
		if msg.Receipt != receipt {
			kept = append(kept, msg)
		}
	}
	s.unprocessable = kept
	return nil
}

func (s *Store) GetProtocolParams(ctx context.Context) (*model.ProtocolParamsDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	params := s.params
	return &params, nil
}

func (s *Store) UpdateSplit(ctx context.Context, bpsToPool, bpsToReserve uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.BpsToPool = bpsToPool
	s.params.BpsToReserve = bpsToReserve
	return nil
}

func (s *Store) UpdateGovernanceParams(ctx context.Context, votingPeriodSecs, quorumBps uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.VotingPeriodSecs = votingPeriodSecs
	s.params.QuorumBps = quorumBps
	return nil
}

func (s *Store) SetChainAllowlist(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, enabled bool,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[allowlistKey{direction: direction, chainSelector: chainSelector}] = enabled
	return nil
}

func (s *Store) SetCounterpartyAllowlist(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64,
	counterparty string, enabled bool,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := allowlistKey{direction: direction, chainSelector: chainSelector, counterparty: counterparty}
	s.counterparties[key] = enabled
	return nil
}

func (s *Store) IsChainAllowlisted(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chains[allowlistKey{direction: direction, chainSelector: chainSelector}], nil
}

func (s *Store) IsCounterpartyAllowlisted(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, counterparty string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := allowlistKey{direction: direction, chainSelector: chainSelector, counterparty: counterparty}
	return s.counterparties[key], nil
}

func (s *Store) SetGasLimit(ctx context.Context, chainSelector, gasLimit uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gasLimits[chainSelector] = gasLimit
	return nil
}

func (s *Store) GetGasLimit(ctx context.Context, chainSelector uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gasLimits[chainSelector], nil
}

// Dump prints a compact description of the store, handy when a test fails.
func (s *Store) Dump() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf(
		"pool{shares:%d assets:%d} reserve{balance:%d payouts:%d} claims:%d policies:%d totalPower:%d",
		s.pool.TotalShares, s.pool.TotalAssets,
		s.reserve.Balance, s.reserve.ExecutedPayouts,
		len(s.claims), len(s.policies), s.totalPower,
	)
}
