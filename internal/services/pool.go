package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type PoolStatePublic struct {
	TotalShares uint64 `json:"total_shares"`
	TotalAssets uint64 `json:"total_assets"`
}

type StakePublic struct {
	Owner           string `json:"owner"`
	Shares          uint64 `json:"shares"`
	EscrowedShares  uint64 `json:"escrowed_shares"`
	DepositedAssets uint64 `json:"deposited_assets"`
}

type WithdrawRequestPublic struct {
	Owner       string `json:"owner"`
	Shares      uint64 `json:"shares"`
	LockedUntil int64  `json:"locked_until"`
}

type DepositPublic struct {
	Owner        string `json:"owner"`
	Amount       uint64 `json:"amount"`
	SharesMinted uint64 `json:"shares_minted"`
}

type WithdrawalPublic struct {
	Owner        string `json:"owner"`
	SharesBurned uint64 `json:"shares_burned"`
	AssetsOut    uint64 `json:"assets_out"`
}

// Deposit mints shares at the current share price and pushes the owner's new
// absolute voting power to the remote mirror. The power sync is best-effort:
// a relay failure leaves voting power stale until the next sync, it never
// reverts the deposit.
func (s *Services) Deposit(ctx context.Context, owner string, amount uint64) (*DepositPublic, *types.Error) {
	if amount == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroAmount, "deposit amount must be positive")
	}

	shares, err := s.DbClient.DepositStake(ctx, owner, amount)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("owner", owner).Msg("error while depositing stake")
		return nil, types.NewInternalServiceError(err)
	}

	s.syncVotingPower(ctx, owner)

	return &DepositPublic{Owner: owner, Amount: amount, SharesMinted: shares}, nil
}

// RequestWithdraw escrows the shares and arms the cooldown. A second request
// while one is outstanding is rejected; the owner completes or waits.
func (s *Services) RequestWithdraw(ctx context.Context, owner string, shares uint64) (*WithdrawRequestPublic, *types.Error) {
	if shares == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroAmount, "withdraw shares must be positive")
	}

	lockedUntil := s.now().Add(s.cfg.Protocol.CooldownPeriod)
	err := s.DbClient.CreateWithdrawRequest(ctx, owner, shares, lockedUntil)
	if err != nil {
		if db.IsInsufficientBalanceError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusBadRequest, types.InsufficientShares, "stake holds fewer shares than requested",
			)
		}
		if db.IsDuplicateKeyError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.WithdrawPending, "a withdraw request is already pending for this owner",
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("owner", owner).Msg("error while creating withdraw request")
		return nil, types.NewInternalServiceError(err)
	}

	return &WithdrawRequestPublic{
		Owner:       owner,
		Shares:      shares,
		LockedUntil: lockedUntil.Unix(),
	}, nil
}

// CompleteWithdraw burns the escrowed shares once the cooldown has passed
// and values them at the completion-time share price, so premium credited
// during the cooldown still accrues to the leaver.
func (s *Services) CompleteWithdraw(ctx context.Context, owner string) (*WithdrawalPublic, *types.Error) {
	request, err := s.DbClient.GetWithdrawRequest(ctx, owner)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound, "no pending withdraw request for owner",
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("owner", owner).Msg("error while fetching withdraw request")
		return nil, types.NewInternalServiceError(err)
	}

	if s.now().Before(request.LockedUntil) {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.StillLocked, "withdrawal is still in its cooldown period",
		)
	}

	assetsOut, _, err := s.DbClient.CompleteWithdrawRequest(ctx, owner)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound, "no pending withdraw request for owner",
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("owner", owner).Msg("error while completing withdraw request")
		return nil, types.NewInternalServiceError(err)
	}

	s.syncVotingPower(ctx, owner)

	return &WithdrawalPublic{
		Owner:        owner,
		SharesBurned: request.Shares,
		AssetsOut:    assetsOut,
	}, nil
}

func (s *Services) GetPoolState(ctx context.Context) (*PoolStatePublic, *types.Error) {
	state, err := s.DbClient.GetPoolState(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching pool state")
		return nil, types.NewInternalServiceError(err)
	}
	return &PoolStatePublic{TotalShares: state.TotalShares, TotalAssets: state.TotalAssets}, nil
}

func (s *Services) GetStake(ctx context.Context, owner string) (*StakePublic, *types.Error) {
	stake, err := s.DbClient.GetStake(ctx, owner)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "no stake found for owner")
		}
		log.Ctx(ctx).Error().Err(err).Str("owner", owner).Msg("error while fetching stake")
		return nil, types.NewInternalServiceError(err)
	}
	return &StakePublic{
		Owner:           stake.Owner,
		Shares:          stake.Shares,
		EscrowedShares:  stake.EscrowedShares,
		DepositedAssets: stake.DepositedAssets,
	}, nil
}

func (s *Services) GetWithdrawRequest(ctx context.Context, owner string) (*WithdrawRequestPublic, *types.Error) {
	request, err := s.DbClient.GetWithdrawRequest(ctx, owner)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound, "no pending withdraw request for owner",
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("owner", owner).Msg("error while fetching withdraw request")
		return nil, types.NewInternalServiceError(err)
	}
	return &WithdrawRequestPublic{
		Owner:       request.Owner,
		Shares:      request.Shares,
		LockedUntil: request.LockedUntil.Unix(),
	}, nil
}

// syncVotingPower pushes the owner's absolute share balance to the remote
// mirror. Escrowed shares still carry power; they are burned, not spent,
// only at withdrawal completion.
func (s *Services) syncVotingPower(ctx context.Context, owner string) {
	if s.cfg.Protocol.PowerSyncChainSelector == 0 {
		return
	}

	var power uint64
	stake, err := s.DbClient.GetStake(ctx, owner)
	if err == nil {
		power = stake.Shares + stake.EscrowedShares
	} else if !db.IsNotFoundError(err) {
		log.Ctx(ctx).Warn().Err(err).Str("owner", owner).Msg("skipping power sync, stake lookup failed")
		return
	}

	payload := relay.PowerSyncPayload{Account: owner, Power: power}
	_, sendErr := s.relay.Send(
		ctx,
		s.cfg.Protocol.PowerSyncChainSelector,
		s.cfg.Protocol.PowerSyncReceiver,
		relay.PowerSyncKind,
		payload,
		s.cfg.Protocol.FallbackFee,
	)
	if sendErr != nil {
		log.Ctx(ctx).Warn().Err(sendErr).Str("owner", owner).
			Msg("power sync message failed, mirror is stale until retried")
	}
}
