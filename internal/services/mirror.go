package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/types"
)

type VotingPowerPublic struct {
	Account string `json:"account"`
	Power   uint64 `json:"power"`
}

type TotalPowerPublic struct {
	TotalPower uint64 `json:"total_power"`
}

// SetPower overwrites the account's mirrored power with an absolute value.
// Replays of the same sync are no-ops, which is the whole idempotency story
// for power updates.
func (s *Services) SetPower(ctx context.Context, account string, power uint64) *types.Error {
	if err := s.DbClient.SetVotingPower(ctx, account, power); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("account", account).Msg("error while setting voting power")
		return types.NewInternalServiceError(err)
	}
	log.Ctx(ctx).Debug().Str("account", account).Uint64("power", power).Msg("voting power mirrored")
	return nil
}

// PowerOf returns zero for unknown accounts; the mirror has no concept of
// a missing entry.
func (s *Services) PowerOf(ctx context.Context, account string) (*VotingPowerPublic, *types.Error) {
	power, err := s.DbClient.GetVotingPower(ctx, account)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("account", account).Msg("error while fetching voting power")
		return nil, types.NewInternalServiceError(err)
	}
	return &VotingPowerPublic{Account: account, Power: power}, nil
}

func (s *Services) TotalPower(ctx context.Context) (*TotalPowerPublic, *types.Error) {
	total, err := s.DbClient.GetTotalVotingPower(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching total voting power")
		return nil, types.NewInternalServiceError(err)
	}
	return &TotalPowerPublic{TotalPower: total}, nil
}
