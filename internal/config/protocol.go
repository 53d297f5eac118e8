package config

import (
	"encoding/hex"
	"fmt"
	"time"
)

const BpsDenominator = 10000

// ProtocolConfig carries the settlement-engine parameters for the chain this
// instance serves. Split and governance values here are only the seed for the
// owner-mutable admin state; once persisted, the stored values win.
type ProtocolConfig struct {
	LocalChainSelector uint64 `mapstructure:"local-chain-selector"`
	// LocalSender is the hex-encoded identity this instance signs outbound
	// envelopes with. Remote allowlists authenticate against it.
	LocalSender         string        `mapstructure:"local-sender"`
	CooldownPeriod      time.Duration `mapstructure:"cooldown-period"`
	VotingPeriod        time.Duration `mapstructure:"voting-period"`
	QuorumBps           uint64        `mapstructure:"quorum-bps"`
	MaxCoverageDuration time.Duration `mapstructure:"max-coverage-duration"`
	BpsToPool           uint64        `mapstructure:"bps-to-pool"`
	BpsToReserve        uint64        `mapstructure:"bps-to-reserve"`
	// FallbackFee is applied when the fee oracle cannot be reached. It is
	// also the fee budget attached to best-effort sends (power sync).
	FallbackFee uint64 `mapstructure:"fallback-fee"`
	// PowerSyncChainSelector / PowerSyncReceiver address the remote voting
	// power mirror. A zero selector disables power sync, which is the
	// correct setting for registry-side instances.
	PowerSyncChainSelector uint64 `mapstructure:"power-sync-chain-selector"`
	PowerSyncReceiver      string `mapstructure:"power-sync-receiver"`
}

func (cfg *ProtocolConfig) Validate() error {
	if cfg.LocalChainSelector == 0 {
		return fmt.Errorf("missing local chain selector")
	}

	if cfg.LocalSender == "" {
		return fmt.Errorf("missing local sender identity")
	}

	if _, err := hex.DecodeString(cfg.LocalSender); err != nil {
		return fmt.Errorf("local sender must be hex encoded: %w", err)
	}

	if cfg.CooldownPeriod <= 0 {
		return fmt.Errorf("withdrawal cooldown period must be positive")
	}

	if cfg.VotingPeriod <= 0 {
		return fmt.Errorf("voting period must be positive")
	}

	if cfg.QuorumBps > BpsDenominator {
		return fmt.Errorf("quorum bps cannot exceed %d", BpsDenominator)
	}

	if cfg.MaxCoverageDuration <= 0 {
		return fmt.Errorf("max coverage duration must be positive")
	}

	if cfg.BpsToPool+cfg.BpsToReserve != BpsDenominator {
		return fmt.Errorf("premium split must sum to %d bps", BpsDenominator)
	}

	if cfg.PowerSyncChainSelector != 0 {
		if cfg.PowerSyncReceiver == "" {
			return fmt.Errorf("missing power sync receiver")
		}
		if _, err := hex.DecodeString(cfg.PowerSyncReceiver); err != nil {
			return fmt.Errorf("power sync receiver must be hex encoded: %w", err)
		}
	}

	return nil
}
