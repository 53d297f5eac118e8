package config

import (
	"fmt"
)

// RelayConfig configures the message-relay transport. Each chain selector
// maps to one queue named "<queue-prefix>.chain.<selector>"; this instance
// consumes its local chain's queue and publishes to remote ones.
type RelayConfig struct {
	Url               string `mapstructure:"url"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	QueuePrefix       string `mapstructure:"queue-prefix"`
	ProcessingTimeout int    `mapstructure:"processing-timeout"`
}

func (cfg *RelayConfig) Validate() error {
	if cfg.Url == "" {
		return fmt.Errorf("missing relay broker url")
	}

	if cfg.QueuePrefix == "" {
		cfg.QueuePrefix = "relay"
	}

	if cfg.ProcessingTimeout <= 0 {
		return fmt.Errorf("relay processing timeout must be a positive number of seconds")
	}

	return nil
}

func (cfg *RelayConfig) QueueNameForChain(chainSelector uint64) string {
	return fmt.Sprintf("%s.chain.%d", cfg.QueuePrefix, chainSelector)
}
