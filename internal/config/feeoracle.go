package config

import (
	"fmt"
	"net/url"
)

// FeeOracleConfig configures the external relay-fee pricing service.
// The oracle is advisory: when it is unreachable the protocol's fallback
// fee applies, so an empty host is a valid configuration.
type FeeOracleConfig struct {
	Host    string `mapstructure:"host"`
	Timeout int    `mapstructure:"timeout"`
}

func (cfg *FeeOracleConfig) Validate() error {
	if cfg.Host == "" {
		return nil
	}

	parsedURL, err := url.ParseRequestURI(cfg.Host)
	if err != nil {
		return fmt.Errorf("invalid fee oracle host: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("fee oracle host must start with http or https")
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("fee oracle timeout must be a positive number of milliseconds")
	}

	return nil
}

func (cfg *FeeOracleConfig) Enabled() bool {
	return cfg.Host != ""
}
