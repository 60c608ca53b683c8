// Package config loads the decoder's runtime configuration from a YAML file
// and environment variables via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the decoder.
type Config struct {
	Solana   SolanaConfig   `mapstructure:"solana" yaml:"solana"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// SolanaConfig configures how transactions are sourced.
type SolanaConfig struct {
	RPC          string `mapstructure:"rpc" yaml:"rpc"`
	Network      string `mapstructure:"network" yaml:"network"`
	Timeout      int    `mapstructure:"timeout" yaml:"timeout"`             // seconds; loaded but not applied to RPC calls
	PollInterval int    `mapstructure:"poll_interval" yaml:"poll_interval"` // seconds, between signature polls
	MaxRetries   int    `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelayMs int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json or text
}

// PostgresConfig configures the decoded-event sink. Enabled defaults to
// false so `decoder stream` can run against stdout alone with no database.
type PostgresConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	User            string `mapstructure:"user" yaml:"user"`
	Password        string `mapstructure:"password" yaml:"password"`
	Database        string `mapstructure:"database" yaml:"database"`
	SSLMode         string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"` // seconds
}

// DefaultConfig returns the decoder's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPC:          "https://api.mainnet-beta.solana.com",
			Network:      "mainnet-beta",
			Timeout:      30,
			PollInterval: 2,
			MaxRetries:   3,
			RetryDelayMs: 500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Postgres: PostgresConfig{
			Enabled:         false,
			Host:            "localhost",
			Port:            5432,
			User:            "decoder",
			Database:        "decoder",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			ConnMaxLifetime: 300,
		},
	}
}

// Load loads configuration from configPath (or the default search path if
// empty) and the DECODER_-prefixed environment.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName(".decoder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("DECODER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// RPCEndpoint returns the configured RPC endpoint, falling back to a
// well-known cluster endpoint for Network if RPC itself is unset.
func (c *SolanaConfig) RPCEndpoint() string {
	if c.RPC != "" {
		return c.RPC
	}
	switch c.Network {
	case "mainnet", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "devnet":
		return "https://api.devnet.solana.com"
	case "localnet", "localhost":
		return "http://localhost:8899"
	default:
		return "https://api.mainnet-beta.solana.com"
	}
}
