// Package config loads the dev node configuration from a YAML file, an
// optional .env file and DIAMOND_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/hashleap/diamond/facets/subscription"
)

//go:embed schema.json
var schema []byte

// ErrUnknownContract is returned by the address book for a missing entry
var ErrUnknownContract = errors.New("contract not in address book")

// Config holds all dev node configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	MCP          MCPConfig          `yaml:"mcp"`
	Log          LogConfig          `yaml:"log"`
	Chain        ChainConfig        `yaml:"chain"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Renewal      RenewalConfig      `yaml:"renewal"`
	Networks     map[string]Network `yaml:"networks"`
}

// HTTPConfig configures the JSON API
type HTTPConfig struct {
	Listen          string `yaml:"listen"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// MCPConfig configures the MCP SSE endpoint
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LogConfig selects the logrus level and formatter
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ChainConfig configures the in-process ledger
type ChainConfig struct {
	ID          int64  `yaml:"id"`
	Owner       string `yaml:"owner"`
	GenesisTime int64  `yaml:"genesis_time"`
}

// SubscriptionConfig is passed to the subscription facet initializer.
// Durations are in days, ChargeGrace in seconds.
type SubscriptionConfig struct {
	ProtocolFee uint8  `yaml:"protocol_fee"`
	MinDuration uint16 `yaml:"min_duration"`
	MaxDuration uint16 `yaml:"max_duration"`
	ChargeGrace uint32 `yaml:"charge_grace"`
}

// RenewalConfig configures the renewal scheduler
type RenewalConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Schedule  string `yaml:"schedule"`
	PlanOwner string `yaml:"plan_owner"`
}

// Network is one entry of the address book
type Network struct {
	ChainID   int64             `yaml:"chain_id"`
	RPCURL    string            `yaml:"rpc_url"`
	WSSURL    string            `yaml:"wss_url"`
	Contracts map[string]string `yaml:"contracts"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Listen:          ":8545",
			ShutdownTimeout: "10s",
		},
		MCP: MCPConfig{
			Listen: ":8546",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Chain: ChainConfig{
			ID:    1337,
			Owner: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		},
		Subscription: SubscriptionConfig{
			MinDuration: subscription.DefaultMinDuration,
			MaxDuration: subscription.DefaultMaxDuration,
		},
		Renewal: RenewalConfig{
			Schedule: "5 * * * *",
		},
	}
}

// Load builds the configuration. path may be empty. A .env file in the
// working directory is loaded first when present; environment variables
// override file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document over the defaults without
// consulting the environment
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if doc == nil {
		return nil
	}
	if err := validateSchema(doc); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func validateSchema(doc map[string]interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Validate checks cross-field constraints the schema cannot express
func (c *Config) Validate() error {
	if c.HTTP.Listen == "" {
		return fmt.Errorf("http listen address is required")
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	if c.MCP.Enabled && c.MCP.Listen == "" {
		return fmt.Errorf("mcp listen address is required when mcp is enabled")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}
	if c.Chain.ID <= 0 {
		return fmt.Errorf("chain id must be positive")
	}
	if !common.IsHexAddress(c.Chain.Owner) {
		return fmt.Errorf("invalid owner address: %q", c.Chain.Owner)
	}
	if c.Subscription.ProtocolFee > 100 {
		return fmt.Errorf("protocol fee must be at most 100")
	}
	if c.Subscription.MinDuration == 0 || c.Subscription.MinDuration > c.Subscription.MaxDuration {
		return fmt.Errorf("invalid duration bounds %d..%d", c.Subscription.MinDuration, c.Subscription.MaxDuration)
	}
	if c.Renewal.Enabled && !common.IsHexAddress(c.Renewal.PlanOwner) {
		return fmt.Errorf("renewal requires a plan owner address")
	}
	for name, n := range c.Networks {
		for contract, addr := range n.Contracts {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("network %s: invalid %s address %q", name, contract, addr)
			}
		}
	}
	return nil
}

// ShutdownTimeout parses the HTTP shutdown timeout
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	if c.HTTP.ShutdownTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.HTTP.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return d, nil
}

// OwnerAddress is the diamond owner on the dev ledger
func (c *Config) OwnerAddress() common.Address {
	return common.HexToAddress(c.Chain.Owner)
}

// RenewalPlanOwner is the plan owner the renewal scheduler charges for
func (c *Config) RenewalPlanOwner() common.Address {
	return common.HexToAddress(c.Renewal.PlanOwner)
}

// GenesisTime is the ledger's first block time, or now when unset
func (c *Config) GenesisTime() time.Time {
	if c.Chain.GenesisTime == 0 {
		return time.Now()
	}
	return time.Unix(c.Chain.GenesisTime, 0)
}

// SubscriptionInit converts the subscription section to the facet
// initializer's arguments
func (c *Config) SubscriptionInit() subscription.Config {
	return subscription.Config{
		MinDuration:     c.Subscription.MinDuration,
		MaxDuration:     c.Subscription.MaxDuration,
		ChargeGrace:     c.Subscription.ChargeGrace,
		BaseContractFee: c.Subscription.ProtocolFee,
	}
}

// Contract looks up a deployed contract in the address book
func (c *Config) Contract(network, name string) (common.Address, error) {
	n, ok := c.Networks[network]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: unknown network %s", ErrUnknownContract, network)
	}
	addr, ok := n.Contracts[name]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s on %s", ErrUnknownContract, name, network)
	}
	return common.HexToAddress(addr), nil
}

// NewLogger builds the process logger
func (c LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
