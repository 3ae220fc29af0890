package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables recognised by applyEnv
const (
	EnvHTTPListen      = "DIAMOND_HTTP_LISTEN"
	EnvMCPEnabled      = "DIAMOND_MCP_ENABLED"
	EnvMCPListen       = "DIAMOND_MCP_LISTEN"
	EnvLogLevel        = "DIAMOND_LOG_LEVEL"
	EnvLogFormat       = "DIAMOND_LOG_FORMAT"
	EnvChainID         = "DIAMOND_CHAIN_ID"
	EnvOwner           = "DIAMOND_OWNER"
	EnvProtocolFee     = "DIAMOND_PROTOCOL_FEE"
	EnvChargeGrace     = "DIAMOND_CHARGE_GRACE"
	EnvRenewalEnabled  = "DIAMOND_RENEWAL_ENABLED"
	EnvRenewalSchedule = "DIAMOND_RENEWAL_SCHEDULE"
	EnvPlanOwner       = "DIAMOND_PLAN_OWNER"
)

func (c *Config) applyEnv() error {
	c.HTTP.Listen = getEnv(EnvHTTPListen, c.HTTP.Listen)
	c.MCP.Enabled = getEnvBool(EnvMCPEnabled, c.MCP.Enabled)
	c.MCP.Listen = getEnv(EnvMCPListen, c.MCP.Listen)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnv(EnvLogFormat, c.Log.Format)
	c.Chain.Owner = getEnv(EnvOwner, c.Chain.Owner)
	c.Renewal.Enabled = getEnvBool(EnvRenewalEnabled, c.Renewal.Enabled)
	c.Renewal.Schedule = getEnv(EnvRenewalSchedule, c.Renewal.Schedule)
	c.Renewal.PlanOwner = getEnv(EnvPlanOwner, c.Renewal.PlanOwner)

	if v := os.Getenv(EnvChainID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvChainID, err)
		}
		c.Chain.ID = id
	}
	if v := os.Getenv(EnvProtocolFee); v != "" {
		fee, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvProtocolFee, err)
		}
		c.Subscription.ProtocolFee = uint8(fee)
	}
	if v := os.Getenv(EnvChargeGrace); v != "" {
		grace, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvChargeGrace, err)
		}
		c.Subscription.ChargeGrace = uint32(grace)
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}
