// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Venue adapter kinds.
const (
	VenueKindEVM     = "evm"
	VenueKindIndexer = "indexer"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Venues    []VenueConfig   `mapstructure:"venues"`
	Tokens    []TokenConfig   `mapstructure:"tokens"`
	Pools     []PoolConfig    `mapstructure:"pools"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// VenueConfig describes one liquidity venue family and how to reach it.
type VenueConfig struct {
	Name              string `mapstructure:"name"`
	Kind              string `mapstructure:"kind"` // "evm" or "indexer"
	Chain             string `mapstructure:"chain"`
	RPCURL            string `mapstructure:"rpc_url"`
	WSURL             string `mapstructure:"ws_url"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// TokenConfig describes a tradable token, loaded once at startup.
type TokenConfig struct {
	Symbol      string  `mapstructure:"symbol"`
	Name        string  `mapstructure:"name"`
	Chain       string  `mapstructure:"chain"`
	Address     string  `mapstructure:"address"` // empty for native assets
	Decimals    uint8   `mapstructure:"decimals"`
	Native      bool    `mapstructure:"native"`
	RefPriceUSD float64 `mapstructure:"ref_price_usd"` // reference price for liquidity estimation
}

// PoolConfig describes one pool on one venue.
type PoolConfig struct {
	Venue   string `mapstructure:"venue"`
	Address string `mapstructure:"address"`
	TokenA  string `mapstructure:"token_a"`
	TokenB  string `mapstructure:"token_b"`
	FeeBps  uint32 `mapstructure:"fee_bps"`
	Enabled bool   `mapstructure:"enabled"`
}

// DetectorConfig holds detection thresholds and cycle timing.
type DetectorConfig struct {
	MinProfitBps    float64       `mapstructure:"min_profit_bps"`
	MinLiquidityUSD float64       `mapstructure:"min_liquidity_usd"`
	ScanInterval    time.Duration `mapstructure:"scan_interval"`
	OpportunityTTL  time.Duration `mapstructure:"opportunity_ttl"`
}

// ScoringConfig holds the decision engine gate thresholds.
type ScoringConfig struct {
	Enabled               bool    `mapstructure:"enabled"`
	RiskThreshold         float64 `mapstructure:"risk_threshold"`
	MinSuccessProbability float64 `mapstructure:"min_success_probability"`
}

// ExecutionConfig holds execution engine bounds and settlement wiring.
type ExecutionConfig struct {
	RelayURL        string        `mapstructure:"relay_url"`
	ContractAddress string        `mapstructure:"contract_address"`
	LoanPoolAddress string        `mapstructure:"loan_pool_address"`
	MaxSlippageBps  uint32        `mapstructure:"max_slippage_bps"`
	MinProfitBps    uint32        `mapstructure:"min_profit_bps"`
	MaxConcurrent   int           `mapstructure:"max_concurrent"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	SubmitTimeout   time.Duration `mapstructure:"submit_timeout"`
	RequestMaxAge   time.Duration `mapstructure:"request_max_age"`
	DryRun          bool          `mapstructure:"dry_run"`
	HistorySize     int           `mapstructure:"history_size"`
	HistoryPath     string        `mapstructure:"history_path"` // sqlite file, empty = memory only
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// MinProfitBpsDecimal returns min profit bps as decimal.Decimal.
func (c *DetectorConfig) MinProfitBpsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitBps)
}

// MinLiquidityUSDDecimal returns min liquidity USD as decimal.Decimal.
func (c *DetectorConfig) MinLiquidityUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinLiquidityUSD)
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("FLASHARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "FLASHARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "FLASHARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "FLASHARB_LOG_LEVEL", "LOG_LEVEL")

	// Detector
	v.BindEnv("detector.min_profit_bps", "FLASHARB_MIN_PROFIT_BPS")
	v.BindEnv("detector.min_liquidity_usd", "FLASHARB_MIN_LIQUIDITY_USD")
	v.BindEnv("detector.scan_interval", "FLASHARB_SCAN_INTERVAL")
	v.BindEnv("detector.opportunity_ttl", "FLASHARB_OPPORTUNITY_TTL")

	// Scoring
	v.BindEnv("scoring.enabled", "FLASHARB_AI_ENABLED", "AI_ENABLED")
	v.BindEnv("scoring.risk_threshold", "FLASHARB_RISK_THRESHOLD")
	v.BindEnv("scoring.min_success_probability", "FLASHARB_MIN_SUCCESS_PROBABILITY")

	// Execution
	v.BindEnv("execution.relay_url", "FLASHARB_RELAY_URL")
	v.BindEnv("execution.contract_address", "FLASHARB_CONTRACT_ADDRESS")
	v.BindEnv("execution.loan_pool_address", "FLASHARB_LOAN_POOL_ADDRESS")
	v.BindEnv("execution.max_slippage_bps", "FLASHARB_MAX_SLIPPAGE_BPS")
	v.BindEnv("execution.max_concurrent", "FLASHARB_MAX_CONCURRENT")
	v.BindEnv("execution.dry_run", "FLASHARB_DRY_RUN")

	// Telemetry
	v.BindEnv("telemetry.enabled", "FLASHARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "FLASHARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "FLASHARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "flasharb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Detector defaults
	v.SetDefault("detector.min_profit_bps", 50)       // 0.5%
	v.SetDefault("detector.min_liquidity_usd", 10000) // $10k per venue
	v.SetDefault("detector.scan_interval", "3s")
	v.SetDefault("detector.opportunity_ttl", "30s")

	// Scoring defaults
	v.SetDefault("scoring.enabled", true)
	v.SetDefault("scoring.risk_threshold", 70)
	v.SetDefault("scoring.min_success_probability", 0.4)

	// Execution defaults
	v.SetDefault("execution.max_slippage_bps", 100) // 1%
	v.SetDefault("execution.min_profit_bps", 10)
	v.SetDefault("execution.max_concurrent", 3)
	v.SetDefault("execution.max_retries", 2)
	v.SetDefault("execution.retry_delay", "2s")
	v.SetDefault("execution.submit_timeout", "30s")
	v.SetDefault("execution.request_max_age", "10s")
	v.SetDefault("execution.dry_run", true)
	v.SetDefault("execution.history_size", 100)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "flasharb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Failures here are fatal at startup,
// before any scan cycle runs.
func (c *Config) Validate() error {
	if len(c.Venues) == 0 {
		return fmt.Errorf("at least one venue is required")
	}

	venues := make(map[string]VenueConfig, len(c.Venues))
	for _, venue := range c.Venues {
		if venue.Name == "" {
			return fmt.Errorf("venue name is required")
		}
		if _, dup := venues[venue.Name]; dup {
			return fmt.Errorf("duplicate venue %q", venue.Name)
		}
		switch venue.Kind {
		case VenueKindEVM:
			if venue.RPCURL == "" {
				return fmt.Errorf("venue %q: rpc_url is required for evm venues", venue.Name)
			}
		case VenueKindIndexer:
			if venue.WSURL == "" {
				return fmt.Errorf("venue %q: ws_url is required for indexer venues", venue.Name)
			}
		default:
			return fmt.Errorf("venue %q: unknown kind %q", venue.Name, venue.Kind)
		}
		venues[venue.Name] = venue
	}

	tokens := make(map[string]TokenConfig, len(c.Tokens))
	for _, token := range c.Tokens {
		if token.Symbol == "" {
			return fmt.Errorf("token symbol is required")
		}
		if _, dup := tokens[token.Symbol]; dup {
			return fmt.Errorf("duplicate token %q", token.Symbol)
		}
		if !token.Native && token.Address == "" {
			return fmt.Errorf("token %q: address is required for non-native tokens", token.Symbol)
		}
		tokens[token.Symbol] = token
	}

	if len(c.Pools) < 2 {
		return fmt.Errorf("at least two pools are required to detect cross-venue spreads")
	}
	for _, pool := range c.Pools {
		venue, ok := venues[pool.Venue]
		if !ok {
			return fmt.Errorf("pool %q references unknown venue %q", pool.Address, pool.Venue)
		}
		if pool.Address == "" {
			return fmt.Errorf("pool on venue %q: address is required", pool.Venue)
		}
		if venue.Kind == VenueKindEVM && !common.IsHexAddress(pool.Address) {
			return fmt.Errorf("pool %q on evm venue %q: not a hex address", pool.Address, pool.Venue)
		}
		if _, ok := tokens[pool.TokenA]; !ok {
			return fmt.Errorf("pool %q references unknown token %q", pool.Address, pool.TokenA)
		}
		if _, ok := tokens[pool.TokenB]; !ok {
			return fmt.Errorf("pool %q references unknown token %q", pool.Address, pool.TokenB)
		}
		if pool.TokenA == pool.TokenB {
			return fmt.Errorf("pool %q trades %s against itself", pool.Address, pool.TokenA)
		}
		if pool.FeeBps >= 10000 {
			return fmt.Errorf("pool %q: fee_bps %d out of range", pool.Address, pool.FeeBps)
		}
	}

	if c.Detector.ScanInterval <= 0 {
		return fmt.Errorf("detector.scan_interval must be positive")
	}
	if c.Detector.OpportunityTTL <= 0 {
		return fmt.Errorf("detector.opportunity_ttl must be positive")
	}
	if c.Scoring.RiskThreshold < 0 || c.Scoring.RiskThreshold > 100 {
		return fmt.Errorf("scoring.risk_threshold must be in [0,100]")
	}
	if c.Scoring.MinSuccessProbability < 0 || c.Scoring.MinSuccessProbability > 1 {
		return fmt.Errorf("scoring.min_success_probability must be in [0,1]")
	}
	if c.Execution.MaxConcurrent < 1 {
		return fmt.Errorf("execution.max_concurrent must be at least 1")
	}
	if c.Execution.MaxRetries < 1 {
		return fmt.Errorf("execution.max_retries must be at least 1")
	}
	if c.Execution.MaxSlippageBps >= 10000 {
		return fmt.Errorf("execution.max_slippage_bps out of range")
	}
	if !c.Execution.DryRun {
		if c.Execution.RelayURL == "" {
			return fmt.Errorf("execution.relay_url is required when dry_run is off")
		}
		if c.Execution.ContractAddress == "" {
			return fmt.Errorf("execution.contract_address is required when dry_run is off")
		}
		if c.Execution.LoanPoolAddress == "" {
			return fmt.Errorf("execution.loan_pool_address is required when dry_run is off")
		}
	}

	return nil
}
