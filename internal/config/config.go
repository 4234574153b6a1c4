// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	DigiKey DigiKeyConfig `yaml:"digikey" mapstructure:"digikey"`
	Mouser  MouserConfig  `yaml:"mouser" mapstructure:"mouser"`
	News    NewsConfig    `yaml:"news" mapstructure:"news"`
	Lookup  LookupConfig  `yaml:"lookup" mapstructure:"lookup"`
	Risk    RiskConfig    `yaml:"risk" mapstructure:"risk"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the history store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DigiKeyConfig holds DigiKey API credentials and endpoints.
type DigiKeyConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TokenURL     string  `yaml:"token_url" mapstructure:"token_url"`
	RateRPS      float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// MouserConfig holds Mouser API credentials and endpoint.
type MouserConfig struct {
	APIKey  string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RateRPS float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// NewsConfig holds the headline search API settings.
type NewsConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	MaxHeadlines int    `yaml:"max_headlines" mapstructure:"max_headlines"`
}

// LookupConfig configures lookup orchestration.
type LookupConfig struct {
	TimeoutSecs        int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrentParts int `yaml:"max_concurrent_parts" mapstructure:"max_concurrent_parts"`
}

// RiskConfig holds risk-derivation thresholds.
type RiskConfig struct {
	RiskyRegions        []string `yaml:"risky_regions" mapstructure:"risky_regions"`
	LandedSurcharge     float64  `yaml:"landed_surcharge" mapstructure:"landed_surcharge"`
	BottleneckStock     int      `yaml:"bottleneck_stock" mapstructure:"bottleneck_stock"`
	BottleneckLeadWeeks int      `yaml:"bottleneck_lead_weeks" mapstructure:"bottleneck_lead_weeks"`
	DeclineThreshold    float64  `yaml:"decline_threshold" mapstructure:"decline_threshold"`
	VolatilityThreshold float64  `yaml:"volatility_threshold" mapstructure:"volatility_threshold"`
}

// ServerConfig configures the lookup API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and SOURCING_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SOURCING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sourcing.db")
	// Credentials default empty so env-only values reach Unmarshal.
	v.SetDefault("digikey.client_id", "")
	v.SetDefault("digikey.client_secret", "")
	v.SetDefault("mouser.api_key", "")
	v.SetDefault("news.key", "")
	v.SetDefault("digikey.base_url", "https://api.digikey.com")
	v.SetDefault("digikey.token_url", "https://api.digikey.com/v1/oauth2/token")
	v.SetDefault("digikey.rate_rps", 5)
	v.SetDefault("mouser.base_url", "https://api.mouser.com")
	v.SetDefault("mouser.rate_rps", 2)
	v.SetDefault("news.base_url", "https://s.jina.ai")
	v.SetDefault("news.max_headlines", 3)
	v.SetDefault("lookup.timeout_secs", 5)
	v.SetDefault("lookup.max_concurrent_parts", 4)
	v.SetDefault("risk.risky_regions", []string{"CN", "RU"})
	v.SetDefault("risk.landed_surcharge", 0.10)
	v.SetDefault("risk.bottleneck_stock", 10)
	v.SetDefault("risk.bottleneck_lead_weeks", 20)
	v.SetDefault("risk.decline_threshold", 10.0)
	v.SetDefault("risk.volatility_threshold", 0.5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
