package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envDevelopment = "development"

	defaultHost         = "0.0.0.0"
	defaultPort         = "8080"
	defaultDBPath       = "./importcalc.db"
	defaultModel        = "claude-sonnet-4-20250514"
	defaultRatesURL     = "https://open.er-api.com/v6/latest/EUR"
	defaultAITimeout    = 60 * time.Second
	defaultRatesTimeout = 5 * time.Second
	defaultRatesTTL     = time.Hour
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string
	Host            string
	Port            string
	DBPath          string
	AnthropicAPIKey string
	AnthropicModel  string
	AITimeout       time.Duration
	AIMaxTokens     int
	RatesURL        string
	RatesTimeout    time.Duration
	RatesTTL        time.Duration
	FeeSchedulePath string
	ReferenceYear   int
	LogLevel        string
	LogFormat       string
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == envDevelopment
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AIEnabled reports whether a model credential is configured.
func (c Config) AIEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// Load reads a local .env file (best effort) and the environment.
func Load() (Config, error) {
	// Missing .env is fine; production injects real environment variables.
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", envDevelopment)
	v.SetDefault("HOST", defaultHost)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("DB_PATH", defaultDBPath)
	v.SetDefault("ANTHROPIC_MODEL", defaultModel)
	v.SetDefault("AI_TIMEOUT", defaultAITimeout.String())
	v.SetDefault("AI_MAX_TOKENS", "1000")
	v.SetDefault("RATES_URL", defaultRatesURL)
	v.SetDefault("RATES_TIMEOUT", defaultRatesTimeout.String())
	v.SetDefault("RATES_TTL", defaultRatesTTL.String())
	v.SetDefault("REFERENCE_YEAR", "0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := Config{
		Env:             strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		Host:            v.GetString("HOST"),
		Port:            v.GetString("PORT"),
		DBPath:          v.GetString("DB_PATH"),
		AnthropicAPIKey: strings.TrimSpace(v.GetString("ANTHROPIC_API_KEY")),
		AnthropicModel:  v.GetString("ANTHROPIC_MODEL"),
		RatesURL:        v.GetString("RATES_URL"),
		FeeSchedulePath: v.GetString("FEE_SCHEDULE_PATH"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
	}

	var err error
	if cfg.AITimeout, err = duration(v, "AI_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.RatesTimeout, err = duration(v, "RATES_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.RatesTTL, err = duration(v, "RATES_TTL"); err != nil {
		return Config{}, err
	}
	if cfg.AIMaxTokens, err = integer(v, "AI_MAX_TOKENS"); err != nil {
		return Config{}, err
	}
	if cfg.ReferenceYear, err = integer(v, "REFERENCE_YEAR"); err != nil {
		return Config{}, err
	}
	if cfg.AIMaxTokens <= 0 {
		return Config{}, fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", cfg.AIMaxTokens)
	}
	if cfg.ReferenceYear < 0 {
		return Config{}, fmt.Errorf("REFERENCE_YEAR must not be negative, got %d", cfg.ReferenceYear)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func integer(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}
