package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// DatabaseURL selects the PostgreSQL store when non-empty; the in-memory
	// store is used otherwise.
	DatabaseURL string

	// LedgerOwner is the principal that owns the ledger at startup.
	LedgerOwner string

	// JWTSecret verifies bearer tokens carrying the caller principal.
	JWTSecret string

	// KafkaBrokers selects the Kafka event sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// AssetPrecision is the number of minor-unit digits used when rendering
	// display amounts.
	AssetPrecision int

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("LEDGER_OWNER", "")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "ledger_events")
	viper.SetDefault("ASSET_PRECISION", 2)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		LedgerOwner:    viper.GetString("LEDGER_OWNER"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		KafkaTopic:     viper.GetString("KAFKA_TOPIC"),
		AssetPrecision: viper.GetInt("ASSET_PRECISION"),
		RateLimit:      viper.GetString("RATE_LIMIT"),
	}

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.LedgerOwner == "" {
		return nil, fmt.Errorf("LEDGER_OWNER environment variable must be set")
	}

	if cfg.AssetPrecision < 0 || cfg.AssetPrecision > 18 {
		return nil, fmt.Errorf("ASSET_PRECISION must be between 0 and 18, got %d", cfg.AssetPrecision)
	}

	return cfg, nil
}
