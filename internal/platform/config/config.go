package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. Base currency and retry bounds are
// passed into service constructors explicitly so tests can substitute
// alternates without process-wide state.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrency is the pivot for transitive rate resolution.
	BaseCurrency string
	// DefaultCurrency is assumed for instruments created without one.
	DefaultCurrency string
	// TxMaxRetries bounds internal retries of concurrent-update conflicts.
	TxMaxRetries int
	// RateLimit is an ulule/limiter formatted limit, e.g. "60-M".
	RateLimit string
	// CORSAllowOrigins lists the UI origins allowed to call the API.
	CORSAllowOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("DEFAULT_CURRENCY", "RWF")
	viper.SetDefault("TX_MAX_RETRIES", 3)
	viper.SetDefault("RATE_LIMIT", "60-M")
	viper.SetDefault("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"})

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      viper.GetString("PGSQL_URL"),
		Port:             viper.GetString("PORT"),
		IsProduction:     viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:    viper.GetBool("ENABLE_DB_CHECK"),
		BaseCurrency:     viper.GetString("BASE_CURRENCY"),
		DefaultCurrency:  viper.GetString("DEFAULT_CURRENCY"),
		TxMaxRetries:     viper.GetInt("TX_MAX_RETRIES"),
		RateLimit:        viper.GetString("RATE_LIMIT"),
		CORSAllowOrigins: viper.GetStringSlice("CORS_ALLOW_ORIGINS"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.TxMaxRetries < 1 {
		log.Printf("Warning: TX_MAX_RETRIES must be at least 1, got %d. Defaulting to 3.\n", cfg.TxMaxRetries)
		cfg.TxMaxRetries = 3
	}
	if len(cfg.BaseCurrency) != 3 {
		log.Printf("Warning: BASE_CURRENCY must be a 3-letter code, got %q. Defaulting to USD.\n", cfg.BaseCurrency)
		cfg.BaseCurrency = "USD"
	}

	return cfg, nil
}
