package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Trading212 Trading212Config
	Binance    BinanceConfig
	Secrets    SecretsConfig
	Sync       SyncConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Trading212Config holds the environment fallback credentials for the broker
// API. Per-portfolio credentials stored in the database take precedence.
type Trading212Config struct {
	BaseURL  string
	APIKey   string
	APIKeyID string
}

// BinanceConfig holds the environment fallback credentials for the exchange API.
type BinanceConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string
}

// SecretsConfig holds the fernet key used to encrypt stored credentials.
type SecretsConfig struct {
	FernetKey string
}

// SyncConfig holds scheduling and network settings for source syncs.
type SyncConfig struct {
	// Schedule is a cron expression for the automatic sync of all portfolios
	// with stored credentials. Empty disables scheduled syncs.
	Schedule    string
	HTTPTimeout time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeoutSeconds, err := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Trading212: Trading212Config{
			BaseURL:  getEnv("TRADING212_BASE_URL", "https://live.trading212.com"),
			APIKey:   os.Getenv("TRADING212_API_KEY"),
			APIKeyID: os.Getenv("TRADING212_API_KEY_ID"),
		},
		Binance: BinanceConfig{
			BaseURL:   getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Secrets: SecretsConfig{
			FernetKey: os.Getenv("FERNET_KEY"),
		},
		Sync: SyncConfig{
			Schedule:    os.Getenv("SYNC_SCHEDULE"),
			HTTPTimeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
