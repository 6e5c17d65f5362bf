package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret         string
	TakerFeeBps       int64
	BetCloserInterval time.Duration
	PriceCacheTTL     time.Duration
	FrontendOrigin    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	feeBps, err := strconv.ParseInt(getEnv("TAKER_FEE_BPS", "200"), 10, 64)
	if err != nil || feeBps < 0 {
		return nil, fmt.Errorf("TAKER_FEE_BPS must be a non-negative integer")
	}

	closerInterval, err := time.ParseDuration(getEnv("BET_CLOSER_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BET_CLOSER_INTERVAL: %w", err)
	}

	priceTTL, err := time.ParseDuration(getEnv("PRICE_CACHE_TTL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_CACHE_TTL: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "juicybets"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TakerFeeBps:       feeBps,
			BetCloserInterval: closerInterval,
			PriceCacheTTL:     priceTTL,
			FrontendOrigin:    getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
