package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config collects everything the server reads from the environment.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	// Store selects the backing store: "postgres" or "memory".
	Store      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	NumWorkers      int
	StartingBalance decimal.Decimal
	PriceInterval   time.Duration
}

// Load reads .env if present, then the environment, falling back to
// defaults that match local development.
func Load() Config {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Store:      getEnv("STORE", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "trader"),
		DBPassword: getEnv("DB_PASSWORD", "trading123"),
		DBName:     getEnv("DB_NAME", "trading_db"),

		NumWorkers:      getEnvInt("NUM_WORKERS", 5),
		StartingBalance: getEnvDecimal("STARTING_BALANCE", decimal.NewFromInt(100000)),
		PriceInterval:   getEnvDuration("PRICE_INTERVAL", time.Second),
	}
}

// ConnString builds the lib/pq connection string.
func (c Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		return defaultValue
	}
	return d
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
