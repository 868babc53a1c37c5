package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Admin    AdminConfig
	Payment  PaymentConfig
	Square   SquareConfig
	R2       R2Config
	Polling  PollingConfig
}

// PaymentConfig selects which payment method the deployment runs with.
// "card" routes through Square; "crypto" is reserved and rejects
// checkouts until an on-chain processor is integrated.
type PaymentConfig struct {
	Method string
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SessionConfig struct {
	Secret string
}

// AdminConfig holds the single admin credential. The hash is an argon2id
// string produced by utils.HashPassword.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type SquareConfig struct {
	AccessToken         string
	LocationID          string
	Environment         string // "sandbox" or "production"
	WebhookSignatureKey string
	WebhookURL          string
	CallbackURL         string
	Currency            string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
}

// PollingConfig bounds client-driven payment verification. After
// MaxAttempts polls the caller is told to check back later; the payment
// stays pending server-side and may still complete via webhook.
type PollingConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Payment: PaymentConfig{
			Method: getEnv("PAYMENT_METHOD", "card"),
		},
		Square: SquareConfig{
			AccessToken:         getEnv("SQUARE_ACCESS_TOKEN", ""),
			LocationID:          getEnv("SQUARE_LOCATION_ID", ""),
			Environment:         getEnv("SQUARE_ENVIRONMENT", "sandbox"),
			WebhookSignatureKey: getEnv("SQUARE_WEBHOOK_SIGNATURE_KEY", ""),
			WebhookURL:          getEnv("SQUARE_WEBHOOK_URL", ""),
			CallbackURL:         getEnv("SQUARE_CALLBACK_URL", "http://localhost:8080/payment/callback"),
			Currency:            getEnv("SQUARE_CURRENCY", "USD"),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", "gallery-media"),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Polling: PollingConfig{
			MaxAttempts: getEnvAsInt("PAYMENT_POLL_MAX_ATTEMPTS", 10),
			Interval:    time.Duration(getEnvAsInt("PAYMENT_POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "gallery"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
