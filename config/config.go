package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT          string
	APP_ENV       string
	APP_URL       string
	DATABASE_URL  string
	SessionSecret string

	GOOGLE_CLIENT_ID     string
	GOOGLE_CLIENT_SECRET string
	GOOGLE_REDIRECT_URL  string

	PAYSTACK_SECRET_KEY   string
	PAYMENT_CALLBACK_BASE string

	REDIS_URL string

	ADMIN_BOOTSTRAP_PASSWORD string

	RateLimitMultiplier       float64
	ReferralCommissionPercent float64
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	APP_ENV = getEnv("APP_ENV", "development")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")
	DATABASE_URL = mustEnv("DATABASE_URL")
	SessionSecret = mustEnv("SESSION_SECRET")

	// Absence of a provider credential disables that provider's routes,
	// it is not a startup failure.
	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")

	PAYSTACK_SECRET_KEY = getEnv("PAYSTACK_SECRET_KEY", "")
	PAYMENT_CALLBACK_BASE = getEnv("PAYMENT_CALLBACK_BASE", "http://localhost:8080")

	REDIS_URL = getEnv("REDIS_URL", "")

	ADMIN_BOOTSTRAP_PASSWORD = getEnv("ADMIN_BOOTSTRAP_PASSWORD", "")

	RateLimitMultiplier = getEnvFloat("RATE_LIMIT_MULTIPLIER", 1.0)
	ReferralCommissionPercent = getEnvFloat("REFERRAL_COMMISSION_PERCENT", 10.0)
}

// GoogleOAuthEnabled reports whether Google sign-in routes should be registered.
func GoogleOAuthEnabled() bool {
	return GOOGLE_CLIENT_ID != "" && GOOGLE_CLIENT_SECRET != "" && GOOGLE_REDIRECT_URL != ""
}

// PaymentsEnabled reports whether the payment gateway routes should be registered.
func PaymentsEnabled() bool {
	return PAYSTACK_SECRET_KEY != ""
}

func IsProduction() bool {
	return APP_ENV == "production"
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v, exists := os.LookupEnv(key)
	if !exists || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("Invalid value for %s: %q", key, v)
	}
	return f
}
